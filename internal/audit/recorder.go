// Package audit implements the audit trail recorder.
//
// Audit entries are append-only records. Hard-delete is NOT allowed.
// Writes are best-effort relative to the business operation that triggered
// them: a failed append is logged to the operational channel and swallowed.
// The one exception is bulk mutations, whose entries are written through the
// transaction-bound store directly and share the transaction's atomicity.
package audit

import (
	"context"

	"go.uber.org/zap"

	"stockroom.io/stockroom/internal/domain"
	"stockroom.io/stockroom/internal/pkg/logger"
)

// Appender is the subset of the catalog store the recorder writes through.
type Appender interface {
	InsertAssetEvent(ctx context.Context, e *domain.AssetEvent) error
	InsertSystemEvent(ctx context.Context, e *domain.SystemEvent) error
}

// Recorder writes audit records to the database.
type Recorder struct {
	store Appender
}

// NewRecorder creates a new audit Recorder.
func NewRecorder(store Appender) *Recorder {
	return &Recorder{store: store}
}

// RecordAssetEvent appends one asset history entry. Failures never
// propagate to the caller.
func (r *Recorder) RecordAssetEvent(ctx context.Context, assetID, actorID string, action domain.Action, detail string) {
	e := &domain.AssetEvent{
		AssetID: assetID,
		ActorID: actorID,
		Action:  action,
		Detail:  detail,
	}
	if err := r.store.InsertAssetEvent(ctx, e); err != nil {
		logger.Error("Failed to write asset audit entry",
			zap.String("asset_id", assetID),
			zap.String("actor_id", actorID),
			zap.String("action", string(action)),
			zap.Error(err),
		)
	}
}

// RecordSystemEvent appends one global administrative entry. Failures never
// propagate to the caller.
func (r *Recorder) RecordSystemEvent(ctx context.Context, actorID, category, detail, originAddr string) {
	e := &domain.SystemEvent{
		ActorID:    actorID,
		Category:   category,
		Detail:     detail,
		OriginAddr: originAddr,
	}
	if err := r.store.InsertSystemEvent(ctx, e); err != nil {
		logger.Error("Failed to write system audit entry",
			zap.String("actor_id", actorID),
			zap.String("category", category),
			zap.Error(err),
		)
	}
}
