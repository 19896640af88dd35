package service

import (
	"context"

	"stockroom.io/stockroom/internal/domain"
	apperrors "stockroom.io/stockroom/internal/pkg/errors"
)

// Trail is the read surface over the append-only audit tables.
type Trail interface {
	ListAssetEvents(ctx context.Context, assetID string, page int) ([]domain.AssetEvent, domain.PageInfo, error)
	ListSystemEvents(ctx context.Context, page int) ([]domain.SystemEvent, domain.PageInfo, error)
}

// AuditService exposes the audit trail to reporting surfaces. Read-only:
// entries are appended by the lifecycle services, never through here.
type AuditService struct {
	trail Trail
}

// NewAuditService creates the audit read service.
func NewAuditService(trail Trail) *AuditService {
	return &AuditService{trail: trail}
}

// AssetHistory returns one page of an asset's history, newest first. The
// asset itself may no longer exist; its history is still served.
func (s *AuditService) AssetHistory(ctx context.Context, assetID string, page int) ([]domain.AssetEvent, domain.PageInfo, error) {
	events, info, err := s.trail.ListAssetEvents(ctx, assetID, page)
	if err != nil {
		return nil, domain.PageInfo{}, apperrors.Internal(err)
	}
	return events, info, nil
}

// SystemLog returns one page of global administrative entries, newest first.
func (s *AuditService) SystemLog(ctx context.Context, page int) ([]domain.SystemEvent, domain.PageInfo, error) {
	events, info, err := s.trail.ListSystemEvents(ctx, page)
	if err != nil {
		return nil, domain.PageInfo{}, apperrors.Internal(err)
	}
	return events, info, nil
}
