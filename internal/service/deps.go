// Package service implements the asset lifecycle engine and the services
// around it. Services accept narrow interfaces and return domain structs,
// so every operation unit-tests without a transport layer or a live
// database.
package service

import (
	"context"
	"errors"

	"stockroom.io/stockroom/internal/domain"
	apperrors "stockroom.io/stockroom/internal/pkg/errors"
	"stockroom.io/stockroom/internal/pkg/worker"
	"stockroom.io/stockroom/internal/store"
)

// Catalog is the persistence surface the lifecycle engine writes through.
// *store.Store satisfies it via the adapter below; tests substitute fakes.
type Catalog interface {
	GetAsset(ctx context.Context, id string) (*domain.Asset, error)
	GetAssetsByIDs(ctx context.Context, ids []string) ([]domain.Asset, error)
	CreateAsset(ctx context.Context, a *domain.Asset) error
	UpdateAsset(ctx context.Context, a *domain.Asset) error
	DeleteAsset(ctx context.Context, id string) error
	BulkDeleteAssets(ctx context.Context, ids []string) (int64, error)
	BulkSetStatus(ctx context.Context, ids []string, status domain.Status) (int64, error)
	ListAssets(ctx context.Context, f store.AssetFilter) ([]domain.AssetListItem, domain.PageInfo, error)

	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	GetSupplier(ctx context.Context, id string) (*domain.Supplier, error)

	// InsertAssetEvent is used inside bulk transactions so audit entries
	// share the batch's atomicity. Everywhere else entries go through the
	// best-effort Auditor.
	InsertAssetEvent(ctx context.Context, e *domain.AssetEvent) error

	// InTx runs fn against a transaction-bound view of the catalog.
	InTx(ctx context.Context, fn func(Catalog) error) error
}

// Auditor records best-effort audit entries outside bulk transactions.
type Auditor interface {
	RecordAssetEvent(ctx context.Context, assetID, actorID string, action domain.Action, detail string)
	RecordSystemEvent(ctx context.Context, actorID, category, detail, originAddr string)
}

// ImagePipeline produces and removes image derivative files.
type ImagePipeline interface {
	Process(data []byte, declaredName string) (string, error)
	Remove(base string)
}

// CleanupPool schedules post-commit background work. *worker.Pool
// satisfies it; a nil pool degrades to synchronous cleanup.
type CleanupPool interface {
	SubmitDetached(task worker.Task) error
}

// storeCatalog adapts *store.Store to the Catalog interface, threading
// transaction-bound stores back through InTx callbacks.
type storeCatalog struct {
	*store.Store
}

// NewCatalog wraps the concrete store as a Catalog.
func NewCatalog(s *store.Store) Catalog {
	return storeCatalog{Store: s}
}

func (c storeCatalog) InTx(ctx context.Context, fn func(Catalog) error) error {
	return c.Store.InTx(ctx, func(tx *store.Store) error {
		return fn(storeCatalog{Store: tx})
	})
}

// mapStoreError converts the store's sentinel errors to the service error
// taxonomy. Anything unrecognized is a persistence failure: full detail is
// kept for server-side logs, the caller sees a generic message.
func mapStoreError(err error, notFound, conflict *apperrors.AppError) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperrors.ErrNotFound) && notFound != nil:
		return notFound
	case (errors.Is(err, apperrors.ErrAlreadyExists) || errors.Is(err, apperrors.ErrConflict)) && conflict != nil:
		return conflict
	default:
		if _, ok := apperrors.IsAppError(err); ok {
			return err
		}
		return apperrors.Internal(err)
	}
}
