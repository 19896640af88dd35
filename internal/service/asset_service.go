package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"stockroom.io/stockroom/internal/domain"
	apperrors "stockroom.io/stockroom/internal/pkg/errors"
	"stockroom.io/stockroom/internal/pkg/logger"
	"stockroom.io/stockroom/internal/store"
)

// AssetInput carries the caller-supplied fields for create and update.
type AssetInput struct {
	Tag            string
	CategoryID     *string
	SupplierID     *string
	Model          string
	Serial         string
	PurchaseDate   *time.Time
	WarrantyExpiry *time.Time
	AssignedUserID *string
	Status         domain.Status
}

// Upload is a raw uploaded image: bytes plus the declared filename.
type Upload struct {
	Data     []byte
	Filename string
}

// BulkResult summarizes an applied bulk action.
type BulkResult struct {
	Matched int `json:"matched"`
	Changed int `json:"changed"`
}

// AssetService is the asset lifecycle engine. It enforces the
// status/assignment coupling invariant before every write, keeps image
// derivatives consistent with their referencing rows, and emits one audit
// entry per meaningful state change.
type AssetService struct {
	catalog Catalog
	auditor Auditor
	images  ImagePipeline
	cleanup CleanupPool
}

// NewAssetService creates the lifecycle engine. cleanup may be nil, in
// which case post-commit file removals run synchronously.
func NewAssetService(catalog Catalog, auditor Auditor, images ImagePipeline, cleanup CleanupPool) *AssetService {
	return &AssetService{
		catalog: catalog,
		auditor: auditor,
		images:  images,
		cleanup: cleanup,
	}
}

func (s *AssetService) validateInput(in AssetInput) error {
	var fieldErrs []apperrors.FieldError
	if in.Tag == "" {
		fieldErrs = append(fieldErrs, apperrors.FieldError{
			Field: "tag", Code: "REQUIRED", Message: "asset tag is required",
		})
	}
	if !in.Status.Valid() {
		fieldErrs = append(fieldErrs, apperrors.FieldError{
			Field: "status", Code: "INVALID", Message: "unknown status",
		})
	}
	if len(fieldErrs) > 0 {
		return apperrors.Validation("asset payload invalid", fieldErrs...)
	}
	if !domain.AssignmentConsistent(in.Status, in.AssignedUserID) {
		return apperrors.ErrAssignmentMismatchf()
	}
	return nil
}

func assetFromInput(in AssetInput) *domain.Asset {
	return &domain.Asset{
		Tag:            in.Tag,
		CategoryID:     in.CategoryID,
		SupplierID:     in.SupplierID,
		Model:          in.Model,
		Serial:         in.Serial,
		PurchaseDate:   in.PurchaseDate,
		WarrantyExpiry: in.WarrantyExpiry,
		AssignedUserID: in.AssignedUserID,
		Status:         in.Status,
	}
}

// Create validates and inserts a new asset. An uploaded image is processed
// first and only its resulting filename referenced by the insert; when the
// insert fails afterwards, the orphaned derivatives are removed.
func (s *AssetService) Create(ctx context.Context, actorID string, in AssetInput, upload *Upload) (*domain.Asset, error) {
	if err := s.validateInput(in); err != nil {
		return nil, err
	}

	asset := assetFromInput(in)

	if upload != nil {
		base, err := s.images.Process(upload.Data, upload.Filename)
		if err != nil {
			return nil, err
		}
		asset.ImageName = base
	}

	if err := s.catalog.CreateAsset(ctx, asset); err != nil {
		if asset.ImageName != "" {
			s.images.Remove(asset.ImageName)
		}
		return nil, mapStoreError(err,
			apperrors.NotFound(apperrors.CodeAssetNotFound, "asset not found"),
			apperrors.ErrAssetTagExistsf(asset.Tag),
		)
	}

	s.auditor.RecordAssetEvent(ctx, asset.ID, actorID, domain.ActionCreated,
		fmt.Sprintf("created asset %s with status %s", asset.Tag, asset.Status.DisplayName()))
	return asset, nil
}

// Update loads the prior row, re-validates the coupling invariant against
// the new values and replaces the row. The old image files are deleted only
// after the update committed, and only when the filename actually changed;
// the audit detail enumerates exactly the fields that differed.
func (s *AssetService) Update(ctx context.Context, actorID, id string, in AssetInput, upload *Upload) (*domain.Asset, error) {
	if err := s.validateInput(in); err != nil {
		return nil, err
	}

	prior, err := s.catalog.GetAsset(ctx, id)
	if err != nil {
		return nil, mapStoreError(err,
			apperrors.ErrAssetNotFoundf(id),
			apperrors.Conflict(apperrors.CodeAssetTagExists, "asset already exists"),
		)
	}

	next := assetFromInput(in)
	next.ID = prior.ID
	next.ImageName = prior.ImageName
	next.CreatedAt = prior.CreatedAt

	if upload != nil {
		base, err := s.images.Process(upload.Data, upload.Filename)
		if err != nil {
			return nil, err
		}
		next.ImageName = base
	}

	if err := s.catalog.UpdateAsset(ctx, next); err != nil {
		if upload != nil && next.ImageName != prior.ImageName {
			s.images.Remove(next.ImageName)
		}
		return nil, mapStoreError(err,
			apperrors.ErrAssetNotFoundf(id),
			apperrors.ErrAssetTagExistsf(next.Tag),
		)
	}

	// The row referencing the new files is committed; the old pair is now
	// unreferenced and safe to drop.
	if prior.ImageName != "" && prior.ImageName != next.ImageName {
		s.removeImageFiles(prior.ImageName)
	}

	detail := DescribeChanges(s.diffAssets(ctx, prior, next))
	s.auditor.RecordAssetEvent(ctx, next.ID, actorID, domain.ActionUpdated, detail)
	return next, nil
}

// diffAssets builds the before/after pairs for the update audit detail.
// Assignment and reference fields resolve to display names; lookup failures
// degrade to raw ids rather than failing the operation.
func (s *AssetService) diffAssets(ctx context.Context, before, after *domain.Asset) []FieldPair {
	return []FieldPair{
		{Name: "tag", Before: before.Tag, After: after.Tag},
		{Name: "image", Before: imagePresence(before.ImageName), After: imagePresence(after.ImageName)},
		{Name: "category", Before: s.categoryName(ctx, before.CategoryID), After: s.categoryName(ctx, after.CategoryID)},
		{Name: "supplier", Before: s.supplierName(ctx, before.SupplierID), After: s.supplierName(ctx, after.SupplierID)},
		{Name: "model", Before: before.Model, After: after.Model},
		{Name: "serial", Before: before.Serial, After: after.Serial},
		{Name: "purchase date", Before: optDate(before.PurchaseDate), After: optDate(after.PurchaseDate)},
		{Name: "warranty expiry", Before: optDate(before.WarrantyExpiry), After: optDate(after.WarrantyExpiry)},
		{Name: "assignee", Before: s.userName(ctx, before.AssignedUserID), After: s.userName(ctx, after.AssignedUserID)},
		{Name: "status", Before: before.Status.DisplayName(), After: after.Status.DisplayName()},
	}
}

func imagePresence(name string) string {
	if name == "" {
		return ""
	}
	return name
}

func (s *AssetService) categoryName(ctx context.Context, id *string) string {
	ref := optStr(id)
	if ref == "" {
		return ""
	}
	if c, err := s.catalog.GetCategory(ctx, ref); err == nil {
		return c.Name
	}
	return ref
}

func (s *AssetService) supplierName(ctx context.Context, id *string) string {
	ref := optStr(id)
	if ref == "" {
		return ""
	}
	if sp, err := s.catalog.GetSupplier(ctx, ref); err == nil {
		return sp.Name
	}
	return ref
}

func (s *AssetService) userName(ctx context.Context, id *string) string {
	ref := optStr(id)
	if ref == "" {
		return ""
	}
	if u, err := s.catalog.GetUser(ctx, ref); err == nil {
		return u.DisplayName
	}
	return ref
}

// CheckOut assigns an in-stock asset to a user. Legal only from InStock.
func (s *AssetService) CheckOut(ctx context.Context, actorID, id, userID string) (*domain.Asset, error) {
	asset, err := s.catalog.GetAsset(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, apperrors.ErrAssetNotFoundf(id), nil)
	}
	if asset.Status != domain.StatusInStock {
		return nil, apperrors.BadRequest(apperrors.CodeAssetNotInStock,
			fmt.Sprintf("asset %s is %s, only in-stock assets can be checked out",
				asset.Tag, asset.Status.DisplayName()))
	}

	user, err := s.catalog.GetUser(ctx, userID)
	if err != nil {
		return nil, mapStoreError(err,
			apperrors.NotFound(apperrors.CodeUserNotFound, "user not found"), nil)
	}

	asset.Status = domain.StatusAssigned
	asset.AssignedUserID = &user.ID
	if err := s.catalog.UpdateAsset(ctx, asset); err != nil {
		return nil, mapStoreError(err, apperrors.ErrAssetNotFoundf(id), nil)
	}

	s.auditor.RecordAssetEvent(ctx, asset.ID, actorID, domain.ActionCheckedOut,
		fmt.Sprintf("checked out to %s (%s)", user.DisplayName, user.Handle))
	return asset, nil
}

// CheckIn returns an assigned asset to stock, clearing its assignment. The
// outgoing user is resolved before the clearing write so the audit entry
// can name them.
func (s *AssetService) CheckIn(ctx context.Context, actorID, id string) (*domain.Asset, error) {
	asset, err := s.catalog.GetAsset(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, apperrors.ErrAssetNotFoundf(id), nil)
	}
	if asset.AssignedUserID == nil {
		return nil, apperrors.Validation(
			fmt.Sprintf("asset %s is not checked out", asset.Tag))
	}

	outgoing := s.userName(ctx, asset.AssignedUserID)

	asset.Status = domain.StatusInStock
	asset.AssignedUserID = nil
	if err := s.catalog.UpdateAsset(ctx, asset); err != nil {
		return nil, mapStoreError(err, apperrors.ErrAssetNotFoundf(id), nil)
	}

	s.auditor.RecordAssetEvent(ctx, asset.ID, actorID, domain.ActionCheckedIn,
		fmt.Sprintf("checked in from %s", outgoing))
	return asset, nil
}

// Delete removes the asset row and then its image derivatives. The asset's
// audit history is retained: that is the retention policy, not an oversight.
func (s *AssetService) Delete(ctx context.Context, actorID, id string) error {
	asset, err := s.catalog.GetAsset(ctx, id)
	if err != nil {
		return mapStoreError(err, apperrors.ErrAssetNotFoundf(id), nil)
	}

	if err := s.catalog.DeleteAsset(ctx, id); err != nil {
		return mapStoreError(err, apperrors.ErrAssetNotFoundf(id), nil)
	}

	if asset.ImageName != "" {
		s.removeImageFiles(asset.ImageName)
	}

	s.auditor.RecordAssetEvent(ctx, asset.ID, actorID, domain.ActionDeleted,
		fmt.Sprintf("deleted asset %s", asset.Tag))
	return nil
}

// BulkApply runs one action over a set of assets inside a single
// transaction: rows are fetched first, the batch mutation executes, then
// one audit entry is written per actually-changed row. Any failure rolls
// everything back; no partial bulk effect is observable.
func (s *AssetService) BulkApply(ctx context.Context, actorID string, ids []string, action domain.BulkAction) (BulkResult, error) {
	if len(ids) == 0 {
		return BulkResult{}, apperrors.New(apperrors.CodeEmptySelection,
			"no assets selected", 400)
	}
	if !action.Valid() {
		return BulkResult{}, apperrors.Validation("unknown bulk action " + string(action))
	}

	// Fail fast on unknown ids before opening a transaction.
	found, err := s.catalog.GetAssetsByIDs(ctx, ids)
	if err != nil {
		return BulkResult{}, mapStoreError(err, nil, nil)
	}
	if len(found) != len(uniqueIDs(ids)) {
		return BulkResult{}, apperrors.Validation("selection contains unknown assets")
	}

	var result BulkResult
	var removeImages []string

	err = s.catalog.InTx(ctx, func(tx Catalog) error {
		// Re-fetch inside the transaction: audit detail and image cleanup
		// must describe the rows the mutation actually sees.
		assets, err := tx.GetAssetsByIDs(ctx, ids)
		if err != nil {
			return err
		}
		result.Matched = len(assets)

		switch action {
		case domain.BulkDelete:
			if _, err := tx.BulkDeleteAssets(ctx, ids); err != nil {
				return err
			}
			for _, a := range assets {
				entry := &domain.AssetEvent{
					AssetID: a.ID,
					ActorID: actorID,
					Action:  domain.ActionDeleted,
					Detail:  fmt.Sprintf("deleted asset %s (bulk)", a.Tag),
				}
				if err := tx.InsertAssetEvent(ctx, entry); err != nil {
					return err
				}
				if a.ImageName != "" {
					removeImages = append(removeImages, a.ImageName)
				}
			}
			result.Changed = len(assets)

		case domain.BulkRetire, domain.BulkRepair:
			target, _ := action.TargetStatus()
			if _, err := tx.BulkSetStatus(ctx, ids, target); err != nil {
				return err
			}
			for _, a := range assets {
				if a.Status == target {
					// No-op transition: the row keeps its status (and its
					// already-cleared assignment), so no entry is logged.
					continue
				}
				entry := &domain.AssetEvent{
					AssetID: a.ID,
					ActorID: actorID,
					Action:  domain.ActionUpdated,
					Detail: fmt.Sprintf("status: %s -> %s (bulk)",
						a.Status.DisplayName(), target.DisplayName()),
				}
				if err := tx.InsertAssetEvent(ctx, entry); err != nil {
					return err
				}
				result.Changed++
			}
		}
		return nil
	})
	if err != nil {
		if _, ok := apperrors.IsAppError(err); ok {
			return BulkResult{}, err
		}
		return BulkResult{}, apperrors.Internal(err)
	}

	// Only after the transaction committed are the deleted rows' image
	// files unreferenced and safe to remove.
	for _, name := range removeImages {
		s.removeImageFiles(name)
	}

	return result, nil
}

// Get fetches one asset.
func (s *AssetService) Get(ctx context.Context, id string) (*domain.Asset, error) {
	asset, err := s.catalog.GetAsset(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, apperrors.ErrAssetNotFoundf(id), nil)
	}
	return asset, nil
}

// List runs a filtered, paginated catalog query.
func (s *AssetService) List(ctx context.Context, f store.AssetFilter) ([]domain.AssetListItem, domain.PageInfo, error) {
	items, info, err := s.catalog.ListAssets(ctx, f)
	if err != nil {
		return nil, domain.PageInfo{}, apperrors.Internal(err)
	}
	return items, info, nil
}

// removeImageFiles drops both derivatives for a base name, in the
// background when a cleanup pool is wired, synchronously otherwise.
func (s *AssetService) removeImageFiles(base string) {
	if s.cleanup == nil {
		s.images.Remove(base)
		return
	}
	name := base
	if err := s.cleanup.SubmitDetached(func(ctx context.Context) {
		s.images.Remove(name)
	}); err != nil {
		logger.Warn("Image cleanup submit failed, removing inline",
			zap.String("file", name),
			zap.Error(err),
		)
		s.images.Remove(name)
	}
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
