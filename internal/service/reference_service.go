package service

import (
	"context"
	"fmt"

	"stockroom.io/stockroom/internal/domain"
	apperrors "stockroom.io/stockroom/internal/pkg/errors"
	"stockroom.io/stockroom/internal/store"
)

// RefStore is the persistence surface for category and supplier CRUD.
type RefStore interface {
	CreateCategory(ctx context.Context, c *domain.Category) error
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, c *domain.Category) error
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context, f store.RefFilter) ([]domain.Category, domain.PageInfo, error)
	CountAssetsByCategory(ctx context.Context, categoryID string) (int64, error)

	CreateSupplier(ctx context.Context, sp *domain.Supplier) error
	GetSupplier(ctx context.Context, id string) (*domain.Supplier, error)
	UpdateSupplier(ctx context.Context, sp *domain.Supplier) error
	DeleteSupplier(ctx context.Context, id string) error
	ListSuppliers(ctx context.Context, f store.RefFilter) ([]domain.Supplier, domain.PageInfo, error)
	CountAssetsBySupplier(ctx context.Context, supplierID string) (int64, error)
}

// CategoryInput carries the caller-supplied category fields.
type CategoryInput struct {
	Name        string
	Description string
}

// SupplierInput carries the caller-supplied supplier fields.
type SupplierInput struct {
	Name    string
	Contact string
	Notes   string
}

// ReferenceService manages the reference data assets point at. Deleting a
// row that assets still reference is rejected with an in-use conflict;
// administrative changes land in the system audit trail.
type ReferenceService struct {
	store   RefStore
	auditor Auditor
}

// NewReferenceService creates the reference data service.
func NewReferenceService(s RefStore, auditor Auditor) *ReferenceService {
	return &ReferenceService{store: s, auditor: auditor}
}

func requireName(name string) error {
	if name == "" {
		return apperrors.Validation("name is required", apperrors.FieldError{
			Field: "name", Code: "REQUIRED", Message: "name is required",
		})
	}
	return nil
}

// CreateCategory inserts a new category.
func (s *ReferenceService) CreateCategory(ctx context.Context, actorID, originAddr string, in CategoryInput) (*domain.Category, error) {
	if err := requireName(in.Name); err != nil {
		return nil, err
	}
	c := &domain.Category{Name: in.Name, Description: in.Description}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, mapStoreError(err, nil,
			apperrors.Conflict(apperrors.CodeCategoryNameExists,
				fmt.Sprintf("a category named %s already exists", in.Name)))
	}
	s.auditor.RecordSystemEvent(ctx, actorID, "category",
		fmt.Sprintf("created category %s", c.Name), originAddr)
	return c, nil
}

// GetCategory fetches one category.
func (s *ReferenceService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, mapStoreError(err,
			apperrors.NotFound(apperrors.CodeCategoryNotFound, "category not found"), nil)
	}
	return c, nil
}

// UpdateCategory replaces a category's fields.
func (s *ReferenceService) UpdateCategory(ctx context.Context, actorID, originAddr, id string, in CategoryInput) (*domain.Category, error) {
	if err := requireName(in.Name); err != nil {
		return nil, err
	}
	c, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := DescribeChanges([]FieldPair{
		{Name: "name", Before: c.Name, After: in.Name},
		{Name: "description", Before: c.Description, After: in.Description},
	})
	c.Name = in.Name
	c.Description = in.Description
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return nil, mapStoreError(err,
			apperrors.NotFound(apperrors.CodeCategoryNotFound, "category not found"),
			apperrors.Conflict(apperrors.CodeCategoryNameExists,
				fmt.Sprintf("a category named %s already exists", in.Name)))
	}
	s.auditor.RecordSystemEvent(ctx, actorID, "category",
		fmt.Sprintf("updated category %s: %s", c.Name, detail), originAddr)
	return c, nil
}

// DeleteCategory removes a category. Rejected while assets still reference
// it; the count is checked up front so the client gets a precise message.
func (s *ReferenceService) DeleteCategory(ctx context.Context, actorID, originAddr, id string) error {
	c, err := s.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.store.CountAssetsByCategory(ctx, id)
	if err != nil {
		return apperrors.Internal(err)
	}
	if n > 0 {
		return apperrors.Conflict(apperrors.CodeCategoryInUse,
			fmt.Sprintf("category %s is still referenced by %d assets", c.Name, n))
	}
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return mapStoreError(err,
			apperrors.NotFound(apperrors.CodeCategoryNotFound, "category not found"),
			apperrors.Conflict(apperrors.CodeCategoryInUse,
				fmt.Sprintf("category %s is still referenced by assets", c.Name)))
	}
	s.auditor.RecordSystemEvent(ctx, actorID, "category",
		fmt.Sprintf("deleted category %s", c.Name), originAddr)
	return nil
}

// ListCategories runs a filtered, paginated category query.
func (s *ReferenceService) ListCategories(ctx context.Context, f store.RefFilter) ([]domain.Category, domain.PageInfo, error) {
	items, info, err := s.store.ListCategories(ctx, f)
	if err != nil {
		return nil, domain.PageInfo{}, apperrors.Internal(err)
	}
	return items, info, nil
}

// CreateSupplier inserts a new supplier.
func (s *ReferenceService) CreateSupplier(ctx context.Context, actorID, originAddr string, in SupplierInput) (*domain.Supplier, error) {
	if err := requireName(in.Name); err != nil {
		return nil, err
	}
	sp := &domain.Supplier{Name: in.Name, Contact: in.Contact, Notes: in.Notes}
	if err := s.store.CreateSupplier(ctx, sp); err != nil {
		return nil, mapStoreError(err, nil,
			apperrors.Conflict(apperrors.CodeSupplierNameExists,
				fmt.Sprintf("a supplier named %s already exists", in.Name)))
	}
	s.auditor.RecordSystemEvent(ctx, actorID, "supplier",
		fmt.Sprintf("created supplier %s", sp.Name), originAddr)
	return sp, nil
}

// GetSupplier fetches one supplier.
func (s *ReferenceService) GetSupplier(ctx context.Context, id string) (*domain.Supplier, error) {
	sp, err := s.store.GetSupplier(ctx, id)
	if err != nil {
		return nil, mapStoreError(err,
			apperrors.NotFound(apperrors.CodeSupplierNotFound, "supplier not found"), nil)
	}
	return sp, nil
}

// UpdateSupplier replaces a supplier's fields.
func (s *ReferenceService) UpdateSupplier(ctx context.Context, actorID, originAddr, id string, in SupplierInput) (*domain.Supplier, error) {
	if err := requireName(in.Name); err != nil {
		return nil, err
	}
	sp, err := s.GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := DescribeChanges([]FieldPair{
		{Name: "name", Before: sp.Name, After: in.Name},
		{Name: "contact", Before: sp.Contact, After: in.Contact},
		{Name: "notes", Before: sp.Notes, After: in.Notes},
	})
	sp.Name = in.Name
	sp.Contact = in.Contact
	sp.Notes = in.Notes
	if err := s.store.UpdateSupplier(ctx, sp); err != nil {
		return nil, mapStoreError(err,
			apperrors.NotFound(apperrors.CodeSupplierNotFound, "supplier not found"),
			apperrors.Conflict(apperrors.CodeSupplierNameExists,
				fmt.Sprintf("a supplier named %s already exists", in.Name)))
	}
	s.auditor.RecordSystemEvent(ctx, actorID, "supplier",
		fmt.Sprintf("updated supplier %s: %s", sp.Name, detail), originAddr)
	return sp, nil
}

// DeleteSupplier removes a supplier unless assets still reference it.
func (s *ReferenceService) DeleteSupplier(ctx context.Context, actorID, originAddr, id string) error {
	sp, err := s.GetSupplier(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.store.CountAssetsBySupplier(ctx, id)
	if err != nil {
		return apperrors.Internal(err)
	}
	if n > 0 {
		return apperrors.Conflict(apperrors.CodeSupplierInUse,
			fmt.Sprintf("supplier %s is still referenced by %d assets", sp.Name, n))
	}
	if err := s.store.DeleteSupplier(ctx, id); err != nil {
		return mapStoreError(err,
			apperrors.NotFound(apperrors.CodeSupplierNotFound, "supplier not found"),
			apperrors.Conflict(apperrors.CodeSupplierInUse,
				fmt.Sprintf("supplier %s is still referenced by assets", sp.Name)))
	}
	s.auditor.RecordSystemEvent(ctx, actorID, "supplier",
		fmt.Sprintf("deleted supplier %s", sp.Name), originAddr)
	return nil
}

// ListSuppliers runs a filtered, paginated supplier query.
func (s *ReferenceService) ListSuppliers(ctx context.Context, f store.RefFilter) ([]domain.Supplier, domain.PageInfo, error) {
	items, info, err := s.store.ListSuppliers(ctx, f)
	if err != nil {
		return nil, domain.PageInfo{}, apperrors.Internal(err)
	}
	return items, info, nil
}
