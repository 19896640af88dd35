package service

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom.io/stockroom/internal/domain"
	apperrors "stockroom.io/stockroom/internal/pkg/errors"
	"stockroom.io/stockroom/internal/store"
)

// fakeRefStore is an in-memory RefStore with per-row asset reference counts.
type fakeRefStore struct {
	nextID     int
	categories map[string]domain.Category
	suppliers  map[string]domain.Supplier
	refCounts  map[string]int64
}

func newFakeRefStore() *fakeRefStore {
	return &fakeRefStore{
		categories: make(map[string]domain.Category),
		suppliers:  make(map[string]domain.Supplier),
		refCounts:  make(map[string]int64),
	}
}

func (f *fakeRefStore) newID() string {
	f.nextID++
	return "ref-" + strconv.Itoa(f.nextID)
}

func (f *fakeRefStore) CreateCategory(ctx context.Context, c *domain.Category) error {
	for _, existing := range f.categories {
		if existing.Name == c.Name {
			return fmt.Errorf("insert category %s: %w", c.Name, apperrors.ErrAlreadyExists)
		}
	}
	c.ID = f.newID()
	f.categories[c.ID] = *c
	return nil
}

func (f *fakeRefStore) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, fmt.Errorf("get category %s: %w", id, apperrors.ErrNotFound)
	}
	cp := c
	return &cp, nil
}

func (f *fakeRefStore) UpdateCategory(ctx context.Context, c *domain.Category) error {
	if _, ok := f.categories[c.ID]; !ok {
		return fmt.Errorf("update category %s: %w", c.ID, apperrors.ErrNotFound)
	}
	f.categories[c.ID] = *c
	return nil
}

func (f *fakeRefStore) DeleteCategory(ctx context.Context, id string) error {
	if _, ok := f.categories[id]; !ok {
		return fmt.Errorf("delete category %s: %w", id, apperrors.ErrNotFound)
	}
	delete(f.categories, id)
	return nil
}

func (f *fakeRefStore) ListCategories(ctx context.Context, flt store.RefFilter) ([]domain.Category, domain.PageInfo, error) {
	return nil, domain.PageInfo{}, nil
}

func (f *fakeRefStore) CountAssetsByCategory(ctx context.Context, id string) (int64, error) {
	return f.refCounts[id], nil
}

func (f *fakeRefStore) CreateSupplier(ctx context.Context, sp *domain.Supplier) error {
	for _, existing := range f.suppliers {
		if existing.Name == sp.Name {
			return fmt.Errorf("insert supplier %s: %w", sp.Name, apperrors.ErrAlreadyExists)
		}
	}
	sp.ID = f.newID()
	f.suppliers[sp.ID] = *sp
	return nil
}

func (f *fakeRefStore) GetSupplier(ctx context.Context, id string) (*domain.Supplier, error) {
	sp, ok := f.suppliers[id]
	if !ok {
		return nil, fmt.Errorf("get supplier %s: %w", id, apperrors.ErrNotFound)
	}
	cp := sp
	return &cp, nil
}

func (f *fakeRefStore) UpdateSupplier(ctx context.Context, sp *domain.Supplier) error {
	if _, ok := f.suppliers[sp.ID]; !ok {
		return fmt.Errorf("update supplier %s: %w", sp.ID, apperrors.ErrNotFound)
	}
	f.suppliers[sp.ID] = *sp
	return nil
}

func (f *fakeRefStore) DeleteSupplier(ctx context.Context, id string) error {
	if _, ok := f.suppliers[id]; !ok {
		return fmt.Errorf("delete supplier %s: %w", id, apperrors.ErrNotFound)
	}
	delete(f.suppliers, id)
	return nil
}

func (f *fakeRefStore) ListSuppliers(ctx context.Context, flt store.RefFilter) ([]domain.Supplier, domain.PageInfo, error) {
	return nil, domain.PageInfo{}, nil
}

func (f *fakeRefStore) CountAssetsBySupplier(ctx context.Context, id string) (int64, error) {
	return f.refCounts[id], nil
}

func TestCreateCategoryRequiresName(t *testing.T) {
	svc := NewReferenceService(newFakeRefStore(), &fakeAuditor{})

	_, err := svc.CreateCategory(context.Background(), "actor", "10.0.0.1", CategoryInput{})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	fake := newFakeRefStore()
	svc := NewReferenceService(fake, &fakeAuditor{})

	_, err := svc.CreateCategory(context.Background(), "actor", "10.0.0.1",
		CategoryInput{Name: "Laptops"})
	require.NoError(t, err)

	_, err = svc.CreateCategory(context.Background(), "actor", "10.0.0.1",
		CategoryInput{Name: "Laptops"})
	require.Error(t, err)
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeCategoryNameExists, appErr.Code)
}

func TestDeleteCategoryInUse(t *testing.T) {
	fake := newFakeRefStore()
	auditor := &fakeAuditor{}
	svc := NewReferenceService(fake, auditor)

	c, err := svc.CreateCategory(context.Background(), "actor", "10.0.0.1",
		CategoryInput{Name: "Laptops"})
	require.NoError(t, err)
	fake.refCounts[c.ID] = 4

	err = svc.DeleteCategory(context.Background(), "actor", "10.0.0.1", c.ID)
	require.Error(t, err)
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeCategoryInUse, appErr.Code)
	assert.Contains(t, appErr.Message, "4 assets")

	// Still there, and the failed delete left no audit entry.
	_, err = svc.GetCategory(context.Background(), c.ID)
	assert.NoError(t, err)
	assert.Len(t, auditor.systemEvents, 1) // only the create
}

func TestDeleteCategoryRecordsSystemEvent(t *testing.T) {
	fake := newFakeRefStore()
	auditor := &fakeAuditor{}
	svc := NewReferenceService(fake, auditor)

	c, err := svc.CreateCategory(context.Background(), "actor-7", "10.0.0.9",
		CategoryInput{Name: "Monitors"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory(context.Background(), "actor-7", "10.0.0.9", c.ID))

	require.Len(t, auditor.systemEvents, 2)
	e := auditor.systemEvents[1]
	assert.Equal(t, "actor-7", e.ActorID)
	assert.Equal(t, "category", e.Category)
	assert.Equal(t, "10.0.0.9", e.OriginAddr)
	assert.Contains(t, e.Detail, "Monitors")
}

func TestUpdateSupplierAuditsFieldDiff(t *testing.T) {
	fake := newFakeRefStore()
	auditor := &fakeAuditor{}
	svc := NewReferenceService(fake, auditor)

	sp, err := svc.CreateSupplier(context.Background(), "actor", "10.0.0.1",
		SupplierInput{Name: "Acme", Contact: "sales@acme.test"})
	require.NoError(t, err)

	_, err = svc.UpdateSupplier(context.Background(), "actor", "10.0.0.1", sp.ID,
		SupplierInput{Name: "Acme", Contact: "support@acme.test"})
	require.NoError(t, err)

	require.Len(t, auditor.systemEvents, 2)
	assert.Contains(t, auditor.systemEvents[1].Detail,
		"contact: sales@acme.test -> support@acme.test")
}

func TestDeleteSupplierInUse(t *testing.T) {
	fake := newFakeRefStore()
	svc := NewReferenceService(fake, &fakeAuditor{})

	sp, err := svc.CreateSupplier(context.Background(), "actor", "10.0.0.1",
		SupplierInput{Name: "Acme"})
	require.NoError(t, err)
	fake.refCounts[sp.ID] = 1

	err = svc.DeleteSupplier(context.Background(), "actor", "10.0.0.1", sp.ID)
	require.Error(t, err)
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeSupplierInUse, appErr.Code)
}
