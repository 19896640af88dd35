package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"stockroom.io/stockroom/internal/domain"
	apperrors "stockroom.io/stockroom/internal/pkg/errors"
	"stockroom.io/stockroom/internal/store"
)

// fakeCatalog is an in-memory Catalog. InTx runs the callback against a
// deep copy and only merges the copy back on success, so rollback semantics
// hold without a database.
type fakeCatalog struct {
	mu         sync.Mutex
	nextID     int
	assets     map[string]domain.Asset
	users      map[string]domain.User
	categories map[string]domain.Category
	suppliers  map[string]domain.Supplier
	events     []domain.AssetEvent

	failInsertEventAfter int // fail the Nth InsertAssetEvent (1-based), 0 = never
	insertEventCalls     int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		assets:     make(map[string]domain.Asset),
		users:      make(map[string]domain.User),
		categories: make(map[string]domain.Category),
		suppliers:  make(map[string]domain.Supplier),
	}
}

func (f *fakeCatalog) newID() string {
	f.nextID++
	return "id-" + strconv.Itoa(f.nextID)
}

func (f *fakeCatalog) addAsset(a domain.Asset) domain.Asset {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == "" {
		a.ID = f.newID()
	}
	f.assets[a.ID] = a
	return a
}

func (f *fakeCatalog) addUser(u domain.User) domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == "" {
		u.ID = f.newID()
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeCatalog) GetAsset(ctx context.Context, id string) (*domain.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.assets[id]
	if !ok {
		return nil, fmt.Errorf("get asset %s: %w", id, apperrors.ErrNotFound)
	}
	cp := a
	return &cp, nil
}

func (f *fakeCatalog) GetAssetsByIDs(ctx context.Context, ids []string) ([]domain.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Asset
	seen := make(map[string]bool)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if a, ok := f.assets[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeCatalog) CreateAsset(ctx context.Context, a *domain.Asset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.assets {
		if existing.Tag == a.Tag {
			return fmt.Errorf("insert asset %s: %w", a.Tag, apperrors.ErrAlreadyExists)
		}
	}
	if a.ID == "" {
		a.ID = f.newID()
	}
	f.assets[a.ID] = *a
	return nil
}

func (f *fakeCatalog) UpdateAsset(ctx context.Context, a *domain.Asset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.assets[a.ID]; !ok {
		return fmt.Errorf("update asset %s: %w", a.ID, apperrors.ErrNotFound)
	}
	for id, existing := range f.assets {
		if id != a.ID && existing.Tag == a.Tag {
			return fmt.Errorf("update asset %s: %w", a.Tag, apperrors.ErrAlreadyExists)
		}
	}
	f.assets[a.ID] = *a
	return nil
}

func (f *fakeCatalog) DeleteAsset(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.assets[id]; !ok {
		return fmt.Errorf("delete asset %s: %w", id, apperrors.ErrNotFound)
	}
	delete(f.assets, id)
	return nil
}

func (f *fakeCatalog) BulkDeleteAssets(ctx context.Context, ids []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := f.assets[id]; ok {
			delete(f.assets, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeCatalog) BulkSetStatus(ctx context.Context, ids []string, status domain.Status) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, id := range ids {
		a, ok := f.assets[id]
		if !ok {
			continue
		}
		a.Status = status
		a.AssignedUserID = nil
		f.assets[id] = a
		n++
	}
	return n, nil
}

func (f *fakeCatalog) ListAssets(ctx context.Context, flt store.AssetFilter) ([]domain.AssetListItem, domain.PageInfo, error) {
	return nil, domain.PageInfo{}, nil
}

func (f *fakeCatalog) GetUser(ctx context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("get user %s: %w", id, apperrors.ErrNotFound)
	}
	cp := u
	return &cp, nil
}

func (f *fakeCatalog) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[id]
	if !ok {
		return nil, fmt.Errorf("get category %s: %w", id, apperrors.ErrNotFound)
	}
	cp := c
	return &cp, nil
}

func (f *fakeCatalog) GetSupplier(ctx context.Context, id string) (*domain.Supplier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sp, ok := f.suppliers[id]
	if !ok {
		return nil, fmt.Errorf("get supplier %s: %w", id, apperrors.ErrNotFound)
	}
	cp := sp
	return &cp, nil
}

func (f *fakeCatalog) InsertAssetEvent(ctx context.Context, e *domain.AssetEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertEventCalls++
	if f.failInsertEventAfter > 0 && f.insertEventCalls >= f.failInsertEventAfter {
		return fmt.Errorf("insert asset event: connection reset")
	}
	if e.ID == "" {
		e.ID = f.newID()
	}
	f.events = append(f.events, *e)
	return nil
}

// InTx clones the mutable state, runs fn against the clone, and merges the
// clone back only when fn succeeds.
func (f *fakeCatalog) InTx(ctx context.Context, fn func(Catalog) error) error {
	f.mu.Lock()
	clone := &fakeCatalog{
		nextID:               f.nextID + 1000,
		assets:               make(map[string]domain.Asset, len(f.assets)),
		users:                f.users,
		categories:           f.categories,
		suppliers:            f.suppliers,
		events:               append([]domain.AssetEvent(nil), f.events...),
		failInsertEventAfter: f.failInsertEventAfter,
		insertEventCalls:     f.insertEventCalls,
	}
	for id, a := range f.assets {
		clone.assets[id] = a
	}
	f.mu.Unlock()

	if err := fn(clone); err != nil {
		return err
	}

	f.mu.Lock()
	f.assets = clone.assets
	f.events = clone.events
	f.insertEventCalls = clone.insertEventCalls
	f.mu.Unlock()
	return nil
}

// fakeAuditor records best-effort audit calls for assertions.
type fakeAuditor struct {
	assetEvents  []domain.AssetEvent
	systemEvents []domain.SystemEvent
}

func (f *fakeAuditor) RecordAssetEvent(ctx context.Context, assetID, actorID string, action domain.Action, detail string) {
	f.assetEvents = append(f.assetEvents, domain.AssetEvent{
		AssetID: assetID, ActorID: actorID, Action: action, Detail: detail,
	})
}

func (f *fakeAuditor) RecordSystemEvent(ctx context.Context, actorID, category, detail, originAddr string) {
	f.systemEvents = append(f.systemEvents, domain.SystemEvent{
		ActorID: actorID, Category: category, Detail: detail, OriginAddr: originAddr,
	})
}

// fakePipeline tracks processed and removed base names.
type fakePipeline struct {
	nextBase   int
	processErr error
	processed  []string
	removed    []string
}

func (f *fakePipeline) Process(data []byte, declaredName string) (string, error) {
	if f.processErr != nil {
		return "", f.processErr
	}
	f.nextBase++
	base := fmt.Sprintf("img-%d.jpg", f.nextBase)
	f.processed = append(f.processed, base)
	return base, nil
}

func (f *fakePipeline) Remove(base string) {
	f.removed = append(f.removed, base)
}

func strPtr(s string) *string { return &s }
