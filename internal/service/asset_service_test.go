package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom.io/stockroom/internal/domain"
	apperrors "stockroom.io/stockroom/internal/pkg/errors"
)

func newAssetService(catalog *fakeCatalog) (*AssetService, *fakeAuditor, *fakePipeline) {
	auditor := &fakeAuditor{}
	pipeline := &fakePipeline{}
	svc := NewAssetService(catalog, auditor, pipeline, nil)
	return svc, auditor, pipeline
}

func TestCreateRejectsAssignmentMismatch(t *testing.T) {
	svc, auditor, _ := newAssetService(newFakeCatalog())

	tests := []struct {
		name  string
		input AssetInput
	}{
		{
			name: "assigned status without user",
			input: AssetInput{
				Tag:    "A-001",
				Status: domain.StatusAssigned,
			},
		},
		{
			name: "user set without assigned status",
			input: AssetInput{
				Tag:            "A-002",
				Status:         domain.StatusInStock,
				AssignedUserID: strPtr("u-1"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "actor", tt.input, nil)
			require.Error(t, err)
			appErr, ok := apperrors.IsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.CodeAssignmentMismatch, appErr.Code)
			assert.Empty(t, auditor.assetEvents)
		})
	}
}

func TestCreateRecordsAuditEntry(t *testing.T) {
	catalog := newFakeCatalog()
	svc, auditor, _ := newAssetService(catalog)

	asset, err := svc.Create(context.Background(), "actor-1", AssetInput{
		Tag:    "A-100",
		Model:  "ThinkPad X1",
		Status: domain.StatusInStock,
	}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, asset.ID)

	require.Len(t, auditor.assetEvents, 1)
	e := auditor.assetEvents[0]
	assert.Equal(t, asset.ID, e.AssetID)
	assert.Equal(t, "actor-1", e.ActorID)
	assert.Equal(t, domain.ActionCreated, e.Action)
	assert.Contains(t, e.Detail, "A-100")
	assert.Contains(t, e.Detail, "In Stock")
}

func TestCreateDuplicateTagConflict(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.addAsset(domain.Asset{Tag: "A-100", Status: domain.StatusInStock})
	svc, _, _ := newAssetService(catalog)

	_, err := svc.Create(context.Background(), "actor", AssetInput{
		Tag:    "A-100",
		Status: domain.StatusInStock,
	}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestCreateRemovesOrphanedImageOnInsertFailure(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.addAsset(domain.Asset{Tag: "A-100", Status: domain.StatusInStock})
	svc, _, pipeline := newAssetService(catalog)

	_, err := svc.Create(context.Background(), "actor", AssetInput{
		Tag:    "A-100",
		Status: domain.StatusInStock,
	}, &Upload{Data: []byte("x"), Filename: "photo.jpg"})
	require.Error(t, err)

	// The derivatives written before the failed insert must not leak.
	require.Len(t, pipeline.processed, 1)
	assert.Equal(t, pipeline.processed, pipeline.removed)
}

func TestUpdateAuditDetailListsChangedFieldsOnly(t *testing.T) {
	catalog := newFakeCatalog()
	a := catalog.addAsset(domain.Asset{
		Tag:    "A-100",
		Model:  "ThinkPad X1",
		Serial: "SN-1",
		Status: domain.StatusInStock,
	})
	svc, auditor, _ := newAssetService(catalog)

	_, err := svc.Update(context.Background(), "actor", a.ID, AssetInput{
		Tag:    "A-100",
		Model:  "ThinkPad X2",
		Serial: "SN-1",
		Status: domain.StatusInStock,
	}, nil)
	require.NoError(t, err)

	require.Len(t, auditor.assetEvents, 1)
	detail := auditor.assetEvents[0].Detail
	assert.Equal(t, "model: ThinkPad X1 -> ThinkPad X2", detail)
}

func TestUpdateResolvesAssigneeNamesInDetail(t *testing.T) {
	catalog := newFakeCatalog()
	u := catalog.addUser(domain.User{DisplayName: "Dana Field", Handle: "dana"})
	a := catalog.addAsset(domain.Asset{Tag: "A-100", Status: domain.StatusInStock})
	svc, auditor, _ := newAssetService(catalog)

	_, err := svc.Update(context.Background(), "actor", a.ID, AssetInput{
		Tag:            "A-100",
		Status:         domain.StatusAssigned,
		AssignedUserID: &u.ID,
	}, nil)
	require.NoError(t, err)

	require.Len(t, auditor.assetEvents, 1)
	detail := auditor.assetEvents[0].Detail
	assert.Contains(t, detail, "assignee: (none) -> Dana Field")
	assert.Contains(t, detail, "status: In Stock -> Assigned")
	assert.NotContains(t, detail, u.ID)
}

func TestUpdateNoChangesStillAudited(t *testing.T) {
	catalog := newFakeCatalog()
	a := catalog.addAsset(domain.Asset{Tag: "A-100", Status: domain.StatusInStock})
	svc, auditor, _ := newAssetService(catalog)

	_, err := svc.Update(context.Background(), "actor", a.ID, AssetInput{
		Tag:    "A-100",
		Status: domain.StatusInStock,
	}, nil)
	require.NoError(t, err)

	require.Len(t, auditor.assetEvents, 1)
	assert.Equal(t, noChangeDetail, auditor.assetEvents[0].Detail)
}

func TestUpdateReplacingImageRemovesOldPair(t *testing.T) {
	catalog := newFakeCatalog()
	a := catalog.addAsset(domain.Asset{
		Tag:       "A-100",
		Status:    domain.StatusInStock,
		ImageName: "old.jpg",
	})
	svc, _, pipeline := newAssetService(catalog)

	updated, err := svc.Update(context.Background(), "actor", a.ID, AssetInput{
		Tag:    "A-100",
		Status: domain.StatusInStock,
	}, &Upload{Data: []byte("x"), Filename: "new.png"})
	require.NoError(t, err)
	assert.NotEqual(t, "old.jpg", updated.ImageName)
	assert.Equal(t, []string{"old.jpg"}, pipeline.removed)
}

func TestCheckOutOnlyFromInStock(t *testing.T) {
	catalog := newFakeCatalog()
	u := catalog.addUser(domain.User{DisplayName: "Dana Field", Handle: "dana"})
	repair := catalog.addAsset(domain.Asset{Tag: "A-200", Status: domain.StatusInRepair})
	svc, _, _ := newAssetService(catalog)

	_, err := svc.CheckOut(context.Background(), "actor", repair.ID, u.ID)
	require.Error(t, err)
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeAssetNotInStock, appErr.Code)
}

func TestCheckOutAssignsAndAudits(t *testing.T) {
	catalog := newFakeCatalog()
	u := catalog.addUser(domain.User{DisplayName: "Dana Field", Handle: "dana"})
	a := catalog.addAsset(domain.Asset{Tag: "A-100", Status: domain.StatusInStock})
	svc, auditor, _ := newAssetService(catalog)

	out, err := svc.CheckOut(context.Background(), "actor", a.ID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAssigned, out.Status)
	require.NotNil(t, out.AssignedUserID)
	assert.Equal(t, u.ID, *out.AssignedUserID)

	require.Len(t, auditor.assetEvents, 1)
	assert.Equal(t, domain.ActionCheckedOut, auditor.assetEvents[0].Action)
	assert.Contains(t, auditor.assetEvents[0].Detail, "Dana Field")
}

func TestCheckInUnassignedRejected(t *testing.T) {
	catalog := newFakeCatalog()
	a := catalog.addAsset(domain.Asset{Tag: "A-100", Status: domain.StatusInStock})
	svc, _, _ := newAssetService(catalog)

	_, err := svc.CheckIn(context.Background(), "actor", a.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCheckInClearsAssignmentAndNamesOutgoingUser(t *testing.T) {
	catalog := newFakeCatalog()
	u := catalog.addUser(domain.User{DisplayName: "Dana Field", Handle: "dana"})
	a := catalog.addAsset(domain.Asset{
		Tag:            "A-100",
		Status:         domain.StatusAssigned,
		AssignedUserID: &u.ID,
	})
	svc, auditor, _ := newAssetService(catalog)

	in, err := svc.CheckIn(context.Background(), "actor", a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInStock, in.Status)
	assert.Nil(t, in.AssignedUserID)

	require.Len(t, auditor.assetEvents, 1)
	assert.Equal(t, domain.ActionCheckedIn, auditor.assetEvents[0].Action)
	assert.Contains(t, auditor.assetEvents[0].Detail, "Dana Field")
}

func TestDeleteRemovesRowAndImageFiles(t *testing.T) {
	catalog := newFakeCatalog()
	a := catalog.addAsset(domain.Asset{
		Tag:       "A-100",
		Status:    domain.StatusRetired,
		ImageName: "pic.jpg",
	})
	svc, auditor, pipeline := newAssetService(catalog)

	require.NoError(t, svc.Delete(context.Background(), "actor", a.ID))

	_, err := catalog.GetAsset(context.Background(), a.ID)
	assert.Error(t, err)
	assert.Equal(t, []string{"pic.jpg"}, pipeline.removed)
	require.Len(t, auditor.assetEvents, 1)
	assert.Equal(t, domain.ActionDeleted, auditor.assetEvents[0].Action)
}

func TestBulkApplyEmptySelection(t *testing.T) {
	svc, _, _ := newAssetService(newFakeCatalog())

	_, err := svc.BulkApply(context.Background(), "actor", nil, domain.BulkRetire)
	require.Error(t, err)
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeEmptySelection, appErr.Code)
}

func TestBulkApplyUnknownIDRejected(t *testing.T) {
	catalog := newFakeCatalog()
	a := catalog.addAsset(domain.Asset{Tag: "A-100", Status: domain.StatusInStock})
	svc, _, _ := newAssetService(catalog)

	_, err := svc.BulkApply(context.Background(), "actor", []string{a.ID, "ghost"}, domain.BulkRetire)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestBulkRetireSkipsAuditForAlreadyRetired(t *testing.T) {
	catalog := newFakeCatalog()
	var ids []string
	for i := 0; i < 3; i++ {
		a := catalog.addAsset(domain.Asset{
			Tag:    "A-10" + string(rune('0'+i)),
			Status: domain.StatusInStock,
		})
		ids = append(ids, a.ID)
	}
	for i := 0; i < 2; i++ {
		a := catalog.addAsset(domain.Asset{
			Tag:    "A-20" + string(rune('0'+i)),
			Status: domain.StatusRetired,
		})
		ids = append(ids, a.ID)
	}
	svc, _, _ := newAssetService(catalog)

	result, err := svc.BulkApply(context.Background(), "actor", ids, domain.BulkRetire)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Matched)
	assert.Equal(t, 3, result.Changed)

	// One entry per asset that actually changed state, none for the two
	// already-retired rows.
	assert.Len(t, catalog.events, 3)
	for _, e := range catalog.events {
		assert.Equal(t, domain.ActionUpdated, e.Action)
		assert.Contains(t, e.Detail, "-> Retired")
	}

	for _, id := range ids {
		a, err := catalog.GetAsset(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusRetired, a.Status)
		assert.Nil(t, a.AssignedUserID)
	}
}

func TestBulkRetireClearsAssignment(t *testing.T) {
	catalog := newFakeCatalog()
	u := catalog.addUser(domain.User{DisplayName: "Dana Field", Handle: "dana"})
	a := catalog.addAsset(domain.Asset{
		Tag:            "A-100",
		Status:         domain.StatusAssigned,
		AssignedUserID: &u.ID,
	})
	svc, _, _ := newAssetService(catalog)

	result, err := svc.BulkApply(context.Background(), "actor", []string{a.ID}, domain.BulkRetire)
	require.NoError(t, err)
	assert.Equal(t, BulkResult{Matched: 1, Changed: 1}, result)

	got, err := catalog.GetAsset(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRetired, got.Status)
	assert.Nil(t, got.AssignedUserID)
}

func TestBulkDeleteWritesEntriesAndRemovesImages(t *testing.T) {
	catalog := newFakeCatalog()
	withImg := catalog.addAsset(domain.Asset{
		Tag:       "A-100",
		Status:    domain.StatusInStock,
		ImageName: "a.jpg",
	})
	without := catalog.addAsset(domain.Asset{Tag: "A-101", Status: domain.StatusRetired})
	svc, _, pipeline := newAssetService(catalog)

	result, err := svc.BulkApply(context.Background(), "actor",
		[]string{withImg.ID, without.ID}, domain.BulkDelete)
	require.NoError(t, err)
	assert.Equal(t, BulkResult{Matched: 2, Changed: 2}, result)

	assert.Empty(t, catalog.assets)
	assert.Len(t, catalog.events, 2)
	assert.Equal(t, []string{"a.jpg"}, pipeline.removed)
}

func TestBulkApplyRollsBackOnAuditFailure(t *testing.T) {
	catalog := newFakeCatalog()
	var ids []string
	for i := 0; i < 3; i++ {
		a := catalog.addAsset(domain.Asset{
			Tag:    "A-10" + string(rune('0'+i)),
			Status: domain.StatusInStock,
		})
		ids = append(ids, a.ID)
	}
	// Second audit insert inside the transaction fails.
	catalog.failInsertEventAfter = 2
	svc, _, pipeline := newAssetService(catalog)

	_, err := svc.BulkApply(context.Background(), "actor", ids, domain.BulkDelete)
	require.Error(t, err)

	// Nothing committed: every row survives, no entries, no file removals.
	assert.Len(t, catalog.assets, 3)
	assert.Empty(t, catalog.events)
	assert.Empty(t, pipeline.removed)
}

func TestBulkApplyUnknownAction(t *testing.T) {
	catalog := newFakeCatalog()
	a := catalog.addAsset(domain.Asset{Tag: "A-100", Status: domain.StatusInStock})
	svc, _, _ := newAssetService(catalog)

	_, err := svc.BulkApply(context.Background(), "actor", []string{a.ID}, domain.BulkAction("EXPLODE"))
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}
