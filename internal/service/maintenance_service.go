package service

import (
	"context"
	"fmt"
	"time"

	"stockroom.io/stockroom/internal/domain"
	apperrors "stockroom.io/stockroom/internal/pkg/errors"
)

// MaintenanceStore is the persistence surface for maintenance scheduling.
type MaintenanceStore interface {
	CreateMaintenanceTask(ctx context.Context, t *domain.MaintenanceTask) error
	GetMaintenanceTask(ctx context.Context, id string) (*domain.MaintenanceTask, error)
	CompleteMaintenanceTask(ctx context.Context, t *domain.MaintenanceTask) error
	ListMaintenanceTasksForAsset(ctx context.Context, assetID string) ([]domain.MaintenanceTask, error)
	GetAsset(ctx context.Context, id string) (*domain.Asset, error)
}

// TaskInput carries the caller-supplied fields for scheduling a task.
type TaskInput struct {
	AssetID       string
	Title         string
	ScheduledDate time.Time
	Notes         string
}

// TaskView is a task together with its derived status. Status is computed
// at read time; it is never stored.
type TaskView struct {
	domain.MaintenanceTask
	Status domain.TaskStatus `json:"status"`
}

// MaintenanceService schedules and completes maintenance tasks.
type MaintenanceService struct {
	store   MaintenanceStore
	auditor Auditor
	now     func() time.Time
}

// NewMaintenanceService creates the maintenance service.
func NewMaintenanceService(s MaintenanceStore, auditor Auditor) *MaintenanceService {
	return &MaintenanceService{store: s, auditor: auditor, now: time.Now}
}

// Schedule creates a task against an existing asset and records it in the
// asset's history.
func (s *MaintenanceService) Schedule(ctx context.Context, actorID string, in TaskInput) (*TaskView, error) {
	var fieldErrs []apperrors.FieldError
	if in.Title == "" {
		fieldErrs = append(fieldErrs, apperrors.FieldError{
			Field: "title", Code: "REQUIRED", Message: "title is required",
		})
	}
	if in.ScheduledDate.IsZero() {
		fieldErrs = append(fieldErrs, apperrors.FieldError{
			Field: "scheduled_date", Code: "REQUIRED", Message: "scheduled date is required",
		})
	}
	if len(fieldErrs) > 0 {
		return nil, apperrors.Validation("maintenance task payload invalid", fieldErrs...)
	}

	asset, err := s.store.GetAsset(ctx, in.AssetID)
	if err != nil {
		return nil, mapStoreError(err, apperrors.ErrAssetNotFoundf(in.AssetID), nil)
	}

	t := &domain.MaintenanceTask{
		AssetID:       asset.ID,
		CreatedBy:     actorID,
		Title:         in.Title,
		ScheduledDate: in.ScheduledDate,
		Notes:         in.Notes,
	}
	if err := s.store.CreateMaintenanceTask(ctx, t); err != nil {
		return nil, mapStoreError(err, apperrors.ErrAssetNotFoundf(in.AssetID), nil)
	}

	s.auditor.RecordAssetEvent(ctx, asset.ID, actorID, domain.ActionUpdated,
		fmt.Sprintf("scheduled maintenance %q for %s", t.Title,
			t.ScheduledDate.Format("2006-01-02")))
	return s.view(t), nil
}

// Complete stamps a task's completion date. Completing an already-completed
// task is rejected rather than silently moving the date.
func (s *MaintenanceService) Complete(ctx context.Context, actorID, id, notes string) (*TaskView, error) {
	t, err := s.store.GetMaintenanceTask(ctx, id)
	if err != nil {
		return nil, mapStoreError(err,
			apperrors.NotFound(apperrors.CodeTaskNotFound, "maintenance task not found"), nil)
	}
	if t.CompletedDate != nil {
		return nil, apperrors.Validation(
			fmt.Sprintf("task %q was already completed on %s",
				t.Title, t.CompletedDate.Format("2006-01-02")))
	}

	done := s.now().UTC()
	t.CompletedDate = &done
	if notes != "" {
		t.Notes = notes
	}
	if err := s.store.CompleteMaintenanceTask(ctx, t); err != nil {
		return nil, mapStoreError(err,
			apperrors.NotFound(apperrors.CodeTaskNotFound, "maintenance task not found"), nil)
	}

	s.auditor.RecordAssetEvent(ctx, t.AssetID, actorID, domain.ActionUpdated,
		fmt.Sprintf("completed maintenance %q", t.Title))
	return s.view(t), nil
}

// ListForAsset returns the asset's tasks with derived statuses, soonest
// scheduled first.
func (s *MaintenanceService) ListForAsset(ctx context.Context, assetID string) ([]TaskView, error) {
	if _, err := s.store.GetAsset(ctx, assetID); err != nil {
		return nil, mapStoreError(err, apperrors.ErrAssetNotFoundf(assetID), nil)
	}
	tasks, err := s.store.ListMaintenanceTasksForAsset(ctx, assetID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	views := make([]TaskView, 0, len(tasks))
	for i := range tasks {
		views = append(views, *s.view(&tasks[i]))
	}
	return views, nil
}

func (s *MaintenanceService) view(t *domain.MaintenanceTask) *TaskView {
	return &TaskView{MaintenanceTask: *t, Status: t.StatusAt(s.now())}
}
