package store

import (
	"context"
	"fmt"

	"stockroom.io/stockroom/internal/domain"
	apperrors "stockroom.io/stockroom/internal/pkg/errors"
)

// CreateMaintenanceTask inserts a maintenance schedule record.
func (s *Store) CreateMaintenanceTask(ctx context.Context, t *domain.MaintenanceTask) error {
	if t.ID == "" {
		t.ID = newID()
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO maintenance_tasks (id, asset_id, created_by, title,
			scheduled_date, completed_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		t.ID, t.AssetID, t.CreatedBy, t.Title, t.ScheduledDate, t.CompletedDate, t.Notes,
	)
	if err := row.Scan(&t.CreatedAt); err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("insert maintenance task for asset %s: %w", t.AssetID, apperrors.ErrNotFound)
		}
		return fmt.Errorf("insert maintenance task: %w", err)
	}
	return nil
}

// GetMaintenanceTask fetches one task by id.
func (s *Store) GetMaintenanceTask(ctx context.Context, id string) (*domain.MaintenanceTask, error) {
	var t domain.MaintenanceTask
	err := s.db.QueryRow(ctx, `
		SELECT id, asset_id, created_by, title, scheduled_date, completed_date,
			notes, created_at
		FROM maintenance_tasks WHERE id = $1`, id).
		Scan(&t.ID, &t.AssetID, &t.CreatedBy, &t.Title, &t.ScheduledDate,
			&t.CompletedDate, &t.Notes, &t.CreatedAt)
	if err != nil {
		return nil, mapRowError(err, "get maintenance task "+id)
	}
	return &t, nil
}

// CompleteMaintenanceTask stamps the completion date and notes.
func (s *Store) CompleteMaintenanceTask(ctx context.Context, t *domain.MaintenanceTask) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE maintenance_tasks SET completed_date = $2, notes = $3 WHERE id = $1`,
		t.ID, t.CompletedDate, t.Notes,
	)
	if err != nil {
		return fmt.Errorf("complete maintenance task %s: %w", t.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("complete maintenance task %s: %w", t.ID, apperrors.ErrNotFound)
	}
	return nil
}

// ListMaintenanceTasksForAsset returns the asset's tasks, soonest first.
func (s *Store) ListMaintenanceTasksForAsset(ctx context.Context, assetID string) ([]domain.MaintenanceTask, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, asset_id, created_by, title, scheduled_date, completed_date,
			notes, created_at
		FROM maintenance_tasks WHERE asset_id = $1
		ORDER BY scheduled_date`, assetID)
	if err != nil {
		return nil, fmt.Errorf("list maintenance tasks for asset %s: %w", assetID, err)
	}
	defer rows.Close()

	var tasks []domain.MaintenanceTask
	for rows.Next() {
		var t domain.MaintenanceTask
		err := rows.Scan(&t.ID, &t.AssetID, &t.CreatedBy, &t.Title,
			&t.ScheduledDate, &t.CompletedDate, &t.Notes, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan maintenance task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
