package domain

import "time"

// TaskStatus is the derived state of a maintenance task. It is computed at
// read time from the schedule and completion date, never stored.
type TaskStatus string

const (
	TaskPending   TaskStatus = "PENDING"
	TaskOverdue   TaskStatus = "OVERDUE"
	TaskCompleted TaskStatus = "COMPLETED"
)

// MaintenanceTask is a scheduled maintenance record for an asset.
type MaintenanceTask struct {
	ID            string     `json:"id"`
	AssetID       string     `json:"asset_id"`
	CreatedBy     string     `json:"created_by"`
	Title         string     `json:"title"`
	ScheduledDate time.Time  `json:"scheduled_date"`
	CompletedDate *time.Time `json:"completed_date,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// StatusAt derives the task status as of now. Completed wins over schedule;
// an incomplete task whose scheduled date has passed is overdue.
func (t *MaintenanceTask) StatusAt(now time.Time) TaskStatus {
	if t.CompletedDate != nil {
		return TaskCompleted
	}
	if t.ScheduledDate.Before(truncateToDay(now)) {
		return TaskOverdue
	}
	return TaskPending
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
