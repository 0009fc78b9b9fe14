package models

import "time"

// TaskType categorises background analysis work.
type TaskType string

// TaskTypeEngagementAnalysis is the only task type this service runs.
const TaskTypeEngagementAnalysis TaskType = "engagement_analysis"

// TaskStatus captures the analysis task lifecycle.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Terminal reports whether no further transitions are allowed.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// Active reports whether the task still occupies the per-user slot.
func (s TaskStatus) Active() bool {
	return s == TaskStatusPending || s == TaskStatusInProgress
}

// AnalysisTask tracks one asynchronous aggregation+ranking run.
// At most one task per (user_id, task_type) may be active at a time.
type AnalysisTask struct {
	ID          string     `db:"id" json:"id"`
	UserID      string     `db:"user_id" json:"user_id"`
	TaskType    TaskType   `db:"task_type" json:"task_type"`
	Status      TaskStatus `db:"status" json:"status"`
	Details     string     `db:"details" json:"details"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}
