package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pulseplan/pulseplan-api/internal/models"
)

// TaskRepository persists analysis task state.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository constructs the repository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task row with generated defaults.
func (r *TaskRepository) Create(ctx context.Context, task *models.AnalysisTask) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Status == "" {
		task.Status = models.TaskStatusPending
	}
	if task.TaskType == "" {
		task.TaskType = models.TaskTypeEngagementAnalysis
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO analysis_tasks (id, user_id, task_type, status, details, created_at, completed_at)
VALUES (:id, :user_id, :task_type, :status, :details, :created_at, :completed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, task); err != nil {
		return fmt.Errorf("create analysis task: %w", err)
	}
	return nil
}

// GetByID returns a task row by its identifier.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*models.AnalysisTask, error) {
	const query = `SELECT id, user_id, task_type, status, details, created_at, completed_at
FROM analysis_tasks WHERE id = $1`
	var task models.AnalysisTask
	if err := r.db.GetContext(ctx, &task, query, id); err != nil {
		return nil, err
	}
	return &task, nil
}

// GetActiveByUser returns the user's pending or in-progress task, if any.
// sql.ErrNoRows signals no active task.
func (r *TaskRepository) GetActiveByUser(ctx context.Context, userID string, taskType models.TaskType) (*models.AnalysisTask, error) {
	const query = `SELECT id, user_id, task_type, status, details, created_at, completed_at
FROM analysis_tasks WHERE user_id = $1 AND task_type = $2 AND status IN ('pending', 'in_progress')
ORDER BY created_at DESC LIMIT 1`
	var task models.AnalysisTask
	if err := r.db.GetContext(ctx, &task, query, userID, taskType); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateStatus transitions a task. Terminal rows are excluded in the
// predicate so completed/failed tasks can never be rewritten; hitting
// one reports sql.ErrNoRows.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id string, status models.TaskStatus, details string, completedAt *time.Time) error {
	const query = `UPDATE analysis_tasks SET status = $1, details = $2, completed_at = $3
WHERE id = $4 AND status NOT IN ('completed', 'failed')`
	result, err := r.db.ExecContext(ctx, query, status, details, completedAt, id)
	if err != nil {
		return fmt.Errorf("update analysis task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update analysis task: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FailStaleInProgress marks tasks stuck in_progress since before the
// cutoff as failed. Returns the number of rows rewritten.
func (r *TaskRepository) FailStaleInProgress(ctx context.Context, cutoff time.Time, details string) (int64, error) {
	now := time.Now().UTC()
	const query = `UPDATE analysis_tasks SET status = 'failed', details = $1, completed_at = $2
WHERE status = 'in_progress' AND created_at < $3`
	result, err := r.db.ExecContext(ctx, query, details, now, cutoff)
	if err != nil {
		return 0, fmt.Errorf("fail stale tasks: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("fail stale tasks: %w", err)
	}
	return affected, nil
}

// ListPending fetches pending tasks (used for cold start recovery).
func (r *TaskRepository) ListPending(ctx context.Context, limit int) ([]models.AnalysisTask, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `SELECT id, user_id, task_type, status, details, created_at, completed_at
FROM analysis_tasks WHERE status = 'pending' ORDER BY created_at ASC LIMIT $1`
	var tasks []models.AnalysisTask
	if err := r.db.SelectContext(ctx, &tasks, query, limit); err != nil {
		return nil, fmt.Errorf("list pending tasks: %w", err)
	}
	return tasks, nil
}
