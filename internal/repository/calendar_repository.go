package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pulseplan/pulseplan-api/internal/models"
)

const calendarEventColumns = "id, user_id, title, description, start_time, end_time, all_day, platform, status, recurrence_rule, created_at, updated_at"

// CalendarRepository persists calendar events and conflict links.
type CalendarRepository struct {
	db *sqlx.DB
}

// NewCalendarRepository constructs the repository.
func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// List returns the user's events matching filters.
func (r *CalendarRepository) List(ctx context.Context, userID string, filter models.CalendarFilter) ([]models.CalendarEvent, int, error) {
	where := []string{"user_id = $1"}
	args := []interface{}{userID}
	if filter.Start != nil {
		where = append(where, fmt.Sprintf("end_time >= $%d", len(args)+1))
		args = append(args, *filter.Start)
	}
	if filter.End != nil {
		where = append(where, fmt.Sprintf("start_time <= $%d", len(args)+1))
		args = append(args, *filter.End)
	}
	if filter.Platform != "" {
		where = append(where, fmt.Sprintf("platform = $%d", len(args)+1))
		args = append(args, filter.Platform)
	}
	if filter.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM calendar_events WHERE %s ORDER BY start_time ASC LIMIT %d OFFSET %d`,
		calendarEventColumns, whereClause, size, offset)
	var events []models.CalendarEvent
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list calendar events: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM calendar_events WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count calendar events: %w", err)
	}
	return events, total, nil
}

// GetByID fetches one of the user's events.
func (r *CalendarRepository) GetByID(ctx context.Context, userID, id string) (*models.CalendarEvent, error) {
	query := fmt.Sprintf("SELECT %s FROM calendar_events WHERE id = $1 AND user_id = $2", calendarEventColumns)
	var event models.CalendarEvent
	if err := r.db.GetContext(ctx, &event, query, id, userID); err != nil {
		return nil, err
	}
	return &event, nil
}

// Create inserts a calendar event.
func (r *CalendarRepository) Create(ctx context.Context, event *models.CalendarEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now
	const query = `INSERT INTO calendar_events (id, user_id, title, description, start_time, end_time, all_day, platform, status, recurrence_rule, created_at, updated_at)
VALUES (:id, :user_id, :title, :description, :start_time, :end_time, :all_day, :platform, :status, :recurrence_rule, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create calendar event: %w", err)
	}
	return nil
}

// Update modifies an event.
func (r *CalendarRepository) Update(ctx context.Context, event *models.CalendarEvent) error {
	event.UpdatedAt = time.Now().UTC()
	const query = `UPDATE calendar_events SET title = :title, description = :description, start_time = :start_time,
end_time = :end_time, all_day = :all_day, platform = :platform, status = :status, recurrence_rule = :recurrence_rule, updated_at = :updated_at
WHERE id = :id AND user_id = :user_id`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("update calendar event: %w", err)
	}
	return nil
}

// Delete removes an event. sql.ErrNoRows reports an unknown or foreign id.
func (r *CalendarRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM calendar_events WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("delete calendar event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete calendar event: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListOverlapping returns the user's other events whose window strictly
// overlaps [start, end). Events that merely touch at a boundary are not
// overlapping.
func (r *CalendarRepository) ListOverlapping(ctx context.Context, userID string, start, end time.Time, excludeID string) ([]models.CalendarEvent, error) {
	query := fmt.Sprintf(`SELECT %s FROM calendar_events
WHERE user_id = $1 AND start_time < $2 AND end_time > $3 AND id <> $4 ORDER BY start_time ASC`, calendarEventColumns)
	var events []models.CalendarEvent
	if err := r.db.SelectContext(ctx, &events, query, userID, end, start, excludeID); err != nil {
		return nil, fmt.Errorf("list overlapping events: %w", err)
	}
	return events, nil
}

// InsertConflict persists one conflict link.
func (r *CalendarRepository) InsertConflict(ctx context.Context, conflict *models.ScheduleConflict) error {
	if conflict.ID == "" {
		conflict.ID = uuid.NewString()
	}
	if conflict.DetectedAt.IsZero() {
		conflict.DetectedAt = time.Now().UTC()
	}
	const query = `INSERT INTO schedule_conflicts (id, user_id, event_id, conflicting_event_id, detected_at)
VALUES (:id, :user_id, :event_id, :conflicting_event_id, :detected_at)`
	if _, err := r.db.NamedExecContext(ctx, query, conflict); err != nil {
		return fmt.Errorf("insert schedule conflict: %w", err)
	}
	return nil
}

// DeleteConflictsForEvent removes conflict links referencing the event
// from either side.
func (r *CalendarRepository) DeleteConflictsForEvent(ctx context.Context, eventID string) error {
	const query = `DELETE FROM schedule_conflicts WHERE event_id = $1 OR conflicting_event_id = $1`
	if _, err := r.db.ExecContext(ctx, query, eventID); err != nil {
		return fmt.Errorf("delete schedule conflicts: %w", err)
	}
	return nil
}

// ListConflictsForEvent returns stored conflict links for inspection.
func (r *CalendarRepository) ListConflictsForEvent(ctx context.Context, userID, eventID string) ([]models.ScheduleConflict, error) {
	const query = `SELECT id, user_id, event_id, conflicting_event_id, detected_at
FROM schedule_conflicts WHERE user_id = $1 AND (event_id = $2 OR conflicting_event_id = $2) ORDER BY detected_at ASC`
	var conflicts []models.ScheduleConflict
	if err := r.db.SelectContext(ctx, &conflicts, query, userID, eventID); err != nil {
		return nil, fmt.Errorf("list schedule conflicts: %w", err)
	}
	return conflicts, nil
}
