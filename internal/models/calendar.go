package models

import "time"

// CalendarEvent is a planned post or reminder on a user's schedule.
// The recurrence rule is stored opaquely and never expanded here.
type CalendarEvent struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	Title          string    `db:"title" json:"title"`
	Description    string    `db:"description" json:"description"`
	StartTime      time.Time `db:"start_time" json:"start_time"`
	EndTime        time.Time `db:"end_time" json:"end_time"`
	AllDay         bool      `db:"all_day" json:"all_day"`
	Platform       *string   `db:"platform" json:"platform,omitempty"`
	Status         string    `db:"status" json:"status"`
	RecurrenceRule *string   `db:"recurrence_rule" json:"recurrence_rule,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// ScheduleConflict links two events of the same user whose time windows
// overlap. Informational only; it never blocks a write.
type ScheduleConflict struct {
	ID                 string    `db:"id" json:"id"`
	UserID             string    `db:"user_id" json:"user_id"`
	EventID            string    `db:"event_id" json:"event_id"`
	ConflictingEventID string    `db:"conflicting_event_id" json:"conflicting_event_id"`
	DetectedAt         time.Time `db:"detected_at" json:"detected_at"`
}

// CalendarFilter narrows down event listings.
type CalendarFilter struct {
	Start    *time.Time
	End      *time.Time
	Platform string
	Status   string
	Page     int
	PageSize int
}
