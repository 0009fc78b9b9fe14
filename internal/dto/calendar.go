package dto

import (
	"time"

	"github.com/pulseplan/pulseplan-api/internal/models"
)

// CreateEventRequest describes the POST /events payload.
type CreateEventRequest struct {
	Title          string    `json:"title" validate:"required"`
	Description    string    `json:"description"`
	StartTime      time.Time `json:"start_time" validate:"required"`
	EndTime        time.Time `json:"end_time" validate:"required"`
	AllDay         bool      `json:"all_day"`
	Platform       *string   `json:"platform,omitempty"`
	Status         string    `json:"status"`
	RecurrenceRule *string   `json:"recurrence_rule,omitempty"`
}

// UpdateEventRequest describes the PUT /events/:id payload.
type UpdateEventRequest struct {
	Title          string    `json:"title" validate:"required"`
	Description    string    `json:"description"`
	StartTime      time.Time `json:"start_time" validate:"required"`
	EndTime        time.Time `json:"end_time" validate:"required"`
	AllDay         bool      `json:"all_day"`
	Platform       *string   `json:"platform,omitempty"`
	Status         string    `json:"status"`
	RecurrenceRule *string   `json:"recurrence_rule,omitempty"`
}

// EventResponse pairs a persisted event with any detected conflicts.
// Warning is set when the write succeeded but overlaps exist.
type EventResponse struct {
	Event     *models.CalendarEvent  `json:"event"`
	Warning   string                 `json:"warning,omitempty"`
	Conflicts []models.CalendarEvent `json:"conflicts,omitempty"`
}
