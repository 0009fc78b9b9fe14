package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pulseplan/pulseplan-api/internal/dto"
	"github.com/pulseplan/pulseplan-api/internal/models"
	appErrors "github.com/pulseplan/pulseplan-api/pkg/errors"
)

type calendarStore interface {
	List(ctx context.Context, userID string, filter models.CalendarFilter) ([]models.CalendarEvent, int, error)
	GetByID(ctx context.Context, userID, id string) (*models.CalendarEvent, error)
	Create(ctx context.Context, event *models.CalendarEvent) error
	Update(ctx context.Context, event *models.CalendarEvent) error
	Delete(ctx context.Context, userID, id string) error
	ListOverlapping(ctx context.Context, userID string, start, end time.Time, excludeID string) ([]models.CalendarEvent, error)
	InsertConflict(ctx context.Context, conflict *models.ScheduleConflict) error
	DeleteConflictsForEvent(ctx context.Context, eventID string) error
	ListConflictsForEvent(ctx context.Context, userID, eventID string) ([]models.ScheduleConflict, error)
}

// CalendarService manages scheduled posts and surfaces overlap warnings
// without ever blocking a write on them.
type CalendarService struct {
	events   calendarStore
	metrics  *MetricsService
	logger   *zap.Logger
	validate *validator.Validate

	maxPageSize int
	now         func() time.Time
}

// NewCalendarService constructs the calendar service.
func NewCalendarService(events calendarStore, metrics *MetricsService, logger *zap.Logger, maxPageSize int) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxPageSize <= 0 {
		maxPageSize = 200
	}
	return &CalendarService{
		events:      events,
		metrics:     metrics,
		logger:      logger,
		validate:    validator.New(),
		maxPageSize: maxPageSize,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// ListEvents returns the user's events for the given filter along with
// pagination metadata.
func (s *CalendarService) ListEvents(ctx context.Context, userID string, filter models.CalendarFilter) ([]models.CalendarEvent, *models.Pagination, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	if filter.PageSize > s.maxPageSize {
		filter.PageSize = s.maxPageSize
	}
	if filter.Start != nil && filter.End != nil && !filter.Start.Before(*filter.End) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "start must be before end")
	}

	events, total, err := s.events.List(ctx, userID, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return events, pagination, nil
}

// GetEvent returns one event with its recorded conflicts.
func (s *CalendarService) GetEvent(ctx context.Context, userID, id string) (*dto.EventResponse, error) {
	event, err := s.events.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}

	resp := &dto.EventResponse{Event: event}
	conflicts, err := s.events.ListConflictsForEvent(ctx, userID, id)
	if err != nil {
		s.logger.Sugar().Warnw("failed to list event conflicts", "event_id", id, "error", err)
		return resp, nil
	}
	if len(conflicts) > 0 {
		resp.Conflicts = s.resolveConflicts(ctx, userID, id, conflicts)
		resp.Warning = conflictWarning(len(resp.Conflicts))
	}
	return resp, nil
}

// CreateEvent validates and persists a new event, then checks the
// schedule for overlaps. Overlaps produce a warning, never an error.
func (s *CalendarService) CreateEvent(ctx context.Context, userID string, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	if err := validateWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	event := &models.CalendarEvent{
		UserID:         userID,
		Title:          req.Title,
		Description:    req.Description,
		StartTime:      req.StartTime.UTC(),
		EndTime:        req.EndTime.UTC(),
		AllDay:         req.AllDay,
		Platform:       req.Platform,
		Status:         normalizeEventStatus(req.Status),
		RecurrenceRule: req.RecurrenceRule,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}

	resp := &dto.EventResponse{Event: event}
	s.detectConflicts(ctx, event, resp)
	return resp, nil
}

// UpdateEvent rewrites an existing event and re-runs conflict detection
// against the new window.
func (s *CalendarService) UpdateEvent(ctx context.Context, userID, id string, req *dto.UpdateEventRequest) (*dto.EventResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	if err := validateWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	event, err := s.events.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}

	event.Title = req.Title
	event.Description = req.Description
	event.StartTime = req.StartTime.UTC()
	event.EndTime = req.EndTime.UTC()
	event.AllDay = req.AllDay
	event.Platform = req.Platform
	event.Status = normalizeEventStatus(req.Status)
	event.RecurrenceRule = req.RecurrenceRule

	if err := s.events.Update(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}

	// Stale conflict rows from the previous window are dropped before
	// the new window is checked.
	if err := s.events.DeleteConflictsForEvent(ctx, id); err != nil {
		s.logger.Sugar().Warnw("failed to clear prior conflicts", "event_id", id, "error", err)
	}

	resp := &dto.EventResponse{Event: event}
	s.detectConflicts(ctx, event, resp)
	return resp, nil
}

// DeleteEvent removes the event and every conflict row referencing it.
func (s *CalendarService) DeleteEvent(ctx context.Context, userID, id string) error {
	if err := s.events.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	if err := s.events.DeleteConflictsForEvent(ctx, id); err != nil {
		s.logger.Sugar().Warnw("failed to clear conflicts for deleted event", "event_id", id, "error", err)
	}
	return nil
}

// detectConflicts records overlaps for the event's window on the
// response. Detection failures are logged and suppressed so the write
// itself always stands.
func (s *CalendarService) detectConflicts(ctx context.Context, event *models.CalendarEvent, resp *dto.EventResponse) {
	overlapping, err := s.events.ListOverlapping(ctx, event.UserID, event.StartTime, event.EndTime, event.ID)
	if err != nil {
		s.logger.Sugar().Warnw("conflict detection failed", "event_id", event.ID, "error", err)
		return
	}
	if len(overlapping) == 0 {
		return
	}

	now := s.now()
	for _, other := range overlapping {
		conflict := &models.ScheduleConflict{
			UserID:             event.UserID,
			EventID:            event.ID,
			ConflictingEventID: other.ID,
			DetectedAt:         now,
		}
		if err := s.events.InsertConflict(ctx, conflict); err != nil {
			s.logger.Sugar().Warnw("failed to record conflict", "event_id", event.ID, "conflicting_event_id", other.ID, "error", err)
		}
	}

	resp.Conflicts = overlapping
	resp.Warning = conflictWarning(len(overlapping))
	s.metrics.RecordConflictsDetected(len(overlapping))
}

// resolveConflicts loads the counterpart events behind stored conflict
// rows, dropping rows whose counterpart has since been deleted.
func (s *CalendarService) resolveConflicts(ctx context.Context, userID, eventID string, conflicts []models.ScheduleConflict) []models.CalendarEvent {
	events := make([]models.CalendarEvent, 0, len(conflicts))
	for _, conflict := range conflicts {
		otherID := conflict.ConflictingEventID
		if otherID == eventID {
			otherID = conflict.EventID
		}
		other, err := s.events.GetByID(ctx, userID, otherID)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				s.logger.Sugar().Warnw("failed to load conflicting event", "event_id", otherID, "error", err)
			}
			continue
		}
		events = append(events, *other)
	}
	return events
}

func validateWindow(start, end time.Time) error {
	if !start.Before(end) {
		return appErrors.Clone(appErrors.ErrValidation, "start_time must be before end_time")
	}
	return nil
}

func normalizeEventStatus(status string) string {
	if status == "" {
		return "scheduled"
	}
	return status
}

func conflictWarning(n int) string {
	if n == 1 {
		return "this event overlaps 1 other scheduled event"
	}
	return fmt.Sprintf("this event overlaps %d other scheduled events", n)
}
