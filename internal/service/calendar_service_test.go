package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseplan/pulseplan-api/internal/dto"
	"github.com/pulseplan/pulseplan-api/internal/models"
	appErrors "github.com/pulseplan/pulseplan-api/pkg/errors"
)

type fakeCalendarStore struct {
	seq       int
	events    map[string]*models.CalendarEvent
	conflicts []models.ScheduleConflict

	conflictInsertErr error
	overlapErr        error
}

func newFakeCalendarStore() *fakeCalendarStore {
	return &fakeCalendarStore{events: map[string]*models.CalendarEvent{}}
}

func (f *fakeCalendarStore) List(_ context.Context, userID string, filter models.CalendarFilter) ([]models.CalendarEvent, int, error) {
	var out []models.CalendarEvent
	for _, event := range f.events {
		if event.UserID != userID {
			continue
		}
		if filter.Start != nil && !event.EndTime.After(*filter.Start) {
			continue
		}
		if filter.End != nil && !event.StartTime.Before(*filter.End) {
			continue
		}
		out = append(out, *event)
	}
	return out, len(out), nil
}

func (f *fakeCalendarStore) GetByID(_ context.Context, userID, id string) (*models.CalendarEvent, error) {
	event, ok := f.events[id]
	if !ok || event.UserID != userID {
		return nil, sql.ErrNoRows
	}
	copied := *event
	return &copied, nil
}

func (f *fakeCalendarStore) Create(_ context.Context, event *models.CalendarEvent) error {
	if event.ID == "" {
		f.seq++
		event.ID = fmt.Sprintf("event-%d", f.seq)
	}
	copied := *event
	f.events[event.ID] = &copied
	return nil
}

func (f *fakeCalendarStore) Update(_ context.Context, event *models.CalendarEvent) error {
	if _, ok := f.events[event.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *event
	f.events[event.ID] = &copied
	return nil
}

func (f *fakeCalendarStore) Delete(_ context.Context, userID, id string) error {
	event, ok := f.events[id]
	if !ok || event.UserID != userID {
		return sql.ErrNoRows
	}
	delete(f.events, id)
	return nil
}

func (f *fakeCalendarStore) ListOverlapping(_ context.Context, userID string, start, end time.Time, excludeID string) ([]models.CalendarEvent, error) {
	if f.overlapErr != nil {
		return nil, f.overlapErr
	}
	var out []models.CalendarEvent
	for _, event := range f.events {
		if event.UserID != userID || event.ID == excludeID {
			continue
		}
		// Strict overlap: touching boundaries do not collide.
		if event.StartTime.Before(end) && event.EndTime.After(start) {
			out = append(out, *event)
		}
	}
	return out, nil
}

func (f *fakeCalendarStore) InsertConflict(_ context.Context, conflict *models.ScheduleConflict) error {
	if f.conflictInsertErr != nil {
		return f.conflictInsertErr
	}
	f.conflicts = append(f.conflicts, *conflict)
	return nil
}

func (f *fakeCalendarStore) DeleteConflictsForEvent(_ context.Context, eventID string) error {
	var kept []models.ScheduleConflict
	for _, conflict := range f.conflicts {
		if conflict.EventID == eventID || conflict.ConflictingEventID == eventID {
			continue
		}
		kept = append(kept, conflict)
	}
	f.conflicts = kept
	return nil
}

func (f *fakeCalendarStore) ListConflictsForEvent(_ context.Context, userID, eventID string) ([]models.ScheduleConflict, error) {
	var out []models.ScheduleConflict
	for _, conflict := range f.conflicts {
		if conflict.UserID == userID && (conflict.EventID == eventID || conflict.ConflictingEventID == eventID) {
			out = append(out, conflict)
		}
	}
	return out, nil
}

func eventRequest(title string, start, end time.Time) *dto.CreateEventRequest {
	return &dto.CreateEventRequest{Title: title, StartTime: start, EndTime: end}
}

func TestCreateEventRejectsInvalidWindow(t *testing.T) {
	svc := NewCalendarService(newFakeCalendarStore(), nil, nil, 0)
	start := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	_, err := svc.CreateEvent(context.Background(), "user-1", eventRequest("post", start, start))
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)

	_, err = svc.CreateEvent(context.Background(), "user-1", eventRequest("post", start, start.Add(-time.Hour)))
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)

	_, err = svc.CreateEvent(context.Background(), "user-1", eventRequest("", start, start.Add(time.Hour)))
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestCreateEventDetectsOverlap(t *testing.T) {
	store := newFakeCalendarStore()
	svc := NewCalendarService(store, nil, nil, 0)
	start := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	first, err := svc.CreateEvent(context.Background(), "user-1", eventRequest("first", start, start.Add(time.Hour)))
	require.NoError(t, err)
	assert.Empty(t, first.Warning)
	assert.Empty(t, first.Conflicts)

	second, err := svc.CreateEvent(context.Background(), "user-1", eventRequest("second", start.Add(30*time.Minute), start.Add(90*time.Minute)))
	require.NoError(t, err)
	assert.NotEmpty(t, second.Warning)
	require.Len(t, second.Conflicts, 1)
	assert.Equal(t, first.Event.ID, second.Conflicts[0].ID)
	require.Len(t, store.conflicts, 1)
	assert.Equal(t, second.Event.ID, store.conflicts[0].EventID)
}

func TestCreateEventBoundaryTouchIsNotConflict(t *testing.T) {
	store := newFakeCalendarStore()
	svc := NewCalendarService(store, nil, nil, 0)
	start := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	_, err := svc.CreateEvent(context.Background(), "user-1", eventRequest("first", start, start.Add(time.Hour)))
	require.NoError(t, err)

	// Back-to-back events share an instant but not an interval.
	second, err := svc.CreateEvent(context.Background(), "user-1", eventRequest("second", start.Add(time.Hour), start.Add(2*time.Hour)))
	require.NoError(t, err)
	assert.Empty(t, second.Warning)
	assert.Empty(t, second.Conflicts)
	assert.Empty(t, store.conflicts)
}

func TestCreateEventIgnoresOtherUsers(t *testing.T) {
	store := newFakeCalendarStore()
	svc := NewCalendarService(store, nil, nil, 0)
	start := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	_, err := svc.CreateEvent(context.Background(), "user-1", eventRequest("theirs", start, start.Add(time.Hour)))
	require.NoError(t, err)

	mine, err := svc.CreateEvent(context.Background(), "user-2", eventRequest("mine", start, start.Add(time.Hour)))
	require.NoError(t, err)
	assert.Empty(t, mine.Conflicts)
}

func TestCreateEventConflictWriteFailureIsSuppressed(t *testing.T) {
	store := newFakeCalendarStore()
	svc := NewCalendarService(store, nil, nil, 0)
	start := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	_, err := svc.CreateEvent(context.Background(), "user-1", eventRequest("first", start, start.Add(time.Hour)))
	require.NoError(t, err)

	store.conflictInsertErr = errors.New("conflicts table gone")
	second, err := svc.CreateEvent(context.Background(), "user-1", eventRequest("second", start, start.Add(time.Hour)))
	require.NoError(t, err)
	// The warning still reaches the client even though persisting failed.
	assert.NotEmpty(t, second.Warning)
	require.Len(t, second.Conflicts, 1)
}

func TestCreateEventDetectionFailureStillPersists(t *testing.T) {
	store := newFakeCalendarStore()
	svc := NewCalendarService(store, nil, nil, 0)
	store.overlapErr = errors.New("query failed")
	start := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	resp, err := svc.CreateEvent(context.Background(), "user-1", eventRequest("post", start, start.Add(time.Hour)))
	require.NoError(t, err)
	assert.Empty(t, resp.Warning)
	assert.Len(t, store.events, 1)
}

func TestUpdateEventRefreshesConflicts(t *testing.T) {
	store := newFakeCalendarStore()
	svc := NewCalendarService(store, nil, nil, 0)
	start := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	_, err := svc.CreateEvent(context.Background(), "user-1", eventRequest("first", start, start.Add(time.Hour)))
	require.NoError(t, err)
	second, err := svc.CreateEvent(context.Background(), "user-1", eventRequest("second", start, start.Add(time.Hour)))
	require.NoError(t, err)
	require.Len(t, store.conflicts, 1)

	// Move the second event clear of the first; the stale row goes away.
	moved, err := svc.UpdateEvent(context.Background(), "user-1", second.Event.ID, &dto.UpdateEventRequest{
		Title:     "second",
		StartTime: start.Add(3 * time.Hour),
		EndTime:   start.Add(4 * time.Hour),
	})
	require.NoError(t, err)
	assert.Empty(t, moved.Warning)
	assert.Empty(t, store.conflicts)
}

func TestUpdateEventUnknownIsNotFound(t *testing.T) {
	svc := NewCalendarService(newFakeCalendarStore(), nil, nil, 0)
	start := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	_, err := svc.UpdateEvent(context.Background(), "user-1", "missing", &dto.UpdateEventRequest{
		Title:     "post",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestDeleteEventRemovesConflictRows(t *testing.T) {
	store := newFakeCalendarStore()
	svc := NewCalendarService(store, nil, nil, 0)
	start := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	_, err := svc.CreateEvent(context.Background(), "user-1", eventRequest("first", start, start.Add(time.Hour)))
	require.NoError(t, err)
	second, err := svc.CreateEvent(context.Background(), "user-1", eventRequest("second", start, start.Add(time.Hour)))
	require.NoError(t, err)
	require.Len(t, store.conflicts, 1)

	require.NoError(t, svc.DeleteEvent(context.Background(), "user-1", second.Event.ID))
	assert.Empty(t, store.conflicts)
	assert.Len(t, store.events, 1)

	err = svc.DeleteEvent(context.Background(), "user-1", second.Event.ID)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestGetEventResolvesConflictCounterparts(t *testing.T) {
	store := newFakeCalendarStore()
	svc := NewCalendarService(store, nil, nil, 0)
	start := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	first, err := svc.CreateEvent(context.Background(), "user-1", eventRequest("first", start, start.Add(time.Hour)))
	require.NoError(t, err)
	second, err := svc.CreateEvent(context.Background(), "user-1", eventRequest("second", start, start.Add(time.Hour)))
	require.NoError(t, err)

	// The conflict row was written from the second event's side, but it
	// must surface when reading the first event too.
	got, err := svc.GetEvent(context.Background(), "user-1", first.Event.ID)
	require.NoError(t, err)
	require.Len(t, got.Conflicts, 1)
	assert.Equal(t, second.Event.ID, got.Conflicts[0].ID)
	assert.NotEmpty(t, got.Warning)
}

func TestListEventsValidatesWindowAndPagination(t *testing.T) {
	store := newFakeCalendarStore()
	svc := NewCalendarService(store, nil, nil, 100)
	start := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	_, _, err := svc.ListEvents(context.Background(), "user-1", models.CalendarFilter{Start: &start, End: &end})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)

	_, pagination, err := svc.ListEvents(context.Background(), "user-1", models.CalendarFilter{PageSize: 5000})
	require.NoError(t, err)
	assert.Equal(t, 100, pagination.PageSize)
	assert.Equal(t, 1, pagination.Page)
}
