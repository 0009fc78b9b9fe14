package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseplan/pulseplan-api/internal/models"
	"github.com/pulseplan/pulseplan-api/internal/service"
	"github.com/pulseplan/pulseplan-api/pkg/response"
)

type slotServiceMock struct {
	slots []models.OptimalSlot
	note  string
	err   error

	exportData []byte
	exportType string
	exportName string
	exportErr  error

	lastFilter models.SlotFilter
	lastFormat string
}

func (m *slotServiceMock) ListSlots(_ context.Context, _ string, filter models.SlotFilter) ([]models.OptimalSlot, string, error) {
	m.lastFilter = filter
	return m.slots, m.note, m.err
}

func (m *slotServiceMock) ExportSlots(_ context.Context, _ string, format string) ([]byte, string, string, error) {
	m.lastFormat = format
	return m.exportData, m.exportType, m.exportName, m.exportErr
}

func TestSlotHandlerListParsesFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &slotServiceMock{slots: []models.OptimalSlot{{Platform: models.PlatformInstagram, Hour: 18}}}
	h := NewSlotHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/slots?platform=instagram&day=3&limit=5", nil)
	authenticate(c, "user-1")

	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mockSvc.lastFilter.Platform)
	assert.Equal(t, models.PlatformInstagram, *mockSvc.lastFilter.Platform)
	require.NotNil(t, mockSvc.lastFilter.Day)
	assert.Equal(t, 3, *mockSvc.lastFilter.Day)
	assert.Equal(t, 5, mockSvc.lastFilter.Limit)
}

func TestSlotHandlerListDefaultNoteInMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &slotServiceMock{note: service.DefaultSlotsNote}
	h := NewSlotHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/slots", nil)
	authenticate(c, "user-1")

	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Meta)
	assert.Equal(t, service.DefaultSlotsNote, envelope.Meta["note"])
}

func TestSlotHandlerListRejectsBadFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewSlotHandler(&slotServiceMock{})

	c, w := newGinContext(http.MethodGet, "/slots?platform=myspace", nil)
	authenticate(c, "user-1")
	h.List(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newGinContext(http.MethodGet, "/slots?day=9", nil)
	authenticate(c, "user-1")
	h.List(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSlotHandlerExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &slotServiceMock{
		exportData: []byte("Platform,Day\n"),
		exportType: "text/csv",
		exportName: "posting-schedule-2025-07-01.csv",
	}
	h := NewSlotHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/slots/export?format=csv", nil)
	authenticate(c, "user-1")

	h.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", mockSvc.lastFormat)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "posting-schedule-2025-07-01.csv")
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
}
