package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseplan/pulseplan-api/internal/dto"
	"github.com/pulseplan/pulseplan-api/internal/middleware"
	"github.com/pulseplan/pulseplan-api/internal/models"
	appErrors "github.com/pulseplan/pulseplan-api/pkg/errors"
	"github.com/pulseplan/pulseplan-api/pkg/response"
)

type analysisServiceMock struct {
	accepted   *dto.AnalysisAccepted
	already    bool
	requestErr error

	status    *dto.AnalysisStatusResponse
	statusErr error

	lastUserID string
	lastForce  bool
}

func (m *analysisServiceMock) RequestAnalysis(_ context.Context, userID string, force bool) (*dto.AnalysisAccepted, bool, error) {
	m.lastUserID = userID
	m.lastForce = force
	return m.accepted, m.already, m.requestErr
}

func (m *analysisServiceMock) GetStatus(_ context.Context, userID, taskID string) (*dto.AnalysisStatusResponse, error) {
	m.lastUserID = userID
	return m.status, m.statusErr
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func authenticate(c *gin.Context, userID string) {
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: userID})
}

func TestAnalysisHandlerRequestAccepted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &analysisServiceMock{
		accepted: &dto.AnalysisAccepted{TaskID: "task-1", Status: models.TaskStatusPending},
	}
	h := NewAnalysisHandler(mockSvc)

	payload, _ := json.Marshal(dto.AnalysisRequest{ForceRegenerate: true})
	c, w := newGinContext(http.MethodPost, "/analysis", payload)
	authenticate(c, "user-1")

	h.Request(c)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "user-1", mockSvc.lastUserID)
	assert.True(t, mockSvc.lastForce)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Nil(t, envelope.Error)
}

func TestAnalysisHandlerRequestAlreadyRunning(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &analysisServiceMock{
		accepted: &dto.AnalysisAccepted{TaskID: "task-1", Status: models.TaskStatusInProgress},
		already:  true,
	}
	h := NewAnalysisHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/analysis", nil)
	authenticate(c, "user-1")

	h.Request(c)
	require.Equal(t, http.StatusConflict, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrAnalysisActive.Code, envelope.Error.Code)
	// The payload still carries the active task for polling.
	data, _ := json.Marshal(envelope.Data)
	assert.Contains(t, string(data), "task-1")
}

func TestAnalysisHandlerRequestUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAnalysisHandler(&analysisServiceMock{})

	c, w := newGinContext(http.MethodPost, "/analysis", nil)
	h.Request(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAnalysisHandlerStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &analysisServiceMock{
		status: &dto.AnalysisStatusResponse{
			Task:        &models.AnalysisTask{ID: "task-1", Status: models.TaskStatusCompleted},
			IsCompleted: true,
			Message:     "Analysis complete. Fresh posting recommendations are ready.",
		},
	}
	h := NewAnalysisHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/analysis/status?taskId=task-1", nil)
	authenticate(c, "user-1")

	h.Status(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAnalysisHandlerStatusRequiresTaskID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAnalysisHandler(&analysisServiceMock{})

	c, w := newGinContext(http.MethodGet, "/analysis/status", nil)
	authenticate(c, "user-1")

	h.Status(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalysisHandlerStatusNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &analysisServiceMock{
		statusErr: appErrors.Clone(appErrors.ErrNotFound, "analysis task not found"),
	}
	h := NewAnalysisHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/analysis/status?taskId=other", nil)
	authenticate(c, "user-1")

	h.Status(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}
