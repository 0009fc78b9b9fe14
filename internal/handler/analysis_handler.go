package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pulseplan/pulseplan-api/internal/dto"
	appErrors "github.com/pulseplan/pulseplan-api/pkg/errors"
	"github.com/pulseplan/pulseplan-api/pkg/response"
)

type analysisService interface {
	RequestAnalysis(ctx context.Context, userID string, force bool) (*dto.AnalysisAccepted, bool, error)
	GetStatus(ctx context.Context, userID, taskID string) (*dto.AnalysisStatusResponse, error)
}

// AnalysisHandler exposes the asynchronous analysis endpoints.
type AnalysisHandler struct {
	analysis analysisService
}

// NewAnalysisHandler constructs handler.
func NewAnalysisHandler(analysis analysisService) *AnalysisHandler {
	return &AnalysisHandler{analysis: analysis}
}

// Request godoc
// @Summary Request an engagement analysis run
// @Tags Analysis
// @Accept json
// @Produce json
// @Param request body dto.AnalysisRequest false "Options"
// @Success 202 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /analysis [post]
func (h *AnalysisHandler) Request(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.AnalysisRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
			return
		}
	}

	accepted, alreadyRunning, err := h.analysis.RequestAnalysis(c.Request.Context(), claims.UserID, req.ForceRegenerate)
	if err != nil {
		response.Error(c, err)
		return
	}
	if alreadyRunning {
		// Not a fault: the payload carries the active task id so the
		// client can poll it instead.
		response.ErrorWithData(c, appErrors.ErrAnalysisActive, accepted)
		return
	}
	response.Accepted(c, accepted)
}

// Status godoc
// @Summary Poll an analysis task
// @Tags Analysis
// @Produce json
// @Param taskId query string true "Task ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /analysis/status [get]
func (h *AnalysisHandler) Status(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	taskID := c.Query("taskId")
	if taskID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "taskId required"))
		return
	}

	status, err := h.analysis.GetStatus(c.Request.Context(), claims.UserID, taskID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}
