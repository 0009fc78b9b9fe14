package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pulseplan/pulseplan-api/internal/dto"
	appErrors "github.com/pulseplan/pulseplan-api/pkg/errors"
	"github.com/pulseplan/pulseplan-api/pkg/response"
)

type insightService interface {
	GetInsights(ctx context.Context, userID string) (*dto.Insights, error)
}

// InsightHandler serves summarised engagement insights.
type InsightHandler struct {
	slots insightService
}

// NewInsightHandler constructs handler.
func NewInsightHandler(slots insightService) *InsightHandler {
	return &InsightHandler{slots: slots}
}

// Get godoc
// @Summary Engagement insights digest
// @Tags Insights
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /insights [get]
func (h *InsightHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	insights, err := h.slots.GetInsights(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, insights, nil)
}
