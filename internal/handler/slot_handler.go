package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pulseplan/pulseplan-api/internal/models"
	appErrors "github.com/pulseplan/pulseplan-api/pkg/errors"
	"github.com/pulseplan/pulseplan-api/pkg/response"
)

type slotService interface {
	ListSlots(ctx context.Context, userID string, filter models.SlotFilter) ([]models.OptimalSlot, string, error)
	ExportSlots(ctx context.Context, userID, format string) ([]byte, string, string, error)
}

// SlotHandler serves ranked posting slot recommendations.
type SlotHandler struct {
	slots slotService
}

// NewSlotHandler constructs handler.
func NewSlotHandler(slots slotService) *SlotHandler {
	return &SlotHandler{slots: slots}
}

// List godoc
// @Summary Ranked posting slots
// @Tags Slots
// @Produce json
// @Param platform query string false "Platform filter"
// @Param day query int false "Day of week (0=Sunday)"
// @Param limit query int false "Maximum slots returned"
// @Success 200 {object} response.Envelope
// @Router /slots [get]
func (h *SlotHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter, err := parseSlotFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	slots, note, err := h.slots.ListSlots(c.Request.Context(), claims.UserID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	var meta map[string]interface{}
	if note != "" {
		meta = map[string]interface{}{"note": note}
	}
	response.JSON(c, http.StatusOK, slots, nil, meta)
}

// Export godoc
// @Summary Download the posting schedule report
// @Tags Slots
// @Produce text/csv
// @Produce application/pdf
// @Param format query string true "csv or pdf"
// @Success 200 {file} file
// @Router /slots/export [get]
func (h *SlotHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	format := c.DefaultQuery("format", "csv")
	data, contentType, filename, err := h.slots.ExportSlots(c.Request.Context(), claims.UserID, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

func parseSlotFilter(c *gin.Context) (models.SlotFilter, error) {
	var filter models.SlotFilter

	if raw := c.Query("platform"); raw != "" {
		platform, ok := models.ParsePlatform(raw)
		if !ok {
			return filter, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown platform %q", raw))
		}
		filter.Platform = &platform
	}
	if raw := c.Query("day"); raw != "" {
		day, err := strconv.Atoi(raw)
		if err != nil || day < 0 || day > 6 {
			return filter, appErrors.Clone(appErrors.ErrValidation, "day must be between 0 and 6")
		}
		filter.Day = &day
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return filter, appErrors.Clone(appErrors.ErrValidation, "limit must be a positive integer")
		}
		filter.Limit = limit
	}
	return filter, nil
}
