package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pulseplan/pulseplan-api/internal/dto"
	"github.com/pulseplan/pulseplan-api/internal/models"
	appErrors "github.com/pulseplan/pulseplan-api/pkg/errors"
	"github.com/pulseplan/pulseplan-api/pkg/export"
)

// DefaultSlotsNote accompanies responses served from the default table.
const DefaultSlotsNote = "default recommendations - no engagement history analyzed yet"

type slotLister interface {
	ListByUser(ctx context.Context, userID string, filter models.SlotFilter) ([]models.OptimalSlot, error)
}

// SlotServiceConfig carries the read-path tunables.
type SlotServiceConfig struct {
	ScoreScale float64
	CacheTTL   time.Duration
}

// SlotService serves ranked slots and derived insights, falling back to
// the versioned default table for users with no analyzed history.
type SlotService struct {
	slots  slotLister
	cache  *CacheService
	logger *zap.Logger
	cfg    SlotServiceConfig
	csv    *export.CSVExporter
	pdf    *export.PDFExporter

	now func() time.Time
}

// NewSlotService constructs the slot read service.
func NewSlotService(slots slotLister, cache *CacheService, logger *zap.Logger, cfg SlotServiceConfig) *SlotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ScoreScale <= 0 {
		cfg.ScoreScale = 10.0
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &SlotService{
		slots:  slots,
		cache:  cache,
		logger: logger,
		cfg:    cfg,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type cachedSlots struct {
	Slots []models.OptimalSlot `json:"slots"`
	Note  string               `json:"note,omitempty"`
}

// ListSlots returns the user's ranked slots for the given filter. Users
// with no persisted slots get the default table, filtered the same way,
// with a note explaining the provenance.
func (s *SlotService) ListSlots(ctx context.Context, userID string, filter models.SlotFilter) ([]models.OptimalSlot, string, error) {
	key := s.slotsCacheKey(userID, filter)
	if s.cache.Enabled() {
		var cached cachedSlots
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Sugar().Warnw("slots cache read failed", "key", key, "error", err)
		}
		if hit {
			return cached.Slots, cached.Note, nil
		}
	}

	slots, err := s.slots.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slots")
	}

	note := ""
	if len(slots) == 0 {
		slots = filterSlots(DefaultSlots(s.now()), filter)
		for i := range slots {
			slots[i].UserID = userID
		}
		note = DefaultSlotsNote
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, key, cachedSlots{Slots: slots, Note: note}, s.cfg.CacheTTL); err != nil {
			s.logger.Sugar().Warnw("slots cache write failed", "key", key, "error", err)
		}
	}
	return slots, note, nil
}

// GetInsights summarises the user's current slots into digest form.
func (s *SlotService) GetInsights(ctx context.Context, userID string) (*dto.Insights, error) {
	key := fmt.Sprintf("insights:%s:%s", userID, DefaultTableVersion)
	if s.cache.Enabled() {
		var cached dto.Insights
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Sugar().Warnw("insights cache read failed", "key", key, "error", err)
		}
		if hit {
			return &cached, nil
		}
	}

	slots, _, err := s.ListSlots(ctx, userID, models.SlotFilter{})
	if err != nil {
		return nil, err
	}
	insights := BuildInsights(slots, s.cfg.ScoreScale, s.now())

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, key, insights, s.cfg.CacheTTL); err != nil {
			s.logger.Sugar().Warnw("insights cache write failed", "key", key, "error", err)
		}
	}
	return &insights, nil
}

// ExportSlots renders the user's slots as a downloadable report.
// Supported formats are "csv" and "pdf".
func (s *SlotService) ExportSlots(ctx context.Context, userID, format string) ([]byte, string, string, error) {
	slots, note, err := s.ListSlots(ctx, userID, models.SlotFilter{})
	if err != nil {
		return nil, "", "", err
	}

	report := buildSlotReport(slots, note)
	stamp := s.now().Format("2006-01-02")

	switch strings.ToLower(format) {
	case "csv":
		data, err := s.csv.Render(report)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return data, "text/csv", fmt.Sprintf("posting-schedule-%s.csv", stamp), nil
	case "pdf":
		data, err := s.pdf.Render(report)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return data, "application/pdf", fmt.Sprintf("posting-schedule-%s.pdf", stamp), nil
	default:
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func (s *SlotService) slotsCacheKey(userID string, filter models.SlotFilter) string {
	platform := "all"
	if filter.Platform != nil {
		platform = string(*filter.Platform)
	}
	day := "all"
	if filter.Day != nil {
		day = fmt.Sprintf("%d", *filter.Day)
	}
	return fmt.Sprintf("slots:%s:%s:%s:%d", userID, platform, day, filter.Limit)
}

func filterSlots(slots []models.OptimalSlot, filter models.SlotFilter) []models.OptimalSlot {
	out := make([]models.OptimalSlot, 0, len(slots))
	for _, slot := range slots {
		if filter.Platform != nil && slot.Platform != *filter.Platform {
			continue
		}
		if filter.Day != nil && slot.DayOfWeek != *filter.Day {
			continue
		}
		out = append(out, slot)
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out
}

func buildSlotReport(slots []models.OptimalSlot, note string) export.SlotReport {
	title := "Recommended Posting Schedule"
	if note != "" {
		title = "Recommended Posting Schedule (defaults)"
	}
	rows := make([]export.SlotReportRow, 0, len(slots))
	for _, slot := range slots {
		source := "analyzed"
		if slot.IsDefault {
			source = "default"
		}
		rows = append(rows, export.SlotReportRow{
			Platform:      string(slot.Platform),
			Day:           dayNames[slot.DayOfWeek%7],
			Time:          fmt.Sprintf("%02d:%02d", slot.Hour, slot.Minute),
			Score:         fmt.Sprintf("%.1f", slot.EngagementScore),
			Confidence:    fmt.Sprintf("%.0f%%", slot.ConfidenceLevel),
			PostsAnalyzed: fmt.Sprintf("%d", slot.BasedOnPostsCount),
			Source:        source,
		})
	}
	return export.SlotReport{Title: title, Rows: rows}
}
