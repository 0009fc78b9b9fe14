package dto

import (
	"time"

	"github.com/pulseplan/pulseplan-api/internal/models"
)

// Insights summarises a user's ranked slots in human-consumable form.
type Insights struct {
	BestDays            []string        `json:"bestDays"`
	BestHours           []int           `json:"bestHours"`
	BestPlatform        models.Platform `json:"bestPlatform,omitempty"`
	ProjectedEngagement float64         `json:"projectedEngagement"`
	SlotCount           int             `json:"slotCount"`
	DefaultsOnly        bool            `json:"defaultsOnly"`
	GeneratedAt         time.Time       `json:"generatedAt"`
}
