package service

import (
	"time"

	"github.com/pulseplan/pulseplan-api/internal/models"
)

// DefaultTableVersion tags the industry-default recommendation table so
// deployments can tell which constants produced a non-personalized slot
// set. Bump it when the table below changes.
const DefaultTableVersion = "v1"

// defaultConfidence marks default slots as moderately trustworthy while
// staying clearly distinguishable from saturated data-derived slots.
const defaultConfidence = 50

type defaultSlot struct {
	day    int
	hour   int
	minute int
	score  float64
}

// Industry-default posting times per platform, day 0 = Sunday. Applied
// only when a user has no engagement history at all.
var defaultSlotTable = map[models.Platform][]defaultSlot{
	models.PlatformInstagram: {
		{day: 1, hour: 12, minute: 0, score: 85},
		{day: 3, hour: 15, minute: 0, score: 80},
		{day: 5, hour: 17, minute: 30, score: 78},
		{day: 6, hour: 11, minute: 0, score: 75},
	},
	models.PlatformTwitter: {
		{day: 1, hour: 8, minute: 0, score: 82},
		{day: 2, hour: 12, minute: 0, score: 80},
		{day: 3, hour: 17, minute: 0, score: 76},
		{day: 5, hour: 9, minute: 30, score: 74},
	},
	models.PlatformFacebook: {
		{day: 2, hour: 13, minute: 0, score: 80},
		{day: 4, hour: 15, minute: 0, score: 78},
		{day: 5, hour: 10, minute: 30, score: 75},
		{day: 0, hour: 12, minute: 0, score: 72},
	},
	models.PlatformLinkedIn: {
		{day: 2, hour: 9, minute: 0, score: 84},
		{day: 3, hour: 12, minute: 0, score: 81},
		{day: 4, hour: 17, minute: 30, score: 77},
		{day: 6, hour: 10, minute: 0, score: 70},
	},
}

// DefaultSlots returns the fixed recommendation table for users with no
// analyzed history. Output is deterministic: platforms in their fixed
// order, entries in table order.
func DefaultSlots(now time.Time) []models.OptimalSlot {
	slots := make([]models.OptimalSlot, 0, 16)
	for _, platform := range models.Platforms {
		for _, entry := range defaultSlotTable[platform] {
			slots = append(slots, models.OptimalSlot{
				Platform:          platform,
				DayOfWeek:         entry.day,
				Hour:              entry.hour,
				Minute:            entry.minute,
				EngagementScore:   entry.score,
				ConfidenceLevel:   defaultConfidence,
				BasedOnPostsCount: 0,
				IsDefault:         true,
				LastUpdated:       now,
			})
		}
	}
	return slots
}
