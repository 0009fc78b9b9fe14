package service

import (
	"sort"
	"time"

	"github.com/pulseplan/pulseplan-api/internal/dto"
	"github.com/pulseplan/pulseplan-api/internal/models"
)

var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// BuildInsights derives summary insights from a ranked slot list: the
// most frequent days and hours among top slots, the platform with the
// highest summed score, and a projected total engagement figure. Purely
// derived; no state of its own.
func BuildInsights(slots []models.OptimalSlot, scoreScale float64, now time.Time) dto.Insights {
	if scoreScale <= 0 {
		scoreScale = 10
	}

	insights := dto.Insights{
		SlotCount:    len(slots),
		DefaultsOnly: len(slots) > 0,
		GeneratedAt:  now,
	}

	dayFreq := map[int]int{}
	hourFreq := map[int]int{}
	platformScore := map[models.Platform]float64{}
	for _, slot := range slots {
		dayFreq[slot.DayOfWeek]++
		hourFreq[slot.Hour]++
		platformScore[slot.Platform] += slot.EngagementScore
		// De-normalized score recovers the bucket's expected hourly engagement.
		insights.ProjectedEngagement += slot.EngagementScore * scoreScale
		if !slot.IsDefault {
			insights.DefaultsOnly = false
		}
	}

	for _, day := range topKeys(dayFreq, 3) {
		insights.BestDays = append(insights.BestDays, dayNames[day])
	}
	insights.BestHours = topKeys(hourFreq, 3)

	var bestPlatform models.Platform
	bestScore := float64(-1)
	for _, platform := range models.Platforms {
		score, ok := platformScore[platform]
		if !ok {
			continue
		}
		if score > bestScore {
			bestScore = score
			bestPlatform = platform
		}
	}
	insights.BestPlatform = bestPlatform

	return insights
}

// topKeys returns up to n keys ordered by descending frequency, then
// ascending key for determinism.
func topKeys(freq map[int]int, n int) []int {
	keys := make([]int, 0, len(freq))
	for key := range freq {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if freq[keys[i]] != freq[keys[j]] {
			return freq[keys[i]] > freq[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
