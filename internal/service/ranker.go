package service

import (
	"sort"
	"time"

	"github.com/pulseplan/pulseplan-api/internal/models"
)

// RankerConfig carries the scoring tunables.
type RankerConfig struct {
	// ScoreScale divides a bucket's average engagement before capping at 100.
	ScoreScale float64
	// ConfidenceSamples is the sample count at which confidence saturates.
	ConfidenceSamples int
	// TopSlotsPerDay bounds selections per (platform, day).
	TopSlotsPerDay int
}

func (c RankerConfig) withDefaults() RankerConfig {
	if c.ScoreScale <= 0 {
		c.ScoreScale = 10
	}
	if c.ConfidenceSamples <= 0 {
		c.ConfidenceSamples = 10
	}
	if c.TopSlotsPerDay <= 0 {
		c.TopSlotsPerDay = 3
	}
	return c
}

type hourCandidate struct {
	hour    int
	average float64
	count   int
}

// RankSlots converts an aggregated grid into ranked recommendations:
// per (platform, day) the top hours by average engagement, ties broken
// by higher raw count then earlier hour. A user with no valid history
// gets the industry-default table instead of an empty result.
func RankSlots(grid *EngagementGrid, cfg RankerConfig, now time.Time) []models.OptimalSlot {
	cfg = cfg.withDefaults()

	if grid == nil || grid.ValidRecords == 0 {
		return DefaultSlots(now)
	}

	var slots []models.OptimalSlot
	for _, platform := range models.Platforms {
		cells := grid.Platforms[platform]
		if cells == nil {
			continue
		}
		for day := 0; day < 7; day++ {
			candidates := make([]hourCandidate, 0, 24)
			for hour := 0; hour < 24; hour++ {
				cell := cells.Hours[day][hour]
				if cell.Count == 0 {
					continue
				}
				candidates = append(candidates, hourCandidate{
					hour:    hour,
					average: float64(cell.Total) / float64(cell.Count),
					count:   cell.Count,
				})
			}
			if len(candidates) == 0 {
				continue
			}
			sort.Slice(candidates, func(i, j int) bool {
				if candidates[i].average != candidates[j].average {
					return candidates[i].average > candidates[j].average
				}
				if candidates[i].count != candidates[j].count {
					return candidates[i].count > candidates[j].count
				}
				return candidates[i].hour < candidates[j].hour
			})
			if len(candidates) > cfg.TopSlotsPerDay {
				candidates = candidates[:cfg.TopSlotsPerDay]
			}

			for _, candidate := range candidates {
				slots = append(slots, models.OptimalSlot{
					Platform:          platform,
					DayOfWeek:         day,
					Hour:              candidate.hour,
					Minute:            bestMinute(cells.Quarters[day][candidate.hour]),
					EngagementScore:   normalizeScore(candidate.average, cfg.ScoreScale),
					ConfidenceLevel:   confidenceLevel(candidate.count, cfg.ConfidenceSamples),
					BasedOnPostsCount: candidate.count,
					IsDefault:         false,
					LastUpdated:       now,
				})
			}
		}
	}

	return slots
}

// bestMinute picks the quarter-hour with the highest average engagement
// inside the chosen hour, earliest quarter on ties.
func bestMinute(quarters [4]bucketCell) int {
	best := 0
	bestAverage := float64(-1)
	for q, cell := range quarters {
		if cell.Count == 0 {
			continue
		}
		average := float64(cell.Total) / float64(cell.Count)
		if average > bestAverage {
			bestAverage = average
			best = q
		}
	}
	return best * 15
}

// normalizeScore maps an absolute average onto 0-100 so scores stay
// comparable across users with different engagement volumes.
func normalizeScore(average, scale float64) float64 {
	score := average / scale
	if score > 100 {
		return 100
	}
	return score
}

func confidenceLevel(count, saturation int) float64 {
	confidence := float64(count) / float64(saturation) * 100
	if confidence > 100 {
		return 100
	}
	return confidence
}
