package service

import (
	"github.com/pulseplan/pulseplan-api/internal/models"
)

// bucketCell accumulates raw engagement for one grid position.
type bucketCell struct {
	Total int64
	Count int
}

// PlatformGrid is the dense aggregation for a single platform: hourly
// cells plus a quarter-hour breakdown used to pick the best minute
// within a chosen hour.
type PlatformGrid struct {
	Hours    [7][24]bucketCell
	Quarters [7][24][4]bucketCell
}

// EngagementGrid is the full per-platform aggregation of one user's
// history. ValidRecords counts the inputs that landed in a cell.
type EngagementGrid struct {
	Platforms    map[models.Platform]*PlatformGrid
	ValidRecords int
}

// AggregateEngagement buckets records by (platform, day-of-week, hour,
// quarter-hour) in UTC. Records with an unrecognized platform or a zero
// timestamp are skipped; every valid record increments exactly one
// hourly cell and one quarter cell.
func AggregateEngagement(records []models.EngagementRecord) *EngagementGrid {
	grid := &EngagementGrid{Platforms: make(map[models.Platform]*PlatformGrid, len(models.Platforms))}
	for _, platform := range models.Platforms {
		grid.Platforms[platform] = &PlatformGrid{}
	}

	for _, record := range records {
		platform, ok := models.ParsePlatform(record.Platform)
		if !ok {
			continue
		}
		if record.PostedAt.IsZero() {
			continue
		}

		ts := record.PostedAt.UTC()
		day := int(ts.Weekday())
		hour := ts.Hour()
		quarter := ts.Minute() / 15
		score := record.Score()

		cells := grid.Platforms[platform]
		cells.Hours[day][hour].Total += score
		cells.Hours[day][hour].Count++
		cells.Quarters[day][hour][quarter].Total += score
		cells.Quarters[day][hour][quarter].Count++
		grid.ValidRecords++
	}

	return grid
}
