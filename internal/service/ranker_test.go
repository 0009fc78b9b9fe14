package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseplan/pulseplan-api/internal/models"
)

func rankNow() time.Time {
	return time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
}

func TestRankSlotsEmptyHistoryFallsBackToDefaults(t *testing.T) {
	now := rankNow()
	slots := RankSlots(AggregateEngagement(nil), RankerConfig{}, now)

	defaults := DefaultSlots(now)
	require.Equal(t, len(defaults), len(slots))
	for i, slot := range slots {
		assert.True(t, slot.IsDefault)
		assert.Equal(t, float64(defaultConfidence), slot.ConfidenceLevel)
		assert.Equal(t, 0, slot.BasedOnPostsCount)
		assert.Equal(t, defaults[i], slot)
	}
}

func TestRankSlotsSingleDominantHour(t *testing.T) {
	// 12 posts on Monday between 18:00 and 18:14, 50 engagement each.
	posted := time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC)
	records := make([]models.EngagementRecord, 0, 12)
	for i := 0; i < 12; i++ {
		records = append(records, models.EngagementRecord{
			Platform: "instagram",
			PostedAt: posted.Add(time.Duration(i) * time.Minute),
			Likes:    30,
			Comments: 15,
			Shares:   5,
		})
	}

	slots := RankSlots(AggregateEngagement(records), RankerConfig{}, rankNow())
	require.Len(t, slots, 1)

	slot := slots[0]
	assert.Equal(t, models.PlatformInstagram, slot.Platform)
	assert.Equal(t, 1, slot.DayOfWeek)
	assert.Equal(t, 18, slot.Hour)
	assert.Equal(t, 0, slot.Minute)
	assert.InDelta(t, 5.0, slot.EngagementScore, 1e-9)
	assert.Equal(t, float64(100), slot.ConfidenceLevel)
	assert.Equal(t, 12, slot.BasedOnPostsCount)
	assert.False(t, slot.IsDefault)
}

func TestRankSlotsTopNPerDayAndTieBreaks(t *testing.T) {
	posted := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC) // Tuesday
	var records []models.EngagementRecord
	add := func(hour int, likes int64, n int) {
		for i := 0; i < n; i++ {
			records = append(records, models.EngagementRecord{
				Platform: "twitter",
				PostedAt: posted.Add(time.Duration(hour) * time.Hour),
				Likes:    likes,
			})
		}
	}
	add(8, 100, 1)  // avg 100
	add(9, 90, 2)   // avg 90
	add(10, 80, 1)  // avg 80, count 1
	add(11, 80, 3)  // avg 80, count 3: wins the tie on count
	add(12, 10, 5)  // avg 10, below the cut

	slots := RankSlots(AggregateEngagement(records), RankerConfig{TopSlotsPerDay: 3}, rankNow())
	require.Len(t, slots, 3)

	assert.Equal(t, 8, slots[0].Hour)
	assert.Equal(t, 9, slots[1].Hour)
	assert.Equal(t, 11, slots[2].Hour)
	for _, slot := range slots {
		assert.Equal(t, 2, slot.DayOfWeek)
	}
}

func TestRankSlotsEqualCountTieBreaksOnEarlierHour(t *testing.T) {
	posted := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC) // Wednesday
	records := []models.EngagementRecord{
		{Platform: "linkedin", PostedAt: posted.Add(14 * time.Hour), Likes: 60},
		{Platform: "linkedin", PostedAt: posted.Add(9 * time.Hour), Likes: 60},
	}

	slots := RankSlots(AggregateEngagement(records), RankerConfig{TopSlotsPerDay: 1}, rankNow())
	require.Len(t, slots, 1)
	assert.Equal(t, 9, slots[0].Hour)
}

func TestRankSlotsBestMinuteFromQuarters(t *testing.T) {
	base := time.Date(2025, 6, 6, 20, 0, 0, 0, time.UTC) // Friday 20:00
	records := []models.EngagementRecord{
		{Platform: "facebook", PostedAt: base.Add(5 * time.Minute), Likes: 10},
		{Platform: "facebook", PostedAt: base.Add(50 * time.Minute), Likes: 90},
	}

	slots := RankSlots(AggregateEngagement(records), RankerConfig{}, rankNow())
	require.Len(t, slots, 1)
	assert.Equal(t, 20, slots[0].Hour)
	assert.Equal(t, 45, slots[0].Minute)
}

func TestRankSlotsScoreCapAndConfidenceMonotonicity(t *testing.T) {
	posted := time.Date(2025, 6, 2, 7, 0, 0, 0, time.UTC)
	records := []models.EngagementRecord{
		{Platform: "instagram", PostedAt: posted, Likes: 100000},
	}
	slots := RankSlots(AggregateEngagement(records), RankerConfig{}, rankNow())
	require.Len(t, slots, 1)
	assert.Equal(t, float64(100), slots[0].EngagementScore)

	prev := float64(-1)
	for count := 0; count <= 15; count++ {
		confidence := confidenceLevel(count, 10)
		assert.GreaterOrEqual(t, confidence, prev)
		assert.LessOrEqual(t, confidence, float64(100))
		prev = confidence
	}
	assert.Equal(t, float64(50), confidenceLevel(5, 10))
}

func TestDefaultSlotsDeterministic(t *testing.T) {
	now := rankNow()
	first := DefaultSlots(now)
	second := DefaultSlots(now)
	assert.Equal(t, first, second)

	require.Len(t, first, 16)
	for _, slot := range first {
		assert.GreaterOrEqual(t, slot.DayOfWeek, 0)
		assert.LessOrEqual(t, slot.DayOfWeek, 6)
		assert.True(t, slot.IsDefault)
	}
}
