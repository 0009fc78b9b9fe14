package models

import "time"

// OptimalSlot is a ranked "best time to post" recommendation. The full
// set for a user is replaced wholesale on each completed analysis run.
type OptimalSlot struct {
	ID                string    `db:"id" json:"id"`
	UserID            string    `db:"user_id" json:"user_id"`
	Platform          Platform  `db:"platform" json:"platform"`
	DayOfWeek         int       `db:"day_of_week" json:"day_of_week"`
	Hour              int       `db:"hour" json:"hour"`
	Minute            int       `db:"minute" json:"minute"`
	EngagementScore   float64   `db:"engagement_score" json:"engagement_score"`
	ConfidenceLevel   float64   `db:"confidence_level" json:"confidence_level"`
	BasedOnPostsCount int       `db:"based_on_posts_count" json:"based_on_posts_count"`
	IsDefault         bool      `db:"is_default" json:"is_default"`
	LastUpdated       time.Time `db:"last_updated" json:"last_updated"`
}

// SlotFilter narrows down slot queries.
type SlotFilter struct {
	Platform *Platform
	Day      *int
	Limit    int
}
