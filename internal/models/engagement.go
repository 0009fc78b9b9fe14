package models

import "time"

// Platform identifies a supported social network.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformFacebook  Platform = "facebook"
	PlatformLinkedIn  Platform = "linkedin"
)

// Platforms is the fixed set analyzed by the scheduling optimizer.
var Platforms = []Platform{PlatformInstagram, PlatformTwitter, PlatformFacebook, PlatformLinkedIn}

// ParsePlatform normalises raw input into a known platform.
func ParsePlatform(raw string) (Platform, bool) {
	switch Platform(raw) {
	case PlatformInstagram, PlatformTwitter, PlatformFacebook, PlatformLinkedIn:
		return Platform(raw), true
	default:
		return "", false
	}
}

// EngagementRecord is one historical post's performance snapshot.
// Rows are ingested upstream and are read-only here.
type EngagementRecord struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Platform  string    `db:"platform" json:"platform"`
	PostedAt  time.Time `db:"posted_at" json:"posted_at"`
	Likes     int64     `db:"likes" json:"likes"`
	Comments  int64     `db:"comments" json:"comments"`
	Shares    int64     `db:"shares" json:"shares"`
	Views     int64     `db:"views" json:"views"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Score is the raw engagement signal aggregated per bucket. Views are
// intentionally excluded from the score.
func (r EngagementRecord) Score() int64 {
	return r.Likes + r.Comments + r.Shares
}
