package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pulseplan/pulseplan-api/internal/models"
)

// EngagementRepository reads historical engagement records. The feed is
// ingested upstream; this subsystem never writes to it.
type EngagementRepository struct {
	db *sqlx.DB
}

// NewEngagementRepository constructs the repository.
func NewEngagementRepository(db *sqlx.DB) *EngagementRepository {
	return &EngagementRepository{db: db}
}

// ListRecentByUser returns the user's most recent records, newest first.
func (r *EngagementRepository) ListRecentByUser(ctx context.Context, userID string, limit int) ([]models.EngagementRecord, error) {
	if limit <= 0 {
		limit = 500
	}
	const query = `SELECT id, user_id, platform, posted_at, likes, comments, shares, views, created_at
FROM engagement_records WHERE user_id = $1 ORDER BY posted_at DESC LIMIT $2`
	var records []models.EngagementRecord
	if err := r.db.SelectContext(ctx, &records, query, userID, limit); err != nil {
		return nil, fmt.Errorf("list engagement records: %w", err)
	}
	return records, nil
}
