package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pulseplan/pulseplan-api/internal/models"
)

// SlotRepository persists optimal posting slot recommendations.
type SlotRepository struct {
	db *sqlx.DB
}

// NewSlotRepository constructs the repository.
func NewSlotRepository(db *sqlx.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// ReplaceForUser atomically swaps the user's slot set for the provided
// one. Runs delete-then-insert in a single transaction so readers never
// observe a partially replaced set.
func (r *SlotRepository) ReplaceForUser(ctx context.Context, userID string, slots []models.OptimalSlot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin slot replace: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM optimal_slots WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("clear slots: %w", err)
	}

	now := time.Now().UTC()
	const insert = `INSERT INTO optimal_slots (id, user_id, platform, day_of_week, hour, minute, engagement_score, confidence_level, based_on_posts_count, is_default, last_updated)
VALUES (:id, :user_id, :platform, :day_of_week, :hour, :minute, :engagement_score, :confidence_level, :based_on_posts_count, :is_default, :last_updated)`
	for i := range slots {
		slot := &slots[i]
		if slot.ID == "" {
			slot.ID = uuid.NewString()
		}
		slot.UserID = userID
		if slot.LastUpdated.IsZero() {
			slot.LastUpdated = now
		}
		if _, err := tx.NamedExecContext(ctx, insert, slot); err != nil {
			return fmt.Errorf("insert slot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit slot replace: %w", err)
	}
	return nil
}

// ListByUser returns slots ranked by score, optionally filtered.
func (r *SlotRepository) ListByUser(ctx context.Context, userID string, filter models.SlotFilter) ([]models.OptimalSlot, error) {
	where := []string{"user_id = $1"}
	args := []interface{}{userID}
	if filter.Platform != nil {
		where = append(where, fmt.Sprintf("platform = $%d", len(args)+1))
		args = append(args, *filter.Platform)
	}
	if filter.Day != nil {
		where = append(where, fmt.Sprintf("day_of_week = $%d", len(args)+1))
		args = append(args, *filter.Day)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	query := fmt.Sprintf(`SELECT id, user_id, platform, day_of_week, hour, minute, engagement_score, confidence_level, based_on_posts_count, is_default, last_updated
FROM optimal_slots WHERE %s ORDER BY engagement_score DESC, day_of_week ASC, hour ASC LIMIT %d`, strings.Join(where, " AND "), limit)
	var slots []models.OptimalSlot
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return slots, nil
}
