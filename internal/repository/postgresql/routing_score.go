package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tradelaunch/apprentice-backend-go/internal/domain/routing"
	"github.com/tradelaunch/apprentice-backend-go/internal/pkg/database"
)

type routingScoreRepository struct {
	db *database.DB
}

func NewRoutingScoreRepository(db *database.DB) routing.ScoreRepository {
	return &routingScoreRepository{db: db}
}

// ReplaceRecommendations implements routing.ScoreRepository. Expire and
// insert run in one transaction so a failed run never leaves the
// application without live recommendations.
func (r *routingScoreRepository) ReplaceRecommendations(ctx context.Context, applicationID string, scores []routing.Score) error {
	return WithTransaction(ctx, r.db, func(txCtx context.Context) error {
		if err := r.expireRecommended(txCtx, applicationID); err != nil {
			return err
		}
		return r.createBatch(txCtx, scores)
	})
}

func (r *routingScoreRepository) createBatch(ctx context.Context, scores []routing.Score) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO routing_scores (
			id, application_id, shop_id, shop_name, rank,
			total_score, score_breakdown, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for _, s := range scores {
		breakdown, err := json.Marshal(s.Breakdown)
		if err != nil {
			return fmt.Errorf("failed to encode score breakdown: %w", err)
		}

		_, err = q.Exec(ctx, query,
			s.ID, s.ApplicationID, s.ShopID, s.ShopName, s.Rank,
			s.TotalScore, breakdown, s.Status,
		)
		if err != nil {
			return fmt.Errorf("failed to insert routing score: %w", err)
		}
	}

	return nil
}

func (r *routingScoreRepository) expireRecommended(ctx context.Context, applicationID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE routing_scores
		SET status = $2
		WHERE application_id = $1
		  AND status = $3
	`

	_, err := q.Exec(ctx, query, applicationID, routing.ScoreStatusExpired, routing.ScoreStatusRecommended)
	if err != nil {
		return fmt.Errorf("failed to expire recommendations: %w", err)
	}

	return nil
}

// GetStatus implements routing.ScoreRepository.
func (r *routingScoreRepository) GetStatus(ctx context.Context, applicationID, shopID string) (string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT status
		FROM routing_scores
		WHERE application_id = $1
		  AND shop_id = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	var status string
	err := q.QueryRow(ctx, query, applicationID, shopID).Scan(&status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to get routing score status: %w", err)
	}

	return status, nil
}

// MarkAssigned implements routing.ScoreRepository. The status predicate
// makes the transition single-shot under concurrent assignment calls.
func (r *routingScoreRepository) MarkAssigned(ctx context.Context, applicationID, shopID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE routing_scores
		SET status = $3
		WHERE application_id = $1
		  AND shop_id = $2
		  AND status = $4
	`

	tag, err := q.Exec(ctx, query, applicationID, shopID, routing.ScoreStatusAssigned, routing.ScoreStatusRecommended)
	if err != nil {
		return false, fmt.Errorf("failed to mark routing score assigned: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ExpireOthers implements routing.ScoreRepository.
func (r *routingScoreRepository) ExpireOthers(ctx context.Context, applicationID, shopID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE routing_scores
		SET status = $3
		WHERE application_id = $1
		  AND shop_id <> $2
		  AND status = $4
	`

	_, err := q.Exec(ctx, query, applicationID, shopID, routing.ScoreStatusExpired, routing.ScoreStatusRecommended)
	if err != nil {
		return fmt.Errorf("failed to expire other recommendations: %w", err)
	}

	return nil
}
