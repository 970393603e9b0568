package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tradelaunch/apprentice-backend-go/internal/domain/routing"
	"github.com/tradelaunch/apprentice-backend-go/internal/pkg/database"
)

type reviewQueueRepository struct {
	db *database.DB
}

func NewReviewQueueRepository(db *database.DB) routing.ReviewQueueRepository {
	return &reviewQueueRepository{db: db}
}

// Create implements routing.ReviewQueueRepository.
func (r *reviewQueueRepository) Create(ctx context.Context, item routing.ReviewItem) (routing.ReviewItem, error) {
	q := GetQuerier(ctx, r.db)

	metadata, err := json.Marshal(item.Metadata)
	if err != nil {
		return routing.ReviewItem{}, fmt.Errorf("failed to encode review metadata: %w", err)
	}

	query := `
		INSERT INTO review_queue (
			id, queue_type, subject_type, subject_id, priority,
			reasons, metadata, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err = q.QueryRow(ctx, query,
		item.ID, item.QueueType, item.SubjectType, item.SubjectID, item.Priority,
		item.Reasons, metadata, item.Status,
	).Scan(&item.CreatedAt)
	if err != nil {
		return routing.ReviewItem{}, fmt.Errorf("failed to create review queue item: %w", err)
	}

	return item, nil
}

// ResolveForSubject implements routing.ReviewQueueRepository. Resolving a
// subject with no pending item is a no-op, not an error.
func (r *reviewQueueRepository) ResolveForSubject(ctx context.Context, subjectID string, resolution string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE review_queue
		SET status = $3, resolution = $2, resolved_at = NOW()
		WHERE subject_id = $1
		  AND queue_type = $4
		  AND status = $5
	`

	_, err := q.Exec(ctx, query, subjectID, resolution,
		routing.ReviewStatusResolved, routing.ReviewQueueShopRouting, routing.ReviewStatusPending)
	if err != nil {
		return fmt.Errorf("failed to resolve review queue item: %w", err)
	}

	return nil
}
