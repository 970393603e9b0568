package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tradelaunch/apprentice-backend-go/internal/domain/routing"
	"github.com/tradelaunch/apprentice-backend-go/internal/pkg/database"
)

type decisionRepository struct {
	db *database.DB
}

func NewDecisionRepository(db *database.DB) routing.DecisionRepository {
	return &decisionRepository{db: db}
}

// Create implements routing.DecisionRepository.
func (r *decisionRepository) Create(ctx context.Context, d routing.Decision) (routing.Decision, error) {
	q := GetQuerier(ctx, r.db)

	snapshot, err := json.Marshal(d.InputSnapshot)
	if err != nil {
		return routing.Decision{}, fmt.Errorf("failed to encode input snapshot: %w", err)
	}

	query := `
		INSERT INTO automated_decisions (
			id, subject_type, subject_id, decision, reason_codes,
			input_snapshot, ruleset_version, actor
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err = q.QueryRow(ctx, query,
		d.ID, d.SubjectType, d.SubjectID, d.Decision, d.ReasonCodes,
		snapshot, d.RulesetVersion, d.Actor,
	).Scan(&d.CreatedAt)
	if err != nil {
		return routing.Decision{}, fmt.Errorf("failed to create automated decision: %w", err)
	}

	return d, nil
}
