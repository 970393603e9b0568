package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tradelaunch/apprentice-backend-go/internal/domain/routing"
	"github.com/tradelaunch/apprentice-backend-go/internal/pkg/database"
)

type rulesetRepository struct {
	db *database.DB
}

func NewRulesetRepository(db *database.DB) routing.RulesetRepository {
	return &rulesetRepository{db: db}
}

// rulesetConfig is the jsonb shape of the automation_rulesets config column.
type rulesetConfig struct {
	MaxDistanceMiles    float64         `json:"max_distance_miles"`
	MinCapacity         int             `json:"min_capacity"`
	Weights             routing.Weights `json:"weights"`
	AutoAssignThreshold float64         `json:"auto_assign_threshold"`
}

// GetActive implements routing.RulesetRepository. No active row is a valid
// state and returns (nil, nil); the service falls back to the defaults.
func (r *rulesetRepository) GetActive(ctx context.Context) (*routing.Ruleset, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT version, config
		FROM automation_rulesets
		WHERE rule_type = 'shop_routing'
		  AND active = true
		ORDER BY created_at DESC
		LIMIT 1
	`

	var version string
	var rawConfig []byte
	err := q.QueryRow(ctx, query).Scan(&version, &rawConfig)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active ruleset: %w", err)
	}

	var cfg rulesetConfig
	if err := json.Unmarshal(rawConfig, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode ruleset config: %w", err)
	}

	return &routing.Ruleset{
		Version:             version,
		MaxDistanceMiles:    cfg.MaxDistanceMiles,
		MinCapacity:         cfg.MinCapacity,
		Weights:             cfg.Weights,
		AutoAssignThreshold: cfg.AutoAssignThreshold,
	}, nil
}
