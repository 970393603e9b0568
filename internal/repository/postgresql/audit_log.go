package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tradelaunch/apprentice-backend-go/internal/domain/audit"
	"github.com/tradelaunch/apprentice-backend-go/internal/pkg/database"
)

type auditLogRepository struct {
	db *database.DB
}

func NewAuditLogRepository(db *database.DB) audit.Repository {
	return &auditLogRepository{db: db}
}

// Append implements audit.Repository.
func (r *auditLogRepository) Append(ctx context.Context, entry audit.Entry) error {
	q := GetQuerier(ctx, r.db)

	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode audit metadata: %w", err)
	}

	query := `
		INSERT INTO audit_logs (id, action, target_type, target_id, actor_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = q.Exec(ctx, query,
		entry.ID, entry.Action, entry.TargetType, entry.TargetID, entry.ActorID, metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit log entry: %w", err)
	}

	return nil
}
