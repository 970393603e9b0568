package postgresql

import (
	"context"
	"fmt"

	"github.com/tradelaunch/apprentice-backend-go/internal/domain/alert"
	"github.com/tradelaunch/apprentice-backend-go/internal/pkg/database"
)

type alertRepository struct {
	db *database.DB
}

func NewAlertRepository(db *database.DB) alert.AlertRepository {
	return &alertRepository{db: db}
}

// Create implements alert.AlertRepository.
func (a *alertRepository) Create(ctx context.Context, al alert.Alert) (alert.Alert, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO admin_alerts (alert_type, severity, details, resolved)
		VALUES ($1, $2, $3, false)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query, al.Type, al.Severity, al.Details).Scan(&al.ID, &al.CreatedAt)
	if err != nil {
		return alert.Alert{}, fmt.Errorf("failed to create admin alert: %w", err)
	}

	return al, nil
}

// List implements alert.AlertRepository.
func (a *alertRepository) List(ctx context.Context, resolved *bool, limit int) ([]alert.Alert, error) {
	q := GetQuerier(ctx, a.db)

	if limit < 1 {
		limit = 50
	}

	query := `
		SELECT id, alert_type, severity, details, resolved, created_at
		FROM admin_alerts
		WHERE ($1::boolean IS NULL OR resolved = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := q.Query(ctx, query, resolved, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list admin alerts: %w", err)
	}
	defer rows.Close()

	var alerts []alert.Alert
	for rows.Next() {
		var al alert.Alert
		if err := rows.Scan(&al.ID, &al.Type, &al.Severity, &al.Details, &al.Resolved, &al.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan admin alert: %w", err)
		}
		alerts = append(alerts, al)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate admin alerts: %w", err)
	}

	return alerts, nil
}

// Resolve implements alert.AlertRepository.
func (a *alertRepository) Resolve(ctx context.Context, id string) error {
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `UPDATE admin_alerts SET resolved = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to resolve admin alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return alert.ErrAlertNotFound
	}

	return nil
}
