package postgresql

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/tradelaunch/apprentice-backend-go/internal/domain/enrollment"
	"github.com/tradelaunch/apprentice-backend-go/internal/pkg/database"
)

type enrollmentChecker struct {
	db *database.DB
}

func NewEnrollmentChecker(db *database.DB) enrollment.Checker {
	return &enrollmentChecker{db: db}
}

// Check implements enrollment.Checker. The verdict comes from the
// enrollment state machine owned by the enrollment subsystem; this reads
// the current state and applies its published gating rule: only an active
// enrollment with the partner may operate the timeclock.
func (e *enrollmentChecker) Check(ctx context.Context, apprenticeID string, action enrollment.Action, partnerID string) (enrollment.Permission, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT status
		FROM apprentice_enrollments
		WHERE apprentice_id = $1
		  AND partner_id = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	var status string
	err := q.QueryRow(ctx, query, apprenticeID, partnerID).Scan(&status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return enrollment.Permission{
				Allowed: false,
				Message: "No enrollment found with this partner",
				Reason:  "NOT_ENROLLED",
				State:   "none",
			}, nil
		}
		return enrollment.Permission{}, fmt.Errorf("failed to check enrollment: %w", err)
	}

	if status != "active" {
		return enrollment.Permission{
			Allowed: false,
			Message: fmt.Sprintf("Enrollment is %s; %s is not permitted", status, action),
			Reason:  "ENROLLMENT_INACTIVE",
			State:   status,
		}, nil
	}

	return enrollment.Permission{Allowed: true, State: status}, nil
}

// LogCheck implements enrollment.Checker. Best-effort; a failed log write
// must never fail the action that triggered the check.
func (e *enrollmentChecker) LogCheck(ctx context.Context, apprenticeID string, action enrollment.Action, p enrollment.Permission, partnerID string) {
	q := GetQuerier(ctx, e.db)

	query := `
		INSERT INTO enrollment_permission_checks (apprentice_id, partner_id, action, allowed, reason, state)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := q.Exec(ctx, query, apprenticeID, partnerID, string(action), p.Allowed, p.Reason, p.State)
	if err != nil {
		slog.ErrorContext(ctx, "failed to log enrollment permission check",
			slog.String("apprentice_id", apprenticeID),
			slog.String("action", string(action)),
			slog.Any("error", err),
		)
	}
}
