package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tradelaunch/apprentice-backend-go/internal/domain/application"
	"github.com/tradelaunch/apprentice-backend-go/internal/pkg/database"
)

type applicationRepository struct {
	db *database.DB
}

func NewApplicationRepository(db *database.DB) application.ApplicationRepository {
	return &applicationRepository{db: db}
}

// GetByID implements application.ApplicationRepository.
func (r *applicationRepository) GetByID(ctx context.Context, id string) (application.Application, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, user_id, program_id, latitude, longitude,
			   specialty_interests, max_commute_miles, assigned_shop_id, status
		FROM applications
		WHERE id = $1
	`

	var a application.Application
	err := q.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.UserID, &a.ProgramID, &a.Lat, &a.Lng,
		&a.SpecialtyInterests, &a.MaxCommuteMiles, &a.AssignedShopID, &a.Status,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return application.Application{}, application.ErrApplicationNotFound
		}
		return application.Application{}, fmt.Errorf("failed to get application: %w", err)
	}

	return a, nil
}

// SetAssignedShop implements application.ApplicationRepository.
func (r *applicationRepository) SetAssignedShop(ctx context.Context, id string, shopID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE applications
		SET assigned_shop_id = $2, status = 'assigned', updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, shopID)
	if err != nil {
		return fmt.Errorf("failed to set assigned shop: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return application.ErrApplicationNotFound
	}

	return nil
}
