package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tradelaunch/apprentice-backend-go/internal/domain/shop"
	"github.com/tradelaunch/apprentice-backend-go/internal/pkg/database"
)

type shopRepository struct {
	db *database.DB
}

func NewShopRepository(db *database.DB) shop.ShopRepository {
	return &shopRepository{db: db}
}

const shopColumns = `id, name, latitude, longitude, capacity, current_apprentices, specialties, mou_status, active`

func scanShop(row pgx.Row) (shop.Shop, error) {
	var s shop.Shop
	err := row.Scan(
		&s.ID, &s.Name, &s.Lat, &s.Lng, &s.Capacity,
		&s.CurrentApprentices, &s.Specialties, &s.MOUStatus, &s.Active,
	)
	return s, err
}

// GetByID implements shop.ShopRepository.
func (r *shopRepository) GetByID(ctx context.Context, id string) (shop.Shop, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + shopColumns + ` FROM shops WHERE id = $1`

	s, err := scanShop(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return shop.Shop{}, shop.ErrShopNotFound
		}
		return shop.Shop{}, fmt.Errorf("failed to get shop: %w", err)
	}

	return s, nil
}

// ListEligible implements shop.ShopRepository.
func (r *shopRepository) ListEligible(ctx context.Context) ([]shop.Shop, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + shopColumns + `
		FROM shops
		WHERE active = true
		  AND mou_status = $1
		ORDER BY name
	`

	rows, err := q.Query(ctx, query, shop.MOUStatusFullyExecuted)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible shops: %w", err)
	}
	defer rows.Close()

	var shops []shop.Shop
	for rows.Next() {
		s, err := scanShop(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shop: %w", err)
		}
		shops = append(shops, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shops: %w", err)
	}

	return shops, nil
}

// IncrementApprentices implements shop.ShopRepository. The increment runs
// store-side in one statement so concurrent assignments to the same shop
// never lose an update.
func (r *shopRepository) IncrementApprentices(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE shops SET current_apprentices = current_apprentices + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment shop apprentices: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shop.ErrShopNotFound
	}

	return nil
}
