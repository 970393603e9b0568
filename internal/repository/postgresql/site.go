package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tradelaunch/apprentice-backend-go/internal/domain/site"
	"github.com/tradelaunch/apprentice-backend-go/internal/pkg/database"
)

type siteRepository struct {
	db *database.DB
}

func NewSiteRepository(db *database.DB) site.GeofenceRepository {
	return &siteRepository{db: db}
}

// GetByID implements site.GeofenceRepository.
func (s *siteRepository) GetByID(ctx context.Context, siteID string) (site.Geofence, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT id, name, latitude, longitude, geofence_radius_m
		FROM partner_sites
		WHERE id = $1
	`

	var g site.Geofence
	err := q.QueryRow(ctx, query, siteID).Scan(&g.SiteID, &g.Name, &g.CenterLat, &g.CenterLng, &g.RadiusM)
	if err != nil {
		if err == pgx.ErrNoRows {
			return site.Geofence{}, site.ErrSiteNotFound
		}
		return site.Geofence{}, fmt.Errorf("failed to get site geofence: %w", err)
	}

	return g, nil
}
