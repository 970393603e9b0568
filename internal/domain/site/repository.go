package site

import "context"

// GeofenceRepository reads site geofence reference data.
type GeofenceRepository interface {
	GetByID(ctx context.Context, siteID string) (Geofence, error)
}
