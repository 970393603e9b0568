package site

// Geofence is the circular boundary for one partner site. Reference data
// owned by site administration; this engine only reads it.
type Geofence struct {
	SiteID    string
	Name      string
	CenterLat float64
	CenterLng float64
	RadiusM   float64
}
