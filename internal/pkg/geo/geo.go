package geo

import "math"

const (
	earthRadiusMeters = 6371000
	earthRadiusMiles  = 3959
)

func toRadians(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	return 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// DistanceMeters returns the great-circle distance between two coordinates in meters.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	return earthRadiusMeters * haversine(lat1, lon1, lat2, lon2)
}

// DistanceMiles returns the great-circle distance between two coordinates in miles.
func DistanceMiles(lat1, lon1, lat2, lon2 float64) float64 {
	return earthRadiusMiles * haversine(lat1, lon1, lat2, lon2)
}
