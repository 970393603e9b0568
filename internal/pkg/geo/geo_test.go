package geo

import (
	"math"
	"testing"
)

func TestDistanceMetersZeroForSamePoint(t *testing.T) {
	points := [][2]float64{
		{0, 0},
		{39.77, -86.16},
		{-33.87, 151.21},
		{90, 0},
	}
	for _, p := range points {
		if d := DistanceMeters(p[0], p[1], p[0], p[1]); d != 0 {
			t.Errorf("DistanceMeters(%v, %v, same) = %v, want 0", p[0], p[1], d)
		}
	}
}

func TestDistanceSymmetry(t *testing.T) {
	cases := []struct {
		lat1, lon1, lat2, lon2 float64
	}{
		{39.77, -86.16, 39.80, -86.20},
		{0, 0, 10, 10},
		{-45.0, 170.0, 45.0, -170.0},
		{51.5, -0.12, 48.85, 2.35},
	}
	for _, c := range cases {
		ab := DistanceMeters(c.lat1, c.lon1, c.lat2, c.lon2)
		ba := DistanceMeters(c.lat2, c.lon2, c.lat1, c.lon1)
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("DistanceMeters not symmetric: %v vs %v", ab, ba)
		}
	}
}

func TestDistanceMetersKnownValue(t *testing.T) {
	// London to Paris, roughly 344 km.
	d := DistanceMeters(51.5074, -0.1278, 48.8566, 2.3522)
	if d < 330000 || d > 350000 {
		t.Errorf("London-Paris distance = %v m, want ~344000", d)
	}
}

func TestDistanceMilesKnownValue(t *testing.T) {
	// Indianapolis downtown to ~3 miles north.
	d := DistanceMiles(39.7684, -86.1581, 39.8119, -86.1581)
	if d < 2.9 || d > 3.1 {
		t.Errorf("distance = %v miles, want ~3", d)
	}
}

func TestSmallDistanceWithinGeofenceScale(t *testing.T) {
	// ~50m offset at Indianapolis latitude.
	d := DistanceMeters(39.7684, -86.1581, 39.76885, -86.1581)
	if d < 45 || d > 55 {
		t.Errorf("distance = %v m, want ~50", d)
	}
}
