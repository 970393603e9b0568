package timeclock

import "context"

// Position is a device GPS fix.
type Position struct {
	Lat       float64
	Lng       float64
	AccuracyM float64
}

// Geolocator abstracts the device positioning source. Acquisition errors
// (permission denied, unavailable, timeout) are returned to the caller and
// never retried here; the caller decides whether to prompt again.
type Geolocator interface {
	// Current blocks until a fresh high-accuracy fix is available or the
	// context is done.
	Current(ctx context.Context) (Position, error)

	// Watch streams fixes to fn until the returned stop function is called.
	Watch(ctx context.Context, fn func(Position)) (stop func(), err error)
}
