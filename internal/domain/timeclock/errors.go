package timeclock

import (
	"errors"
	"fmt"
)

// Timeclock domain errors. Messages are part of the endpoint contract and
// surface to callers unchanged.
var (
	ErrShiftNotFound       = errors.New("Progress entry not found")
	ErrAlreadyClockedOut   = errors.New("Already clocked out")
	ErrShiftAlreadyClosed  = errors.New("Shift already closed")
	ErrLunchAlreadyStarted = errors.New("Lunch already started")
	ErrLunchNotStarted     = errors.New("Lunch not started")
	ErrLunchAlreadyEnded   = errors.New("Lunch already ended")
)

// AccuracyError rejects a position whose reported GPS accuracy is too coarse.
type AccuracyError struct {
	AccuracyM   float64
	MaxAllowedM float64
}

func (e *AccuracyError) Error() string {
	return fmt.Sprintf("GPS accuracy too low: %.0fm (max %.0fm)", e.AccuracyM, e.MaxAllowedM)
}

// GeofenceError rejects an action attempted outside the site geofence.
// DistanceM and RadiusM are surfaced to the caller.
type GeofenceError struct {
	DistanceM float64
	RadiusM   float64
}

func (e *GeofenceError) Error() string {
	return fmt.Sprintf("outside geofence: %.0fm from site center (radius %.0fm)", e.DistanceM, e.RadiusM)
}

// PermissionError carries the enrollment collaborator's denial verbatim.
type PermissionError struct {
	Message string
	Reason  string
	State   string
}

func (e *PermissionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "timeclock action not permitted"
}
