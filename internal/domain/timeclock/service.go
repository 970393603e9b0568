package timeclock

import (
	"context"
)

// TimeclockService defines the shift state machine operations.
// All timestamps are stamped server-side; client time is never trusted.
type TimeclockService interface {
	// ClockIn validates position and permission, then opens a new shift.
	ClockIn(ctx context.Context, req ActionRequest) (ClockInResponse, error)

	// LunchStart stamps the start of the lunch break.
	LunchStart(ctx context.Context, req ActionRequest) (LunchStartResponse, error)

	// LunchEnd stamps the end of the lunch break and reports its duration.
	LunchEnd(ctx context.Context, req ActionRequest) (LunchEndResponse, error)

	// ClockOut closes the shift and returns the trigger-derived hours.
	ClockOut(ctx context.Context, req ActionRequest) (ClockOutResponse, error)

	// Heartbeat re-validates geofence membership for an open shift and may
	// auto-clock-out after repeated violations.
	Heartbeat(ctx context.Context, req HeartbeatRequest) (HeartbeatResponse, error)

	// ListShifts retrieves shift entries for the admin surface.
	ListShifts(ctx context.Context, filter ShiftFilter) (ListShiftsResponse, error)
}
