package timeclock

import (
	"context"
	"time"
)

// ShiftRepository defines data access for shift entries.
type ShiftRepository interface {
	// Create inserts a new shift entry at clock-in.
	Create(ctx context.Context, entry ShiftEntry) (ShiftEntry, error)

	// GetByID retrieves a shift entry.
	GetByID(ctx context.Context, id string) (ShiftEntry, error)

	// Update writes the mutable fields of an open shift (lunch stamps,
	// clock-out, auto-clock-out flags, heartbeat bookkeeping).
	Update(ctx context.Context, entry ShiftEntry) error

	// GetHoursWorked re-reads the trigger-derived hours after clock-out.
	GetHoursWorked(ctx context.Context, id string) (*float64, error)

	// List retrieves shift entries with filters and pagination.
	List(ctx context.Context, filter ShiftFilter) ([]ShiftEntry, int64, error)

	// GetStaleOpenShifts returns open shifts whose last activity predates cutoff.
	GetStaleOpenShifts(ctx context.Context, cutoff time.Time) ([]ShiftEntry, error)
}
