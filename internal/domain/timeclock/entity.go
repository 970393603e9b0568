package timeclock

import (
	"time"
)

// ShiftEntry is one clock-in to clock-out cycle for an apprentice.
// A closed entry is never reopened; further work starts a new entry.
type ShiftEntry struct {
	ID                 string
	ApprenticeID       string
	PartnerID          string
	ProgramID          string
	SiteID             string
	WorkDate           time.Time
	WeekEnding         time.Time
	ClockInAt          time.Time
	LunchStartAt       *time.Time
	LunchEndAt         *time.Time
	ClockOutAt         *time.Time
	Status             string
	AutoClockedOut     bool
	AutoClockOutReason *string
	// HoursWorked is derived by a database trigger net of lunch; the
	// service re-reads it after clock-out and never computes it.
	HoursWorked     *float64
	GeofenceStrikes int
	LastHeartbeatAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Closed reports whether the shift has been terminated.
func (s *ShiftEntry) Closed() bool {
	return s.ClockOutAt != nil
}

// OnLunch reports whether a lunch break is in progress.
func (s *ShiftEntry) OnLunch() bool {
	return s.LunchStartAt != nil && s.LunchEndAt == nil
}
