package timeclock

import (
	"github.com/tradelaunch/apprentice-backend-go/internal/pkg/validator"
)

// Action names accepted by the timeclock endpoint.
const (
	ActionClockIn    = "clock_in"
	ActionLunchStart = "lunch_start"
	ActionLunchEnd   = "lunch_end"
	ActionClockOut   = "clock_out"
)

var knownActions = []string{ActionClockIn, ActionLunchStart, ActionLunchEnd, ActionClockOut}

// ActionRequest is the payload of the single timeclock action endpoint.
// EntryID is required for every action except clock_in.
type ActionRequest struct {
	Action       string   `json:"action"`
	ApprenticeID string   `json:"apprentice_id"`
	PartnerID    string   `json:"partner_id"`
	ProgramID    string   `json:"program_id"`
	SiteID       string   `json:"site_id"`
	EntryID      string   `json:"progress_entry_id,omitempty"`
	Lat          float64  `json:"lat"`
	Lng          float64  `json:"lng"`
	AccuracyM    *float64 `json:"accuracy_m,omitempty"`
}

func (r *ActionRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsInSlice(r.Action, knownActions) {
		errs = append(errs, validator.ValidationError{
			Field:   "action",
			Message: "action must be one of clock_in, lunch_start, lunch_end, clock_out",
		})
	}

	if validator.IsEmpty(r.ApprenticeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "apprentice_id",
			Message: "apprentice_id is required",
		})
	}

	if validator.IsEmpty(r.PartnerID) {
		errs = append(errs, validator.ValidationError{
			Field:   "partner_id",
			Message: "partner_id is required",
		})
	}

	if validator.IsEmpty(r.ProgramID) {
		errs = append(errs, validator.ValidationError{
			Field:   "program_id",
			Message: "program_id is required",
		})
	}

	if validator.IsEmpty(r.SiteID) {
		errs = append(errs, validator.ValidationError{
			Field:   "site_id",
			Message: "site_id is required",
		})
	}

	if r.Action != ActionClockIn && validator.IsEmpty(r.EntryID) {
		errs = append(errs, validator.ValidationError{
			Field:   "progress_entry_id",
			Message: "progress_entry_id is required for " + r.Action,
		})
	}

	if !validator.IsValidLatitude(r.Lat) {
		errs = append(errs, validator.ValidationError{
			Field:   "lat",
			Message: "lat must be between -90 and 90",
		})
	}

	if !validator.IsValidLongitude(r.Lng) {
		errs = append(errs, validator.ValidationError{
			Field:   "lng",
			Message: "lng must be between -180 and 180",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ClockInResponse struct {
	Success   bool   `json:"success"`
	Action    string `json:"action"`
	EntryID   string `json:"progress_entry_id"`
	ClockInAt string `json:"clock_in_at"`
}

type LunchStartResponse struct {
	Success      bool   `json:"success"`
	Action       string `json:"action"`
	EntryID      string `json:"progress_entry_id"`
	LunchStartAt string `json:"lunch_start_at"`
}

type LunchEndResponse struct {
	Success              bool   `json:"success"`
	Action               string `json:"action"`
	EntryID              string `json:"progress_entry_id"`
	LunchEndAt           string `json:"lunch_end_at"`
	LunchDurationMinutes int    `json:"lunch_duration_minutes"`
	ExceededStandard     bool   `json:"exceeded_standard"`
}

type ClockOutResponse struct {
	Success     bool     `json:"success"`
	Action      string   `json:"action"`
	EntryID     string   `json:"progress_entry_id"`
	ClockOutAt  string   `json:"clock_out_at"`
	HoursWorked *float64 `json:"hours_worked"`
}

// HeartbeatRequest is the periodic position report for an open shift.
type HeartbeatRequest struct {
	EntryID   string   `json:"progress_entry_id"`
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	AccuracyM *float64 `json:"accuracy_m,omitempty"`
}

func (r *HeartbeatRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EntryID) {
		errs = append(errs, validator.ValidationError{
			Field:   "progress_entry_id",
			Message: "progress_entry_id is required",
		})
	}

	if !validator.IsValidLatitude(r.Lat) {
		errs = append(errs, validator.ValidationError{
			Field:   "lat",
			Message: "lat must be between -90 and 90",
		})
	}

	if !validator.IsValidLongitude(r.Lng) {
		errs = append(errs, validator.ValidationError{
			Field:   "lng",
			Message: "lng must be between -180 and 180",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// HeartbeatResponse tells the client whether the shift is still valid.
// Closed is the terminal signal; the client must stop its loop on either
// Closed or AutoClockedOut.
type HeartbeatResponse struct {
	WithinGeofence     bool     `json:"within_geofence"`
	DistanceM          *float64 `json:"distance_m,omitempty"`
	AutoClockedOut     bool     `json:"auto_clocked_out"`
	ClockOutAt         *string  `json:"clock_out_at,omitempty"`
	AutoClockOutReason *string  `json:"auto_clock_out_reason,omitempty"`
	Closed             bool     `json:"closed,omitempty"`
}

// ShiftFilter narrows the admin shift listing.
type ShiftFilter struct {
	ApprenticeID string
	Page         int
	Limit        int
}

type ShiftResponse struct {
	ID             string   `json:"id"`
	ApprenticeID   string   `json:"apprentice_id"`
	SiteID         string   `json:"site_id"`
	WorkDate       string   `json:"work_date"`
	WeekEnding     string   `json:"week_ending"`
	ClockInAt      string   `json:"clock_in_at"`
	LunchStartAt   *string  `json:"lunch_start_at"`
	LunchEndAt     *string  `json:"lunch_end_at"`
	ClockOutAt     *string  `json:"clock_out_at"`
	Status         string   `json:"status"`
	AutoClockedOut bool     `json:"auto_clocked_out"`
	HoursWorked    *float64 `json:"hours_worked"`
}

type ListShiftsResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	Shifts     []ShiftResponse `json:"shifts"`
}
