package alert

import (
	"encoding/json"
	"time"
)

// Alert types raised by the timeclock engine.
const (
	TypeGeofenceViolation = "geofence_violation"
	TypeExcessiveLunch    = "excessive_lunch"
	TypeMissingLunch      = "missing_lunch"
)

const SeverityWarning = "warning"

// Details is the tagged union stored in the alert's details column.
// Each variant carries its own strongly-typed field set.
type Details interface {
	AlertType() string
}

type GeofenceViolationDetails struct {
	ApprenticeID string  `json:"apprentice_id"`
	SiteID       string  `json:"site_id"`
	SiteName     string  `json:"site_name"`
	Action       string  `json:"action"`
	DistanceM    float64 `json:"distance_m"`
	RadiusM      float64 `json:"radius_m"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	Timestamp    string  `json:"timestamp"`
}

func (GeofenceViolationDetails) AlertType() string { return TypeGeofenceViolation }

type ExcessiveLunchDetails struct {
	ApprenticeID    string `json:"apprentice_id"`
	EntryID         string `json:"progress_entry_id"`
	LunchMinutes    int    `json:"lunch_minutes"`
	StandardMinutes int    `json:"standard_minutes"`
	Timestamp       string `json:"timestamp"`
}

func (ExcessiveLunchDetails) AlertType() string { return TypeExcessiveLunch }

type MissingLunchDetails struct {
	ApprenticeID string  `json:"apprentice_id"`
	EntryID      string  `json:"progress_entry_id"`
	ShiftHours   float64 `json:"shift_hours"`
	Timestamp    string  `json:"timestamp"`
}

func (MissingLunchDetails) AlertType() string { return TypeMissingLunch }

// Alert is a side-channel audit signal for administrators. Raising one
// never blocks the primary action.
type Alert struct {
	ID        string
	Type      string
	Severity  string
	Details   json.RawMessage
	Resolved  bool
	CreatedAt time.Time
}
