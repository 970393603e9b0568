package timeclock

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/tradelaunch/apprentice-backend-go/internal/domain/alert"
	"github.com/tradelaunch/apprentice-backend-go/internal/domain/enrollment"
	"github.com/tradelaunch/apprentice-backend-go/internal/domain/site"
	"github.com/tradelaunch/apprentice-backend-go/internal/domain/timeclock"
	"github.com/tradelaunch/apprentice-backend-go/internal/pkg/clock"
	"github.com/tradelaunch/apprentice-backend-go/internal/pkg/geo"
)

// Config holds the timeclock policy knobs.
type Config struct {
	MaxAccuracyMeters      float64
	StandardLunchMinutes   int
	MissingLunchShiftHours float64
	GeofenceStrikes        int
}

type TimeclockServiceImpl struct {
	cfg    Config
	clk    clock.Clock
	shifts timeclock.ShiftRepository
	sites  site.GeofenceRepository
	alerts *alert.Recorder
	perms  enrollment.Checker
}

func NewTimeclockService(
	cfg Config,
	clk clock.Clock,
	shiftRepo timeclock.ShiftRepository,
	siteRepo site.GeofenceRepository,
	alertRecorder *alert.Recorder,
	permChecker enrollment.Checker,
) timeclock.TimeclockService {
	return &TimeclockServiceImpl{
		cfg:    cfg,
		clk:    clk,
		shifts: shiftRepo,
		sites:  siteRepo,
		alerts: alertRecorder,
		perms:  permChecker,
	}
}

// checkAccuracy rejects coarse positions before any geofence or state check.
func (t *TimeclockServiceImpl) checkAccuracy(accuracyM *float64) error {
	if accuracyM != nil && *accuracyM > t.cfg.MaxAccuracyMeters {
		return &timeclock.AccuracyError{AccuracyM: *accuracyM, MaxAllowedM: t.cfg.MaxAccuracyMeters}
	}
	return nil
}

// checkPermission consults the enrollment collaborator and surfaces a
// denial verbatim. The check outcome is logged either way on denial.
func (t *TimeclockServiceImpl) checkPermission(ctx context.Context, req timeclock.ActionRequest, action enrollment.Action) error {
	perm, err := t.perms.Check(ctx, req.ApprenticeID, action, req.PartnerID)
	if err != nil {
		return fmt.Errorf("failed to check enrollment permission: %w", err)
	}

	if !perm.Allowed {
		t.perms.LogCheck(ctx, req.ApprenticeID, action, perm, req.PartnerID)
		return &timeclock.PermissionError{
			Message: perm.Message,
			Reason:  perm.Reason,
			State:   perm.State,
		}
	}

	return nil
}

// checkGeofence validates the reported position against the site geofence.
// An outside position raises a geofence_violation alert and rejects.
func (t *TimeclockServiceImpl) checkGeofence(ctx context.Context, req timeclock.ActionRequest) (site.Geofence, error) {
	g, err := t.sites.GetByID(ctx, req.SiteID)
	if err != nil {
		return site.Geofence{}, err
	}

	distance := geo.DistanceMeters(req.Lat, req.Lng, g.CenterLat, g.CenterLng)
	if distance > g.RadiusM {
		t.alerts.Record(ctx, alert.GeofenceViolationDetails{
			ApprenticeID: req.ApprenticeID,
			SiteID:       g.SiteID,
			SiteName:     g.Name,
			Action:       req.Action,
			DistanceM:    math.Round(distance),
			RadiusM:      g.RadiusM,
			Lat:          req.Lat,
			Lng:          req.Lng,
			Timestamp:    t.clk.Now().Format(time.RFC3339),
		})
		return site.Geofence{}, &timeclock.GeofenceError{
			DistanceM: math.Round(distance),
			RadiusM:   g.RadiusM,
		}
	}

	return g, nil
}

// weekEnding returns the upcoming Saturday relative to now. A Saturday rolls
// to the next one, matching payroll's week-ending convention.
func weekEnding(now time.Time) time.Time {
	days := (int(time.Saturday) - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return now.AddDate(0, 0, days)
}

// ClockIn implements timeclock.TimeclockService.
func (t *TimeclockServiceImpl) ClockIn(ctx context.Context, req timeclock.ActionRequest) (timeclock.ClockInResponse, error) {
	if err := req.Validate(); err != nil {
		return timeclock.ClockInResponse{}, err
	}

	if err := t.checkAccuracy(req.AccuracyM); err != nil {
		return timeclock.ClockInResponse{}, err
	}

	if err := t.checkPermission(ctx, req, enrollment.ActionClockIn); err != nil {
		return timeclock.ClockInResponse{}, err
	}

	if _, err := t.checkGeofence(ctx, req); err != nil {
		return timeclock.ClockInResponse{}, err
	}

	// Server time only; client timestamps are never accepted.
	now := t.clk.Now()

	entry := timeclock.ShiftEntry{
		ApprenticeID: req.ApprenticeID,
		PartnerID:    req.PartnerID,
		ProgramID:    req.ProgramID,
		SiteID:       req.SiteID,
		WorkDate:     now.Truncate(24 * time.Hour),
		WeekEnding:   weekEnding(now).Truncate(24 * time.Hour),
		ClockInAt:    now,
		Status:       "submitted",
	}

	created, err := t.shifts.Create(ctx, entry)
	if err != nil {
		return timeclock.ClockInResponse{}, fmt.Errorf("failed to create shift entry: %w", err)
	}

	return timeclock.ClockInResponse{
		Success:   true,
		Action:    timeclock.ActionClockIn,
		EntryID:   created.ID,
		ClockInAt: now.Format(time.RFC3339),
	}, nil
}

// LunchStart implements timeclock.TimeclockService.
func (t *TimeclockServiceImpl) LunchStart(ctx context.Context, req timeclock.ActionRequest) (timeclock.LunchStartResponse, error) {
	if err := req.Validate(); err != nil {
		return timeclock.LunchStartResponse{}, err
	}

	if err := t.checkAccuracy(req.AccuracyM); err != nil {
		return timeclock.LunchStartResponse{}, err
	}

	if err := t.checkPermission(ctx, req, enrollment.ActionClockIn); err != nil {
		return timeclock.LunchStartResponse{}, err
	}

	if _, err := t.checkGeofence(ctx, req); err != nil {
		return timeclock.LunchStartResponse{}, err
	}

	entry, err := t.shifts.GetByID(ctx, req.EntryID)
	if err != nil {
		return timeclock.LunchStartResponse{}, err
	}

	if entry.Closed() {
		return timeclock.LunchStartResponse{}, timeclock.ErrShiftAlreadyClosed
	}

	if entry.LunchStartAt != nil {
		return timeclock.LunchStartResponse{}, timeclock.ErrLunchAlreadyStarted
	}

	now := t.clk.Now()
	entry.LunchStartAt = &now

	if err := t.shifts.Update(ctx, entry); err != nil {
		return timeclock.LunchStartResponse{}, fmt.Errorf("failed to start lunch: %w", err)
	}

	return timeclock.LunchStartResponse{
		Success:      true,
		Action:       timeclock.ActionLunchStart,
		EntryID:      entry.ID,
		LunchStartAt: now.Format(time.RFC3339),
	}, nil
}

// LunchEnd implements timeclock.TimeclockService.
func (t *TimeclockServiceImpl) LunchEnd(ctx context.Context, req timeclock.ActionRequest) (timeclock.LunchEndResponse, error) {
	if err := req.Validate(); err != nil {
		return timeclock.LunchEndResponse{}, err
	}

	if err := t.checkAccuracy(req.AccuracyM); err != nil {
		return timeclock.LunchEndResponse{}, err
	}

	if err := t.checkPermission(ctx, req, enrollment.ActionClockIn); err != nil {
		return timeclock.LunchEndResponse{}, err
	}

	if _, err := t.checkGeofence(ctx, req); err != nil {
		return timeclock.LunchEndResponse{}, err
	}

	entry, err := t.shifts.GetByID(ctx, req.EntryID)
	if err != nil {
		return timeclock.LunchEndResponse{}, err
	}

	if entry.Closed() {
		return timeclock.LunchEndResponse{}, timeclock.ErrShiftAlreadyClosed
	}

	if entry.LunchStartAt == nil {
		return timeclock.LunchEndResponse{}, timeclock.ErrLunchNotStarted
	}

	if entry.LunchEndAt != nil {
		return timeclock.LunchEndResponse{}, timeclock.ErrLunchAlreadyEnded
	}

	now := t.clk.Now()
	lunchMinutes := now.Sub(*entry.LunchStartAt).Minutes()
	exceeded := lunchMinutes > float64(t.cfg.StandardLunchMinutes)

	entry.LunchEndAt = &now
	if err := t.shifts.Update(ctx, entry); err != nil {
		return timeclock.LunchEndResponse{}, fmt.Errorf("failed to end lunch: %w", err)
	}

	// Overlong lunch is allowed but flagged for compliance follow-up.
	if exceeded {
		t.alerts.Record(ctx, alert.ExcessiveLunchDetails{
			ApprenticeID:    entry.ApprenticeID,
			EntryID:         entry.ID,
			LunchMinutes:    int(math.Round(lunchMinutes)),
			StandardMinutes: t.cfg.StandardLunchMinutes,
			Timestamp:       now.Format(time.RFC3339),
		})
	}

	return timeclock.LunchEndResponse{
		Success:              true,
		Action:               timeclock.ActionLunchEnd,
		EntryID:              entry.ID,
		LunchEndAt:           now.Format(time.RFC3339),
		LunchDurationMinutes: int(math.Round(lunchMinutes)),
		ExceededStandard:     exceeded,
	}, nil
}

// ClockOut implements timeclock.TimeclockService.
func (t *TimeclockServiceImpl) ClockOut(ctx context.Context, req timeclock.ActionRequest) (timeclock.ClockOutResponse, error) {
	if err := req.Validate(); err != nil {
		return timeclock.ClockOutResponse{}, err
	}

	if err := t.checkAccuracy(req.AccuracyM); err != nil {
		return timeclock.ClockOutResponse{}, err
	}

	if err := t.checkPermission(ctx, req, enrollment.ActionClockOut); err != nil {
		return timeclock.ClockOutResponse{}, err
	}

	if _, err := t.checkGeofence(ctx, req); err != nil {
		return timeclock.ClockOutResponse{}, err
	}

	entry, err := t.shifts.GetByID(ctx, req.EntryID)
	if err != nil {
		return timeclock.ClockOutResponse{}, err
	}

	if entry.Closed() {
		return timeclock.ClockOutResponse{}, timeclock.ErrAlreadyClockedOut
	}

	now := t.clk.Now()
	shiftHours := now.Sub(entry.ClockInAt).Hours()

	// A six-hour shift without any lunch is a compliance violation, not a
	// blocking error; the clock-out still applies.
	if shiftHours >= t.cfg.MissingLunchShiftHours && entry.LunchStartAt == nil {
		t.alerts.Record(ctx, alert.MissingLunchDetails{
			ApprenticeID: entry.ApprenticeID,
			EntryID:      entry.ID,
			ShiftHours:   math.Round(shiftHours*10) / 10,
			Timestamp:    now.Format(time.RFC3339),
		})
	}

	entry.ClockOutAt = &now
	if err := t.shifts.Update(ctx, entry); err != nil {
		if errors.Is(err, timeclock.ErrShiftAlreadyClosed) {
			return timeclock.ClockOutResponse{}, timeclock.ErrAlreadyClockedOut
		}
		return timeclock.ClockOutResponse{}, fmt.Errorf("failed to clock out: %w", err)
	}

	// The store trigger derives hours_worked net of lunch; re-read it
	// rather than computing here.
	hours, err := t.shifts.GetHoursWorked(ctx, entry.ID)
	if err != nil {
		return timeclock.ClockOutResponse{}, fmt.Errorf("failed to read derived hours: %w", err)
	}

	return timeclock.ClockOutResponse{
		Success:     true,
		Action:      timeclock.ActionClockOut,
		EntryID:     entry.ID,
		ClockOutAt:  now.Format(time.RFC3339),
		HoursWorked: hours,
	}, nil
}

// Heartbeat implements timeclock.TimeclockService.
func (t *TimeclockServiceImpl) Heartbeat(ctx context.Context, req timeclock.HeartbeatRequest) (timeclock.HeartbeatResponse, error) {
	if err := req.Validate(); err != nil {
		return timeclock.HeartbeatResponse{}, err
	}

	if err := t.checkAccuracy(req.AccuracyM); err != nil {
		return timeclock.HeartbeatResponse{}, err
	}

	entry, err := t.shifts.GetByID(ctx, req.EntryID)
	if err != nil {
		return timeclock.HeartbeatResponse{}, err
	}

	// A closed shift is the terminal signal, not an error: a heartbeat
	// racing a clock-out simply observes the shift already terminated.
	if entry.Closed() {
		resp := timeclock.HeartbeatResponse{Closed: true}
		if entry.AutoClockedOut {
			resp.AutoClockedOut = true
			clockOutAt := entry.ClockOutAt.Format(time.RFC3339)
			resp.ClockOutAt = &clockOutAt
			resp.AutoClockOutReason = entry.AutoClockOutReason
		}
		return resp, nil
	}

	g, err := t.sites.GetByID(ctx, entry.SiteID)
	if err != nil {
		return timeclock.HeartbeatResponse{}, err
	}

	now := t.clk.Now()
	distance := math.Round(geo.DistanceMeters(req.Lat, req.Lng, g.CenterLat, g.CenterLng))
	within := distance <= g.RadiusM

	entry.LastHeartbeatAt = &now

	if within {
		entry.GeofenceStrikes = 0
		if err := t.shifts.Update(ctx, entry); err != nil && !errors.Is(err, timeclock.ErrShiftAlreadyClosed) {
			return timeclock.HeartbeatResponse{}, fmt.Errorf("failed to record heartbeat: %w", err)
		}
		return timeclock.HeartbeatResponse{
			WithinGeofence: true,
			DistanceM:      &distance,
		}, nil
	}

	entry.GeofenceStrikes++

	if entry.GeofenceStrikes >= t.cfg.GeofenceStrikes {
		reason := fmt.Sprintf("Outside site geofence for %d consecutive heartbeats", entry.GeofenceStrikes)
		entry.ClockOutAt = &now
		entry.AutoClockedOut = true
		entry.AutoClockOutReason = &reason

		if err := t.shifts.Update(ctx, entry); err != nil {
			if errors.Is(err, timeclock.ErrShiftAlreadyClosed) {
				// Lost the race; someone else closed the shift first.
				return timeclock.HeartbeatResponse{Closed: true}, nil
			}
			return timeclock.HeartbeatResponse{}, fmt.Errorf("failed to auto clock out: %w", err)
		}

		t.alerts.Record(ctx, alert.GeofenceViolationDetails{
			ApprenticeID: entry.ApprenticeID,
			SiteID:       g.SiteID,
			SiteName:     g.Name,
			Action:       "heartbeat",
			DistanceM:    distance,
			RadiusM:      g.RadiusM,
			Lat:          req.Lat,
			Lng:          req.Lng,
			Timestamp:    now.Format(time.RFC3339),
		})

		clockOutAt := now.Format(time.RFC3339)
		return timeclock.HeartbeatResponse{
			WithinGeofence:     false,
			DistanceM:          &distance,
			AutoClockedOut:     true,
			ClockOutAt:         &clockOutAt,
			AutoClockOutReason: &reason,
		}, nil
	}

	if err := t.shifts.Update(ctx, entry); err != nil && !errors.Is(err, timeclock.ErrShiftAlreadyClosed) {
		return timeclock.HeartbeatResponse{}, fmt.Errorf("failed to record heartbeat: %w", err)
	}

	return timeclock.HeartbeatResponse{
		WithinGeofence: false,
		DistanceM:      &distance,
	}, nil
}

// ListShifts implements timeclock.TimeclockService.
func (t *TimeclockServiceImpl) ListShifts(ctx context.Context, filter timeclock.ShiftFilter) (timeclock.ListShiftsResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	entries, total, err := t.shifts.List(ctx, filter)
	if err != nil {
		return timeclock.ListShiftsResponse{}, fmt.Errorf("failed to list shifts: %w", err)
	}

	shifts := make([]timeclock.ShiftResponse, 0, len(entries))
	for _, e := range entries {
		shifts = append(shifts, mapShiftToResponse(e))
	}

	return timeclock.ListShiftsResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Shifts:     shifts,
	}, nil
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}

func mapShiftToResponse(e timeclock.ShiftEntry) timeclock.ShiftResponse {
	return timeclock.ShiftResponse{
		ID:             e.ID,
		ApprenticeID:   e.ApprenticeID,
		SiteID:         e.SiteID,
		WorkDate:       e.WorkDate.Format("2006-01-02"),
		WeekEnding:     e.WeekEnding.Format("2006-01-02"),
		ClockInAt:      e.ClockInAt.Format(time.RFC3339),
		LunchStartAt:   timePtrToString(e.LunchStartAt),
		LunchEndAt:     timePtrToString(e.LunchEndAt),
		ClockOutAt:     timePtrToString(e.ClockOutAt),
		Status:         e.Status,
		AutoClockedOut: e.AutoClockedOut,
		HoursWorked:    e.HoursWorked,
	}
}
