package timeclock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradelaunch/apprentice-backend-go/internal/domain/alert"
	"github.com/tradelaunch/apprentice-backend-go/internal/domain/enrollment"
	"github.com/tradelaunch/apprentice-backend-go/internal/domain/site"
	"github.com/tradelaunch/apprentice-backend-go/internal/domain/timeclock"
	"github.com/tradelaunch/apprentice-backend-go/internal/pkg/clock"
)

const (
	testSiteID = "site-1"
	siteLat    = 39.7684
	siteLng    = -86.1581
	siteRadius = 150.0
)

// farLat is well outside the site radius (several kilometers north).
const farLat = siteLat + 0.05

type fakeShiftRepo struct {
	mu      sync.Mutex
	entries map[string]timeclock.ShiftEntry
	hours   map[string]*float64
	nextID  int
}

func newFakeShiftRepo() *fakeShiftRepo {
	return &fakeShiftRepo{
		entries: make(map[string]timeclock.ShiftEntry),
		hours:   make(map[string]*float64),
	}
}

func (f *fakeShiftRepo) Create(_ context.Context, entry timeclock.ShiftEntry) (timeclock.ShiftEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	entry.ID = fmt.Sprintf("entry-%d", f.nextID)
	f.entries[entry.ID] = entry
	return entry, nil
}

func (f *fakeShiftRepo) GetByID(_ context.Context, id string) (timeclock.ShiftEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[id]
	if !ok {
		return timeclock.ShiftEntry{}, timeclock.ErrShiftNotFound
	}
	return entry, nil
}

func (f *fakeShiftRepo) Update(_ context.Context, entry timeclock.ShiftEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.entries[entry.ID]
	if !ok {
		return timeclock.ErrShiftNotFound
	}
	if stored.ClockOutAt != nil {
		return timeclock.ErrShiftAlreadyClosed
	}
	f.entries[entry.ID] = entry
	return nil
}

func (f *fakeShiftRepo) GetHoursWorked(_ context.Context, id string) (*float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[id]; !ok {
		return nil, timeclock.ErrShiftNotFound
	}
	return f.hours[id], nil
}

func (f *fakeShiftRepo) List(_ context.Context, filter timeclock.ShiftFilter) ([]timeclock.ShiftEntry, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var entries []timeclock.ShiftEntry
	for _, e := range f.entries {
		if filter.ApprenticeID != "" && e.ApprenticeID != filter.ApprenticeID {
			continue
		}
		entries = append(entries, e)
	}
	return entries, int64(len(entries)), nil
}

func (f *fakeShiftRepo) GetStaleOpenShifts(_ context.Context, cutoff time.Time) ([]timeclock.ShiftEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var stale []timeclock.ShiftEntry
	for _, e := range f.entries {
		if e.ClockOutAt != nil {
			continue
		}
		last := e.ClockInAt
		if e.LastHeartbeatAt != nil {
			last = *e.LastHeartbeatAt
		}
		if last.Before(cutoff) {
			stale = append(stale, e)
		}
	}
	return stale, nil
}

type fakeSiteRepo struct {
	sites map[string]site.Geofence
}

func (f *fakeSiteRepo) GetByID(_ context.Context, siteID string) (site.Geofence, error) {
	g, ok := f.sites[siteID]
	if !ok {
		return site.Geofence{}, site.ErrSiteNotFound
	}
	return g, nil
}

type recordingAlertRepo struct {
	mu     sync.Mutex
	alerts []alert.Alert
}

func (r *recordingAlertRepo) Create(_ context.Context, a alert.Alert) (alert.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = fmt.Sprintf("alert-%d", len(r.alerts)+1)
	r.alerts = append(r.alerts, a)
	return a, nil
}

func (r *recordingAlertRepo) List(_ context.Context, _ *bool, _ int) ([]alert.Alert, error) {
	return nil, nil
}

func (r *recordingAlertRepo) Resolve(_ context.Context, _ string) error {
	return nil
}

func (r *recordingAlertRepo) byType(alertType string) []alert.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []alert.Alert
	for _, a := range r.alerts {
		if a.Type == alertType {
			out = append(out, a)
		}
	}
	return out
}

type fakeChecker struct {
	perm       enrollment.Permission
	checkCalls int
	logCalls   int
}

func (f *fakeChecker) Check(_ context.Context, _ string, _ enrollment.Action, _ string) (enrollment.Permission, error) {
	f.checkCalls++
	return f.perm, nil
}

func (f *fakeChecker) LogCheck(_ context.Context, _ string, _ enrollment.Action, _ enrollment.Permission, _ string) {
	f.logCalls++
}

type testRig struct {
	svc    timeclock.TimeclockService
	shifts *fakeShiftRepo
	alerts *recordingAlertRepo
	perms  *fakeChecker
	clk    *clock.Fixed
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()

	shifts := newFakeShiftRepo()
	alerts := &recordingAlertRepo{}
	perms := &fakeChecker{perm: enrollment.Permission{Allowed: true, State: "active"}}
	clk := &clock.Fixed{Time: time.Date(2025, time.March, 12, 9, 0, 0, 0, time.UTC)} // a Wednesday

	sites := &fakeSiteRepo{sites: map[string]site.Geofence{
		testSiteID: {
			SiteID:    testSiteID,
			Name:      "Downtown Training Site",
			CenterLat: siteLat,
			CenterLng: siteLng,
			RadiusM:   siteRadius,
		},
	}}

	svc := NewTimeclockService(
		Config{
			MaxAccuracyMeters:      50,
			StandardLunchMinutes:   60,
			MissingLunchShiftHours: 6,
			GeofenceStrikes:        5,
		},
		clk,
		shifts,
		sites,
		alert.NewRecorder(alerts),
		perms,
	)

	return &testRig{svc: svc, shifts: shifts, alerts: alerts, perms: perms, clk: clk}
}

func accuracy(v float64) *float64 { return &v }

func actionReq(action, entryID string) timeclock.ActionRequest {
	return timeclock.ActionRequest{
		Action:       action,
		ApprenticeID: "apprentice-1",
		PartnerID:    "partner-1",
		ProgramID:    "program-1",
		SiteID:       testSiteID,
		EntryID:      entryID,
		Lat:          siteLat,
		Lng:          siteLng,
		AccuracyM:    accuracy(10),
	}
}

func clockIn(t *testing.T, rig *testRig) string {
	t.Helper()
	resp, err := rig.svc.ClockIn(context.Background(), actionReq(timeclock.ActionClockIn, ""))
	require.NoError(t, err)
	return resp.EntryID
}

func TestClockIn_Success(t *testing.T) {
	rig := newTestRig(t)

	resp, err := rig.svc.ClockIn(context.Background(), actionReq(timeclock.ActionClockIn, ""))

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, timeclock.ActionClockIn, resp.Action)
	assert.NotEmpty(t, resp.EntryID)
	assert.Equal(t, rig.clk.Time.Format(time.RFC3339), resp.ClockInAt)

	entry, err := rig.shifts.GetByID(context.Background(), resp.EntryID)
	require.NoError(t, err)
	assert.Equal(t, rig.clk.Time, entry.ClockInAt, "clock-in must use server time")
	assert.Equal(t, time.Saturday, entry.WeekEnding.Weekday())
	// Wednesday 2025-03-12 belongs to the week ending Saturday 2025-03-15.
	assert.Equal(t, time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC), entry.WeekEnding)
}

func TestClockIn_RejectsLowAccuracyBeforeOtherChecks(t *testing.T) {
	rig := newTestRig(t)

	req := actionReq(timeclock.ActionClockIn, "")
	req.AccuracyM = accuracy(80)

	_, err := rig.svc.ClockIn(context.Background(), req)

	var accErr *timeclock.AccuracyError
	require.ErrorAs(t, err, &accErr)
	assert.Equal(t, 80.0, accErr.AccuracyM)
	assert.Equal(t, 50.0, accErr.MaxAllowedM)
	assert.Zero(t, rig.perms.checkCalls, "accuracy gate must run before the permission check")
	assert.Empty(t, rig.alerts.alerts)
}

func TestClockIn_OutsideGeofence(t *testing.T) {
	rig := newTestRig(t)

	req := actionReq(timeclock.ActionClockIn, "")
	req.Lat = farLat

	_, err := rig.svc.ClockIn(context.Background(), req)

	var geoErr *timeclock.GeofenceError
	require.ErrorAs(t, err, &geoErr)
	assert.Greater(t, geoErr.DistanceM, siteRadius)
	assert.Equal(t, siteRadius, geoErr.RadiusM)

	violations := rig.alerts.byType(alert.TypeGeofenceViolation)
	require.Len(t, violations, 1, "rejected clock-in must still raise a geofence alert")

	entries, _, _ := rig.shifts.List(context.Background(), timeclock.ShiftFilter{})
	assert.Empty(t, entries, "no shift may be created outside the geofence")
}

func TestClockIn_UnknownSite(t *testing.T) {
	rig := newTestRig(t)

	req := actionReq(timeclock.ActionClockIn, "")
	req.SiteID = "site-missing"

	_, err := rig.svc.ClockIn(context.Background(), req)
	assert.ErrorIs(t, err, site.ErrSiteNotFound)
}

func TestClockIn_PermissionDenied(t *testing.T) {
	rig := newTestRig(t)
	rig.perms.perm = enrollment.Permission{
		Allowed: false,
		Message: "Enrollment is suspended; CLOCK_IN is not permitted",
		Reason:  "ENROLLMENT_INACTIVE",
		State:   "suspended",
	}

	_, err := rig.svc.ClockIn(context.Background(), actionReq(timeclock.ActionClockIn, ""))

	var permErr *timeclock.PermissionError
	require.ErrorAs(t, err, &permErr)
	assert.Equal(t, "Enrollment is suspended; CLOCK_IN is not permitted", permErr.Message)
	assert.Equal(t, "ENROLLMENT_INACTIVE", permErr.Reason)
	assert.Equal(t, "suspended", permErr.State)
	assert.Equal(t, 1, rig.perms.logCalls, "denied check must be logged")
}

func TestClockIn_MissingFields(t *testing.T) {
	rig := newTestRig(t)

	req := actionReq(timeclock.ActionClockIn, "")
	req.ApprenticeID = ""

	_, err := rig.svc.ClockIn(context.Background(), req)
	assert.Error(t, err)
	assert.Zero(t, rig.perms.checkCalls)
}

func TestWeekEnding(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "midweek rolls to coming Saturday",
			now:  time.Date(2025, time.March, 12, 9, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "Sunday starts a new week",
			now:  time.Date(2025, time.March, 9, 9, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "Saturday rolls to the next Saturday",
			now:  time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.March, 22, 9, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := weekEnding(tt.now)
			if !got.Equal(tt.want) {
				t.Errorf("weekEnding(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestLunchStart_Twice(t *testing.T) {
	rig := newTestRig(t)
	entryID := clockIn(t, rig)

	_, err := rig.svc.LunchStart(context.Background(), actionReq(timeclock.ActionLunchStart, entryID))
	require.NoError(t, err)

	_, err = rig.svc.LunchStart(context.Background(), actionReq(timeclock.ActionLunchStart, entryID))
	assert.ErrorIs(t, err, timeclock.ErrLunchAlreadyStarted)
}

func TestLunchEnd_WithoutStart(t *testing.T) {
	rig := newTestRig(t)
	entryID := clockIn(t, rig)

	_, err := rig.svc.LunchEnd(context.Background(), actionReq(timeclock.ActionLunchEnd, entryID))
	assert.ErrorIs(t, err, timeclock.ErrLunchNotStarted)
}

func TestLunchEnd_NormalDuration(t *testing.T) {
	rig := newTestRig(t)
	entryID := clockIn(t, rig)

	_, err := rig.svc.LunchStart(context.Background(), actionReq(timeclock.ActionLunchStart, entryID))
	require.NoError(t, err)

	rig.clk.Advance(30 * time.Minute)
	resp, err := rig.svc.LunchEnd(context.Background(), actionReq(timeclock.ActionLunchEnd, entryID))

	require.NoError(t, err)
	assert.Equal(t, 30, resp.LunchDurationMinutes)
	assert.False(t, resp.ExceededStandard)
	assert.Empty(t, rig.alerts.byType(alert.TypeExcessiveLunch))

	_, err = rig.svc.LunchEnd(context.Background(), actionReq(timeclock.ActionLunchEnd, entryID))
	assert.ErrorIs(t, err, timeclock.ErrLunchAlreadyEnded)
}

func TestLunchEnd_ExcessiveRaisesAlert(t *testing.T) {
	rig := newTestRig(t)
	entryID := clockIn(t, rig)

	_, err := rig.svc.LunchStart(context.Background(), actionReq(timeclock.ActionLunchStart, entryID))
	require.NoError(t, err)

	rig.clk.Advance(75 * time.Minute)
	resp, err := rig.svc.LunchEnd(context.Background(), actionReq(timeclock.ActionLunchEnd, entryID))

	require.NoError(t, err, "an overlong lunch still succeeds")
	assert.True(t, resp.ExceededStandard)
	assert.Equal(t, 75, resp.LunchDurationMinutes)
	assert.Len(t, rig.alerts.byType(alert.TypeExcessiveLunch), 1)
}

func TestClockOut_Success(t *testing.T) {
	rig := newTestRig(t)
	entryID := clockIn(t, rig)

	_, err := rig.svc.LunchStart(context.Background(), actionReq(timeclock.ActionLunchStart, entryID))
	require.NoError(t, err)
	rig.clk.Advance(time.Hour)
	_, err = rig.svc.LunchEnd(context.Background(), actionReq(timeclock.ActionLunchEnd, entryID))
	require.NoError(t, err)

	rig.clk.Advance(7 * time.Hour)
	derived := 7.0
	rig.shifts.hours[entryID] = &derived

	resp, err := rig.svc.ClockOut(context.Background(), actionReq(timeclock.ActionClockOut, entryID))

	require.NoError(t, err)
	require.NotNil(t, resp.HoursWorked)
	assert.Equal(t, 7.0, *resp.HoursWorked, "hours come from the derived store value")
	assert.Equal(t, rig.clk.Time.Format(time.RFC3339), resp.ClockOutAt)
	assert.Empty(t, rig.alerts.byType(alert.TypeMissingLunch))
}

func TestClockOut_AlreadyClosed(t *testing.T) {
	rig := newTestRig(t)
	entryID := clockIn(t, rig)

	rig.clk.Advance(4 * time.Hour)
	_, err := rig.svc.ClockOut(context.Background(), actionReq(timeclock.ActionClockOut, entryID))
	require.NoError(t, err)

	_, err = rig.svc.ClockOut(context.Background(), actionReq(timeclock.ActionClockOut, entryID))
	assert.ErrorIs(t, err, timeclock.ErrAlreadyClockedOut)
}

func TestClockOut_MissingLunchRaisesAlert(t *testing.T) {
	rig := newTestRig(t)
	entryID := clockIn(t, rig)

	rig.clk.Advance(7 * time.Hour)
	_, err := rig.svc.ClockOut(context.Background(), actionReq(timeclock.ActionClockOut, entryID))

	require.NoError(t, err, "missing lunch flags, it does not block")
	assert.Len(t, rig.alerts.byType(alert.TypeMissingLunch), 1)
}

func TestClockIn_AfterClockOutCreatesNewEntry(t *testing.T) {
	rig := newTestRig(t)
	first := clockIn(t, rig)

	rig.clk.Advance(4 * time.Hour)
	_, err := rig.svc.ClockOut(context.Background(), actionReq(timeclock.ActionClockOut, first))
	require.NoError(t, err)

	second := clockIn(t, rig)
	assert.NotEqual(t, first, second, "a closed entry is never reused")
}

func heartbeatReq(entryID string, lat float64) timeclock.HeartbeatRequest {
	return timeclock.HeartbeatRequest{
		EntryID:   entryID,
		Lat:       lat,
		Lng:       siteLng,
		AccuracyM: accuracy(10),
	}
}

func TestHeartbeat_InsideResetsStrikes(t *testing.T) {
	rig := newTestRig(t)
	entryID := clockIn(t, rig)

	// Two violations, then back inside.
	for i := 0; i < 2; i++ {
		resp, err := rig.svc.Heartbeat(context.Background(), heartbeatReq(entryID, farLat))
		require.NoError(t, err)
		assert.False(t, resp.WithinGeofence)
		assert.False(t, resp.AutoClockedOut)
	}

	resp, err := rig.svc.Heartbeat(context.Background(), heartbeatReq(entryID, siteLat))
	require.NoError(t, err)
	assert.True(t, resp.WithinGeofence)

	entry, err := rig.shifts.GetByID(context.Background(), entryID)
	require.NoError(t, err)
	assert.Zero(t, entry.GeofenceStrikes, "one good heartbeat clears the strike count")
	require.NotNil(t, entry.LastHeartbeatAt)
}

func TestHeartbeat_AutoClockOutAfterConsecutiveViolations(t *testing.T) {
	rig := newTestRig(t)
	entryID := clockIn(t, rig)

	for i := 0; i < 4; i++ {
		resp, err := rig.svc.Heartbeat(context.Background(), heartbeatReq(entryID, farLat))
		require.NoError(t, err)
		assert.False(t, resp.AutoClockedOut, "violation %d must not yet terminate", i+1)
	}

	resp, err := rig.svc.Heartbeat(context.Background(), heartbeatReq(entryID, farLat))
	require.NoError(t, err)
	assert.True(t, resp.AutoClockedOut)
	require.NotNil(t, resp.AutoClockOutReason)
	assert.Equal(t, "Outside site geofence for 5 consecutive heartbeats", *resp.AutoClockOutReason)
	require.NotNil(t, resp.ClockOutAt)

	entry, err := rig.shifts.GetByID(context.Background(), entryID)
	require.NoError(t, err)
	assert.True(t, entry.Closed())
	assert.True(t, entry.AutoClockedOut)
	assert.Len(t, rig.alerts.byType(alert.TypeGeofenceViolation), 1)
}

func TestHeartbeat_ClosedShiftIsTerminalSignal(t *testing.T) {
	rig := newTestRig(t)
	entryID := clockIn(t, rig)

	rig.clk.Advance(2 * time.Hour)
	_, err := rig.svc.ClockOut(context.Background(), actionReq(timeclock.ActionClockOut, entryID))
	require.NoError(t, err)

	resp, err := rig.svc.Heartbeat(context.Background(), heartbeatReq(entryID, siteLat))
	require.NoError(t, err, "a heartbeat against a closed shift is not an error")
	assert.True(t, resp.Closed)
	assert.False(t, resp.AutoClockedOut, "a manual clock-out is not reported as auto")
}

func TestHeartbeat_AfterAutoClockOutReportsClosedWithReason(t *testing.T) {
	rig := newTestRig(t)
	entryID := clockIn(t, rig)

	for i := 0; i < 5; i++ {
		_, err := rig.svc.Heartbeat(context.Background(), heartbeatReq(entryID, farLat))
		require.NoError(t, err)
	}

	resp, err := rig.svc.Heartbeat(context.Background(), heartbeatReq(entryID, siteLat))
	require.NoError(t, err)
	assert.True(t, resp.Closed)
	assert.True(t, resp.AutoClockedOut)
	require.NotNil(t, resp.AutoClockOutReason)
	assert.Contains(t, *resp.AutoClockOutReason, "consecutive heartbeats")
}

func TestHeartbeat_LowAccuracyRejected(t *testing.T) {
	rig := newTestRig(t)
	entryID := clockIn(t, rig)

	req := heartbeatReq(entryID, siteLat)
	req.AccuracyM = accuracy(120)

	_, err := rig.svc.Heartbeat(context.Background(), req)
	var accErr *timeclock.AccuracyError
	assert.ErrorAs(t, err, &accErr)
}

func TestHeartbeat_UnknownEntry(t *testing.T) {
	rig := newTestRig(t)

	_, err := rig.svc.Heartbeat(context.Background(), heartbeatReq("entry-missing", siteLat))
	assert.ErrorIs(t, err, timeclock.ErrShiftNotFound)
}

func TestSweeper_ClosesStaleShifts(t *testing.T) {
	rig := newTestRig(t)
	staleID := clockIn(t, rig)

	rig.clk.Advance(17 * time.Hour)
	freshID := clockIn(t, rig)

	sweeper := NewSweeper(rig.clk, rig.shifts, 16*time.Hour)
	require.NoError(t, sweeper.CloseStaleShifts(context.Background()))

	staleEntry, err := rig.shifts.GetByID(context.Background(), staleID)
	require.NoError(t, err)
	assert.True(t, staleEntry.Closed())
	assert.True(t, staleEntry.AutoClockedOut)
	require.NotNil(t, staleEntry.AutoClockOutReason)

	freshEntry, err := rig.shifts.GetByID(context.Background(), freshID)
	require.NoError(t, err)
	assert.False(t, freshEntry.Closed())
}

func TestSweeper_SkipsShiftsWithRecentHeartbeat(t *testing.T) {
	rig := newTestRig(t)
	entryID := clockIn(t, rig)

	rig.clk.Advance(17 * time.Hour)
	_, err := rig.svc.Heartbeat(context.Background(), heartbeatReq(entryID, siteLat))
	require.NoError(t, err)

	sweeper := NewSweeper(rig.clk, rig.shifts, 16*time.Hour)
	require.NoError(t, sweeper.CloseStaleShifts(context.Background()))

	entry, err := rig.shifts.GetByID(context.Background(), entryID)
	require.NoError(t, err)
	assert.False(t, entry.Closed(), "a heartbeating shift is not stale")
}

func TestFakeRepoGuard(t *testing.T) {
	// The fake mirrors the store's closed-shift guard; make sure it does,
	// since the race tests above depend on it.
	repo := newFakeShiftRepo()
	now := time.Now()
	entry, err := repo.Create(context.Background(), timeclock.ShiftEntry{ClockInAt: now})
	require.NoError(t, err)

	entry.ClockOutAt = &now
	require.NoError(t, repo.Update(context.Background(), entry))

	err = repo.Update(context.Background(), entry)
	assert.True(t, errors.Is(err, timeclock.ErrShiftAlreadyClosed))
}
