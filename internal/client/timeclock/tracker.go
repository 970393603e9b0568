package timeclock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	domain "github.com/tradelaunch/apprentice-backend-go/internal/domain/timeclock"
)

const (
	// DefaultInterval is how often an open shift reports its position.
	DefaultInterval = 2 * time.Minute

	// DefaultMaxAccuracyMeters matches the server-side accuracy gate; the
	// watch discards coarser fixes so a heartbeat never carries a position
	// the server would reject anyway.
	DefaultMaxAccuracyMeters = 50.0
)

var ErrAlreadyTracking = errors.New("tracker already running")

// API is the server surface the tracker reports to.
type API interface {
	Heartbeat(ctx context.Context, req domain.HeartbeatRequest) (domain.HeartbeatResponse, error)
}

// Tracker runs the client-side geofence loop for one open shift: a GPS
// watch keeps a last-known position current, and an interval timer reports
// it to the server. The two activities share only the last-known position;
// updates are last-write-wins and a heartbeat tolerates a slightly stale
// fix.
//
// The loop stops unconditionally when the server reports auto_clocked_out
// or closed, and on Stop. Leaving it running past any of those leaks the
// timer and the GPS watch.
type Tracker struct {
	api          API
	geo          Geolocator
	interval     time.Duration
	maxAccuracyM float64
	logger       *slog.Logger

	// OnAutoClockOut is invoked once, from the loop goroutine, when the
	// server terminates the shift. The reason string is user-facing. The
	// tracker tears itself down afterwards; the callback must not call Stop.
	OnAutoClockOut func(reason string, clockOutAt *string)

	mu        sync.Mutex
	starting  bool
	lastPos   *Position
	stopWatch func()
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewTracker(api API, geo Geolocator, interval time.Duration, maxAccuracyM float64, logger *slog.Logger) *Tracker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if maxAccuracyM <= 0 {
		maxAccuracyM = DefaultMaxAccuracyMeters
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		api:          api,
		geo:          geo,
		interval:     interval,
		maxAccuracyM: maxAccuracyM,
		logger:       logger,
	}
}

// Start acquires a fresh fix, begins the GPS watch, and launches the
// heartbeat loop for the given shift entry. A geolocation failure is
// returned to the caller; Start never retries acquisition on its own.
func (t *Tracker) Start(ctx context.Context, entryID string) error {
	// The starting flag reserves the tracker for the whole start sequence,
	// so a second Start overlapping the position fix cannot slip past the
	// guard and leak a watch.
	t.mu.Lock()
	if t.starting || t.done != nil {
		t.mu.Unlock()
		return ErrAlreadyTracking
	}
	t.starting = true
	t.mu.Unlock()

	abort := func() {
		t.mu.Lock()
		t.starting = false
		t.mu.Unlock()
	}

	pos, err := t.geo.Current(ctx)
	if err != nil {
		abort()
		return fmt.Errorf("failed to acquire position: %w", err)
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	stopWatch, err := t.geo.Watch(loopCtx, t.observe)
	if err != nil {
		cancel()
		abort()
		return fmt.Errorf("failed to start position watch: %w", err)
	}

	t.mu.Lock()
	t.starting = false
	t.lastPos = &pos
	t.stopWatch = stopWatch
	t.cancel = cancel
	t.done = make(chan struct{})
	done := t.done
	t.mu.Unlock()

	go t.loop(loopCtx, entryID, done)
	return nil
}

// Stop halts the heartbeat timer and the GPS watch. Safe to call from any
// goroutine and more than once.
func (t *Tracker) Stop() {
	t.mu.Lock()
	cancel := t.cancel
	stopWatch := t.stopWatch
	done := t.done
	t.cancel = nil
	t.stopWatch = nil
	t.done = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if stopWatch != nil {
		stopWatch()
	}
	if done != nil {
		<-done
	}
}

// Done reports when the loop has exited, whether by Stop or by a terminal
// server response.
func (t *Tracker) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return t.done
}

// observe is the watch callback. Fixes coarser than the accuracy gate are
// dropped; the server would reject them and they would only degrade the
// last-known position.
func (t *Tracker) observe(pos Position) {
	if pos.AccuracyM > t.maxAccuracyM {
		return
	}
	t.mu.Lock()
	t.lastPos = &pos
	t.mu.Unlock()
}

func (t *Tracker) loop(ctx context.Context, entryID string, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if t.beat(ctx, entryID) {
				t.teardown()
				return
			}
		}
	}
}

// beat sends one heartbeat. It returns true when the loop must stop: the
// server auto-clocked the shift out or reports it already closed. A network
// failure is logged and the loop continues; one missed beat is not fatal.
func (t *Tracker) beat(ctx context.Context, entryID string) bool {
	t.mu.Lock()
	pos := t.lastPos
	t.mu.Unlock()
	if pos == nil {
		return false
	}

	accuracy := pos.AccuracyM
	resp, err := t.api.Heartbeat(ctx, domain.HeartbeatRequest{
		EntryID:   entryID,
		Lat:       pos.Lat,
		Lng:       pos.Lng,
		AccuracyM: &accuracy,
	})
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		t.logger.Warn("heartbeat failed, will retry on next interval",
			slog.String("progress_entry_id", entryID),
			slog.Any("error", err),
		)
		return false
	}

	if resp.AutoClockedOut {
		reason := "Shift was automatically clocked out"
		if resp.AutoClockOutReason != nil {
			reason = *resp.AutoClockOutReason
		}
		if t.OnAutoClockOut != nil {
			t.OnAutoClockOut(reason, resp.ClockOutAt)
		}
		return true
	}

	return resp.Closed
}

// teardown releases the watch and timer context after a terminal server
// response, without waiting on done (the loop goroutine is the caller).
func (t *Tracker) teardown() {
	t.mu.Lock()
	cancel := t.cancel
	stopWatch := t.stopWatch
	t.cancel = nil
	t.stopWatch = nil
	t.done = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if stopWatch != nil {
		stopWatch()
	}
}
