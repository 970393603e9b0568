package timeclock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tradelaunch/apprentice-backend-go/internal/domain/timeclock"
	"github.com/tradelaunch/apprentice-backend-go/internal/pkg/clock"
)

const sweeperReason = "Shift exceeded maximum open duration"

// Sweeper closes shifts left open past the staleness window, catching
// clients that stopped heartbeating without clocking out (dead battery,
// uninstalled app). Runs from the cron scheduler.
type Sweeper struct {
	clk       clock.Clock
	shifts    timeclock.ShiftRepository
	staleness time.Duration
}

func NewSweeper(clk clock.Clock, shiftRepo timeclock.ShiftRepository, staleness time.Duration) *Sweeper {
	return &Sweeper{
		clk:       clk,
		shifts:    shiftRepo,
		staleness: staleness,
	}
}

// CloseStaleShifts auto-clocks-out every open shift whose last activity is
// older than the staleness window. A shift closed by a racing writer in the
// meantime is skipped, not an error.
func (s *Sweeper) CloseStaleShifts(ctx context.Context) error {
	now := s.clk.Now()
	cutoff := now.Add(-s.staleness)

	stale, err := s.shifts.GetStaleOpenShifts(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to list stale open shifts: %w", err)
	}

	closed := 0
	for _, entry := range stale {
		reason := sweeperReason
		entry.ClockOutAt = &now
		entry.AutoClockedOut = true
		entry.AutoClockOutReason = &reason

		if err := s.shifts.Update(ctx, entry); err != nil {
			if errors.Is(err, timeclock.ErrShiftAlreadyClosed) {
				continue
			}
			slog.ErrorContext(ctx, "failed to close stale shift",
				slog.String("progress_entry_id", entry.ID),
				slog.Any("error", err),
			)
			continue
		}

		closed++
		slog.InfoContext(ctx, "auto-closed stale shift",
			slog.String("progress_entry_id", entry.ID),
			slog.String("apprentice_id", entry.ApprenticeID),
			slog.Time("clock_in_at", entry.ClockInAt),
		)
	}

	if closed > 0 {
		slog.InfoContext(ctx, "stale shift sweep finished", slog.Int("closed", closed))
	}

	return nil
}
