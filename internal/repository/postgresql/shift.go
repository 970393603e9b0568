package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tradelaunch/apprentice-backend-go/internal/domain/timeclock"
	"github.com/tradelaunch/apprentice-backend-go/internal/pkg/database"
)

type shiftRepository struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) timeclock.ShiftRepository {
	return &shiftRepository{db: db}
}

const shiftColumns = `id, apprentice_id, partner_id, program_id, site_id,
	   work_date, week_ending, clock_in_at, lunch_start_at, lunch_end_at,
	   clock_out_at, status, auto_clocked_out, auto_clock_out_reason,
	   hours_worked, geofence_strikes, last_heartbeat_at, created_at, updated_at`

func scanShift(row pgx.Row) (timeclock.ShiftEntry, error) {
	var e timeclock.ShiftEntry
	err := row.Scan(
		&e.ID, &e.ApprenticeID, &e.PartnerID, &e.ProgramID, &e.SiteID,
		&e.WorkDate, &e.WeekEnding, &e.ClockInAt, &e.LunchStartAt, &e.LunchEndAt,
		&e.ClockOutAt, &e.Status, &e.AutoClockedOut, &e.AutoClockOutReason,
		&e.HoursWorked, &e.GeofenceStrikes, &e.LastHeartbeatAt, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// Create implements timeclock.ShiftRepository.
func (s *shiftRepository) Create(ctx context.Context, entry timeclock.ShiftEntry) (timeclock.ShiftEntry, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		INSERT INTO progress_entries (
			apprentice_id, partner_id, program_id, site_id,
			work_date, week_ending, clock_in_at, status, geofence_strikes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, 0
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		entry.ApprenticeID,
		entry.PartnerID,
		entry.ProgramID,
		entry.SiteID,
		entry.WorkDate,
		entry.WeekEnding,
		entry.ClockInAt,
		entry.Status,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)

	if err != nil {
		return timeclock.ShiftEntry{}, fmt.Errorf("failed to create shift entry: %w", err)
	}

	return entry, nil
}

// GetByID implements timeclock.ShiftRepository.
func (s *shiftRepository) GetByID(ctx context.Context, id string) (timeclock.ShiftEntry, error) {
	q := GetQuerier(ctx, s.db)

	query := `SELECT ` + shiftColumns + ` FROM progress_entries WHERE id = $1`

	entry, err := scanShift(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return timeclock.ShiftEntry{}, timeclock.ErrShiftNotFound
		}
		return timeclock.ShiftEntry{}, fmt.Errorf("failed to get shift entry: %w", err)
	}

	return entry, nil
}

// Update implements timeclock.ShiftRepository. The clock_out_at guard is the
// race arbiter: once any writer closes the shift, every later Update loses
// and reports ErrShiftAlreadyClosed instead of silently overwriting.
func (s *shiftRepository) Update(ctx context.Context, entry timeclock.ShiftEntry) error {
	q := GetQuerier(ctx, s.db)

	query := `
		UPDATE progress_entries
		SET lunch_start_at = $2,
			lunch_end_at = $3,
			clock_out_at = $4,
			status = $5,
			auto_clocked_out = $6,
			auto_clock_out_reason = $7,
			geofence_strikes = $8,
			last_heartbeat_at = $9,
			updated_at = NOW()
		WHERE id = $1
		  AND clock_out_at IS NULL
	`

	tag, err := q.Exec(ctx, query,
		entry.ID,
		entry.LunchStartAt,
		entry.LunchEndAt,
		entry.ClockOutAt,
		entry.Status,
		entry.AutoClockedOut,
		entry.AutoClockOutReason,
		entry.GeofenceStrikes,
		entry.LastHeartbeatAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update shift entry: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM progress_entries WHERE id = $1)`, entry.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check shift entry: %w", err)
		}
		if !exists {
			return timeclock.ErrShiftNotFound
		}
		return timeclock.ErrShiftAlreadyClosed
	}

	return nil
}

// GetHoursWorked implements timeclock.ShiftRepository.
func (s *shiftRepository) GetHoursWorked(ctx context.Context, id string) (*float64, error) {
	q := GetQuerier(ctx, s.db)

	var hours *float64
	err := q.QueryRow(ctx, `SELECT hours_worked FROM progress_entries WHERE id = $1`, id).Scan(&hours)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, timeclock.ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to get hours worked: %w", err)
	}

	return hours, nil
}

// List implements timeclock.ShiftRepository.
func (s *shiftRepository) List(ctx context.Context, filter timeclock.ShiftFilter) ([]timeclock.ShiftEntry, int64, error) {
	q := GetQuerier(ctx, s.db)

	conditions := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if filter.ApprenticeID != "" {
		conditions = append(conditions, fmt.Sprintf("apprentice_id = $%d", argPos))
		args = append(args, filter.ApprenticeID)
		argPos++
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM progress_entries WHERE ` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count shift entries: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}

	query := fmt.Sprintf(`
		SELECT %s FROM progress_entries
		WHERE %s
		ORDER BY clock_in_at DESC
		LIMIT $%d OFFSET $%d
	`, shiftColumns, where, argPos, argPos+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list shift entries: %w", err)
	}
	defer rows.Close()

	var entries []timeclock.ShiftEntry
	for rows.Next() {
		entry, err := scanShift(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan shift entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate shift entries: %w", err)
	}

	return entries, total, nil
}

// GetStaleOpenShifts implements timeclock.ShiftRepository. A shift with no
// heartbeat falls back to its clock-in time as the last activity marker.
func (s *shiftRepository) GetStaleOpenShifts(ctx context.Context, cutoff time.Time) ([]timeclock.ShiftEntry, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT ` + shiftColumns + `
		FROM progress_entries
		WHERE clock_out_at IS NULL
		  AND COALESCE(last_heartbeat_at, clock_in_at) < $1
		ORDER BY clock_in_at
	`

	rows, err := q.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale open shifts: %w", err)
	}
	defer rows.Close()

	var entries []timeclock.ShiftEntry
	for rows.Next() {
		entry, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stale open shifts: %w", err)
	}

	return entries, nil
}
