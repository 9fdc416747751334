package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/timeofday"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type scheduleRepository struct{}

func scanWindow(row pgx.Row) (schedule.Window, error) {
	var (
		w          schedule.Window
		weekday    int16
		start, end pgtype.Time
	)
	if err := row.Scan(&w.ID, &w.SetID, &weekday, &start, &end); err != nil {
		return schedule.Window{}, err
	}
	w.Weekday = time.Weekday(weekday)
	w.Start = timeofday.FromPG(start)
	w.End = timeofday.FromPG(end)
	return w, nil
}

// LatestSetBefore implements schedule.ScheduleRepository.
func (r *scheduleRepository) LatestSetBefore(ctx context.Context, q database.Querier, userID int64, date time.Time) (schedule.Set, error) {
	query := `
		SELECT id, user_id, effective_from, created_at
		FROM schedule_sets
		WHERE user_id = $1
		  AND effective_from < $2
		ORDER BY effective_from DESC
		LIMIT 1
	`

	var set schedule.Set
	err := q.QueryRow(ctx, query, userID, date).Scan(&set.ID, &set.UserID, &set.EffectiveFrom, &set.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.Set{}, schedule.ErrNoScheduleConfigured
		}
		return schedule.Set{}, fmt.Errorf("failed to get latest schedule set: %w", err)
	}

	return set, nil
}

// WindowsForWeekday implements schedule.ScheduleRepository.
func (r *scheduleRepository) WindowsForWeekday(ctx context.Context, q database.Querier, setID int64, weekday time.Weekday) ([]schedule.Window, error) {
	query := `
		SELECT id, schedule_set_id, weekday, start_time, end_time
		FROM schedule_windows
		WHERE schedule_set_id = $1
		  AND weekday = $2
		ORDER BY start_time, id
	`

	rows, err := q.Query(ctx, query, setID, int16(weekday))
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule windows: %w", err)
	}
	defer rows.Close()

	var windows []schedule.Window
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule window: %w", err)
		}
		windows = append(windows, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schedule windows: %w", err)
	}

	return windows, nil
}

// GetWindow implements schedule.ScheduleRepository.
func (r *scheduleRepository) GetWindow(ctx context.Context, q database.Querier, id int64) (schedule.Window, error) {
	query := `SELECT id, schedule_set_id, weekday, start_time, end_time FROM schedule_windows WHERE id = $1`

	w, err := scanWindow(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.Window{}, schedule.ErrWindowNotFound
		}
		return schedule.Window{}, fmt.Errorf("failed to get schedule window: %w", err)
	}

	return w, nil
}

// CreateSet implements schedule.ScheduleRepository.
func (r *scheduleRepository) CreateSet(ctx context.Context, q database.Querier, set schedule.Set) (schedule.Set, error) {
	query := `
		INSERT INTO schedule_sets (user_id, effective_from)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	if err := q.QueryRow(ctx, query, set.UserID, set.EffectiveFrom).Scan(&set.ID, &set.CreatedAt); err != nil {
		if database.IsUniqueViolation(err) {
			return schedule.Set{}, schedule.ErrSetAlreadyExists
		}
		return schedule.Set{}, fmt.Errorf("failed to create schedule set: %w", database.TranslateError(err))
	}

	windowQuery := `
		INSERT INTO schedule_windows (schedule_set_id, weekday, start_time, end_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	for i := range set.Windows {
		w := &set.Windows[i]
		w.SetID = set.ID
		if err := q.QueryRow(ctx, windowQuery, set.ID, int16(w.Weekday), w.Start.PG(), w.End.PG()).Scan(&w.ID); err != nil {
			return schedule.Set{}, fmt.Errorf("failed to create schedule window: %w", database.TranslateError(err))
		}
	}

	return set, nil
}

// ListSets implements schedule.ScheduleRepository.
func (r *scheduleRepository) ListSets(ctx context.Context, q database.Querier, userID int64) ([]schedule.Set, error) {
	query := `
		SELECT s.id, s.user_id, s.effective_from, s.created_at,
			   w.id, w.schedule_set_id, w.weekday, w.start_time, w.end_time
		FROM schedule_sets s
		JOIN schedule_windows w ON w.schedule_set_id = s.id
		WHERE s.user_id = $1
		ORDER BY s.effective_from DESC, w.weekday, w.start_time
	`

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule sets: %w", err)
	}
	defer rows.Close()

	var sets []schedule.Set
	for rows.Next() {
		var (
			set        schedule.Set
			w          schedule.Window
			weekday    int16
			start, end pgtype.Time
		)
		err := rows.Scan(
			&set.ID, &set.UserID, &set.EffectiveFrom, &set.CreatedAt,
			&w.ID, &w.SetID, &weekday, &start, &end,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule set: %w", err)
		}
		w.Weekday = time.Weekday(weekday)
		w.Start = timeofday.FromPG(start)
		w.End = timeofday.FromPG(end)

		if n := len(sets); n > 0 && sets[n-1].ID == set.ID {
			sets[n-1].Windows = append(sets[n-1].Windows, w)
			continue
		}
		set.Windows = []schedule.Window{w}
		sets = append(sets, set)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schedule sets: %w", err)
	}

	return sets, nil
}

func NewScheduleRepository() schedule.ScheduleRepository {
	return &scheduleRepository{}
}
