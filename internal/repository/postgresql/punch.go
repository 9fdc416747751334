package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/punch"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/timeofday"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type punchRepository struct{}

const punchColumns = `id, user_id, registered_by, schedule_window_id, date, start_time, end_time,
	superseded_by, deleted, created_at`

func scanPunch(row pgx.Row) (punch.Punch, error) {
	var (
		p     punch.Punch
		start pgtype.Time
		end   pgtype.Time
	)
	err := row.Scan(
		&p.ID, &p.UserID, &p.RegisteredBy, &p.ScheduleWindowID, &p.Date, &start, &end,
		&p.SupersededBy, &p.Deleted, &p.CreatedAt,
	)
	if err != nil {
		return punch.Punch{}, err
	}
	p.Start = timeofday.FromPG(start)
	p.End = timeofday.FromPGPtr(end)
	return p, nil
}

func collectPunches(rows pgx.Rows) ([]punch.Punch, error) {
	defer rows.Close()

	var punches []punch.Punch
	for rows.Next() {
		p, err := scanPunch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan punch: %w", err)
		}
		punches = append(punches, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate punches: %w", err)
	}
	return punches, nil
}

// Create implements punch.PunchRepository.
func (r *punchRepository) Create(ctx context.Context, q database.Querier, p punch.Punch) (punch.Punch, error) {
	query := `
		INSERT INTO punches (user_id, registered_by, schedule_window_id, date, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		p.UserID,
		p.RegisteredBy,
		p.ScheduleWindowID,
		p.Date,
		p.Start.PG(),
		timeofday.PGPtr(p.End),
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return punch.Punch{}, fmt.Errorf("failed to create punch: %w", database.TranslateError(err))
	}

	return p, nil
}

// GetByID implements punch.PunchRepository.
func (r *punchRepository) GetByID(ctx context.Context, q database.Querier, id int64) (punch.Punch, error) {
	query := `SELECT ` + punchColumns + ` FROM punches WHERE id = $1`

	p, err := scanPunch(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return punch.Punch{}, punch.ErrPunchNotFound
		}
		return punch.Punch{}, fmt.Errorf("failed to get punch by ID: %w", err)
	}

	return p, nil
}

// ListActiveByUserDate implements punch.PunchRepository.
func (r *punchRepository) ListActiveByUserDate(ctx context.Context, q database.Querier, userID int64, date time.Time, excludeID *int64) ([]punch.Punch, error) {
	query := `
		SELECT ` + punchColumns + `
		FROM active_punches
		WHERE user_id = $1
		  AND date = $2
		  AND ($3::BIGINT IS NULL OR id <> $3)
		ORDER BY start_time, id
	`

	rows, err := q.Query(ctx, query, userID, date, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active punches: %w", err)
	}
	return collectPunches(rows)
}

// GetOpen implements punch.PunchRepository.
func (r *punchRepository) GetOpen(ctx context.Context, q database.Querier, userID int64, date time.Time) (punch.Punch, error) {
	query := `
		SELECT ` + punchColumns + `
		FROM active_punches
		WHERE user_id = $1
		  AND date = $2
		  AND end_time IS NULL
		ORDER BY start_time DESC
		LIMIT 1
	`

	p, err := scanPunch(q.QueryRow(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return punch.Punch{}, punch.ErrNoOpenPunch
		}
		return punch.Punch{}, fmt.Errorf("failed to get open punch: %w", err)
	}

	return p, nil
}

// SetEnd implements punch.PunchRepository.
func (r *punchRepository) SetEnd(ctx context.Context, q database.Querier, id int64, end timeofday.Time) (bool, error) {
	query := `
		UPDATE punches
		SET end_time = $2
		WHERE id = $1
		  AND end_time IS NULL
		  AND superseded_by IS NULL
		  AND NOT deleted
	`

	commandTag, err := q.Exec(ctx, query, id, end.PG())
	if err != nil {
		return false, fmt.Errorf("failed to set punch end time: %w", database.TranslateError(err))
	}

	return commandTag.RowsAffected() > 0, nil
}

// MarkSupersededBy implements punch.PunchRepository.
func (r *punchRepository) MarkSupersededBy(ctx context.Context, q database.Querier, oldID, newID int64) (bool, error) {
	query := `
		UPDATE punches
		SET superseded_by = $2
		WHERE id = $1
		  AND superseded_by IS NULL
		  AND NOT deleted
	`

	commandTag, err := q.Exec(ctx, query, oldID, newID)
	if err != nil {
		return false, fmt.Errorf("failed to supersede punch: %w", database.TranslateError(err))
	}

	return commandTag.RowsAffected() > 0, nil
}

// MarkDeleted implements punch.PunchRepository.
func (r *punchRepository) MarkDeleted(ctx context.Context, q database.Querier, id int64) (bool, error) {
	query := `
		UPDATE punches
		SET deleted = true
		WHERE id = $1
		  AND superseded_by IS NULL
		  AND NOT deleted
	`

	commandTag, err := q.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete punch: %w", err)
	}

	return commandTag.RowsAffected() > 0, nil
}

// List implements punch.PunchRepository.
func (r *punchRepository) List(ctx context.Context, q database.Querier, filter punch.ListFilter) ([]punch.Punch, error) {
	// Build WHERE clause
	where := "p.user_id = $1 AND p.date BETWEEN $2 AND $3"
	args := []interface{}{filter.UserID, filter.From, filter.To}
	argIdx := 4

	if filter.RegisteredBy != nil {
		where += fmt.Sprintf(" AND p.registered_by = $%d", argIdx)
		args = append(args, *filter.RegisteredBy)
		argIdx++
	}

	if filter.ExcludeIncidentLinked {
		where += " AND NOT EXISTS (SELECT 1 FROM incidents i WHERE i.punch_id = p.id)"
	}

	query := `
		SELECT p.id, p.user_id, p.registered_by, p.schedule_window_id, p.date, p.start_time, p.end_time,
			   p.superseded_by, p.deleted, p.created_at
		FROM active_punches p
		WHERE ` + where + `
		ORDER BY p.date, p.start_time
	`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query punches: %w", err)
	}
	return collectPunches(rows)
}

// Recent implements punch.PunchRepository.
func (r *punchRepository) Recent(ctx context.Context, q database.Querier, userID int64, limit int) ([]punch.Punch, error) {
	query := `
		SELECT ` + punchColumns + `
		FROM active_punches
		WHERE user_id = $1
		ORDER BY date DESC, start_time DESC
		LIMIT $2
	`

	rows, err := q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent punches: %w", err)
	}
	return collectPunches(rows)
}

func NewPunchRepository() punch.PunchRepository {
	return &punchRepository{}
}
