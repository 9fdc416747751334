package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/incident"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/timeofday"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type incidentRepository struct{}

const incidentSelect = `
	SELECT i.id, i.type, i.user_id, i.punch_id, i.date, i.start_time, i.end_time,
		   i.requested_by, i.requested_at, i.state, i.state_changed_at, i.error,
		   i.resolved_by, i.resolved_at, i.request_motive, i.rejection_motive,
		   p.start_time, p.end_time
	FROM incidents i
	LEFT JOIN punches p ON p.id = i.punch_id
`

func scanIncident(row pgx.Row) (incident.Incident, error) {
	var (
		inc                  incident.Incident
		typ, state           int16
		start, end           pgtype.Time
		punchStart, punchEnd pgtype.Time
	)
	err := row.Scan(
		&inc.ID, &typ, &inc.UserID, &inc.PunchID, &inc.Date, &start, &end,
		&inc.RequestedBy, &inc.RequestedAt, &state, &inc.StateChangedAt, &inc.Error,
		&inc.ResolvedBy, &inc.ResolvedAt, &inc.RequestMotive, &inc.RejectionMotive,
		&punchStart, &punchEnd,
	)
	if err != nil {
		return incident.Incident{}, err
	}
	inc.Type = incident.Type(typ)
	inc.State = incident.State(state)
	inc.Start = timeofday.FromPGPtr(start)
	inc.End = timeofday.FromPGPtr(end)
	if punchStart.Valid {
		inc.Punch = &incident.PunchSummary{
			Start: timeofday.FromPG(punchStart),
			End:   timeofday.FromPGPtr(punchEnd),
		}
	}
	return inc, nil
}

// Create implements incident.IncidentRepository.
func (r *incidentRepository) Create(ctx context.Context, q database.Querier, inc incident.Incident) (incident.Incident, error) {
	query := `
		INSERT INTO incidents (
			type, user_id, punch_id, date, start_time, end_time,
			requested_by, requested_at, state, request_motive
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err := q.QueryRow(ctx, query,
		int16(inc.Type),
		inc.UserID,
		inc.PunchID,
		inc.Date,
		timeofday.PGPtr(inc.Start),
		timeofday.PGPtr(inc.End),
		inc.RequestedBy,
		inc.RequestedAt,
		int16(inc.State),
		inc.RequestMotive,
	).Scan(&inc.ID)
	if err != nil {
		return incident.Incident{}, fmt.Errorf("failed to create incident: %w", database.TranslateError(err))
	}

	return inc, nil
}

// GetByID implements incident.IncidentRepository.
func (r *incidentRepository) GetByID(ctx context.Context, q database.Querier, id int64) (incident.Incident, error) {
	inc, err := scanIncident(q.QueryRow(ctx, incidentSelect+` WHERE i.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return incident.Incident{}, incident.ErrIncidentNotFound
		}
		return incident.Incident{}, fmt.Errorf("failed to get incident by ID: %w", err)
	}

	return inc, nil
}

// UpdateState implements incident.IncidentRepository.
func (r *incidentRepository) UpdateState(ctx context.Context, q database.Querier, u incident.StateUpdate) (bool, error) {
	query := `
		UPDATE incidents
		SET state = $3,
			error = $4,
			resolved_by = $5,
			resolved_at = $6,
			state_changed_at = $7,
			rejection_motive = COALESCE($8, rejection_motive)
		WHERE id = $1
		  AND state = $2
	`

	commandTag, err := q.Exec(ctx, query,
		u.ID,
		int16(u.Expected),
		int16(u.Next),
		u.Error,
		u.ResolvedBy,
		u.ResolvedAt,
		u.StateChangedAt,
		u.RejectionMotive,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update incident state: %w", err)
	}

	return commandTag.RowsAffected() > 0, nil
}

// Resubmit implements incident.IncidentRepository.
func (r *incidentRepository) Resubmit(ctx context.Context, q database.Querier, rs incident.Resubmission) (bool, error) {
	query := `
		UPDATE incidents
		SET state = $3,
			request_motive = $4,
			requested_at = $5,
			start_time = COALESCE($6, start_time),
			end_time = COALESCE($7, end_time),
			requested_by = $8,
			rejection_motive = NULL,
			state_changed_at = NULL,
			error = NULL,
			resolved_by = NULL,
			resolved_at = NULL
		WHERE id = $1
		  AND state = $2
	`

	commandTag, err := q.Exec(ctx, query,
		rs.ID,
		int16(rs.From),
		int16(incident.StateRequested),
		rs.Motive,
		rs.RequestedAt,
		timeofday.PGPtr(rs.Start),
		timeofday.PGPtr(rs.End),
		rs.RequestedBy,
	)
	if err != nil {
		return false, fmt.Errorf("failed to resubmit incident: %w", database.TranslateError(err))
	}

	return commandTag.RowsAffected() > 0, nil
}

// List implements incident.IncidentRepository.
func (r *incidentRepository) List(ctx context.Context, q database.Querier, filter incident.ListFilter) ([]incident.Incident, error) {
	// Build WHERE clause
	where := "TRUE"
	args := []interface{}{}
	argIdx := 1

	if filter.ID != nil {
		where += fmt.Sprintf(" AND i.id = $%d", argIdx)
		args = append(args, *filter.ID)
		argIdx++
	}

	if filter.From != nil {
		where += fmt.Sprintf(" AND i.requested_at >= $%d", argIdx)
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		where += fmt.Sprintf(" AND i.requested_at < $%d", argIdx)
		args = append(args, *filter.To)
		argIdx++
	}

	if len(filter.States) > 0 {
		states := make([]int16, 0, len(filter.States))
		for _, s := range filter.States {
			states = append(states, int16(s))
		}
		where += fmt.Sprintf(" AND i.state = ANY($%d)", argIdx)
		args = append(args, states)
		argIdx++
	}

	// Visibility scope
	if filter.Scope.Supervisor {
		where += fmt.Sprintf(" AND (i.requested_by <> i.user_id OR i.requested_by = $%d)", argIdx)
	} else {
		where += fmt.Sprintf(" AND i.requested_by = $%d", argIdx)
	}
	args = append(args, filter.Scope.ActorID)

	query := incidentSelect + ` WHERE ` + where + ` ORDER BY i.requested_at ASC, i.state ASC, i.date ASC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query incidents: %w", err)
	}
	defer rows.Close()

	var incidents []incident.Incident
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}
		incidents = append(incidents, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate incidents: %w", err)
	}

	return incidents, nil
}

func NewIncidentRepository() incident.IncidentRepository {
	return &incidentRepository{}
}
