package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/audit"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
)

type traceRepository struct{}

// Append implements audit.TraceRepository.
func (r *traceRepository) Append(ctx context.Context, q database.Querier, t audit.Trace) (audit.Trace, error) {
	query := `
		INSERT INTO audit_traces (actor_id, type, entity_kind, entity_id, occurred_at, motive)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := q.QueryRow(ctx, query,
		t.ActorID,
		string(t.Type),
		string(t.EntityKind),
		t.EntityID,
		t.OccurredAt,
		t.Motive,
	).Scan(&t.ID)
	if err != nil {
		return audit.Trace{}, fmt.Errorf("failed to append audit trace: %w", err)
	}

	return t, nil
}

// ListByEntity implements audit.TraceRepository.
func (r *traceRepository) ListByEntity(ctx context.Context, q database.Querier, kind audit.EntityKind, id int64) ([]audit.Trace, error) {
	query := `
		SELECT id, actor_id, type, entity_kind, entity_id, occurred_at, motive
		FROM audit_traces
		WHERE entity_kind = $1
		  AND entity_id = $2
		ORDER BY occurred_at, id
	`

	rows, err := q.Query(ctx, query, string(kind), id)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit traces: %w", err)
	}
	defer rows.Close()

	var traces []audit.Trace
	for rows.Next() {
		var (
			t          audit.Trace
			typ, eKind string
		)
		if err := rows.Scan(&t.ID, &t.ActorID, &typ, &eKind, &t.EntityID, &t.OccurredAt, &t.Motive); err != nil {
			return nil, fmt.Errorf("failed to scan audit trace: %w", err)
		}
		t.Type = audit.TraceType(typ)
		t.EntityKind = audit.EntityKind(eKind)
		traces = append(traces, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit traces: %w", err)
	}

	return traces, nil
}

func NewTraceRepository() audit.TraceRepository {
	return &traceRepository{}
}
