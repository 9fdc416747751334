package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/audit"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
)

type traceRepository struct {
	store *Store
}

func NewTraceRepository(store *Store) audit.TraceRepository {
	return &traceRepository{store: store}
}

func (r *traceRepository) Append(ctx context.Context, q database.Querier, tr audit.Trace) (audit.Trace, error) {
	if h := r.store.hook().AppendTrace; h != nil {
		if err := h(tr); err != nil {
			return audit.Trace{}, err
		}
	}
	r.store.write(func(t *tables) {
		tr.ID = t.nextID("audit_traces")
		t.traces = append(t.traces, tr)
	})
	return tr, nil
}

func (r *traceRepository) ListByEntity(ctx context.Context, q database.Querier, kind audit.EntityKind, id int64) ([]audit.Trace, error) {
	var out []audit.Trace
	r.store.readFor(q, func(t *tables) {
		for _, tr := range t.traces {
			if tr.EntityKind == kind && tr.EntityID == id {
				out = append(out, tr)
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.Before(out[j].OccurredAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Traces returns every stored trace in append order.
func (s *Store) Traces() []audit.Trace {
	var out []audit.Trace
	s.read(func(t *tables) { out = append(out, t.traces...) })
	return out
}
