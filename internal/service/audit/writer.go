package audit

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/audit"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
)

type writerImpl struct {
	traceRepo audit.TraceRepository
	clock     clock.Clock
}

// Append implements audit.Writer.
func (w *writerImpl) Append(ctx context.Context, q database.Querier, t audit.Trace) error {
	if t.Type == "" || t.EntityKind == "" || t.EntityID == 0 {
		return audit.ErrTraceIncomplete
	}
	if t.OccurredAt.IsZero() {
		t.OccurredAt = w.clock.Now()
	}

	if _, err := w.traceRepo.Append(ctx, q, t); err != nil {
		return fmt.Errorf("failed to append %s trace for %s %d: %w", t.Type, t.EntityKind, t.EntityID, err)
	}
	return nil
}

// ListByEntity implements audit.Writer.
func (w *writerImpl) ListByEntity(ctx context.Context, q database.Querier, kind audit.EntityKind, id int64) ([]audit.Trace, error) {
	traces, err := w.traceRepo.ListByEntity(ctx, q, kind, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list traces: %w", err)
	}
	return traces, nil
}

func NewWriter(traceRepo audit.TraceRepository, clk clock.Clock) audit.Writer {
	return &writerImpl{
		traceRepo: traceRepo,
		clock:     clk,
	}
}
