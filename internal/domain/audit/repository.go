package audit

import (
	"context"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
)

// TraceRepository has no update or delete: traces are append-only.
type TraceRepository interface {
	Append(ctx context.Context, q database.Querier, t Trace) (Trace, error)
	ListByEntity(ctx context.Context, q database.Querier, kind EntityKind, id int64) ([]Trace, error)
}
