package incident

import (
	"context"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
)

type IncidentRepository interface {
	Create(ctx context.Context, q database.Querier, inc Incident) (Incident, error)
	GetByID(ctx context.Context, q database.Querier, id int64) (Incident, error)

	// UpdateState applies u only if the stored state equals u.Expected and
	// reports whether a row changed.
	UpdateState(ctx context.Context, q database.Querier, u StateUpdate) (bool, error)

	// Resubmit moves the incident back to Requested if it is still in r.From.
	Resubmit(ctx context.Context, q database.Querier, r Resubmission) (bool, error)

	List(ctx context.Context, q database.Querier, filter ListFilter) ([]Incident, error)
}
