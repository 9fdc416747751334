package incident

import (
	"context"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/audit"
)

type IncidentService interface {
	Create(ctx context.Context, req CreateIncidentRequest) (IncidentResponse, error)

	// Resubmit returns false when the incident was not in the expected
	// state, which leaves it untouched. Only the requester, or an actor
	// allowed to act on behalf of others, may resubmit.
	Resubmit(ctx context.Context, req ResubmitRequest) (bool, error)

	// Process handles every item in its own transaction and returns the ids
	// that could not be processed at all.
	Process(ctx context.Context, req ProcessRequest) (ProcessResponse, error)

	List(ctx context.Context, req ListIncidentsRequest) (ListIncidentsResponse, error)
	// History returns the trail of an incident visible within scope.
	History(ctx context.Context, id int64, scope Scope) ([]audit.TraceResponse, error)
}
