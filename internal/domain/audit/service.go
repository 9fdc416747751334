package audit

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
)

// Writer appends traces inside the caller's unit of work. A failed append
// must roll back the mutation it documents.
type Writer interface {
	Append(ctx context.Context, q database.Querier, t Trace) error
	ListByEntity(ctx context.Context, q database.Querier, kind EntityKind, id int64) ([]Trace, error)
}

type TraceResponse struct {
	ID         int64     `json:"id"`
	ActorID    *int64    `json:"actor_id,omitempty"`
	Type       TraceType `json:"type"`
	EntityKind string    `json:"entity_kind"`
	EntityID   int64     `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Motive     string    `json:"motive"`
}

func NewTraceResponse(t Trace) TraceResponse {
	return TraceResponse{
		ID:         t.ID,
		ActorID:    t.ActorID,
		Type:       t.Type,
		EntityKind: string(t.EntityKind),
		EntityID:   t.EntityID,
		OccurredAt: t.OccurredAt,
		Motive:     t.Motive,
	}
}
