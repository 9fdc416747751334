package audit

import "time"

type TraceType string

const (
	TraceIncidentCreated       TraceType = "incident_created"
	TraceIncidentResubmitted   TraceType = "incident_resubmitted"
	TraceIncidentResolved      TraceType = "incident_resolved"
	TraceIncidentConflict      TraceType = "incident_conflict"
	TraceIncidentInternalError TraceType = "incident_internal_error"
	TraceIncidentRejected      TraceType = "incident_rejected"

	TracePunchCreated    TraceType = "punch_created"
	TracePunchFinalized  TraceType = "punch_finalized"
	TracePunchSuperseded TraceType = "punch_superseded"
	TracePunchDeleted    TraceType = "punch_deleted"
)

type EntityKind string

const (
	EntityIncident EntityKind = "incident"
	EntityPunch    EntityKind = "punch"
)

// Trace is an append-only record of a business event.
type Trace struct {
	ID         int64
	ActorID    *int64
	Type       TraceType
	EntityKind EntityKind
	EntityID   int64
	OccurredAt time.Time
	Motive     string
}

// New builds a trace for entity, attributing it to actor when non-zero.
func New(typ TraceType, kind EntityKind, entityID int64, actor int64, motive string) Trace {
	t := Trace{Type: typ, EntityKind: kind, EntityID: entityID, Motive: motive}
	if actor != 0 {
		t.ActorID = &actor
	}
	return t
}
