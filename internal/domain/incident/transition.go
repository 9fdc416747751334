package incident

import (
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/apperror"
)

// InternalErrorMessage is stored on incidents whose resolution failed for a
// reason the requester cannot fix.
const InternalErrorMessage = "the incident could not be resolved due to an internal error; contact the administrator"

// Transition is the outcome of applying a decision to an incident state.
type Transition struct {
	From  State
	To    State
	Error *string
}

// Accepts reports whether an incident in state s can take decision d.
// Anything else counts as already processed.
func Accepts(s State, d Decision) bool {
	switch d {
	case DecisionApprove:
		return s == StateRequested || s == StateInternalError
	case DecisionReject:
		return s == StateRequested
	}
	return false
}

// Decide computes the next state from the current state, the decision and
// the side effect result. sideEffectErr is ignored for rejections.
func Decide(current State, d Decision, sideEffectErr error) (Transition, error) {
	if !Accepts(current, d) {
		return Transition{}, ErrAlreadyProcessed
	}

	t := Transition{From: current}
	switch {
	case d == DecisionReject:
		t.To = StateRejected
	case sideEffectErr == nil:
		t.To = StateResolved
	case apperror.IsRecognized(sideEffectErr):
		msg := apperror.Message(sideEffectErr)
		t.To = StateConflict
		t.Error = &msg
	default:
		msg := InternalErrorMessage
		t.To = StateInternalError
		t.Error = &msg
	}
	return t, nil
}

// StateUpdate is the single conditional write that persists a transition.
// It only takes effect while the stored state still equals Expected.
type StateUpdate struct {
	ID              int64
	Expected        State
	Next            State
	Error           *string
	ResolvedBy      *int64
	ResolvedAt      *time.Time
	StateChangedAt  *time.Time
	RejectionMotive *string
}

// Update fills every mutable field for the target state. Conflict and
// InternalError clear the manager and resolution time so the record stays
// reprocessable.
func (t Transition) Update(id, manager int64, now time.Time, rejectionMotive *string) StateUpdate {
	u := StateUpdate{
		ID:       id,
		Expected: t.From,
		Next:     t.To,
		Error:    t.Error,
	}
	switch t.To {
	case StateResolved:
		u.ResolvedBy = &manager
		u.ResolvedAt = &now
	case StateRejected:
		u.ResolvedBy = &manager
		u.StateChangedAt = &now
		u.RejectionMotive = rejectionMotive
	case StateConflict, StateInternalError:
		u.StateChangedAt = &now
	}
	return u
}
