package incident

import (
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/timeofday"
)

type Type int16

const (
	TypeNewPunch          Type = 1
	TypePunchDeletion     Type = 2
	TypeEndTimeCorrection Type = 3
)

var typeNames = map[Type]string{
	TypeNewPunch:          "new_punch",
	TypePunchDeletion:     "punch_deletion",
	TypeEndTimeCorrection: "end_time_correction",
}

func (t Type) String() string { return typeNames[t] }

func (t Type) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// RequiresPunch reports whether the type targets an existing punch.
func (t Type) RequiresPunch() bool {
	return t == TypePunchDeletion || t == TypeEndTimeCorrection
}

func ParseType(s string) (Type, bool) {
	for t, name := range typeNames {
		if name == s {
			return t, true
		}
	}
	return 0, false
}

type State int16

const (
	StateRequested     State = 1
	StateConflict      State = 2
	StateInternalError State = 3
	StateRejected      State = 4
	StateResolved      State = 5
)

var stateNames = map[State]string{
	StateRequested:     "requested",
	StateConflict:      "conflict",
	StateInternalError: "internal_error",
	StateRejected:      "rejected",
	StateResolved:      "resolved",
}

func (s State) String() string { return stateNames[s] }

func ParseState(s string) (State, bool) {
	for st, name := range stateNames {
		if name == s {
			return st, true
		}
	}
	return 0, false
}

// Decision is the processing input supplied by a supervisor. It is never stored.
type Decision int

const (
	DecisionApprove Decision = 1
	DecisionReject  Decision = 2
)

func ParseDecision(s string) (Decision, bool) {
	switch s {
	case "approve":
		return DecisionApprove, true
	case "reject":
		return DecisionReject, true
	}
	return 0, false
}

func (d Decision) String() string {
	switch d {
	case DecisionApprove:
		return "approve"
	case DecisionReject:
		return "reject"
	}
	return ""
}

// Incident is a supervised request to create, delete or correct a punch.
type Incident struct {
	ID              int64
	Type            Type
	UserID          int64
	PunchID         *int64
	Date            time.Time
	Start           *timeofday.Time
	End             *timeofday.Time
	RequestedBy     int64
	RequestedAt     time.Time
	State           State
	StateChangedAt  *time.Time
	Error           *string
	ResolvedBy      *int64
	ResolvedAt      *time.Time
	RequestMotive   string
	RejectionMotive *string

	// Join
	Punch *PunchSummary
}

// PunchSummary describes the referenced punch in listings.
type PunchSummary struct {
	Start timeofday.Time
	End   *timeofday.Time
}

// Resubmission moves a Conflict or Rejected incident back to Requested.
type Resubmission struct {
	ID          int64
	From        State
	Motive      string
	Start       *timeofday.Time
	End         *timeofday.Time
	RequestedBy int64
	RequestedAt time.Time
}
