package incident

import (
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/timeofday"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
)

// ========================================
// INCIDENT DTOs
// ========================================

type CreateIncidentRequest struct {
	Type      string  `json:"type"`
	UserID    int64   `json:"user_id"`
	PunchID   *int64  `json:"punch_id,omitempty"`
	Date      string  `json:"date,omitempty"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
	Motive    string  `json:"motive"`

	ActorID int64 `json:"-"`

	typ   Type
	date  time.Time
	start *timeofday.Time
	end   *timeofday.Time
}

func (r *CreateIncidentRequest) Validate() error {
	var errs validator.ValidationErrors

	typ, ok := ParseType(r.Type)
	if !ok {
		errs.Add("type", "type must be one of new_punch, punch_deletion, end_time_correction")
	}
	r.typ = typ

	if r.UserID <= 0 {
		errs.Add("user_id", "user_id is required")
	}
	if validator.IsEmpty(r.Motive) {
		errs.Add("motive", "motive is required")
	}

	r.start, r.end = nil, nil
	if r.StartTime != nil {
		if t, err := timeofday.Parse(*r.StartTime); err == nil {
			r.start = &t
		} else {
			errs.Add("start_time", "start_time must be in HH:MM format")
		}
	}
	if r.EndTime != nil {
		if t, err := timeofday.Parse(*r.EndTime); err == nil {
			r.end = &t
		} else {
			errs.Add("end_time", "end_time must be in HH:MM format")
		}
	}
	if r.start != nil && r.end != nil && !r.end.After(*r.start) {
		errs.Add("end_time", "end_time must be after start_time")
	}

	switch typ {
	case TypeNewPunch:
		if d, ok := validator.IsValidDate(r.Date); ok {
			r.date = d
		} else {
			errs.Add("date", "date must be in YYYY-MM-DD format")
		}
		if r.StartTime == nil {
			errs.Add("start_time", "start_time is required for a new punch")
		}
	case TypeEndTimeCorrection:
		if r.PunchID == nil {
			errs.Add("punch_id", "punch_id is required")
		}
		if r.EndTime == nil {
			errs.Add("end_time", "end_time is required for an end time correction")
		}
	case TypePunchDeletion:
		if r.PunchID == nil {
			errs.Add("punch_id", "punch_id is required")
		}
	}

	return errs.Err()
}

// Incident builds the new incident from a validated request. The date of
// punch-targeting types is filled by the service from the punch.
func (r *CreateIncidentRequest) Incident(now time.Time) Incident {
	return Incident{
		Type:          r.typ,
		UserID:        r.UserID,
		PunchID:       r.PunchID,
		Date:          r.date,
		Start:         r.start,
		End:           r.end,
		RequestedBy:   r.ActorID,
		RequestedAt:   now,
		State:         StateRequested,
		RequestMotive: r.Motive,
	}
}

type ResubmitRequest struct {
	ID        int64   `json:"-"`
	From      string  `json:"from"`
	Motive    string  `json:"motive"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`

	ActorID int64 `json:"-"`
	// OnBehalf lets the actor resubmit incidents requested by someone else.
	OnBehalf bool `json:"-"`

	from  State
	start *timeofday.Time
	end   *timeofday.Time
}

func (r *ResubmitRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.ID <= 0 {
		errs.Add("id", "id is required")
	}
	from, ok := ParseState(r.From)
	if !ok || (from != StateConflict && from != StateRejected) {
		errs.Add("from", ErrInvalidResubmitSrc.Error())
	}
	r.from = from

	if validator.IsEmpty(r.Motive) {
		errs.Add("motive", "motive is required")
	}

	r.start, r.end = nil, nil
	if r.StartTime != nil {
		if t, err := timeofday.Parse(*r.StartTime); err == nil {
			r.start = &t
		} else {
			errs.Add("start_time", "start_time must be in HH:MM format")
		}
	}
	if r.EndTime != nil {
		if t, err := timeofday.Parse(*r.EndTime); err == nil {
			r.end = &t
		} else {
			errs.Add("end_time", "end_time must be in HH:MM format")
		}
	}
	if r.start != nil && r.end != nil && !r.end.After(*r.start) {
		errs.Add("end_time", "end_time must be after start_time")
	}

	return errs.Err()
}

func (r *ResubmitRequest) Resubmission(now time.Time) Resubmission {
	return Resubmission{
		ID:          r.ID,
		From:        r.from,
		Motive:      r.Motive,
		Start:       r.start,
		End:         r.end,
		RequestedBy: r.ActorID,
		RequestedAt: now,
	}
}

type ProcessItem struct {
	ID              int64   `json:"id"`
	Decision        string  `json:"decision"`
	RejectionMotive *string `json:"rejection_motive,omitempty"`

	decision Decision
}

func (i ProcessItem) ParsedDecision() Decision { return i.decision }

type ProcessRequest struct {
	Items []ProcessItem `json:"items"`

	ManagerID int64 `json:"-"`
}

func (r *ProcessRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Items) == 0 {
		errs.Add("items", "at least one item is required")
	}
	for i := range r.Items {
		item := &r.Items[i]
		field := "items[" + validator.Itoa(i) + "]"
		if item.ID <= 0 {
			errs.Add(field+".id", "id is required")
		}
		d, ok := ParseDecision(item.Decision)
		if !ok {
			errs.Add(field+".decision", "decision must be approve or reject")
			continue
		}
		item.decision = d
		if d == DecisionReject && (item.RejectionMotive == nil || validator.IsEmpty(*item.RejectionMotive)) {
			errs.Add(field+".rejection_motive", "rejection_motive is required to reject")
		}
	}

	return errs.Err()
}

type ProcessResponse struct {
	BatchID       string  `json:"batch_id"`
	Processed     int     `json:"processed"`
	Unprocessable []int64 `json:"unprocessable"`
}

// Scope limits which incidents a listing shows.
type Scope struct {
	ActorID int64
	// Supervisor sees incidents registered on behalf of others plus their
	// own; everyone else sees only the incidents they requested.
	Supervisor bool
}

// Visible reports whether inc falls within the scope.
func (s Scope) Visible(inc Incident) bool {
	if inc.RequestedBy == s.ActorID {
		return true
	}
	return s.Supervisor && inc.RequestedBy != inc.UserID
}

type ListFilter struct {
	ID     *int64
	From   *time.Time
	To     *time.Time
	States []State
	Scope  Scope
}

type ListIncidentsRequest struct {
	ID     *int64   `json:"id,omitempty"`
	From   string   `json:"from,omitempty"`
	To     string   `json:"to,omitempty"`
	States []string `json:"states,omitempty"`

	ActorID    int64 `json:"-"`
	Supervisor bool  `json:"-"`

	filter ListFilter
}

func (r *ListIncidentsRequest) Validate() error {
	var errs validator.ValidationErrors

	r.filter = ListFilter{ID: r.ID, Scope: Scope{ActorID: r.ActorID, Supervisor: r.Supervisor}}

	if r.From != "" {
		if d, ok := validator.IsValidDate(r.From); ok {
			r.filter.From = &d
		} else {
			errs.Add("from", "from must be in YYYY-MM-DD format")
		}
	}
	if r.To != "" {
		if d, ok := validator.IsValidDate(r.To); ok {
			// inclusive end of day
			end := d.AddDate(0, 0, 1)
			r.filter.To = &end
		} else {
			errs.Add("to", "to must be in YYYY-MM-DD format")
		}
	}
	for _, s := range r.States {
		st, ok := ParseState(s)
		if !ok {
			errs.Add("states", "unknown state "+s)
			continue
		}
		r.filter.States = append(r.filter.States, st)
	}

	return errs.Err()
}

func (r *ListIncidentsRequest) Filter() ListFilter { return r.filter }

type IncidentResponse struct {
	ID              int64            `json:"id"`
	Type            string           `json:"type"`
	User            user.Descriptor  `json:"user"`
	PunchID         *int64           `json:"punch_id,omitempty"`
	PunchStart      *timeofday.Time  `json:"punch_start_time,omitempty"`
	PunchEnd        *timeofday.Time  `json:"punch_end_time,omitempty"`
	Date            string           `json:"date"`
	Start           *timeofday.Time  `json:"start_time"`
	End             *timeofday.Time  `json:"end_time"`
	RequestedBy     user.Descriptor  `json:"requested_by"`
	RequestedAt     time.Time        `json:"requested_at"`
	State           string           `json:"state"`
	StateChangedAt  *time.Time       `json:"state_changed_at,omitempty"`
	Error           *string          `json:"error,omitempty"`
	ResolvedBy      *user.Descriptor `json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time       `json:"resolved_at,omitempty"`
	RequestMotive   string           `json:"request_motive"`
	RejectionMotive *string          `json:"rejection_motive,omitempty"`
}

type ListIncidentsResponse struct {
	Incidents []IncidentResponse `json:"incidents"`
	Total     int                `json:"total"`
}

func NewIncidentResponse(inc Incident, cache user.DescriptorCache) IncidentResponse {
	resp := IncidentResponse{
		ID:              inc.ID,
		Type:            inc.Type.String(),
		User:            describe(cache, inc.UserID),
		PunchID:         inc.PunchID,
		Date:            inc.Date.Format("2006-01-02"),
		Start:           inc.Start,
		End:             inc.End,
		RequestedBy:     describe(cache, inc.RequestedBy),
		RequestedAt:     inc.RequestedAt,
		State:           inc.State.String(),
		StateChangedAt:  inc.StateChangedAt,
		Error:           inc.Error,
		ResolvedAt:      inc.ResolvedAt,
		RequestMotive:   inc.RequestMotive,
		RejectionMotive: inc.RejectionMotive,
	}
	if inc.Punch != nil {
		start := inc.Punch.Start
		resp.PunchStart = &start
		resp.PunchEnd = inc.Punch.End
	}
	if inc.ResolvedBy != nil {
		d := describe(cache, *inc.ResolvedBy)
		resp.ResolvedBy = &d
	}
	return resp
}

func describe(cache user.DescriptorCache, id int64) user.Descriptor {
	if d, ok := cache[id]; ok {
		return d
	}
	return user.Descriptor{ID: id}
}
