package punch

import (
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/timeofday"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
)

// ========================================
// PUNCH DTOs
// ========================================

// AddPunchRequest registers a punch. Date and StartTime may be omitted for
// an automatic "now" punch.
type AddPunchRequest struct {
	UserID    int64   `json:"user_id"`
	Date      string  `json:"date,omitempty"`
	StartTime string  `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`

	// Set from the authenticated user
	ActorID int64 `json:"-"`

	date  *time.Time
	start *timeofday.Time
	end   *timeofday.Time
}

func (r *AddPunchRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.UserID <= 0 {
		errs.Add("user_id", "user_id is required")
	}

	if r.Date != "" {
		if d, ok := validator.IsValidDate(r.Date); ok {
			r.date = &d
		} else {
			errs.Add("date", "date must be in YYYY-MM-DD format")
		}
	}

	if r.StartTime != "" {
		if t, err := timeofday.Parse(r.StartTime); err == nil {
			r.start = &t
		} else {
			errs.Add("start_time", "start_time must be in HH:MM format")
		}
	}

	if r.EndTime != nil {
		if r.StartTime == "" {
			errs.Add("end_time", "end_time requires start_time")
		} else if t, err := timeofday.Parse(*r.EndTime); err != nil {
			errs.Add("end_time", "end_time must be in HH:MM format")
		} else if r.start != nil && !t.After(*r.start) {
			errs.Add("end_time", "end_time must be after start_time")
		} else {
			r.end = &t
		}
	}

	if (r.Date == "") != (r.StartTime == "") {
		errs.Add("date", "date and start_time must be given together")
	}

	return errs.Err()
}

// Candidate builds the punch candidate, using now for an automatic punch.
func (r *AddPunchRequest) Candidate(now time.Time) Candidate {
	c := Candidate{
		UserID: r.UserID,
		Actor:  r.ActorID,
		Origin: "direct",
	}
	if r.ActorID != 0 && r.ActorID != r.UserID {
		registeredBy := r.ActorID
		c.RegisteredBy = &registeredBy
	}
	if r.date != nil && r.start != nil {
		c.Date = *r.date
		c.Start = *r.start
		c.End = r.end
		return c
	}
	y, m, d := now.Date()
	c.Date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	c.Start = timeofday.Of(now)
	return c
}

type FinalizeRequest struct {
	UserID int64 `json:"user_id"`
	// At is optional; the clock is used when empty.
	At string `json:"at,omitempty"`

	ActorID int64 `json:"-"`

	at *time.Time
}

func (r *FinalizeRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.UserID <= 0 {
		errs.Add("user_id", "user_id is required")
	}
	if r.At != "" {
		if t, ok := validator.IsValidDateTime(r.At); ok {
			r.at = &t
		} else {
			errs.Add("at", "at must be an ISO8601 timestamp")
		}
	}

	return errs.Err()
}

// Time returns the requested end instant or now in loc.
func (r *FinalizeRequest) Time(now time.Time) time.Time {
	if r.at != nil {
		return r.at.In(now.Location())
	}
	return now
}

// ListFilter is the repository filter for punch listings.
type ListFilter struct {
	UserID                int64
	From                  time.Time
	To                    time.Time
	RegisteredBy          *int64
	ExcludeIncidentLinked bool
}

type ListPunchesRequest struct {
	UserID                int64  `json:"user_id"`
	From                  string `json:"from"`
	To                    string `json:"to"`
	RegisteredBy          *int64 `json:"registered_by,omitempty"`
	ExcludeIncidentLinked bool   `json:"exclude_incident_linked"`

	filter ListFilter
}

func (r *ListPunchesRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.UserID <= 0 {
		errs.Add("user_id", "user_id is required")
	}
	from, okFrom := validator.IsValidDate(r.From)
	if !okFrom {
		errs.Add("from", "from must be in YYYY-MM-DD format")
	}
	to, okTo := validator.IsValidDate(r.To)
	if !okTo {
		errs.Add("to", "to must be in YYYY-MM-DD format")
	}
	if okFrom && okTo && to.Before(from) {
		errs.Add("to", "to must not be before from")
	}

	r.filter = ListFilter{
		UserID:                r.UserID,
		From:                  from,
		To:                    to,
		RegisteredBy:          r.RegisteredBy,
		ExcludeIncidentLinked: r.ExcludeIncidentLinked,
	}
	return errs.Err()
}

func (r *ListPunchesRequest) Filter() ListFilter { return r.filter }

type PunchResponse struct {
	ID               int64            `json:"id"`
	User             user.Descriptor  `json:"user"`
	RegisteredBy     *user.Descriptor `json:"registered_by,omitempty"`
	ScheduleWindowID int64            `json:"schedule_window_id"`
	Date             string           `json:"date"`
	Start            timeofday.Time   `json:"start_time"`
	End              *timeofday.Time  `json:"end_time"`
	CreatedAt        time.Time        `json:"created_at"`
}

type ListPunchesResponse struct {
	Punches []PunchResponse `json:"punches"`
	Total   int             `json:"total"`
}

// NewPunchResponse maps p, resolving user descriptors through cache.
func NewPunchResponse(p Punch, cache user.DescriptorCache) PunchResponse {
	resp := PunchResponse{
		ID:               p.ID,
		User:             describe(cache, p.UserID),
		ScheduleWindowID: p.ScheduleWindowID,
		Date:             p.Date.Format("2006-01-02"),
		Start:            p.Start,
		End:              p.End,
		CreatedAt:        p.CreatedAt,
	}
	if p.RegisteredBy != nil {
		d := describe(cache, *p.RegisteredBy)
		resp.RegisteredBy = &d
	}
	return resp
}

func describe(cache user.DescriptorCache, id int64) user.Descriptor {
	if d, ok := cache[id]; ok {
		return d
	}
	return user.Descriptor{ID: id}
}
