package schedule

import (
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/timeofday"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// SCHEDULE SET DTOs
// ========================================

type WindowRequest struct {
	Weekday int    `json:"weekday"` // 0=Sunday, ..., 6=Saturday
	Start   string `json:"start_time"`
	End     string `json:"end_time"`
}

type CreateSetRequest struct {
	UserID        int64           `json:"user_id"`
	EffectiveFrom string          `json:"effective_from"`
	Windows       []WindowRequest `json:"windows"`

	// Parsed by Validate
	effectiveFrom time.Time
	windows       []Window
}

func (r *CreateSetRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.UserID <= 0 {
		errs.Add("user_id", "user_id is required")
	}

	if date, ok := validator.IsValidDate(r.EffectiveFrom); !ok {
		errs.Add("effective_from", "effective_from must be a date in YYYY-MM-DD format")
	} else {
		r.effectiveFrom = date
	}

	if len(r.Windows) == 0 {
		errs.Add("windows", "at least one window is required")
	}

	r.windows = r.windows[:0]
	for i, w := range r.Windows {
		field := "windows[" + validator.Itoa(i) + "]"
		if w.Weekday < 0 || w.Weekday > 6 {
			errs.Add(field+".weekday", "weekday must be between 0 (Sunday) and 6 (Saturday)")
			continue
		}
		start, err := timeofday.Parse(w.Start)
		if err != nil {
			errs.Add(field+".start_time", "start_time must be in HH:MM format")
			continue
		}
		end, err := timeofday.Parse(w.End)
		if err != nil {
			errs.Add(field+".end_time", "end_time must be in HH:MM format")
			continue
		}
		if !end.After(start) {
			errs.Add(field+".end_time", "end_time must be after start_time")
			continue
		}
		r.windows = append(r.windows, Window{Weekday: time.Weekday(w.Weekday), Start: start, End: end})
	}

	return errs.Err()
}

// Set builds the entity from a validated request.
func (r *CreateSetRequest) Set() Set {
	return Set{
		UserID:        r.UserID,
		EffectiveFrom: r.effectiveFrom,
		Windows:       append([]Window(nil), r.windows...),
	}
}

type PreviewWindowRequest struct {
	UserID int64  `json:"user_id"`
	At     string `json:"at"`

	at time.Time
}

func (r *PreviewWindowRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.UserID <= 0 {
		errs.Add("user_id", "user_id is required")
	}
	if at, ok := validator.IsValidDateTime(r.At); !ok {
		errs.Add("at", "at must be an ISO8601 timestamp")
	} else {
		r.at = at
	}

	return errs.Err()
}

func (r *PreviewWindowRequest) Time() time.Time { return r.at }

type WindowResponse struct {
	ID          int64           `json:"id"`
	Weekday     string          `json:"weekday"`
	Start       timeofday.Time  `json:"start_time"`
	End         timeofday.Time  `json:"end_time"`
	HoursToWork decimal.Decimal `json:"hours_to_work"`
}

type SetResponse struct {
	ID            int64            `json:"id"`
	UserID        int64            `json:"user_id"`
	EffectiveFrom string           `json:"effective_from"`
	CreatedAt     time.Time        `json:"created_at"`
	Windows       []WindowResponse `json:"windows"`
}

func NewWindowResponse(w Window) WindowResponse {
	return WindowResponse{
		ID:          w.ID,
		Weekday:     w.Weekday.String(),
		Start:       w.Start,
		End:         w.End,
		HoursToWork: w.HoursToWork(),
	}
}

func NewSetResponse(s Set) SetResponse {
	windows := make([]WindowResponse, 0, len(s.Windows))
	for _, w := range s.Windows {
		windows = append(windows, NewWindowResponse(w))
	}
	return SetResponse{
		ID:            s.ID,
		UserID:        s.UserID,
		EffectiveFrom: s.EffectiveFrom.Format("2006-01-02"),
		CreatedAt:     s.CreatedAt,
		Windows:       windows,
	}
}
