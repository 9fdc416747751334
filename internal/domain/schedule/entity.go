package schedule

import (
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/timeofday"
	"github.com/shopspring/decimal"
)

// Set is a dated, versioned collection of weekly windows. A set applies to
// dates strictly after its EffectiveFrom date until a newer set takes over.
type Set struct {
	ID            int64
	UserID        int64
	EffectiveFrom time.Time
	CreatedAt     time.Time

	Windows []Window
}

// Window is a declared weekday time range. Immutable once created.
type Window struct {
	ID      int64
	SetID   int64
	Weekday time.Weekday
	Start   timeofday.Time
	End     timeofday.Time
}

// Contains reports whether t falls in [Start, End).
func (w Window) Contains(t timeofday.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// HoursToWork is the expected duration of the window in hours.
func (w Window) HoursToWork() decimal.Decimal {
	seconds := decimal.NewFromInt(int64(w.End.Sub(w.Start) / time.Second))
	return seconds.Div(decimal.NewFromInt(3600)).Round(2)
}
