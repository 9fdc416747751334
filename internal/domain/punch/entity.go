package punch

import (
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/timeofday"
)

// Punch is one clock-in/clock-out record. Rows are never edited beyond
// filling the end time once; corrections insert a new punch and supersede
// the old one.
type Punch struct {
	ID               int64
	UserID           int64
	RegisteredBy     *int64 // set when someone punched on the user's behalf
	ScheduleWindowID int64
	Date             time.Time
	Start            timeofday.Time
	End              *timeofday.Time
	SupersededBy     *int64
	Deleted          bool
	CreatedAt        time.Time
}

// IsActive reports whether the punch still counts for overlap checks,
// window consumption and listings.
func (p Punch) IsActive() bool {
	return p.SupersededBy == nil && !p.Deleted
}

// IsOpen reports whether the punch has no end time yet.
func (p Punch) IsOpen() bool {
	return p.End == nil
}

// LatestTime is the end time, or the start time of an open punch.
func (p Punch) LatestTime() timeofday.Time {
	if p.End != nil {
		return *p.End
	}
	return p.Start
}

// Candidate is a punch about to be inserted.
type Candidate struct {
	UserID       int64
	RegisteredBy *int64
	Date         time.Time
	Start        timeofday.Time
	End          *timeofday.Time

	// Actor is recorded on the audit trace.
	Actor int64
	// Origin labels the metric of inserted punches ("direct", "incident").
	Origin string
}
