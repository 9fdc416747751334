package punch

import (
	"errors"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/punch"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/schedule"
)

// validateCandidate checks c against the active punches of its user and date.
// The rules run in a fixed order and the first failing one is returned.
func validateCandidate(c punch.Candidate, active []punch.Punch) error {
	if c.End != nil && !c.End.After(c.Start) {
		return punch.ErrEndBeforeStart
	}

	for _, p := range active {
		if p.IsOpen() {
			return punch.ErrOpenPunchExists
		}
	}

	if c.End == nil {
		for _, p := range active {
			if !p.Start.Before(c.Start) {
				return punch.ErrLaterPunchExists
			}
		}
	}

	// rule 1 guarantees every remaining punch is closed
	for _, p := range active {
		if !c.Start.Before(p.Start) && !c.Start.After(*p.End) {
			return punch.ErrStartInsidePunch
		}
	}

	if c.End != nil {
		end := *c.End
		for _, p := range active {
			overlaps := p.Start.Before(end) && p.End.After(c.Start)
			endInside := !end.Before(p.Start) && !end.After(*p.End)
			if overlaps || endInside {
				return punch.ErrOverlappingPunch
			}
		}
	}

	return nil
}

// rejectionReason labels a refused candidate for metrics.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, punch.ErrEndBeforeStart):
		return "end_before_start"
	case errors.Is(err, punch.ErrOpenPunchExists):
		return "open_punch"
	case errors.Is(err, punch.ErrLaterPunchExists):
		return "later_punch"
	case errors.Is(err, punch.ErrStartInsidePunch):
		return "start_inside"
	case errors.Is(err, punch.ErrOverlappingPunch):
		return "overlap"
	case errors.Is(err, schedule.ErrNoScheduleConfigured):
		return "no_schedule"
	case errors.Is(err, schedule.ErrNoWindowAvailable):
		return "no_window"
	default:
		return "other"
	}
}
