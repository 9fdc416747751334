package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/punch"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/timeofday"
)

type MatcherImpl struct {
	scheduleRepo schedule.ScheduleRepository
	punchRepo    punch.PunchRepository
}

// NearestWindow implements schedule.Matcher.
func (m *MatcherImpl) NearestWindow(ctx context.Context, q database.Querier, userID int64, date time.Time, at timeofday.Time, excludePunchID *int64) (schedule.Window, error) {
	date = dateOf(date)

	set, err := m.scheduleRepo.LatestSetBefore(ctx, q, userID, date)
	if err != nil {
		if errors.Is(err, schedule.ErrNoScheduleConfigured) {
			return schedule.Window{}, schedule.ErrNoScheduleConfigured.Detailf(
				"no schedule configured before %s", date.Format("2006-01-02"))
		}
		return schedule.Window{}, fmt.Errorf("failed to load schedule set: %w", err)
	}

	windows, err := m.scheduleRepo.WindowsForWeekday(ctx, q, set.ID, date.Weekday())
	if err != nil {
		return schedule.Window{}, fmt.Errorf("failed to load schedule windows: %w", err)
	}

	active, err := m.punchRepo.ListActiveByUserDate(ctx, q, userID, date, excludePunchID)
	if err != nil {
		return schedule.Window{}, fmt.Errorf("failed to load active punches: %w", err)
	}

	w, ok := pickWindow(windows, active, at)
	if !ok {
		return schedule.Window{}, schedule.ErrNoWindowAvailable.Detailf(
			"no schedule window available on %s (%s)", date.Format("2006-01-02"), date.Weekday())
	}
	return w, nil
}

// pickWindow chooses among windows (ordered by start) the one containing t,
// else the earliest one starting after t. A candidate must be unconsumed and
// must not start before the latest end of an active punch sitting on an
// earlier-starting window.
func pickWindow(windows []schedule.Window, active []punch.Punch, t timeofday.Time) (schedule.Window, bool) {
	byID := make(map[int64]schedule.Window, len(windows))
	for _, w := range windows {
		byID[w.ID] = w
	}
	consumed := make(map[int64]bool, len(active))
	for _, p := range active {
		consumed[p.ScheduleWindowID] = true
	}

	usable := func(w schedule.Window) bool {
		if consumed[w.ID] {
			return false
		}
		for _, p := range active {
			pw, ok := byID[p.ScheduleWindowID]
			if !ok || !pw.Start.Before(w.Start) {
				continue
			}
			if w.Start.Before(p.LatestTime()) {
				return false
			}
		}
		return true
	}

	for _, w := range windows {
		if w.Contains(t) && usable(w) {
			return w, true
		}
	}
	for _, w := range windows {
		if w.Start.After(t) && usable(w) {
			return w, true
		}
	}
	return schedule.Window{}, false
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func NewMatcher(scheduleRepo schedule.ScheduleRepository, punchRepo punch.PunchRepository) schedule.Matcher {
	return &MatcherImpl{
		scheduleRepo: scheduleRepo,
		punchRepo:    punchRepo,
	}
}
