package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
)

type scheduleRepository struct {
	store *Store
	now   func() time.Time
}

func NewScheduleRepository(store *Store) schedule.ScheduleRepository {
	return &scheduleRepository{store: store, now: time.Now}
}

func (r *scheduleRepository) LatestSetBefore(ctx context.Context, q database.Querier, userID int64, date time.Time) (schedule.Set, error) {
	var (
		latest schedule.Set
		found  bool
	)
	r.store.readFor(q, func(t *tables) {
		for _, s := range t.sets {
			if s.UserID != userID || !s.EffectiveFrom.Before(date) {
				continue
			}
			if !found || s.EffectiveFrom.After(latest.EffectiveFrom) {
				latest, found = s, true
			}
		}
	})
	if !found {
		return schedule.Set{}, schedule.ErrNoScheduleConfigured
	}
	return latest, nil
}

func sortWindows(ws []schedule.Window) {
	sort.Slice(ws, func(i, j int) bool {
		if ws[i].Weekday != ws[j].Weekday {
			return ws[i].Weekday < ws[j].Weekday
		}
		if !ws[i].Start.Equal(ws[j].Start) {
			return ws[i].Start.Before(ws[j].Start)
		}
		return ws[i].ID < ws[j].ID
	})
}

func (r *scheduleRepository) WindowsForWeekday(ctx context.Context, q database.Querier, setID int64, weekday time.Weekday) ([]schedule.Window, error) {
	var out []schedule.Window
	r.store.readFor(q, func(t *tables) {
		for _, w := range t.windows {
			if w.SetID == setID && w.Weekday == weekday {
				out = append(out, w)
			}
		}
	})
	sortWindows(out)
	return out, nil
}

func (r *scheduleRepository) GetWindow(ctx context.Context, q database.Querier, id int64) (schedule.Window, error) {
	var (
		w  schedule.Window
		ok bool
	)
	r.store.readFor(q, func(t *tables) { w, ok = t.windows[id] })
	if !ok {
		return schedule.Window{}, schedule.ErrWindowNotFound
	}
	return w, nil
}

func (r *scheduleRepository) CreateSet(ctx context.Context, q database.Querier, set schedule.Set) (schedule.Set, error) {
	var err error
	r.store.write(func(t *tables) {
		if _, ok := t.users[set.UserID]; !ok {
			err = errReference("user")
			return
		}
		for _, s := range t.sets {
			if s.UserID == set.UserID && s.EffectiveFrom.Equal(set.EffectiveFrom) {
				err = schedule.ErrSetAlreadyExists
				return
			}
		}
		set.ID = t.nextID("schedule_sets")
		set.CreatedAt = r.now()
		windows := make([]schedule.Window, len(set.Windows))
		for i, w := range set.Windows {
			w.ID = t.nextID("schedule_windows")
			w.SetID = set.ID
			t.windows[w.ID] = w
			windows[i] = w
		}
		stored := set
		stored.Windows = nil
		t.sets[set.ID] = stored
		set.Windows = windows
	})
	if err != nil {
		return schedule.Set{}, err
	}
	return set, nil
}

func (r *scheduleRepository) ListSets(ctx context.Context, q database.Querier, userID int64) ([]schedule.Set, error) {
	var sets []schedule.Set
	r.store.readFor(q, func(t *tables) {
		for _, s := range t.sets {
			if s.UserID != userID {
				continue
			}
			for _, w := range t.windows {
				if w.SetID == s.ID {
					s.Windows = append(s.Windows, w)
				}
			}
			sortWindows(s.Windows)
			sets = append(sets, s)
		}
	})
	sort.Slice(sets, func(i, j int) bool { return sets[i].EffectiveFrom.After(sets[j].EffectiveFrom) })
	return sets, nil
}
