package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/punch"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/timeofday"
)

type punchRepository struct {
	store *Store
	now   func() time.Time
}

func NewPunchRepository(store *Store) punch.PunchRepository {
	return &punchRepository{store: store, now: time.Now}
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sortPunches(ps []punch.Punch) {
	sort.Slice(ps, func(i, j int) bool {
		if !sameDate(ps[i].Date, ps[j].Date) {
			return ps[i].Date.Before(ps[j].Date)
		}
		if !ps[i].Start.Equal(ps[j].Start) {
			return ps[i].Start.Before(ps[j].Start)
		}
		return ps[i].ID < ps[j].ID
	})
}

func (r *punchRepository) Create(ctx context.Context, q database.Querier, p punch.Punch) (punch.Punch, error) {
	var err error
	r.store.write(func(t *tables) {
		if _, ok := t.windows[p.ScheduleWindowID]; !ok {
			err = errReference("schedule window")
			return
		}
		p.ID = t.nextID("punches")
		p.CreatedAt = r.now()
		t.punches[p.ID] = p
	})
	if err != nil {
		return punch.Punch{}, err
	}
	return p, nil
}

func (r *punchRepository) GetByID(ctx context.Context, q database.Querier, id int64) (punch.Punch, error) {
	var (
		p  punch.Punch
		ok bool
	)
	r.store.readFor(q, func(t *tables) { p, ok = t.punches[id] })
	if !ok {
		return punch.Punch{}, punch.ErrPunchNotFound
	}
	return p, nil
}

func (r *punchRepository) active(q database.Querier, filter func(p punch.Punch) bool) []punch.Punch {
	var out []punch.Punch
	r.store.readFor(q, func(t *tables) {
		for _, p := range t.punches {
			if p.IsActive() && filter(p) {
				out = append(out, p)
			}
		}
	})
	sortPunches(out)
	return out
}

func (r *punchRepository) ListActiveByUserDate(ctx context.Context, q database.Querier, userID int64, date time.Time, excludeID *int64) ([]punch.Punch, error) {
	return r.active(q, func(p punch.Punch) bool {
		if excludeID != nil && p.ID == *excludeID {
			return false
		}
		return p.UserID == userID && sameDate(p.Date, date)
	}), nil
}

func (r *punchRepository) GetOpen(ctx context.Context, q database.Querier, userID int64, date time.Time) (punch.Punch, error) {
	open := r.active(q, func(p punch.Punch) bool {
		return p.UserID == userID && sameDate(p.Date, date) && p.IsOpen()
	})
	if len(open) == 0 {
		return punch.Punch{}, punch.ErrNoOpenPunch
	}
	return open[len(open)-1], nil
}

func (r *punchRepository) SetEnd(ctx context.Context, q database.Querier, id int64, end timeofday.Time) (bool, error) {
	var changed bool
	r.store.write(func(t *tables) {
		p, ok := t.punches[id]
		if !ok || !p.IsActive() || !p.IsOpen() {
			return
		}
		p.End = timeofday.Ptr(end)
		t.punches[id] = p
		changed = true
	})
	return changed, nil
}

func (r *punchRepository) MarkSupersededBy(ctx context.Context, q database.Querier, oldID, newID int64) (bool, error) {
	var (
		changed bool
		err     error
	)
	r.store.write(func(t *tables) {
		if _, ok := t.punches[newID]; !ok {
			err = errReference("punch")
			return
		}
		p, ok := t.punches[oldID]
		if !ok || !p.IsActive() {
			return
		}
		p.SupersededBy = &newID
		t.punches[oldID] = p
		changed = true
	})
	return changed, err
}

func (r *punchRepository) MarkDeleted(ctx context.Context, q database.Querier, id int64) (bool, error) {
	var changed bool
	r.store.write(func(t *tables) {
		p, ok := t.punches[id]
		if !ok || !p.IsActive() {
			return
		}
		p.Deleted = true
		t.punches[id] = p
		changed = true
	})
	return changed, nil
}

func (r *punchRepository) List(ctx context.Context, q database.Querier, filter punch.ListFilter) ([]punch.Punch, error) {
	linked := make(map[int64]bool)
	if filter.ExcludeIncidentLinked {
		r.store.readFor(q, func(t *tables) {
			for _, inc := range t.incidents {
				if inc.PunchID != nil {
					linked[*inc.PunchID] = true
				}
			}
		})
	}

	return r.active(q, func(p punch.Punch) bool {
		if p.UserID != filter.UserID {
			return false
		}
		if p.Date.Before(filter.From) || p.Date.After(filter.To) {
			return false
		}
		if filter.RegisteredBy != nil && (p.RegisteredBy == nil || *p.RegisteredBy != *filter.RegisteredBy) {
			return false
		}
		return !linked[p.ID]
	}), nil
}

func (r *punchRepository) Recent(ctx context.Context, q database.Querier, userID int64, limit int) ([]punch.Punch, error) {
	ps := r.active(q, func(p punch.Punch) bool { return p.UserID == userID })
	// newest first
	for i, j := 0, len(ps)-1; i < j; i, j = i+1, j-1 {
		ps[i], ps[j] = ps[j], ps[i]
	}
	if len(ps) > limit {
		ps = ps[:limit]
	}
	return ps, nil
}
