package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/incident"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
)

type incidentRepository struct {
	store *Store
}

func NewIncidentRepository(store *Store) incident.IncidentRepository {
	return &incidentRepository{store: store}
}

// withPunch attaches the referenced punch summary, as the SQL join does.
func withPunch(t *tables, inc incident.Incident) incident.Incident {
	inc.Punch = nil
	if inc.PunchID != nil {
		if p, ok := t.punches[*inc.PunchID]; ok {
			inc.Punch = &incident.PunchSummary{Start: p.Start, End: p.End}
		}
	}
	return inc
}

func (r *incidentRepository) Create(ctx context.Context, q database.Querier, inc incident.Incident) (incident.Incident, error) {
	var err error
	r.store.write(func(t *tables) {
		if inc.PunchID != nil {
			if _, ok := t.punches[*inc.PunchID]; !ok {
				err = errReference("punch")
				return
			}
		}
		inc.ID = t.nextID("incidents")
		inc.Punch = nil
		t.incidents[inc.ID] = inc
	})
	if err != nil {
		return incident.Incident{}, err
	}
	return inc, nil
}

func (r *incidentRepository) GetByID(ctx context.Context, q database.Querier, id int64) (incident.Incident, error) {
	var (
		inc incident.Incident
		ok  bool
	)
	r.store.readFor(q, func(t *tables) {
		inc, ok = t.incidents[id]
		if ok {
			inc = withPunch(t, inc)
		}
	})
	if !ok {
		return incident.Incident{}, incident.ErrIncidentNotFound
	}
	return inc, nil
}

func (r *incidentRepository) UpdateState(ctx context.Context, q database.Querier, u incident.StateUpdate) (bool, error) {
	if h := r.store.hook().UpdateIncident; h != nil {
		if err := h(u); err != nil {
			return false, err
		}
	}
	var changed bool
	r.store.write(func(t *tables) {
		inc, ok := t.incidents[u.ID]
		if !ok || inc.State != u.Expected {
			return
		}
		inc.State = u.Next
		inc.Error = u.Error
		inc.ResolvedBy = u.ResolvedBy
		inc.ResolvedAt = u.ResolvedAt
		inc.StateChangedAt = u.StateChangedAt
		if u.RejectionMotive != nil {
			inc.RejectionMotive = u.RejectionMotive
		}
		t.incidents[u.ID] = inc
		changed = true
	})
	return changed, nil
}

func (r *incidentRepository) Resubmit(ctx context.Context, q database.Querier, rs incident.Resubmission) (bool, error) {
	var changed bool
	r.store.write(func(t *tables) {
		inc, ok := t.incidents[rs.ID]
		if !ok || inc.State != rs.From {
			return
		}
		inc.State = incident.StateRequested
		inc.RequestMotive = rs.Motive
		inc.RequestedAt = rs.RequestedAt
		if rs.Start != nil {
			inc.Start = rs.Start
		}
		if rs.End != nil {
			inc.End = rs.End
		}
		inc.RequestedBy = rs.RequestedBy
		inc.RejectionMotive = nil
		inc.StateChangedAt = nil
		inc.Error = nil
		inc.ResolvedBy = nil
		inc.ResolvedAt = nil
		t.incidents[rs.ID] = inc
		changed = true
	})
	return changed, nil
}

func (r *incidentRepository) List(ctx context.Context, q database.Querier, filter incident.ListFilter) ([]incident.Incident, error) {
	states := make(map[incident.State]bool, len(filter.States))
	for _, s := range filter.States {
		states[s] = true
	}

	var out []incident.Incident
	r.store.readFor(q, func(t *tables) {
		for _, inc := range t.incidents {
			if filter.ID != nil && inc.ID != *filter.ID {
				continue
			}
			if filter.From != nil && inc.RequestedAt.Before(*filter.From) {
				continue
			}
			if filter.To != nil && !inc.RequestedAt.Before(*filter.To) {
				continue
			}
			if len(states) > 0 && !states[inc.State] {
				continue
			}
			if !filter.Scope.Visible(inc) {
				continue
			}
			out = append(out, withPunch(t, inc))
		}
	})

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.RequestedAt.Equal(b.RequestedAt) {
			return a.RequestedAt.Before(b.RequestedAt)
		}
		if a.State != b.State {
			return a.State < b.State
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.ID < b.ID
	})
	return out, nil
}
