package incident

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/audit"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/incident"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/punch"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/timeofday"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/repository/memory"
	auditsvc "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/audit"
	punchsvc "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/punch"
	schedulesvc "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/schedule"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	employeeID   int64 = 7
	registrarID  int64 = 8
	supervisorID int64 = 3
)

// monday is 2024-03-04.
var monday = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

type env struct {
	store     *memory.Store
	clock     *clock.Fixed
	metrics   *metrics.Metrics
	punches   punch.PunchRepository
	incidents incident.IncidentRepository
	punchSvc  punch.PunchService
	svc       incident.IncidentService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	store.AddUser(user.User{ID: supervisorID, Name: "Sue", Role: user.RoleSupervisor})
	store.AddUser(user.User{ID: employeeID, Name: "Ana", Role: user.RoleEmployee})
	store.AddUser(user.User{ID: registrarID, Name: "Ben", Role: user.RoleRegistrar})

	scheduleRepo := memory.NewScheduleRepository(store)
	_, err := scheduleRepo.CreateSet(context.Background(), store, schedule.Set{
		UserID:        employeeID,
		EffectiveFrom: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Windows: []schedule.Window{
			{Weekday: time.Monday, Start: timeofday.MustParse("09:00"), End: timeofday.MustParse("17:00")},
			{Weekday: time.Monday, Start: timeofday.MustParse("18:00"), End: timeofday.MustParse("22:00")},
		},
	})
	require.NoError(t, err)

	clk := clock.NewFixed(timeofday.MustParse("09:01").On(monday, time.UTC))
	m := metrics.NewNop()
	punches := memory.NewPunchRepository(store)
	incidents := memory.NewIncidentRepository(store)
	userRepo := memory.NewUserRepository(store)
	writer := auditsvc.NewWriter(memory.NewTraceRepository(store), clk)
	punchSvc := punchsvc.NewPunchService(store, punches, userRepo,
		schedulesvc.NewMatcher(scheduleRepo, punches), writer, clk, m, 0)

	return &env{
		store:     store,
		clock:     clk,
		metrics:   m,
		punches:   punches,
		incidents: incidents,
		punchSvc:  punchSvc,
		svc:       NewIncidentService(store, incidents, punches, userRepo, punchSvc, writer, clk, m),
	}
}

func (e *env) addPunch(t *testing.T, start, end string) punch.Punch {
	t.Helper()
	c := punch.Candidate{UserID: employeeID, Date: monday, Start: timeofday.MustParse(start), Actor: employeeID, Origin: "direct"}
	if end != "" {
		c.End = timeofday.Ptr(timeofday.MustParse(end))
	}
	p, err := e.punchSvc.Add(context.Background(), c)
	require.NoError(t, err)
	return p
}

func (e *env) create(t *testing.T, req incident.CreateIncidentRequest) incident.IncidentResponse {
	t.Helper()
	if req.UserID == 0 {
		req.UserID = employeeID
	}
	if req.ActorID == 0 {
		req.ActorID = employeeID
	}
	if req.Motive == "" {
		req.Motive = "forgot to punch"
	}
	resp, err := e.svc.Create(context.Background(), req)
	require.NoError(t, err)
	return resp
}

func (e *env) newPunchIncident(t *testing.T, start, end string) incident.IncidentResponse {
	t.Helper()
	return e.create(t, incident.CreateIncidentRequest{
		Type:      "new_punch",
		Date:      "2024-03-04",
		StartTime: &start,
		EndTime:   &end,
	})
}

func (e *env) process(t *testing.T, items ...incident.ProcessItem) incident.ProcessResponse {
	t.Helper()
	resp, err := e.svc.Process(context.Background(), incident.ProcessRequest{Items: items, ManagerID: supervisorID})
	require.NoError(t, err)
	return resp
}

func (e *env) get(t *testing.T, id int64) incident.Incident {
	t.Helper()
	inc, err := e.incidents.GetByID(context.Background(), e.store, id)
	require.NoError(t, err)
	return inc
}

func (e *env) traceTypes(kind audit.EntityKind, id int64) []audit.TraceType {
	var out []audit.TraceType
	for _, tr := range e.store.Traces() {
		if tr.EntityKind == kind && tr.EntityID == id {
			out = append(out, tr.Type)
		}
	}
	return out
}

func approve(id int64) incident.ProcessItem {
	return incident.ProcessItem{ID: id, Decision: "approve"}
}

func reject(id int64, motive string) incident.ProcessItem {
	return incident.ProcessItem{ID: id, Decision: "reject", RejectionMotive: &motive}
}

func strPtr(s string) *string { return &s }

func TestApproveEndTimeCorrection(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	original := e.addPunch(t, "09:00", "")

	inc := e.create(t, incident.CreateIncidentRequest{
		Type:    "end_time_correction",
		PunchID: &original.ID,
		EndTime: strPtr("13:30"),
	})
	assert.Equal(t, "2024-03-04", inc.Date)
	assert.Equal(t, "requested", inc.State)
	require.NotNil(t, inc.PunchStart)
	assert.Equal(t, "09:00:00", inc.PunchStart.String())

	resp := e.process(t, approve(inc.ID))
	assert.Equal(t, 1, resp.Processed)
	assert.Empty(t, resp.Unprocessable)
	assert.NotEmpty(t, resp.BatchID)

	old, err := e.punches.GetByID(ctx, e.store, original.ID)
	require.NoError(t, err)
	require.NotNil(t, old.SupersededBy)

	replacement, err := e.punches.GetByID(ctx, e.store, *old.SupersededBy)
	require.NoError(t, err)
	assert.True(t, replacement.IsActive())
	assert.Equal(t, "09:00:00", replacement.Start.String())
	assert.Equal(t, "13:30:00", replacement.End.String())
	assert.Equal(t, original.ScheduleWindowID, replacement.ScheduleWindowID)

	stored := e.get(t, inc.ID)
	assert.Equal(t, incident.StateResolved, stored.State)
	assert.Equal(t, supervisorID, *stored.ResolvedBy)
	assert.NotNil(t, stored.ResolvedAt)
	assert.Nil(t, stored.Error)

	assert.Equal(t, []audit.TraceType{audit.TraceIncidentCreated, audit.TraceIncidentResolved}, e.traceTypes(audit.EntityIncident, inc.ID))
	assert.Equal(t, []audit.TraceType{audit.TracePunchCreated, audit.TracePunchSuperseded}, e.traceTypes(audit.EntityPunch, original.ID))

	assert.Equal(t, float64(1), testutil.ToFloat64(e.metrics.IncidentOutcomes.WithLabelValues("resolved")))
	assert.Equal(t, float64(1), testutil.ToFloat64(e.metrics.PunchesCreated.WithLabelValues("incident")))
}

func TestApproveOverlappingNewPunchConflicts(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	existing := e.addPunch(t, "09:00", "12:00")

	inc := e.newPunchIncident(t, "08:00", "10:00")
	resp := e.process(t, approve(inc.ID))
	assert.Equal(t, 1, resp.Processed)

	stored := e.get(t, inc.ID)
	assert.Equal(t, incident.StateConflict, stored.State)
	require.NotNil(t, stored.Error)
	assert.Equal(t, "punch overlaps an existing punch", *stored.Error)
	assert.Nil(t, stored.ResolvedBy)
	assert.Nil(t, stored.ResolvedAt)
	assert.NotNil(t, stored.StateChangedAt)

	// no punch row survived the failed side effect
	_, err := e.punches.GetByID(ctx, e.store, existing.ID+1)
	assert.ErrorIs(t, err, punch.ErrPunchNotFound)

	assert.Equal(t, []audit.TraceType{audit.TraceIncidentCreated, audit.TraceIncidentConflict}, e.traceTypes(audit.EntityIncident, inc.ID))
}

func TestApproveNewPunchOnBehalf(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	inc := e.create(t, incident.CreateIncidentRequest{
		Type:      "new_punch",
		ActorID:   registrarID,
		Date:      "2024-03-04",
		StartTime: strPtr("09:00"),
		EndTime:   strPtr("12:00"),
	})
	assert.Equal(t, "Ben", inc.RequestedBy.Name)
	assert.Equal(t, "Ana", inc.User.Name)

	e.process(t, approve(inc.ID))

	active, err := e.punches.ListActiveByUserDate(ctx, e.store, employeeID, monday, nil)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.NotNil(t, active[0].RegisteredBy)
	assert.Equal(t, registrarID, *active[0].RegisteredBy)
}

// staleRepo serves a snapshot taken before another processor ran.
type staleRepo struct {
	incident.IncidentRepository
	stale incident.Incident
}

func (r staleRepo) GetByID(ctx context.Context, q database.Querier, id int64) (incident.Incident, error) {
	return r.stale, nil
}

func TestConcurrentApprovalIsNoOp(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	inc := e.newPunchIncident(t, "09:00", "12:00")
	stale := e.get(t, inc.ID)

	e.process(t, approve(inc.ID))
	require.Equal(t, incident.StateResolved, e.get(t, inc.ID).State)

	racing := &IncidentServiceImpl{
		db:           e.store,
		incidentRepo: staleRepo{IncidentRepository: e.incidents, stale: stale},
		punchRepo:    e.punches,
		userRepo:     memory.NewUserRepository(e.store),
		punchService: e.punchSvc,
		audit:        auditsvc.NewWriter(memory.NewTraceRepository(e.store), e.clock),
		clock:        e.clock,
		metrics:      e.metrics,
	}
	resp, err := racing.Process(ctx, incident.ProcessRequest{Items: []incident.ProcessItem{approve(inc.ID)}, ManagerID: supervisorID})
	require.NoError(t, err)
	assert.Zero(t, resp.Processed)
	assert.Empty(t, resp.Unprocessable)

	stored := e.get(t, inc.ID)
	assert.Equal(t, incident.StateResolved, stored.State)
	assert.Nil(t, stored.Error)
	assert.Equal(t, []audit.TraceType{audit.TraceIncidentCreated, audit.TraceIncidentResolved}, e.traceTypes(audit.EntityIncident, inc.ID))

	active, err := e.punches.ListActiveByUserDate(ctx, e.store, employeeID, monday, nil)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestParallelApprovalsTransitionOnce(t *testing.T) {
	e := newEnv(t)
	inc := e.newPunchIncident(t, "09:00", "12:00")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		processed int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := e.svc.Process(context.Background(), incident.ProcessRequest{
				Items:     []incident.ProcessItem{approve(inc.ID)},
				ManagerID: supervisorID,
			})
			assert.NoError(t, err)
			mu.Lock()
			processed += resp.Processed
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, processed)
	assert.Equal(t, incident.StateResolved, e.get(t, inc.ID).State)
	assert.Len(t, e.traceTypes(audit.EntityIncident, inc.ID), 2)
}

func TestRejectAndResubmit(t *testing.T) {
	e := newEnv(t)
	inc := e.newPunchIncident(t, "09:00", "12:00")

	resp := e.process(t, reject(inc.ID, "no evidence"))
	assert.Equal(t, 1, resp.Processed)

	rejected := e.get(t, inc.ID)
	assert.Equal(t, incident.StateRejected, rejected.State)
	assert.Equal(t, "no evidence", *rejected.RejectionMotive)
	assert.Equal(t, supervisorID, *rejected.ResolvedBy)
	assert.NotNil(t, rejected.StateChangedAt)

	// a second decision is skipped, not unprocessable
	resp = e.process(t, approve(inc.ID))
	assert.Zero(t, resp.Processed)
	assert.Empty(t, resp.Unprocessable)

	e.clock.Advance(time.Hour)
	ok, err := e.svc.Resubmit(context.Background(), incident.ResubmitRequest{
		ID:        inc.ID,
		From:      "rejected",
		Motive:    "badge photo attached",
		StartTime: strPtr("09:30"),
		ActorID:   employeeID,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	requested := e.get(t, inc.ID)
	assert.Equal(t, incident.StateRequested, requested.State)
	assert.Equal(t, "badge photo attached", requested.RequestMotive)
	assert.Equal(t, "09:30:00", requested.Start.String())
	assert.Equal(t, e.clock.Now(), requested.RequestedAt)
	assert.Nil(t, requested.RejectionMotive)
	assert.Nil(t, requested.ResolvedBy)
	assert.Nil(t, requested.StateChangedAt)

	var snapshot string
	for _, tr := range e.store.Traces() {
		if tr.Type == audit.TraceIncidentResubmitted {
			snapshot = tr.Motive
		}
	}
	assert.Contains(t, snapshot, "state=rejected")
	assert.Contains(t, snapshot, `rejection_motive="no evidence"`)
	assert.Contains(t, snapshot, `motive="forgot to punch"`)
	assert.Contains(t, snapshot, "start=09:00:00")
	assert.Contains(t, snapshot, "prior_traces=2")

	// idempotent: the incident is no longer rejected
	ok, err = e.svc.Resubmit(context.Background(), incident.ResubmitRequest{ID: inc.ID, From: "rejected", Motive: "again", ActorID: employeeID})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "badge photo attached", e.get(t, inc.ID).RequestMotive)
	assert.Equal(t, []audit.TraceType{
		audit.TraceIncidentCreated,
		audit.TraceIncidentRejected,
		audit.TraceIncidentResubmitted,
	}, e.traceTypes(audit.EntityIncident, inc.ID))
}

func TestResubmitRejectsInvalidSource(t *testing.T) {
	e := newEnv(t)
	inc := e.newPunchIncident(t, "09:00", "12:00")

	_, err := e.svc.Resubmit(context.Background(), incident.ResubmitRequest{ID: inc.ID, From: "resolved", Motive: "x"})
	assert.Error(t, err)

	ok, err := e.svc.Resubmit(context.Background(), incident.ResubmitRequest{ID: inc.ID, From: "conflict", Motive: "x", ActorID: employeeID})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResubmitRequiresRequester(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	inc := e.newPunchIncident(t, "09:00", "12:00")
	e.process(t, reject(inc.ID, "no evidence"))

	_, err := e.svc.Resubmit(ctx, incident.ResubmitRequest{ID: inc.ID, From: "rejected", Motive: "mine now", ActorID: supervisorID})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)
	assert.Equal(t, incident.StateRejected, e.get(t, inc.ID).State)
	assert.Equal(t, employeeID, e.get(t, inc.ID).RequestedBy)

	ok, err := e.svc.Resubmit(ctx, incident.ResubmitRequest{
		ID:       inc.ID,
		From:     "rejected",
		Motive:   "registered at the desk",
		ActorID:  registrarID,
		OnBehalf: true,
	})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, registrarID, e.get(t, inc.ID).RequestedBy)
}

func TestBatchIsolatesFailingCommit(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	first := e.newPunchIncident(t, "09:00", "10:00")
	second := e.newPunchIncident(t, "10:30", "11:00")
	third := e.newPunchIncident(t, "18:00", "19:00")

	commits := 0
	e.store.SetHooks(memory.Hooks{Commit: func() error {
		commits++
		if commits == 2 {
			return errors.New("connection lost")
		}
		return nil
	}})

	resp := e.process(t, approve(first.ID), approve(second.ID), approve(third.ID))
	assert.Equal(t, 2, resp.Processed)
	assert.Equal(t, []int64{second.ID}, resp.Unprocessable)

	assert.Equal(t, incident.StateResolved, e.get(t, first.ID).State)
	assert.Equal(t, incident.StateRequested, e.get(t, second.ID).State)
	assert.Equal(t, incident.StateResolved, e.get(t, third.ID).State)

	active, err := e.punches.ListActiveByUserDate(ctx, e.store, employeeID, monday, nil)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestBatchReportsFailedBeginAndMissingIncident(t *testing.T) {
	e := newEnv(t)
	inc := e.newPunchIncident(t, "09:00", "10:00")

	resp := e.process(t, approve(inc.ID+100))
	assert.Equal(t, []int64{inc.ID + 100}, resp.Unprocessable)

	e.store.SetHooks(memory.Hooks{BeginTx: func() error { return errors.New("pool exhausted") }})
	resp = e.process(t, approve(inc.ID))
	assert.Equal(t, []int64{inc.ID}, resp.Unprocessable)
	assert.Equal(t, incident.StateRequested, e.get(t, inc.ID).State)
}

func TestConflictWriteFailureLeavesIncidentRequested(t *testing.T) {
	e := newEnv(t)
	e.addPunch(t, "09:00", "12:00")
	inc := e.newPunchIncident(t, "08:00", "10:00")

	e.store.SetHooks(memory.Hooks{UpdateIncident: func(u incident.StateUpdate) error {
		if u.Next == incident.StateConflict {
			return errors.New("write timeout")
		}
		return nil
	}})
	resp := e.process(t, approve(inc.ID))
	assert.Equal(t, []int64{inc.ID}, resp.Unprocessable)

	stored := e.get(t, inc.ID)
	assert.Equal(t, incident.StateRequested, stored.State)
	assert.Nil(t, stored.Error)
	assert.Equal(t, []audit.TraceType{audit.TraceIncidentCreated}, e.traceTypes(audit.EntityIncident, inc.ID))

	e.store.SetHooks(memory.Hooks{})
	resp = e.process(t, approve(inc.ID))
	assert.Empty(t, resp.Unprocessable)
	assert.Equal(t, incident.StateConflict, e.get(t, inc.ID).State)
}

func TestInternalErrorIsReprocessable(t *testing.T) {
	e := newEnv(t)
	inc := e.newPunchIncident(t, "09:00", "12:00")

	e.store.SetHooks(memory.Hooks{AppendTrace: func(tr audit.Trace) error {
		if tr.Type == audit.TracePunchCreated {
			return errors.New("disk full")
		}
		return nil
	}})
	e.process(t, approve(inc.ID))

	failed := e.get(t, inc.ID)
	assert.Equal(t, incident.StateInternalError, failed.State)
	assert.Equal(t, incident.InternalErrorMessage, *failed.Error)
	assert.Nil(t, failed.ResolvedBy)

	e.store.SetHooks(memory.Hooks{})
	e.process(t, approve(inc.ID))

	resolved := e.get(t, inc.ID)
	assert.Equal(t, incident.StateResolved, resolved.State)
	assert.Nil(t, resolved.Error)
}

func TestApprovePunchDeletion(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := e.addPunch(t, "09:00", "12:00")

	first := e.create(t, incident.CreateIncidentRequest{Type: "punch_deletion", PunchID: &p.ID})
	second := e.create(t, incident.CreateIncidentRequest{Type: "punch_deletion", PunchID: &p.ID})

	resp := e.process(t, approve(first.ID), approve(second.ID))
	assert.Equal(t, 2, resp.Processed)

	// deleting an already deleted punch is a benign no-op
	assert.Equal(t, incident.StateResolved, e.get(t, first.ID).State)
	assert.Equal(t, incident.StateResolved, e.get(t, second.ID).State)
	assert.Equal(t, []audit.TraceType{audit.TracePunchCreated, audit.TracePunchDeleted}, e.traceTypes(audit.EntityPunch, p.ID))

	active, err := e.punches.ListActiveByUserDate(ctx, e.store, employeeID, monday, nil)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestCorrectionOfDeletedPunchConflicts(t *testing.T) {
	e := newEnv(t)
	p := e.addPunch(t, "09:00", "")

	correction := e.create(t, incident.CreateIncidentRequest{Type: "end_time_correction", PunchID: &p.ID, EndTime: strPtr("12:00")})
	deletion := e.create(t, incident.CreateIncidentRequest{Type: "punch_deletion", PunchID: &p.ID})

	e.process(t, approve(deletion.ID), approve(correction.ID))

	stored := e.get(t, correction.ID)
	assert.Equal(t, incident.StateConflict, stored.State)
	assert.Equal(t, "the punch to correct no longer exists", *stored.Error)
}

func TestCreateChecksPunch(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := e.addPunch(t, "09:00", "10:00")

	_, err := e.svc.Create(ctx, incident.CreateIncidentRequest{
		Type: "punch_deletion", UserID: registrarID, PunchID: &p.ID, Motive: "x", ActorID: registrarID,
	})
	assert.ErrorIs(t, err, incident.ErrPunchNotOwned)

	missing := p.ID + 50
	_, err = e.svc.Create(ctx, incident.CreateIncidentRequest{
		Type: "punch_deletion", UserID: employeeID, PunchID: &missing, Motive: "x", ActorID: employeeID,
	})
	assert.ErrorIs(t, err, punch.ErrPunchNotFound)

	_, err = e.svc.Create(ctx, incident.CreateIncidentRequest{
		Type: "new_punch", UserID: 99, Date: "2024-03-04", StartTime: strPtr("09:00"), Motive: "x", ActorID: 99,
	})
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	deletion := e.create(t, incident.CreateIncidentRequest{Type: "punch_deletion", PunchID: &p.ID})
	e.process(t, approve(deletion.ID))

	_, err = e.svc.Create(ctx, incident.CreateIncidentRequest{
		Type: "end_time_correction", UserID: employeeID, PunchID: &p.ID, EndTime: strPtr("11:00"), Motive: "x", ActorID: employeeID,
	})
	assert.ErrorIs(t, err, incident.ErrPunchInactive)
}

func TestListScopes(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	own := e.newPunchIncident(t, "09:00", "10:00")
	e.clock.Advance(time.Minute)
	onBehalf := e.create(t, incident.CreateIncidentRequest{
		Type: "new_punch", ActorID: registrarID, Date: "2024-03-04", StartTime: strPtr("18:00"), EndTime: strPtr("19:00"),
	})

	supervisor, err := e.svc.List(ctx, incident.ListIncidentsRequest{ActorID: supervisorID, Supervisor: true})
	require.NoError(t, err)
	require.Equal(t, 1, supervisor.Total)
	assert.Equal(t, onBehalf.ID, supervisor.Incidents[0].ID)

	employee, err := e.svc.List(ctx, incident.ListIncidentsRequest{ActorID: employeeID})
	require.NoError(t, err)
	require.Equal(t, 1, employee.Total)
	assert.Equal(t, own.ID, employee.Incidents[0].ID)

	filtered, err := e.svc.List(ctx, incident.ListIncidentsRequest{ActorID: registrarID, States: []string{"rejected"}})
	require.NoError(t, err)
	assert.Zero(t, filtered.Total)

	_, err = e.svc.List(ctx, incident.ListIncidentsRequest{ActorID: employeeID, States: []string{"pending"}})
	assert.Error(t, err)
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	inc := e.newPunchIncident(t, "09:00", "10:00")
	e.process(t, reject(inc.ID, "duplicate"))

	history, err := e.svc.History(ctx, inc.ID, incident.Scope{ActorID: employeeID})
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, audit.TraceIncidentRejected, history[1].Type)
	assert.Equal(t, "duplicate", history[1].Motive)
	assert.Equal(t, supervisorID, *history[1].ActorID)

	_, err = e.svc.History(ctx, inc.ID+1, incident.Scope{ActorID: employeeID})
	assert.ErrorIs(t, err, incident.ErrIncidentNotFound)
}

func TestHistoryFollowsListScope(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	own := e.newPunchIncident(t, "09:00", "10:00")
	start, end := "18:00", "19:00"
	onBehalf := e.create(t, incident.CreateIncidentRequest{
		Type:      "new_punch",
		Date:      "2024-03-04",
		StartTime: &start,
		EndTime:   &end,
		ActorID:   registrarID,
	})

	cases := []struct {
		name    string
		id      int64
		scope   incident.Scope
		visible bool
	}{
		{"requester", own.ID, incident.Scope{ActorID: employeeID}, true},
		{"other employee", own.ID, incident.Scope{ActorID: registrarID}, false},
		{"supervisor on self-requested", own.ID, incident.Scope{ActorID: supervisorID, Supervisor: true}, false},
		{"supervisor on behalf", onBehalf.ID, incident.Scope{ActorID: supervisorID, Supervisor: true}, true},
		{"registrar who requested", onBehalf.ID, incident.Scope{ActorID: registrarID}, true},
		{"user the incident is about", onBehalf.ID, incident.Scope{ActorID: employeeID}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			history, err := e.svc.History(ctx, tc.id, tc.scope)
			if !tc.visible {
				assert.ErrorIs(t, err, incident.ErrIncidentNotFound)
				assert.Nil(t, history)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, history)

			list, err := e.svc.List(ctx, incident.ListIncidentsRequest{
				ID:         &tc.id,
				ActorID:    tc.scope.ActorID,
				Supervisor: tc.scope.Supervisor,
			})
			require.NoError(t, err)
			assert.Equal(t, 1, list.Total)
		})
	}
}

func TestProcessValidation(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.Process(context.Background(), incident.ProcessRequest{
		Items: []incident.ProcessItem{{ID: 1, Decision: "reject"}},
	})
	assert.Error(t, err)

	_, err = e.svc.Process(context.Background(), incident.ProcessRequest{})
	assert.Error(t, err)
}
