package incident

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/audit"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/incident"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/punch"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/repository/postgresql"
	"github.com/jackc/pgx/v5"
)

type IncidentServiceImpl struct {
	db           database.Pool
	incidentRepo incident.IncidentRepository
	punchRepo    punch.PunchRepository
	userRepo     user.UserRepository
	punchService punch.PunchService
	audit        audit.Writer
	clock        clock.Clock
	metrics      *metrics.Metrics
}

// Create implements incident.IncidentService.
func (s *IncidentServiceImpl) Create(ctx context.Context, req incident.CreateIncidentRequest) (incident.IncidentResponse, error) {
	if err := req.Validate(); err != nil {
		return incident.IncidentResponse{}, err
	}

	inc := req.Incident(s.clock.Now())
	err := postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := s.userRepo.GetByID(ctx, tx, inc.UserID); err != nil {
			return err
		}

		if inc.Type.RequiresPunch() {
			p, err := s.punchRepo.GetByID(ctx, tx, *inc.PunchID)
			if err != nil {
				return err
			}
			if p.UserID != inc.UserID {
				return incident.ErrPunchNotOwned
			}
			if !p.IsActive() {
				return incident.ErrPunchInactive
			}
			inc.Date = p.Date
		}

		created, err := s.incidentRepo.Create(ctx, tx, inc)
		if err != nil {
			return fmt.Errorf("failed to create incident: %w", database.TranslateError(err))
		}

		trace := audit.New(audit.TraceIncidentCreated, audit.EntityIncident, created.ID, req.ActorID, created.RequestMotive)
		if err := s.audit.Append(ctx, tx, trace); err != nil {
			return err
		}
		inc = created
		return nil
	})
	if err != nil {
		if !apperror.IsRecognized(err) {
			slog.ErrorContext(ctx, "Failed to create incident", "user_id", inc.UserID, "error", err)
		}
		return incident.IncidentResponse{}, err
	}

	slog.InfoContext(ctx, "Incident created", "incident_id", inc.ID, "type", inc.Type.String(), "user_id", inc.UserID)

	// reload for the punch summary
	stored, err := s.incidentRepo.GetByID(ctx, s.db, inc.ID)
	if err != nil {
		return incident.IncidentResponse{}, fmt.Errorf("failed to load incident: %w", err)
	}
	return s.response(ctx, stored)
}

// Resubmit implements incident.IncidentService.
func (s *IncidentServiceImpl) Resubmit(ctx context.Context, req incident.ResubmitRequest) (bool, error) {
	if err := req.Validate(); err != nil {
		return false, err
	}

	prior, err := s.incidentRepo.GetByID(ctx, s.db, req.ID)
	if err != nil {
		return false, err
	}
	if prior.RequestedBy != req.ActorID && !req.OnBehalf {
		return false, user.ErrInsufficientPermissions
	}
	history, err := s.audit.ListByEntity(ctx, s.db, audit.EntityIncident, req.ID)
	if err != nil {
		return false, err
	}

	rs := req.Resubmission(s.clock.Now())
	snapshot := snapshotMotive(prior, history)

	var changed bool
	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		ok, err := s.incidentRepo.Resubmit(ctx, tx, rs)
		if err != nil {
			return fmt.Errorf("failed to resubmit incident: %w", err)
		}
		if !ok {
			return nil
		}

		trace := audit.New(audit.TraceIncidentResubmitted, audit.EntityIncident, rs.ID, rs.RequestedBy, snapshot)
		if err := s.audit.Append(ctx, tx, trace); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to resubmit incident", "incident_id", req.ID, "error", err)
		return false, err
	}

	if !changed {
		slog.InfoContext(ctx, "Incident resubmission ignored", "incident_id", req.ID, "expected_state", rs.From.String())
		return false, nil
	}
	slog.InfoContext(ctx, "Incident resubmitted", "incident_id", req.ID, "from", rs.From.String())
	return true, nil
}

// snapshotMotive records the incident as it was before a resubmission.
func snapshotMotive(prior incident.Incident, history []audit.Trace) string {
	parts := []string{
		"state=" + prior.State.String(),
		"requested_at=" + prior.RequestedAt.Format(time.RFC3339),
		fmt.Sprintf("requested_by=%d", prior.RequestedBy),
		fmt.Sprintf("motive=%q", prior.RequestMotive),
	}
	if prior.Start != nil {
		parts = append(parts, "start="+prior.Start.String())
	}
	if prior.End != nil {
		parts = append(parts, "end="+prior.End.String())
	}
	if prior.StateChangedAt != nil {
		parts = append(parts, "state_changed_at="+prior.StateChangedAt.Format(time.RFC3339))
	}
	if prior.ResolvedBy != nil {
		parts = append(parts, fmt.Sprintf("resolved_by=%d", *prior.ResolvedBy))
	}
	if prior.RejectionMotive != nil {
		parts = append(parts, fmt.Sprintf("rejection_motive=%q", *prior.RejectionMotive))
	}
	if prior.Error != nil {
		parts = append(parts, fmt.Sprintf("error=%q", *prior.Error))
	}
	parts = append(parts, fmt.Sprintf("prior_traces=%d", len(history)))
	return strings.Join(parts, "; ")
}

// List implements incident.IncidentService.
func (s *IncidentServiceImpl) List(ctx context.Context, req incident.ListIncidentsRequest) (incident.ListIncidentsResponse, error) {
	if err := req.Validate(); err != nil {
		return incident.ListIncidentsResponse{}, err
	}

	incidents, err := s.incidentRepo.List(ctx, s.db, req.Filter())
	if err != nil {
		return incident.ListIncidentsResponse{}, fmt.Errorf("failed to list incidents: %w", err)
	}

	cache, err := s.describe(ctx, incidents...)
	if err != nil {
		return incident.ListIncidentsResponse{}, err
	}

	resp := incident.ListIncidentsResponse{
		Incidents: make([]incident.IncidentResponse, 0, len(incidents)),
		Total:     len(incidents),
	}
	for _, inc := range incidents {
		resp.Incidents = append(resp.Incidents, incident.NewIncidentResponse(inc, cache))
	}
	return resp, nil
}

// History implements incident.IncidentService.
func (s *IncidentServiceImpl) History(ctx context.Context, id int64, scope incident.Scope) ([]audit.TraceResponse, error) {
	inc, err := s.incidentRepo.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if !scope.Visible(inc) {
		return nil, incident.ErrIncidentNotFound
	}

	traces, err := s.audit.ListByEntity(ctx, s.db, audit.EntityIncident, id)
	if err != nil {
		return nil, err
	}

	resp := make([]audit.TraceResponse, 0, len(traces))
	for _, t := range traces {
		resp = append(resp, audit.NewTraceResponse(t))
	}
	return resp, nil
}

func (s *IncidentServiceImpl) response(ctx context.Context, inc incident.Incident) (incident.IncidentResponse, error) {
	cache, err := s.describe(ctx, inc)
	if err != nil {
		return incident.IncidentResponse{}, err
	}
	return incident.NewIncidentResponse(inc, cache), nil
}

func (s *IncidentServiceImpl) describe(ctx context.Context, incidents ...incident.Incident) (user.DescriptorCache, error) {
	ids := make([]int64, 0, len(incidents)*3)
	for _, inc := range incidents {
		ids = append(ids, inc.UserID, inc.RequestedBy)
		if inc.ResolvedBy != nil {
			ids = append(ids, *inc.ResolvedBy)
		}
	}

	cache := user.DescriptorCache{}
	if err := s.userRepo.Descriptors(ctx, s.db, cache, ids); err != nil {
		return nil, fmt.Errorf("failed to load user descriptors: %w", err)
	}
	return cache, nil
}

func NewIncidentService(
	db database.Pool,
	incidentRepo incident.IncidentRepository,
	punchRepo punch.PunchRepository,
	userRepo user.UserRepository,
	punchService punch.PunchService,
	auditWriter audit.Writer,
	clk clock.Clock,
	m *metrics.Metrics,
) incident.IncidentService {
	return &IncidentServiceImpl{
		db:           db,
		incidentRepo: incidentRepo,
		punchRepo:    punchRepo,
		userRepo:     userRepo,
		punchService: punchService,
		audit:        auditWriter,
		clock:        clk,
		metrics:      m,
	}
}
