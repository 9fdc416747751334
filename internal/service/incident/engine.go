package incident

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/audit"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/incident"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// errStateChanged is returned when the guarded state write matched no row
// because another processor moved the incident first.
var errStateChanged = errors.New("incident state changed concurrently")

var transitionTraces = map[incident.State]audit.TraceType{
	incident.StateResolved:      audit.TraceIncidentResolved,
	incident.StateConflict:      audit.TraceIncidentConflict,
	incident.StateInternalError: audit.TraceIncidentInternalError,
	incident.StateRejected:      audit.TraceIncidentRejected,
}

// Process implements incident.IncidentService.
func (s *IncidentServiceImpl) Process(ctx context.Context, req incident.ProcessRequest) (incident.ProcessResponse, error) {
	if err := req.Validate(); err != nil {
		return incident.ProcessResponse{}, err
	}

	batchID := uuid.NewString()
	started := time.Now()
	resp := incident.ProcessResponse{
		BatchID:       batchID,
		Unprocessable: []int64{},
	}

	for _, item := range req.Items {
		log := slog.With("batch_id", batchID, "incident_id", item.ID, "decision", item.ParsedDecision().String())

		inc, next, err := s.processItem(ctx, item, req.ManagerID)
		switch {
		case err == nil:
			resp.Processed++
			s.metrics.IncidentOutcomes.WithLabelValues(next.String()).Inc()
			if next == incident.StateResolved && createsPunch(inc.Type) {
				s.metrics.PunchesCreated.WithLabelValues(originIncident).Inc()
			}
			log.InfoContext(ctx, "Incident processed", "state", next.String())

		case errors.Is(err, incident.ErrAlreadyProcessed), errors.Is(err, errStateChanged):
			s.metrics.IncidentOutcomes.WithLabelValues("skipped").Inc()
			log.InfoContext(ctx, "Incident skipped", "reason", err.Error())

		default:
			resp.Unprocessable = append(resp.Unprocessable, item.ID)
			s.metrics.IncidentOutcomes.WithLabelValues("unprocessable").Inc()
			log.ErrorContext(ctx, "Incident could not be processed", "error", err)
		}
	}

	elapsed := time.Since(started)
	s.metrics.IncidentBatchDuration.Observe(elapsed.Seconds())
	slog.InfoContext(ctx, "Incident batch finished",
		"batch_id", batchID,
		"items", len(req.Items),
		"processed", resp.Processed,
		"unprocessable", len(resp.Unprocessable),
		"duration", elapsed.String(),
	)
	return resp, nil
}

// processItem applies one decision in its own transaction and returns the
// state it persisted. Any error rolls the whole item back.
func (s *IncidentServiceImpl) processItem(ctx context.Context, item incident.ProcessItem, manager int64) (incident.Incident, incident.State, error) {
	var (
		inc  incident.Incident
		next incident.State
	)
	err := postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		inc, err = s.incidentRepo.GetByID(ctx, tx, item.ID)
		if err != nil {
			return fmt.Errorf("failed to load incident: %w", err)
		}

		decision := item.ParsedDecision()
		if !incident.Accepts(inc.State, decision) {
			return incident.ErrAlreadyProcessed
		}

		var sideEffectErr error
		if decision == incident.DecisionApprove {
			sideEffectErr = postgresql.WithSavepoint(ctx, tx, func(sp pgx.Tx) error {
				return s.applySideEffect(ctx, sp, inc, manager)
			})
			if sideEffectErr != nil {
				slog.WarnContext(ctx, "Incident side effect failed", "incident_id", inc.ID, "error", sideEffectErr)
			}
		}

		transition, err := incident.Decide(inc.State, decision, sideEffectErr)
		if err != nil {
			return err
		}

		update := transition.Update(inc.ID, manager, s.clock.Now(), item.RejectionMotive)
		changed, err := s.incidentRepo.UpdateState(ctx, tx, update)
		if err != nil {
			return fmt.Errorf("failed to write incident state: %w", err)
		}
		if !changed {
			return errStateChanged
		}

		trace := audit.New(transitionTraces[transition.To], audit.EntityIncident, inc.ID, manager, transitionMotive(transition, item))
		if err := s.audit.Append(ctx, tx, trace); err != nil {
			return err
		}

		next = transition.To
		return nil
	})
	return inc, next, err
}

func transitionMotive(t incident.Transition, item incident.ProcessItem) string {
	switch {
	case t.To == incident.StateRejected && item.RejectionMotive != nil:
		return *item.RejectionMotive
	case t.Error != nil:
		return *t.Error
	}
	return ""
}
