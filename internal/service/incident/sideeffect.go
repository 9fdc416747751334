package incident

import (
	"context"
	"errors"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/incident"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/punch"
	"github.com/jackc/pgx/v5"
)

const originIncident = "incident"

// applySideEffect performs the punch mutation an approved incident asks for.
// It runs inside a savepoint; any error leaves no punch rows behind.
func (s *IncidentServiceImpl) applySideEffect(ctx context.Context, tx pgx.Tx, inc incident.Incident, manager int64) error {
	switch inc.Type {
	case incident.TypeNewPunch:
		if inc.Start == nil {
			return incident.ErrStartRequired
		}
		c := punch.Candidate{
			UserID:       inc.UserID,
			RegisteredBy: registeredBy(inc),
			Date:         inc.Date,
			Start:        *inc.Start,
			End:          inc.End,
			Actor:        manager,
			Origin:       originIncident,
		}
		_, err := s.punchService.AddTx(ctx, tx, c, nil)
		return err

	case incident.TypeEndTimeCorrection:
		if inc.PunchID == nil {
			return incident.ErrPunchRequired
		}
		if inc.End == nil {
			return incident.ErrEndRequired
		}
		return s.correctEndTime(ctx, tx, inc, manager)

	case incident.TypePunchDeletion:
		if inc.PunchID == nil {
			return incident.ErrPunchRequired
		}
		// already inactive is fine
		_, err := s.punchService.MarkDeleted(ctx, tx, *inc.PunchID, manager)
		return err
	}

	return errors.New("unknown incident type " + inc.Type.String())
}

// correctEndTime inserts a replacement for the referenced punch carrying the
// requested end time and supersedes the original.
func (s *IncidentServiceImpl) correctEndTime(ctx context.Context, tx pgx.Tx, inc incident.Incident, manager int64) error {
	original, err := s.punchRepo.GetByID(ctx, tx, *inc.PunchID)
	if err != nil {
		return err
	}
	if !original.IsActive() {
		return incident.ErrPunchGone
	}

	replacement, err := s.punchService.AddTx(ctx, tx, punch.Candidate{
		UserID:       original.UserID,
		RegisteredBy: registeredBy(inc),
		Date:         original.Date,
		Start:        original.Start,
		End:          inc.End,
		Actor:        manager,
		Origin:       originIncident,
	}, &original.ID)
	if err != nil {
		return err
	}

	changed, err := s.punchService.MarkSupersededBy(ctx, tx, original.ID, replacement.ID, manager)
	if err != nil {
		return err
	}
	if !changed {
		return incident.ErrPunchGone
	}
	return nil
}

// registeredBy is the requester, unless they asked for themselves.
func registeredBy(inc incident.Incident) *int64 {
	if inc.RequestedBy == 0 || inc.RequestedBy == inc.UserID {
		return nil
	}
	id := inc.RequestedBy
	return &id
}

// createsPunch reports whether resolving inc inserted a punch.
func createsPunch(t incident.Type) bool {
	return t == incident.TypeNewPunch || t == incident.TypeEndTimeCorrection
}
