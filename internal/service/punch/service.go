package punch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/audit"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/punch"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/timeofday"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/repository/postgresql"
	"github.com/jackc/pgx/v5"
)

const DefaultRecentLimit = 10

type PunchServiceImpl struct {
	db          database.Pool
	punchRepo   punch.PunchRepository
	userRepo    user.UserRepository
	matcher     schedule.Matcher
	audit       audit.Writer
	clock       clock.Clock
	metrics     *metrics.Metrics
	recentLimit int
}

// Record implements punch.PunchService.
func (s *PunchServiceImpl) Record(ctx context.Context, req punch.AddPunchRequest) (punch.PunchResponse, error) {
	if err := req.Validate(); err != nil {
		return punch.PunchResponse{}, err
	}

	p, err := s.Add(ctx, req.Candidate(s.clock.Now()))
	if err != nil {
		return punch.PunchResponse{}, err
	}

	cache, err := s.describe(ctx, []punch.Punch{p})
	if err != nil {
		return punch.PunchResponse{}, err
	}
	return punch.NewPunchResponse(p, cache), nil
}

// Add implements punch.PunchService.
func (s *PunchServiceImpl) Add(ctx context.Context, c punch.Candidate) (punch.Punch, error) {
	var created punch.Punch
	err := postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		p, err := s.AddTx(ctx, tx, c, nil)
		if err != nil {
			return err
		}
		created = p
		return nil
	})
	if err != nil {
		if !apperror.IsRecognized(err) {
			slog.ErrorContext(ctx, "Failed to add punch", "user_id", c.UserID, "error", err)
		}
		return punch.Punch{}, err
	}

	s.metrics.PunchesCreated.WithLabelValues(c.Origin).Inc()
	slog.InfoContext(ctx, "Punch created",
		"punch_id", created.ID,
		"user_id", created.UserID,
		"window_id", created.ScheduleWindowID,
	)
	return created, nil
}

// AddTx implements punch.PunchService.
func (s *PunchServiceImpl) AddTx(ctx context.Context, tx pgx.Tx, c punch.Candidate, excludePunchID *int64) (punch.Punch, error) {
	active, err := s.punchRepo.ListActiveByUserDate(ctx, tx, c.UserID, c.Date, excludePunchID)
	if err != nil {
		return punch.Punch{}, fmt.Errorf("failed to load active punches: %w", err)
	}
	if err := validateCandidate(c, active); err != nil {
		s.metrics.PunchRejections.WithLabelValues(rejectionReason(err)).Inc()
		return punch.Punch{}, err
	}

	window, err := s.matcher.NearestWindow(ctx, tx, c.UserID, c.Date, c.Start, excludePunchID)
	if err != nil {
		if apperror.IsRecognized(err) {
			s.metrics.PunchRejections.WithLabelValues(rejectionReason(err)).Inc()
		}
		return punch.Punch{}, err
	}

	created, err := s.punchRepo.Create(ctx, tx, punch.Punch{
		UserID:           c.UserID,
		RegisteredBy:     c.RegisteredBy,
		ScheduleWindowID: window.ID,
		Date:             c.Date,
		Start:            c.Start,
		End:              c.End,
	})
	if err != nil {
		return punch.Punch{}, fmt.Errorf("failed to insert punch: %w", database.TranslateError(err))
	}

	motive := fmt.Sprintf("window %d %s %s-%s, %s hours to work",
		window.ID, window.Weekday, window.Start, window.End, window.HoursToWork())
	trace := audit.New(audit.TracePunchCreated, audit.EntityPunch, created.ID, c.Actor, motive)
	if err := s.audit.Append(ctx, tx, trace); err != nil {
		return punch.Punch{}, err
	}

	return created, nil
}

// MarkSupersededBy implements punch.PunchService.
func (s *PunchServiceImpl) MarkSupersededBy(ctx context.Context, tx pgx.Tx, oldID, newID int64, actor int64) (bool, error) {
	changed, err := s.punchRepo.MarkSupersededBy(ctx, tx, oldID, newID)
	if err != nil {
		return false, fmt.Errorf("failed to supersede punch %d: %w", oldID, err)
	}
	if !changed {
		return false, nil
	}

	motive := fmt.Sprintf("superseded by punch %d", newID)
	if err := s.audit.Append(ctx, tx, audit.New(audit.TracePunchSuperseded, audit.EntityPunch, oldID, actor, motive)); err != nil {
		return false, err
	}
	return true, nil
}

// MarkDeleted implements punch.PunchService.
func (s *PunchServiceImpl) MarkDeleted(ctx context.Context, tx pgx.Tx, id int64, actor int64) (bool, error) {
	changed, err := s.punchRepo.MarkDeleted(ctx, tx, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete punch %d: %w", id, err)
	}
	if !changed {
		return false, nil
	}

	if err := s.audit.Append(ctx, tx, audit.New(audit.TracePunchDeleted, audit.EntityPunch, id, actor, "")); err != nil {
		return false, err
	}
	return true, nil
}

// Finalize implements punch.PunchService.
func (s *PunchServiceImpl) Finalize(ctx context.Context, req punch.FinalizeRequest) (punch.PunchResponse, error) {
	if err := req.Validate(); err != nil {
		return punch.PunchResponse{}, err
	}

	at := req.Time(s.clock.Now())
	y, m, d := at.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	end := timeofday.Of(at)

	var finalized punch.Punch
	err := postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		open, err := s.punchRepo.GetOpen(ctx, tx, req.UserID, date)
		if err != nil {
			return err
		}
		if !end.After(open.Start) {
			return punch.ErrEndBeforeStart.Detailf("end time %s must be after start time %s", end, open.Start)
		}

		changed, err := s.punchRepo.SetEnd(ctx, tx, open.ID, end)
		if err != nil {
			return fmt.Errorf("failed to set punch end: %w", err)
		}
		if !changed {
			// finalized or superseded since it was read
			return punch.ErrNoOpenPunch
		}
		open.End = timeofday.Ptr(end)

		motive := fmt.Sprintf("end time %s", end)
		if err := s.audit.Append(ctx, tx, audit.New(audit.TracePunchFinalized, audit.EntityPunch, open.ID, req.ActorID, motive)); err != nil {
			return err
		}
		finalized = open
		return nil
	})
	if err != nil {
		if !apperror.IsRecognized(err) {
			slog.ErrorContext(ctx, "Failed to finalize punch", "user_id", req.UserID, "error", err)
		}
		return punch.PunchResponse{}, err
	}

	slog.InfoContext(ctx, "Punch finalized", "punch_id", finalized.ID, "end_time", end.String())

	cache, err := s.describe(ctx, []punch.Punch{finalized})
	if err != nil {
		return punch.PunchResponse{}, err
	}
	return punch.NewPunchResponse(finalized, cache), nil
}

// List implements punch.PunchService.
func (s *PunchServiceImpl) List(ctx context.Context, req punch.ListPunchesRequest) (punch.ListPunchesResponse, error) {
	if err := req.Validate(); err != nil {
		return punch.ListPunchesResponse{}, err
	}

	punches, err := s.punchRepo.List(ctx, s.db, req.Filter())
	if err != nil {
		return punch.ListPunchesResponse{}, fmt.Errorf("failed to list punches: %w", err)
	}
	return s.listResponse(ctx, punches)
}

// Recent implements punch.PunchService.
func (s *PunchServiceImpl) Recent(ctx context.Context, userID int64) (punch.ListPunchesResponse, error) {
	punches, err := s.punchRepo.Recent(ctx, s.db, userID, s.recentLimit)
	if err != nil {
		return punch.ListPunchesResponse{}, fmt.Errorf("failed to list recent punches: %w", err)
	}
	return s.listResponse(ctx, punches)
}

func (s *PunchServiceImpl) listResponse(ctx context.Context, punches []punch.Punch) (punch.ListPunchesResponse, error) {
	cache, err := s.describe(ctx, punches)
	if err != nil {
		return punch.ListPunchesResponse{}, err
	}

	resp := punch.ListPunchesResponse{
		Punches: make([]punch.PunchResponse, 0, len(punches)),
		Total:   len(punches),
	}
	for _, p := range punches {
		resp.Punches = append(resp.Punches, punch.NewPunchResponse(p, cache))
	}
	return resp, nil
}

// describe loads the descriptors of every user referenced by punches.
func (s *PunchServiceImpl) describe(ctx context.Context, punches []punch.Punch) (user.DescriptorCache, error) {
	ids := make([]int64, 0, len(punches)*2)
	for _, p := range punches {
		ids = append(ids, p.UserID)
		if p.RegisteredBy != nil {
			ids = append(ids, *p.RegisteredBy)
		}
	}

	cache := user.DescriptorCache{}
	if err := s.userRepo.Descriptors(ctx, s.db, cache, ids); err != nil {
		return nil, fmt.Errorf("failed to load user descriptors: %w", err)
	}
	return cache, nil
}

func NewPunchService(
	db database.Pool,
	punchRepo punch.PunchRepository,
	userRepo user.UserRepository,
	matcher schedule.Matcher,
	auditWriter audit.Writer,
	clk clock.Clock,
	m *metrics.Metrics,
	recentLimit int,
) punch.PunchService {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &PunchServiceImpl{
		db:          db,
		punchRepo:   punchRepo,
		userRepo:    userRepo,
		matcher:     matcher,
		audit:       auditWriter,
		clock:       clk,
		metrics:     m,
		recentLimit: recentLimit,
	}
}
