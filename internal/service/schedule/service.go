package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/timeofday"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/repository/postgresql"
	"github.com/jackc/pgx/v5"
)

type ScheduleServiceImpl struct {
	db           database.Pool
	scheduleRepo schedule.ScheduleRepository
	userRepo     user.UserRepository
	matcher      schedule.Matcher
}

// CreateSet implements schedule.ScheduleService.
func (s *ScheduleServiceImpl) CreateSet(ctx context.Context, req schedule.CreateSetRequest) (schedule.SetResponse, error) {
	if err := req.Validate(); err != nil {
		return schedule.SetResponse{}, err
	}

	set := req.Set()
	if err := checkOverlaps(set.Windows); err != nil {
		return schedule.SetResponse{}, err
	}

	err := postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := s.userRepo.GetByID(ctx, tx, set.UserID); err != nil {
			return err
		}
		created, err := s.scheduleRepo.CreateSet(ctx, tx, set)
		if err != nil {
			return err
		}
		set = created
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to create schedule set", "user_id", set.UserID, "error", err)
		return schedule.SetResponse{}, err
	}

	slog.InfoContext(ctx, "Schedule set created", "set_id", set.ID, "user_id", set.UserID, "windows", len(set.Windows))
	return schedule.NewSetResponse(set), nil
}

// ListSets implements schedule.ScheduleService.
func (s *ScheduleServiceImpl) ListSets(ctx context.Context, userID int64) ([]schedule.SetResponse, error) {
	sets, err := s.scheduleRepo.ListSets(ctx, s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule sets: %w", err)
	}

	resp := make([]schedule.SetResponse, 0, len(sets))
	for _, set := range sets {
		resp = append(resp, schedule.NewSetResponse(set))
	}
	return resp, nil
}

// PreviewWindow implements schedule.ScheduleService.
func (s *ScheduleServiceImpl) PreviewWindow(ctx context.Context, req schedule.PreviewWindowRequest) (schedule.WindowResponse, error) {
	if err := req.Validate(); err != nil {
		return schedule.WindowResponse{}, err
	}

	w, err := s.matcher.NearestWindow(ctx, s.db, req.UserID, req.Time(), timeofday.Of(req.Time()), nil)
	if err != nil {
		return schedule.WindowResponse{}, err
	}
	return schedule.NewWindowResponse(w), nil
}

// checkOverlaps rejects windows of the same weekday whose ranges intersect.
func checkOverlaps(windows []schedule.Window) error {
	sorted := append([]schedule.Window(nil), windows...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Weekday != sorted[j].Weekday {
			return sorted[i].Weekday < sorted[j].Weekday
		}
		return sorted[i].Start.Before(sorted[j].Start)
	})
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if prev.Weekday == cur.Weekday && cur.Start.Before(prev.End) {
			return schedule.ErrOverlappingWindows.Detailf(
				"windows %s-%s and %s-%s on %s overlap", prev.Start, prev.End, cur.Start, cur.End, cur.Weekday)
		}
	}
	return nil
}

func NewScheduleService(
	db database.Pool,
	scheduleRepo schedule.ScheduleRepository,
	userRepo user.UserRepository,
	matcher schedule.Matcher,
) schedule.ScheduleService {
	return &ScheduleServiceImpl{
		db:           db,
		scheduleRepo: scheduleRepo,
		userRepo:     userRepo,
		matcher:      matcher,
	}
}
