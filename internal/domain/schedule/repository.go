package schedule

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
)

type ScheduleRepository interface {
	// LatestSetBefore returns the newest set of userID whose effective date
	// is strictly before date. Returns ErrNoScheduleConfigured when none.
	LatestSetBefore(ctx context.Context, q database.Querier, userID int64, date time.Time) (Set, error)

	// WindowsForWeekday returns the windows of setID for weekday ordered by start.
	WindowsForWeekday(ctx context.Context, q database.Querier, setID int64, weekday time.Weekday) ([]Window, error)

	GetWindow(ctx context.Context, q database.Querier, id int64) (Window, error)

	// CreateSet inserts the set and its windows, returning them with ids.
	CreateSet(ctx context.Context, q database.Querier, set Set) (Set, error)

	// ListSets returns the sets of userID newest first, windows included.
	ListSets(ctx context.Context, q database.Querier, userID int64) ([]Set, error)
}
