package schedule

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/timeofday"
)

// Matcher resolves the schedule window a punch belongs to.
type Matcher interface {
	// NearestWindow returns the single applicable window for userID on the
	// calendar date at the given wall-clock time. excludePunchID, when set,
	// is ignored for consumption accounting.
	NearestWindow(ctx context.Context, q database.Querier, userID int64, date time.Time, at timeofday.Time, excludePunchID *int64) (Window, error)
}

type ScheduleService interface {
	CreateSet(ctx context.Context, req CreateSetRequest) (SetResponse, error)
	ListSets(ctx context.Context, userID int64) ([]SetResponse, error)
	// PreviewWindow runs the matcher outside any write, for clients that
	// show the window a punch would land in.
	PreviewWindow(ctx context.Context, req PreviewWindowRequest) (WindowResponse, error)
}
