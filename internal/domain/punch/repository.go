package punch

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/timeofday"
)

// PunchRepository stores punches. Every read except GetByID sees active
// punches only.
type PunchRepository interface {
	Create(ctx context.Context, q database.Querier, p Punch) (Punch, error)

	// GetByID returns the punch whether or not it is still active.
	GetByID(ctx context.Context, q database.Querier, id int64) (Punch, error)

	// ListActiveByUserDate returns active punches of the user on date ordered
	// by start, leaving out excludeID when set.
	ListActiveByUserDate(ctx context.Context, q database.Querier, userID int64, date time.Time, excludeID *int64) ([]Punch, error)

	// GetOpen returns the active punch without end time. Returns ErrNoOpenPunch when none.
	GetOpen(ctx context.Context, q database.Querier, userID int64, date time.Time) (Punch, error)

	// SetEnd fills the end time of an open active punch.
	SetEnd(ctx context.Context, q database.Querier, id int64, end timeofday.Time) (bool, error)

	// MarkSupersededBy and MarkDeleted report false when the punch was
	// already inactive.
	MarkSupersededBy(ctx context.Context, q database.Querier, oldID, newID int64) (bool, error)
	MarkDeleted(ctx context.Context, q database.Querier, id int64) (bool, error)

	List(ctx context.Context, q database.Querier, filter ListFilter) ([]Punch, error)
	Recent(ctx context.Context, q database.Querier, userID int64, limit int) ([]Punch, error)
}
