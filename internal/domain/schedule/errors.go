package schedule

import "github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/apperror"

var (
	ErrNoScheduleConfigured = apperror.NotFound("no schedule configured before this date")
	ErrNoWindowAvailable    = apperror.NotFound("no schedule window available")
	ErrWindowNotFound       = apperror.NotFound("schedule window not found")

	ErrOverlappingWindows = apperror.Validation("schedule windows on the same weekday overlap")
	ErrSetAlreadyExists   = apperror.Validation("a schedule set already exists for this date")
)
