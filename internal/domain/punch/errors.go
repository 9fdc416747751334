package punch

import "github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/apperror"

// Punch domain errors
var (
	// Validation rules, checked in this order
	ErrOpenPunchExists  = apperror.Validation("an open punch must be finalized before starting a new one")
	ErrLaterPunchExists = apperror.Validation("a punch already starts at or after this time")
	ErrStartInsidePunch = apperror.Validation("start time falls inside an existing punch")
	ErrOverlappingPunch = apperror.Validation("punch overlaps an existing punch")

	ErrEndBeforeStart = apperror.Validation("end time must be after start time")

	// General errors
	ErrPunchNotFound = apperror.NotFound("punch not found")
	ErrNoOpenPunch   = apperror.NotFound("no open punch found")
)
