package incident

import (
	"errors"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/apperror"
)

var (
	ErrIncidentNotFound = apperror.NotFound("incident not found")

	// ErrAlreadyProcessed marks a decision on an incident whose state no
	// longer accepts it. Batch processing skips such items.
	ErrAlreadyProcessed = errors.New("incident has already been processed")

	// ErrPunchGone is a correction whose original punch was deleted or
	// superseded concurrently.
	ErrPunchGone = apperror.Validation("the punch to correct no longer exists")

	ErrPunchRequired      = apperror.Validation("this incident type requires a punch")
	ErrPunchNotOwned      = apperror.Validation("the punch does not belong to the incident user")
	ErrPunchInactive      = apperror.Validation("the punch has already been corrected or deleted")
	ErrStartRequired      = apperror.Validation("a new punch incident requires a start time")
	ErrEndRequired        = apperror.Validation("an end time correction requires an end time")
	ErrInvalidResubmitSrc = apperror.Validation("only conflict or rejected incidents can be resubmitted")
)
