package user

import (
	"errors"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/apperror"
)

var (
	ErrUserNotFound            = apperror.NotFound("user not found")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrSupervisorRequired      = errors.New("supervisor access required")
)
