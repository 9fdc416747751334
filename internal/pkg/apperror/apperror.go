// Package apperror classifies failures into the kinds the rest of the
// system reacts to: user-correctable validation failures, missing records,
// and everything else.
package apperror

import (
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
)

// Error is a classified error carrying a user-facing message.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

// Message returns the user-facing text.
func (e *Error) Message() string { return e.msg }

// Detailf derives an error with a more specific message that still matches
// e and e's kind under errors.Is.
func (e *Error) Detailf(format string, args ...any) *Error {
	return &Error{kind: e, msg: fmt.Sprintf(format, args...)}
}

func Validation(msg string) *Error {
	return &Error{kind: ErrValidation, msg: msg}
}

func NotFound(msg string) *Error {
	return &Error{kind: ErrNotFound, msg: msg}
}

// IsRecognized reports whether err is a business failure the requester can
// act on, as opposed to an infrastructure failure.
func IsRecognized(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) {
		return true
	}
	var ve validator.ValidationErrors
	return errors.As(err, &ve)
}

// Message extracts the innermost user-facing message of a recognized error,
// dropping wrapping context such as "failed to add punch: ".
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.msg
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return ve.Error()
	}
	return err.Error()
}
