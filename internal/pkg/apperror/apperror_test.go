package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
)

func TestIsRecognized(t *testing.T) {
	overlap := Validation("punch overlaps an existing punch")
	missing := NotFound("punch not found")

	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"validation", overlap, true},
		{"wrapped validation", fmt.Errorf("failed to add punch: %w", overlap), true},
		{"not found", missing, true},
		{"validation errors", validator.ValidationErrors{{Field: "date", Message: "required"}}, true},
		{"infrastructure", errors.New("connection reset"), false},
		{"wrapped infrastructure", fmt.Errorf("failed to insert: %w", errors.New("timeout")), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, IsRecognized(c.err))
		})
	}
}

func TestMessage(t *testing.T) {
	overlap := Validation("punch overlaps an existing punch")

	assert.Equal(t, "punch overlaps an existing punch", Message(fmt.Errorf("failed to add punch: %w", overlap)))
	assert.Equal(t, "date: required", Message(validator.ValidationErrors{{Field: "date", Message: "required"}}))
	assert.Equal(t, "boom", Message(errors.New("boom")))
	assert.Equal(t, "", Message(nil))
}

func TestSentinelIdentity(t *testing.T) {
	overlap := Validation("punch overlaps an existing punch")
	wrapped := fmt.Errorf("failed: %w", overlap)

	assert.ErrorIs(t, wrapped, overlap)
	assert.ErrorIs(t, wrapped, ErrValidation)
	assert.NotErrorIs(t, wrapped, ErrNotFound)
}

func TestDetailf(t *testing.T) {
	noSchedule := NotFound("no schedule configured before this date")
	detailed := noSchedule.Detailf("no schedule configured before %s", "2024-03-04")

	assert.ErrorIs(t, detailed, noSchedule)
	assert.ErrorIs(t, detailed, ErrNotFound)
	assert.Equal(t, "no schedule configured before 2024-03-04", Message(fmt.Errorf("failed: %w", detailed)))
}
