package incident

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	overlap := apperror.Validation("punch overlaps an existing punch")

	cases := []struct {
		name      string
		current   State
		decision  Decision
		effectErr error
		wantTo    State
		wantErr   *string
	}{
		{"approve ok", StateRequested, DecisionApprove, nil, StateResolved, nil},
		{"approve recognized failure", StateRequested, DecisionApprove, fmt.Errorf("failed to add punch: %w", overlap), StateConflict, strPtr("punch overlaps an existing punch")},
		{"approve unrecognized failure", StateRequested, DecisionApprove, errors.New("connection reset"), StateInternalError, strPtr(InternalErrorMessage)},
		{"reprocess internal error", StateInternalError, DecisionApprove, nil, StateResolved, nil},
		{"reject", StateRequested, DecisionReject, nil, StateRejected, nil},
		{"reject ignores effect error", StateRequested, DecisionReject, errors.New("ignored"), StateRejected, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tr, err := Decide(c.current, c.decision, c.effectErr)
			require.NoError(t, err)
			assert.Equal(t, c.current, tr.From)
			assert.Equal(t, c.wantTo, tr.To)
			assert.Equal(t, c.wantErr, tr.Error)
		})
	}
}

func TestDecideAlreadyProcessed(t *testing.T) {
	cases := []struct {
		current  State
		decision Decision
	}{
		{StateResolved, DecisionApprove},
		{StateConflict, DecisionApprove},
		{StateRejected, DecisionApprove},
		{StateResolved, DecisionReject},
		{StateConflict, DecisionReject},
		{StateInternalError, DecisionReject},
	}
	for _, c := range cases {
		_, err := Decide(c.current, c.decision, nil)
		assert.ErrorIs(t, err, ErrAlreadyProcessed, "%s/%s", c.current, c.decision)
	}
}

func TestTransitionUpdate(t *testing.T) {
	now := time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC)
	motive := "duplicate request"

	resolved := Transition{From: StateRequested, To: StateResolved}.Update(42, 3, now, nil)
	assert.Equal(t, StateRequested, resolved.Expected)
	assert.Equal(t, int64(3), *resolved.ResolvedBy)
	assert.Equal(t, now, *resolved.ResolvedAt)
	assert.Nil(t, resolved.StateChangedAt)
	assert.Nil(t, resolved.Error)

	msg := "punch overlaps an existing punch"
	conflict := Transition{From: StateRequested, To: StateConflict, Error: &msg}.Update(43, 3, now, nil)
	assert.Nil(t, conflict.ResolvedBy)
	assert.Nil(t, conflict.ResolvedAt)
	assert.Equal(t, now, *conflict.StateChangedAt)
	assert.Equal(t, msg, *conflict.Error)

	rejected := Transition{From: StateRequested, To: StateRejected}.Update(44, 3, now, &motive)
	assert.Equal(t, int64(3), *rejected.ResolvedBy)
	assert.Nil(t, rejected.ResolvedAt)
	assert.Equal(t, motive, *rejected.RejectionMotive)
}

func TestParseRoundTrip(t *testing.T) {
	for _, s := range []State{StateRequested, StateConflict, StateInternalError, StateRejected, StateResolved} {
		got, ok := ParseState(s.String())
		require.True(t, ok)
		assert.Equal(t, s, got)
	}
	for _, ty := range []Type{TypeNewPunch, TypePunchDeletion, TypeEndTimeCorrection} {
		got, ok := ParseType(ty.String())
		require.True(t, ok)
		assert.Equal(t, ty, got)
	}
	_, ok := ParseState("approved")
	assert.False(t, ok)
}

func strPtr(s string) *string { return &s }
