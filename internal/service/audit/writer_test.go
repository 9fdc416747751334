package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/audit"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendStampsTimeAndLists(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	w := NewWriter(memory.NewTraceRepository(store), clock.NewFixed(now))

	require.NoError(t, w.Append(ctx, store, audit.New(audit.TraceIncidentCreated, audit.EntityIncident, 42, 7, "created")))
	require.NoError(t, w.Append(ctx, store, audit.New(audit.TracePunchCreated, audit.EntityPunch, 42, 0, "")))
	require.NoError(t, w.Append(ctx, store, audit.New(audit.TraceIncidentResolved, audit.EntityIncident, 42, 3, "")))

	traces, err := w.ListByEntity(ctx, store, audit.EntityIncident, 42)
	require.NoError(t, err)
	require.Len(t, traces, 2)
	assert.Equal(t, audit.TraceIncidentCreated, traces[0].Type)
	assert.Equal(t, now, traces[0].OccurredAt)
	assert.Equal(t, int64(7), *traces[0].ActorID)
	assert.Equal(t, audit.TraceIncidentResolved, traces[1].Type)

	punchTraces, err := w.ListByEntity(ctx, store, audit.EntityPunch, 42)
	require.NoError(t, err)
	require.Len(t, punchTraces, 1)
	assert.Nil(t, punchTraces[0].ActorID)
}

func TestAppendRejectsIncompleteTrace(t *testing.T) {
	store := memory.NewStore()
	w := NewWriter(memory.NewTraceRepository(store), clock.NewFixed(time.Now()))

	err := w.Append(context.Background(), store, audit.Trace{Type: audit.TracePunchCreated})
	assert.ErrorIs(t, err, audit.ErrTraceIncomplete)
	assert.Empty(t, store.Traces())
}

func TestAppendFailureRollsBackUnitOfWork(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	w := NewWriter(memory.NewTraceRepository(store), clock.NewFixed(time.Now()))

	require.NoError(t, w.Append(ctx, store, audit.New(audit.TraceIncidentCreated, audit.EntityIncident, 1, 7, "")))

	store.SetHooks(memory.Hooks{AppendTrace: func(audit.Trace) error { return errors.New("disk full") }})
	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	err = w.Append(ctx, tx, audit.New(audit.TraceIncidentResolved, audit.EntityIncident, 1, 3, ""))
	require.Error(t, err)
	require.NoError(t, tx.Rollback(ctx))

	assert.Len(t, store.Traces(), 1)
}
