// Package memory provides in-memory repositories for tests and local
// development. Units of work are serialized: BeginTx blocks until the
// previous transaction commits or rolls back, and a rollback restores the
// snapshot taken when the transaction (or savepoint) began. Reads through
// the store itself see only committed data; reads through a Tx see its own
// writes.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/audit"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/incident"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/punch"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrSQLUnsupported is returned by the SQL entry points of the store.
var ErrSQLUnsupported = errors.New("memory store does not execute SQL")

type tables struct {
	users     map[int64]user.User
	sets      map[int64]schedule.Set
	windows   map[int64]schedule.Window
	punches   map[int64]punch.Punch
	incidents map[int64]incident.Incident
	traces    []audit.Trace
	lastID    map[string]int64
}

func newTables() *tables {
	return &tables{
		users:     make(map[int64]user.User),
		sets:      make(map[int64]schedule.Set),
		windows:   make(map[int64]schedule.Window),
		punches:   make(map[int64]punch.Punch),
		incidents: make(map[int64]incident.Incident),
		lastID:    make(map[string]int64),
	}
}

func (t *tables) clone() *tables {
	c := newTables()
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.sets {
		c.sets[k] = v
	}
	for k, v := range t.windows {
		c.windows[k] = v
	}
	for k, v := range t.punches {
		c.punches[k] = v
	}
	for k, v := range t.incidents {
		c.incidents[k] = v
	}
	c.traces = append([]audit.Trace(nil), t.traces...)
	for k, v := range t.lastID {
		c.lastID[k] = v
	}
	return c
}

func (t *tables) nextID(table string) int64 {
	t.lastID[table]++
	return t.lastID[table]
}

// Hooks inject failures into the store, for tests.
type Hooks struct {
	// BeginTx fails the start of a unit of work when it returns an error.
	BeginTx func() error
	// Commit fails a top-level commit when it returns an error; the
	// transaction is rolled back.
	Commit func() error
	// AppendTrace fails an audit append when it returns an error.
	AppendTrace func(t audit.Trace) error
	// UpdateIncident fails a guarded incident state write when it returns
	// an error.
	UpdateIncident func(u incident.StateUpdate) error
}

// Store is the shared state behind every memory repository.
type Store struct {
	txMu sync.Mutex

	mu   sync.RWMutex
	data *tables
	// committed is the state as of the open transaction's begin, nil when
	// no transaction is open.
	committed *tables
	hooks     Hooks
}

func NewStore() *Store {
	return &Store{data: newTables()}
}

// SetHooks replaces the failure hooks.
func (s *Store) SetHooks(h Hooks) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = h
}

func (s *Store) read(fn func(t *tables)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

// readFor reads the tables as seen by q.
func (s *Store) readFor(q database.Querier, fn func(t *tables)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, pooled := q.(*Store); pooled && s.committed != nil {
		fn(s.committed)
		return
	}
	fn(s.data)
}

func (s *Store) write(fn func(t *tables)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.data)
}

func (s *Store) snapshot() *tables {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.clone()
}

func (s *Store) restore(t *tables) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = t
}

func (s *Store) setCommitted(t *tables) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed = t
}

func (s *Store) hook() Hooks {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hooks
}

// BeginTx implements database.Pool.
func (s *Store) BeginTx(ctx context.Context) (pgx.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if h := s.hook().BeginTx; h != nil {
		if err := h(); err != nil {
			return nil, err
		}
	}
	s.txMu.Lock()
	snapshot := s.snapshot()
	s.setCommitted(snapshot)
	return &Tx{store: s, snapshot: snapshot}, nil
}

func (s *Store) Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, ErrSQLUnsupported
}

func (s *Store) Query(ctx context.Context, sql string, arguments ...interface{}) (pgx.Rows, error) {
	return nil, ErrSQLUnsupported
}

func (s *Store) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return errRow{}
}

var _ database.Pool = (*Store)(nil)

type errRow struct{}

func (errRow) Scan(dest ...any) error { return ErrSQLUnsupported }

// Tx is a unit of work over the store. Nested transactions act as
// savepoints.
type Tx struct {
	pgx.Tx // methods the repositories never call

	store    *Store
	parent   *Tx
	snapshot *tables
	closed   bool
}

func (t *Tx) Begin(ctx context.Context) (pgx.Tx, error) {
	if t.closed {
		return nil, pgx.ErrTxClosed
	}
	return &Tx{store: t.store, parent: t, snapshot: t.store.snapshot()}, nil
}

func (t *Tx) Commit(ctx context.Context) error {
	if t.closed {
		return pgx.ErrTxClosed
	}
	if t.parent == nil {
		if h := t.store.hook().Commit; h != nil {
			if err := h(); err != nil {
				t.rollback()
				return err
			}
		}
	}
	t.closed = true
	if t.parent == nil {
		t.store.setCommitted(nil)
		t.store.txMu.Unlock()
	}
	return nil
}

func (t *Tx) Rollback(ctx context.Context) error {
	if t.closed {
		return pgx.ErrTxClosed
	}
	t.rollback()
	return nil
}

func (t *Tx) rollback() {
	t.store.restore(t.snapshot)
	t.closed = true
	if t.parent == nil {
		t.store.setCommitted(nil)
		t.store.txMu.Unlock()
	}
}

func (t *Tx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, ErrSQLUnsupported
}

func (t *Tx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, ErrSQLUnsupported
}

func (t *Tx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return errRow{}
}
