package table

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/leengari/stripetable/internal/domain/data"
	"github.com/leengari/stripetable/internal/domain/errors"
	"github.com/leengari/stripetable/internal/domain/stripe"
)

// Table is an in-memory grid of cells addressable by row and by column.
// Every cell lives in the arena and is shared by exactly one row stripe and one
// column stripe. Row r holds its cells in column order and column c holds its
// cells in row order, so cell (r,c) is rows[r].Cells[c] == columns[c].Cells[r].
type Table struct {
	mu      sync.RWMutex
	id      uuid.UUID
	name    string
	arena   *data.Arena
	stripes *stripe.Container
	handler errors.ExceptionHandler
	logger  *slog.Logger
}

// Option configures a Table at construction
type Option func(*Table)

// WithExceptionHandler sets the policy used when marshalling this table fails
func WithExceptionHandler(h errors.ExceptionHandler) Option {
	return func(t *Table) {
		if h != nil {
			t.handler = h
		}
	}
}

// WithLogger sets the logger used for structural debug output
func WithLogger(logger *slog.Logger) Option {
	return func(t *Table) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithID restores a persisted table id
func WithID(id uuid.UUID) Option {
	return func(t *Table) {
		if id != uuid.Nil {
			t.id = id
		}
	}
}

// New creates an empty table
func New(name string, opts ...Option) *Table {
	t := &Table{
		id:      uuid.New(),
		name:    name,
		arena:   data.NewArena(0),
		stripes: stripe.NewContainer(),
		handler: errors.Rethrow{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewFromRows creates a table and fills it row by row
func NewFromRows(name string, rows [][]any, opts ...Option) *Table {
	t := New(name, opts...)
	t.Lock()
	defer t.Unlock()
	for _, values := range rows {
		// index is always valid here
		_ = t.insertStripeUnsafe(stripe.Row, t.stripes.Rows().Len(), values)
	}
	return t
}

// Lock acquires an exclusive lock on the table for write operations
func (t *Table) Lock() {
	t.mu.Lock()
}

// Unlock releases the exclusive lock
func (t *Table) Unlock() {
	t.mu.Unlock()
}

// RLock acquires a read lock on the table for read operations
func (t *Table) RLock() {
	t.mu.RLock()
}

// RUnlock releases the read lock
func (t *Table) RUnlock() {
	t.mu.RUnlock()
}

// ID returns the table's unique id
func (t *Table) ID() uuid.UUID {
	return t.id
}

// Name returns the table name (may be empty)
func (t *Table) Name() string {
	t.RLock()
	defer t.RUnlock()
	return t.name
}

// SetName renames the table
func (t *Table) SetName(name string) {
	t.Lock()
	defer t.Unlock()
	t.name = name
}

// ExceptionHandler returns the failure policy for marshalling this table
func (t *Table) ExceptionHandler() errors.ExceptionHandler {
	t.RLock()
	defer t.RUnlock()
	return t.handler
}

// SetExceptionHandler replaces the failure policy; nil restores Rethrow
func (t *Table) SetExceptionHandler(h errors.ExceptionHandler) {
	t.Lock()
	defer t.Unlock()
	if h == nil {
		h = errors.Rethrow{}
	}
	t.handler = h
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	t.RLock()
	defer t.RUnlock()
	return t.stripes.Rows().Len()
}

// ColumnCount returns the number of columns
func (t *Table) ColumnCount() int {
	t.RLock()
	defer t.RUnlock()
	return t.stripes.Columns().Len()
}

// CellCount returns the number of live cells (rows x columns)
func (t *Table) CellCount() int {
	t.RLock()
	defer t.RUnlock()
	return t.arena.Len()
}

// Copy returns a deep copy with a fresh id
func (t *Table) Copy() *Table {
	t.RLock()
	defer t.RUnlock()
	return &Table{
		id:      uuid.New(),
		name:    t.name,
		arena:   t.arena.Clone(),
		stripes: t.stripes.Clone(),
		handler: t.handler,
		logger:  t.logger,
	}
}
