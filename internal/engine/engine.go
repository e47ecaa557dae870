package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leengari/stripetable/internal/domain/table"
	"github.com/leengari/stripetable/internal/query/indexing"
	"github.com/leengari/stripetable/internal/query/operations/selection"
	"github.com/leengari/stripetable/internal/storage/manager"
	"github.com/leengari/stripetable/internal/storage/marshal"
)

// Engine is the main entry point: it runs queries, conversions and index
// builds and reports each of them to its observers
type Engine struct {
	mu        sync.RWMutex
	observers []Observer // Observers for lifecycle events
	registry  *manager.Registry
	logger    *slog.Logger
	opts      marshal.Options
}

// Option configures an Engine
type Option func(*Engine)

// WithRegistry attaches table storage
func WithRegistry(r *manager.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithLogger sets the logger handed to queries and codecs
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMarshalOptions sets the defaults used by ReadFile and WriteFile
func WithMarshalOptions(opts marshal.Options) Option {
	return func(e *Engine) { e.opts = opts }
}

// WithObserver registers an observer at construction
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

// New creates a new Engine instance
func New(opts ...Option) *Engine {
	e := &Engine{
		observers: make([]Observer, 0),
		logger:    slog.Default(),
		opts:      marshal.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the attached storage, or nil
func (e *Engine) Registry() *manager.Registry { return e.registry }

// MarshalOptions returns the engine defaults
func (e *Engine) MarshalOptions() marshal.Options { return e.opts }

// Select starts a query over t
func (e *Engine) Select(t *table.Table) *selection.Query {
	return selection.From(t).WithLogger(e.logger)
}

// Execute runs q and reports it
func (e *Engine) Execute(q *selection.Query) (*table.Table, error) {
	return e.ExecuteContext(context.Background(), q)
}

// ExecuteContext runs q and reports it; ctx is checked between base rows
func (e *Engine) ExecuteContext(ctx context.Context, q *selection.Query) (*table.Table, error) {
	if q == nil {
		return nil, fmt.Errorf("nil query")
	}
	opID := uuid.NewString()
	info := SelectInfo{Joins: len(q.Tables()) - 1}
	if base := q.Base(); base != nil {
		info.Table = base.Name()
	}

	e.notify(Event{Type: EventSelectStart, OpID: opID, Data: info})
	start := time.Now()
	result, err := q.ExecuteContext(ctx)
	info.Stats = q.Stats()
	info.Duration = time.Since(start)
	info.Err = err
	e.notify(Event{Type: EventSelectEnd, OpID: opID, Data: info})

	if err != nil {
		return nil, fmt.Errorf("select failed: %w", err)
	}
	return result, nil
}

// Marshal writes t to w in format
func (e *Engine) Marshal(t *table.Table, format marshal.Format, w io.Writer, opts marshal.Options) error {
	opID := uuid.NewString()
	info := MarshalInfo{Format: string(format)}
	if t != nil {
		info.Table = t.Name()
	}
	e.notify(Event{Type: EventMarshalStart, OpID: opID, Data: info})

	start := time.Now()
	err := e.marshal(t, format, w, opts)
	if t != nil {
		info.Rows = t.RowCount()
	}
	info.Duration = time.Since(start)
	info.Err = err
	e.notify(Event{Type: EventMarshalEnd, OpID: opID, Data: info})
	return err
}

func (e *Engine) marshal(t *table.Table, format marshal.Format, w io.Writer, opts marshal.Options) error {
	if opts.Logger == nil {
		opts.Logger = e.logger
	}
	codec, err := marshal.New(format, opts)
	if err != nil {
		return err
	}
	return codec.Marshal(t, w)
}

// Unmarshal reads a table in format from r
func (e *Engine) Unmarshal(format marshal.Format, r io.Reader, opts marshal.Options) (*table.Table, error) {
	opID := uuid.NewString()
	info := MarshalInfo{Format: string(format), Table: opts.Name}
	e.notify(Event{Type: EventUnmarshalStart, OpID: opID, Data: info})

	start := time.Now()
	if opts.Logger == nil {
		opts.Logger = e.logger
	}
	var t *table.Table
	codec, err := marshal.New(format, opts)
	if err == nil {
		t, err = codec.Unmarshal(r)
	}
	if t != nil {
		info.Table = t.Name()
		info.Rows = t.RowCount()
	}
	info.Duration = time.Since(start)
	info.Err = err
	e.notify(Event{Type: EventUnmarshalEnd, OpID: opID, Data: info})
	return t, err
}

// ReadFile unmarshals a file, picking the format from its extension unless
// format is set. Untitled documents are named after the file.
func (e *Engine) ReadFile(path string, format marshal.Format) (*table.Table, error) {
	if format == "" {
		var err error
		if format, err = marshal.FormatFromPath(path); err != nil {
			return nil, err
		}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	opts := e.opts
	if opts.Name == "" {
		base := filepath.Base(path)
		opts.Name = base[:len(base)-len(filepath.Ext(base))]
	}
	t, err := e.Unmarshal(format, f, opts)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return t, nil
}

// WriteFile marshals t into path with the engine defaults
func (e *Engine) WriteFile(t *table.Table, path string, format marshal.Format) error {
	if format == "" {
		var err error
		if format, err = marshal.FormatFromPath(path); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := e.Marshal(t, format, f, e.opts); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// BuildIndex scans column col of t into an index of the given kind
func (e *Engine) BuildIndex(t *table.Table, col int, kind indexing.Kind) (indexing.ScannableStripeDataContainer, error) {
	start := time.Now()
	idx, err := indexing.Build(t, col, kind)
	info := IndexInfo{Column: col, Kind: string(kind), Duration: time.Since(start), Err: err}
	if t != nil {
		info.Table = t.Name()
	}
	if idx != nil {
		info.Valid = idx.Valid()
	}
	e.notify(Event{Type: EventIndexBuilt, OpID: uuid.NewString(), Data: info})
	return idx, err
}

// CopyFrom replaces the content of t with src
func (e *Engine) CopyFrom(t *table.Table, src table.DataSource) error {
	if t == nil {
		return fmt.Errorf("nil table")
	}
	err := t.CopyFrom(src)
	e.notify(Event{Type: EventCopyEnd, OpID: uuid.NewString(), Data: CopyInfo{
		Table: t.Name(),
		Rows:  t.RowCount(),
		Err:   err,
	}})
	return err
}

// AddObserver registers an observer to receive lifecycle events
func (e *Engine) AddObserver(observer Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, observer)
}

// RemoveObserver unregisters an observer
func (e *Engine) RemoveObserver(observer Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, o := range e.observers {
		if o == observer {
			e.observers = append(e.observers[:i], e.observers[i+1:]...)
			return
		}
	}
}

// notify sends an event to all registered observers
func (e *Engine) notify(event Event) {
	event.Timestamp = time.Now()
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, observer := range e.observers {
		observer.OnEvent(event)
	}
}
