package engine

import (
	"time"

	"github.com/leengari/stripetable/internal/query/operations/selection"
)

// EventType represents different lifecycle phases of an engine operation
type EventType string

const (
	EventSelectStart    EventType = "select_start"
	EventSelectEnd      EventType = "select_end"
	EventMarshalStart   EventType = "marshal_start"
	EventMarshalEnd     EventType = "marshal_end"
	EventUnmarshalStart EventType = "unmarshal_start"
	EventUnmarshalEnd   EventType = "unmarshal_end"
	EventIndexBuilt     EventType = "index_built"
	EventCopyEnd        EventType = "copy_end"
)

// Event represents a lifecycle event of one operation
type Event struct {
	Type      EventType // Type of event
	OpID      string    // Operation ID, shared by the start and end events
	Timestamp time.Time // When the event occurred
	Data      any       // One of the *Info types below
}

// Observer interface for event subscribers
// Observers are called synchronously and must be safe for concurrent use
// when the engine is shared between goroutines
type Observer interface {
	OnEvent(event Event)
}

// SelectInfo accompanies select events; Stats, Duration and Err are set on end
type SelectInfo struct {
	Table    string
	Joins    int
	Stats    selection.Stats
	Duration time.Duration
	Err      error
}

// MarshalInfo accompanies marshal and unmarshal events
type MarshalInfo struct {
	Format   string
	Table    string
	Rows     int
	Duration time.Duration
	Err      error
}

// IndexInfo accompanies index_built
type IndexInfo struct {
	Table    string
	Column   int
	Kind     string
	Valid    bool
	Duration time.Duration
	Err      error
}

// CopyInfo accompanies copy_end
type CopyInfo struct {
	Table string
	Rows  int
	Err   error
}
