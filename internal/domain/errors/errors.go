package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for errors.Is matching. The typed errors below unwrap to these.
var (
	ErrOutOfRange           = errors.New("index out of range")
	ErrCellNotFound         = errors.New("cell not found")
	ErrNilArgument          = errors.New("required argument is nil")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrIndexInvalid         = errors.New("index is invalid")
	ErrColumnNotFound       = errors.New("column not found")
)

// IndexOutOfRangeError reports an access past the end of a row or column list
type IndexOutOfRangeError struct {
	Stripe string // "row", "column" or "cell"
	Index  int
	Size   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("%s index %d out of range [0,%d)", e.Stripe, e.Index, e.Size)
}

func (e *IndexOutOfRangeError) Unwrap() error { return ErrOutOfRange }

// NewIndexOutOfRange builds an IndexOutOfRangeError
func NewIndexOutOfRange(stripe string, index, size int) *IndexOutOfRangeError {
	return &IndexOutOfRangeError{Stripe: stripe, Index: index, Size: size}
}

// CheckIndex returns an IndexOutOfRangeError when index is not within [0,size)
func CheckIndex(stripe string, index, size int) error {
	if index < 0 || index >= size {
		return NewIndexOutOfRange(stripe, index, size)
	}
	return nil
}

// CellNotFoundError means a row and a column share no cell.
// In a well-formed table this never happens.
type CellNotFoundError struct {
	Row    int
	Column int
	CellID int // -1 when the lookup was positional
}

func (e *CellNotFoundError) Error() string {
	if e.CellID >= 0 {
		return fmt.Sprintf("cell %d not found", e.CellID)
	}
	return fmt.Sprintf("no shared cell at row %d, column %d", e.Row, e.Column)
}

func (e *CellNotFoundError) Unwrap() error { return ErrCellNotFound }

// ArgumentError is returned when a constructor gets an argument it cannot use
type ArgumentError struct {
	Op       string // e.g. "ColumnValueEquals"
	Argument string // e.g. "column"
	Reason   string
	Err      error
}

func (e *ArgumentError) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("%s: invalid argument %q", e.Op, e.Argument))
	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, " - ")
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// NewNilArgument reports a missing required argument
func NewNilArgument(op, argument string) *ArgumentError {
	return &ArgumentError{Op: op, Argument: argument, Reason: "must not be nil", Err: ErrNilArgument}
}

// UnsupportedOperationError is returned instead of a silently wrong result
type UnsupportedOperationError struct {
	Op     string
	Reason string
}

func (e *UnsupportedOperationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: unsupported operation", e.Op)
	}
	return fmt.Sprintf("%s: unsupported operation - %s", e.Op, e.Reason)
}

func (e *UnsupportedOperationError) Unwrap() error { return ErrUnsupportedOperation }

// ColumnNotFoundError reports a column title lookup miss
type ColumnNotFoundError struct {
	TableName  string
	ColumnName string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column '%s' not found in table '%s'", e.ColumnName, e.TableName)
}

func (e *ColumnNotFoundError) Unwrap() error { return ErrColumnNotFound }

// MarshalError wraps a failure while converting a table to or from a format
type MarshalError struct {
	Format string
	Op     string // "marshal" or "unmarshal"
	Line   int    // 1-based record number, 0 if unknown
	Err    error
}

func (e *MarshalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s %s failed at record %d: %v", e.Format, e.Op, e.Line, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Format, e.Op, e.Err)
}

func (e *MarshalError) Unwrap() error { return e.Err }
