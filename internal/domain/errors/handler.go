package errors

import (
	"log/slog"
)

// ExceptionHandler decides what happens to a recoverable failure.
// Returning nil means "continue with the next record"; returning an error aborts
// the operation with that error.
type ExceptionHandler interface {
	Handle(op string, err error) error
}

// Rethrow aborts on the first failure
type Rethrow struct{}

func (Rethrow) Handle(_ string, err error) error { return err }

// LogAndContinue logs the failure and lets the operation go on
type LogAndContinue struct {
	Logger *slog.Logger
}

func (h LogAndContinue) Handle(op string, err error) error {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("recoverable failure, continuing",
		slog.String("op", op),
		slog.Any("error", err),
	)
	return nil
}

// HandlerFunc adapts a plain function to ExceptionHandler
type HandlerFunc func(op string, err error) error

func (f HandlerFunc) Handle(op string, err error) error { return f(op, err) }

// Collecting records every failure and continues. Useful when a caller wants a
// report after the fact.
type Collecting struct {
	Errors []error
}

func (c *Collecting) Handle(_ string, err error) error {
	c.Errors = append(c.Errors, err)
	return nil
}

// HandlerForPolicy maps a config policy name to a handler.
// Unknown names fall back to Rethrow.
func HandlerForPolicy(policy string, logger *slog.Logger) ExceptionHandler {
	switch policy {
	case "continue", "log", "log-and-continue":
		return LogAndContinue{Logger: logger}
	default:
		return Rethrow{}
	}
}
