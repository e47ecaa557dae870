package engine

import (
	"context"
	"log/slog"
)

// LoggingObserver is a simple observer that logs all events using structured logging
type LoggingObserver struct {
	logger *slog.Logger
}

// NewLoggingObserver creates a new logging observer; nil uses slog.Default()
func NewLoggingObserver(logger *slog.Logger) *LoggingObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{logger: logger}
}

// OnEvent implements the Observer interface
// Start events log at debug level, end events at info, failures at warn
func (lo *LoggingObserver) OnEvent(event Event) {
	attrs := []any{
		slog.String("event", string(event.Type)),
		slog.String("op_id", event.OpID),
	}
	level := slog.LevelDebug
	var err error

	switch d := event.Data.(type) {
	case SelectInfo:
		attrs = append(attrs, slog.String("table", d.Table), slog.Int("joins", d.Joins))
		if event.Type == EventSelectEnd {
			level = slog.LevelInfo
			attrs = append(attrs,
				slog.Int("rows_scanned", d.Stats.RowsScanned),
				slog.Int("rows_matched", d.Stats.RowsMatched),
				slog.Bool("index_used", d.Stats.IndexUsed),
				slog.Duration("duration", d.Duration),
			)
		}
		err = d.Err
	case MarshalInfo:
		attrs = append(attrs, slog.String("format", d.Format), slog.String("table", d.Table))
		if event.Type == EventMarshalEnd || event.Type == EventUnmarshalEnd {
			level = slog.LevelInfo
			attrs = append(attrs, slog.Int("rows", d.Rows), slog.Duration("duration", d.Duration))
		}
		err = d.Err
	case IndexInfo:
		level = slog.LevelInfo
		attrs = append(attrs,
			slog.String("table", d.Table),
			slog.Int("column", d.Column),
			slog.String("kind", d.Kind),
			slog.Bool("valid", d.Valid),
			slog.Duration("duration", d.Duration),
		)
		err = d.Err
	case CopyInfo:
		level = slog.LevelInfo
		attrs = append(attrs, slog.String("table", d.Table), slog.Int("rows", d.Rows))
		err = d.Err
	}

	if err != nil {
		level = slog.LevelWarn
		attrs = append(attrs, slog.Any("error", err))
	}
	lo.logger.Log(context.Background(), level, "operation_lifecycle", attrs...)
}
