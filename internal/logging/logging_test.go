package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/stripetable/internal/config"
)

func TestSetupLogger_ConsoleOnlyRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn := setupLogger(&buf, config.LogConfig{Level: "warn"})
	defer closeFn()

	logger.Info("hidden")
	logger.Warn("shown", slog.String("table", "users"))

	out := buf.String()
	assert.Assert(t, !strings.Contains(out, "hidden"))
	assert.Assert(t, strings.Contains(out, "msg=shown"))
	assert.Assert(t, strings.Contains(out, "table=users"))
}

type recordingHandler struct {
	level   slog.Level
	records *[]string
	attrs   []slog.Attr
}

func (h recordingHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= h.level }

func (h recordingHandler) Handle(_ context.Context, r slog.Record) error {
	msg := r.Message
	for _, a := range h.attrs {
		msg += " " + a.String()
	}
	*h.records = append(*h.records, msg)
	return nil
}

func (h recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return h
}

func (h recordingHandler) WithGroup(string) slog.Handler { return h }

func TestMultiHandler_FansOut(t *testing.T) {
	var debugRecs, errorRecs []string
	multi := &multiHandler{handlers: []slog.Handler{
		recordingHandler{level: slog.LevelDebug, records: &debugRecs},
		recordingHandler{level: slog.LevelError, records: &errorRecs},
	}}
	logger := slog.New(multi).With(slog.String("op", "select"))

	logger.Debug("scan")
	logger.Error("failed")

	assert.DeepEqual(t, debugRecs, []string{"scan op=select", "failed op=select"})
	assert.DeepEqual(t, errorRecs, []string{"failed op=select"})
	assert.Assert(t, !multi.Enabled(context.Background(), slog.LevelDebug-4))
}
