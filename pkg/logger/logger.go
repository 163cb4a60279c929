package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is a leveled key/value logger shared by every component.
type Logger struct {
	*slog.Logger
}

// NewLogger builds a JSON logger writing to stderr at the given level
// ("debug", "info", "warn", "error"). Unknown levels fall back to info.
func NewLogger(level string) *Logger {
	return newLogger(os.Stderr, level)
}

// NewNopLogger discards everything. Used by tests.
func NewNopLogger() *Logger {
	return newLogger(io.Discard, "error")
}

func newLogger(w io.Writer, level string) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return &Logger{Logger: slog.New(handler)}
}

// With returns a child logger that always includes the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
