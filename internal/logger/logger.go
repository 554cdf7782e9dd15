package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// Init installs the process-wide slog logger writing to stdout.
func Init(level, format string) *slog.Logger {
	defaultLogger = slog.New(NewHandler(os.Stdout, level, format))
	slog.SetDefault(defaultLogger)
	return defaultLogger
}

// NewHandler builds a text or JSON handler for w at the named level.
func NewHandler(w io.Writer, level, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Get() *slog.Logger {
	if defaultLogger == nil {
		Init("INFO", "json")
	}
	return defaultLogger
}

// WithFields returns the default logger with the given key/value pairs attached.
func WithFields(args ...any) *slog.Logger {
	return Get().With(args...)
}
