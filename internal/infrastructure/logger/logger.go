package logger

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger defines the logging interface
type Logger interface {
	LogInfo(ctx context.Context, msg string, attrs ...any)
	LogError(ctx context.Context, msg string, err error, attrs ...any)
	LogWarning(ctx context.Context, msg string, attrs ...any)
	WithRequestID(requestID string) Logger
	WithComponent(component string) Logger
}

// StructuredLogger implements the Logger interface on top of zerolog
type StructuredLogger struct {
	zl zerolog.Logger
}

func init() { //nolint:gochecknoinits
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// NewLoggerWithLevel creates a JSON logger writing to w. Unknown levels fall back to info.
func NewLoggerWithLevel(w io.Writer, level string) Logger {
	return &StructuredLogger{
		zl: zerolog.New(w).
			Level(ParseLevel(level)).
			With().
			Timestamp().
			Str("service", "balanced").
			Logger(),
	}
}

// NewNopLogger discards everything.
func NewNopLogger() Logger {
	return &StructuredLogger{zl: zerolog.Nop()}
}

// ParseLevel maps a config string to a zerolog level.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithRequestID adds a request ID to the logger context
func (l *StructuredLogger) WithRequestID(requestID string) Logger {
	return &StructuredLogger{
		zl: l.zl.With().Str("request_id", requestID).Logger(),
	}
}

// WithComponent tags every entry with the emitting subsystem
func (l *StructuredLogger) WithComponent(component string) Logger {
	return &StructuredLogger{
		zl: l.zl.With().Str("component", component).Logger(),
	}
}

// LogError logs an error with context
func (l *StructuredLogger) LogError(ctx context.Context, msg string, err error, attrs ...any) {
	l.zl.Error().Ctx(ctx).Err(err).Fields(attrs).Msg(msg)
}

// LogInfo logs an info message with context
func (l *StructuredLogger) LogInfo(ctx context.Context, msg string, attrs ...any) {
	l.zl.Info().Ctx(ctx).Fields(attrs).Msg(msg)
}

// LogWarning logs a warning message with context
func (l *StructuredLogger) LogWarning(ctx context.Context, msg string, attrs ...any) {
	l.zl.Warn().Ctx(ctx).Fields(attrs).Msg(msg)
}
