// Package logging provides a tiny abstraction over slog so downstream code can
// depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a MemoryLogger carrying component and
// session attributes, and a helper for reporting store calls.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// LogLevel is a thin enum for user friendly level configuration decoupled from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a case-insensitive level name to a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug, nil
	case "", "info":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	default:
		return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func (l LogLevel) slog() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger defines the minimal logging interface for chatmemory. Args are
// slog-style alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// MemoryLogger writes through a slog handler and stamps every record with
// its component and session. With* methods return copies.
type MemoryLogger struct {
	logger    *slog.Logger
	level     LogLevel
	component string
	sessionID string
}

// LoggerConfig configures construction of a MemoryLogger.
type LoggerConfig struct {
	Level     LogLevel
	Format    string // json or text
	Output    io.Writer
	AddSource bool
	Component string
}

// NewLogger builds a MemoryLogger from a config. A nil config selects JSON at
// info level on stderr.
func NewLogger(cfg *LoggerConfig) *MemoryLogger {
	if cfg == nil {
		cfg = &LoggerConfig{Level: LogLevelInfo, Format: "json"}
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level.slog(), AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	return &MemoryLogger{logger: slog.New(handler), level: cfg.Level, component: cfg.Component}
}

// WithComponent sets the logical component (store, buffer, cli).
func (l *MemoryLogger) WithComponent(c string) *MemoryLogger {
	nl := *l
	nl.component = c
	return &nl
}

// WithSession attaches a session identifier.
func (l *MemoryLogger) WithSession(sid string) *MemoryLogger {
	nl := *l
	nl.sessionID = sid
	return &nl
}

func (l *MemoryLogger) log(level LogLevel, msg string, args ...any) {
	if level < l.level {
		return
	}
	r := slog.NewRecord(time.Now(), level.slog(), msg, 0)
	if l.component != "" {
		r.AddAttrs(slog.String("component", l.component))
	}
	if l.sessionID != "" {
		r.AddAttrs(slog.String("session_id", l.sessionID))
	}
	r.Add(args...)
	_ = l.logger.Handler().Handle(context.Background(), r)
}

// Debug logs at debug level.
func (l *MemoryLogger) Debug(msg string, args ...any) { l.log(LogLevelDebug, msg, args...) }

// Info logs at info level.
func (l *MemoryLogger) Info(msg string, args ...any) { l.log(LogLevelInfo, msg, args...) }

// Warn logs at warn level.
func (l *MemoryLogger) Warn(msg string, args ...any) { l.log(LogLevelWarn, msg, args...) }

// Error logs at error level.
func (l *MemoryLogger) Error(msg string, args ...any) { l.log(LogLevelError, msg, args...) }

// Scoped returns l tagged with component and sessionID; empty values are left
// unset. MemoryLogger and SlogAdapter are supported, other loggers are
// returned unchanged.
func Scoped(l Logger, component, sessionID string) Logger {
	switch v := l.(type) {
	case *MemoryLogger:
		nl := v
		if component != "" {
			nl = nl.WithComponent(component)
		}
		if sessionID != "" {
			nl = nl.WithSession(sessionID)
		}
		return nl
	case *SlogAdapter:
		var args []any
		if component != "" {
			args = append(args, "component", component)
		}
		if sessionID != "" {
			args = append(args, "session_id", sessionID)
		}
		if len(args) == 0 {
			return v
		}
		return &SlogAdapter{Logger: v.Logger.With(args...)}
	default:
		return l
	}
}

// LogStoreCall reports the outcome of a single store operation: errors at
// error level, successes at debug level.
func LogStoreCall(l Logger, op string, dur time.Duration, err error) {
	if err != nil {
		l.Error("Store operation failed", "operation", op, "duration", dur, "error", err.Error())
		return
	}
	l.Debug("Store operation completed", "operation", op, "duration", dur)
}

// NoOpLogger discards all log messages. Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}
