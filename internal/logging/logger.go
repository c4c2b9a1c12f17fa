// Package logging provides the logging interface used throughout ledgerlog.
//
// Design: a small four-level interface (Error, Warn, Info, Debug), so callers
// can wrap their own structured logger (slog, zap, ...) without pulling a
// logging framework into this module's dependency graph.
//
// Log format: YYYY/MM/DD HH:MM:SS LEVEL message
//
// The engine itself logs only corruption found while replaying a log in
// Open, at Warn level, with messages prefixed "ledgerlog:".
package logging

import (
	"io"
	"log"
	"os"
)

// Level represents the logging level.
type Level int

const (
	// LevelError logs only errors.
	LevelError Level = iota
	// LevelWarn logs warnings and errors.
	LevelWarn
	// LevelInfo logs info, warnings, and errors.
	LevelInfo
	// LevelDebug logs everything including debug messages.
	LevelDebug
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// Logger is the logging interface used by the engine.
//
// Implementations must be safe for concurrent use, since the facade does not
// serialize logging calls with respect to each other.
type Logger interface {
	Errorf(format string, args ...any)
	Warnf(format string, args ...any)
	Infof(format string, args ...any)
	Debugf(format string, args ...any)
}

// DefaultLogger writes formatted, leveled messages to an io.Writer.
// It is stateless beyond the embedded *log.Logger, which is already
// safe for concurrent use.
type DefaultLogger struct {
	logger *log.Logger
	level  Level
}

// NewDefaultLogger creates a logger that writes to stderr at the given level.
func NewDefaultLogger(level Level) *DefaultLogger {
	return NewLogger(os.Stderr, level)
}

// NewLogger creates a logger that writes to w at the given level.
func NewLogger(w io.Writer, level Level) *DefaultLogger {
	return &DefaultLogger{
		logger: log.New(w, "", log.LstdFlags),
		level:  level,
	}
}

// Level returns the logger's configured level.
func (l *DefaultLogger) Level() Level {
	return l.level
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	if l.level >= LevelError {
		l.logger.Printf("ERROR "+format, args...)
	}
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	if l.level >= LevelWarn {
		l.logger.Printf("WARN "+format, args...)
	}
}

func (l *DefaultLogger) Infof(format string, args ...any) {
	if l.level >= LevelInfo {
		l.logger.Printf("INFO "+format, args...)
	}
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	if l.level >= LevelDebug {
		l.logger.Printf("DEBUG "+format, args...)
	}
}
