// Package logger provides logging for update runs.
//
// A Logger tags every entry with a session id and component name and fans it
// out to one or more sinks (console, plain-text file, line-delimited JSON
// file). Sinks are best-effort: a sink that fails to write reports false and
// the run continues. All implementations are safe for concurrent use.
package logger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Log level constants for filtering
const (
	levelDebug int = 0
	levelInfo  int = 1
	levelWarn  int = 2
	levelError int = 3
)

// Entry is a single log record. Entries are immutable once created and are
// passed by value to every sink.
type Entry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Component string         `json:"component"`
	SessionID string         `json:"sessionId"`
	Data      map[string]any `json:"data,omitempty"`
}

// Sink receives log entries. Write returns false when the entry could not be
// delivered; callers never receive an error from logging.
type Sink interface {
	Write(e Entry) bool
	Close() error
}

// Logger filters entries by level and dispatches them to its sinks.
// The zero value is unusable; construct with New.
type Logger struct {
	sessionID string
	level     string
	sinks     []Sink
}

// New creates a Logger with a fresh session id writing to the given sinks.
// logLevel is one of debug, info, warn, error (case-insensitive); empty or
// invalid values default to "info". Success entries are filtered at the info
// threshold.
func New(logLevel string, sinks ...Sink) *Logger {
	return &Logger{
		sessionID: uuid.New().String(),
		level:     normalizeLogLevel(logLevel),
		sinks:     sinks,
	}
}

// SessionID returns the session identifier stamped on every entry.
func (l *Logger) SessionID() string {
	return l.sessionID
}

// Debug logs a debug-level message.
func (l *Logger) Debug(component, format string, args ...any) {
	l.log("DEBUG", component, nil, format, args...)
}

// Info logs an info-level message.
func (l *Logger) Info(component, format string, args ...any) {
	l.log("INFO", component, nil, format, args...)
}

// Warn logs a warning-level message.
func (l *Logger) Warn(component, format string, args ...any) {
	l.log("WARNING", component, nil, format, args...)
}

// Error logs an error-level message.
func (l *Logger) Error(component, format string, args ...any) {
	l.log("ERROR", component, nil, format, args...)
}

// Success logs a success event. Success is filtered like info but carries its
// own level tag so sinks can render it distinctly.
func (l *Logger) Success(component, format string, args ...any) {
	l.log("SUCCESS", component, nil, format, args...)
}

// LogData logs a message with structured data attached.
// level is one of Debug, Info, Warning, Error, Success (case-insensitive).
func (l *Logger) LogData(level, component, message string, data map[string]any) {
	l.log(strings.ToUpper(level), component, data, "%s", message)
}

// StartTimer begins timing a named operation. Stop on the returned Timer logs
// the elapsed duration at info level.
func (l *Logger) StartTimer(component, operation string) *Timer {
	l.Debug(component, "%s started", operation)
	return &Timer{
		logger:    l,
		component: component,
		operation: operation,
		started:   time.Now(),
	}
}

// Close closes all sinks. Sink close errors are ignored: logging is
// best-effort through to shutdown.
func (l *Logger) Close() {
	for _, s := range l.sinks {
		_ = s.Close()
	}
}

// log builds an Entry and writes it to every sink if the level passes the
// configured threshold.
func (l *Logger) log(level, component string, data map[string]any, format string, args ...any) {
	if !l.shouldLog(level) {
		return
	}

	e := Entry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   fmt.Sprintf(format, args...),
		Component: component,
		SessionID: l.sessionID,
		Data:      data,
	}

	for _, s := range l.sinks {
		s.Write(e)
	}
}

// shouldLog checks if a message at the given level should be logged.
// Returns true if messageLevel >= configured logLevel.
func (l *Logger) shouldLog(level string) bool {
	return logLevelToInt(strings.ToLower(level)) >= logLevelToInt(l.level)
}

// Timer measures the duration of one operation.
type Timer struct {
	logger    *Logger
	component string
	operation string
	started   time.Time
}

// Stop logs the elapsed time at info level and returns the duration.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.started)
	t.logger.Info(t.component, "%s completed in %.1fs", t.operation, elapsed.Seconds())
	return elapsed
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// "warning" (the CLI and entry spelling) maps to "warn". Returns "info" as
// default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if normalized == "warning" {
		normalized = "warn"
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if validLevels[normalized] {
		return normalized
	}

	return "info" // Default level
}

// logLevelToInt converts a log level string to its numeric value.
// Warning and success map to their filtering weights.
func logLevelToInt(level string) int {
	switch level {
	case "debug":
		return levelDebug
	case "info", "success":
		return levelInfo
	case "warn", "warning":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo // Default to info if unknown
	}
}
