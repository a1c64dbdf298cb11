// File: logger.go
// Title: Core Logger Implementation
// Description: Implements the Logger type: immutable With* builders, leveled
//              output through a Formatter and severity-aware logging of
//              structured errors.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2025-03-02
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging
// - 2025-03-02 v0.2.0: Session IDs, errors.As based LogError, async mode removed

package log

import (
	"io"
	"os"
	"sync"
	"time"

	mdwerror "github.com/msto63/calcscript/foundation/core/error"
)

// Logger represents a structured logger with contextual information
type Logger struct {
	level     Level
	formatter Formatter
	output    io.Writer
	name      string

	contextFields Fields
	requestID     string
	sessionID     string

	// guards writes to output, shared between clones
	writeMu *sync.Mutex
}

// Config represents logger configuration
type Config struct {
	Level  Level
	Format Format
	Output io.Writer
	Name   string
}

// New creates a new logger writing JSON to stderr at the default level
func New() *Logger {
	return NewWithConfig(Config{Level: DefaultLevel(), Format: FormatJSON})
}

// NewWithConfig creates a new logger with the specified configuration
func NewWithConfig(config Config) *Logger {
	output := config.Output
	if output == nil {
		output = os.Stderr
	}
	return &Logger{
		level:         config.Level,
		formatter:     GetFormatter(config.Format),
		output:        output,
		name:          config.Name,
		contextFields: make(Fields),
		writeMu:       &sync.Mutex{},
	}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return NewWithConfig(Config{Level: LevelFatal + 1, Output: io.Discard})
}

// WithLevel returns a copy with the given minimum level
func (l *Logger) WithLevel(level Level) *Logger {
	c := l.clone()
	c.level = level
	return c
}

// WithFormat returns a copy with the given output format
func (l *Logger) WithFormat(format Format) *Logger {
	c := l.clone()
	c.formatter = GetFormatter(format)
	return c
}

// WithOutput returns a copy writing to output
func (l *Logger) WithOutput(output io.Writer) *Logger {
	c := l.clone()
	c.output = output
	c.writeMu = &sync.Mutex{}
	return c
}

// WithName returns a copy with the given logger name
func (l *Logger) WithName(name string) *Logger {
	c := l.clone()
	c.name = name
	return c
}

// WithField returns a copy that adds key to every entry
func (l *Logger) WithField(key string, value interface{}) *Logger {
	c := l.clone()
	c.contextFields[key] = value
	return c
}

// WithFields returns a copy that adds fields to every entry
func (l *Logger) WithFields(fields Fields) *Logger {
	c := l.clone()
	for k, v := range fields {
		c.contextFields[k] = v
	}
	return c
}

// WithRequestID returns a copy tagged with a request ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	c := l.clone()
	c.requestID = requestID
	return c
}

// WithSessionID returns a copy tagged with an interpreter session ID
func (l *Logger) WithSessionID(sessionID string) *Logger {
	c := l.clone()
	c.sessionID = sessionID
	return c
}

// Trace logs a trace level message
func (l *Logger) Trace(message string, fields ...Fields) {
	l.log(LevelTrace, message, nil, 0, fields...)
}

// Debug logs a debug level message
func (l *Logger) Debug(message string, fields ...Fields) {
	l.log(LevelDebug, message, nil, 0, fields...)
}

// Info logs an info level message
func (l *Logger) Info(message string, fields ...Fields) {
	l.log(LevelInfo, message, nil, 0, fields...)
}

// Warn logs a warning level message
func (l *Logger) Warn(message string, fields ...Fields) {
	l.log(LevelWarn, message, nil, 0, fields...)
}

// Error logs an error level message
func (l *Logger) Error(message string, fields ...Fields) {
	l.log(LevelError, message, nil, 0, fields...)
}

// Fatal logs a fatal level message and exits the program
func (l *Logger) Fatal(message string, fields ...Fields) {
	l.log(LevelFatal, message, nil, 0, fields...)
	os.Exit(1)
}

// ErrorWithErr logs an error with an error object
func (l *Logger) ErrorWithErr(message string, err error, fields ...Fields) {
	l.log(LevelError, message, err, 0, fields...)
}

// WarnWithErr logs a warning with an error object
func (l *Logger) WarnWithErr(message string, err error, fields ...Fields) {
	l.log(LevelWarn, message, err, 0, fields...)
}

// LogError logs err at a level derived from its severity. Program faults
// are low severity and end up at info.
func (l *Logger) LogError(err error) {
	if err == nil {
		return
	}

	mdwErr, ok := mdwerror.As(err)
	if !ok {
		l.log(LevelError, err.Error(), err, 0)
		return
	}

	fields := Fields{
		"error_code":     mdwErr.Code(),
		"error_severity": mdwErr.Severity().String(),
	}
	if op := mdwErr.Operation(); op != "" {
		fields["error_operation"] = op
	}
	for k, v := range mdwErr.Details() {
		fields["error_"+k] = v
	}

	level := LevelError
	switch mdwErr.Severity() {
	case mdwerror.SeverityLow:
		level = LevelInfo
	case mdwerror.SeverityMedium:
		level = LevelWarn
	}
	l.log(level, mdwErr.Message(), err, 0, fields)
}

// StartTimer creates and starts a timer that logs its duration on Stop
func (l *Logger) StartTimer(operation string) *Timer {
	return NewTimer(l, operation)
}

// IsLevelEnabled returns true if the given level is enabled
func (l *Logger) IsLevelEnabled(level Level) bool {
	return level.ShouldLog(l.level)
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() Level {
	return l.level
}

func (l *Logger) log(level Level, message string, err error, d time.Duration, fields ...Fields) {
	if !level.ShouldLog(l.level) {
		return
	}

	entry := NewEntry(level, message)
	entry.Logger = l.name
	entry.RequestID = l.requestID
	entry.SessionID = l.sessionID
	entry.Error = err
	entry.Duration = d

	for k, v := range l.contextFields {
		entry.Fields[k] = v
	}
	for _, set := range fields {
		for k, v := range set {
			entry.Fields[k] = v
		}
	}

	formatted, formatErr := l.formatter.Format(entry)
	if formatErr != nil {
		return
	}
	l.writeMu.Lock()
	_, _ = l.output.Write(formatted)
	l.writeMu.Unlock()
}

func (l *Logger) clone() *Logger {
	c := *l
	c.contextFields = make(Fields, len(l.contextFields))
	for k, v := range l.contextFields {
		c.contextFields[k] = v
	}
	return &c
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = New()
)

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

// Info logs an info message using the default logger
func Info(message string, fields ...Fields) {
	GetDefault().Info(message, fields...)
}

// Error logs an error message using the default logger
func Error(message string, fields ...Fields) {
	GetDefault().Error(message, fields...)
}
