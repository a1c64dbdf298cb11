// ============================================================================
// calcscript - Arithmetic Scripting Playground
// ============================================================================
//
// Package:     logging
// Description: Factory functions for creating service loggers from config
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	mdwlog "github.com/msto63/calcscript/foundation/core/log"
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Service name
	ServiceName string

	// Log level (trace, debug, info, warn, error)
	Level string

	// Output format: "json", "text" or "console" (default: json)
	Format string

	// Output defaults to stderr so program output on stdout stays clean
	Output io.Writer

	// Additional outputs (besides Output)
	AdditionalOutputs []io.Writer
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(serviceName string) LoggerConfig {
	return LoggerConfig{
		ServiceName: serviceName,
		Level:       "info",
		Format:      "json",
	}
}

// NewLogger creates a new Foundation logger
func NewLogger(cfg LoggerConfig) *mdwlog.Logger {
	level, err := mdwlog.ParseLevel(cfg.Level)
	if err != nil {
		level = mdwlog.LevelInfo
	}
	format, err := mdwlog.ParseFormat(cfg.Format)
	if err != nil {
		format = mdwlog.FormatJSON
	}

	var output io.Writer = os.Stderr
	if cfg.Output != nil {
		output = cfg.Output
	}
	if len(cfg.AdditionalOutputs) > 0 {
		writers := append([]io.Writer{output}, cfg.AdditionalOutputs...)
		output = io.MultiWriter(writers...)
	}

	return mdwlog.NewWithConfig(mdwlog.Config{
		Level:  level,
		Format: format,
		Output: output,
		Name:   cfg.ServiceName,
	})
}

// OpenLogFile opens path for appending, creating parent directories
func OpenLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// NewSimpleLogger creates a logger with the default configuration
func NewSimpleLogger(serviceName string) *mdwlog.Logger {
	return NewLogger(DefaultLoggerConfig(serviceName))
}

// Compatibility layer for code using key-value pairs

// Logger wraps the Foundation logger and accepts key-value pairs
type Logger struct {
	*mdwlog.Logger
	name string
}

// New creates a new simple logger
func New(name string) *Logger {
	return &Logger{
		Logger: NewSimpleLogger(name),
		name:   name,
	}
}

// Wrap adapts an existing Foundation logger
func Wrap(logger *mdwlog.Logger, name string) *Logger {
	return &Logger{
		Logger: logger.WithName(name),
		name:   name,
	}
}

// Name returns the logger name
func (l *Logger) Name() string {
	return l.name
}

// WithLevel returns a new logger with the specified level
func (l *Logger) WithLevel(level Level) *Logger {
	mdwLevel := mdwlog.LevelInfo
	switch level {
	case LevelDebug:
		mdwLevel = mdwlog.LevelDebug
	case LevelWarn:
		mdwLevel = mdwlog.LevelWarn
	case LevelError:
		mdwLevel = mdwlog.LevelError
	}

	return &Logger{
		Logger: l.Logger.WithLevel(mdwLevel),
		name:   l.name,
	}
}

// With returns a logger that adds the key-value pairs to every entry
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{
		Logger: l.Logger.WithFields(toFields(keysAndValues...)),
		name:   l.name,
	}
}

// Debug logs a debug message with key-value pairs
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.Logger.Debug(msg, toFields(keysAndValues...))
}

// Info logs an info message with key-value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.Logger.Info(msg, toFields(keysAndValues...))
}

// Warn logs a warning message with key-value pairs
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.Logger.Warn(msg, toFields(keysAndValues...))
}

// Error logs an error message with key-value pairs
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.Logger.Error(msg, toFields(keysAndValues...))
}

// toFields converts key-value pairs to mdwlog.Fields
func toFields(keysAndValues ...interface{}) mdwlog.Fields {
	if len(keysAndValues) == 0 {
		return nil
	}

	fields := make(mdwlog.Fields)
	for i := 0; i < len(keysAndValues)-1; i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
