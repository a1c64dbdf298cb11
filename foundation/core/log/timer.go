// File: timer.go
// Title: Performance Timer
// Description: Measures the duration of an operation and logs it when the
//              timer is stopped.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2025-03-02
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with performance timing
// - 2025-03-02 v0.2.0: Trimmed to start, fields and stop

package log

import "time"

// Timer measures an operation and logs its duration on Stop
type Timer struct {
	logger    *Logger
	operation string
	start     time.Time
	fields    Fields
	level     Level
	stopped   bool
}

// NewTimer creates a running timer for the given operation
func NewTimer(logger *Logger, operation string) *Timer {
	return &Timer{
		logger:    logger,
		operation: operation,
		start:     time.Now(),
		fields:    make(Fields),
		level:     LevelDebug,
	}
}

// WithLevel sets the level of the completion message
func (t *Timer) WithLevel(level Level) *Timer {
	t.level = level
	return t
}

// WithField adds a field to the completion message
func (t *Timer) WithField(key string, value interface{}) *Timer {
	t.fields[key] = value
	return t
}

// Elapsed returns the time since the timer was started
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// Stop logs the elapsed time and returns it. A second Stop returns 0.
func (t *Timer) Stop() time.Duration {
	if t.stopped {
		return 0
	}
	t.stopped = true
	elapsed := t.Elapsed()
	fields := t.fields.Merge(Fields{"operation": t.operation})
	t.logger.log(t.level, t.operation+" completed", nil, elapsed, fields)
	return elapsed
}
