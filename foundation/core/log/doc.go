// Package log provides structured logging for calcscript.
//
// Package: log
// Title: Structured Logging
// Description: Leveled, structured logging with contextual fields, session
//              and request identifiers, JSON/text/console output and
//              integration with the structured error package.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2025-03-02
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging and error integration
// - 2025-03-02 v0.2.0: Session context, synchronous writer, timer for run durations
//
// Usage:
//
//	import mdwlog "github.com/msto63/calcscript/foundation/core/log"
//
//	logger := mdwlog.New().
//		WithLevel(mdwlog.LevelDebug).
//		WithFormat(mdwlog.FormatText).
//		WithField("component", "engine")
//
//	logger.Info("session finished", mdwlog.Fields{"statements": 3})
//
//	timer := logger.StartTimer("run")
//	// ... evaluate
//	timer.Stop()
package log
