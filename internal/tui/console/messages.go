// ============================================================================
// calcscript - Arithmetic Scripting Playground
// ============================================================================
//
// Package:     console
// Description: Transcript entries and message types for async runs
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package console

import (
	"time"
)

// EntryKind classifies a transcript entry
type EntryKind int

const (
	EntryProgram EntryKind = iota
	EntryOutput
	EntryFault
	EntryTree
	EntryNotice
)

// Entry is one block of the transcript
type Entry struct {
	Kind      EntryKind
	Content   string
	Timestamp time.Time
	Duration  time.Duration
}

// runResultMsg is sent when a run finishes
type runResultMsg struct {
	output     string
	statements int
	duration   time.Duration
	err        error
}

// parseResultMsg is sent when a parse finishes
type parseResultMsg struct {
	tree string
	err  error
}
