// File: severity.go
// Title: Error Severity Levels
// Description: Defines severity levels for errors so loggers and services
//              can decide how loudly to report them.
// Author: msto63
// Version: v0.1.0
// Created: 2025-01-24
// Modified: 2025-03-02
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with severity levels

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow indicates bad input, including every program fault
	SeverityLow Severity = iota

	// SeverityMedium indicates an error that affects functionality but has workarounds
	SeverityMedium

	// SeverityHigh indicates a serious error such as a failing database
	SeverityHigh

	// SeverityCritical indicates the service cannot continue
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ShouldAlert returns true if this severity level should trigger alerts
func (s Severity) ShouldAlert() bool {
	return s >= SeverityHigh
}

// GetSeverityFromCode determines appropriate severity level based on error code
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeServiceUnavailable:
		return SeverityCritical

	case CodeDatabaseError, CodeConfigError, CodeInvalidConfig:
		return SeverityHigh

	case CodeInvalidInput, CodeNotFound,
		CodeSyntax, CodeName, CodeOperator, CodeArithmetic, CodeLexical, CodeTooLarge:
		return SeverityLow

	default:
		return SeverityMedium
	}
}
