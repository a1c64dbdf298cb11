// File: codes.go
// Title: Error Code Definitions
// Description: Defines the error codes used across calcscript. Language
//              faults (syntax, name, operator, arithmetic, lexical) sit next
//              to the generic platform codes used by configuration, storage
//              and the network services.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2025-03-02
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with core error codes
// - 2025-03-02 v0.2.0: Interpreter fault codes replace TCOL codes

package error

import "net/http"

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeTimeout      Code = "TIMEOUT"

	// Storage
	CodeDatabaseError Code = "DATABASE_ERROR"

	// Service and network
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"

	// Interpreter faults
	CodeSyntax     Code = "SYNTAX"
	CodeName       Code = "NAME"
	CodeOperator   Code = "OPERATOR"
	CodeArithmetic Code = "ARITHMETIC"
	CodeLexical    Code = "LEXICAL"
	CodeTooLarge   Code = "PROGRAM_TOO_LARGE"

	// Configuration
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeInvalidConfig Code = "INVALID_CONFIG"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsValid checks if the error code is a known valid code
func (c Code) IsValid() bool {
	switch c {
	case CodeUnknown, CodeInternal, CodeNotFound, CodeInvalidInput, CodeTimeout,
		CodeDatabaseError, CodeServiceUnavailable,
		CodeSyntax, CodeName, CodeOperator, CodeArithmetic, CodeLexical, CodeTooLarge,
		CodeConfigError, CodeInvalidConfig:
		return true
	default:
		return false
	}
}

// IsFault reports whether the code classifies a fault raised by a program
// rather than by the platform running it
func (c Code) IsFault() bool {
	return c.Category() == "script"
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeSyntax, CodeName, CodeOperator, CodeArithmetic, CodeLexical, CodeTooLarge:
		return "script"
	case CodeDatabaseError:
		return "database"
	case CodeServiceUnavailable:
		return "service"
	case CodeConfigError, CodeInvalidConfig:
		return "configuration"
	default:
		return "generic"
	}
}

// HTTPStatus returns the appropriate HTTP status code for this error code
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidInput, CodeSyntax, CodeName, CodeOperator, CodeArithmetic, CodeLexical:
		return http.StatusBadRequest
	case CodeTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeTimeout:
		return http.StatusRequestTimeout
	case CodeServiceUnavailable, CodeDatabaseError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
