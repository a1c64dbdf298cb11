// File: error_test.go
// Title: Error Module Tests
// Description: Tests for error creation, wrapping, codes, severity and
//              details, including lookups through fmt.Errorf wrapping.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2025-03-02
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with comprehensive test coverage
// - 2025-03-02 v0.2.0: Fault code coverage

package error

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	msg := "test error message"
	err := New(msg)

	if err == nil {
		t.Fatal("New() returned nil")
	}
	if err.Error() != msg {
		t.Errorf("Error() = %q, want %q", err.Error(), msg)
	}
	if err.Code() != CodeUnknown {
		t.Errorf("Code() = %v, want %v", err.Code(), CodeUnknown)
	}
	if err.Severity() != SeverityMedium {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityMedium)
	}
	if err.Timestamp().IsZero() {
		t.Error("Timestamp() should not be zero")
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		message  string
		wantNil  bool
		wantMsg  string
		wantCode Code
	}{
		{
			name:    "wrap nil error",
			err:     nil,
			message: "wrapper message",
			wantNil: true,
		},
		{
			name:     "wrap standard error",
			err:      errors.New("original error"),
			message:  "wrapper message",
			wantMsg:  "wrapper message: original error",
			wantCode: CodeUnknown,
		},
		{
			name:     "wrap structured error keeps code",
			err:      New("variable 'y' is not defined").WithCode(CodeName),
			message:  "line 3",
			wantMsg:  "line 3: variable 'y' is not defined",
			wantCode: CodeName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.err, tt.message)
			if tt.wantNil {
				if got != nil {
					t.Errorf("Wrap() = %v, want nil", got)
				}
				return
			}
			if got.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got.Error(), tt.wantMsg)
			}
			if got.Code() != tt.wantCode {
				t.Errorf("Code() = %v, want %v", got.Code(), tt.wantCode)
			}
			if !errors.Is(got, tt.err) {
				t.Error("wrapped error should match its cause with errors.Is")
			}
		})
	}
}

func TestWithCode_SetsSeverity(t *testing.T) {
	tests := []struct {
		code Code
		want Severity
	}{
		{CodeSyntax, SeverityLow},
		{CodeName, SeverityLow},
		{CodeOperator, SeverityLow},
		{CodeArithmetic, SeverityLow},
		{CodeDatabaseError, SeverityHigh},
		{CodeServiceUnavailable, SeverityCritical},
		{CodeInternal, SeverityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			err := New("x").WithCode(tt.code)
			if err.Severity() != tt.want {
				t.Errorf("Severity() = %v, want %v", err.Severity(), tt.want)
			}
		})
	}

	explicit := New("x").WithSeverity(SeverityCritical).WithCode(CodeSyntax)
	if explicit.Severity() != SeverityCritical {
		t.Errorf("explicit severity overwritten: got %v", explicit.Severity())
	}
}

func TestHasCode_ThroughFmtWrapping(t *testing.T) {
	fault := New("unsupported operator: ==").WithCode(CodeOperator)
	wrapped := fmt.Errorf("session failed: %w", fault)

	if !HasCode(wrapped, CodeOperator) {
		t.Error("HasCode() should find code through fmt.Errorf wrapping")
	}
	if HasCode(wrapped, CodeSyntax) {
		t.Error("HasCode() matched the wrong code")
	}
	if GetCode(errors.New("plain")) != CodeUnknown {
		t.Error("GetCode() of a plain error should be CodeUnknown")
	}
	if GetSeverity(wrapped) != SeverityLow {
		t.Errorf("GetSeverity() = %v, want low", GetSeverity(wrapped))
	}

	got, ok := As(wrapped)
	if !ok || got != fault {
		t.Error("As() should return the original fault")
	}
}

func TestDetails(t *testing.T) {
	err := New("boom").
		WithDetail("line", 3).
		WithDetails(map[string]interface{}{"column": 7, "token": ")"}).
		WithOperation("parser.parseFactor").
		WithContext("session")

	details := err.Details()
	if details["line"] != 3 || details["column"] != 7 || details["token"] != ")" {
		t.Errorf("Details() = %v", details)
	}

	details["line"] = 99
	if v, _ := err.Detail("line"); v != 3 {
		t.Error("Details() must return a copy")
	}
	if _, ok := err.Detail("missing"); ok {
		t.Error("Detail() reported a missing key as present")
	}

	s := err.String()
	for _, want := range []string{"Error: boom", "Operation: parser.parseFactor", "Context: session", "column=7, line=3"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %q in %q", want, s)
		}
	}
}

func TestMarshalJSON(t *testing.T) {
	err := New("bad token").WithCode(CodeSyntax).WithDetail("line", 1)

	data, jerr := json.Marshal(err)
	if jerr != nil {
		t.Fatalf("json.Marshal() error = %v", jerr)
	}

	var decoded map[string]interface{}
	if jerr := json.Unmarshal(data, &decoded); jerr != nil {
		t.Fatalf("json.Unmarshal() error = %v", jerr)
	}
	if decoded["code"] != "SYNTAX" {
		t.Errorf("code = %v, want SYNTAX", decoded["code"])
	}
	if decoded["severity"] != "low" {
		t.Errorf("severity = %v, want low", decoded["severity"])
	}
}

func TestCode_Classification(t *testing.T) {
	tests := []struct {
		code     Code
		fault    bool
		status   int
		category string
	}{
		{CodeSyntax, true, http.StatusBadRequest, "script"},
		{CodeName, true, http.StatusBadRequest, "script"},
		{CodeOperator, true, http.StatusBadRequest, "script"},
		{CodeLexical, true, http.StatusBadRequest, "script"},
		{CodeTooLarge, true, http.StatusRequestEntityTooLarge, "script"},
		{CodeDatabaseError, false, http.StatusServiceUnavailable, "database"},
		{CodeNotFound, false, http.StatusNotFound, "generic"},
		{CodeInternal, false, http.StatusInternalServerError, "generic"},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			if !tt.code.IsValid() {
				t.Error("IsValid() = false")
			}
			if tt.code.IsFault() != tt.fault {
				t.Errorf("IsFault() = %v, want %v", tt.code.IsFault(), tt.fault)
			}
			if tt.code.HTTPStatus() != tt.status {
				t.Errorf("HTTPStatus() = %d, want %d", tt.code.HTTPStatus(), tt.status)
			}
			if tt.code.Category() != tt.category {
				t.Errorf("Category() = %q, want %q", tt.code.Category(), tt.category)
			}
		})
	}

	if Code("NOPE").IsValid() {
		t.Error("unknown code reported as valid")
	}
}
