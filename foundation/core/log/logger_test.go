// File: logger_test.go
// Title: Logger Tests
// Description: Tests for logger configuration, context fields, level
//              filtering, formatters and structured error logging.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2025-03-02
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with comprehensive logger tests
// - 2025-03-02 v0.2.0: Session IDs and fault severities

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	mdwerror "github.com/msto63/calcscript/foundation/core/error"
)

func newBufferLogger(level Level, format Format) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewWithConfig(Config{Level: level, Format: format, Output: &buf, Name: "test"}), &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var data map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &data); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	return data
}

func TestNew(t *testing.T) {
	logger := New()
	if logger == nil {
		t.Fatal("New() should not return nil")
	}
	if logger.GetLevel() != DefaultLevel() {
		t.Errorf("New() level = %v, want %v", logger.GetLevel(), DefaultLevel())
	}
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(LevelWarn, FormatText)

	logger.Debug("hidden")
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("messages below warn were written: %q", buf.String())
	}

	logger.Warn("shown")
	if !strings.Contains(buf.String(), "[WRN]") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn message missing: %q", buf.String())
	}
}

func TestWithField_IsImmutable(t *testing.T) {
	base, buf := newBufferLogger(LevelInfo, FormatJSON)
	child := base.WithField("component", "parser").WithSessionID("s-1")

	base.Info("from base")
	data := decodeLine(t, buf)
	if _, ok := data["component"]; ok {
		t.Error("WithField() modified the parent logger")
	}
	buf.Reset()

	child.Info("from child", Fields{"statements": 2})
	data = decodeLine(t, buf)
	if data["component"] != "parser" {
		t.Errorf("component = %v, want parser", data["component"])
	}
	if data["session_id"] != "s-1" {
		t.Errorf("session_id = %v, want s-1", data["session_id"])
	}
	if data["statements"] != float64(2) {
		t.Errorf("statements = %v, want 2", data["statements"])
	}
	if data["logger"] != "test" {
		t.Errorf("logger = %v, want test", data["logger"])
	}
}

func TestLogError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantLevel string
		wantCode  interface{}
	}{
		{
			name:      "program fault logs at info",
			err:       mdwerror.New("variable 'y' is not defined").WithCode(mdwerror.CodeName).WithDetail("line", 2),
			wantLevel: "info",
			wantCode:  "NAME",
		},
		{
			name:      "database error logs at error",
			err:       mdwerror.New("disk I/O").WithCode(mdwerror.CodeDatabaseError),
			wantLevel: "error",
			wantCode:  "DATABASE_ERROR",
		},
		{
			name:      "plain error logs at error",
			err:       errors.New("boom"),
			wantLevel: "error",
			wantCode:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferLogger(LevelTrace, FormatJSON)
			logger.LogError(tt.err)

			data := decodeLine(t, buf)
			if data["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %v", data["level"], tt.wantLevel)
			}
			if data["error_code"] != tt.wantCode {
				t.Errorf("error_code = %v, want %v", data["error_code"], tt.wantCode)
			}
		})
	}

	logger, buf := newBufferLogger(LevelTrace, FormatJSON)
	logger.LogError(nil)
	if buf.Len() != 0 {
		t.Error("LogError(nil) should not write")
	}
}

func TestTimer(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug, FormatJSON)

	timer := logger.StartTimer("run").WithField("statements", 1)
	if d := timer.Stop(); d <= 0 {
		t.Errorf("Stop() = %v, want > 0", d)
	}
	data := decodeLine(t, buf)
	if data["operation"] != "run" || data["message"] != "run completed" {
		t.Errorf("unexpected timer entry: %v", data)
	}
	if _, ok := data["duration_ms"]; !ok {
		t.Error("duration_ms missing")
	}

	if d := timer.Stop(); d != 0 {
		t.Errorf("second Stop() = %v, want 0", d)
	}
}

func TestTextFormatter_SortedFields(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatText)
	logger.Info("done", Fields{"b": 2, "a": 1, "c": 3})

	if !strings.Contains(buf.String(), "[a=1 b=2 c=3]") {
		t.Errorf("fields not sorted: %q", buf.String())
	}
}

func TestConsoleFormatter(t *testing.T) {
	f := NewConsoleFormatter()
	out, err := f.Format(NewEntry(LevelError, "red"))
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.HasPrefix(string(out), LevelError.Color()) || !strings.HasSuffix(string(out), "\033[0m\n") {
		t.Errorf("output not colorized: %q", out)
	}

	f.DisableColors = true
	out, _ = f.Format(NewEntry(LevelError, "plain"))
	if strings.Contains(string(out), "\033[") {
		t.Errorf("colors not disabled: %q", out)
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	levels := map[string]Level{"debug": LevelDebug, "WARNING": LevelWarn, " error ": LevelError, "": LevelInfo}
	for in, want := range levels {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel(loud) should fail")
	}

	formats := map[string]Format{"json": FormatJSON, "Text": FormatText, "console": FormatConsole}
	for in, want := range formats {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}
