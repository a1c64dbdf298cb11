package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	mdwlog "github.com/msto63/calcscript/foundation/core/log"
	"github.com/msto63/calcscript/foundation/script"
	"github.com/msto63/calcscript/internal/history/store"
	"github.com/msto63/calcscript/internal/runner/service"
	"github.com/msto63/calcscript/pkg/core/health"
	"github.com/msto63/calcscript/pkg/core/logging"
)

func newTestHandler(t *testing.T, withHistory bool, engine script.Options) *Handler {
	t.Helper()
	logger := logging.Wrap(mdwlog.Discard(), "playground-test")

	var hist store.Store
	if withHistory {
		s, err := store.NewSQLiteStore(store.Config{Path: filepath.Join(t.TempDir(), "history.db")})
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { s.Close() })
		hist = s
	}

	svcCfg := service.DefaultConfig()
	svcCfg.Logger = logger
	svcCfg.Engine = engine
	runner := service.NewService(svcCfg, hist)

	registry := health.NewRegistry("playground", "1.0.0")
	registry.Register(health.ProbeCheck("engine", runner.Probe, service.ProbeOutput))

	return NewHandler(Config{Version: "1.0.0", MaxRequestSize: 256, Logger: logger}, runner, registry)
}

func postForm(h http.Handler, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/run_code", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func postJSON(h http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_RunCode(t *testing.T) {
	h := newTestHandler(t, false, script.Options{})

	tests := []struct {
		name string
		code string
		want RunCodeResponse
	}{
		{
			name: "output",
			code: "x = 5\ny = x * (2 + 3)\nprint(y)",
			want: RunCodeResponse{Success: true, Message: MessageSuccess, Output: "25\n"},
		},
		{
			name: "no output",
			code: "x = 5",
			want: RunCodeResponse{Success: true, Message: MessageNoOutput, Output: ""},
		},
		{
			name: "empty program",
			code: "",
			want: RunCodeResponse{Success: true, Message: MessageNoOutput, Output: ""},
		},
		{
			name: "name fault",
			code: "print(1)\nprint(y)",
			want: RunCodeResponse{Message: "Error: line 2: variable 'y' is not defined"},
		},
		{
			name: "assignment fault",
			code: "x 5",
			want: RunCodeResponse{Message: "Error: line 1: invalid assignment: expected '=' after 'x'"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postForm(h, url.Values{"code": {tt.code}})
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}

			var got RunCodeResponse
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != tt.want {
				t.Errorf("response = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHandler_RunCode_BadRequests(t *testing.T) {
	h := newTestHandler(t, false, script.Options{})

	rec := postForm(h, url.Values{"program": {"print(1)"}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing field status = %d, want 400", rec.Code)
	}

	rec = postForm(h, url.Values{"code": {strings.Repeat("x = 1\n", 100)}})
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized body status = %d, want 413", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/run_code", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want 405", rec.Code)
	}
}

func TestHandler_Run(t *testing.T) {
	h := newTestHandler(t, false, script.Options{MaxProgramSize: 64})

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantOutput string
		wantCode   string
		wantLine   int
	}{
		{"success", `{"code":"print(2 + 3 * 4)"}`, http.StatusOK, "14\n", "", 0},
		{"floor division", `{"code":"x = 7 / -2; print(x);"}`, http.StatusOK, "-4\n", "", 0},
		{"operator fault", `{"code":"x = 1\nprint(1 == 1)"}`, http.StatusBadRequest, "", "OPERATOR", 2},
		{"arithmetic fault", `{"code":"print(1 / 0)"}`, http.StatusBadRequest, "", "ARITHMETIC", 1},
		{"too large", `{"code":"` + strings.Repeat("x = 1;", 20) + `"}`, http.StatusRequestEntityTooLarge, "", "PROGRAM_TOO_LARGE", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(h, "/api/v1/run", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}

			var got RunResponse
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Output != tt.wantOutput {
				t.Errorf("Output = %q, want %q", got.Output, tt.wantOutput)
			}
			if tt.wantCode == "" {
				if !got.Success || got.Error != nil || got.SessionID == "" {
					t.Errorf("response = %+v", got)
				}
				return
			}
			if got.Success || got.Error == nil {
				t.Fatalf("response = %+v, want a fault", got)
			}
			if got.Error.Code != tt.wantCode || got.Error.Line != tt.wantLine {
				t.Errorf("Error = %+v, want code %s line %d", got.Error, tt.wantCode, tt.wantLine)
			}
		})
	}

	if rec := postJSON(h, "/api/v1/run", `{"code":`); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid JSON status = %d, want 400", rec.Code)
	}
}

func TestHandler_Parse(t *testing.T) {
	h := newTestHandler(t, false, script.Options{})

	rec := postJSON(h, "/api/v1/parse", `{"code":"x = 2 + 3 * 4; print(x)\n\n5 + 5"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got ParseResponse
	json.NewDecoder(rec.Body).Decode(&got)
	if len(got.Lines) != 2 {
		t.Fatalf("Lines = %+v", got.Lines)
	}
	if got.Lines[0].Line != 1 || got.Lines[1].Line != 3 {
		t.Errorf("line numbers = %d, %d", got.Lines[0].Line, got.Lines[1].Line)
	}
	if strings.Join(got.Lines[0].Statements, " | ") != "x = (2 + (3 * 4)) | print(x)" {
		t.Errorf("Statements = %v", got.Lines[0].Statements)
	}
	if got.Lines[1].Kinds[0] != "expression" {
		t.Errorf("Kinds = %v", got.Lines[1].Kinds)
	}

	rec = postJSON(h, "/api/v1/parse", `{"code":"print(1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("syntax fault status = %d, want 400", rec.Code)
	}
}

func TestHandler_HealthAndIndex(t *testing.T) {
	h := newTestHandler(t, false, script.Options{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
	var report health.Report
	json.NewDecoder(rec.Body).Decode(&report)
	if report.Status != health.StatusHealthy || len(report.Checks) != 1 {
		t.Errorf("report = %+v", report)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "calcscript 1.0.0") {
		t.Errorf("index = %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d", rec.Code)
	}
}

func TestHandler_History(t *testing.T) {
	h := newTestHandler(t, true, script.Options{})

	postForm(h, url.Values{"code": {"print(1)"}})
	postJSON(h, "/api/v1/run", `{"code":"print(y)"}`)
	postJSON(h, "/api/v1/run", `{"code":"print(3)"}`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/history?limit=2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got HistoryResponse
	json.NewDecoder(rec.Body).Decode(&got)
	if got.Total != 2 || got.Submissions[0].Code != "print(3)" {
		t.Errorf("history = %+v", got)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/history?failures=true", nil))
	json.NewDecoder(rec.Body).Decode(&got)
	if got.Total != 1 || got.Submissions[0].ErrorCode != "NAME" {
		t.Errorf("failures = %+v", got)
	}

	id := got.Submissions[0].ID
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/history/"+id, nil))
	if rec.Code != http.StatusOK {
		t.Errorf("submission status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/history/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing submission status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/history?limit=zero", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))
	var stats map[string]interface{}
	json.NewDecoder(rec.Body).Decode(&stats)
	if _, ok := stats["history"]; !ok {
		t.Errorf("stats = %v", stats)
	}
}

func TestHandler_HistoryDisabled(t *testing.T) {
	h := newTestHandler(t, false, script.Options{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandler_CORS(t *testing.T) {
	h := newTestHandler(t, false, script.Options{})
	h.config.AllowedOrigins = []string{"http://allowed.example"}

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/run", nil)
	req.Header.Set("Origin", "http://allowed.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://allowed.example" {
		t.Errorf("allowed origin header = %q", got)
	}

	req.Header.Set("Origin", "http://other.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("foreign origin header = %q, want none", got)
	}
}
