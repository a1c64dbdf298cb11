package handler

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	mdwerror "github.com/msto63/calcscript/foundation/core/error"
	"github.com/msto63/calcscript/foundation/script"
	mdwast "github.com/msto63/calcscript/foundation/script/ast"
	"github.com/msto63/calcscript/internal/history/store"
	"github.com/msto63/calcscript/internal/runner/service"
	"github.com/msto63/calcscript/pkg/core/health"
	"github.com/msto63/calcscript/pkg/core/logging"
)

// Messages of the form endpoint
const (
	MessageSuccess  = "Code executed successfully!"
	MessageNoOutput = "Code executed successfully but no output."
)

// RunCodeResponse is the reply of POST /run_code
type RunCodeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Output  string `json:"output"`
}

// RunRequest is the body of POST /api/v1/run and /api/v1/parse
type RunRequest struct {
	Code string `json:"code"`
}

// RunResponse is the reply of POST /api/v1/run
type RunResponse struct {
	Success    bool       `json:"success"`
	Output     string     `json:"output"`
	SessionID  string     `json:"session_id,omitempty"`
	Statements int        `json:"statements,omitempty"`
	Executed   int        `json:"executed,omitempty"`
	DurationMS float64    `json:"duration_ms,omitempty"`
	Error      *FaultInfo `json:"error,omitempty"`
}

// FaultInfo describes a program fault
type FaultInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// ParseResponse is the reply of POST /api/v1/parse
type ParseResponse struct {
	Success bool         `json:"success"`
	Lines   []ParsedLine `json:"lines"`
	Error   *FaultInfo   `json:"error,omitempty"`
}

// ParsedLine lists the statements of one source line
type ParsedLine struct {
	Line       int      `json:"line"`
	Statements []string `json:"statements"`
	Kinds      []string `json:"kinds"`
}

// HistoryResponse lists stored submissions
type HistoryResponse struct {
	Submissions []*store.Submission `json:"submissions"`
	Total       int                 `json:"total"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// Config holds handler configuration
type Config struct {
	Version        string
	MaxRequestSize int64
	HistoryLimit   int
	AllowedOrigins []string
	Logger         *logging.Logger
}

// Handler serves the playground page and its API
type Handler struct {
	runner    *service.Service
	health    *health.Registry
	logger    *logging.Logger
	config    Config
	startTime time.Time
	index     *template.Template
}

// NewHandler creates the playground handler
func NewHandler(cfg Config, runner *service.Service, registry *health.Registry) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.New("playground")
	}
	if cfg.MaxRequestSize <= 0 {
		cfg.MaxRequestSize = 2 << 20
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 50
	}

	return &Handler{
		runner:    runner,
		health:    registry,
		logger:    logger,
		config:    cfg,
		startTime: time.Now(),
		index:     template.Must(template.New("index").Parse(indexHTML)),
	}
}

// ServeHTTP routes requests
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.setCORS(w, r)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")

	switch {
	case path == "":
		h.handleIndex(w, r)
	case path == "/run_code":
		h.handleRunCode(w, r)
	case path == "/api/v1/run":
		h.handleRun(w, r)
	case path == "/api/v1/parse":
		h.handleParse(w, r)
	case path == "/api/v1/health":
		h.handleHealth(w, r)
	case path == "/api/v1/stats":
		h.handleStats(w, r)
	case path == "/api/v1/history":
		h.handleHistory(w, r)
	case strings.HasPrefix(path, "/api/v1/history/"):
		h.handleSubmission(w, r, strings.TrimPrefix(path, "/api/v1/history/"))
	default:
		h.writeError(w, http.StatusNotFound, "not_found", "Unknown endpoint: "+r.URL.Path, "")
	}
}

func (h *Handler) setCORS(w http.ResponseWriter, r *http.Request) {
	origin := "*"
	if len(h.config.AllowedOrigins) > 0 {
		origin = ""
		reqOrigin := r.Header.Get("Origin")
		for _, o := range h.config.AllowedOrigins {
			if o == "*" || o == reqOrigin {
				origin = reqOrigin
				break
			}
		}
		if origin == "" {
			return
		}
		w.Header().Add("Vary", "Origin")
	}
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET", "")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.index.Execute(w, struct{ Version string }{h.config.Version}); err != nil {
		h.logger.Error("Failed to render index", "error", err)
	}
}

// handleRunCode keeps the form contract of the original playground: program
// faults are reported with status 200 and success=false
func (h *Handler) handleRunCode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use POST", "")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxRequestSize)
	if err := r.ParseForm(); err != nil {
		status := http.StatusBadRequest
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			status = http.StatusRequestEntityTooLarge
		}
		h.writeJSON(w, status, RunCodeResponse{Message: "Error: " + err.Error()})
		return
	}
	if _, ok := r.PostForm["code"]; !ok {
		h.writeJSON(w, http.StatusBadRequest, RunCodeResponse{Message: "Error: missing form field 'code'"})
		return
	}

	res, err := h.runner.Run(r.Context(), store.SourceHTTP, r.PostForm.Get("code"))
	if err != nil {
		if !mdwerror.GetCode(err).IsFault() {
			h.writeJSON(w, mdwerror.GetCode(err).HTTPStatus(), RunCodeResponse{Message: "Error: " + err.Error()})
			return
		}
		h.writeJSON(w, http.StatusOK, RunCodeResponse{Message: "Error: " + script.Describe(err)})
		return
	}

	if res.Output == "" {
		h.writeJSON(w, http.StatusOK, RunCodeResponse{Success: true, Message: MessageNoOutput})
		return
	}
	h.writeJSON(w, http.StatusOK, RunCodeResponse{Success: true, Message: MessageSuccess, Output: res.Output})
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use POST", "")
		return
	}

	var req RunRequest
	if status, err := h.readJSON(w, r, &req); err != nil {
		h.writeError(w, status, "invalid_request", "Invalid request body", err.Error())
		return
	}

	resp, status := runProgram(r.Context(), h.runner, store.SourceHTTP, req.Code)
	h.writeJSON(w, status, resp)
}

// runProgram executes code and builds the API reply with its HTTP status
func runProgram(ctx context.Context, runner *service.Service, source store.Source, code string) (RunResponse, int) {
	res, err := runner.Run(ctx, source, code)
	if err != nil {
		return RunResponse{Error: faultInfo(err)}, mdwerror.GetCode(err).HTTPStatus()
	}
	return RunResponse{
		Success:    true,
		Output:     res.Output,
		SessionID:  res.SessionID,
		Statements: res.Statements,
		Executed:   res.Executed,
		DurationMS: float64(res.Duration.Microseconds()) / 1000,
	}, http.StatusOK
}

func faultInfo(err error) *FaultInfo {
	return &FaultInfo{
		Code:    mdwerror.GetCode(err).String(),
		Message: script.Describe(err),
		Line:    script.FaultLine(err),
	}
}

func (h *Handler) handleParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use POST", "")
		return
	}

	var req RunRequest
	if status, err := h.readJSON(w, r, &req); err != nil {
		h.writeError(w, status, "invalid_request", "Invalid request body", err.Error())
		return
	}

	parsed, err := h.runner.Parse(req.Code)
	if err != nil {
		h.writeJSON(w, mdwerror.GetCode(err).HTTPStatus(), ParseResponse{Lines: []ParsedLine{}, Error: faultInfo(err)})
		return
	}

	resp := ParseResponse{Success: true, Lines: make([]ParsedLine, 0, len(parsed))}
	for _, line := range parsed {
		pl := ParsedLine{Line: line.Number}
		for _, stmt := range line.Statements {
			pl.Statements = append(pl.Statements, stmt.String())
			pl.Kinds = append(pl.Kinds, mdwast.Kind(stmt))
		}
		resp.Lines = append(resp.Lines, pl)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET", "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	report := h.health.Check(ctx)
	status := http.StatusOK
	if report.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, report)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET", "")
		return
	}

	resp := map[string]interface{}{
		"version": h.config.Version,
		"uptime":  time.Since(h.startTime).Round(time.Second).String(),
		"runner":  h.runner.Stats(),
	}
	if hist := h.runner.History(); hist != nil {
		if stats, err := hist.Stats(r.Context()); err == nil {
			resp["history"] = stats
		} else {
			h.logger.Warn("Failed to read history stats", "error", err.Error())
		}
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET", "")
		return
	}
	hist := h.runner.History()
	if hist == nil {
		h.writeError(w, http.StatusNotFound, "history_disabled", "History is disabled", "")
		return
	}

	q := r.URL.Query()
	filter := store.Filter{
		Source:       store.Source(q.Get("source")),
		FailuresOnly: q.Get("failures") == "true",
		Limit:        h.config.HistoryLimit,
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			h.writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer", "")
			return
		}
		if n < filter.Limit {
			filter.Limit = n
		}
	}

	subs, err := hist.Recent(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to query history", "error", err.Error())
		h.writeError(w, http.StatusInternalServerError, "history_error", "Failed to query history", "")
		return
	}
	if subs == nil {
		subs = []*store.Submission{}
	}
	h.writeJSON(w, http.StatusOK, HistoryResponse{Submissions: subs, Total: len(subs)})
}

func (h *Handler) handleSubmission(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET", "")
		return
	}
	hist := h.runner.History()
	if hist == nil {
		h.writeError(w, http.StatusNotFound, "history_disabled", "History is disabled", "")
		return
	}

	sub, err := hist.Get(r.Context(), id)
	if err != nil {
		code := mdwerror.GetCode(err)
		h.writeError(w, code.HTTPStatus(), strings.ToLower(code.String()), err.Error(), "")
		return
	}
	h.writeJSON(w, http.StatusOK, sub)
}

// readJSON decodes a size-limited body and returns the status for a failure
func (h *Handler) readJSON(w http.ResponseWriter, r *http.Request, v interface{}) (int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxRequestSize)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return http.StatusRequestEntityTooLarge, err
		}
		return http.StatusBadRequest, err
	}
	return http.StatusOK, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message, details string) {
	h.writeJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}
