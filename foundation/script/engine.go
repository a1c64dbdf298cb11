// File: engine.go
// Title: calcscript Engine
// Description: High-level entry point that runs programs with configured
//              limits, tags every session with an ID and logs its outcome.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2025-03-02
//
// Change History:
// - 2025-01-25 v0.1.0: Initial high-level engine implementation
// - 2025-03-02 v0.2.0: Session runs, program size limit, run statistics

package script

import (
	"context"
	"time"

	"github.com/google/uuid"

	mdwerror "github.com/msto63/calcscript/foundation/core/error"
	mdwlog "github.com/msto63/calcscript/foundation/core/log"
	mdwparser "github.com/msto63/calcscript/foundation/script/parser"
)

// DefaultMaxProgramSize bounds a submitted program in bytes
const DefaultMaxProgramSize = 1 << 20

// Engine runs calcscript programs. It holds no session state.
type Engine struct {
	logger  *mdwlog.Logger
	options Options
}

// Options configures the engine
type Options struct {
	Logger         *mdwlog.Logger
	StrictLexing   bool
	MaxDepth       int
	MaxProgramSize int
	MaxLineLength  int
}

// Result describes a successful run
type Result struct {
	SessionID  string            `json:"session_id"`
	Output     string            `json:"output"`
	Lines      int               `json:"lines"`
	Statements int               `json:"statements"`
	Executed   int               `json:"executed"`
	Variables  map[string]string `json:"variables,omitempty"`
	Duration   time.Duration     `json:"duration"`
}

var defaultEngine = New(Options{Logger: mdwlog.Discard()})

// New creates a new engine
func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = mdwparser.DefaultMaxDepth
	}
	if opts.MaxProgramSize <= 0 {
		opts.MaxProgramSize = DefaultMaxProgramSize
	}
	if opts.MaxLineLength <= 0 {
		opts.MaxLineLength = mdwparser.DefaultMaxInputLength
	}

	return &Engine{
		logger:  opts.Logger.WithField("component", "engine"),
		options: opts,
	}
}

// Options returns the effective options
func (e *Engine) Options() Options {
	return e.options
}

// Run executes program in a fresh session. On a fault no output is
// returned. ctx is checked between lines.
func (e *Engine) Run(ctx context.Context, program string) (*Result, error) {
	sessionID := uuid.NewString()
	logger := e.logger.WithSessionID(sessionID)

	if err := e.checkSize(program); err != nil {
		logger.Debug("program rejected", mdwlog.Fields{"bytes": len(program)})
		return nil, err
	}

	timer := logger.StartTimer("session")
	lines := SplitLines(program)
	s := newSession(e.newParser(logger))

	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			timer.Stop()
			return nil, mdwerror.Wrap(err, "session cancelled").
				WithCode(mdwerror.CodeTimeout).
				WithDetail("line", line.Number)
		}
		if err := s.runLine(line); err != nil {
			elapsed := timer.WithField("failed", true).Stop()
			logger.Debug("session failed", mdwlog.Fields{
				"code":        mdwerror.GetCode(err),
				"line":        FaultLine(err),
				"error":       err.Error(),
				"duration_ms": elapsed.Milliseconds(),
			})
			return nil, err
		}
	}

	res := &Result{
		SessionID:  sessionID,
		Output:     s.out.String(),
		Lines:      len(lines),
		Statements: s.statements,
		Executed:   s.executed,
		Variables:  s.env.Snapshot(),
	}
	res.Duration = timer.WithField("statements", s.statements).Stop()
	return res, nil
}

// Parse parses program without evaluating it
func (e *Engine) Parse(program string) ([]ParsedLine, error) {
	if err := e.checkSize(program); err != nil {
		return nil, err
	}

	p := e.newParser(e.logger)
	var parsed []ParsedLine
	for _, line := range SplitLines(program) {
		stmts, err := p.ParseLine(line.Text, line.Number)
		if err != nil {
			return nil, decorate(err, line.Number)
		}
		parsed = append(parsed, ParsedLine{SourceLine: line, Statements: stmts})
	}
	return parsed, nil
}

// Validate reports the first syntax or lexical fault in program
func (e *Engine) Validate(program string) error {
	_, err := e.Parse(program)
	return err
}

func (e *Engine) newParser(logger *mdwlog.Logger) *mdwparser.Parser {
	return mdwparser.New(mdwparser.Options{
		Logger:         logger,
		MaxInputLength: e.options.MaxLineLength,
		MaxDepth:       e.options.MaxDepth,
		StrictLexing:   e.options.StrictLexing,
	})
}

func (e *Engine) checkSize(program string) error {
	if len(program) <= e.options.MaxProgramSize {
		return nil
	}
	return mdwerror.Newf("program exceeds maximum size: %d > %d bytes",
		len(program), e.options.MaxProgramSize).
		WithCode(mdwerror.CodeTooLarge).
		WithOperation("engine.Run").
		WithDetails(map[string]interface{}{
			"size":  len(program),
			"limit": e.options.MaxProgramSize,
		})
}
