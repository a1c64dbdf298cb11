// ============================================================================
// calcscript - Arithmetic Scripting Playground
// ============================================================================
//
// Package:     service
// Description: Runner service shared by every surface that executes programs
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	mdwerror "github.com/msto63/calcscript/foundation/core/error"
	"github.com/msto63/calcscript/foundation/script"
	"github.com/msto63/calcscript/internal/history/store"
	"github.com/msto63/calcscript/pkg/core/cache"
	"github.com/msto63/calcscript/pkg/core/logging"
)

// ProbeProgram is run by health checks; it must print ProbeOutput
const (
	ProbeProgram = "x = 2\nprint(x * 2)"
	ProbeOutput  = "4\n"
)

// Config holds configuration for the runner service
type Config struct {
	Engine     script.Options
	RunTimeout time.Duration
	Logger     *logging.Logger

	// ParseCacheSize bounds the cache of parse results; 0 disables it
	ParseCacheSize int
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		RunTimeout:     10 * time.Second,
		ParseCacheSize: 256,
	}
}

// Stats counts runs since the service started
type Stats struct {
	Runs     int64            `json:"runs"`
	Failures int64            `json:"failures"`
	ByCode   map[string]int64 `json:"by_code"`

	ParseCache *cache.Stats `json:"parse_cache,omitempty"`
}

// Service executes programs, one fresh session per call, and records each
// run in the history store when one is configured
type Service struct {
	engine  *script.Engine
	history store.Store
	logger  *logging.Logger
	timeout time.Duration

	runs     atomic.Int64
	failures atomic.Int64
	codesMu  sync.Mutex
	byCode   map[string]int64

	parsed *cache.Cache[[]script.ParsedLine]
}

// NewService creates a runner service. history may be nil.
func NewService(cfg Config, history store.Store) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.New("runner")
	}
	if cfg.Engine.Logger == nil {
		cfg.Engine.Logger = logger.Logger
	}

	s := &Service{
		engine:  script.New(cfg.Engine),
		history: history,
		logger:  logger,
		timeout: cfg.RunTimeout,
		byCode:  make(map[string]int64),
	}
	if cfg.ParseCacheSize > 0 {
		cc := cache.DefaultConfig()
		cc.MaxItems = cfg.ParseCacheSize
		s.parsed = cache.New[[]script.ParsedLine](cc)
	}
	return s
}

// Run executes code submitted through source. Faults are returned as
// *mdwerror.Error values; no partial output is ever returned with them.
func (s *Service) Run(ctx context.Context, source store.Source, code string) (*script.Result, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := s.engine.Run(ctx, code)
	elapsed := time.Since(start)

	s.count(err)
	s.record(source, code, res, err, elapsed)

	if err != nil {
		s.logger.Debug("program failed",
			"source", string(source),
			"code", mdwerror.GetCode(err).String(),
			"line", script.FaultLine(err),
		)
		return nil, err
	}

	s.logger.Debug("program executed",
		"source", string(source),
		"session_id", res.SessionID,
		"statements", res.Statements,
		"duration", elapsed,
	)
	return res, nil
}

// Parse parses code without executing it. Successful results are cached by
// program text; the returned trees must not be modified.
func (s *Service) Parse(code string) ([]script.ParsedLine, error) {
	if s.parsed == nil {
		return s.engine.Parse(code)
	}
	return s.parsed.GetOrSet(cache.Key(code), func() ([]script.ParsedLine, error) {
		return s.engine.Parse(code)
	})
}

// Probe runs ProbeProgram; used by health checks
func (s *Service) Probe(ctx context.Context) (string, error) {
	res, err := s.engine.Run(ctx, ProbeProgram)
	if err != nil {
		return "", err
	}
	return res.Output, nil
}

// History returns the configured history store, or nil
func (s *Service) History() store.Store {
	return s.history
}

// Stats returns a snapshot of the run counters
func (s *Service) Stats() Stats {
	s.codesMu.Lock()
	byCode := make(map[string]int64, len(s.byCode))
	for k, v := range s.byCode {
		byCode[k] = v
	}
	s.codesMu.Unlock()

	stats := Stats{
		Runs:     s.runs.Load(),
		Failures: s.failures.Load(),
		ByCode:   byCode,
	}
	if s.parsed != nil {
		cs := s.parsed.Stats()
		stats.ParseCache = &cs
	}
	return stats
}

// Close releases the parse cache and the history store
func (s *Service) Close() error {
	if s.parsed != nil {
		s.parsed.Close()
	}
	if s.history != nil {
		return s.history.Close()
	}
	return nil
}

func (s *Service) count(err error) {
	s.runs.Add(1)
	if err == nil {
		return
	}
	s.failures.Add(1)

	s.codesMu.Lock()
	s.byCode[mdwerror.GetCode(err).String()]++
	s.codesMu.Unlock()
}

// record never fails the run; storage problems are logged
func (s *Service) record(source store.Source, code string, res *script.Result, err error, elapsed time.Duration) {
	if s.history == nil {
		return
	}

	sub := store.NewSubmission(source, code, res, err, elapsed)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if rerr := s.history.Record(ctx, sub); rerr != nil {
		s.logger.Warn("failed to record submission", "error", rerr.Error(), "source", string(source))
	}
}
