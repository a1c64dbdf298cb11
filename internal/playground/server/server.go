// ============================================================================
// calcscript - Arithmetic Scripting Playground
// ============================================================================
//
// Package:     server
// Description: HTTP server of the playground: page, JSON API and WebSocket
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package server

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/msto63/calcscript/internal/playground/handler"
	"github.com/msto63/calcscript/internal/runner/service"
	"github.com/msto63/calcscript/pkg/core/health"
	"github.com/msto63/calcscript/pkg/core/logging"
	"github.com/msto63/calcscript/pkg/core/version"
)

// Server is the playground HTTP server
type Server struct {
	httpServer *http.Server
	handler    *handler.Handler
	health     *health.Registry
	logger     *logging.Logger
	config     Config

	mu       sync.Mutex
	listener net.Listener
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestSize int64
	HistoryLimit   int
	AllowedOrigins []string
	Version        string
	Logger         *logging.Logger

	// RunnerAddr, when set, adds a health check for the gRPC runner
	RunnerAddr string
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           5000,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxRequestSize: 2 << 20,
		HistoryLimit:   50,
		Version:        version.Playground,
	}
}

// New creates a playground server around runner
func New(cfg Config, runner *service.Service) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.New("playground-server")
	}

	healthRegistry := health.NewRegistry("playground", cfg.Version)
	healthRegistry.Register(health.ProbeCheck("engine", runner.Probe, service.ProbeOutput))
	if h := runner.History(); h != nil {
		healthRegistry.Register(health.PingCheck("history", h))
	}
	if cfg.RunnerAddr != "" {
		healthRegistry.Register(health.GRPCCheck("runner", cfg.RunnerAddr, 2*time.Second))
	}

	handlerCfg := handler.Config{
		Version:        cfg.Version,
		MaxRequestSize: cfg.MaxRequestSize,
		HistoryLimit:   cfg.HistoryLimit,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	}
	h := handler.NewHandler(handlerCfg, runner, healthRegistry)
	wsHandler := handler.NewWebSocketHandler(handlerCfg, runner)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/run/ws", wsHandler)
	mux.Handle("/", h)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      loggingMiddleware(logger, mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		httpServer: httpServer,
		handler:    h,
		health:     healthRegistry,
		logger:     logger,
		config:     cfg,
	}
}

// Handler returns the root HTTP handler including middleware
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"duration", time.Since(start),
		)
	})
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack implements http.Hijacker for WebSocket upgrades
func (w *responseWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	w.statusCode = http.StatusSwitchingProtocols
	return hj.Hijack()
}

// Unwrap exposes the underlying writer to http.ResponseController
func (w *responseWrapper) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (s *Server) listen() (net.Listener, error) {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	return listener, nil
}

// Start starts the server and blocks
func (s *Server) Start() error {
	s.logger.Info("Starting playground",
		"host", s.config.Host,
		"port", s.config.Port,
	)
	listener, err := s.listen()
	if err != nil {
		return err
	}
	if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// StartAsync starts the server asynchronously
func (s *Server) StartAsync() error {
	s.logger.Info("Starting playground (async)",
		"host", s.config.Host,
		"port", s.config.Port,
	)
	listener, err := s.listen()
	if err != nil {
		return err
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping playground")
	return s.httpServer.Shutdown(ctx)
}

// Address returns the bound address once listening, else the configured one
func (s *Server) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// HealthRegistry returns the health check registry
func (s *Server) HealthRegistry() *health.Registry {
	return s.health
}
