// ============================================================================
// calcscript - Arithmetic Scripting Playground
// ============================================================================
//
// Package:     grpc
// Description: gRPC server wrapper with interceptors, health and reflection
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/msto63/calcscript/pkg/core/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

// ServerConfig holds gRPC server configuration
type ServerConfig struct {
	Host              string
	Port              int
	MaxRecvMsgSize    int
	MaxSendMsgSize    int
	EnableReflection  bool
	KeepaliveInterval time.Duration
	KeepaliveTimeout  time.Duration

	// Logger receives request and panic logs; nil uses a default logger
	Logger *logging.Logger
}

// DefaultServerConfig returns a default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:              "0.0.0.0",
		Port:              9300,
		MaxRecvMsgSize:    4 * 1024 * 1024, // 4MB
		MaxSendMsgSize:    4 * 1024 * 1024, // 4MB
		EnableReflection:  true,
		KeepaliveInterval: 30 * time.Second,
		KeepaliveTimeout:  10 * time.Second,
	}
}

// Server wraps a gRPC server with additional functionality
type Server struct {
	server *grpc.Server
	health *health.Server
	config ServerConfig
	logger *logging.Logger

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a new gRPC server. The standard health service is
// always registered; reflection only when enabled.
func NewServer(cfg ServerConfig, opts ...grpc.ServerOption) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.New("grpc")
	}

	serverOpts := []grpc.ServerOption{
		grpc.MaxRecvMsgSize(cfg.MaxRecvMsgSize),
		grpc.MaxSendMsgSize(cfg.MaxSendMsgSize),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    cfg.KeepaliveInterval,
			Timeout: cfg.KeepaliveTimeout,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor(logger),
			RequestIDInterceptor(),
			LoggingInterceptor(logger),
			FaultInterceptor(),
		),
		grpc.ChainStreamInterceptor(
			StreamRecoveryInterceptor(logger),
			StreamLoggingInterceptor(logger),
		),
	}

	serverOpts = append(serverOpts, opts...)

	server := grpc.NewServer(serverOpts...)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)

	if cfg.EnableReflection {
		reflection.Register(server)
	}

	return &Server{
		server: server,
		health: healthServer,
		config: cfg,
		logger: logger,
	}
}

// GRPCServer returns the underlying gRPC server for service registration
func (s *Server) GRPCServer() *grpc.Server {
	return s.server
}

// SetServingStatus reports service as serving or not on the health service.
// The empty name stands for the whole server.
func (s *Server) SetServingStatus(service string, serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(service, status)
}

func (s *Server) listen() (net.Listener, error) {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	return listener, nil
}

// Start starts the gRPC server and blocks until it stops
func (s *Server) Start() error {
	listener, err := s.listen()
	if err != nil {
		return err
	}
	return s.server.Serve(listener)
}

// StartAsync starts the gRPC server in a goroutine
func (s *Server) StartAsync() error {
	listener, err := s.listen()
	if err != nil {
		return err
	}

	go func() {
		if err := s.server.Serve(listener); err != nil {
			// server might be shutting down
			s.logger.Error("gRPC server error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully stops the gRPC server
func (s *Server) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}

// StopWithTimeout stops the server, forcing it once ctx is done
func (s *Server) StopWithTimeout(ctx context.Context) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return
	case <-ctx.Done():
		s.server.Stop()
	}
}

// Address returns the bound address once listening, else the configured one
func (s *Server) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
