// ============================================================================
// calcscript - Arithmetic Scripting Playground
// ============================================================================
//
// Package:     server
// Description: gRPC server exposing the runner service
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package server

import (
	"context"
	"time"

	mdwerror "github.com/msto63/calcscript/foundation/core/error"
	"github.com/msto63/calcscript/foundation/script"
	"github.com/msto63/calcscript/internal/history/store"
	"github.com/msto63/calcscript/internal/runner/service"
	coreGrpc "github.com/msto63/calcscript/pkg/core/grpc"
	"github.com/msto63/calcscript/pkg/core/health"
	"github.com/msto63/calcscript/pkg/core/logging"
	"github.com/msto63/calcscript/pkg/core/version"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Ensure Server implements RunnerServer
var _ RunnerServer = (*Server)(nil)

// Server is the Runner gRPC server
type Server struct {
	service   *service.Service
	grpc      *coreGrpc.Server
	health    *health.Registry
	logger    *logging.Logger
	config    Config
	startTime time.Time
}

// Config holds server configuration
type Config struct {
	Host       string
	Port       int
	Reflection bool
	Logger     *logging.Logger
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Host:       "0.0.0.0",
		Port:       9300,
		Reflection: true,
	}
}

// New creates a Runner server around svc
func New(cfg Config, svc *service.Service) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.New("runner-server")
	}

	grpcCfg := coreGrpc.DefaultServerConfig()
	grpcCfg.Host = cfg.Host
	grpcCfg.Port = cfg.Port
	grpcCfg.EnableReflection = cfg.Reflection
	grpcCfg.Logger = logger

	grpcServer := coreGrpc.NewServer(grpcCfg)

	healthRegistry := health.NewRegistry("runner", version.Runner)
	healthRegistry.Register(health.ProbeCheck("engine", svc.Probe, service.ProbeOutput))
	if h := svc.History(); h != nil {
		healthRegistry.Register(health.PingCheck("history", h))
	}

	server := &Server{
		service:   svc,
		grpc:      grpcServer,
		health:    healthRegistry,
		logger:    logger,
		config:    cfg,
		startTime: time.Now(),
	}

	RegisterRunnerServer(grpcServer.GRPCServer(), server)
	grpcServer.SetServingStatus(ServiceName, true)

	return server
}

// Run implements RunnerServer.Run. Program faults are part of the reply;
// only platform failures become gRPC errors.
func (s *Server) Run(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "program is required")
	}

	res, err := s.service.Run(ctx, store.SourceGRPC, req.GetValue())
	if err != nil {
		if !mdwerror.GetCode(err).IsFault() {
			return nil, err
		}
		return faultReply(err), nil
	}

	return structpb.NewStruct(map[string]interface{}{
		"success":    true,
		"output":     res.Output,
		"session_id": res.SessionID,
		"statements": res.Statements,
	})
}

func faultReply(err error) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"success": structpb.NewBoolValue(false),
		"output":  structpb.NewStringValue(""),
		"code":    structpb.NewStringValue(mdwerror.GetCode(err).String()),
		"message": structpb.NewStringValue(script.Describe(err)),
		"line":    structpb.NewNumberValue(float64(script.FaultLine(err))),
	}}
}

// Start starts the server and blocks
func (s *Server) Start() error {
	s.logger.Info("Starting Runner server", "host", s.config.Host, "port", s.config.Port)
	return s.grpc.Start()
}

// StartAsync starts the server asynchronously
func (s *Server) StartAsync() error {
	s.logger.Info("Starting Runner server (async)", "host", s.config.Host, "port", s.config.Port)
	return s.grpc.StartAsync()
}

// Stop stops the server. The runner service is owned by the caller.
func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("Stopping Runner server", "uptime", time.Since(s.startTime).Round(time.Second))
	s.grpc.SetServingStatus(ServiceName, false)
	s.grpc.StopWithTimeout(ctx)
}

// Address returns the listen address
func (s *Server) Address() string {
	return s.grpc.Address()
}

// GRPCServer returns the underlying gRPC server
func (s *Server) GRPCServer() *grpc.Server {
	return s.grpc.GRPCServer()
}

// HealthRegistry returns the health check registry
func (s *Server) HealthRegistry() *health.Registry {
	return s.health
}
