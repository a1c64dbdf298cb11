package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	playgroundServer "github.com/msto63/calcscript/internal/playground/server"
	runnerServer "github.com/msto63/calcscript/internal/runner/server"
	"github.com/msto63/calcscript/pkg/core/version"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the playground gateway and the runner service",
	Long: `Start the calcscript services.

  playground - HTTP page, JSON API and WebSocket (default :5000)
  runner     - gRPC Runner service with health and reflection (default :9300)

Either can be switched off with http.enabled / grpc.enabled in the config
file or CALCSCRIPT_HTTP_ENABLED / CALCSCRIPT_GRPC_ENABLED.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.HTTP.Enabled && !cfg.GRPC.Enabled {
		return fmt.Errorf("nothing to serve: http and grpc are both disabled")
	}

	logger, closer, err := newLogger(cfg, "calcscript-serve", false)
	if err != nil {
		return err
	}
	defer closer.Close()

	svc, err := newService(cfg, logger, true)
	if err != nil {
		return err
	}
	defer svc.Close()

	var runner *runnerServer.Server
	if cfg.GRPC.Enabled {
		runner = runnerServer.New(runnerServer.Config{
			Host:       cfg.GRPC.Host,
			Port:       cfg.GRPC.Port,
			Reflection: cfg.GRPC.Reflection,
			Logger:     logger.With("service", "runner"),
		}, svc)
		if err := runner.StartAsync(); err != nil {
			return err
		}
		logger.Info("Runner started", "address", runner.Address())
	}

	var playground *playgroundServer.Server
	if cfg.HTTP.Enabled {
		pgCfg := playgroundServer.DefaultConfig()
		pgCfg.Host = cfg.HTTP.Host
		pgCfg.Port = cfg.HTTP.Port
		pgCfg.ReadTimeout = cfg.HTTP.ReadTimeout.Duration
		pgCfg.WriteTimeout = cfg.HTTP.WriteTimeout.Duration
		pgCfg.MaxRequestSize = cfg.HTTP.MaxRequestSize
		pgCfg.HistoryLimit = cfg.History.Limit
		pgCfg.Version = version.Playground
		pgCfg.Logger = logger.With("service", "playground")
		if cfg.HTTP.CORS.Enabled {
			pgCfg.AllowedOrigins = cfg.HTTP.CORS.AllowedOrigins
		}
		if runner != nil {
			pgCfg.RunnerAddr = localAddress(runner.Address())
		}

		playground = playgroundServer.New(pgCfg, svc)
		if err := playground.StartAsync(); err != nil {
			if runner != nil {
				runner.Stop(context.Background())
			}
			return err
		}
		logger.Info("Playground started", "address", playground.Address())
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Shutdown signal received, stopping services...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if playground != nil {
		if err := playground.Stop(ctx); err != nil {
			logger.Error("Error during playground shutdown", "error", err)
		}
	}
	if runner != nil {
		runner.Stop(ctx)
	}

	logger.Info("Services stopped")
	return nil
}

// localAddress turns a wildcard listen address into one that can be dialed
func localAddress(addr string) string {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return net.JoinHostPort("localhost", port)
}
