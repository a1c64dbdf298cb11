// ============================================================================
// calcscript - Arithmetic Scripting Playground
// ============================================================================
//
// Package:     cmd
// Description: Shared wiring of configuration, logging, history and runner
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/msto63/calcscript/foundation/script"
	"github.com/msto63/calcscript/internal/history/store"
	"github.com/msto63/calcscript/internal/runner/service"
	"github.com/msto63/calcscript/pkg/core/config"
	"github.com/msto63/calcscript/pkg/core/logging"
)

// loadConfig reads --config or the default locations, then validates
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds a named logger from the general section. quiet raises the
// level to warn unless --verbose is set, for commands that write results to
// the terminal.
func newLogger(cfg *config.Config, name string, quiet bool) (*logging.Logger, io.Closer, error) {
	lc := logging.LoggerConfig{
		ServiceName: name,
		Level:       cfg.General.LogLevel,
		Format:      cfg.General.LogFormat,
	}
	if quiet {
		lc.Level = "warn"
	}
	if verbose {
		lc.Level = "debug"
	}

	var closer io.Closer = nopCloser{}
	if cfg.General.LogFile != "" {
		f, err := logging.OpenLogFile(cfg.General.LogFile)
		if err != nil {
			return nil, nil, err
		}
		lc.AdditionalOutputs = append(lc.AdditionalOutputs, f)
		closer = f
	}

	return logging.Wrap(logging.NewLogger(lc), name), closer, nil
}

func engineOptions(cfg *config.Config, logger *logging.Logger) script.Options {
	return script.Options{
		Logger:         logger.Logger,
		StrictLexing:   cfg.Interpreter.StrictLexing,
		MaxDepth:       cfg.Interpreter.MaxDepth,
		MaxProgramSize: cfg.Interpreter.MaxProgramSize,
		MaxLineLength:  cfg.Interpreter.MaxLineLength,
	}
}

// openHistory returns nil when history is disabled
func openHistory(cfg *config.Config) (store.Store, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	hist, err := store.NewSQLiteStore(store.Config{Path: cfg.History.Path})
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return hist, nil
}

// newService creates the runner service. With record set, runs are written
// to the history store.
func newService(cfg *config.Config, logger *logging.Logger, record bool) (*service.Service, error) {
	var hist store.Store
	if record {
		var err error
		if hist, err = openHistory(cfg); err != nil {
			return nil, err
		}
	}

	svcCfg := service.DefaultConfig()
	svcCfg.Engine = engineOptions(cfg, logger)
	svcCfg.RunTimeout = cfg.HTTP.RunTimeout.Duration
	svcCfg.Logger = logger
	return service.NewService(svcCfg, hist), nil
}

func readProgram(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read program: %w", err)
	}
	return string(data), nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
