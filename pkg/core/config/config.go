// ============================================================================
// calcscript - Arithmetic Scripting Playground
// ============================================================================
//
// Package:     config
// Description: Typed application configuration loaded from TOML or YAML
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	mdwerror "github.com/msto63/calcscript/foundation/core/error"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "CALCSCRIPT_"

// Config holds the complete application configuration
type Config struct {
	General     GeneralConfig     `toml:"general" yaml:"general"`
	Interpreter InterpreterConfig `toml:"interpreter" yaml:"interpreter"`
	HTTP        HTTPConfig        `toml:"http" yaml:"http"`
	GRPC        GRPCConfig        `toml:"grpc" yaml:"grpc"`
	History     HistoryConfig     `toml:"history" yaml:"history"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name        string `toml:"name" yaml:"name"`
	Environment string `toml:"environment" yaml:"environment"`
	DataDir     string `toml:"data_dir" yaml:"data_dir"`
	LogLevel    string `toml:"log_level" yaml:"log_level"`
	LogFormat   string `toml:"log_format" yaml:"log_format"`
	LogFile     string `toml:"log_file" yaml:"log_file"`
}

// InterpreterConfig holds limits and policies of the engine
type InterpreterConfig struct {
	StrictLexing   bool `toml:"strict_lexing" yaml:"strict_lexing"`
	MaxDepth       int  `toml:"max_depth" yaml:"max_depth"`
	MaxProgramSize int  `toml:"max_program_size" yaml:"max_program_size"`
	MaxLineLength  int  `toml:"max_line_length" yaml:"max_line_length"`
}

// HTTPConfig holds playground gateway configuration
type HTTPConfig struct {
	Enabled        bool       `toml:"enabled" yaml:"enabled"`
	Host           string     `toml:"host" yaml:"host"`
	Port           int        `toml:"port" yaml:"port"`
	ReadTimeout    Duration   `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout   Duration   `toml:"write_timeout" yaml:"write_timeout"`
	RunTimeout     Duration   `toml:"run_timeout" yaml:"run_timeout"`
	MaxRequestSize int64      `toml:"max_request_size" yaml:"max_request_size"`
	CORS           CORSConfig `toml:"cors" yaml:"cors"`
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	Enabled        bool     `toml:"enabled" yaml:"enabled"`
	AllowedOrigins []string `toml:"allowed_origins" yaml:"allowed_origins"`
}

// GRPCConfig holds runner service configuration
type GRPCConfig struct {
	Enabled    bool     `toml:"enabled" yaml:"enabled"`
	Host       string   `toml:"host" yaml:"host"`
	Port       int      `toml:"port" yaml:"port"`
	Reflection bool     `toml:"reflection" yaml:"reflection"`
	Timeout    Duration `toml:"timeout" yaml:"timeout"`
}

// HistoryConfig holds submission history settings
type HistoryConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Path    string `toml:"path" yaml:"path"`
	Limit   int    `toml:"limit" yaml:"limit"`
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration scalar
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// MarshalYAML formats the duration as a string
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := base()
	cfg.applyDefaults()
	return cfg
}

// base holds the switches that default to on; zero values cannot express
// them
func base() *Config {
	return &Config{
		HTTP:    HTTPConfig{Enabled: true},
		GRPC:    GRPCConfig{Enabled: true, Reflection: true},
		History: HistoryConfig{Enabled: true},
	}
}

// Load loads configuration from a .toml, .yaml or .yml file, then applies
// defaults and environment overrides
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, mdwerror.Newf("config file not found: %s", path).
				WithCode(mdwerror.CodeNotFound).
				WithOperation("config.Load")
		}
		return nil, mdwerror.Wrap(err, "failed to read config").
			WithCode(mdwerror.CodeConfigError).
			WithOperation("config.Load")
	}

	cfg := base()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		_, err = toml.Decode(string(data), cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, mdwerror.Newf("unsupported config format: %s", filepath.Ext(path)).
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("config.Load")
	}
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to parse config").
			WithCode(mdwerror.CodeConfigError).
			WithOperation("config.Load").
			WithDetail("path", path)
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()
	if err := cfg.applyEnvOverrides(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv loads configuration from the CALCSCRIPT_CONFIG path or a
// default location. Without any file the defaults are used.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv(EnvPrefix + "CONFIG")
	if path == "" {
		defaultPaths := []string{
			"./configs/config.toml",
			"./configs/config.yaml",
			"./config.toml",
			filepath.Join(os.Getenv("HOME"), ".config/calcscript/config.toml"),
		}
		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		cfg := Default()
		if err := cfg.applyEnvOverrides(os.LookupEnv); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	return Load(path)
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "calcscript"
	}
	if c.General.Environment == "" {
		c.General.Environment = "development"
	}
	if c.General.DataDir == "" {
		c.General.DataDir = "./data"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "json"
	}

	// Interpreter
	if c.Interpreter.MaxDepth == 0 {
		c.Interpreter.MaxDepth = 256
	}
	if c.Interpreter.MaxProgramSize == 0 {
		c.Interpreter.MaxProgramSize = 1 << 20
	}
	if c.Interpreter.MaxLineLength == 0 {
		c.Interpreter.MaxLineLength = 64 * 1024
	}

	// HTTP
	if c.HTTP.Host == "" {
		c.HTTP.Host = "0.0.0.0"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 5000
	}
	if c.HTTP.ReadTimeout.Duration == 0 {
		c.HTTP.ReadTimeout.Duration = 30 * time.Second
	}
	if c.HTTP.WriteTimeout.Duration == 0 {
		c.HTTP.WriteTimeout.Duration = 30 * time.Second
	}
	if c.HTTP.RunTimeout.Duration == 0 {
		c.HTTP.RunTimeout.Duration = 10 * time.Second
	}
	if c.HTTP.MaxRequestSize == 0 {
		c.HTTP.MaxRequestSize = 2 << 20
	}

	// gRPC
	if c.GRPC.Host == "" {
		c.GRPC.Host = "0.0.0.0"
	}
	if c.GRPC.Port == 0 {
		c.GRPC.Port = 9300
	}
	if c.GRPC.Timeout.Duration == 0 {
		c.GRPC.Timeout.Duration = 10 * time.Second
	}

	// History
	if c.History.Path == "" {
		c.History.Path = filepath.Join(c.General.DataDir, "history.db")
	}
	if c.History.Limit == 0 {
		c.History.Limit = 50
	}
}

// expandEnvVars expands environment variables in path values
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.General.LogFile = os.ExpandEnv(c.General.LogFile)
	c.History.Path = os.ExpandEnv(c.History.Path)
}

// applyEnvOverrides applies CALCSCRIPT_* variables on top of the file
func (c *Config) applyEnvOverrides(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError(key, v)
		}
		*dst = n
		return nil
	}
	flag := func(key string, dst *bool) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError(key, v)
		}
		*dst = b
		return nil
	}

	str("LOG_LEVEL", &c.General.LogLevel)
	str("LOG_FORMAT", &c.General.LogFormat)
	str("LOG_FILE", &c.General.LogFile)
	str("HTTP_HOST", &c.HTTP.Host)
	str("GRPC_HOST", &c.GRPC.Host)
	str("HISTORY_PATH", &c.History.Path)

	for _, err := range []error{
		flag("STRICT_LEXING", &c.Interpreter.StrictLexing),
		num("MAX_DEPTH", &c.Interpreter.MaxDepth),
		num("MAX_PROGRAM_SIZE", &c.Interpreter.MaxProgramSize),
		num("HTTP_PORT", &c.HTTP.Port),
		flag("HTTP_ENABLED", &c.HTTP.Enabled),
		num("GRPC_PORT", &c.GRPC.Port),
		flag("GRPC_ENABLED", &c.GRPC.Enabled),
		flag("HISTORY_ENABLED", &c.History.Enabled),
		num("HISTORY_LIMIT", &c.History.Limit),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func envError(key, value string) error {
	return mdwerror.Newf("invalid value for %s%s: %q", EnvPrefix, key, value).
		WithCode(mdwerror.CodeInvalidConfig).
		WithOperation("config.applyEnvOverrides")
}

// Validate checks value ranges
func (c *Config) Validate() error {
	var problems []string

	if c.Interpreter.MaxDepth < 1 {
		problems = append(problems, "interpreter.max_depth must be positive")
	}
	if c.Interpreter.MaxProgramSize < 1 {
		problems = append(problems, "interpreter.max_program_size must be positive")
	}
	if c.HTTP.Enabled && (c.HTTP.Port < 0 || c.HTTP.Port > 65535) {
		problems = append(problems, fmt.Sprintf("http.port out of range: %d", c.HTTP.Port))
	}
	if c.GRPC.Enabled && (c.GRPC.Port < 0 || c.GRPC.Port > 65535) {
		problems = append(problems, fmt.Sprintf("grpc.port out of range: %d", c.GRPC.Port))
	}
	if c.HTTP.Enabled && c.GRPC.Enabled && c.HTTP.Port != 0 && c.HTTP.Port == c.GRPC.Port && c.HTTP.Host == c.GRPC.Host {
		problems = append(problems, "http and grpc cannot share a port")
	}
	if c.History.Limit < 1 {
		problems = append(problems, "history.limit must be positive")
	}

	if len(problems) > 0 {
		return mdwerror.New("invalid configuration: "+strings.Join(problems, "; ")).
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("config.Validate").
			WithDetail("problems", problems)
	}
	return nil
}

// GetServiceAddress returns the listen address of "http" or "grpc"
func (c *Config) GetServiceAddress(service string) string {
	switch service {
	case "http":
		return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
	case "grpc":
		return fmt.Sprintf("%s:%d", c.GRPC.Host, c.GRPC.Port)
	default:
		return ""
	}
}
