// Package config loads the gosolve server and CLI configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/njchilds90/gosolve"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Solver SolverConfig `yaml:"solver"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

type SolverConfig struct {
	// MaxDepth caps nested solves.
	MaxDepth int `yaml:"max_depth"`
	// MaxSteps caps the work of one top-level call.
	MaxSteps int `yaml:"max_steps"`
	// Timeout bounds a single solve request.
	Timeout time.Duration `yaml:"timeout"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// RatePerSecond and Burst configure the token bucket shared by all
	// clients. A zero rate disables limiting.
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
	// MaxBatch caps the number of equations in one batch request.
	MaxBatch     int           `yaml:"max_batch"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

func Default() Config {
	return Config{
		Solver: SolverConfig{
			MaxDepth: gosolve.DefaultMaxDepth,
			MaxSteps: gosolve.DefaultMaxSteps,
			Timeout:  5 * time.Second,
		},
		Server: ServerConfig{
			Addr:          ":8080",
			RatePerSecond: 50,
			Burst:         100,
			MaxBatch:      64,
			MaxBodyBytes:  1 << 20,
			ReadTimeout:   15 * time.Second,
			WriteTimeout:  15 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read the config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse the config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Write stores cfg as YAML, creating the parent directory.
func Write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create the config directory %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c Config) Validate() error {
	switch {
	case c.Solver.MaxDepth <= 0:
		return fmt.Errorf("%w: solver.max_depth must be positive", ErrInvalid)
	case c.Solver.MaxSteps <= 0:
		return fmt.Errorf("%w: solver.max_steps must be positive", ErrInvalid)
	case c.Solver.Timeout < 0:
		return fmt.Errorf("%w: solver.timeout must not be negative", ErrInvalid)
	case c.Server.RatePerSecond < 0:
		return fmt.Errorf("%w: server.rate_per_second must not be negative", ErrInvalid)
	case c.Server.RatePerSecond > 0 && c.Server.Burst <= 0:
		return fmt.Errorf("%w: server.burst must be positive when rate limiting", ErrInvalid)
	case c.Server.MaxBatch <= 0:
		return fmt.Errorf("%w: server.max_batch must be positive", ErrInvalid)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

// SolverOptions maps the solver section onto solver options.
func (c Config) SolverOptions(logger *slog.Logger) []gosolve.Option {
	opts := []gosolve.Option{
		gosolve.WithMaxDepth(c.Solver.MaxDepth),
		gosolve.WithMaxSteps(c.Solver.MaxSteps),
	}
	if logger != nil {
		opts = append(opts, gosolve.WithLogger(logger))
	}
	return opts
}

// Logger builds the slog logger described by the log section.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(c.Log.Format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("%w: log.level %q", ErrInvalid, s)
}
