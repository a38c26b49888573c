package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gosolve"
	"github.com/njchilds90/gosolve/internal/config"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, gosolve.DefaultMaxDepth, cfg.Solver.MaxDepth)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gosolve.yaml")
	yml := "solver:\n  max_depth: 8\n  timeout: 2s\nserver:\n  addr: \":9090\"\nlog:\n  level: debug\n  format: json\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Solver.MaxDepth)
	assert.Equal(t, gosolve.DefaultMaxSteps, cfg.Solver.MaxSteps)
	assert.Equal(t, 2*time.Second, cfg.Solver.Timeout)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("solver:\n  max_depth: 0\n"), 0o644))
	_, err := config.Load(path)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestWrite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "gosolve.yaml")
	cfg := config.Default()
	cfg.Server.Burst = 7
	require.NoError(t, config.Write(path, cfg))

	got, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*config.Config){
		"steps":  func(c *config.Config) { c.Solver.MaxSteps = -1 },
		"rate":   func(c *config.Config) { c.Server.RatePerSecond = -2 },
		"burst":  func(c *config.Config) { c.Server.Burst = 0 },
		"batch":  func(c *config.Config) { c.Server.MaxBatch = 0 },
		"level":  func(c *config.Config) { c.Log.Level = "loud" },
		"format": func(c *config.Config) { c.Log.Format = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), config.ErrInvalid)
		})
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Format = "json"
	var buf bytes.Buffer
	cfg.Logger(&buf).Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestLogger_LevelFilters(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "warn"
	var buf bytes.Buffer
	cfg.Logger(&buf).Info("quiet")
	assert.Empty(t, buf.String())
}

func TestSolverOptions_Applied(t *testing.T) {
	cfg := config.Default()
	cfg.Solver.MaxDepth = 4
	s := gosolve.NewAlgebraSolver(cfg.SolverOptions(nil)...)
	x := gosolve.S("x")
	res := s.Solve(t.Context(), "x", gosolve.AddOf(gosolve.MulOf(gosolve.N(2), x), gosolve.N(3)), gosolve.N(7))
	require.Equal(t, gosolve.StatusSolved, res.Status, res.String())
}
