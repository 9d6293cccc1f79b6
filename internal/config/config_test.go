package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/fourplay/internal/engine"
	"github.com/hailam/fourplay/internal/eval"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, eval.KindHeuristic, cfg.EvalKind())
	assert.Equal(t, engine.Medium, cfg.Difficulty())
	assert.Equal(t, engine.DefaultConfig(), cfg.EngineConfig())
	assert.Equal(t, 1, cfg.Search.Threads)
	assert.Equal(t, 1, cfg.Game.FirstMoveDepth)
	assert.True(t, cfg.Game.UseBook)
	assert.Equal(t, engine.DifficultySettings[engine.Medium], cfg.SearchLimits())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fourplay.yaml")
	content := `
log_level: debug
eval:
  kind: network
  model_path: /models/net.c4nn
search:
  difficulty: hard
  threads: 4
  move_time: 1500ms
game:
  first_move_depth: 2
  use_book: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	for _, arg := range []string{path, dir} {
		cfg, err := Load(arg)
		require.NoError(t, err)
		require.NoError(t, cfg.Validate())

		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, eval.KindNetwork, cfg.EvalKind())
		assert.Equal(t, "/models/net.c4nn", cfg.Eval.ModelPath)
		assert.Equal(t, engine.Hard, cfg.Difficulty())
		assert.Equal(t, 4, cfg.Search.Threads)
		assert.Equal(t, 1500*time.Millisecond, cfg.Search.MoveTime)
		assert.Equal(t, 2, cfg.Game.FirstMoveDepth)
		assert.False(t, cfg.Game.UseBook)

		limits := cfg.SearchLimits()
		assert.Equal(t, 6, limits.Depth)
		assert.Equal(t, 1500*time.Millisecond, limits.MoveTime)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadMissingFileInDirectory(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("FOURPLAY_SEARCH_DEPTH", "5")
	t.Setenv("FOURPLAY_EVAL_KIND", "onnx")
	t.Setenv("FOURPLAY_EVAL_MODEL_PATH", "/m.onnx")
	t.Setenv("FOURPLAY_SEARCH_MOVE_TIME", "3s")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 5, cfg.Search.Depth)
	assert.Equal(t, eval.KindONNX, cfg.EvalKind())
	assert.Equal(t, "/m.onnx", cfg.Eval.ModelPath)
	assert.Equal(t, engine.SearchLimits{Depth: 5, MoveTime: 3 * time.Second}, cfg.SearchLimits())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"eval kind", func(c *Config) { c.Eval.Kind = "oracle" }},
		{"model path", func(c *Config) { c.Eval.Kind = "deep" }},
		{"difficulty", func(c *Config) { c.Search.Difficulty = "brutal" }},
		{"depth", func(c *Config) { c.Search.Depth = -1 }},
		{"threads", func(c *Config) { c.Search.Threads = 0 }},
		{"move time", func(c *Config) { c.Search.MoveTime = -time.Second }},
		{"bound", func(c *Config) { c.Search.Bound = 5 }},
		{"win loss", func(c *Config) { c.Search.WinLoss = 0.5 }},
		{"first move depth", func(c *Config) { c.Game.FirstMoveDepth = -2 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
