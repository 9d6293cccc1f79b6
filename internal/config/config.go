// Package config loads settings shared by the fourplay binaries from
// defaults, an optional fourplay.yaml and FOURPLAY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/hailam/fourplay/internal/engine"
	"github.com/hailam/fourplay/internal/eval"
)

// EnvPrefix prefixes every environment override, e.g. FOURPLAY_EVAL_KIND.
const EnvPrefix = "FOURPLAY"

// Config holds every setting.
type Config struct {
	DataDir  string       `mapstructure:"data_dir"`
	LogLevel string       `mapstructure:"log_level"`
	Eval     EvalConfig   `mapstructure:"eval"`
	Search   SearchConfig `mapstructure:"search"`
	Game     GameConfig   `mapstructure:"game"`
	Shell    ShellConfig  `mapstructure:"shell"`
}

type EvalConfig struct {
	Kind      string `mapstructure:"kind"`
	ModelPath string `mapstructure:"model_path"`
}

type SearchConfig struct {
	Difficulty string        `mapstructure:"difficulty"`
	Depth      int           `mapstructure:"depth"` // overrides Difficulty when > 0
	Threads    int           `mapstructure:"threads"`
	WinLoss    float64       `mapstructure:"win_loss"`
	Bound      float64       `mapstructure:"bound"`
	MoveTime   time.Duration `mapstructure:"move_time"`
}

type GameConfig struct {
	FirstMoveDepth int  `mapstructure:"first_move_depth"`
	UseBook        bool `mapstructure:"use_book"`
}

type ShellConfig struct {
	HistoryFile string `mapstructure:"history_file"`
}

func setDefaults(v *viper.Viper) {
	def := engine.DefaultConfig()
	v.SetDefault("data_dir", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("eval.kind", string(eval.KindHeuristic))
	v.SetDefault("eval.model_path", "")
	v.SetDefault("search.difficulty", engine.Medium.String())
	v.SetDefault("search.depth", 0)
	v.SetDefault("search.threads", 1)
	v.SetDefault("search.win_loss", def.WinLoss)
	v.SetDefault("search.bound", def.Bound)
	v.SetDefault("search.move_time", time.Duration(0))
	v.SetDefault("game.first_move_depth", 1)
	v.SetDefault("game.use_book", true)
	v.SetDefault("shell.history_file", "")
}

// Default returns the configuration with no file or environment applied.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	// Defaults always decode.
	_ = v.Unmarshal(cfg)
	return cfg
}

// Load reads the configuration. With no arguments it looks for
// fourplay.yaml in the working directory and then in the user config
// directory; a missing file is not an error. A path ending in .yaml, .yml
// or .json names the file to read, which must exist; any other path is
// searched as a directory.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := false
	v.SetConfigName("fourplay")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "fourplay"))
		}
	}
	for _, p := range paths {
		switch strings.ToLower(filepath.Ext(p)) {
		case ".yaml", ".yml", ".json":
			v.SetConfigFile(p)
			explicit = true
		default:
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		log.Debug().Str("file", v.ConfigFileUsed()).Msg("config-loaded")
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Validate checks every value can be used.
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	kind, err := eval.ParseKind(c.Eval.Kind)
	if err != nil {
		return fmt.Errorf("eval.kind: %w", err)
	}
	if kind != eval.KindHeuristic && c.Eval.ModelPath == "" {
		return fmt.Errorf("eval.model_path is required for evaluator %s", kind)
	}
	if _, err := engine.ParseDifficulty(c.Search.Difficulty); err != nil {
		return fmt.Errorf("search.difficulty: %w", err)
	}
	if c.Search.Depth < 0 {
		return fmt.Errorf("search.depth must not be negative")
	}
	if c.Search.Threads < 1 {
		return fmt.Errorf("search.threads must be at least 1")
	}
	if c.Search.MoveTime < 0 {
		return fmt.Errorf("search.move_time must not be negative")
	}
	if err := c.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if c.Game.FirstMoveDepth < 0 {
		return fmt.Errorf("game.first_move_depth must not be negative")
	}
	return nil
}

// EngineConfig returns the search magnitudes.
func (c *Config) EngineConfig() engine.Config {
	return engine.Config{WinLoss: c.Search.WinLoss, Bound: c.Search.Bound}
}

// Difficulty returns the configured difficulty, Medium if unparseable.
func (c *Config) Difficulty() engine.Difficulty {
	d, _ := engine.ParseDifficulty(c.Search.Difficulty)
	return d
}

// EvalKind returns the configured evaluator kind.
func (c *Config) EvalKind() eval.Kind {
	k, err := eval.ParseKind(c.Eval.Kind)
	if err != nil {
		return eval.KindHeuristic
	}
	return k
}

// SearchLimits returns the limits for one engine move: the difficulty's
// limits with the depth and move time overrides applied.
func (c *Config) SearchLimits() engine.SearchLimits {
	limits := engine.DifficultySettings[c.Difficulty()]
	if c.Search.Depth > 0 {
		limits.Depth = c.Search.Depth
	}
	if c.Search.MoveTime > 0 {
		limits.MoveTime = c.Search.MoveTime
	}
	return limits
}

// SetupLogging points the global zerolog logger at a console writer on w
// with the configured level.
func SetupLogging(w io.Writer, level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
}
