package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/hailam/fourplay/internal/app"
	"github.com/hailam/fourplay/internal/config"
	"github.com/hailam/fourplay/internal/shell"
	"github.com/hailam/fourplay/internal/storage"
)

var (
	configPath = flag.String("config", "", "config file or directory")
	level      = flag.String("level", "", "engine level: easy, medium or hard")
	noStorage  = flag.Bool("nostorage", false, "do not open the game database")
)

func main() {
	flag.Parse()

	var paths []string
	if *configPath != "" {
		paths = append(paths, *configPath)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		config.SetupLogging(os.Stderr, "info")
		log.Fatal().Err(err).Msg("config-load-failed")
	}
	if *level != "" {
		cfg.Search.Difficulty = *level
	}
	config.SetupLogging(os.Stderr, cfg.LogLevel)

	a, err := app.Open(cfg, app.Options{NoStorage: *noStorage})
	if err != nil {
		log.Fatal().Err(err).Msg("startup-failed")
	}
	defer a.Close()

	sc, err := shell.NewShellController(shell.Deps{
		Engine: a.Engine,
		Game:   a.Game,
		Store:  a.Store,
		Book:   a.Book,
	}, historyFile(cfg))
	if err != nil {
		log.Fatal().Err(err).Msg("shell-start-failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	sc.Loop(ctx)
}

// historyFile returns the configured history file, defaulting to one in
// the data directory.
func historyFile(cfg *config.Config) string {
	if cfg.Shell.HistoryFile != "" {
		return cfg.Shell.HistoryFile
	}
	dir := cfg.DataDir
	if dir == "" {
		var err error
		if dir, err = storage.GetDataDir(); err != nil {
			return ""
		}
	}
	return filepath.Join(dir, "shell_history")
}
