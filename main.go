// FourPlay - Connect Four against a minimax engine, built with Ebitengine
package main

import (
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog/log"

	"github.com/hailam/fourplay/internal/app"
	"github.com/hailam/fourplay/internal/config"
	"github.com/hailam/fourplay/internal/ui"
)

var configPath = flag.String("config", "", "config file or directory")

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
	config.SetupLogging(os.Stderr, cfg.LogLevel)

	a, err := app.Open(cfg, app.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("startup-failed")
	}
	defer a.Close()

	game := ui.NewGame(ui.Options{Engine: a.Engine, Game: a.Game, Store: a.Store})
	defer game.Close()

	ebiten.SetWindowSize(ui.ScreenWidth, ui.ScreenHeight)
	ebiten.SetWindowTitle("FourPlay")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Error().Err(err).Msg("run-game-failed")
	}
}
