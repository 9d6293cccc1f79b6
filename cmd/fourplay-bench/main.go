// Command fourplay-bench measures an evaluator on labelled datasets and
// the engine against a random mover, printing a YAML report.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/hailam/fourplay/internal/app"
	"github.com/hailam/fourplay/internal/config"
)

var (
	configPath = flag.String("config", "", "config file or directory")
	evalKind   = flag.String("eval", "", "evaluator kind: heuristic, network, deep or onnx")
	modelPath  = flag.String("model", "", "evaluator model file")
	level      = flag.String("level", "", "engine level: easy, medium or hard")
	dataPath   = flag.String("data", "", "labelled CSV dataset")
	format     = flag.String("format", "numeric", "dataset layout: numeric or string")
	start      = flag.Int("start", 0, "dataset lines to skip")
	limit      = flag.Int("n", 0, "maximum examples, 0 for all")
	games      = flag.Int("games", 20, "self-play games against a random mover, 0 to skip")
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
	if *evalKind != "" {
		cfg.Eval.Kind = *evalKind
	}
	if *modelPath != "" {
		cfg.Eval.ModelPath = *modelPath
	}
	if *level != "" {
		cfg.Search.Difficulty = *level
	}
	config.SetupLogging(os.Stderr, cfg.LogLevel)

	a, err := app.Open(cfg, app.Options{NoStorage: true})
	if err != nil {
		log.Fatal().Err(err).Msg("startup-failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rep := Report{
		Evaluator: string(cfg.EvalKind()),
		Level:     a.Engine.Difficulty().String(),
	}
	if *dataPath != "" {
		rep.Dataset, err = runDataset(a.Evaluator, *dataPath, *format, *start, *limit)
		if err != nil {
			log.Fatal().Err(err).Msg("dataset-failed")
		}
	}
	if *games > 0 {
		rep.SelfPlay, err = runSelfPlay(ctx, a.Engine, *games, cfg.SearchLimits())
		if err != nil {
			log.Fatal().Err(err).Msg("self-play-failed")
		}
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		log.Fatal().Err(err).Msg("report-failed")
	}
	enc.Close()
}
