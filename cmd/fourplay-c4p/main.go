package main

import (
	"flag"
	"os"
	"runtime/pprof"

	"github.com/rs/zerolog/log"

	"github.com/hailam/fourplay/internal/app"
	"github.com/hailam/fourplay/internal/config"
	"github.com/hailam/fourplay/internal/protocol"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	configPath = flag.String("config", "", "config file or directory")
	evalKind   = flag.String("eval", "", "evaluator kind: heuristic, network, deep or onnx")
	modelPath  = flag.String("model", "", "evaluator model file")
	threads    = flag.Int("threads", 0, "root search goroutines")
)

func main() {
	flag.Parse()

	// stdout carries the protocol, so logs go to stderr.
	config.SetupLogging(os.Stderr, "info")

	var paths []string
	if *configPath != "" {
		paths = append(paths, *configPath)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		log.Fatal().Err(err).Msg("config-load-failed")
	}
	if *evalKind != "" {
		cfg.Eval.Kind = *evalKind
	}
	if *modelPath != "" {
		cfg.Eval.ModelPath = *modelPath
	}
	if *threads > 0 {
		cfg.Search.Threads = *threads
	}
	config.SetupLogging(os.Stderr, cfg.LogLevel)

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("cpu-profile-create-failed")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("cpu-profile-start-failed")
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("file", profilePath).Msg("cpu-profile-enabled")
	}

	a, err := app.Open(cfg, app.Options{NoStorage: true})
	if err != nil {
		log.Fatal().Err(err).Msg("startup-failed")
	}

	h := protocol.New(a.Engine, os.Stdout)
	if err := h.Run(os.Stdin); err != nil {
		log.Error().Err(err).Msg("protocol-input-failed")
	}
}
