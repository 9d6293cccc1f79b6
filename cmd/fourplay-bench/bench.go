package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"lukechampine.com/frand"

	"github.com/hailam/fourplay/internal/board"
	"github.com/hailam/fourplay/internal/dataset"
	"github.com/hailam/fourplay/internal/engine"
	"github.com/hailam/fourplay/internal/eval"
	"github.com/hailam/fourplay/internal/game"
)

// Report is printed as YAML.
type Report struct {
	Evaluator string          `yaml:"evaluator"`
	Level     string          `yaml:"level"`
	Dataset   *DatasetReport  `yaml:"dataset,omitempty"`
	SelfPlay  *SelfPlayReport `yaml:"self_play,omitempty"`
}

type DatasetReport struct {
	File   string `yaml:"file"`
	Format string `yaml:"format"`
	dataset.Report `yaml:",inline"`
}

type SelfPlayReport struct {
	Games      int         `yaml:"games"`
	EngineWins int         `yaml:"engine_wins"`
	Losses     int         `yaml:"losses"`
	Draws      int         `yaml:"draws"`
	Score      float64     `yaml:"score"`
	AvgMoves   float64     `yaml:"avg_moves"`
	AsRed      ColorResult `yaml:"as_red"`
	AsYellow   ColorResult `yaml:"as_yellow"`
	Elapsed    string      `yaml:"elapsed"`
}

type ColorResult struct {
	Games int `yaml:"games"`
	Wins  int `yaml:"wins"`
}

// gameResult is one finished self-play game, seen from the engine.
type gameResult struct {
	engine board.Color
	state  board.State
	moves  int
}

func (r gameResult) engineWon() bool { return r.state.Winner() == r.engine }
func (r gameResult) draw() bool      { return r.state == board.Tie }

// runDataset scores ev on a CSV file.
func runDataset(ev eval.Evaluator, path, format string, start, n int) (*DatasetReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var examples []dataset.Example
	switch strings.ToLower(format) {
	case "numeric":
		examples, err = dataset.ReadNumeric(f, start, n)
	case "string":
		examples, err = dataset.ReadString(f, start, n)
	default:
		return nil, fmt.Errorf("unknown dataset format %q", format)
	}
	if err != nil {
		return nil, err
	}
	log.Info().Int("examples", len(examples)).Str("file", path).Msg("dataset-loaded")
	return &DatasetReport{File: path, Format: format, Report: dataset.Accuracy(ev, examples)}, nil
}

// randomMove picks a playable column uniformly.
func randomMove(b *board.Board) int {
	cols := b.ValidColumns()
	return cols[frand.Intn(len(cols))]
}

// playRandom plays one game of the engine against a random mover. The
// engine plays Red when engineRed is set.
func playRandom(ctx context.Context, g *game.Game, engineRed bool) (gameResult, error) {
	human := board.RedPlayer
	if engineRed {
		human = board.YellowPlayer
	}
	g.Start(ctx, human)
	for !g.Over() {
		if err := ctx.Err(); err != nil {
			return gameResult{}, err
		}
		b := g.Board()
		if _, err := g.PlayHuman(ctx, randomMove(&b)); err != nil {
			return gameResult{}, err
		}
	}
	b := g.Board()
	return gameResult{engine: human.Other(), state: b.State(), moves: len(g.Moves())}, nil
}

// runSelfPlay plays games against the random mover, alternating colors.
func runSelfPlay(ctx context.Context, eng *engine.Engine, games int, limits engine.SearchLimits) (*SelfPlayReport, error) {
	g := game.New(eng, game.WithLimits(limits))
	start := time.Now()

	results := make([]gameResult, 0, games)
	for i := 0; i < games; i++ {
		r, err := playRandom(ctx, g, i%2 == 0)
		if err != nil {
			return nil, err
		}
		log.Debug().Int("game", i+1).Str("result", r.state.String()).Int("moves", r.moves).Msg("self-play-game")
		results = append(results, r)
	}
	return summarize(results, time.Since(start)), nil
}

func summarize(results []gameResult, elapsed time.Duration) *SelfPlayReport {
	rep := &SelfPlayReport{
		Games:      len(results),
		EngineWins: lo.CountBy(results, gameResult.engineWon),
		Draws:      lo.CountBy(results, gameResult.draw),
		Elapsed:    elapsed.Round(time.Millisecond).String(),
	}
	rep.Losses = rep.Games - rep.EngineWins - rep.Draws
	if rep.Games == 0 {
		return rep
	}
	rep.Score = (float64(rep.EngineWins) + 0.5*float64(rep.Draws)) / float64(rep.Games)
	rep.AvgMoves = float64(lo.SumBy(results, func(r gameResult) int { return r.moves })) / float64(rep.Games)

	byColor := lo.GroupBy(results, func(r gameResult) board.Color { return r.engine })
	colorResult := func(c board.Color) ColorResult {
		rs := byColor[c]
		return ColorResult{Games: len(rs), Wins: lo.CountBy(rs, gameResult.engineWon)}
	}
	rep.AsRed = colorResult(board.RedPlayer)
	rep.AsYellow = colorResult(board.YellowPlayer)
	return rep
}
