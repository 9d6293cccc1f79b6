package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/hailam/fourplay/internal/board"
	"github.com/hailam/fourplay/internal/engine"
	"github.com/hailam/fourplay/internal/eval"
)

func TestSummarize(t *testing.T) {
	is := is.New(t)
	results := []gameResult{
		{engine: board.RedPlayer, state: board.RedWins, moves: 7},
		{engine: board.YellowPlayer, state: board.RedWins, moves: 9},
		{engine: board.RedPlayer, state: board.Tie, moves: 42},
		{engine: board.YellowPlayer, state: board.YellowWins, moves: 10},
	}
	rep := summarize(results, time.Second)

	is.Equal(rep.Games, 4)
	is.Equal(rep.EngineWins, 2)
	is.Equal(rep.Losses, 1)
	is.Equal(rep.Draws, 1)
	is.Equal(rep.Score, 0.625)
	is.Equal(rep.AvgMoves, 17.0)
	is.Equal(rep.AsRed, ColorResult{Games: 2, Wins: 1})
	is.Equal(rep.AsYellow, ColorResult{Games: 2, Wins: 1})
	is.Equal(rep.Elapsed, "1s")

	is.Equal(summarize(nil, 0).Games, 0)
}

func TestRandomMoveIsPlayable(t *testing.T) {
	is := is.New(t)
	b := board.NewBoard()
	is.NoErr(b.PlayMoves([]int{3, 3, 3, 3, 3, 3}))
	for range 50 {
		col := randomMove(b)
		is.True(col >= 0 && col < board.Width)
		is.True(col != 3)
	}
}

func TestSelfPlayFinishesEveryGame(t *testing.T) {
	is := is.New(t)
	eng, err := engine.NewEngine(eval.NewHeuristic(), engine.DefaultConfig())
	is.NoErr(err)

	rep, err := runSelfPlay(context.Background(), eng, 4, engine.SearchLimits{Depth: 2})
	is.NoErr(err)
	is.Equal(rep.Games, 4)
	is.Equal(rep.EngineWins+rep.Losses+rep.Draws, 4)
	is.Equal(rep.AsRed.Games, 2)
	is.Equal(rep.AsYellow.Games, 2)
	is.True(rep.AvgMoves >= 7)
}

func TestSelfPlayStopsOnCancel(t *testing.T) {
	is := is.New(t)
	eng, err := engine.NewEngine(eval.NewHeuristic(), engine.DefaultConfig())
	is.NoErr(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = runSelfPlay(ctx, eng, 2, engine.SearchLimits{Depth: 2})
	is.True(err != nil)
}

func TestRunDataset(t *testing.T) {
	is := is.New(t)
	cells := make([]string, board.NumCells)
	for i := range cells {
		cells[i] = "b"
	}
	line := strings.Join(cells, ",") + ",draw\n"
	path := filepath.Join(t.TempDir(), "c4.data")
	is.NoErr(os.WriteFile(path, []byte(line+line), 0o644))

	rep, err := runDataset(eval.NewHeuristic(), path, "string", 0, 0)
	is.NoErr(err)
	is.Equal(rep.Examples, 2)
	is.Equal(rep.Format, "string")

	_, err = runDataset(eval.NewHeuristic(), path, "binary", 0, 0)
	is.True(err != nil)
}
