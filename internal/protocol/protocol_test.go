package protocol

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/hailam/fourplay/internal/board"
	"github.com/hailam/fourplay/internal/engine"
	"github.com/hailam/fourplay/internal/eval"
)

func run(t *testing.T, script ...string) []string {
	t.Helper()
	eng, err := engine.NewEngine(eval.NewHeuristic(), engine.DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	var out bytes.Buffer
	h := New(eng, &out)
	if err := h.Run(strings.NewReader(strings.Join(script, "\n") + "\n")); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
}

func linesWithPrefix(lines []string, prefix string) []string {
	var found []string
	for _, l := range lines {
		if strings.HasPrefix(l, prefix) {
			found = append(found, l)
		}
	}
	return found
}

func TestHello(t *testing.T) {
	lines := run(t, "c4p", "quit")
	if lines[0] != "id name FourPlay" {
		t.Errorf("first line = %q", lines[0])
	}
	if last := lines[len(lines)-1]; last != "c4pok" {
		t.Errorf("last line = %q, want c4pok", last)
	}
	if got := len(linesWithPrefix(lines, "option name")); got != 4 {
		t.Errorf("got %d options, want 4", got)
	}
}

func TestGoFindsWin(t *testing.T) {
	// Red holds 3, 4 and 5 on the bottom row; 2 and 6 both win and 2 is
	// searched first.
	lines := run(t,
		"position startpos moves 3 3 4 4 5 5",
		"go depth 4",
		"isready",
		"quit",
	)

	best := linesWithPrefix(lines, "bestmove")
	if len(best) != 1 || best[0] != "bestmove 2" {
		t.Fatalf("bestmove lines = %v, want [bestmove 2]", best)
	}
	info := linesWithPrefix(lines, "info depth")
	if len(info) != 1 {
		t.Fatalf("got %d info lines, want 1 (decided at depth 1): %v", len(info), info)
	}
	if !strings.Contains(info[0], "score win") || !strings.HasSuffix(info[0], "pv 2") {
		t.Errorf("info line = %q", info[0])
	}
	if lines[len(lines)-1] != "readyok" {
		t.Errorf("readyok must follow the search, got %q", lines[len(lines)-1])
	}
}

func TestGoMatchesEngine(t *testing.T) {
	const notation = "7/7/7/3o3/2xx3/1oxo1x1 o"
	lines := run(t,
		"position grid "+notation,
		"go depth 3",
		"isready",
		"quit",
	)

	b, err := board.ParsePosition(notation)
	if err != nil {
		t.Fatal(err)
	}
	eng, _ := engine.NewEngine(eval.NewHeuristic(), engine.DefaultConfig())
	want := eng.SearchWithLimits(t.Context(), b, engine.SearchLimits{Depth: 3})

	best := linesWithPrefix(lines, "bestmove")
	if len(best) != 1 || best[0] != "bestmove "+strconv.Itoa(want.Column) {
		t.Errorf("bestmove lines = %v, want column %d", best, want.Column)
	}
}

func TestGoOnFinishedGame(t *testing.T) {
	lines := run(t, "position grid 7/7/7/7/ooo4/xxxx3 o", "go", "quit")
	if got := linesWithPrefix(lines, "bestmove"); len(got) != 1 || got[0] != "bestmove none" {
		t.Errorf("bestmove lines = %v", got)
	}
}

func TestPositionErrorsKeepPreviousPosition(t *testing.T) {
	lines := run(t,
		"position startpos moves 3",
		"position grid 7/7/7 x",
		"position startpos moves 3 x",
		"position startpos moves 3 9",
		"position somewhere",
		"d",
		"quit",
	)

	if got := len(linesWithPrefix(lines, "info string invalid")); got != 4 {
		t.Errorf("got %d errors, want 4: %v", got, lines)
	}
	pos := linesWithPrefix(lines, "Position:")
	if len(pos) != 1 || pos[0] != "Position: 7/7/7/7/7/3x3 o" {
		t.Errorf("position lines = %v", pos)
	}
}

func TestEval(t *testing.T) {
	lines := run(t, "position startpos moves 3", "eval", "quit")

	b := board.NewBoard()
	b.DropPiece(3)
	h := eval.NewHeuristic()
	o := h.Evaluate(b.FeatureVector())
	want := EvalLine(o, o.Score(false))

	if got := linesWithPrefix(lines, "eval"); len(got) != 1 || got[0] != want {
		t.Errorf("eval lines = %v, want %q", got, want)
	}
}

func TestSetOption(t *testing.T) {
	eng, _ := engine.NewEngine(eval.NewHeuristic(), engine.DefaultConfig())
	var out bytes.Buffer
	h := New(eng, &out)

	script := strings.Join([]string{
		"setoption name Threads value 3",
		"setoption name Difficulty value hard",
		"setoption name Depth value 2",
		"setoption name Depth value deep",
		"setoption name Colour value red",
	}, "\n")
	if err := h.Run(strings.NewReader(script)); err != nil {
		t.Fatal(err)
	}

	if eng.Threads() != 3 {
		t.Errorf("threads = %d, want 3", eng.Threads())
	}
	if eng.Difficulty() != engine.Hard {
		t.Errorf("difficulty = %v, want hard", eng.Difficulty())
	}
	if h.depth != 2 {
		t.Errorf("depth = %d, want 2", h.depth)
	}
	if got := h.calculateLimits(GoOptions{}); got != (engine.SearchLimits{Depth: 2}) {
		t.Errorf("limits = %+v", got)
	}
	if !strings.Contains(out.String(), `info string invalid depth "deep"`) {
		t.Errorf("missing depth error in %q", out.String())
	}
	if !strings.Contains(out.String(), "info string unknown option Colour") {
		t.Errorf("missing option error in %q", out.String())
	}
}

func TestParseGoOptions(t *testing.T) {
	opts := parseGoOptions(strings.Fields("depth 5 movetime 250 ponder"))
	if opts.Depth != 5 || opts.MoveTime.Milliseconds() != 250 {
		t.Errorf("opts = %+v", opts)
	}
}
