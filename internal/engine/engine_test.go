package engine

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/hailam/fourplay/internal/board"
	"github.com/hailam/fourplay/internal/eval"
)

// weightedEval scores a position by a fixed weighted sum of its cells.
var weightedEval = eval.Func(func(f []float64) eval.Outcome {
	s := 0.0
	for i, v := range f {
		s += v * float64((i*7)%11-5)
	}
	v := math.Tanh(s / 20)
	if v >= 0 {
		return eval.Outcome{Win: v, Tie: 1 - v}
	}
	return eval.Outcome{Loss: -v, Tie: 1 + v}
})

// coarseEval only distinguishes three scores, so many moves tie.
var coarseEval = eval.Func(func(f []float64) eval.Outcome {
	center := 0.0
	for r := 0; r < board.Height; r++ {
		center += f[r*board.Width+3]
	}
	switch {
	case center > 0:
		return eval.Outcome{Win: 0.5, Tie: 0.5}
	case center < 0:
		return eval.Outcome{Loss: 0.5, Tie: 0.5}
	default:
		return eval.Neutral
	}
})

func newTestEngine(t *testing.T, ev eval.Evaluator) *Engine {
	t.Helper()
	e, err := NewEngine(ev, DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

// midGamePositions plays seeded random games and keeps unfinished positions.
func midGamePositions(seed int64, n int) []*board.Board {
	rng := rand.New(rand.NewSource(seed))
	var out []*board.Board
	for len(out) < n {
		b := board.NewBoard()
		moves := 4 + rng.Intn(14)
		for i := 0; i < moves && !b.State().IsTerminal(); i++ {
			cols := b.ValidColumns()
			b.DropPiece(cols[rng.Intn(len(cols))])
		}
		if !b.State().IsTerminal() {
			out = append(out, b)
		}
	}
	return out
}

// fullMinimax is the same search without pruning.
func fullMinimax(s *Searcher, b *board.Board, depth int, red, maximizing bool) MoveEvaluation {
	cfg := s.Config()
	switch b.State() {
	case board.RedWins:
		if red {
			return MoveEvaluation{Score: cfg.WinLoss}
		}
		return MoveEvaluation{Score: -cfg.WinLoss}
	case board.YellowWins:
		if red {
			return MoveEvaluation{Score: -cfg.WinLoss}
		}
		return MoveEvaluation{Score: cfg.WinLoss}
	case board.Tie:
		return MoveEvaluation{}
	}
	if depth == 0 {
		return MoveEvaluation{Score: s.Leaf(b, red)}
	}

	best := MoveEvaluation{Score: -cfg.Bound}
	if !maximizing {
		best.Score = cfg.Bound
	}
	for _, col := range b.ValidColumns() {
		child := *b
		child.DropPiece(col)
		score := fullMinimax(s, &child, depth-1, red, !maximizing).Score
		if (maximizing && score > best.Score) || (!maximizing && score < best.Score) {
			best = MoveEvaluation{Column: col, Score: score}
		}
	}
	return best
}

func TestConfigValidate(t *testing.T) {
	is := is.New(t)
	is.NoErr(DefaultConfig().Validate())
	is.Equal(DefaultConfig(), Config{WinLoss: 10, Bound: 100})
	is.True(Config{WinLoss: 1, Bound: 100}.Validate() != nil)
	is.True(Config{WinLoss: 10, Bound: 10}.Validate() != nil)

	_, err := NewEngine(eval.NewHeuristic(), Config{WinLoss: 5, Bound: 2})
	is.True(err != nil)
}

func TestDepthZeroIsLeafScore(t *testing.T) {
	is := is.New(t)
	s := NewSearcher(weightedEval, DefaultConfig())
	cfg := s.Config()

	for _, b := range midGamePositions(1, 30) {
		for _, red := range []bool{true, false} {
			want := weightedEval.Evaluate(b.FeatureVector()).Score(red)
			got := s.Search(b, 0, -cfg.Bound, cfg.Bound, red, true)
			is.Equal(got.Score, want)
		}
	}
}

func TestTerminalScores(t *testing.T) {
	is := is.New(t)
	s := NewSearcher(weightedEval, DefaultConfig())

	won, err := board.ParsePosition("7/7/7/7/ooo4/xxxx3 o")
	is.NoErr(err)
	for depth := 0; depth < 4; depth++ {
		is.Equal(s.Search(won, depth, -100, 100, true, true), MoveEvaluation{Score: 10})
		is.Equal(s.Search(won, depth, -100, 100, false, false), MoveEvaluation{Score: -10})
	}

	tie, err := board.ParsePosition("oxxooox/xooxxxo/oooxoxo/xxoxooo/xoxoxxx/xxooxox x")
	is.NoErr(err)
	is.Equal(s.Search(tie, 3, -100, 100, true, true), MoveEvaluation{})
}

func TestImmediateWin(t *testing.T) {
	is := is.New(t)
	s := NewSearcher(weightedEval, DefaultConfig())

	// Red completes the bottom row in column 3.
	b, err := board.ParsePosition("7/7/7/7/ooo4/xxx4 x")
	is.NoErr(err)
	for depth := 1; depth <= 4; depth++ {
		is.Equal(s.SearchRoot(b, depth), MoveEvaluation{Column: 3, Score: 10})
		// Yellow's view of the same position.
		is.Equal(s.Search(b, depth, -100, 100, false, false), MoveEvaluation{Column: 3, Score: -10})
	}

	// Columns 4 and 0 both win; 4 comes first.
	b, err = board.ParsePosition("7/7/7/7/1ooo3/1xxx3 x")
	is.NoErr(err)
	for depth := 1; depth <= 2; depth++ {
		is.Equal(s.SearchRoot(b, depth), MoveEvaluation{Column: 4, Score: 10})
	}
}

func TestSearchLeavesBoardUntouched(t *testing.T) {
	is := is.New(t)
	s := NewSearcher(eval.NewHeuristic(), DefaultConfig())
	b := midGamePositions(2, 1)[0]
	before := *b
	s.SearchRoot(b, 4)
	is.Equal(*b, before)
}

func TestPrunedMatchesExhaustive(t *testing.T) {
	evaluators := map[string]eval.Evaluator{
		"heuristic": eval.NewHeuristic(),
		"weighted":  weightedEval,
		"coarse":    coarseEval,
	}

	for name, ev := range evaluators {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			s := NewSearcher(ev, DefaultConfig())
			for _, b := range midGamePositions(3, 25) {
				for depth := 1; depth <= 4; depth++ {
					red := b.RedToMove()
					pruned := s.SearchRoot(b, depth)
					full := fullMinimax(s, b, depth, red, true)
					is.Equal(pruned, full)

					// Searching for the player not on move.
					pruned = s.Search(b, depth, -100, 100, !red, false)
					full = fullMinimax(s, b, depth, !red, false)
					is.Equal(pruned, full)
				}
			}
		})
	}
}

func TestPruningVisitsFewerNodes(t *testing.T) {
	is := is.New(t)
	s := NewSearcher(eval.NewHeuristic(), DefaultConfig())
	s.SearchRoot(board.NewBoard(), 5)
	is.True(s.Nodes() < 1+7+49+343+2401+16807)
}

func TestParallelMatchesSequential(t *testing.T) {
	is := is.New(t)
	seq := newTestEngine(t, coarseEval)
	par := newTestEngine(t, coarseEval)
	par.SetThreads(4)

	for _, b := range midGamePositions(4, 25) {
		for depth := 1; depth <= 4; depth++ {
			is.Equal(par.SearchDepth(b, depth), seq.SearchDepth(b, depth))
		}
	}
}

func TestConcurrentSearches(t *testing.T) {
	is := is.New(t)
	s := NewSearcher(weightedEval, DefaultConfig())
	b := midGamePositions(5, 1)[0]
	want := s.SearchRoot(b, 4)

	var wg sync.WaitGroup
	results := make([]MoveEvaluation, 6)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.SearchRoot(b, 4)
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		is.Equal(r, want)
	}
}

func TestIterativeDeepening(t *testing.T) {
	is := is.New(t)
	e := newTestEngine(t, eval.NewHeuristic())
	b := midGamePositions(6, 1)[0]

	var depths []int
	e.OnInfo = func(info SearchInfo) {
		depths = append(depths, info.Depth)
	}

	got := e.SearchWithLimits(context.Background(), b, SearchLimits{Depth: 4})
	if got.Score > -10 && got.Score < 10 {
		is.Equal(depths, []int{1, 2, 3, 4})
	}
	is.Equal(got, e.SearchDepth(b, depths[len(depths)-1]))
	is.Equal(e.CompletedDepth(), depths[len(depths)-1])
}

func TestSearchStopsAtDecidedScore(t *testing.T) {
	is := is.New(t)
	e := newTestEngine(t, eval.NewHeuristic())
	b, err := board.ParsePosition("7/7/7/7/1ooo3/1xxx3 x")
	is.NoErr(err)

	var depths []int
	e.OnInfo = func(info SearchInfo) {
		depths = append(depths, info.Depth)
	}
	got := e.SearchWithLimits(context.Background(), b, SearchLimits{Depth: 6})
	is.Equal(got, MoveEvaluation{Column: 4, Score: 10})
	is.Equal(depths, []int{1})
}

func TestCancelledSearchReturnsCompleteDepth(t *testing.T) {
	is := is.New(t)
	e := newTestEngine(t, eval.NewHeuristic())
	b := midGamePositions(7, 1)[0]

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got := e.SearchWithLimits(ctx, b, SearchLimits{Depth: 8})

	// Only depth 1 is guaranteed to finish before the stop lands.
	ref := newTestEngine(t, eval.NewHeuristic())
	var matched bool
	for depth := 1; depth <= 8; depth++ {
		if ref.SearchDepth(b, depth) == got {
			matched = true
			break
		}
	}
	is.True(matched)
	is.True(contains(b.ValidColumns(), got.Column))
}

func TestDifficultyLimits(t *testing.T) {
	is := is.New(t)
	is.Equal(DifficultySettings[Easy].Depth, 2)
	is.Equal(DifficultySettings[Medium].Depth, 4)
	is.Equal(DifficultySettings[Hard].Depth, 6)

	d, err := ParseDifficulty("Hard")
	is.NoErr(err)
	is.Equal(d, Hard)
	is.Equal(d.String(), "hard")
	_, err = ParseDifficulty("impossible")
	is.True(err != nil)
}

func TestEngineSearchUsesDifficulty(t *testing.T) {
	is := is.New(t)
	e := newTestEngine(t, eval.NewHeuristic())
	e.SetDifficulty(Easy)

	var last SearchInfo
	e.OnInfo = func(info SearchInfo) { last = info }
	got := e.Search(context.Background(), board.NewBoard())
	is.Equal(last.Depth, 2)
	is.Equal(got, e.SearchDepth(board.NewBoard(), 2))
}

func TestScoreString(t *testing.T) {
	is := is.New(t)
	e := newTestEngine(t, eval.NewHeuristic())
	is.Equal(e.ScoreString(10), "win")
	is.Equal(e.ScoreString(-10), "loss")
	is.Equal(e.ScoreString(0.4213), "+0.42")
	is.Equal(e.ScoreString(-0.5), "-0.50")
}

func TestTimeManager(t *testing.T) {
	is := is.New(t)
	tm := NewTimeManager()
	tm.Init(SearchLimits{})
	is.True(!tm.PastOptimum())

	tm.Init(SearchLimits{MoveTime: 1000})
	is.Equal(tm.MaximumTime(), SearchLimits{MoveTime: 1000}.MoveTime)
	is.Equal(tm.OptimumTime(), tm.MaximumTime()/2)
	tm.AdjustForStability(4)
	is.Equal(tm.OptimumTime(), tm.MaximumTime()/2*60/100)
}

func contains(cols []int, c int) bool {
	for _, x := range cols {
		if x == c {
			return true
		}
	}
	return false
}

func TestTimedOutSearchDoesNotStopTheNext(t *testing.T) {
	is := is.New(t)
	e := newTestEngine(t, eval.NewHeuristic())
	b := board.NewBoard()
	is.NoErr(b.PlayMoves([]int{3, 3}))

	for i := 0; i < 50; i++ {
		e.SearchWithLimits(context.Background(), b, SearchLimits{Depth: 6, MoveTime: time.Millisecond})

		got := e.SearchWithLimits(context.Background(), b, SearchLimits{Depth: 3})
		is.Equal(e.CompletedDepth(), 3)
		is.Equal(got, e.SearchDepth(b, 3))
	}
}
