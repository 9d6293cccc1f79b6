// Package engine chooses moves: a minimax searcher with alpha-beta pruning
// and an engine wrapper adding iterative deepening, time limits and
// parallel root search.
package engine

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/fourplay/internal/board"
	"github.com/hailam/fourplay/internal/eval"
)

// SearchInfo contains information about a completed iteration.
type SearchInfo struct {
	Depth  int
	Column int
	Score  float64
	Nodes  uint64
	Time   time.Duration
}

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth    int           // Maximum depth (0 = until the board is full)
	MoveTime time.Duration // Time for this move (0 = no limit)
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy   Difficulty = iota // 2 ply
	Medium                   // 4 ply
	Hard                     // 6 ply
)

// DifficultySettings maps difficulty to search limits.
var DifficultySettings = map[Difficulty]SearchLimits{
	Easy:   {Depth: 2, MoveTime: 500 * time.Millisecond},
	Medium: {Depth: 4, MoveTime: 2 * time.Second},
	Hard:   {Depth: 6, MoveTime: 5 * time.Second},
}

// String returns the lower-case name of the difficulty.
func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return fmt.Sprintf("difficulty(%d)", int(d))
	}
}

// ParseDifficulty parses "easy", "medium" or "hard".
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "medium", "":
		return Medium, nil
	case "hard":
		return Hard, nil
	default:
		return Medium, fmt.Errorf("unknown difficulty %q", s)
	}
}

// Engine is the Connect Four AI. It runs one search at a time.
type Engine struct {
	searcher   *Searcher
	tm         *TimeManager
	difficulty atomic.Int32 // set from UI goroutines during a search
	threads    int
	completed  int

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine scoring leaves with ev.
func NewEngine(ev eval.Evaluator, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		searcher: NewSearcher(ev, cfg),
		tm:       NewTimeManager(),
		threads:  1,
	}
	e.difficulty.Store(int32(Medium))
	return e, nil
}

// SetDifficulty sets the engine difficulty.
func (e *Engine) SetDifficulty(d Difficulty) {
	e.difficulty.Store(int32(d))
}

// Difficulty returns the engine difficulty.
func (e *Engine) Difficulty() Difficulty {
	return Difficulty(e.difficulty.Load())
}

// SetThreads sets how many root columns are searched concurrently.
func (e *Engine) SetThreads(n int) {
	if n < 1 {
		n = 1
	}
	e.threads = n
}

// Threads returns the number of root search goroutines.
func (e *Engine) Threads() int {
	return e.threads
}

// Config returns the search magnitudes.
func (e *Engine) Config() Config {
	return e.searcher.Config()
}

// Search finds the best move for the side to move using the difficulty's limits.
func (e *Engine) Search(ctx context.Context, b *board.Board) MoveEvaluation {
	return e.SearchWithLimits(ctx, b, DifficultySettings[e.Difficulty()])
}

// SearchWithLimits runs iterative deepening from depth 1 up to the limit.
// An iteration cut short by ctx or Stop is thrown away, so the result is
// always that of a complete search at some depth.
func (e *Engine) SearchWithLimits(ctx context.Context, b *board.Board, limits SearchLimits) MoveEvaluation {
	e.searcher.Reset()
	e.tm.Init(limits)

	if limits.MoveTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, limits.MoveTime)
		defer cancel()
	}
	// The stop callback must not outlive this search, or it would land
	// after the next search's Reset.
	stopped := make(chan struct{})
	stopSearch := context.AfterFunc(ctx, func() {
		e.searcher.Stop()
		close(stopped)
	})
	defer func() {
		if !stopSearch() {
			<-stopped
		}
	}()

	maxDepth := board.NumCells - b.MoveCount()
	if limits.Depth > 0 && limits.Depth < maxDepth {
		maxDepth = limits.Depth
	}
	if maxDepth < 1 {
		maxDepth = 1
	}

	var best MoveEvaluation
	completed := 0
	stability := 0
	winLoss := e.searcher.Config().WinLoss

	for depth := 1; depth <= maxDepth; depth++ {
		if depth > 1 && e.tm.PastOptimum() {
			break
		}

		result := e.SearchDepth(b, depth)
		if e.searcher.IsStopped() {
			break
		}

		if completed > 0 && result.Column == best.Column {
			stability++
		} else {
			stability = 0
		}
		best = result
		completed = depth

		info := SearchInfo{
			Depth:  depth,
			Column: best.Column,
			Score:  best.Score,
			Nodes:  e.searcher.Nodes(),
			Time:   e.tm.Elapsed(),
		}
		log.Debug().Int("depth", info.Depth).Int("column", info.Column).
			Float64("score", info.Score).Uint64("nodes", info.Nodes).
			Dur("time", info.Time).Msg("search-iteration")
		if e.OnInfo != nil {
			e.OnInfo(info)
		}

		// A decided game will not change with more depth.
		if best.Score >= winLoss || best.Score <= -winLoss {
			break
		}
		e.tm.AdjustForStability(stability)
	}

	if completed == 0 {
		// Nothing finished in time. Depth 1 costs a handful of evaluations
		// and is run on a fresh searcher the stop signal cannot reach.
		fallback := NewSearcher(e.searcher.eval, e.searcher.cfg)
		best = fallback.SearchRoot(b, 1)
		completed = 1
		log.Debug().Int("column", best.Column).Msg("search-fallback-depth-1")
	}
	e.completed = completed
	return best
}

// CompletedDepth returns the depth whose result the last SearchWithLimits
// returned.
func (e *Engine) CompletedDepth() int {
	return e.completed
}

// SearchDepth runs one complete search of b at depth from the side to
// move's point of view. With more than one thread the root columns are
// searched concurrently with the full window and the results are scanned in
// center-outward order with the same strict comparison as Searcher.Search,
// which yields the same column and score as the sequential search.
func (e *Engine) SearchDepth(b *board.Board, depth int) MoveEvaluation {
	if e.threads <= 1 || depth < 1 || b.State().IsTerminal() {
		return e.searcher.SearchRoot(b, depth)
	}

	s := e.searcher
	cfg := s.Config()
	red := b.RedToMove()
	moves := b.ValidColumns()
	scores := make([]float64, len(moves))

	s.nodes.Add(1)
	var g errgroup.Group
	g.SetLimit(e.threads)
	for i, col := range moves {
		g.Go(func() error {
			child := *b
			child.DropPiece(col)
			scores[i] = s.Search(&child, depth-1, -cfg.Bound, cfg.Bound, red, false).Score
			return nil
		})
	}
	_ = g.Wait() // workers never fail

	best := MoveEvaluation{Score: -cfg.Bound}
	for i, col := range moves {
		if scores[i] > best.Score {
			best = MoveEvaluation{Column: col, Score: scores[i]}
		}
	}
	return best
}

// Evaluate returns the leaf score of b for the given perspective.
func (e *Engine) Evaluate(b *board.Board, redPerspective bool) float64 {
	return e.searcher.Leaf(b, redPerspective)
}

// Outcome returns the evaluator's raw outcome for b.
func (e *Engine) Outcome(b *board.Board) eval.Outcome {
	return e.searcher.eval.Evaluate(b.FeatureVector())
}

// Stop stops the current search.
func (e *Engine) Stop() {
	e.searcher.Stop()
}

// Nodes returns the nodes visited by the last search.
func (e *Engine) Nodes() uint64 {
	return e.searcher.Nodes()
}

// ScoreString formats a score for display: "win" or "loss" for decided
// games, otherwise a signed value with two decimals.
func (e *Engine) ScoreString(score float64) string {
	winLoss := e.searcher.Config().WinLoss
	switch {
	case score >= winLoss:
		return "win"
	case score <= -winLoss:
		return "loss"
	default:
		return fmt.Sprintf("%+.2f", score)
	}
}
