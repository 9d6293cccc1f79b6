package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/hailam/fourplay/internal/board"
	"github.com/hailam/fourplay/internal/eval"
)

// Config holds the search magnitudes. WinLoss is the score of a decided
// game and Bound the initial value of a node's running best. Leaf scores
// lie in [-1, 1], so Bound > WinLoss > 1 keeps the three ranges apart.
type Config struct {
	WinLoss float64
	Bound   float64
}

// DefaultConfig returns the magnitudes the engine normally plays with.
func DefaultConfig() Config {
	return Config{WinLoss: 10, Bound: 100}
}

// Validate checks the magnitudes are ordered Bound > WinLoss > 1.
func (c Config) Validate() error {
	if c.WinLoss <= 1 {
		return fmt.Errorf("win/loss value %v must exceed 1", c.WinLoss)
	}
	if c.Bound <= c.WinLoss {
		return fmt.Errorf("bound %v must exceed win/loss value %v", c.Bound, c.WinLoss)
	}
	return nil
}

// MoveEvaluation is a column and its score from the searching player's
// point of view. Column is 0 when no move was chosen.
type MoveEvaluation struct {
	Column int
	Score  float64
}

// Searcher performs the minimax search with alpha-beta pruning.
// Apart from the node counter and the stop flag it keeps no state, so
// one Searcher may run several searches at once.
type Searcher struct {
	eval     eval.Evaluator
	cfg      Config
	nodes    atomic.Uint64
	stopFlag atomic.Bool
}

// NewSearcher creates a searcher scoring leaves with ev.
func NewSearcher(ev eval.Evaluator, cfg Config) *Searcher {
	return &Searcher{eval: ev, cfg: cfg}
}

// Config returns the search magnitudes.
func (s *Searcher) Config() Config {
	return s.cfg
}

// Stop signals running searches to return early.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// Reset clears the stop flag and the node counter.
func (s *Searcher) Reset() {
	s.stopFlag.Store(false)
	s.nodes.Store(0)
}

// IsStopped returns true if the search has been stopped.
func (s *Searcher) IsStopped() bool {
	return s.stopFlag.Load()
}

// Nodes returns the number of positions visited since the last Reset.
func (s *Searcher) Nodes() uint64 {
	return s.nodes.Load()
}

// Leaf returns the evaluator's score of b for the given perspective.
func (s *Searcher) Leaf(b *board.Board, searcherIsRed bool) float64 {
	return s.eval.Evaluate(b.FeatureVector()).Score(searcherIsRed)
}

// Search returns the best column for the searching player and its score.
//
// Decided positions score +WinLoss, -WinLoss or 0 whatever the depth. At
// depth 0 the evaluator decides. Otherwise every valid column is tried in
// center-outward order on a copy of b; a score replaces the running best
// only when strictly better, so among equal scores the most central column
// wins. Siblings are skipped once alpha >= beta.
//
// A search cut short by Stop returns a meaningless result; callers that
// stop searches must discard it.
func (s *Searcher) Search(b *board.Board, depth int, alpha, beta float64, searcherIsRed, maximizing bool) MoveEvaluation {
	s.nodes.Add(1)

	switch b.State() {
	case board.RedWins:
		if searcherIsRed {
			return MoveEvaluation{Score: s.cfg.WinLoss}
		}
		return MoveEvaluation{Score: -s.cfg.WinLoss}
	case board.YellowWins:
		if searcherIsRed {
			return MoveEvaluation{Score: -s.cfg.WinLoss}
		}
		return MoveEvaluation{Score: s.cfg.WinLoss}
	case board.Tie:
		return MoveEvaluation{}
	}

	if depth <= 0 {
		return MoveEvaluation{Score: s.Leaf(b, searcherIsRed)}
	}

	moves := b.ValidColumns()
	if len(moves) == 0 {
		return MoveEvaluation{Score: s.Leaf(b, searcherIsRed)}
	}

	best := MoveEvaluation{Score: -s.cfg.Bound}
	if !maximizing {
		best.Score = s.cfg.Bound
	}

	for _, col := range moves {
		if s.stopFlag.Load() {
			break
		}

		child := *b
		child.DropPiece(col)
		score := s.Search(&child, depth-1, alpha, beta, searcherIsRed, !maximizing).Score

		if maximizing {
			if score > best.Score {
				best = MoveEvaluation{Column: col, Score: score}
				alpha = max(alpha, score)
				if alpha >= beta {
					break
				}
			}
		} else {
			if score < best.Score {
				best = MoveEvaluation{Column: col, Score: score}
				beta = min(beta, score)
				if alpha >= beta {
					break
				}
			}
		}
	}

	return best
}

// SearchRoot searches b from the side to move's point of view with the
// full window.
func (s *Searcher) SearchRoot(b *board.Board, depth int) MoveEvaluation {
	return s.Search(b, depth, -s.cfg.Bound, s.cfg.Bound, b.RedToMove(), true)
}
