// Package game runs a human-versus-engine match: whose turn it is, the
// engine's replies, the displayed evaluation and recording finished games.
// It has no rendering; the graphical and terminal clients drive it.
package game

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hailam/fourplay/internal/board"
	"github.com/hailam/fourplay/internal/book"
	"github.com/hailam/fourplay/internal/engine"
	"github.com/hailam/fourplay/internal/storage"
)

// DefaultFirstMoveDepth is the depth of the engine's opening move when it
// plays Red. A deeper search gains nothing on the empty board.
const DefaultFirstMoveDepth = 1

// Recorder stores finished games.
type Recorder interface {
	RecordGame(rec *storage.GameRecord) error
}

// Option configures a Game.
type Option func(*Game)

// WithBook probes b before searching and stores results after.
func WithBook(b *book.Book) Option {
	return func(g *Game) { g.book = b }
}

// WithRecorder hands every finished game to r.
func WithRecorder(r Recorder) Option {
	return func(g *Game) { g.recorder = r }
}

// WithFirstMoveDepth sets the depth of the engine's move on an empty board.
func WithFirstMoveDepth(depth int) Option {
	return func(g *Game) { g.firstMoveDepth = depth }
}

// WithLimits replaces the difficulty's search limits with fixed ones.
func WithLimits(limits engine.SearchLimits) Option {
	return func(g *Game) { g.limits = &limits }
}

// WithLimitOverrides replaces the depth and move time of whatever
// difficulty the engine is set to. Zero keeps the difficulty's value.
func WithLimitOverrides(depth int, moveTime time.Duration) Option {
	return func(g *Game) {
		g.depthOverride = depth
		g.moveTimeOverride = moveTime
	}
}

// WithEvalName records which evaluator played.
func WithEvalName(name string) Option {
	return func(g *Game) { g.evalName = name }
}

// Game is one human-versus-engine match. It is not safe for concurrent
// use; Think may run on another goroutine as long as the caller applies
// its result with ApplyEngine on the goroutine that owns the Game.
type Game struct {
	eng            *engine.Engine
	book           *book.Book
	recorder       Recorder
	firstMoveDepth int
	limits         *engine.SearchLimits
	evalName       string

	depthOverride    int
	moveTimeOverride time.Duration

	board      board.Board
	human      board.Color
	moves      []int
	evaluation float64
	started    time.Time
	recorded   bool
}

// New creates a game with the human playing Red. Call Start to begin.
func New(eng *engine.Engine, opts ...Option) *Game {
	g := &Game{
		eng:            eng,
		firstMoveDepth: DefaultFirstMoveDepth,
		human:          board.RedPlayer,
		evalName:       "heuristic",
	}
	for _, opt := range opts {
		opt(g)
	}
	g.board = *board.NewBoard()
	g.started = time.Now()
	return g
}

// Start resets the board with the human playing human. When the engine
// plays Red it moves at once.
func (g *Game) Start(ctx context.Context, human board.Color) {
	g.board.Reset()
	g.human = human
	g.moves = g.moves[:0]
	g.evaluation = 0
	g.started = time.Now()
	g.recorded = false

	log.Debug().Str("human", human.String()).Msg("game-start")
	if g.EngineToMove() {
		g.ApplyEngine(g.Think(ctx))
	}
}

// Board returns a copy of the current position.
func (g *Game) Board() board.Board {
	return g.board
}

// Human returns the human's color.
func (g *Game) Human() board.Color {
	return g.human
}

// Moves returns the columns played so far.
func (g *Game) Moves() []int {
	return append([]int(nil), g.moves...)
}

// LastMove returns the last column played, or -1 before the first move.
func (g *Game) LastMove() int {
	if len(g.moves) == 0 {
		return -1
	}
	return g.moves[len(g.moves)-1]
}

// Evaluation returns the engine's score from its last move, from the
// engine's point of view.
func (g *Game) Evaluation() float64 {
	return g.evaluation
}

// Over reports whether the game has finished.
func (g *Game) Over() bool {
	return g.board.State().IsTerminal()
}

// HumanToMove reports whether the human may play now.
func (g *Game) HumanToMove() bool {
	return !g.Over() && g.board.SideToMove() == g.human
}

// EngineToMove reports whether the engine should play now.
func (g *Game) EngineToMove() bool {
	return !g.Over() && g.board.SideToMove() != g.human
}

// DropHuman plays the human's move. It returns false, changing nothing,
// when it is not the human's turn or the column is full. Only an
// out-of-range column is an error.
func (g *Game) DropHuman(col int) (bool, error) {
	if !g.HumanToMove() {
		return false, nil
	}
	ok, err := g.board.DropPiece(col)
	if err != nil || !ok {
		return false, err
	}
	g.played(col)
	return true, nil
}

// PlayHuman plays the human's move and, if the game goes on, the engine's
// reply.
func (g *Game) PlayHuman(ctx context.Context, col int) (bool, error) {
	ok, err := g.DropHuman(col)
	if !ok {
		return false, err
	}
	if g.EngineToMove() {
		g.ApplyEngine(g.Think(ctx))
	}
	return true, nil
}

// Think searches the current position for the side to move without
// playing. The book is consulted first when configured.
func (g *Game) Think(ctx context.Context) engine.MoveEvaluation {
	pos := g.board
	limits := g.searchLimits(&pos)

	if res, ok := g.book.Probe(&pos, limits.Depth); ok {
		log.Debug().Int("column", res.Column).Int("depth", limits.Depth).Msg("book-hit")
		return res
	}

	res := g.eng.SearchWithLimits(ctx, &pos, limits)
	if err := g.book.Store(&pos, g.eng.CompletedDepth(), res); err != nil {
		log.Warn().Err(err).Msg("book-store-failed")
	}
	return res
}

// Hint returns the engine's suggestion for the human without playing it.
func (g *Game) Hint(ctx context.Context) (engine.MoveEvaluation, bool) {
	if !g.HumanToMove() {
		return engine.MoveEvaluation{}, false
	}
	return g.Think(ctx), true
}

// ApplyEngine plays an engine result computed by Think. It returns false
// if the engine is not to move or the column cannot be played.
func (g *Game) ApplyEngine(res engine.MoveEvaluation) bool {
	if !g.EngineToMove() {
		return false
	}
	ok, err := g.board.DropPiece(res.Column)
	if err != nil || !ok {
		log.Warn().Int("column", res.Column).Err(err).Msg("engine-move-rejected")
		return false
	}
	g.evaluation = res.Score
	g.played(res.Column)
	return true
}

// StatusText describes the state of the game.
func (g *Game) StatusText() string {
	switch g.board.State() {
	case board.InProgress:
		return "Game in progress..."
	case board.RedWins:
		return "Game over! Red has won."
	case board.YellowWins:
		return "Game over! Yellow has won."
	case board.Tie:
		return "Game over! It's a tie"
	default:
		return "Invalid board state or other error"
	}
}

// EvaluationText formats the evaluation with three decimals.
func (g *Game) EvaluationText() string {
	return fmt.Sprintf("Value: %.3f", g.evaluation)
}

func (g *Game) searchLimits(pos *board.Board) engine.SearchLimits {
	if pos.MoveCount() == 0 && g.firstMoveDepth > 0 {
		return engine.SearchLimits{Depth: g.firstMoveDepth}
	}
	if g.limits != nil {
		return *g.limits
	}
	limits := engine.DifficultySettings[g.eng.Difficulty()]
	if g.depthOverride > 0 {
		limits.Depth = g.depthOverride
	}
	if g.moveTimeOverride > 0 {
		limits.MoveTime = g.moveTimeOverride
	}
	return limits
}

func (g *Game) played(col int) {
	g.moves = append(g.moves, col)
	if g.Over() {
		g.finish()
	}
}

func (g *Game) finish() {
	if g.recorded {
		return
	}
	g.recorded = true

	state := g.board.State()
	log.Info().Str("result", state.String()).Int("moves", len(g.moves)).Msg("game-over")
	if g.recorder == nil {
		return
	}

	humanColor := storage.ColorRed
	if g.human == board.YellowPlayer {
		humanColor = storage.ColorYellow
	}
	rec := &storage.GameRecord{
		Moves:       g.Moves(),
		Result:      state.String(),
		HumanColor:  humanColor,
		Difficulty:  storage.Difficulty(g.eng.Difficulty()),
		EvalKind:    g.evalName,
		StartedAt:   g.started,
		Duration:    time.Since(g.started),
		FinalPos:    g.board.Notation(),
		HumanWon:    state.Winner() == g.human,
		Draw:        state == board.Tie,
		EngineDepth: g.searchLimits(&g.board).Depth,
	}
	if err := g.recorder.RecordGame(rec); err != nil {
		log.Warn().Err(err).Msg("record-game-failed")
	}
}
