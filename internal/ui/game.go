package ui

import (
	"context"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog/log"

	"github.com/hailam/fourplay/internal/board"
	"github.com/hailam/fourplay/internal/engine"
	"github.com/hailam/fourplay/internal/game"
	"github.com/hailam/fourplay/internal/storage"
)

// UIScale is the global HiDPI scale factor for all UI drawing.
var UIScale float64 = 1.0

const footerHelp = "1/2: Red/Yellow  N: new  H: hint  M: sound"

type thinkKind int

const (
	thinkMove thinkKind = iota
	thinkHint
)

type thinkResult struct {
	kind thinkKind
	res  engine.MoveEvaluation
}

// Options are the pieces the graphical client drives. Store may be nil.
type Options struct {
	Engine *engine.Engine
	Game   *game.Game
	Store  *storage.Storage
}

// Game implements ebiten.Game for a human-versus-engine match.
type Game struct {
	eng   *engine.Engine
	game  *game.Game
	store *storage.Storage
	prefs *storage.UserPreferences

	renderer   *Renderer
	input      *InputHandler
	feedback   *FeedbackManager
	welcome    *WelcomeScreen
	levelGroup *ButtonGroup

	// Engine searches run on one goroutine at a time; results come back
	// on thinkCh and are applied in Update.
	ctx      context.Context
	cancel   context.CancelFunc
	thinking bool
	thinkCh  chan thinkResult

	hoverCol int
	scale    float64
}

// NewGame creates the client and starts a game with the stored color
// preference. On first launch the welcome screen opens first.
func NewGame(opts Options) *Game {
	g := &Game{
		eng:      opts.Engine,
		game:     opts.Game,
		store:    opts.Store,
		renderer: NewRenderer(),
		input:    NewInputHandler(),
		feedback: NewFeedbackManager(),
		welcome:  NewWelcomeScreen(),
		thinkCh:  make(chan thinkResult, 1),
		scale:    1.0,
	}
	g.ctx, g.cancel = context.WithCancel(context.Background())

	footerY := BoardTop + BoardHeight + BoardMargin + (FooterHeight-32)/2
	g.levelGroup = NewButtonGroup(ScreenWidth-BoardMargin-3*70, footerY,
		[]string{"Easy", "Medium", "Hard"}, int(g.eng.Difficulty()), 70, 32)

	g.loadPreferences()
	if !g.checkFirstLaunch() {
		g.newGame(humanColor(g.prefs.PlayerColor))
	}
	return g
}

func humanColor(c storage.PlayerColor) board.Color {
	if c == storage.ColorYellow {
		return board.YellowPlayer
	}
	return board.RedPlayer
}

func (g *Game) loadPreferences() {
	g.prefs = storage.DefaultPreferences()
	g.prefs.Difficulty = storage.Difficulty(g.eng.Difficulty())
	if g.store == nil {
		return
	}

	prefs, err := g.store.LoadPreferences()
	if err != nil {
		log.Warn().Err(err).Msg("load-preferences-failed")
		return
	}
	g.prefs = prefs
	g.setDifficulty(engine.Difficulty(prefs.Difficulty))
	g.feedback.Audio().SetEnabled(prefs.SoundEnabled)
}

func (g *Game) savePreferences() {
	if g.store == nil {
		return
	}
	g.prefs.Difficulty = storage.Difficulty(g.eng.Difficulty())
	g.prefs.PlayerColor = storage.ColorRed
	if g.game.Human() == board.YellowPlayer {
		g.prefs.PlayerColor = storage.ColorYellow
	}
	g.prefs.SoundEnabled = g.feedback.Audio().IsEnabled()
	if err := g.store.SavePreferences(g.prefs); err != nil {
		log.Warn().Err(err).Msg("save-preferences-failed")
	}
}

// checkFirstLaunch opens the welcome screen on first launch and reports
// whether it did.
func (g *Game) checkFirstLaunch() bool {
	if g.store == nil {
		return false
	}
	first, err := g.store.IsFirstLaunch()
	if err != nil {
		log.Warn().Err(err).Msg("first-launch-check-failed")
		return false
	}
	if !first {
		return false
	}

	g.welcome.Show(func(choice WelcomeChoice) {
		g.prefs.Username = choice.Name
		g.setDifficulty(choice.Difficulty)
		if err := g.store.MarkFirstLaunchComplete(); err != nil {
			log.Warn().Err(err).Msg("mark-first-launch-failed")
		}
		g.newGame(choice.Color)
		g.savePreferences()
	})
	return true
}

func (g *Game) setDifficulty(d engine.Difficulty) {
	g.eng.SetDifficulty(d)
	g.levelGroup.Selected = int(d)
}

// Update handles one frame of input and engine results.
func (g *Game) Update() error {
	g.input.Update()
	g.feedback.Update()

	if g.welcome.IsVisible() {
		g.welcome.Update(g.input)
		g.updateCursor()
		return nil
	}

	g.checkEngineResult()
	g.handleKeys()

	if g.levelGroup.Update(g.input) {
		d := engine.Difficulty(g.levelGroup.Selected)
		g.eng.SetDifficulty(d)
		g.feedback.OnMessage("Level: " + d.String())
		g.savePreferences()
	} else {
		g.handleBoardInput()
	}

	g.updateCursor()
	return nil
}

func (g *Game) handleKeys() {
	switch {
	case IsKeyJustPressed(ebiten.Key1):
		g.newGame(board.RedPlayer)
		g.savePreferences()
	case IsKeyJustPressed(ebiten.Key2):
		g.newGame(board.YellowPlayer)
		g.savePreferences()
	case IsKeyJustPressed(ebiten.KeyN):
		g.newGame(g.game.Human())
	case IsKeyJustPressed(ebiten.KeyH):
		if g.game.HumanToMove() && !g.thinking {
			g.startThinking(thinkHint)
		}
	case IsKeyJustPressed(ebiten.KeyM):
		audio := g.feedback.Audio()
		audio.SetEnabled(!audio.IsEnabled())
		g.savePreferences()
	}
}

func (g *Game) handleBoardInput() {
	mx, my := g.input.MousePosition()
	g.hoverCol = ColumnAt(mx)

	if my < HoverTop || my >= BoardTop+BoardHeight || !g.input.IsLeftJustPressed() {
		return
	}
	if g.thinking || !g.game.HumanToMove() || g.feedback.Animations().Falling() != nil {
		return
	}

	ok, err := g.game.DropHuman(g.hoverCol)
	if err != nil {
		log.Warn().Err(err).Int("column", g.hoverCol).Msg("drop-rejected")
		return
	}
	if !ok {
		g.feedback.OnColumnFull(g.hoverCol)
		return
	}
	g.afterMove()
	if g.game.EngineToMove() {
		g.startThinking(thinkMove)
	}
}

// startThinking searches the position on a goroutine. The Game is not
// touched until the result is applied in checkEngineResult.
func (g *Game) startThinking(kind thinkKind) {
	g.thinking = true
	ctx := g.ctx
	go func() {
		g.thinkCh <- thinkResult{kind: kind, res: g.game.Think(ctx)}
	}()
}

func (g *Game) checkEngineResult() {
	if !g.thinking {
		return
	}
	select {
	case r := <-g.thinkCh:
		g.thinking = false
		switch r.kind {
		case thinkMove:
			if g.game.ApplyEngine(r.res) {
				g.afterMove()
			}
		case thinkHint:
			g.feedback.OnHint(r.res.Column, g.eng.ScoreString(r.res.Score))
		}
	default:
	}
}

// stopThinking cancels a running search and waits for it to finish.
func (g *Game) stopThinking() {
	if g.thinking {
		g.cancel()
		<-g.thinkCh
		g.thinking = false
	}
	g.ctx, g.cancel = context.WithCancel(context.Background())
}

// afterMove animates the last disc and announces the end of the game.
func (g *Game) afterMove() {
	col := g.game.LastMove()
	if col < 0 {
		return
	}
	b := g.game.Board()
	row := board.Height - b.ColumnHeight(col)
	p, err := b.PieceAt(row, col)
	if err == nil {
		g.feedback.OnDrop(row, col, p.Color())
	}
	if g.game.Over() {
		g.feedback.OnGameOver(b.State(), g.game.Human())
	}
}

func (g *Game) newGame(human board.Color) {
	g.stopThinking()
	g.game.Start(g.ctx, human)
	g.afterMove()
}

func (g *Game) updateCursor() {
	hovered := g.levelGroup.IsHovered()
	if g.welcome.IsVisible() {
		hovered = g.welcome.AnyButtonHovered()
	}
	if hovered {
		ebiten.SetCursorShape(ebiten.CursorShapePointer)
	} else {
		ebiten.SetCursorShape(ebiten.CursorShapeDefault)
	}
}

// Draw renders the frame.
func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.SetScale(g.scale)
	screen.Fill(g.renderer.Theme().Background)

	b := g.game.Board()
	g.renderer.DrawHeader(screen, g.game.StatusText(), g.detailText())

	anims := g.feedback.Animations()
	if g.game.HumanToMove() && !g.thinking && anims.Falling() == nil {
		g.renderer.DrawHover(screen, g.hoverCol, g.game.Human(), anims.ShakeOffset(g.hoverCol))
	}
	g.renderer.DrawBoard(screen, &b, g.game.LastMove(), anims.Falling())

	g.renderer.DrawFooterText(screen, footerHelp)
	g.levelGroup.Draw(screen)

	g.feedback.Draw(screen, g.scale)
	g.welcome.Draw(screen)
}

func (g *Game) detailText() string {
	s := g.game.EvaluationText()
	switch {
	case g.game.Over():
		return s
	case g.thinking:
		return s + "   Engine is thinking..."
	case g.game.HumanToMove():
		return fmt.Sprintf("%s   %s to move (%s)", s, g.prefs.Username, g.game.Human())
	default:
		return s
	}
}

// Layout returns the screen size in device pixels.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.scale = ebiten.Monitor().DeviceScaleFactor()
	if g.scale < 1.0 {
		g.scale = 1.0
	}
	UIScale = g.scale
	return int(float64(ScreenWidth) * g.scale), int(float64(ScreenHeight) * g.scale)
}

// Close stops any running search.
func (g *Game) Close() {
	g.stopThinking()
	g.cancel()
}
