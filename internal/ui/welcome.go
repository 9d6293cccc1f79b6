package ui

import (
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/hailam/fourplay/internal/board"
	"github.com/hailam/fourplay/internal/engine"
)

// Welcome screen dimensions
const (
	WelcomeWidth  = 400
	WelcomeHeight = 420
	WelcomePadX   = 32
	WelcomePadY   = 24
)

var (
	modalOverlay = color.RGBA{0, 0, 0, 150}
	modalBg      = color.RGBA{34, 37, 44, 245}
	modalBorder  = color.RGBA{68, 72, 78, 255}
)

// WelcomeChoice is what the player picked on the welcome screen.
type WelcomeChoice struct {
	Name       string
	Color      board.Color
	Difficulty engine.Difficulty
}

// WelcomeScreen asks for a name, a color and a level on first launch.
type WelcomeScreen struct {
	visible bool
	x, y    int

	nameInput  *TextInput
	colorGroup *ButtonGroup
	levelGroup *ButtonGroup
	startBtn   *ModalButton

	onComplete func(WelcomeChoice)
}

// NewWelcomeScreen creates a hidden welcome screen.
func NewWelcomeScreen() *WelcomeScreen {
	ws := &WelcomeScreen{
		x: (ScreenWidth - WelcomeWidth) / 2,
		y: (ScreenHeight - WelcomeHeight) / 2,
	}

	contentX := ws.x + WelcomePadX
	contentW := WelcomeWidth - WelcomePadX*2

	inputY := ws.y + 120
	ws.nameInput = NewTextInput(contentX, inputY, contentW, 40, "Enter your name", 20)
	ws.colorGroup = NewButtonGroup(contentX, inputY+84, []string{"Red (first)", "Yellow"}, 0, contentW/2, 36)
	ws.levelGroup = NewButtonGroup(contentX, inputY+164, []string{"Easy", "Medium", "Hard"}, int(engine.Medium), contentW/3, 36)

	btnW, btnH := 160, 44
	ws.startBtn = NewModalButton(ws.x+(WelcomeWidth-btnW)/2, ws.y+WelcomeHeight-WelcomePadY-btnH,
		btnW, btnH, "Start Playing", true, nil)
	ws.startBtn.OnClick = ws.handleStart
	return ws
}

// Show opens the screen; onComplete receives the choice.
func (ws *WelcomeScreen) Show(onComplete func(WelcomeChoice)) {
	ws.visible = true
	ws.onComplete = onComplete
	ws.nameInput.Value = ""
	ws.nameInput.SetFocused(true)
}

// Hide closes the screen.
func (ws *WelcomeScreen) Hide() {
	ws.visible = false
	ws.nameInput.SetFocused(false)
}

// IsVisible reports whether the screen is open.
func (ws *WelcomeScreen) IsVisible() bool {
	return ws.visible
}

func (ws *WelcomeScreen) handleStart() {
	name := strings.TrimSpace(ws.nameInput.Value)
	if name == "" {
		name = "Player"
	}
	choice := WelcomeChoice{
		Name:       name,
		Color:      board.RedPlayer,
		Difficulty: engine.Difficulty(ws.levelGroup.Selected),
	}
	if ws.colorGroup.Selected == 1 {
		choice.Color = board.YellowPlayer
	}
	ws.Hide()
	if ws.onComplete != nil {
		ws.onComplete(choice)
	}
}

// Update handles input. The open screen consumes all input.
func (ws *WelcomeScreen) Update(input *InputHandler) bool {
	if !ws.visible {
		return false
	}
	if IsKeyJustPressed(ebiten.KeyEnter) {
		ws.handleStart()
		return true
	}
	ws.nameInput.Update(input)
	ws.colorGroup.Update(input)
	ws.levelGroup.Update(input)
	ws.startBtn.Update(input)
	return true
}

// AnyButtonHovered reports whether the pointer cursor should show.
func (ws *WelcomeScreen) AnyButtonHovered() bool {
	return ws.visible && (ws.startBtn.IsHovered() || ws.colorGroup.IsHovered() || ws.levelGroup.IsHovered())
}

// Draw renders the screen over a dimmed board.
func (ws *WelcomeScreen) Draw(screen *ebiten.Image) {
	if !ws.visible {
		return
	}

	vector.DrawFilledRect(screen, 0, 0, px(ScreenWidth), px(ScreenHeight), modalOverlay, false)
	vector.DrawFilledRect(screen, px(ws.x), px(ws.y), px(WelcomeWidth), px(WelcomeHeight), modalBg, false)
	vector.StrokeRect(screen, px(ws.x), px(ws.y), px(WelcomeWidth), px(WelcomeHeight), px(2), modalBorder, false)

	ws.drawIcon(screen)
	ws.drawText(screen, "FOURPLAY", GetBoldFaceWithSize(24*UIScale), ws.x+WelcomeWidth/2, ws.y+70, textPrimary, text.AlignCenter)
	ws.drawText(screen, "Welcome! Set up your first game.", widgetFace(), ws.x+WelcomeWidth/2, ws.y+94, textSecondary, text.AlignCenter)

	contentX := ws.x + WelcomePadX
	ws.drawText(screen, "Your Name", widgetFace(), contentX, ws.nameInput.Y-14, textSecondary, text.AlignStart)
	ws.drawText(screen, "You Play", widgetFace(), contentX, ws.colorGroup.Y-14, textSecondary, text.AlignStart)
	ws.drawText(screen, "Engine Level", widgetFace(), contentX, ws.levelGroup.Y-14, textSecondary, text.AlignStart)

	ws.nameInput.Draw(screen)
	ws.colorGroup.Draw(screen)
	ws.levelGroup.Draw(screen)
	ws.startBtn.Draw(screen)
}

// drawIcon draws a red and a yellow disc side by side.
func (ws *WelcomeScreen) drawIcon(screen *ebiten.Image) {
	cx, cy := ws.x+WelcomeWidth/2, ws.y+34
	vector.DrawFilledCircle(screen, px(cx-11), px(cy), px(14), discStyles[board.RedPlayer].fill, true)
	vector.DrawFilledCircle(screen, px(cx+11), px(cy), px(14), discStyles[board.YellowPlayer].fill, true)
}

func (ws *WelcomeScreen) drawText(screen *ebiten.Image, s string, face *text.GoTextFace, x, y int, c color.Color, align text.Align) {
	if face == nil {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(px(x)), float64(px(y)))
	op.PrimaryAlign = align
	op.SecondaryAlign = text.AlignCenter
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, face, op)
}
