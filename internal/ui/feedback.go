package ui

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/hailam/fourplay/internal/board"
)

// ToastType selects a toast's colors.
type ToastType int

const (
	ToastInfo ToastType = iota
	ToastWarning
	ToastSuccess
)

// Toast is a short-lived notification.
type Toast struct {
	Message   string
	Type      ToastType
	StartTime time.Time
	Duration  time.Duration
}

// ToastManager stacks up to maxStack toasts over the board.
type ToastManager struct {
	toasts   []*Toast
	maxStack int
}

// NewToastManager creates a toast manager.
func NewToastManager() *ToastManager {
	return &ToastManager{maxStack: 3}
}

// Show displays a toast, dropping the oldest when the stack is full.
func (tm *ToastManager) Show(message string, toastType ToastType, duration time.Duration) {
	tm.toasts = append(tm.toasts, &Toast{
		Message:   message,
		Type:      toastType,
		StartTime: time.Now(),
		Duration:  duration,
	})
	if len(tm.toasts) > tm.maxStack {
		tm.toasts = tm.toasts[1:]
	}
}

// Update removes expired toasts.
func (tm *ToastManager) Update() {
	now := time.Now()
	active := tm.toasts[:0]
	for _, t := range tm.toasts {
		if now.Sub(t.StartTime) < t.Duration {
			active = append(active, t)
		}
	}
	tm.toasts = active
}

// Draw renders the active toasts centered over the board.
func (tm *ToastManager) Draw(screen *ebiten.Image, scale float64) {
	face := GetFaceWithSize(15 * scale)
	if face == nil {
		return
	}

	y := float64(BoardTop+16) * scale
	for _, t := range tm.toasts {
		elapsed := time.Since(t.StartTime).Seconds()
		duration := t.Duration.Seconds()

		alpha := 1.0
		const fade = 0.2
		if elapsed < fade {
			alpha = elapsed / fade
		} else if elapsed > duration-fade {
			alpha = (duration - elapsed) / fade
		}
		alpha = math.Max(0, math.Min(1, alpha))

		var bg color.RGBA
		switch t.Type {
		case ToastWarning:
			bg = color.RGBA{180, 60, 50, uint8(225 * alpha)}
		case ToastSuccess:
			bg = color.RGBA{50, 140, 70, uint8(225 * alpha)}
		default:
			bg = color.RGBA{45, 50, 62, uint8(225 * alpha)}
		}
		fg := color.RGBA{255, 255, 255, uint8(255 * alpha)}

		w, h := MeasureText(t.Message, face)
		padding := 12 * scale
		boxW, boxH := w+2*padding, h+2*padding
		x := float64(ScreenWidth)*scale/2 - boxW/2

		vector.DrawFilledRect(screen, float32(x), float32(y), float32(boxW), float32(boxH), bg, false)
		op := &text.DrawOptions{}
		op.GeoM.Translate(x+padding, y+padding)
		op.ColorScale.ScaleWithColor(fg)
		text.Draw(screen, t.Message, face, op)

		y += boxH + 8*scale
	}
}

// DropAnimation is a disc falling from the hover row into its cell.
type DropAnimation struct {
	Row, Col  int
	Color     board.Color
	StartTime time.Time
	Duration  time.Duration
}

// fallTime grows with the square root of the distance, like a free fall.
func fallTime(row int) time.Duration {
	return time.Duration(math.Sqrt(float64(row+1)) * float64(90*time.Millisecond))
}

// Y returns the disc's current logical y coordinate and whether it is
// still falling.
func (d *DropAnimation) Y() (int, bool) {
	_, endY := CellOrigin(d.Row, d.Col)
	p := float64(time.Since(d.StartTime)) / float64(d.Duration)
	if p >= 1 {
		return endY, false
	}
	return HoverTop + int(float64(endY-HoverTop)*p*p), true
}

// AnimationManager tracks the falling disc and the shake of a full column.
type AnimationManager struct {
	drop       *DropAnimation
	shakeCol   int
	shakeStart time.Time
}

const shakeDuration = 300 * time.Millisecond

// NewAnimationManager creates an animation manager.
func NewAnimationManager() *AnimationManager {
	return &AnimationManager{shakeCol: -1}
}

// StartDrop animates a disc of color c into row, col.
func (am *AnimationManager) StartDrop(row, col int, c board.Color) {
	am.drop = &DropAnimation{Row: row, Col: col, Color: c, StartTime: time.Now(), Duration: fallTime(row)}
}

// StartShake shakes the hover disc over a full column.
func (am *AnimationManager) StartShake(col int) {
	am.shakeCol = col
	am.shakeStart = time.Now()
}

// Update expires finished animations.
func (am *AnimationManager) Update() {
	if am.drop != nil {
		if _, falling := am.drop.Y(); !falling {
			am.drop = nil
		}
	}
	if am.shakeCol >= 0 && time.Since(am.shakeStart) >= shakeDuration {
		am.shakeCol = -1
	}
}

// Falling returns the disc in flight, nil when none is.
func (am *AnimationManager) Falling() *DropAnimation {
	return am.drop
}

// ShakeOffset returns the horizontal offset of the hover disc over col.
func (am *AnimationManager) ShakeOffset(col int) float64 {
	if col != am.shakeCol {
		return 0
	}
	p := time.Since(am.shakeStart).Seconds() / shakeDuration.Seconds()
	if p >= 1 {
		return 0
	}
	return 8 * math.Exp(-5*p) * math.Sin(40*p)
}

// FeedbackManager turns game events into sounds, toasts and animations.
type FeedbackManager struct {
	toasts     *ToastManager
	animations *AnimationManager
	audio      *AudioManager
}

// NewFeedbackManager creates a feedback manager.
func NewFeedbackManager() *FeedbackManager {
	return &FeedbackManager{
		toasts:     NewToastManager(),
		animations: NewAnimationManager(),
		audio:      NewAudioManager(),
	}
}

// Update advances toasts and animations.
func (fm *FeedbackManager) Update() {
	fm.toasts.Update()
	fm.animations.Update()
}

// Draw renders the toasts.
func (fm *FeedbackManager) Draw(screen *ebiten.Image, scale float64) {
	fm.toasts.Draw(screen, scale)
}

// Animations returns the animation manager for the renderer.
func (fm *FeedbackManager) Animations() *AnimationManager {
	return fm.animations
}

// Audio returns the audio manager.
func (fm *FeedbackManager) Audio() *AudioManager {
	return fm.audio
}

// OnDrop animates and sounds a disc landing in row, col.
func (fm *FeedbackManager) OnDrop(row, col int, c board.Color) {
	fm.animations.StartDrop(row, col, c)
	fm.audio.Play(SoundDrop)
}

// OnColumnFull rejects a drop into a full column.
func (fm *FeedbackManager) OnColumnFull(col int) {
	fm.toasts.Show(fmt.Sprintf("Column %d is full", col), ToastWarning, 2*time.Second)
	fm.animations.StartShake(col)
	fm.audio.Play(SoundInvalid)
}

// OnHint shows the engine's suggestion.
func (fm *FeedbackManager) OnHint(col int, score string) {
	fm.toasts.Show(fmt.Sprintf("Hint: column %d (%s)", col, score), ToastInfo, 3*time.Second)
	fm.audio.Play(SoundHint)
}

// OnMessage shows an informational toast.
func (fm *FeedbackManager) OnMessage(msg string) {
	fm.toasts.Show(msg, ToastInfo, 2*time.Second)
}

// OnGameOver announces the result from the human's side.
func (fm *FeedbackManager) OnGameOver(state board.State, human board.Color) {
	switch state.Winner() {
	case human:
		fm.toasts.Show("You win!", ToastSuccess, 5*time.Second)
		fm.audio.Play(SoundWin)
	case board.NoColor:
		fm.toasts.Show("It's a tie", ToastInfo, 5*time.Second)
		fm.audio.Play(SoundTie)
	default:
		fm.toasts.Show("The engine wins", ToastWarning, 5*time.Second)
		fm.audio.Play(SoundLoss)
	}
}
