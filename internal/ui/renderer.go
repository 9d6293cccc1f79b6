package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/hailam/fourplay/internal/board"
)

// Layout in logical pixels. The hover row sits between the header and the
// board frame.
const (
	CellSize     = 80
	BoardMargin  = 24
	HeaderHeight = 84
	FooterHeight = 64
	HoverTop     = HeaderHeight
	BoardTop     = HoverTop + CellSize
	BoardWidth   = board.Width * CellSize
	BoardHeight  = board.Height * CellSize

	ScreenWidth  = BoardWidth + 2*BoardMargin
	ScreenHeight = BoardTop + BoardHeight + BoardMargin + FooterHeight

	discInset = 6
)

// Theme defines the color scheme.
type Theme struct {
	Background  color.RGBA
	Frame       color.RGBA
	FrameShadow color.RGBA
	Hole        color.RGBA
	LastMove    color.RGBA
	TextColor   color.RGBA
	TextMuted   color.RGBA
}

// DefaultTheme returns the default color theme.
func DefaultTheme() *Theme {
	return &Theme{
		Background:  color.RGBA{24, 26, 32, 255},
		Frame:       color.RGBA{30, 80, 190, 255},
		FrameShadow: color.RGBA{20, 55, 140, 255},
		Hole:        color.RGBA{24, 26, 32, 255},
		LastMove:    color.RGBA{255, 255, 255, 200},
		TextColor:   color.RGBA{235, 235, 235, 255},
		TextMuted:   color.RGBA{150, 155, 165, 255},
	}
}

// Renderer handles all drawing operations.
type Renderer struct {
	sprites *SpriteManager
	theme   *Theme
	scale   float64 // HiDPI scale factor
}

// NewRenderer creates a renderer with discs sized to the cells.
func NewRenderer() *Renderer {
	return &Renderer{
		sprites: NewSpriteManager(CellSize - 2*discInset),
		theme:   DefaultTheme(),
		scale:   1.0,
	}
}

// SetScale sets the HiDPI scale factor for rendering.
func (r *Renderer) SetScale(scale float64) {
	r.scale = scale
	r.sprites.SetScale(scale)
}

// s returns the scaled value for rendering.
func (r *Renderer) s(v int) float32 {
	return float32(float64(v) * r.scale)
}

// CellOrigin returns the logical top-left corner of a board cell.
func CellOrigin(row, col int) (int, int) {
	return BoardMargin + col*CellSize, BoardTop + row*CellSize
}

// DrawBoard draws the frame, the holes and every disc. lastMove marks the
// top disc of that column; pass -1 for none. A falling disc is drawn at
// its current height instead of its cell.
func (r *Renderer) DrawBoard(screen *ebiten.Image, b *board.Board, lastMove int, falling *DropAnimation) {
	vector.DrawFilledRect(screen, r.s(BoardMargin), r.s(BoardTop+6), r.s(BoardWidth), r.s(BoardHeight), r.theme.FrameShadow, false)
	vector.DrawFilledRect(screen, r.s(BoardMargin), r.s(BoardTop), r.s(BoardWidth), r.s(BoardHeight), r.theme.Frame, false)

	radius := r.s(CellSize/2 - discInset + 1)
	for row := 0; row < board.Height; row++ {
		for col := 0; col < board.Width; col++ {
			x, y := CellOrigin(row, col)
			cx, cy := r.s(x+CellSize/2), r.s(y+CellSize/2)

			p, _ := b.PieceAt(row, col)
			inFlight := falling != nil && falling.Row == row && falling.Col == col
			if p == board.Empty || inFlight {
				vector.DrawFilledCircle(screen, cx, cy, radius, r.theme.Hole, true)
				continue
			}
			r.sprites.DrawDisc(screen, p.Color(), float64(r.s(x+discInset)), float64(r.s(y+discInset)))
		}
	}

	if falling != nil {
		x, _ := CellOrigin(falling.Row, falling.Col)
		y, _ := falling.Y()
		r.sprites.DrawDisc(screen, falling.Color, float64(r.s(x+discInset)), float64(r.s(y+discInset)))
		return
	}

	if lastMove >= 0 && lastMove < board.Width {
		row := board.Height - b.ColumnHeight(lastMove)
		if row >= 0 && row < board.Height {
			x, y := CellOrigin(row, lastMove)
			vector.StrokeCircle(screen, r.s(x+CellSize/2), r.s(y+CellSize/2), r.s(8), r.s(2), r.theme.LastMove, true)
		}
	}
}

// DrawHover previews a drop of color c above column col, shifted by dx
// logical pixels.
func (r *Renderer) DrawHover(screen *ebiten.Image, col int, c board.Color, dx float64) {
	x := float64(BoardMargin+col*CellSize+discInset) + dx
	r.sprites.DrawGhost(screen, c, x*r.scale, float64(r.s(HoverTop+discInset)))
}

// DrawHeader draws the game state and evaluation lines above the board.
func (r *Renderer) DrawHeader(screen *ebiten.Image, status, value string) {
	r.drawCentered(screen, status, GetBoldFaceWithSize(statusFontSize*r.scale), HeaderHeight/3, r.theme.TextColor)
	r.drawCentered(screen, value, GetFaceWithSize(detailFontSize*r.scale), 2*HeaderHeight/3+4, r.theme.TextMuted)
}

// DrawFooterText draws a line of help text at the bottom left.
func (r *Renderer) DrawFooterText(screen *ebiten.Image, s string) {
	face := GetFaceWithSize(13 * r.scale)
	if face == nil {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(r.s(BoardMargin)), float64(r.s(ScreenHeight-FooterHeight/3)))
	op.PrimaryAlign = text.AlignStart
	op.SecondaryAlign = text.AlignCenter
	op.ColorScale.ScaleWithColor(r.theme.TextMuted)
	text.Draw(screen, s, face, op)
}

func (r *Renderer) drawCentered(screen *ebiten.Image, s string, face *text.GoTextFace, y int, c color.Color) {
	if face == nil {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(r.s(ScreenWidth/2)), float64(r.s(y)))
	op.PrimaryAlign = text.AlignCenter
	op.SecondaryAlign = text.AlignCenter
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, face, op)
}

// Theme returns the current theme.
func (r *Renderer) Theme() *Theme {
	return r.theme
}
