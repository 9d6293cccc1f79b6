// Package ui is the graphical Connect Four client built on Ebitengine.
package ui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog/log"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/hailam/fourplay/internal/board"
)

// discSVG draws a disc with a darker rim and an inner ring.
const discSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100">
  <circle cx="50" cy="50" r="48" fill="%[2]s" fill-opacity="%[3]g"/>
  <circle cx="50" cy="50" r="42" fill="%[1]s" fill-opacity="%[3]g"/>
  <circle cx="50" cy="50" r="30" fill="none" stroke="%[2]s" stroke-width="4" stroke-opacity="%[3]g"/>
  <circle cx="38" cy="36" r="9" fill="#ffffff" fill-opacity="%[4]g"/>
</svg>`

// SpriteManager rasterizes the disc sprites.
type SpriteManager struct {
	discs       map[board.Color]*ebiten.Image
	ghosts      map[board.Color]*ebiten.Image
	size        int     // display size before HiDPI scaling
	renderScale float64 // oversampling factor for sharp downscaling
	scale       float64 // HiDPI scale
}

// NewSpriteManager creates discs of the given display size.
func NewSpriteManager(size int) *SpriteManager {
	sm := &SpriteManager{
		discs:       make(map[board.Color]*ebiten.Image),
		ghosts:      make(map[board.Color]*ebiten.Image),
		size:        size,
		renderScale: 3.0,
		scale:       1.0,
	}
	sm.loadDiscs()
	return sm
}

type discStyle struct {
	fill, rim color.RGBA
}

var discStyles = map[board.Color]discStyle{
	board.RedPlayer:    {fill: color.RGBA{220, 40, 40, 255}, rim: color.RGBA{150, 20, 20, 255}},
	board.YellowPlayer: {fill: color.RGBA{245, 205, 30, 255}, rim: color.RGBA{185, 145, 10, 255}},
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (sm *SpriteManager) loadDiscs() {
	renderSize := int(float64(sm.size) * sm.renderScale)

	for c, style := range discStyles {
		solid, err := rasterizeDisc(style, 1.0, 0.35, renderSize)
		if err != nil {
			log.Error().Err(err).Str("color", c.String()).Msg("disc-sprite-failed")
			continue
		}
		sm.discs[c] = solid

		ghost, err := rasterizeDisc(style, 0.45, 0.15, renderSize)
		if err != nil {
			log.Error().Err(err).Str("color", c.String()).Msg("ghost-sprite-failed")
			continue
		}
		sm.ghosts[c] = ghost
	}
}

func rasterizeDisc(style discStyle, opacity, shine float64, renderSize int) (*ebiten.Image, error) {
	svg := fmt.Sprintf(discSVG, hexColor(style.fill), hexColor(style.rim), opacity, shine)
	icon, err := oksvg.ReadIconStream(strings.NewReader(svg))
	if err != nil {
		return nil, err
	}
	icon.SetTarget(0, 0, float64(renderSize), float64(renderSize))

	rgba := image.NewRGBA(image.Rect(0, 0, renderSize, renderSize))
	scanner := rasterx.NewScannerGV(renderSize, renderSize, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(renderSize, renderSize, scanner)
	icon.Draw(raster, 1.0)

	return ebiten.NewImageFromImage(rgba), nil
}

// SetScale sets the HiDPI scale.
func (sm *SpriteManager) SetScale(scale float64) {
	sm.scale = scale
}

// DrawDisc draws a disc of color c with its top-left corner at x, y in
// device pixels.
func (sm *SpriteManager) DrawDisc(screen *ebiten.Image, c board.Color, x, y float64) {
	sm.draw(screen, sm.discs[c], x, y)
}

// DrawGhost draws the translucent disc that previews a drop.
func (sm *SpriteManager) DrawGhost(screen *ebiten.Image, c board.Color, x, y float64) {
	sm.draw(screen, sm.ghosts[c], x, y)
}

func (sm *SpriteManager) draw(screen, sprite *ebiten.Image, x, y float64) {
	if sprite == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	scale := sm.scale / sm.renderScale
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(x, y)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(sprite, op)
}

// Size returns the display size of a disc.
func (sm *SpriteManager) Size() int {
	return sm.size
}
