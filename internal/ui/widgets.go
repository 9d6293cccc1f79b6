package ui

import (
	"image/color"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	widgetBg          = color.RGBA{48, 52, 58, 255}
	widgetBorder      = color.RGBA{68, 72, 78, 255}
	widgetHoverBg     = color.RGBA{65, 70, 78, 255}
	widgetPressedBg   = color.RGBA{40, 44, 50, 255}
	accentColor       = color.RGBA{30, 80, 190, 255}
	accentHover       = color.RGBA{60, 110, 220, 255}
	textPrimary       = color.RGBA{240, 240, 245, 255}
	textSecondary     = color.RGBA{170, 175, 185, 255}
	inputPlaceholder  = color.RGBA{120, 125, 135, 255}
	widgetFocusBorder = accentHover
)

// px scales a logical coordinate to device pixels.
func px(v int) float32 {
	return float32(float64(v) * UIScale)
}

func widgetFace() *text.GoTextFace {
	return GetFaceWithSize(14 * UIScale)
}

// drawLabel centers s in the logical rectangle x, y, w, h.
func drawLabel(screen *ebiten.Image, s string, x, y, w, h int, c color.Color) {
	face := widgetFace()
	if face == nil {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(px(x+w/2)), float64(px(y+h/2)))
	op.PrimaryAlign = text.AlignCenter
	op.SecondaryAlign = text.AlignCenter
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, face, op)
}

// TextInput is an editable single-line text field.
type TextInput struct {
	X, Y, W, H  int
	Value       string
	Placeholder string
	MaxLength   int
	focused     bool
	hovered     bool
	cursorBlink int
}

// NewTextInput creates a text field.
func NewTextInput(x, y, w, h int, placeholder string, maxLen int) *TextInput {
	return &TextInput{
		X: x, Y: y, W: w, H: h,
		Placeholder: placeholder,
		MaxLength:   maxLen,
	}
}

// Update applies clicks and typing. It returns true while focused.
func (ti *TextInput) Update(input *InputHandler) bool {
	ti.hovered = input.IsInBounds(ti.X, ti.Y, ti.W, ti.H)
	if input.IsLeftJustPressed() {
		ti.focused = ti.hovered
	}
	if !ti.focused {
		return false
	}

	ti.cursorBlink = (ti.cursorBlink + 1) % 60
	for _, c := range input.TypedChars() {
		if ti.MaxLength == 0 || utf8.RuneCountInString(ti.Value) < ti.MaxLength {
			ti.Value += string(c)
		}
	}
	if IsKeyJustPressed(ebiten.KeyBackspace) && ti.Value != "" {
		_, size := utf8.DecodeLastRuneInString(ti.Value)
		ti.Value = ti.Value[:len(ti.Value)-size]
	}
	if IsKeyJustPressed(ebiten.KeyEscape) {
		ti.focused = false
	}
	return true
}

// Draw renders the field.
func (ti *TextInput) Draw(screen *ebiten.Image) {
	bg := widgetBg
	if ti.hovered && !ti.focused {
		bg = color.RGBA{52, 56, 62, 255}
	}
	vector.DrawFilledRect(screen, px(ti.X), px(ti.Y), px(ti.W), px(ti.H), bg, false)

	border := widgetBorder
	if ti.focused {
		border = widgetFocusBorder
	} else if ti.hovered {
		border = accentColor
	}
	vector.StrokeRect(screen, px(ti.X), px(ti.Y), px(ti.W), px(ti.H), px(2), border, false)

	face := widgetFace()
	if face == nil {
		return
	}
	s, c := ti.Value, color.Color(textPrimary)
	if s == "" {
		s, c = ti.Placeholder, inputPlaceholder
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(px(ti.X+10)), float64(px(ti.Y+ti.H/2)))
	op.SecondaryAlign = text.AlignCenter
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, face, op)

	if ti.focused && ti.cursorBlink < 30 {
		var w float64
		if ti.Value != "" {
			w, _ = MeasureText(ti.Value, face)
			w += 2
		}
		vector.DrawFilledRect(screen, px(ti.X+10)+float32(w), px(ti.Y+8), px(2), px(ti.H-16), textPrimary, false)
	}
}

// IsFocused reports whether the field has focus.
func (ti *TextInput) IsFocused() bool {
	return ti.focused
}

// SetFocused sets the focus state.
func (ti *TextInput) SetFocused(focused bool) {
	ti.focused = focused
}

// ButtonGroup is a row of toggle buttons with one selected.
type ButtonGroup struct {
	X, Y     int
	Options  []string
	Selected int
	ButtonW  int
	ButtonH  int
	hovered  int
}

// NewButtonGroup creates a button group.
func NewButtonGroup(x, y int, options []string, selected int, buttonW, buttonH int) *ButtonGroup {
	return &ButtonGroup{
		X:        x,
		Y:        y,
		Options:  options,
		Selected: selected,
		ButtonW:  buttonW,
		ButtonH:  buttonH,
		hovered:  -1,
	}
}

// Update returns true when the selection changed.
func (bg *ButtonGroup) Update(input *InputHandler) bool {
	bg.hovered = -1
	for i := range bg.Options {
		x := bg.X + i*bg.ButtonW
		if !input.IsInBounds(x, bg.Y, bg.ButtonW, bg.ButtonH) {
			continue
		}
		bg.hovered = i
		if input.IsLeftJustPressed() && bg.Selected != i {
			bg.Selected = i
			return true
		}
	}
	return false
}

// IsHovered reports whether the mouse is over any button.
func (bg *ButtonGroup) IsHovered() bool {
	return bg.hovered >= 0
}

// Draw renders the group.
func (bg *ButtonGroup) Draw(screen *ebiten.Image) {
	for i, label := range bg.Options {
		x := bg.X + i*bg.ButtonW
		fill, fg := widgetBg, color.Color(textSecondary)
		switch {
		case i == bg.Selected:
			fill, fg = accentColor, textPrimary
		case i == bg.hovered:
			fill = widgetHoverBg
		}
		vector.DrawFilledRect(screen, px(x), px(bg.Y), px(bg.ButtonW), px(bg.ButtonH), fill, false)
		vector.StrokeRect(screen, px(x), px(bg.Y), px(bg.ButtonW), px(bg.ButtonH), px(1), widgetBorder, false)
		drawLabel(screen, label, x, bg.Y, bg.ButtonW, bg.ButtonH, fg)
	}
}

// ModalButton is a push button.
type ModalButton struct {
	X, Y, W, H int
	Label      string
	Primary    bool
	OnClick    func()
	hovered    bool
}

// NewModalButton creates a button.
func NewModalButton(x, y, w, h int, label string, primary bool, onClick func()) *ModalButton {
	return &ModalButton{
		X: x, Y: y, W: w, H: h,
		Label:   label,
		Primary: primary,
		OnClick: onClick,
	}
}

// IsHovered reports whether the mouse is over the button.
func (mb *ModalButton) IsHovered() bool {
	return mb.hovered
}

// Update fires OnClick on a click and reports whether it did.
func (mb *ModalButton) Update(input *InputHandler) bool {
	mb.hovered = input.IsInBounds(mb.X, mb.Y, mb.W, mb.H)
	if mb.hovered && input.IsLeftJustPressed() && mb.OnClick != nil {
		mb.OnClick()
		return true
	}
	return false
}

// Draw renders the button.
func (mb *ModalButton) Draw(screen *ebiten.Image) {
	fill := widgetBg
	if mb.Primary {
		fill = accentColor
		if mb.hovered {
			fill = accentHover
		}
	} else if mb.hovered {
		fill = widgetHoverBg
	}
	if mb.hovered && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		fill = widgetPressedBg
	}
	vector.DrawFilledRect(screen, px(mb.X), px(mb.Y), px(mb.W), px(mb.H), fill, false)
	vector.StrokeRect(screen, px(mb.X), px(mb.Y), px(mb.W), px(mb.H), px(1), widgetBorder, false)
	drawLabel(screen, mb.Label, mb.X, mb.Y, mb.W, mb.H, textPrimary)
}
