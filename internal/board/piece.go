package board

// Color represents a player.
type Color uint8

const (
	RedPlayer Color = iota
	YellowPlayer
	NoColor Color = 2
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// Piece returns the piece dropped by this player.
func (c Color) Piece() Piece {
	switch c {
	case RedPlayer:
		return Red
	case YellowPlayer:
		return Yellow
	default:
		return Empty
	}
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case RedPlayer:
		return "Red"
	case YellowPlayer:
		return "Yellow"
	default:
		return "NoColor"
	}
}

// ParseColor converts "red"/"x" or "yellow"/"o" to a Color.
func ParseColor(s string) (Color, bool) {
	switch s {
	case "red", "Red", "x", "X":
		return RedPlayer, true
	case "yellow", "Yellow", "o", "O":
		return YellowPlayer, true
	}
	return NoColor, false
}

// Piece is the content of a cell. The numeric values double as the
// evaluator input encoding.
type Piece int8

const (
	Empty  Piece = 0
	Red    Piece = 1
	Yellow Piece = -1
)

// Color returns the owner of the piece, or NoColor for an empty cell.
func (p Piece) Color() Color {
	switch p {
	case Red:
		return RedPlayer
	case Yellow:
		return YellowPlayer
	default:
		return NoColor
	}
}

// Valid reports whether p is one of the three cell values.
func (p Piece) Valid() bool {
	return p == Empty || p == Red || p == Yellow
}

// Char returns the notation character for the piece.
func (p Piece) Char() byte {
	switch p {
	case Red:
		return 'x'
	case Yellow:
		return 'o'
	default:
		return '.'
	}
}

// String returns the notation character as a string.
func (p Piece) String() string {
	return string(p.Char())
}

// PieceFromChar converts a notation character to a Piece.
func PieceFromChar(c byte) (Piece, bool) {
	switch c {
	case 'x', 'X':
		return Red, true
	case 'o', 'O':
		return Yellow, true
	case '.', 'b':
		return Empty, true
	}
	return Empty, false
}
