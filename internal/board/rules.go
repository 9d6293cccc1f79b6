package board

// State is the game classification cached on the board.
type State uint8

const (
	InProgress State = iota
	RedWins
	YellowWins
	Tie
)

// IsTerminal reports whether the game is over.
func (s State) IsTerminal() bool {
	return s != InProgress
}

// Winner returns the winning color, or NoColor for a tie or a running game.
func (s State) Winner() Color {
	switch s {
	case RedWins:
		return RedPlayer
	case YellowWins:
		return YellowPlayer
	default:
		return NoColor
	}
}

// String returns a short description of the state.
func (s State) String() string {
	switch s {
	case InProgress:
		return "in progress"
	case RedWins:
		return "red wins"
	case YellowWins:
		return "yellow wins"
	case Tie:
		return "tie"
	default:
		return "invalid"
	}
}

// line directions as (dRow, dCol): horizontal, vertical, and the two diagonals.
var directions = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {-1, 1}}

// updateState recomputes the state from the whole grid.
func (b *Board) updateState() {
	switch {
	case b.hasWin(Red):
		b.state = RedWins
	case b.hasWin(Yellow):
		b.state = YellowWins
	case len(b.openColumns()) == 0:
		b.state = Tie
	default:
		b.state = InProgress
	}
}

// hasWin reports whether piece occupies Connect consecutive cells anywhere.
func (b *Board) hasWin(piece Piece) bool {
	for r := 0; r < Height; r++ {
		for c := 0; c < Width; c++ {
			if b.grid[r][c] != piece {
				continue
			}
			for _, d := range directions {
				if b.runFrom(r, c, d[0], d[1], piece) {
					return true
				}
			}
		}
	}
	return false
}

// runFrom checks the Connect cells starting at (r, c) along (dr, dc).
func (b *Board) runFrom(r, c, dr, dc int, piece Piece) bool {
	endR := r + dr*(Connect-1)
	endC := c + dc*(Connect-1)
	if endR < 0 || endR >= Height || endC < 0 || endC >= Width {
		return false
	}
	for i := 1; i < Connect; i++ {
		if b.grid[r+dr*i][c+dc*i] != piece {
			return false
		}
	}
	return true
}
