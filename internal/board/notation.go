package board

import (
	"fmt"
	"strings"
)

// StartPosition is the notation of the empty board.
const StartPosition = "7/7/7/7/7/7 x"

// ParsePosition parses position notation: six rows from the top separated
// by '/', 'x' for red, 'o' for yellow and digits for runs of empty cells,
// followed by the side to move ('x' or 'o').
func ParsePosition(s string) (*Board, error) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid position: need 2 fields, got %d", len(parts))
	}

	grid, err := parsePlacement(parts[0])
	if err != nil {
		return nil, err
	}

	toMove, ok := ParseColor(parts[1])
	if !ok {
		return nil, fmt.Errorf("invalid side to move: %s", parts[1])
	}

	return NewBoardFromGrid(grid, toMove)
}

// parsePlacement parses the row section of the notation.
func parsePlacement(placement string) ([][]Piece, error) {
	rows := strings.Split(placement, "/")
	if len(rows) != Height {
		return nil, &ShapeError{Rows: len(rows)}
	}

	grid := make([][]Piece, Height)
	for r, rowStr := range rows {
		grid[r] = make([]Piece, 0, Width)
		for i := 0; i < len(rowStr); i++ {
			ch := rowStr[i]
			if ch >= '1' && ch <= '9' {
				for n := 0; n < int(ch-'0'); n++ {
					grid[r] = append(grid[r], Empty)
				}
				continue
			}
			piece, ok := PieceFromChar(ch)
			if !ok {
				return nil, fmt.Errorf("invalid piece character: %c", ch)
			}
			grid[r] = append(grid[r], piece)
		}
		if len(grid[r]) != Width {
			return nil, &ShapeError{Rows: Height, Columns: len(grid[r])}
		}
	}
	return grid, nil
}

// Notation returns the position notation of the board.
func (b *Board) Notation() string {
	var sb strings.Builder
	for r := 0; r < Height; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		empty := 0
		for c := 0; c < Width; c++ {
			p := b.grid[r][c]
			if p == Empty {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(p.Char())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
	}
	sb.WriteByte(' ')
	if b.sideToMove == RedPlayer {
		sb.WriteByte('x')
	} else {
		sb.WriteByte('o')
	}
	return sb.String()
}

// PlayMoves applies a sequence of columns to the board, stopping at the
// first move that is out of range or not accepted.
func (b *Board) PlayMoves(columns []int) error {
	for i, col := range columns {
		ok, err := b.DropPiece(col)
		if err != nil {
			return fmt.Errorf("move %d: %w", i+1, err)
		}
		if !ok {
			return fmt.Errorf("move %d: column %d not playable", i+1, col)
		}
	}
	return nil
}
