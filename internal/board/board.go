// Package board implements the Connect Four rules: the grid, whose turn it
// is, and detection of wins and ties.
package board

import (
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Board dimensions.
const (
	Width    = 7
	Height   = 6
	Connect  = 4
	NumCells = Width * Height
)

// columnOrder lists columns from the center to the edges. ValidColumns
// preserves this order, which drives search exploration and tie-breaks.
var columnOrder = [Width]int{3, 4, 2, 5, 1, 6, 0}

// ColumnOrder returns the center-outward column order.
func ColumnOrder() []int {
	order := columnOrder
	return order[:]
}

// Board is a Connect Four position. It holds no pointers or slices, so a
// plain copy of the value is a fully independent board.
type Board struct {
	grid       [Height][Width]Piece // row 0 is the top row
	sideToMove Color
	state      State
	hash       uint64
}

// NewBoard creates the empty starting board with Red to move.
func NewBoard() *Board {
	b := &Board{}
	b.Reset()
	return b
}

// NewBoardFromGrid builds a board from an externally supplied grid.
// grid[0] is the top row. The grid must be Height x Width, contain only
// Empty/Red/Yellow, have no floating pieces and match the piece-count
// parity implied by toMove (Red moves first).
func NewBoardFromGrid(grid [][]Piece, toMove Color) (*Board, error) {
	if len(grid) != Height {
		cols := 0
		if len(grid) > 0 {
			cols = len(grid[0])
		}
		return nil, &ShapeError{Rows: len(grid), Columns: cols}
	}
	for _, row := range grid {
		if len(row) != Width {
			return nil, &ShapeError{Rows: len(grid), Columns: len(row)}
		}
	}
	if toMove != RedPlayer && toMove != YellowPlayer {
		return nil, &InvalidPositionError{Reason: "side to move must be red or yellow"}
	}

	b := &Board{sideToMove: toMove}
	for r := 0; r < Height; r++ {
		for c := 0; c < Width; c++ {
			p := grid[r][c]
			if !p.Valid() {
				return nil, &InvalidPositionError{Reason: "unknown cell value"}
			}
			b.grid[r][c] = p
		}
	}

	if err := b.checkPieces(); err != nil {
		return nil, err
	}

	b.updateState()
	b.hash = b.computeHash()
	return b, nil
}

// Copy returns an independent copy of the board.
func (b *Board) Copy() *Board {
	newBoard := *b
	return &newBoard
}

// Reset returns the board to the empty starting state.
func (b *Board) Reset() {
	b.grid = [Height][Width]Piece{}
	b.sideToMove = RedPlayer
	b.state = InProgress
	b.hash = b.computeHash()
}

// State returns the cached game state.
func (b *Board) State() State {
	return b.state
}

// SideToMove returns the player whose turn it is.
func (b *Board) SideToMove() Color {
	return b.sideToMove
}

// RedToMove reports whether Red is to move.
func (b *Board) RedToMove() bool {
	return b.sideToMove == RedPlayer
}

// Hash returns the Zobrist hash of the position.
func (b *Board) Hash() uint64 {
	return b.hash
}

// PieceAt returns the piece at (row, column), row 0 being the top.
func (b *Board) PieceAt(row, column int) (Piece, error) {
	if row < 0 || row >= Height || column < 0 || column >= Width {
		return Empty, &OutOfRangeError{Row: row, Column: column, HasRow: true}
	}
	return b.grid[row][column], nil
}

// ValidColumns returns the playable columns in center-outward order.
// It is empty once the game is over, even if cells remain free.
func (b *Board) ValidColumns() []int {
	if b.state != InProgress {
		return []int{}
	}
	return b.openColumns()
}

// openColumns ignores the game state and looks only at free cells.
func (b *Board) openColumns() []int {
	return lo.Filter(columnOrder[:], func(col int, _ int) bool {
		return b.columnBottom(col) >= 0
	})
}

// DropPiece drops the side to move's piece into column. It returns false,
// leaving the board untouched, when the column is full or the game is over.
func (b *Board) DropPiece(column int) (bool, error) {
	if column < 0 || column >= Width {
		return false, &OutOfRangeError{Column: column}
	}

	row := b.columnBottom(column)
	if b.state != InProgress || row < 0 {
		return false, nil
	}

	b.grid[row][column] = b.sideToMove.Piece()
	b.hash ^= zobristPiece[b.sideToMove][row][column]
	b.sideToMove = b.sideToMove.Other()
	b.hash ^= zobristSideToMove
	b.updateState()
	return true, nil
}

// FeatureVector flattens the grid row-major with Red = +1, Yellow = -1 and
// Empty = 0. This is the only representation evaluators see.
func (b *Board) FeatureVector() []float64 {
	features := make([]float64, NumCells)
	for i := range features {
		features[i] = float64(b.grid[i/Width][i%Width])
	}
	return features
}

// Grid returns a copy of the grid, row 0 first.
func (b *Board) Grid() [][]Piece {
	grid := make([][]Piece, Height)
	for r := range grid {
		grid[r] = make([]Piece, Width)
		copy(grid[r], b.grid[r][:])
	}
	return grid
}

// MoveCount returns the number of pieces on the board.
func (b *Board) MoveCount() int {
	return b.countPieces(Red) + b.countPieces(Yellow)
}

// ColumnHeight returns how many pieces column holds, or -1 if out of range.
func (b *Board) ColumnHeight(column int) int {
	if column < 0 || column >= Width {
		return -1
	}
	return Height - 1 - b.columnBottom(column)
}

// String renders the board as text, top row first.
func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteString(" 0 1 2 3 4 5 6\n")
	for r := 0; r < Height; r++ {
		sb.WriteByte('|')
		for c := 0; c < Width; c++ {
			if c > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteByte(b.grid[r][c].Char())
		}
		sb.WriteString("|\n")
	}
	if b.state == InProgress {
		sb.WriteString(b.sideToMove.String() + " to move\n")
	} else {
		sb.WriteString(b.state.String() + "\n")
	}
	return sb.String()
}

// columnBottom returns the lowest empty row of column, or -1 if it is full.
func (b *Board) columnBottom(column int) int {
	for row := Height - 1; row >= 0; row-- {
		if b.grid[row][column] == Empty {
			return row
		}
	}
	return -1
}

// checkPieces validates gravity and piece-count parity.
func (b *Board) checkPieces() error {
	for c := 0; c < Width; c++ {
		for r := 0; r < Height-1; r++ {
			if b.grid[r][c] != Empty && b.grid[r+1][c] == Empty {
				return &InvalidPositionError{Reason: "floating piece in column " + strconv.Itoa(c)}
			}
		}
	}

	red := b.countPieces(Red)
	yellow := b.countPieces(Yellow)
	if b.sideToMove == RedPlayer && red != yellow {
		return &InvalidPositionError{Reason: "red to move requires equal piece counts"}
	}
	if b.sideToMove == YellowPlayer && red != yellow+1 {
		return &InvalidPositionError{Reason: "yellow to move requires one extra red piece"}
	}
	return nil
}

func (b *Board) countPieces(p Piece) int {
	n := 0
	for r := 0; r < Height; r++ {
		for c := 0; c < Width; c++ {
			if b.grid[r][c] == p {
				n++
			}
		}
	}
	return n
}
