package board

import (
	"errors"
	"fmt"
)

// Sentinels matched by the concrete error types below.
var (
	ErrShape           = errors.New("board is of wrong shape")
	ErrInvalidPosition = errors.New("board is invalid")
	ErrOutOfRange      = errors.New("out of range")
)

// ShapeError reports a grid whose dimensions are not Height x Width.
type ShapeError struct {
	Rows    int
	Columns int // length of the first offending row, or 0 when Rows is wrong
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("board is of wrong shape: got %d rows x %d columns, want %d x %d",
		e.Rows, e.Columns, Height, Width)
}

func (e *ShapeError) Unwrap() error { return ErrShape }

// InvalidPositionError reports a grid that cannot arise from legal play:
// a floating piece, an unknown cell value or broken piece-count parity.
type InvalidPositionError struct {
	Reason string
}

func (e *InvalidPositionError) Error() string {
	return "board is invalid: " + e.Reason
}

func (e *InvalidPositionError) Unwrap() error { return ErrInvalidPosition }

// OutOfRangeError reports a column or coordinate outside the board.
type OutOfRangeError struct {
	Row    int
	Column int
	HasRow bool // false when only a column was given
}

func (e *OutOfRangeError) Error() string {
	if !e.HasRow {
		return fmt.Sprintf("column %d out of range [0, %d)", e.Column, Width)
	}
	return fmt.Sprintf("coordinate (%d, %d) out of range [0, %d) x [0, %d)",
		e.Row, e.Column, Height, Width)
}

func (e *OutOfRangeError) Unwrap() error { return ErrOutOfRange }
