package board

import (
	"errors"
	"testing"
)

func TestStartPosition(t *testing.T) {
	b := mustParse(t, StartPosition)
	if *b != *NewBoard() {
		t.Errorf("start position differs from NewBoard():\n%s", b)
	}
	if got := NewBoard().Notation(); got != StartPosition {
		t.Errorf("Notation() = %q, want %q", got, StartPosition)
	}
}

func TestNotationRoundTrip(t *testing.T) {
	positions := []string{
		StartPosition,
		"7/7/7/7/7/3x3 o",
		"7/7/7/7/ooo4/xxxx3 o",
		"x1x1o1o/x1x1o1o/o1o1x1x/o1o1x1x/x1x1o1o/x1x1o1o x",
		tiePosition,
	}

	for _, pos := range positions {
		b := mustParse(t, pos)
		if got := b.Notation(); got != pos {
			t.Errorf("Notation() = %q, want %q", got, pos)
		}
	}
}

func TestParsePositionErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		shape bool
	}{
		{"missing side", "7/7/7/7/7/7", false},
		{"bad side", "7/7/7/7/7/7 z", false},
		{"bad piece", "7/7/7/7/7/q6 x", false},
		{"too few rows", "7/7/7/7/7 x", true},
		{"short row", "7/7/7/7/7/6 x", true},
		{"long row", "7/7/7/7/7/x7 x", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParsePosition(tc.input)
			if err == nil {
				t.Fatalf("ParsePosition(%q) succeeded", tc.input)
			}
			if got := errors.Is(err, ErrShape); got != tc.shape {
				t.Errorf("errors.Is(err, ErrShape) = %v, want %v (err: %v)", got, tc.shape, err)
			}
		})
	}
}

func TestParsePositionRejectsIllegalPlacement(t *testing.T) {
	for _, pos := range []string{
		"7/7/7/7/x6/7 o",  // floating
		"7/7/7/7/7/xx5 o", // parity
	} {
		if _, err := ParsePosition(pos); !errors.Is(err, ErrInvalidPosition) {
			t.Errorf("ParsePosition(%q) error = %v, want ErrInvalidPosition", pos, err)
		}
	}
}

func TestPlayMoves(t *testing.T) {
	b := NewBoard()
	if err := b.PlayMoves([]int{3, 3, 4, 4, 5, 5, 6}); err != nil {
		t.Fatalf("PlayMoves: %v", err)
	}
	if b.State() != RedWins {
		t.Errorf("state = %v, want red wins", b.State())
	}

	b = NewBoard()
	if err := b.PlayMoves([]int{0, 0, 0, 0, 0, 0, 0}); err == nil {
		t.Error("expected error for move into full column")
	}

	b = NewBoard()
	err := b.PlayMoves([]int{3, 9})
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("error = %v, want ErrOutOfRange", err)
	}
	if b.MoveCount() != 1 {
		t.Errorf("move count = %d, want 1", b.MoveCount())
	}
}
