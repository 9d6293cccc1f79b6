package board

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

// tiePosition is a full board with no four in a row.
const tiePosition = "oxxooox/xooxxxo/oooxoxo/xxoxooo/xoxoxxx/xxooxox x"

func mustParse(t *testing.T, s string) *Board {
	t.Helper()
	b, err := ParsePosition(s)
	if err != nil {
		t.Fatalf("ParsePosition(%q): %v", s, err)
	}
	return b
}

func TestNewBoard(t *testing.T) {
	b := NewBoard()
	if b.State() != InProgress {
		t.Errorf("state = %v, want in progress", b.State())
	}
	if !b.RedToMove() {
		t.Error("expected red to move first")
	}
	if b.MoveCount() != 0 {
		t.Errorf("move count = %d, want 0", b.MoveCount())
	}
	want := []int{3, 4, 2, 5, 1, 6, 0}
	if got := b.ValidColumns(); !reflect.DeepEqual(got, want) {
		t.Errorf("ValidColumns() = %v, want %v", got, want)
	}
}

func TestDropPieceStacks(t *testing.T) {
	b := NewBoard()

	for i := 0; i < 2; i++ {
		ok, err := b.DropPiece(3)
		if err != nil || !ok {
			t.Fatalf("DropPiece(3) #%d = %v, %v", i+1, ok, err)
		}
	}

	bottom, _ := b.PieceAt(Height-1, 3)
	above, _ := b.PieceAt(Height-2, 3)
	if bottom != Red {
		t.Errorf("bottom of column 3 = %v, want red", bottom)
	}
	if above != Yellow {
		t.Errorf("second piece of column 3 = %v, want yellow", above)
	}
	if !b.RedToMove() {
		t.Error("turn should return to red")
	}
	if b.State() != InProgress {
		t.Errorf("state = %v, want in progress", b.State())
	}
}

func TestDropPieceOutOfRange(t *testing.T) {
	b := NewBoard()
	for _, col := range []int{-1, Width, 100} {
		ok, err := b.DropPiece(col)
		if ok {
			t.Errorf("DropPiece(%d) succeeded", col)
		}
		var rangeErr *OutOfRangeError
		if !errors.As(err, &rangeErr) || !errors.Is(err, ErrOutOfRange) {
			t.Errorf("DropPiece(%d) error = %v, want OutOfRangeError", col, err)
		}
	}
}

func TestDropPieceFullColumnLeavesBoardUnchanged(t *testing.T) {
	b := NewBoard()
	for i := 0; i < Height; i++ {
		if ok, _ := b.DropPiece(0); !ok {
			t.Fatalf("drop %d into column 0 rejected", i+1)
		}
	}

	before := *b
	ok, err := b.DropPiece(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("drop into full column accepted")
	}
	if *b != before {
		t.Error("board changed after rejected drop")
	}
}

func TestDropPieceAfterGameOver(t *testing.T) {
	b := NewBoard()
	// Red stacks column 0, yellow column 1.
	for _, col := range []int{0, 1, 0, 1, 0, 1, 0} {
		if ok, _ := b.DropPiece(col); !ok {
			t.Fatalf("drop into column %d rejected", col)
		}
	}
	if b.State() != RedWins {
		t.Fatalf("state = %v, want red wins", b.State())
	}

	before := *b
	ok, err := b.DropPiece(4)
	if err != nil || ok {
		t.Errorf("DropPiece after win = %v, %v; want false, nil", ok, err)
	}
	if *b != before {
		t.Error("board changed after drop on finished game")
	}
	if cols := b.ValidColumns(); len(cols) != 0 {
		t.Errorf("ValidColumns() on finished game = %v, want empty", cols)
	}
}

func TestValidColumnsCenterOutward(t *testing.T) {
	// Columns 0, 2, 4 and 6 full, 1, 3 and 5 empty, no line of four.
	b := mustParse(t, "x1x1o1o/x1x1o1o/o1o1x1x/o1o1x1x/x1x1o1o/x1x1o1o x")
	if b.State() != InProgress {
		t.Fatalf("state = %v, want in progress", b.State())
	}
	want := []int{3, 5, 1}
	if got := b.ValidColumns(); !reflect.DeepEqual(got, want) {
		t.Errorf("ValidColumns() = %v, want %v", got, want)
	}
}

func TestWinDetection(t *testing.T) {
	tests := []struct {
		name     string
		position string
		want     State
	}{
		{"horizontal bottom row", "7/7/7/7/ooo4/xxxx3 o", RedWins},
		{"vertical", "7/7/1o5/xo5/xo5/xo1x3 x", YellowWins},
		{"rising diagonal", "7/7/3x3/2xx3/1xxo3/xooo1o1 o", RedWins},
		{"falling diagonal", "7/7/o6/xo5/xxo4/xxxo1oo x", YellowWins},
		{"no line", "7/7/7/7/7/xxx1ooo x", InProgress},
		{"full board", tiePosition, Tie},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := mustParse(t, tc.position)
			if b.State() != tc.want {
				t.Errorf("State() = %v, want %v\n%s", b.State(), tc.want, b)
			}
		})
	}
}

func TestBothLinesResolveToSingleWinner(t *testing.T) {
	// Adversarial input where both colors have four in a row.
	b := mustParse(t, "7/7/7/7/oooo3/xxxx3 x")
	if b.State() != RedWins {
		t.Errorf("State() = %v, want red wins", b.State())
	}
}

func TestNewBoardFromGridErrors(t *testing.T) {
	emptyGrid := func() [][]Piece {
		g := make([][]Piece, Height)
		for r := range g {
			g[r] = make([]Piece, Width)
		}
		return g
	}

	t.Run("too few rows", func(t *testing.T) {
		_, err := NewBoardFromGrid(emptyGrid()[:Height-1], RedPlayer)
		var shapeErr *ShapeError
		if !errors.As(err, &shapeErr) || !errors.Is(err, ErrShape) {
			t.Errorf("error = %v, want ShapeError", err)
		}
	})

	t.Run("short row", func(t *testing.T) {
		g := emptyGrid()
		g[2] = g[2][:Width-1]
		_, err := NewBoardFromGrid(g, RedPlayer)
		if !errors.Is(err, ErrShape) {
			t.Errorf("error = %v, want ErrShape", err)
		}
	})

	t.Run("floating piece", func(t *testing.T) {
		g := emptyGrid()
		g[Height-1][4] = Red
		g[Height-3][4] = Yellow
		_, err := NewBoardFromGrid(g, RedPlayer)
		var posErr *InvalidPositionError
		if !errors.As(err, &posErr) {
			t.Fatalf("error = %v, want InvalidPositionError", err)
		}
		if posErr.Reason != "floating piece in column 4" {
			t.Errorf("reason = %q, want floating piece in column 4", posErr.Reason)
		}
	})

	t.Run("parity red to move", func(t *testing.T) {
		g := emptyGrid()
		g[Height-1][0] = Red
		_, err := NewBoardFromGrid(g, RedPlayer)
		if !errors.Is(err, ErrInvalidPosition) {
			t.Errorf("error = %v, want ErrInvalidPosition", err)
		}
	})

	t.Run("parity yellow to move", func(t *testing.T) {
		_, err := NewBoardFromGrid(emptyGrid(), YellowPlayer)
		if !errors.Is(err, ErrInvalidPosition) {
			t.Errorf("error = %v, want ErrInvalidPosition", err)
		}
	})

	t.Run("unknown value", func(t *testing.T) {
		g := emptyGrid()
		g[Height-1][0] = Piece(5)
		_, err := NewBoardFromGrid(g, RedPlayer)
		if !errors.Is(err, ErrInvalidPosition) {
			t.Errorf("error = %v, want ErrInvalidPosition", err)
		}
	})

	t.Run("valid", func(t *testing.T) {
		g := emptyGrid()
		g[Height-1][3] = Red
		b, err := NewBoardFromGrid(g, YellowPlayer)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.RedToMove() {
			t.Error("expected yellow to move")
		}
	})
}

func TestPieceAtOutOfRange(t *testing.T) {
	b := NewBoard()
	coords := [][2]int{{-1, 0}, {0, -1}, {Height, 0}, {0, Width}}
	for _, rc := range coords {
		_, err := b.PieceAt(rc[0], rc[1])
		var rangeErr *OutOfRangeError
		if !errors.As(err, &rangeErr) || !rangeErr.HasRow {
			t.Errorf("PieceAt(%d, %d) error = %v, want coordinate OutOfRangeError", rc[0], rc[1], err)
		}
	}
}

func TestReset(t *testing.T) {
	b := mustParse(t, "7/7/7/7/ooo4/xxxx3 o")
	b.Reset()
	if *b != *NewBoard() {
		t.Errorf("Reset() did not restore the empty board:\n%s", b)
	}
}

func TestCopyIsIndependent(t *testing.T) {
	b := NewBoard()
	b.DropPiece(3)

	cp := b.Copy()
	cp.DropPiece(3)
	value := *b
	value.DropPiece(4)

	if b.MoveCount() != 1 {
		t.Errorf("original board modified through copies: %d pieces", b.MoveCount())
	}
	if cp.MoveCount() != 2 || value.MoveCount() != 2 {
		t.Errorf("copies did not record their own moves")
	}
}

func TestFeatureVector(t *testing.T) {
	b := NewBoard()
	b.DropPiece(3)
	b.DropPiece(3)

	f := b.FeatureVector()
	if len(f) != NumCells {
		t.Fatalf("len = %d, want %d", len(f), NumCells)
	}
	if f[(Height-1)*Width+3] != 1 {
		t.Errorf("bottom of column 3 = %v, want 1", f[(Height-1)*Width+3])
	}
	if f[(Height-2)*Width+3] != -1 {
		t.Errorf("second piece of column 3 = %v, want -1", f[(Height-2)*Width+3])
	}
}

func TestFeatureVectorRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		b := randomBoard(rng, rng.Intn(30))

		f := b.FeatureVector()
		grid := make([][]Piece, Height)
		for r := range grid {
			grid[r] = make([]Piece, Width)
			for c := range grid[r] {
				grid[r][c] = Piece(f[r*Width+c])
			}
		}

		rebuilt, err := NewBoardFromGrid(grid, b.SideToMove())
		if err != nil {
			t.Fatalf("rebuild failed: %v\n%s", err, b)
		}
		if *rebuilt != *b {
			t.Fatalf("round trip mismatch:\n%s\nvs\n%s", b, rebuilt)
		}
	}
}

func TestExactlyOneStateOnRandomGames(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 300; i++ {
		b := NewBoard()
		for b.State() == InProgress {
			cols := b.ValidColumns()
			b.DropPiece(cols[rng.Intn(len(cols))])

			red, yellow := b.hasWin(Red), b.hasWin(Yellow)
			if red && yellow {
				t.Fatalf("both players won through legal play:\n%s", b)
			}
			switch b.State() {
			case RedWins:
				if !red {
					t.Fatalf("red wins without a line:\n%s", b)
				}
			case YellowWins:
				if !yellow {
					t.Fatalf("yellow wins without a line:\n%s", b)
				}
			case Tie:
				if red || yellow || len(b.openColumns()) != 0 {
					t.Fatalf("tie on unfinished board:\n%s", b)
				}
			}
		}
	}
}

// randomBoard plays up to n random moves, stopping early if the game ends.
func randomBoard(rng *rand.Rand, n int) *Board {
	b := NewBoard()
	for i := 0; i < n && b.State() == InProgress; i++ {
		cols := b.ValidColumns()
		b.DropPiece(cols[rng.Intn(len(cols))])
	}
	return b
}
