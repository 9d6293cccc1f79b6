package board

// Zobrist hash keys for position hashing.
// Uses PRNG with fixed seed so hashes are stable across runs.
var (
	zobristPiece      [2][Height][Width]uint64 // [Color][Row][Column]
	zobristSideToMove uint64                   // XOR when yellow to move
)

func init() {
	initZobrist()
}

type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

// xorshift64* algorithm
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := newPRNG(0x4C3F0A11D1CE5EED)

	for c := RedPlayer; c <= YellowPlayer; c++ {
		for r := 0; r < Height; r++ {
			for col := 0; col < Width; col++ {
				zobristPiece[c][r][col] = rng.next()
			}
		}
	}

	zobristSideToMove = rng.next()
}

// computeHash hashes the position from scratch.
func (b *Board) computeHash() uint64 {
	var h uint64
	for r := 0; r < Height; r++ {
		for c := 0; c < Width; c++ {
			if color := b.grid[r][c].Color(); color != NoColor {
				h ^= zobristPiece[color][r][c]
			}
		}
	}
	if b.sideToMove == YellowPlayer {
		h ^= zobristSideToMove
	}
	return h
}
