package board

import (
	"errors"
	"fmt"

	"github.com/hailam/wideboard/internal/bitboard"
)

const (
	// MinSize is the smallest supported board. Below it the king-distance
	// guard in Step can no longer reject a knight step that wraps a file edge.
	MinSize = 5
	// MaxSize is the largest board that fits in a 256-bit bitboard.
	MaxSize = 16
	// StandardSize is the 16x16 board.
	StandardSize = 16
)

// ErrGeometry reports an invalid board size or a step computation that lands
// off its line without being rejected.
var ErrGeometry = errors.New("board geometry")

// Geometry holds the square indexing, masks and distance table for an NxN
// board. It is immutable after New and safe for concurrent use.
type Geometry struct {
	size     int
	squares  int
	all      bitboard.Bitboard
	files    []bitboard.Bitboard
	ranks    []bitboard.Bitboard
	distance []uint8 // [a*squares+b]
}

// New builds the geometry for a size x size board.
func New(size int) (*Geometry, error) {
	if size < MinSize || size > MaxSize {
		return nil, fmt.Errorf("%w: size %d outside [%d, %d]", ErrGeometry, size, MinSize, MaxSize)
	}

	g := &Geometry{
		size:    size,
		squares: size * size,
		files:   make([]bitboard.Bitboard, size),
		ranks:   make([]bitboard.Bitboard, size),
	}

	for sq := Square(0); int(sq) < g.squares; sq++ {
		bb := sq.BB()
		g.all = g.all.Or(bb)
		g.files[g.File(sq)] = g.files[g.File(sq)].Or(bb)
		g.ranks[g.Rank(sq)] = g.ranks[g.Rank(sq)].Or(bb)
	}

	g.distance = make([]uint8, g.squares*g.squares)
	for a := Square(0); int(a) < g.squares; a++ {
		for b := Square(0); int(b) < g.squares; b++ {
			g.distance[int(a)*g.squares+int(b)] = uint8(max(g.FileDistance(a, b), g.RankDistance(a, b)))
		}
	}

	return g, nil
}

// Standard returns the 16x16 geometry.
func Standard() *Geometry {
	g, err := New(StandardSize)
	if err != nil {
		panic(err)
	}
	return g
}

// Size returns the number of files (and ranks).
func (g *Geometry) Size() int {
	return g.size
}

// SquareCount returns the number of squares on the board.
func (g *Geometry) SquareCount() int {
	return g.squares
}

// All returns the set of all board squares.
func (g *Geometry) All() bitboard.Bitboard {
	return g.all
}

// FileBB returns the squares of a file.
func (g *Geometry) FileBB(file int) bitboard.Bitboard {
	return g.files[file]
}

// RankBB returns the squares of a rank.
func (g *Geometry) RankBB(rank int) bitboard.Bitboard {
	return g.ranks[rank]
}

// Edges returns the outer ranks and files that do not contain sq. Those
// squares end every ray that reaches them, so they never change a sliding
// attack set.
func (g *Geometry) Edges(sq Square) bitboard.Bitboard {
	last := g.size - 1
	ranks := g.ranks[0].Or(g.ranks[last]).AndNot(g.ranks[g.Rank(sq)])
	files := g.files[0].Or(g.files[last]).AndNot(g.files[g.File(sq)])
	return ranks.Or(files)
}

// FileDistance returns |file(a) - file(b)|.
func (g *Geometry) FileDistance(a, b Square) int {
	return abs(g.File(a) - g.File(b))
}

// RankDistance returns |rank(a) - rank(b)|.
func (g *Geometry) RankDistance(a, b Square) int {
	return abs(g.Rank(a) - g.Rank(b))
}

// Distance returns the king (Chebyshev) distance between two squares.
func (g *Geometry) Distance(a, b Square) int {
	return int(g.distance[int(a)*g.squares+int(b)])
}

// Dir returns the direction that moves df files and dr ranks.
func (g *Geometry) Dir(df, dr int) Direction {
	return Direction(dr*g.size + df)
}

// Step returns the destination of a single step from sq, or the empty set if
// the destination is off the board or more than two squares away, which is
// how a step that wraps around a file edge shows up in index space.
func (g *Geometry) Step(sq Square, d Direction) bitboard.Bitboard {
	to := int(sq) + int(d)
	if to < 0 || to >= g.squares || g.Distance(sq, Square(to)) > 2 {
		return bitboard.Empty
	}
	return Square(to).BB()
}

// RookDirections returns north, south, east and west.
func (g *Geometry) RookDirections() []Direction {
	return []Direction{g.Dir(0, 1), g.Dir(0, -1), g.Dir(1, 0), g.Dir(-1, 0)}
}

// BishopDirections returns the four diagonals.
func (g *Geometry) BishopDirections() []Direction {
	return []Direction{g.Dir(1, 1), g.Dir(1, -1), g.Dir(-1, -1), g.Dir(-1, 1)}
}

// QueenDirections returns all eight line directions.
func (g *Geometry) QueenDirections() []Direction {
	return append(g.RookDirections(), g.BishopDirections()...)
}

// KingSteps returns the eight single-square steps.
func (g *Geometry) KingSteps() []Direction {
	return g.QueenDirections()
}

// KnightSteps returns the eight knight jumps.
func (g *Geometry) KnightSteps() []Direction {
	return []Direction{
		g.Dir(1, 2), g.Dir(2, 1), g.Dir(2, -1), g.Dir(1, -2),
		g.Dir(-1, -2), g.Dir(-2, -1), g.Dir(-2, 1), g.Dir(-1, 2),
	}
}

// PawnSteps returns the two diagonal-forward capture steps for a color.
func (g *Geometry) PawnSteps(c Color) []Direction {
	forward := 1
	if c == Black {
		forward = -1
	}
	return []Direction{g.Dir(-1, forward), g.Dir(1, forward)}
}

// Validate cross-checks every step used by the attack generators against
// plain coordinate arithmetic. A step that lands somewhere other than its
// coordinate destination, or that is accepted off the board, is an
// ErrGeometry.
func (g *Geometry) Validate() error {
	type delta struct{ df, dr int }
	var deltas []delta
	for df := -2; df <= 2; df++ {
		for dr := -2; dr <= 2; dr++ {
			if df != 0 || dr != 0 {
				deltas = append(deltas, delta{df, dr})
			}
		}
	}

	for sq := Square(0); int(sq) < g.squares; sq++ {
		f, r := g.File(sq), g.Rank(sq)
		for _, d := range deltas {
			want := bitboard.Empty
			if g.OnBoard(f+d.df, r+d.dr) {
				want = g.Square(f+d.df, r+d.dr).BB()
			}
			got := g.Step(sq, g.Dir(d.df, d.dr))
			if got != want {
				return fmt.Errorf("%w: step (%+d,%+d) from %s gave %v",
					ErrGeometry, d.df, d.dr, g.SquareName(sq), got.Indices())
			}
			if !got.AndNot(g.all).IsEmpty() {
				return fmt.Errorf("%w: step (%+d,%+d) from %s left the board",
					ErrGeometry, d.df, d.dr, g.SquareName(sq))
			}
		}
	}
	return nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
