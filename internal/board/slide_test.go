package board

import (
	"strings"
	"testing"

	"github.com/hailam/wideboard/internal/bitboard"
)

func squares(g *Geometry, names ...string) bitboard.Bitboard {
	var b bitboard.Bitboard
	for _, n := range names {
		sq, err := g.ParseSquare(n)
		if err != nil {
			panic(err)
		}
		b = b.Or(sq.BB())
	}
	return b
}

func TestRookCornerEmptyBoard(t *testing.T) {
	g := Standard()
	a1 := g.Square(0, 0)

	got := g.RookAttack(a1, bitboard.Empty)
	want := g.RankBB(0).Or(g.FileBB(0)).Clear(int(a1))
	if got != want {
		t.Fatalf("rook a1 attacks:\n%s", g.Pretty(got))
	}
	if got.PopCount() != 30 {
		t.Errorf("rook a1 attacks %d squares, want 30", got.PopCount())
	}
}

func TestRookCornerWithBlocker(t *testing.T) {
	g := Standard()
	a1 := g.Square(0, 0)
	blocker := g.Square(5, 0)

	got := g.RookAttack(a1, blocker.BB())
	east := squares(g, "b1", "c1", "d1", "e1", "f1")
	north := g.FileBB(0).Clear(int(a1))
	if want := east.Or(north); got != want {
		t.Fatalf("rook a1 with blocker f1:\n%s\nwant:\n%s", g.Pretty(got), g.Pretty(want))
	}
	if got.And(g.RankBB(0)).PopCount() != 5 {
		t.Errorf("east ray should stop at f1")
	}
}

func TestSlidingIgnoresOwnSquare(t *testing.T) {
	g := Standard()
	sq := g.Square(7, 7)
	if g.RookAttack(sq, sq.BB()) != g.RookAttack(sq, bitboard.Empty) {
		t.Error("occupancy of the origin square must not change the attack set")
	}
}

func TestBishopRays(t *testing.T) {
	g := Standard()
	sq, _ := g.ParseSquare("d4")

	got := g.BishopAttack(sq, squares(g, "f6", "b2"))
	want := squares(g, "e5", "f6", "c3", "b2", "c5", "b6", "a7", "e3", "f2", "g1")
	if got != want {
		t.Fatalf("bishop d4:\n%s\nwant:\n%s", g.Pretty(got), g.Pretty(want))
	}
}

func TestSlidingNeverLeavesBoard(t *testing.T) {
	for _, size := range []int{5, 8, 11, 16} {
		g, _ := New(size)
		for sq := Square(0); int(sq) < g.SquareCount(); sq++ {
			q := g.SlidingAttack(g.QueenDirections(), sq, bitboard.Empty)
			if !q.AndNot(g.All()).IsEmpty() {
				t.Fatalf("size %d: queen from %s leaves the board", size, g.SquareName(sq))
			}
			f, r := g.File(sq), g.Rank(sq)
			want := 2 * (size - 1)
			want += min(size-1-f, size-1-r) + min(f, r) + min(size-1-f, r) + min(f, size-1-r)
			if q.PopCount() != want {
				t.Fatalf("size %d: queen from %s attacks %d squares, want %d",
					size, g.SquareName(sq), q.PopCount(), want)
			}
		}
	}
}

func TestLeapers(t *testing.T) {
	g := Standard()
	tests := []struct {
		name string
		got  bitboard.Bitboard
		want int
	}{
		{"knight corner", g.KnightAttack(g.Square(0, 0)), 2},
		{"knight center", g.KnightAttack(g.Square(7, 7)), 8},
		{"knight edge", g.KnightAttack(g.Square(15, 7)), 4},
		{"king corner", g.KingAttack(g.Square(15, 15)), 3},
		{"king center", g.KingAttack(g.Square(7, 7)), 8},
		{"white pawn a-file", g.PawnAttack(White, g.Square(0, 3)), 1},
		{"white pawn center", g.PawnAttack(White, g.Square(7, 3)), 2},
		{"white pawn last rank", g.PawnAttack(White, g.Square(7, 15)), 0},
		{"black pawn p-file", g.PawnAttack(Black, g.Square(15, 3)), 1},
		{"black pawn first rank", g.PawnAttack(Black, g.Square(7, 0)), 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got.PopCount() != tc.want {
				t.Errorf("got %d squares, want %d:\n%s", tc.got.PopCount(), tc.want, g.Pretty(tc.got))
			}
		})
	}

	c3, _ := g.ParseSquare("c3")
	if got, want := g.PawnAttack(White, c3), squares(g, "b4", "d4"); got != want {
		t.Errorf("white pawn c3 = %v", got.Indices())
	}
	if got, want := g.PawnAttack(Black, c3), squares(g, "b2", "d2"); got != want {
		t.Errorf("black pawn c3 = %v", got.Indices())
	}
}

func TestPretty(t *testing.T) {
	g := Standard()
	s := g.Pretty(g.Square(0, 0).BB())
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) != 17 {
		t.Fatalf("Pretty has %d lines, want 17", len(lines))
	}
	if !strings.HasPrefix(lines[15], " 1 X ") {
		t.Errorf("rank 1 line = %q", lines[15])
	}
	if strings.Count(s, "X") != 1 {
		t.Errorf("Pretty marks %d squares, want 1", strings.Count(s, "X"))
	}
	if !strings.Contains(lines[16], "p") {
		t.Errorf("file legend = %q", lines[16])
	}
}
