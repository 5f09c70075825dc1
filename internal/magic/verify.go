package magic

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hailam/wideboard/internal/bitboard"
	"github.com/hailam/wideboard/internal/board"
)

// VerifySquare checks every subset of sq's mask against ray casting.
func (t *Table) VerifySquare(g *board.Geometry, sq board.Square) error {
	dirs := sliderDirections(g, t.Kind)
	m := &t.Magics[sq]

	occ := bitboard.Empty
	for {
		want := g.SlidingAttack(dirs, sq, occ)
		if got := t.Lookup(sq, occ); got != want {
			return &VerifyError{Kind: t.Kind, Square: sq, Occupancy: occ, Got: got, Want: want}
		}
		occ = bitboard.NextSubset(occ, m.Mask)
		if occ.IsEmpty() {
			return nil
		}
	}
}

// Verify checks the whole table, square by square.
func (t *Table) Verify(g *board.Geometry) error {
	for sq := board.Square(0); int(sq) < len(t.Magics); sq++ {
		if err := t.VerifySquare(g, sq); err != nil {
			return err
		}
	}
	return nil
}

// VerifyParallel checks the whole table with up to workers goroutines
// (GOMAXPROCS when workers <= 0). The table is only read, so this may run
// while other goroutines query it.
func (t *Table) VerifyParallel(ctx context.Context, g *board.Geometry, workers int) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for sq := board.Square(0); int(sq) < len(t.Magics); sq++ {
		sq := sq
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return t.VerifySquare(g, sq)
		})
	}

	return eg.Wait()
}

// Collisions counts, per table, the occupancies that share a slot with an
// earlier occupancy of the same square. Constructive sharing is counted too;
// a destructive one is reported as a VerifyError.
func (t *Table) Collisions(g *board.Geometry) (int, error) {
	dirs := sliderDirections(g, t.Kind)
	shared := 0
	for sq := board.Square(0); int(sq) < len(t.Magics); sq++ {
		m := &t.Magics[sq]
		seen := make(map[int]bitboard.Bitboard, m.Size)
		occ := bitboard.Empty
		for {
			idx := m.Index(occ)
			want := g.SlidingAttack(dirs, sq, occ)
			if prev, ok := seen[idx]; ok {
				if prev != want {
					return shared, &VerifyError{Kind: t.Kind, Square: sq, Occupancy: occ, Got: prev, Want: want}
				}
				shared++
			}
			seen[idx] = want
			occ = bitboard.NextSubset(occ, m.Mask)
			if occ.IsEmpty() {
				break
			}
		}
	}
	return shared, nil
}
