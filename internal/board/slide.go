package board

import "github.com/hailam/wideboard/internal/bitboard"

// SlidingAttack computes slider attacks by ray casting. Each ray adds the
// stepped-to square and stops after adding an occupied square or when the
// next step leaves the board. The origin square's own occupancy is ignored.
// This is the reference the magic tables are built from and verified against.
func (g *Geometry) SlidingAttack(dirs []Direction, sq Square, occupied bitboard.Bitboard) bitboard.Bitboard {
	var attacks bitboard.Bitboard

	for _, d := range dirs {
		s := sq
		for {
			to := g.Step(s, d)
			if to.IsEmpty() {
				break
			}
			attacks = attacks.Or(to)
			s = Square(to.LSB())
			if occupied.IsSet(int(s)) {
				break
			}
		}
	}

	return attacks
}

// RookAttack returns rook attacks by ray casting.
func (g *Geometry) RookAttack(sq Square, occupied bitboard.Bitboard) bitboard.Bitboard {
	return g.SlidingAttack(g.RookDirections(), sq, occupied)
}

// BishopAttack returns bishop attacks by ray casting.
func (g *Geometry) BishopAttack(sq Square, occupied bitboard.Bitboard) bitboard.Bitboard {
	return g.SlidingAttack(g.BishopDirections(), sq, occupied)
}

// SliderDirections returns the ray directions of a sliding piece type, or nil
// for non-sliders.
func (g *Geometry) SliderDirections(pt PieceType) []Direction {
	switch pt {
	case Rook:
		return g.RookDirections()
	case Bishop:
		return g.BishopDirections()
	case Queen:
		return g.QueenDirections()
	}
	return nil
}

// LeaperAttack returns the union of the valid single steps from sq.
func (g *Geometry) LeaperAttack(steps []Direction, sq Square) bitboard.Bitboard {
	var attacks bitboard.Bitboard
	for _, d := range steps {
		attacks = attacks.Or(g.Step(sq, d))
	}
	return attacks
}

// KnightAttack returns knight attacks from sq.
func (g *Geometry) KnightAttack(sq Square) bitboard.Bitboard {
	return g.LeaperAttack(g.KnightSteps(), sq)
}

// KingAttack returns king attacks from sq.
func (g *Geometry) KingAttack(sq Square) bitboard.Bitboard {
	return g.LeaperAttack(g.KingSteps(), sq)
}

// PawnAttack returns the diagonal-forward captures of a pawn of color c.
func (g *Geometry) PawnAttack(c Color, sq Square) bitboard.Bitboard {
	return g.LeaperAttack(g.PawnSteps(c), sq)
}
