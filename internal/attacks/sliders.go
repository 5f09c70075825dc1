package attacks

import (
	"fmt"
	"strings"

	"github.com/hailam/wideboard/internal/bitboard"
	"github.com/hailam/wideboard/internal/board"
	"github.com/hailam/wideboard/internal/magic"
)

// Sliders selects how rook and bishop attacks are answered.
type Sliders int

const (
	// SlidersAuto uses magic tables when they fit within the entry limit on
	// boards up to AutoMagicMaxSize, and precomputed rays otherwise.
	SlidersAuto Sliders = iota
	// SlidersMagic always uses magic tables; a table that does not fit is a
	// fatal error.
	SlidersMagic
	// SlidersRays uses per-direction ray tables and a blocker scan.
	SlidersRays
)

// AutoMagicMaxSize is the largest board on which SlidersAuto considers magic
// tables. Larger boards that would still fit (11x11 bishops, for one) need
// masks of 16 bits or more spread over a hundred-bit window, and nothing
// bounds how long their search takes.
const AutoMagicMaxSize = 10

func (s Sliders) String() string {
	switch s {
	case SlidersAuto:
		return "auto"
	case SlidersMagic:
		return "magic"
	case SlidersRays:
		return "rays"
	default:
		return fmt.Sprintf("Sliders(%d)", int(s))
	}
}

// ParseSliders parses "auto", "magic" or "rays".
func ParseSliders(s string) (Sliders, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return SlidersAuto, nil
	case "magic":
		return SlidersMagic, nil
	case "rays", "ray":
		return SlidersRays, nil
	}
	return SlidersAuto, fmt.Errorf("invalid sliders mode: %q", s)
}

// MarshalText encodes s by name, so configs read "auto", "magic" or "rays".
func (s Sliders) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts anything ParseSliders does.
func (s *Sliders) UnmarshalText(text []byte) error {
	v, err := ParseSliders(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// slider answers occupancy-dependent rook or bishop queries.
type slider interface {
	attacks(sq board.Square, occupied bitboard.Bitboard) bitboard.Bitboard
}

type magicSlider struct {
	table *magic.Table
}

func (m magicSlider) attacks(sq board.Square, occupied bitboard.Bitboard) bitboard.Bitboard {
	return m.table.Lookup(sq, occupied)
}

// raySlider holds the empty-board ray of every direction from every square.
// The nearest blocker on a ray is its lowest set square for directions that
// increase the square index and its highest for the others; everything past
// the blocker is the blocker's own ray in the same direction.
type raySlider struct {
	dirs     []board.Direction
	rays     [][]bitboard.Bitboard // [direction][square]
	positive []bool
}

func newRaySlider(g *board.Geometry, dirs []board.Direction) *raySlider {
	r := &raySlider{
		dirs:     dirs,
		rays:     make([][]bitboard.Bitboard, len(dirs)),
		positive: make([]bool, len(dirs)),
	}
	for i, d := range dirs {
		r.positive[i] = d > 0
		r.rays[i] = make([]bitboard.Bitboard, g.SquareCount())
		for sq := board.Square(0); int(sq) < g.SquareCount(); sq++ {
			r.rays[i][sq] = g.SlidingAttack([]board.Direction{d}, sq, bitboard.Empty)
		}
	}
	return r
}

func (r *raySlider) attacks(sq board.Square, occupied bitboard.Bitboard) bitboard.Bitboard {
	var attacks bitboard.Bitboard
	for i := range r.dirs {
		ray := r.rays[i][sq]
		blockers := ray.And(occupied)
		if !blockers.IsEmpty() {
			var b int
			if r.positive[i] {
				b = blockers.LSB()
			} else {
				b = blockers.MSB()
			}
			ray = ray.AndNot(r.rays[i][b])
		}
		attacks = attacks.Or(ray)
	}
	return attacks
}

func (r *raySlider) entries() int {
	return len(r.rays) * len(r.rays[0])
}
