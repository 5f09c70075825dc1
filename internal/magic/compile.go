package magic

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/hailam/wideboard/internal/bitboard"
	"github.com/hailam/wideboard/internal/board"
)

const (
	// DefaultMaxEntries bounds one piece type's table: 4M entries, 128 MiB.
	DefaultMaxEntries = 1 << 22
	// DefaultMaxAttempts bounds the candidates verified for a single square.
	// Draws rejected by the top-byte filter are not counted.
	DefaultMaxAttempts = 1 << 23
	// maxDrawsPerAttempt bounds the filter rejections per verified
	// candidate, so a mask the filter never accepts still hits the cap.
	maxDrawsPerAttempt = 1 << 8

	// topByteShift selects bits 248..255 of the 256-bit product.
	topByteShift = bitboard.Bits - 8
	// minTopBits rejects candidates that spread too few mask bits into the
	// top byte; those almost never hash well.
	minTopBits = 6
	// minWindow is the narrowest multiplier window; masks spanning at most
	// this many bits hash exactly like a 64-bit magic.
	minWindow = 64
)

// Options controls a compilation. The zero value uses the defaults.
type Options struct {
	Seed        uint64
	MaxEntries  int
	MaxAttempts int

	// Hints are per-square multipliers tried before the random search,
	// typically loaded from a previous run. A zero or failing hint is
	// ignored; every multiplier is verified either way.
	Hints []bitboard.Bitboard

	// Observer receives progress notifications. May be nil.
	Observer Observer
}

func (o Options) withDefaults() Options {
	if o.MaxEntries <= 0 {
		o.MaxEntries = DefaultMaxEntries
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.Observer == nil {
		o.Observer = nopObserver{}
	}
	return o
}

func (o Options) hint(sq board.Square) bitboard.Bitboard {
	if int(sq) < len(o.Hints) {
		return o.Hints[sq]
	}
	return bitboard.Empty
}

// Mask returns the relevant occupancy mask of a slider on sq: its empty-board
// attacks without the outer ranks and files that do not contain sq.
func Mask(g *board.Geometry, kind board.PieceType, sq board.Square) bitboard.Bitboard {
	dirs := sliderDirections(g, kind)
	return g.SlidingAttack(dirs, sq, bitboard.Empty).AndNot(g.Edges(sq))
}

// Estimate returns the total number of table entries a piece type needs on
// this geometry and the widest mask, without allocating the table.
func Estimate(g *board.Geometry, kind board.PieceType) (entries uint64, maxBits int, err error) {
	if sliderDirections(g, kind) == nil {
		return 0, 0, fmt.Errorf("%w: %s", ErrNotSlider, kind)
	}
	for sq := board.Square(0); int(sq) < g.SquareCount(); sq++ {
		bits := Mask(g, kind, sq).PopCount()
		entries += 1 << uint(bits)
		maxBits = max(maxBits, bits)
	}
	return entries, maxBits, nil
}

func sliderDirections(g *board.Geometry, kind board.PieceType) []board.Direction {
	switch kind {
	case board.Rook, board.Bishop:
		return g.SliderDirections(kind)
	}
	return nil
}

// Compile builds the magic table for a rook or bishop on every square of g.
//
// Masks, shifts and offsets are laid out first and the total size is checked
// against opts.MaxEntries before anything is written. Each square then gets a
// multiplier that maps every subset of its mask to a slot holding the right
// attack set; two subsets may share a slot only if their attack sets are
// equal. Failure on any square fails the whole table.
func Compile(g *board.Geometry, kind board.PieceType, opts Options) (*Table, error) {
	dirs := sliderDirections(g, kind)
	if dirs == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotSlider, kind)
	}
	opts = opts.withDefaults()

	n := g.SquareCount()
	t := &Table{Kind: kind, Magics: make([]Magic, n)}

	var total uint64
	var overflow *CapacityError
	maxBits := 0
	for sq := board.Square(0); int(sq) < n; sq++ {
		m := &t.Magics[sq]
		m.Mask = g.SlidingAttack(dirs, sq, bitboard.Empty).AndNot(g.Edges(sq))
		bits := m.Mask.PopCount()
		m.Shift = uint(bitboard.Bits - bits)
		m.Offset = int(total)
		m.Size = 1 << uint(bits)
		total += uint64(m.Size)
		maxBits = max(maxBits, bits)
		if overflow == nil && total > uint64(opts.MaxEntries) {
			overflow = &CapacityError{Kind: kind, Square: sq, Max: opts.MaxEntries}
		}
	}
	if overflow != nil {
		overflow.Needed = total
		return nil, overflow
	}

	t.Attacks = make([]bitboard.Bitboard, total)

	// Scratch space shared by all squares. epoch[i] records the attempt that
	// last wrote slot i, so slots never need clearing between attempts.
	scratch := 1 << uint(maxBits)
	occupancy := make([]bitboard.Bitboard, scratch)
	reference := make([]bitboard.Bitboard, scratch)
	epoch := make([]uint64, scratch)
	var cnt uint64

	src := &rand.PCGSource{}

	for sq := board.Square(0); int(sq) < n; sq++ {
		m := &t.Magics[sq]
		slot := t.Attacks[m.Offset : m.Offset+m.Size]

		// Carry-Rippler: enumerate every subset of the mask exactly once.
		size := 0
		b := bitboard.Empty
		for {
			occupancy[size] = b
			reference[size] = g.SlidingAttack(dirs, sq, b)
			size++
			b = bitboard.NextSubset(b, m.Mask)
			if b.IsEmpty() {
				break
			}
		}

		verify := func(mult bitboard.Bitboard) bool {
			m.Multiplier = mult
			cnt++
			for i := 0; i < size; i++ {
				idx := m.Index(occupancy[i])
				if epoch[idx] < cnt {
					epoch[idx] = cnt
					slot[idx] = reference[i]
				} else if slot[idx] != reference[i] {
					return false
				}
			}
			return true
		}

		attempts := 0
		found := false
		if h := opts.hint(sq); !h.IsEmpty() {
			attempts++
			found = verify(h)
		}

		// Masks narrower than a byte cannot fill the top byte.
		need := min(minTopBits, m.Mask.PopCount())
		w := newWindow(m.Mask)

		src.Seed(opts.Seed + uint64(g.Rank(sq)))
		draws := 0
		for !found {
			if attempts >= opts.MaxAttempts || draws >= opts.MaxAttempts*maxDrawsPerAttempt {
				t.Attempts += attempts
				return nil, &SearchError{Kind: kind, Square: sq, Bits: m.Mask.PopCount(), Attempts: attempts}
			}
			draws++
			cand := w.place(sparseRand(src))
			if m.Mask.Mul(cand).Rsh(topByteShift).PopCount() < need {
				continue
			}
			attempts++
			found = verify(cand)
		}

		t.Attempts += attempts
		opts.Observer.SquareCompiled(kind, sq, m.Mask.PopCount(), attempts)
	}

	opts.Observer.KindCompiled(kind, len(t.Attacks), t.Attempts)
	return t, nil
}

// window confines candidate multipliers to the bits that can reach the top
// of the product. For a mask whose lowest bit is lo and whose bits span
// width positions, a candidate r placed at bit 256-width-lo gives
//
//	(occ * (r << (256-width-lo))) >> (256-bits)
//	    == (((occ >> lo) * r) mod 2^width) >> (width-bits)
//
// which is the classic single-word magic hash on a width-bit word. Bits
// below that position would only feed carries into the index.
type window struct {
	keep bitboard.Bitboard // low width bits
	lift uint
}

func newWindow(mask bitboard.Bitboard) window {
	if mask.IsEmpty() {
		return window{}
	}
	lo, hi := mask.LSB(), mask.MSB()
	width := min(max(minWindow, hi-lo+1), bitboard.Bits-lo)
	return window{
		keep: bitboard.Universe.Rsh(uint(bitboard.Bits - width)),
		lift: uint(bitboard.Bits - width - lo),
	}
}

func (w window) place(r bitboard.Bitboard) bitboard.Bitboard {
	return r.And(w.keep).Lsh(w.lift)
}

// sparseRand returns a multiplier with roughly one bit in eight set. Sparse
// candidates converge much faster than uniform ones.
func sparseRand(src *rand.PCGSource) bitboard.Bitboard {
	var b bitboard.Bitboard
	for i := range b {
		b[i] = src.Uint64() & src.Uint64() & src.Uint64()
	}
	return b
}
