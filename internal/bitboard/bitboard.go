// Package bitboard implements a fixed-width 256-bit set with one bit per board square.
//
// Word i holds bits [64i, 64i+64). Every aggregate operation (PopCount, LSB,
// MSB, PopLSB) walks the words in ascending order, word 0 first.
package bitboard

import (
	"fmt"
	"math/bits"
)

const (
	// Words is the number of 64-bit limbs in a Bitboard.
	Words = 4
	// WordBits is the width of one limb.
	WordBits = 64
	// Bits is the total width of a Bitboard.
	Bits = Words * WordBits
	// None is returned by LSB, MSB and PopLSB on an empty set.
	// It is never a valid bit index.
	None = Bits
)

// Bitboard is a 256-bit set. The zero value is the empty set.
type Bitboard [Words]uint64

// Special sets
var (
	Empty    Bitboard
	Universe = Bitboard{^uint64(0), ^uint64(0), ^uint64(0), ^uint64(0)}
)

// SquareBB returns a set holding only bit i. Indices outside [0, Bits) yield
// the empty set, so the off-board sentinel is never a member.
func SquareBB(i int) Bitboard {
	var b Bitboard
	if i < 0 || i >= Bits {
		return b
	}
	b[i>>6] = 1 << uint(i&63)
	return b
}

// FromUint64 returns a set whose low word is v.
func FromUint64(v uint64) Bitboard {
	return Bitboard{v}
}

// Low64 returns the low word.
func (b Bitboard) Low64() uint64 {
	return b[0]
}

// Set sets bit i.
func (b Bitboard) Set(i int) Bitboard {
	return b.Or(SquareBB(i))
}

// Clear clears bit i.
func (b Bitboard) Clear(i int) Bitboard {
	return b.AndNot(SquareBB(i))
}

// IsSet returns true if bit i is set.
func (b Bitboard) IsSet(i int) bool {
	if i < 0 || i >= Bits {
		return false
	}
	return b[i>>6]&(1<<uint(i&63)) != 0
}

// And returns b & c.
func (b Bitboard) And(c Bitboard) Bitboard {
	return Bitboard{b[0] & c[0], b[1] & c[1], b[2] & c[2], b[3] & c[3]}
}

// Or returns b | c.
func (b Bitboard) Or(c Bitboard) Bitboard {
	return Bitboard{b[0] | c[0], b[1] | c[1], b[2] | c[2], b[3] | c[3]}
}

// Xor returns b ^ c.
func (b Bitboard) Xor(c Bitboard) Bitboard {
	return Bitboard{b[0] ^ c[0], b[1] ^ c[1], b[2] ^ c[2], b[3] ^ c[3]}
}

// AndNot returns b &^ c.
func (b Bitboard) AndNot(c Bitboard) Bitboard {
	return Bitboard{b[0] &^ c[0], b[1] &^ c[1], b[2] &^ c[2], b[3] &^ c[3]}
}

// Not complements all 256 bits. Callers working on a smaller board restrict
// the result to the board themselves.
func (b Bitboard) Not() Bitboard {
	return Bitboard{^b[0], ^b[1], ^b[2], ^b[3]}
}

// Intersects returns true if b and c share a bit.
func (b Bitboard) Intersects(c Bitboard) bool {
	return b[0]&c[0]|b[1]&c[1]|b[2]&c[2]|b[3]&c[3] != 0
}

// IsEmpty returns true if no bits are set.
func (b Bitboard) IsEmpty() bool {
	return b[0]|b[1]|b[2]|b[3] == 0
}

// More returns true if there are any bits set.
func (b Bitboard) More() bool {
	return !b.IsEmpty()
}

// MoreThanOne returns true if at least two bits are set.
func (b Bitboard) MoreThanOne() bool {
	return !b.ClearLSB().IsEmpty()
}

// PopCount returns the number of set bits.
func (b Bitboard) PopCount() int {
	return bits.OnesCount64(b[0]) + bits.OnesCount64(b[1]) +
		bits.OnesCount64(b[2]) + bits.OnesCount64(b[3])
}

// LSB returns the lowest set bit, or None.
func (b Bitboard) LSB() int {
	for i, w := range b {
		if w != 0 {
			return i<<6 + bits.TrailingZeros64(w)
		}
	}
	return None
}

// MSB returns the highest set bit, or None.
func (b Bitboard) MSB() int {
	for i := Words - 1; i >= 0; i-- {
		if b[i] != 0 {
			return i<<6 + 63 - bits.LeadingZeros64(b[i])
		}
	}
	return None
}

// ClearLSB returns b with its lowest set bit cleared.
func (b Bitboard) ClearLSB() Bitboard {
	for i, w := range b {
		if w != 0 {
			b[i] = w & (w - 1)
			break
		}
	}
	return b
}

// PopLSB removes and returns the lowest set bit, or None if b is empty.
func (b *Bitboard) PopLSB() int {
	i := b.LSB()
	*b = b.ClearLSB()
	return i
}

// ForEach calls f for each set bit in ascending order.
func (b Bitboard) ForEach(f func(int)) {
	for b.More() {
		f(b.PopLSB())
	}
}

// Indices returns all set bits in ascending order.
func (b Bitboard) Indices() []int {
	out := make([]int, 0, b.PopCount())
	for b.More() {
		out = append(out, b.PopLSB())
	}
	return out
}

// String returns the words in hex, most significant word first.
func (b Bitboard) String() string {
	return fmt.Sprintf("%016x_%016x_%016x_%016x", b[3], b[2], b[1], b[0])
}
