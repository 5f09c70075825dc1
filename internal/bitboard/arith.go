package bitboard

import "math/bits"

// Lsh returns b << n. Bits crossing a word boundary carry into the next
// higher word; n >= Bits yields the empty set.
func (b Bitboard) Lsh(n uint) Bitboard {
	var r Bitboard
	if n >= Bits {
		return r
	}
	w, s := int(n/WordBits), n%WordBits
	for i := Words - 1; i >= w; i-- {
		r[i] = b[i-w] << s
		// s == 0 would ask for a 64-bit shift of the lower word; skip it.
		if s != 0 && i-w-1 >= 0 {
			r[i] |= b[i-w-1] >> (WordBits - s)
		}
	}
	return r
}

// Rsh returns b >> n. Bits crossing a word boundary carry into the next
// lower word; n >= Bits yields the empty set.
func (b Bitboard) Rsh(n uint) Bitboard {
	var r Bitboard
	if n >= Bits {
		return r
	}
	w, s := int(n/WordBits), n%WordBits
	for i := 0; i+w < Words; i++ {
		r[i] = b[i+w] >> s
		if s != 0 && i+w+1 < Words {
			r[i] |= b[i+w+1] << (WordBits - s)
		}
	}
	return r
}

// Add returns b + c mod 2^256.
func (b Bitboard) Add(c Bitboard) Bitboard {
	var r Bitboard
	var carry uint64
	for i := 0; i < Words; i++ {
		r[i], carry = bits.Add64(b[i], c[i], carry)
	}
	return r
}

// Sub returns b - c mod 2^256 (two's complement, borrow propagated across
// all words).
func (b Bitboard) Sub(c Bitboard) Bitboard {
	var r Bitboard
	var borrow uint64
	for i := 0; i < Words; i++ {
		r[i], borrow = bits.Sub64(b[i], c[i], borrow)
	}
	return r
}

// Mul returns b * c mod 2^256. Schoolbook multiplication over 64-bit limbs;
// all four limbs of the truncated product are computed.
func (b Bitboard) Mul(c Bitboard) Bitboard {
	var r Bitboard
	for i := 0; i < Words; i++ {
		if b[i] == 0 {
			continue
		}
		var carry uint64
		for j := 0; i+j < Words; j++ {
			hi, lo := bits.Mul64(b[i], c[j])
			var k uint64
			lo, k = bits.Add64(lo, r[i+j], 0)
			hi += k
			lo, k = bits.Add64(lo, carry, 0)
			hi += k
			r[i+j] = lo
			carry = hi
		}
		// carry out of the top limb is the part above 2^256 and is dropped
	}
	return r
}

// NextSubset is one Carry-Rippler step: it returns the subset of mask that
// follows cur. Starting from the empty set, repeated calls visit every subset
// of mask exactly once and return to the empty set after the last one.
func NextSubset(cur, mask Bitboard) Bitboard {
	return cur.Sub(mask).And(mask)
}
