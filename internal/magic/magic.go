// Package magic compiles fancy magic bitboard tables for sliding pieces on a
// 256-bit board.
//
// For every square the relevant occupancy mask is hashed with a multiplier
// found by random search: index = ((occupied & mask) * multiplier) >> shift,
// where the product and the shift are taken over the full 256-bit width.
package magic

import (
	"errors"
	"fmt"

	"github.com/hailam/wideboard/internal/bitboard"
	"github.com/hailam/wideboard/internal/board"
)

// Magic holds the magic bitboard data for a single square.
type Magic struct {
	Mask       bitboard.Bitboard // Relevant occupancy mask (excludes edges)
	Multiplier bitboard.Bitboard // Magic multiplier
	Shift      uint              // 256 - popcount(Mask)
	Offset     int               // Start of this square's slice in Table.Attacks
	Size       int               // 2^popcount(Mask) entries
}

// Index hashes an occupancy into this square's slice.
func (m *Magic) Index(occupied bitboard.Bitboard) int {
	return int(occupied.And(m.Mask).Mul(m.Multiplier).Rsh(m.Shift).Low64())
}

// Table is the compiled attack table for one sliding piece type. Attacks is a
// single contiguous buffer; square s owns Attacks[Magics[s].Offset:][:Magics[s].Size].
// A Table is never modified after Compile returns.
type Table struct {
	Kind     board.PieceType
	Magics   []Magic
	Attacks  []bitboard.Bitboard
	Attempts int // candidate multipliers verified, all squares
}

// Lookup returns the attack set of the table's piece type from sq.
func (t *Table) Lookup(sq board.Square, occupied bitboard.Bitboard) bitboard.Bitboard {
	m := &t.Magics[sq]
	return t.Attacks[m.Offset+m.Index(occupied)]
}

// Slice returns the attack entries owned by sq.
func (t *Table) Slice(sq board.Square) []bitboard.Bitboard {
	m := &t.Magics[sq]
	return t.Attacks[m.Offset : m.Offset+m.Size]
}

// Multipliers returns the multiplier of every square, indexed by square.
func (t *Table) Multipliers() []bitboard.Bitboard {
	out := make([]bitboard.Bitboard, len(t.Magics))
	for i := range t.Magics {
		out[i] = t.Magics[i].Multiplier
	}
	return out
}

// Bytes returns the memory held by the attack buffer.
func (t *Table) Bytes() int {
	return len(t.Attacks) * bitboard.Words * 8
}

var (
	// ErrTableCapacity is returned when the table for a piece type would
	// exceed the configured number of entries.
	ErrTableCapacity = errors.New("magic table capacity exceeded")
	// ErrSearchExhausted is returned when no multiplier passes verification
	// within the attempt cap.
	ErrSearchExhausted = errors.New("magic search exhausted")
	// ErrNotSlider is returned for piece types without a magic table.
	ErrNotSlider = errors.New("piece type has no magic table")
	// ErrVerify is returned when a compiled table disagrees with ray casting.
	ErrVerify = errors.New("magic table verification failed")
)

// CapacityError identifies the square at which the running table size first
// exceeds the limit.
type CapacityError struct {
	Kind   board.PieceType
	Square board.Square
	Needed uint64 // entries needed for the whole table
	Max    int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s table: square %d: need %d entries, capacity %d",
		e.Kind, e.Square, e.Needed, e.Max)
}

func (e *CapacityError) Unwrap() error { return ErrTableCapacity }

// SearchError identifies the square whose multiplier search hit the cap.
type SearchError struct {
	Kind     board.PieceType
	Square   board.Square
	Bits     int
	Attempts int
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("%s table: square %d (%d bits): no multiplier after %d attempts",
		e.Kind, e.Square, e.Bits, e.Attempts)
}

func (e *SearchError) Unwrap() error { return ErrSearchExhausted }

// VerifyError reports an occupancy whose table entry differs from ray casting.
type VerifyError struct {
	Kind      board.PieceType
	Square    board.Square
	Occupancy bitboard.Bitboard
	Got, Want bitboard.Bitboard
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("%s table: square %d occupancy %v: got %v, want %v",
		e.Kind, e.Square, e.Occupancy, e.Got, e.Want)
}

func (e *VerifyError) Unwrap() error { return ErrVerify }
