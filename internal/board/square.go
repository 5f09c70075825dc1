// Package board implements square-grid board geometry and ray-cast attacks
// over 256-bit bitboards.
package board

import (
	"fmt"
	"strconv"

	"github.com/hailam/wideboard/internal/bitboard"
)

// Square represents a square on the board (0 .. SquareCount-1).
// Uses Little-Endian Rank-File Mapping: square = rank*size + file.
type Square uint16

// NoSquare is the off-board sentinel. It is never a member of any bitboard.
const NoSquare Square = bitboard.None

// BB returns a bitboard with only the given square set.
func (sq Square) BB() bitboard.Bitboard {
	return bitboard.SquareBB(int(sq))
}

// Direction is a signed step in square-index space.
type Direction int

// Square returns the square at (file, rank). Coordinates are not checked;
// use OnBoard first when they may be off the board.
func (g *Geometry) Square(file, rank int) Square {
	return Square(rank*g.size + file)
}

// File returns the file (column) of the square.
func (g *Geometry) File(sq Square) int {
	return int(sq) % g.size
}

// Rank returns the rank (row) of the square.
func (g *Geometry) Rank(sq Square) int {
	return int(sq) / g.size
}

// OnBoard returns true if (file, rank) lies on the board.
func (g *Geometry) OnBoard(file, rank int) bool {
	return file >= 0 && file < g.size && rank >= 0 && rank < g.size
}

// Valid returns true if sq is a square of this board.
func (g *Geometry) Valid(sq Square) bool {
	return int(sq) < g.squares
}

// SquareName returns the algebraic name of the square (e.g. "p16").
func (g *Geometry) SquareName(sq Square) string {
	if !g.Valid(sq) {
		return "-"
	}
	return fmt.Sprintf("%c%d", 'a'+g.File(sq), g.Rank(sq)+1)
}

// ParseSquare parses algebraic notation (e.g. "e4", "p16") into a Square.
func (g *Geometry) ParseSquare(s string) (Square, error) {
	if len(s) < 2 {
		return NoSquare, fmt.Errorf("invalid square: %q", s)
	}

	file := int(s[0] - 'a')
	rank, err := strconv.Atoi(s[1:])
	if err != nil {
		return NoSquare, fmt.Errorf("invalid square: %q", s)
	}
	rank--

	if !g.OnBoard(file, rank) {
		return NoSquare, fmt.Errorf("invalid square: %q", s)
	}

	return g.Square(file, rank), nil
}
