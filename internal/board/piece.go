package board

import (
	"fmt"
	"strings"
)

// Color represents the side a pawn attacks for.
type Color uint8

const (
	White Color = iota
	Black
	NoColor Color = 2
)

// String returns the color name.
func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// PieceType represents the kind of an attacking piece.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType PieceType = 6
)

// String returns the piece type name.
func (pt PieceType) String() string {
	switch pt {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// Slider returns true for the piece types whose rays stop at blockers.
func (pt PieceType) Slider() bool {
	return pt == Bishop || pt == Rook || pt == Queen
}

// ParsePieceType accepts a piece name or its letter, in either case.
func ParsePieceType(s string) (PieceType, error) {
	switch strings.ToLower(s) {
	case "p", "pawn":
		return Pawn, nil
	case "n", "knight":
		return Knight, nil
	case "b", "bishop":
		return Bishop, nil
	case "r", "rook":
		return Rook, nil
	case "q", "queen":
		return Queen, nil
	case "k", "king":
		return King, nil
	}
	return NoPieceType, fmt.Errorf("invalid piece type: %q", s)
}
