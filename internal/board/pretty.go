package board

import (
	"fmt"
	"strings"

	"github.com/hailam/wideboard/internal/bitboard"
)

// Pretty returns a text diagram of a bitboard, highest rank first.
// Set squares are drawn as "X", empty ones as ".". Debug output only.
func (g *Geometry) Pretty(b bitboard.Bitboard) string {
	var sb strings.Builder
	for rank := g.size - 1; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%2d ", rank+1)
		for file := 0; file < g.size; file++ {
			if b.IsSet(int(g.Square(file, rank))) {
				sb.WriteString("X ")
			} else {
				sb.WriteString(". ")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("   ")
	for file := 0; file < g.size; file++ {
		fmt.Fprintf(&sb, "%c ", 'a'+file)
	}
	sb.WriteString("\n")
	return sb.String()
}
