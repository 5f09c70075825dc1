// Package render draws attack sets as board diagrams for debugging.
package render

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/hailam/wideboard/internal/bitboard"
	"github.com/hailam/wideboard/internal/board"
)

// Default colors, matching the classic board theme
const (
	lightSquare = "fill:#f0d9b5"
	darkSquare  = "fill:#b58863"
	attacked    = "fill:#d9534f;fill-opacity:0.6"
	fromSquare  = "fill:#3a7bd5;fill-opacity:0.8"
	blocker     = "fill:#222222"
	labelStyle  = "font-family:sans-serif;font-size:%dpx;fill:#333333;text-anchor:middle"
)

// DefaultCellSize is the square size in pixels used when Options.CellSize is
// not set.
const DefaultCellSize = 32

// Options controls a diagram.
type Options struct {
	CellSize int
	From     board.Square      // highlighted origin; NoSquare for none
	Occupied bitboard.Bitboard // drawn as blockers
	Labels   bool              // file letters and rank numbers
	Title    string
}

func (o Options) withDefaults() Options {
	if o.CellSize <= 0 {
		o.CellSize = DefaultCellSize
	}
	return o
}

// layout holds the pixel geometry of a diagram.
type layout struct {
	cell, margin  int
	width, height int
	size          int
}

func newLayout(g *board.Geometry, opts Options) layout {
	l := layout{cell: opts.CellSize, size: g.Size()}
	if opts.Labels {
		l.margin = opts.CellSize / 2
	}
	l.width = l.margin + l.size*l.cell
	l.height = l.size*l.cell + l.margin
	return l
}

// topLeft returns the top-left pixel of a square; rank 1 is at the bottom.
func (l layout) topLeft(g *board.Geometry, sq board.Square) (int, int) {
	x := l.margin + g.File(sq)*l.cell
	y := (l.size - 1 - g.Rank(sq)) * l.cell
	return x, y
}

// SVG writes an SVG diagram of attacks on g.
func SVG(w io.Writer, g *board.Geometry, attacks bitboard.Bitboard, opts Options) error {
	ew := &errWriter{w: w}
	writeSVG(ew, g, attacks, opts.withDefaults(), true)
	return ew.err
}

func writeSVG(w io.Writer, g *board.Geometry, attacks bitboard.Bitboard, opts Options, text bool) layout {
	l := newLayout(g, opts)
	canvas := svg.New(w)
	canvas.Startview(l.width, l.height, 0, 0, l.width, l.height)
	if opts.Title != "" {
		canvas.Title(opts.Title)
	}
	canvas.Rect(0, 0, l.width, l.height, "fill:#ffffff")

	for sq := board.Square(0); int(sq) < g.SquareCount(); sq++ {
		x, y := l.topLeft(g, sq)
		style := darkSquare
		if (g.File(sq)+g.Rank(sq))%2 == 1 {
			style = lightSquare
		}
		canvas.Rect(x, y, l.cell, l.cell, style)

		switch {
		case sq == opts.From:
			canvas.Rect(x, y, l.cell, l.cell, fromSquare)
		case attacks.IsSet(int(sq)):
			canvas.Rect(x, y, l.cell, l.cell, attacked)
		}
		if opts.Occupied.IsSet(int(sq)) && sq != opts.From {
			canvas.Circle(x+l.cell/2, y+l.cell/2, l.cell/4, blocker)
		}
	}

	if opts.Labels && text {
		style := fmt.Sprintf(labelStyle, l.margin*3/4)
		for i := 0; i < l.size; i++ {
			x := l.margin + i*l.cell + l.cell/2
			canvas.Text(x, l.height-l.margin/4, string(rune('a'+i)), style)

			y := (l.size-1-i)*l.cell + l.cell/2 + l.margin/4
			canvas.Text(l.margin/2, y, fmt.Sprint(i+1), style)
		}
	}

	canvas.End()
	return l
}

// errWriter keeps the first write error; svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, nil
}
