// Package attacks builds the immutable attack tables for a board geometry and
// answers attack, line and between queries from them.
//
// Tables are built once by Initialize and never modified afterwards, so a
// *Tables may be shared by any number of goroutines without locking.
package attacks

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/go-logr/logr"

	"github.com/hailam/wideboard/internal/bitboard"
	"github.com/hailam/wideboard/internal/board"
	"github.com/hailam/wideboard/internal/magic"
)

// Options configures Initialize.
type Options struct {
	Sliders Sliders
	Magic   magic.Options

	// Hints are per-square multipliers for each slider kind, tried before
	// the random search. Magic.Hints is ignored.
	Hints map[board.PieceType][]bitboard.Bitboard

	// Verify rechecks every compiled magic table against ray casting, with
	// up to Workers goroutines (GOMAXPROCS when Workers <= 0), before
	// Initialize returns.
	Verify  bool
	Workers int

	// Log receives backend decisions and compile progress. The zero value
	// discards everything.
	Log logr.Logger
}

// KindStats describes the slider table of one piece type.
type KindStats struct {
	Kind     board.PieceType
	Backend  Sliders // SlidersMagic or SlidersRays
	Entries  int
	Bytes    int
	Attempts int
}

// Stats describes a built set of tables.
type Stats struct {
	Size         int
	Sliders      []KindStats
	DerivedBytes int // pseudo, pawn, line and between tables
	Elapsed      time.Duration
}

// Tables holds every attack table for one geometry.
type Tables struct {
	g *board.Geometry

	pseudo [board.NoPieceType][]bitboard.Bitboard // [kind][sq]; Pawn is unused
	pawn   [2][]bitboard.Bitboard                 // [color][sq]

	rook, bishop slider
	magics       map[board.PieceType]*magic.Table

	line    []bitboard.Bitboard // [a*squares+b]
	between []bitboard.Bitboard // [a*squares+b]

	stats Stats
}

// Initialize builds all tables for g. Any failure is fatal: no partial
// tables are ever returned.
func Initialize(g *board.Geometry, opts Options) (*Tables, error) {
	if g == nil {
		return nil, fmt.Errorf("initialize attacks: %w: nil geometry", board.ErrGeometry)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("initialize attacks: %w", err)
	}

	log := opts.Log
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	log = log.WithValues("size", g.Size())

	start := time.Now()
	n := g.SquareCount()
	t := &Tables{
		g:      g,
		magics: make(map[board.PieceType]*magic.Table),
		stats:  Stats{Size: g.Size()},
	}

	t.initLeapers()

	var err error
	if t.bishop, err = t.initSlider(board.Bishop, opts, log); err != nil {
		return nil, err
	}
	if t.rook, err = t.initSlider(board.Rook, opts, log); err != nil {
		return nil, err
	}

	for _, kind := range []board.PieceType{board.Bishop, board.Rook, board.Queen} {
		t.pseudo[kind] = make([]bitboard.Bitboard, n)
		for sq := board.Square(0); int(sq) < n; sq++ {
			t.pseudo[kind][sq] = t.AttacksFrom(kind, sq, bitboard.Empty)
		}
	}

	t.initLines()

	t.stats.DerivedBytes = (len(t.line) + len(t.between) + 2*n + 5*n) * bitboard.Words * 8
	t.stats.Elapsed = time.Since(start)
	log.Info("attack tables ready", "elapsed", t.stats.Elapsed)

	return t, nil
}

func (t *Tables) initLeapers() {
	g := t.g
	n := g.SquareCount()

	t.pseudo[board.Knight] = make([]bitboard.Bitboard, n)
	t.pseudo[board.King] = make([]bitboard.Bitboard, n)
	for c := board.White; c <= board.Black; c++ {
		t.pawn[c] = make([]bitboard.Bitboard, n)
	}

	for sq := board.Square(0); int(sq) < n; sq++ {
		t.pseudo[board.Knight][sq] = g.KnightAttack(sq)
		t.pseudo[board.King][sq] = g.KingAttack(sq)
		t.pawn[board.White][sq] = g.PawnAttack(board.White, sq)
		t.pawn[board.Black][sq] = g.PawnAttack(board.Black, sq)
	}
}

func (t *Tables) initSlider(kind board.PieceType, opts Options, log logr.Logger) (slider, error) {
	g := t.g
	mopts := opts.Magic
	mopts.Hints = opts.Hints[kind]
	if mopts.MaxEntries <= 0 {
		mopts.MaxEntries = magic.DefaultMaxEntries
	}
	if mopts.Observer == nil && log.GetSink() != nil {
		mopts.Observer = magic.NewLogObserver(log)
	}

	mode := opts.Sliders
	if mode == SlidersAuto {
		entries, maxBits, err := magic.Estimate(g, kind)
		if err != nil {
			return nil, fmt.Errorf("initialize %s attacks: %w", kind, err)
		}
		mode = SlidersMagic
		if g.Size() > AutoMagicMaxSize || entries > uint64(mopts.MaxEntries) {
			mode = SlidersRays
		}
		log.V(1).Info("slider backend chosen", "kind", kind.String(), "backend", mode.String(),
			"entries", entries, "maxEntries", mopts.MaxEntries, "maxBits", maxBits)
	}

	switch mode {
	case SlidersMagic:
		tbl, err := magic.Compile(g, kind, mopts)
		if err != nil {
			return nil, fmt.Errorf("initialize %s attacks: %w", kind, err)
		}
		if opts.Verify {
			if err := tbl.VerifyParallel(context.Background(), g, opts.Workers); err != nil {
				return nil, fmt.Errorf("initialize %s attacks: %w", kind, err)
			}
			log.Info("magic table verified", "kind", kind.String(), "entries", len(tbl.Attacks))
		}
		t.magics[kind] = tbl
		t.stats.Sliders = append(t.stats.Sliders, KindStats{
			Kind:     kind,
			Backend:  SlidersMagic,
			Entries:  len(tbl.Attacks),
			Bytes:    tbl.Bytes(),
			Attempts: tbl.Attempts,
		})
		return magicSlider{table: tbl}, nil

	case SlidersRays:
		r := newRaySlider(g, g.SliderDirections(kind))
		t.stats.Sliders = append(t.stats.Sliders, KindStats{
			Kind:    kind,
			Backend: SlidersRays,
			Entries: r.entries(),
			Bytes:   r.entries() * bitboard.Words * 8,
		})
		return r, nil
	}

	return nil, fmt.Errorf("initialize %s attacks: unknown sliders mode %v", kind, mode)
}

// initLines fills the line and between tables from the slider backends.
// Squares that share no rank, file or diagonal get an empty line and a
// between set of just the second square; so does a square paired with
// itself.
func (t *Tables) initLines() {
	n := t.g.SquareCount()
	t.line = make([]bitboard.Bitboard, n*n)
	t.between = make([]bitboard.Bitboard, n*n)

	for a := board.Square(0); int(a) < n; a++ {
		for b := board.Square(0); int(b) < n; b++ {
			i := int(a)*n + int(b)
			t.between[i] = b.BB()
			if a == b {
				continue
			}

			var s slider
			switch {
			case t.pseudo[board.Rook][a].IsSet(int(b)):
				s = t.rook
			case t.pseudo[board.Bishop][a].IsSet(int(b)):
				s = t.bishop
			default:
				continue
			}

			ab := a.BB().Or(b.BB())
			t.line[i] = s.attacks(a, bitboard.Empty).And(s.attacks(b, bitboard.Empty)).Or(ab)
			t.between[i] = s.attacks(a, b.BB()).And(s.attacks(b, a.BB())).Or(b.BB())
		}
	}
}

// AttacksFrom returns the squares attacked by kind from sq. Only rook,
// bishop and queen attacks depend on occupied. Pawns attack as White.
func (t *Tables) AttacksFrom(kind board.PieceType, sq board.Square, occupied bitboard.Bitboard) bitboard.Bitboard {
	switch kind {
	case board.Pawn:
		return t.pawn[board.White][sq]
	case board.Knight, board.King:
		return t.pseudo[kind][sq]
	case board.Bishop:
		return t.bishop.attacks(sq, occupied)
	case board.Rook:
		return t.rook.attacks(sq, occupied)
	case board.Queen:
		return t.rook.attacks(sq, occupied).Or(t.bishop.attacks(sq, occupied))
	}
	return bitboard.Empty
}

// PseudoAttacks returns empty-board attacks of a knight, bishop, rook, queen
// or king.
func (t *Tables) PseudoAttacks(kind board.PieceType, sq board.Square) bitboard.Bitboard {
	if kind == board.Pawn || kind >= board.NoPieceType {
		return bitboard.Empty
	}
	return t.pseudo[kind][sq]
}

// PawnAttacksFrom returns the capture squares of a pawn of color c on sq.
func (t *Tables) PawnAttacksFrom(c board.Color, sq board.Square) bitboard.Bitboard {
	return t.pawn[c][sq]
}

// Line returns the full edge-to-edge line through a and b, or the empty set
// if they share no line.
func (t *Tables) Line(a, b board.Square) bitboard.Bitboard {
	return t.line[int(a)*t.g.SquareCount()+int(b)]
}

// Between returns the squares strictly between a and b plus b itself, or
// just b if they share no line.
func (t *Tables) Between(a, b board.Square) bitboard.Bitboard {
	return t.between[int(a)*t.g.SquareCount()+int(b)]
}

// Aligned returns true if c lies on the line through a and b.
func (t *Tables) Aligned(a, b, c board.Square) bool {
	return t.Line(a, b).IsSet(int(c))
}

// Distance returns the king distance between two squares.
func (t *Tables) Distance(a, b board.Square) int {
	return t.g.Distance(a, b)
}

// Geometry returns the geometry the tables were built for.
func (t *Tables) Geometry() *board.Geometry {
	return t.g
}

// Backend returns the backend answering kind's attacks: SlidersMagic or
// SlidersRays for rooks and bishops, SlidersAuto for anything else.
func (t *Tables) Backend(kind board.PieceType) Sliders {
	for _, s := range t.stats.Sliders {
		if s.Kind == kind {
			return s.Backend
		}
	}
	return SlidersAuto
}

// MagicTable returns the compiled magic table of a rook or bishop, or nil if
// that kind uses rays.
func (t *Tables) MagicTable(kind board.PieceType) *magic.Table {
	return t.magics[kind]
}

// Stats returns build statistics.
func (t *Tables) Stats() Stats {
	s := t.stats
	s.Sliders = slices.Clone(s.Sliders)
	return s
}
