// Package protocol serves attack table queries over a line-based text
// protocol, one command per line:
//
//	isready                          wait for the tables, reply "readyok"
//	id                               board size and slider backends
//	attacks <piece> <sq> [blockers]  squares attacked from sq
//	pawn <white|black> <sq>          pawn capture squares
//	line <a> <b>                     line through a and b
//	between <a> <b>                  squares between a and b, plus b
//	aligned <a> <b> <c>              whether c is on line(a, b)
//	distance <a> <b>                 king distance
//	d <piece> <sq> [blockers]        attacks as a diagram
//	stats                            table sizes
//	quit
//
// Square sets are written as space separated square names, or "-" when
// empty. Errors are reported as "info string" lines and never end the loop.
package protocol

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hailam/wideboard/internal/attacks"
	"github.com/hailam/wideboard/internal/bitboard"
	"github.com/hailam/wideboard/internal/board"
)

// Server answers queries from tables that may still be building.
type Server struct {
	future *attacks.Future
	out    *bufio.Writer
}

// New creates a server for the tables behind f.
func New(f *attacks.Future) *Server {
	return &Server{future: f}
}

var errQuit = errors.New("quit")

// Run reads commands from r and writes replies to w until quit, end of
// input or ctx is done. Queries block until the tables are ready.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	s.out = bufio.NewWriter(w)
	defer s.out.Flush()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		err := s.handle(ctx, parts[0], parts[1:])
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(s.out, "info string %s: %v\n", parts[0], err)
		}
		if err := s.out.Flush(); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (s *Server) handle(ctx context.Context, cmd string, args []string) error {
	if cmd == "quit" {
		return errQuit
	}

	t, err := s.future.Wait(ctx)
	if err != nil {
		return fmt.Errorf("tables unavailable: %w", err)
	}
	g := t.Geometry()

	switch cmd {
	case "isready":
		fmt.Fprintln(s.out, "readyok")

	case "id":
		fmt.Fprintln(s.out, "id name wideboard")
		fmt.Fprintf(s.out, "id size %d\n", g.Size())
		for _, kind := range []board.PieceType{board.Bishop, board.Rook} {
			fmt.Fprintf(s.out, "id sliders %s %s\n", strings.ToLower(kind.String()), t.Backend(kind))
		}

	case "attacks", "d":
		if len(args) < 2 {
			return errors.New("usage: " + cmd + " <piece> <square> [blockers...]")
		}
		kind, err := board.ParsePieceType(args[0])
		if err != nil {
			return err
		}
		sqs, err := parseSquares(g, args[1:])
		if err != nil {
			return err
		}
		var occ bitboard.Bitboard
		for _, b := range sqs[1:] {
			occ = occ.Or(b.BB())
		}
		att := t.AttacksFrom(kind, sqs[0], occ)
		if cmd == "d" {
			fmt.Fprint(s.out, g.Pretty(att))
		} else {
			s.writeSet(g, att)
		}

	case "pawn":
		if len(args) != 2 {
			return errors.New("usage: pawn <white|black> <square>")
		}
		var c board.Color
		switch strings.ToLower(args[0]) {
		case "white", "w":
			c = board.White
		case "black", "b":
			c = board.Black
		default:
			return fmt.Errorf("invalid color: %q", args[0])
		}
		sqs, err := parseSquares(g, args[1:])
		if err != nil {
			return err
		}
		s.writeSet(g, t.PawnAttacksFrom(c, sqs[0]))

	case "line", "between", "distance":
		sqs, err := parseSquares(g, args)
		if err != nil {
			return err
		}
		if len(sqs) != 2 {
			return errors.New("usage: " + cmd + " <a> <b>")
		}
		switch cmd {
		case "line":
			s.writeSet(g, t.Line(sqs[0], sqs[1]))
		case "between":
			s.writeSet(g, t.Between(sqs[0], sqs[1]))
		default:
			fmt.Fprintln(s.out, strconv.Itoa(t.Distance(sqs[0], sqs[1])))
		}

	case "aligned":
		sqs, err := parseSquares(g, args)
		if err != nil {
			return err
		}
		if len(sqs) != 3 {
			return errors.New("usage: aligned <a> <b> <c>")
		}
		fmt.Fprintln(s.out, strconv.FormatBool(t.Aligned(sqs[0], sqs[1], sqs[2])))

	case "stats":
		stats := t.Stats()
		for _, k := range stats.Sliders {
			fmt.Fprintf(s.out, "stats %s %s entries %d bytes %d attempts %d\n",
				strings.ToLower(k.Kind.String()), k.Backend, k.Entries, k.Bytes, k.Attempts)
		}
		fmt.Fprintf(s.out, "stats derived bytes %d\n", stats.DerivedBytes)

	default:
		return errors.New("unknown command")
	}
	return nil
}

func (s *Server) writeSet(g *board.Geometry, b bitboard.Bitboard) {
	if b.IsEmpty() {
		fmt.Fprintln(s.out, "-")
		return
	}
	names := make([]string, 0, b.PopCount())
	b.ForEach(func(i int) {
		names = append(names, g.SquareName(board.Square(i)))
	})
	fmt.Fprintln(s.out, strings.Join(names, " "))
}

func parseSquares(g *board.Geometry, args []string) ([]board.Square, error) {
	if len(args) == 0 {
		return nil, errors.New("missing square")
	}
	sqs := make([]board.Square, len(args))
	for i, a := range args {
		sq, err := g.ParseSquare(a)
		if err != nil {
			return nil, err
		}
		sqs[i] = sq
	}
	return sqs, nil
}
