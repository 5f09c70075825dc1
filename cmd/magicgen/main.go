// Command magicgen builds the attack tables for an NxN board, verifies them
// and reports their size. It can keep the magic multipliers it finds in a
// local database and reuse them on the next run, and it can draw the attack
// set of a single piece.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"

	"github.com/hailam/wideboard/internal/attacks"
	"github.com/hailam/wideboard/internal/bitboard"
	"github.com/hailam/wideboard/internal/board"
	"github.com/hailam/wideboard/internal/config"
	"github.com/hailam/wideboard/internal/magic"
	"github.com/hailam/wideboard/internal/protocol"
	"github.com/hailam/wideboard/internal/render"
	"github.com/hailam/wideboard/internal/storage"
)

var (
	configPath  = flag.String("config", "", "JSON config file")
	size        = flag.Int("size", board.StandardSize, "board size (5-16)")
	sliders     = flag.String("sliders", "auto", "slider backend: auto, magic or rays")
	seed        = flag.Uint64("seed", 0, "magic search seed")
	maxEntries  = flag.Int("max-entries", magic.DefaultMaxEntries, "magic table entry limit per piece type")
	maxAttempts = flag.Int("max-attempts", magic.DefaultMaxAttempts, "magic search attempt limit per square")
	verify      = flag.Bool("verify", true, "verify magic tables against ray casting")
	workers     = flag.Int("workers", 0, "verification workers (0 = GOMAXPROCS)")
	storeDir    = flag.String("store", "", "multiplier database directory (default: user cache dir)")
	useStore    = flag.Bool("use-store", false, "try stored multipliers before searching")
	save        = flag.Bool("save", false, "store the multipliers found")
	square      = flag.String("square", "", "draw the attacks of a piece on this square (e.g. h8)")
	piece       = flag.String("piece", "queen", "piece type to draw")
	occupied    = flag.String("occupied", "", "comma separated blocker squares")
	svgPath     = flag.String("svg", "", "write the diagram as SVG")
	pngPath     = flag.String("png", "", "write the diagram as PNG")
	serve       = flag.Bool("serve", false, "answer queries on stdin/stdout while the tables build")
	verbosity   = flag.Int("v", 0, "log verbosity")
	cpuprofile  = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatal(describe(err))
	}
}

func run() error {
	stdr.SetVerbosity(*verbosity)
	logger := stdr.New(log.New(os.Stderr, "", log.LstdFlags)).WithName("magicgen")

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	g, err := cfg.Geometry()
	if err != nil {
		return err
	}

	var store *storage.MagicStore
	if cfg.UseStore || *save {
		store, err = storage.Open(cfg.StoreDir)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	opts := cfg.AttackOptions(logger)
	if cfg.UseStore {
		opts.Hints = loadHints(store, g, logger)
	}

	if *serve {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err := protocol.New(attacks.InitializeAsync(g, opts)).Run(ctx, os.Stdin, os.Stdout)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	tables, err := attacks.Initialize(g, opts)
	if err != nil {
		return err
	}

	report(tables)

	if *save {
		for _, kind := range []board.PieceType{board.Bishop, board.Rook} {
			if tbl := tables.MagicTable(kind); tbl != nil {
				if err := store.SaveMultipliers(g, tbl); err != nil {
					return err
				}
				logger.Info("multipliers saved", "kind", kind.String())
			}
		}
	}

	if *square != "" {
		return draw(tables)
	}
	return nil
}

// loadConfig reads the config file, if any, and applies the flags that were
// set explicitly on top of it.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return nil, err
		}
	}

	var err error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "size":
			cfg.BoardSize = *size
		case "sliders":
			var s attacks.Sliders
			if s, err = attacks.ParseSliders(*sliders); err == nil {
				cfg.Sliders = s
			}
		case "seed":
			cfg.Seed = *seed
		case "max-entries":
			cfg.MaxEntries = *maxEntries
		case "max-attempts":
			cfg.MaxAttempts = *maxAttempts
		case "verify":
			cfg.Verify = *verify
		case "workers":
			cfg.Workers = *workers
		case "store":
			cfg.StoreDir = *storeDir
		case "use-store":
			cfg.UseStore = *useStore
		}
	})
	if err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

func loadHints(store *storage.MagicStore, g *board.Geometry, logger logr.Logger) map[board.PieceType][]bitboard.Bitboard {
	hints := make(map[board.PieceType][]bitboard.Bitboard)
	for _, kind := range []board.PieceType{board.Bishop, board.Rook} {
		mults, err := store.LoadMultipliers(g, kind)
		switch {
		case err == nil:
			hints[kind] = mults
			logger.V(1).Info("loaded stored multipliers", "kind", kind.String())
		case errors.Is(err, storage.ErrNotFound):
			logger.V(1).Info("no stored multipliers", "kind", kind.String())
		default:
			logger.Error(err, "ignoring stored multipliers", "kind", kind.String())
		}
	}
	return hints
}

// describe turns an initialization failure into a one-line diagnostic
// naming the piece type, the square and the kind of failure.
func describe(err error) string {
	var ce *magic.CapacityError
	var se *magic.SearchError
	var ve *magic.VerifyError
	switch {
	case errors.As(err, &ce):
		return fmt.Sprintf("capacity: %s tables need %s entries (limit %s) from square %d; use -sliders rays or raise -max-entries",
			ce.Kind, humanize.Comma(int64(ce.Needed)), humanize.Comma(int64(ce.Max)), ce.Square)
	case errors.As(err, &se):
		return fmt.Sprintf("search: no %s multiplier for square %d (%d mask bits) after %s attempts",
			se.Kind, se.Square, se.Bits, humanize.Comma(int64(se.Attempts)))
	case errors.As(err, &ve):
		return fmt.Sprintf("verify: %s square %d: %v", ve.Kind, ve.Square, err)
	}
	return err.Error()
}

func report(tables *attacks.Tables) {
	stats := tables.Stats()
	fmt.Printf("board %dx%d, built in %s\n", stats.Size, stats.Size, stats.Elapsed.Round(time.Millisecond))
	total := uint64(stats.DerivedBytes)
	for _, s := range stats.Sliders {
		fmt.Printf("  %-6s %-5s %12s entries %10s", s.Kind, s.Backend, humanize.Comma(int64(s.Entries)), humanize.IBytes(uint64(s.Bytes)))
		if s.Backend == attacks.SlidersMagic {
			fmt.Printf("  %s attempts", humanize.Comma(int64(s.Attempts)))
		}
		fmt.Println()
		total += uint64(s.Bytes)
	}
	fmt.Printf("  derived tables %s, total %s\n", humanize.IBytes(uint64(stats.DerivedBytes)), humanize.IBytes(total))
}

func draw(tables *attacks.Tables) error {
	g := tables.Geometry()

	sq, err := g.ParseSquare(*square)
	if err != nil {
		return err
	}
	kind, err := board.ParsePieceType(*piece)
	if err != nil {
		return err
	}

	var occ bitboard.Bitboard
	if *occupied != "" {
		for _, name := range strings.Split(*occupied, ",") {
			s, err := g.ParseSquare(strings.TrimSpace(name))
			if err != nil {
				return err
			}
			occ = occ.Or(s.BB())
		}
	}

	att := tables.AttacksFrom(kind, sq, occ)
	fmt.Printf("%s on %s attacks %d squares\n", kind, g.SquareName(sq), att.PopCount())
	fmt.Print(g.Pretty(att))

	opts := render.Options{
		From:     sq,
		Occupied: occ,
		Labels:   true,
		Title:    fmt.Sprintf("%s %s", kind, g.SquareName(sq)),
	}
	if *svgPath != "" {
		if err := writeFile(*svgPath, func(f *os.File) error { return render.SVG(f, g, att, opts) }); err != nil {
			return err
		}
	}
	if *pngPath != "" {
		if err := writeFile(*pngPath, func(f *os.File) error { return render.PNG(f, g, att, opts) }); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
