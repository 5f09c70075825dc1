package magic

import (
	"github.com/go-logr/logr"

	"github.com/hailam/wideboard/internal/board"
)

// Observer receives compilation progress. Compile never depends on it.
type Observer interface {
	SquareCompiled(kind board.PieceType, sq board.Square, bits, attempts int)
	KindCompiled(kind board.PieceType, entries, attempts int)
}

type nopObserver struct{}

func (nopObserver) SquareCompiled(board.PieceType, board.Square, int, int) {}
func (nopObserver) KindCompiled(board.PieceType, int, int)                 {}

// LogObserver reports progress to a logr.Logger: per-square lines at V(2),
// per-table summaries at V(1).
type LogObserver struct {
	Log logr.Logger
}

// NewLogObserver returns an observer writing to log.
func NewLogObserver(log logr.Logger) *LogObserver {
	return &LogObserver{Log: log.WithName("magic")}
}

func (o *LogObserver) SquareCompiled(kind board.PieceType, sq board.Square, bits, attempts int) {
	o.Log.V(2).Info("square compiled", "kind", kind.String(), "square", int(sq), "bits", bits, "attempts", attempts)
}

func (o *LogObserver) KindCompiled(kind board.PieceType, entries, attempts int) {
	o.Log.V(1).Info("table compiled", "kind", kind.String(), "entries", entries, "attempts", attempts)
}
