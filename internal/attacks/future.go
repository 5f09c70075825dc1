package attacks

import (
	"context"

	"github.com/hailam/wideboard/internal/board"
)

// Future gates access to tables that are being built in the background.
type Future struct {
	done   chan struct{}
	tables *Tables
	err    error
}

// InitializeAsync runs Initialize on a new goroutine. Compilation itself
// cannot be interrupted; callers stop waiting through Wait's context.
func InitializeAsync(g *board.Geometry, opts Options) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.tables, f.err = Initialize(g, opts)
	}()
	return f
}

// Wait blocks until the tables are built or ctx is done.
func (f *Future) Wait(ctx context.Context) (*Tables, error) {
	select {
	case <-f.done:
		return f.tables, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Ready returns true once Initialize has finished, successfully or not.
func (f *Future) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
