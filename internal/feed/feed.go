// Package feed supplies time-ordered ticks to the backtester.
//
// A Feed only produces ticks. Replay turns a feed into a sequence of market
// snapshots and rejects malformed or out-of-order input at the boundary, so
// the engine never sees it.
package feed

import (
	"context"
	"iter"

	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

// Feed is a source of ticks.
//
// Stream yields ticks in non-decreasing timestamp order per symbol. The end
// of data is the end of the sequence. A failure is reported by yielding a
// non-nil error, after which the sequence stops.
type Feed interface {
	Name() string
	Stream(ctx context.Context) iter.Seq2[types.Tick, error]
}

// Counter is implemented by feeds that know their length up front.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Count returns the number of ticks f will yield, if f can tell.
func Count(ctx context.Context, f Feed) (int, error) {
	c, ok := f.(Counter)
	if !ok {
		return 0, errorNotCountable(f)
	}

	return c.Count(ctx)
}

func errorNotCountable(f Feed) error {
	return errors.Newf(errors.ErrCodeInvalidParameter, "%s feed cannot be counted", f.Name())
}
