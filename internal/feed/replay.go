package feed

import (
	"context"
	"iter"
	"time"

	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

// Replay applies every tick of f to a single MarketSnapshot and yields the
// snapshot after each one. The same snapshot is yielded every time; callers
// that need history must copy what they need.
//
// Ticks are validated and must not go back in time for their symbol.
// Errors from f that carry no code are reported as ErrCodeFeedUnavailable.
func Replay(ctx context.Context, f Feed) iter.Seq2[*types.MarketSnapshot, error] {
	return func(yield func(*types.MarketSnapshot, error) bool) {
		snapshot := types.NewMarketSnapshot()
		last := make(map[string]time.Time)

		for tick, err := range f.Stream(ctx) {
			if err != nil {
				yield(nil, errors.WrapUncoded(errors.ErrCodeFeedUnavailable, f.Name()+" feed failed", err))

				return
			}

			if err := tick.Validate(); err != nil {
				yield(nil, err)

				return
			}

			if prev, ok := last[tick.Symbol]; ok && tick.Timestamp.Before(prev) {
				yield(nil, errors.Newf(errors.ErrCodeNonMonotonicTimestamp,
					"%s tick at %s is earlier than previous tick at %s",
					tick.Symbol, tick.Timestamp.Format(time.RFC3339Nano), prev.Format(time.RFC3339Nano)))

				return
			}

			last[tick.Symbol] = tick.Timestamp

			snapshot.AddLastPrice(tick.Timestamp, tick.Symbol, tick.LastPrice, tick.Volume)
			snapshot.AddOpenPrice(tick.Timestamp, tick.Symbol, tick.OpenPrice)

			if !yield(snapshot, nil) {
				return
			}
		}
	}
}
