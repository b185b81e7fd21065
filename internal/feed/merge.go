package feed

import (
	"context"
	"iter"
	"strings"

	"github.com/rxtech-lab/argo-replay/internal/types"
)

// MergedFeed interleaves several feeds into one stream ordered by timestamp.
// Ticks with equal timestamps keep the order of the feeds passed to
// MergeFeeds. The first error from any feed ends the stream.
type MergedFeed struct {
	feeds []Feed
}

func MergeFeeds(feeds ...Feed) *MergedFeed {
	return &MergedFeed{feeds: feeds}
}

func (m *MergedFeed) Name() string {
	names := make([]string, 0, len(m.feeds))
	for _, f := range m.feeds {
		names = append(names, f.Name())
	}

	return "merge(" + strings.Join(names, ",") + ")"
}

// Count sums the counts of the merged feeds. It fails if any of them cannot
// be counted.
func (m *MergedFeed) Count(ctx context.Context) (int, error) {
	total := 0

	for _, f := range m.feeds {
		n, err := Count(ctx, f)
		if err != nil {
			return 0, err
		}

		total += n
	}

	return total, nil
}

type mergeHead struct {
	next func() (types.Tick, error, bool)
	stop func()
	tick types.Tick
	ok   bool
}

func (m *MergedFeed) Stream(ctx context.Context) iter.Seq2[types.Tick, error] {
	return func(yield func(types.Tick, error) bool) {
		heads := make([]*mergeHead, 0, len(m.feeds))
		defer func() {
			for _, h := range heads {
				h.stop()
			}
		}()

		advance := func(h *mergeHead) error {
			tick, err, ok := h.next()
			if ok && err != nil {
				return err
			}

			h.tick, h.ok = tick, ok

			return nil
		}

		for _, f := range m.feeds {
			next, stop := iter.Pull2(f.Stream(ctx))
			h := &mergeHead{next: next, stop: stop}
			heads = append(heads, h)

			if err := advance(h); err != nil {
				yield(types.Tick{}, err)

				return
			}
		}

		for {
			var earliest *mergeHead

			for _, h := range heads {
				if h.ok && (earliest == nil || h.tick.Timestamp.Before(earliest.tick.Timestamp)) {
					earliest = h
				}
			}

			if earliest == nil {
				return
			}

			if !yield(earliest.tick, nil) {
				return
			}

			if err := advance(earliest); err != nil {
				yield(types.Tick{}, err)

				return
			}
		}
	}
}
