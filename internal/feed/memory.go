package feed

import (
	"context"
	"iter"

	"github.com/rxtech-lab/argo-replay/internal/types"
)

// MemoryFeed replays a fixed slice of ticks in slice order.
type MemoryFeed struct {
	name  string
	ticks []types.Tick
}

func NewMemoryFeed(name string, ticks []types.Tick) *MemoryFeed {
	return &MemoryFeed{
		name:  name,
		ticks: ticks,
	}
}

func (m *MemoryFeed) Name() string {
	return m.name
}

func (m *MemoryFeed) Count(_ context.Context) (int, error) {
	return len(m.ticks), nil
}

func (m *MemoryFeed) Stream(_ context.Context) iter.Seq2[types.Tick, error] {
	return func(yield func(types.Tick, error) bool) {
		for _, tick := range m.ticks {
			if !yield(tick, nil) {
				return
			}
		}
	}
}
