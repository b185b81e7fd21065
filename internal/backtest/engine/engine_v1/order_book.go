package engine

import (
	"github.com/rxtech-lab/argo-replay/internal/types"
)

// OrderBook holds pending orders in submission order.
type OrderBook struct {
	pending []types.Order
}

func NewOrderBook() *OrderBook {
	return &OrderBook{
		pending: []types.Order{},
	}
}

// Submit appends order to the back of the queue.
func (b *OrderBook) Submit(order types.Order) {
	b.pending = append(b.pending, order)
}

// Pending returns a copy of the queued orders.
func (b *OrderBook) Pending() []types.Order {
	out := make([]types.Order, len(b.pending))
	copy(out, b.pending)

	return out
}

func (b *OrderBook) Len() int {
	return len(b.pending)
}

// Match fills every eligible order against snapshot and returns the fills in
// submission order. A market order is eligible once the snapshot holds a tick
// for its symbol stamped strictly after the order; it fills at that tick's
// open price. Ineligible orders keep their place in the queue.
func (b *OrderBook) Match(snapshot *types.MarketSnapshot) []types.Order {
	var fills []types.Order

	remaining := b.pending[:0]

	for _, order := range b.pending {
		tick, ok := eligibleTick(order, snapshot)
		if !ok {
			remaining = append(remaining, order)
			continue
		}

		// Fill only fails on an already filled order, which never reaches the book.
		if err := order.Fill(tick.OpenPrice, tick.Timestamp); err != nil {
			remaining = append(remaining, order)
			continue
		}

		fills = append(fills, order)
	}

	// drop stale references past the new end
	for i := len(remaining); i < len(b.pending); i++ {
		b.pending[i] = types.Order{}
	}

	b.pending = remaining

	return fills
}

func eligibleTick(order types.Order, snapshot *types.MarketSnapshot) (types.Tick, bool) {
	if order.Kind != types.OrderTypeMarket {
		return types.Tick{}, false
	}

	tick, err := snapshot.Tick(order.Symbol)
	if err != nil {
		return types.Tick{}, false
	}

	if !tick.Timestamp.After(order.Timestamp) {
		return types.Tick{}, false
	}

	return tick, true
}
