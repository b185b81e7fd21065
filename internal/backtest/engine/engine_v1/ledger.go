package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-replay/internal/types"
)

// PositionLedger owns one Position per symbol. Entries are created on first
// reference and only ever handed out as copies.
type PositionLedger struct {
	positions map[string]*types.Position
}

func NewPositionLedger() *PositionLedger {
	return &PositionLedger{
		positions: map[string]*types.Position{},
	}
}

func (l *PositionLedger) entry(symbol string) *types.Position {
	position, ok := l.positions[symbol]
	if !ok {
		p := types.NewPosition(symbol)
		position = &p
		l.positions[symbol] = position
	}

	return position
}

// Position returns the position for symbol, creating a flat one if needed.
func (l *PositionLedger) Position(symbol string) types.Position {
	return *l.entry(symbol)
}

// Positions returns a copy of every position keyed by symbol.
func (l *PositionLedger) Positions() map[string]types.Position {
	out := make(map[string]types.Position, len(l.positions))
	for symbol, position := range l.positions {
		out[symbol] = *position
	}

	return out
}

// Symbols returns the ledger's symbols in sorted order.
func (l *PositionLedger) Symbols() []string {
	symbols := make([]string, 0, len(l.positions))
	for symbol := range l.positions {
		symbols = append(symbols, symbol)
	}

	sort.Strings(symbols)

	return symbols
}

// ApplyFill books a fill against symbol and returns the updated position.
func (l *PositionLedger) ApplyFill(symbol string, side types.PurchaseType, qty int64, price decimal.Decimal) types.Position {
	position := l.entry(symbol)
	position.ApplyFill(side, qty, price)

	return *position
}

// MarkToMarket revalues symbol at price and returns the unrealized P&L.
func (l *PositionLedger) MarkToMarket(symbol string, price decimal.Decimal) decimal.Decimal {
	return l.entry(symbol).MarkToMarket(price)
}
