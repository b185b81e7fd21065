package types

import (
	"github.com/shopspring/decimal"
)

// Position accumulates the fills of one symbol.
//
// PositionValue is a signed cash-flow accumulator: buys add price*qty, sells
// subtract it. RealizedPnL is a snapshot of PositionValue taken whenever Net
// returns to zero; it is not summed across closes.
type Position struct {
	Symbol        string          `yaml:"symbol" json:"symbol"`
	Buys          int64           `yaml:"buys" json:"buys"`
	Sells         int64           `yaml:"sells" json:"sells"`
	Net           int64           `yaml:"net" json:"net"`
	PositionValue decimal.Decimal `yaml:"position_value" json:"position_value"`
	RealizedPnL   decimal.Decimal `yaml:"realized_pnl" json:"realized_pnl"`
	UnrealizedPnL decimal.Decimal `yaml:"unrealized_pnl" json:"unrealized_pnl"`
}

// NewPosition returns a flat position for symbol.
func NewPosition(symbol string) Position {
	return Position{
		Symbol:        symbol,
		Buys:          0,
		Sells:         0,
		Net:           0,
		PositionValue: decimal.Zero,
		RealizedPnL:   decimal.Zero,
		UnrealizedPnL: decimal.Zero,
	}
}

// IsFlat reports whether the position holds nothing.
func (p Position) IsFlat() bool {
	return p.Net == 0
}

// IsLong reports whether the position is net long.
func (p Position) IsLong() bool {
	return p.Net > 0
}

// IsShort reports whether the position is net short.
func (p Position) IsShort() bool {
	return p.Net < 0
}

// ApplyFill books a fill of qty at price. Quantities must be positive; that
// is enforced at order intake, not here.
func (p *Position) ApplyFill(side PurchaseType, qty int64, price decimal.Decimal) {
	if side == PurchaseTypeBuy {
		p.Buys += qty
	} else {
		p.Sells += qty
	}

	p.Net = p.Buys - p.Sells
	p.PositionValue = p.PositionValue.Add(price.Mul(decimal.NewFromInt(qty)).Mul(side.Sign()))

	if p.Net == 0 {
		p.RealizedPnL = p.PositionValue
	}
}

// MarkToMarket stores and returns the unrealized P&L at price.
func (p *Position) MarkToMarket(price decimal.Decimal) decimal.Decimal {
	if p.Net == 0 {
		p.UnrealizedPnL = decimal.Zero
	} else {
		p.UnrealizedPnL = price.Mul(decimal.NewFromInt(p.Net)).Add(p.PositionValue)
	}

	return p.UnrealizedPnL
}
