package strategy

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-replay/internal/types"
)

// Strategy is a pluggable decision maker driven by the backtester.
//
// The backtester calls Initialize once with the capability the strategy uses
// to place orders, then OnTick for every snapshot. After each fill it calls
// OnPositionChanged followed by OnOrderFilled.
type Strategy interface {
	Name() string
	Initialize(sender OrderSender) error
	OnTick(market MarketView) error
	OnOrderFilled(order types.Order) error
	OnPositionChanged(positions map[string]types.Position) error
}

// OrderSender is the only way a strategy can change simulation state.
type OrderSender interface {
	SendMarketOrder(symbol string, quantity int64, side types.PurchaseType, timestamp time.Time) error
}

// MarketView is a read-only view of the latest market snapshot.
type MarketView interface {
	Tick(symbol string) (types.Tick, error)
	LastPrice(symbol string) (decimal.Decimal, error)
	OpenPrice(symbol string) (decimal.Decimal, error)
	Timestamp(symbol string) (time.Time, error)
	Has(symbol string) bool
	Symbols() []string
	LastSymbol() string
	LatestTimestamp() time.Time
}

var _ MarketView = (*types.MarketSnapshot)(nil)
