package engine

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-replay/internal/types"
)

// Lifecycle callback types for backtest phases
// All callbacks with error return can abort execution if they return an error

// OnBacktestStartCallback is called before the first snapshot is replayed.
// runID is a unique identifier for this run.
type OnBacktestStartCallback func(runID string, feedName string, strategyName string, totalTicks int) error

// OnBacktestEndCallback is called when the backtest completes (always called via defer).
type OnBacktestEndCallback func(err error)

// OnProcessDataCallback is called after each snapshot is processed.
// total is zero when the feed cannot report its size up front.
type OnProcessDataCallback func(current int, total int) error

// OnOrderFilledCallback is called for every fill, after the strategy was notified.
type OnOrderFilledCallback func(order types.Order, position types.Position) error

// LifecycleCallbacks holds all lifecycle callback functions for the backtest engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnBacktestStart *OnBacktestStartCallback
	OnBacktestEnd   *OnBacktestEndCallback
	OnProcessData   *OnProcessDataCallback
	OnOrderFilled   *OnOrderFilledCallback
}

//nolint:interfacebloat // Engine is a core interface that naturally requires multiple methods
type Engine interface {
	// Run replays the engine's feed through its strategy.
	// The context is handed to the feed; cancelling it surfaces as a feed failure.
	// Use LifecycleCallbacks to receive notifications at different phases of the backtest.
	Run(ctx context.Context, callbacks LifecycleCallbacks) error
	// SubmitSnapshot processes one market snapshot: strategy callback, matching pass,
	// then unrealized P&L recording.
	SubmitSnapshot(snapshot *types.MarketSnapshot) error
	// SubmitOrder queues an order for matching on a later snapshot. The returned
	// order carries the assigned ID.
	SubmitOrder(order types.Order) (types.Order, error)
	// GetPosition returns the position for symbol, creating a flat one if needed.
	GetPosition(symbol string) types.Position
	// LastPrice returns the latest traded price seen for symbol.
	LastPrice(symbol string) (decimal.Decimal, error)
	// RealizedPnL returns a copy of the realized P&L series.
	RealizedPnL() []types.PnLPoint
	// UnrealizedPnL returns a copy of the unrealized P&L series.
	UnrealizedPnL() []types.PnLPoint
	// GetConfigSchema returns the schema of the engine configuration
	GetConfigSchema() (string, error)
}
