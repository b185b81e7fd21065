package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-replay/internal/backtest/engine"
	"github.com/rxtech-lab/argo-replay/internal/feed"
	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/internal/strategy"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

// Backtester replays a feed through one strategy, matches the strategy's
// orders against later snapshots and keeps the resulting positions and P&L.
// It is not safe for concurrent use; everything runs on the caller's goroutine.
type Backtester struct {
	config     BacktestEngineV1Config
	strategy   strategy.Strategy
	feed       feed.Feed
	log        *logger.Logger
	ledger     *PositionLedger
	book       *OrderBook
	snapshot   *types.MarketSnapshot
	realized   *types.PnLSeries
	unrealized *types.PnLSeries
	filled     []types.Order
	callbacks  engine.LifecycleCallbacks
	runID      string
	submitted  int
	processed  int
	firstTick  time.Time
	lastTick   time.Time
}

var (
	_ engine.Engine        = (*Backtester)(nil)
	_ strategy.OrderSender = (*Backtester)(nil)
)

// NewBacktester wires s and f together and hands the backtester to s as its
// order sender. A nil log discards output.
func NewBacktester(config BacktestEngineV1Config, s strategy.Strategy, f feed.Feed, log *logger.Logger) (*Backtester, error) {
	if s == nil {
		return nil, errors.New(errors.ErrCodeBacktestNoStrategy, "strategy is required")
	}

	if f == nil {
		return nil, errors.New(errors.ErrCodeBacktestNoFeed, "feed is required")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	b := &Backtester{
		config:     config,
		strategy:   s,
		feed:       f,
		log:        log,
		ledger:     NewPositionLedger(),
		book:       NewOrderBook(),
		snapshot:   types.NewMarketSnapshot(),
		realized:   types.NewPnLSeries(),
		unrealized: types.NewPnLSeries(),
		filled:     []types.Order{},
		callbacks:  engine.LifecycleCallbacks{},
		runID:      "",
		submitted:  0,
		processed:  0,
		firstTick:  time.Time{},
		lastTick:   time.Time{},
	}

	if err := s.Initialize(b); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeBacktestInitFailed, err, "failed to initialize strategy %s", s.Name())
	}

	b.log.Debug("Backtester initialized",
		zap.String("strategy", s.Name()),
		zap.String("feed", f.Name()),
		zap.String("symbol", config.Symbol),
	)

	return b, nil
}

// Run implements engine.Engine.
func (b *Backtester) Run(ctx context.Context, callbacks engine.LifecycleCallbacks) (err error) {
	b.runID = uuid.New().String()
	b.callbacks = callbacks

	if callbacks.OnBacktestEnd != nil {
		defer func() {
			(*callbacks.OnBacktestEnd)(err)
		}()
	}

	total, countErr := feed.Count(ctx, b.feed)
	if countErr != nil {
		b.log.Debug("Feed size unknown", zap.String("feed", b.feed.Name()), zap.Error(countErr))

		total = 0
	}

	if callbacks.OnBacktestStart != nil {
		if cbErr := (*callbacks.OnBacktestStart)(b.runID, b.feed.Name(), b.strategy.Name(), total); cbErr != nil {
			return errors.Wrap(errors.ErrCodeCallbackFailed, "backtest start callback failed", cbErr)
		}
	}

	b.log.Info("Backtest started",
		zap.String("run_id", b.runID),
		zap.String("strategy", b.strategy.Name()),
		zap.String("feed", b.feed.Name()),
		zap.Int("total", total),
	)

	current := 0

	for snapshot, replayErr := range feed.Replay(ctx, b.feed) {
		if replayErr != nil {
			b.log.Error("Feed failed",
				zap.String("feed", b.feed.Name()),
				zap.Int("processed", b.processed),
				zap.Error(replayErr),
			)

			return feedFailure(b.feed, replayErr)
		}

		current++

		ts := snapshot.LatestTimestamp()
		if b.config.EndTime.IsSome() && ts.After(b.config.EndTime.Unwrap()) {
			break
		}

		if b.config.InWindow(ts) {
			if err := b.SubmitSnapshot(snapshot); err != nil {
				b.log.Error("Backtest aborted", zap.Time("timestamp", ts), zap.Error(err))

				return err
			}
		}

		if callbacks.OnProcessData != nil {
			if cbErr := (*callbacks.OnProcessData)(current, total); cbErr != nil {
				return errors.Wrap(errors.ErrCodeCallbackFailed, "process data callback failed", cbErr)
			}
		}
	}

	if b.processed == 0 {
		return errors.Newf(errors.ErrCodeFeedUnavailable, "no data available from %s feed", b.feed.Name())
	}

	result := b.Result()
	b.log.Info("Backtest finished",
		zap.String("run_id", b.runID),
		zap.Int("snapshots", result.Snapshots),
		zap.Int("fills", result.OrdersFilled),
		zap.Int("pending", result.OrdersPending),
		zap.Stringer("realized_pnl", result.TotalRealizedPnL),
		zap.Stringer("unrealized_pnl", result.TotalUnrealizedPnL),
	)

	return nil
}

// feedFailure keeps validation codes and reports everything else as an
// unavailable feed.
func feedFailure(f feed.Feed, err error) error {
	switch errors.GetCode(err) {
	case errors.ErrCodeFeedUnavailable, errors.ErrCodeInvalidTick, errors.ErrCodeNonMonotonicTimestamp:
		return err
	default:
		return errors.Wrapf(errors.ErrCodeFeedUnavailable, err, "%s feed failed", f.Name())
	}
}

// SubmitSnapshot implements engine.Engine.
func (b *Backtester) SubmitSnapshot(snapshot *types.MarketSnapshot) error {
	b.snapshot = snapshot
	b.processed++

	ts := snapshot.LatestTimestamp()
	if b.firstTick.IsZero() {
		b.firstTick = ts
	}

	b.lastTick = ts

	if err := b.strategy.OnTick(snapshot); err != nil {
		return errors.Wrapf(errors.ErrCodeStrategyRuntimeError, err, "strategy %s failed on tick", b.strategy.Name())
	}

	// every fill of the pass is booked even when a notification fails
	var notifyErr error

	for _, order := range b.book.Match(snapshot) {
		position := b.settle(order)
		if notifyErr != nil {
			continue
		}

		notifyErr = b.notifyFill(order, position)
	}

	if notifyErr != nil {
		return notifyErr
	}

	b.recordUnrealized(snapshot)

	return nil
}

// settle applies a filled order to the ledger and the realized series.
func (b *Backtester) settle(order types.Order) types.Position {
	price := order.FilledPrice.Unwrap()
	filledAt := order.FilledTimestamp.Unwrap()

	position := b.ledger.ApplyFill(order.Symbol, order.Side, order.Quantity, price)
	b.realized.Append(filledAt, order.Symbol, position.RealizedPnL)
	b.filled = append(b.filled, order)

	b.log.Info("Order filled",
		zap.String("order_id", order.ID),
		zap.String("symbol", order.Symbol),
		zap.String("side", string(order.Side)),
		zap.Int64("quantity", order.Quantity),
		zap.Stringer("price", price),
		zap.Time("timestamp", filledAt),
		zap.Int64("net", position.Net),
	)

	return position
}

func (b *Backtester) notifyFill(order types.Order, position types.Position) error {
	if err := b.strategy.OnPositionChanged(b.ledger.Positions()); err != nil {
		return errors.Wrapf(errors.ErrCodeStrategyRuntimeError, err, "strategy %s failed on position change", b.strategy.Name())
	}

	if err := b.strategy.OnOrderFilled(order); err != nil {
		return errors.Wrapf(errors.ErrCodeStrategyRuntimeError, err, "strategy %s failed on order fill", b.strategy.Name())
	}

	if b.callbacks.OnOrderFilled != nil {
		if err := (*b.callbacks.OnOrderFilled)(order, position); err != nil {
			return errors.Wrap(errors.ErrCodeCallbackFailed, "order filled callback failed", err)
		}
	}

	return nil
}

func (b *Backtester) recordUnrealized(snapshot *types.MarketSnapshot) {
	symbol := snapshot.LastSymbol()
	if symbol == "" || (b.config.Symbol != "" && symbol != b.config.Symbol) {
		return
	}

	tick, err := snapshot.Tick(symbol)
	if err != nil {
		return
	}

	value := b.ledger.MarkToMarket(symbol, tick.LastPrice)
	b.unrealized.Append(tick.Timestamp, symbol, value)

	position := b.ledger.Position(symbol)
	b.log.Debug("Position status",
		zap.String("symbol", symbol),
		zap.Time("timestamp", tick.Timestamp),
		zap.Int64("buys", position.Buys),
		zap.Int64("sells", position.Sells),
		zap.Int64("net", position.Net),
		zap.Stringer("position_value", position.PositionValue),
		zap.Stringer("unrealized_pnl", value),
		zap.Stringer("realized_pnl", position.RealizedPnL),
	)
}

// SubmitOrder implements engine.Engine. Orders never fill on the snapshot
// they were submitted during.
func (b *Backtester) SubmitOrder(order types.Order) (types.Order, error) {
	if order.Kind == "" {
		order.Kind = types.OrderTypeMarket
	}

	if order.Status == "" {
		order.Status = types.OrderStatusPending
	}

	if err := order.Validate(); err != nil {
		b.log.Warn("Rejected order", zap.String("symbol", order.Symbol), zap.Error(err))

		return order, err
	}

	if order.IsFilled() {
		return order, errors.Newf(errors.ErrCodeInvalidOrder, "order %s is already filled", order.ID)
	}

	// feeds are ordered per symbol only, so the clock is the symbol's own latest tick
	if clock, err := b.snapshot.Timestamp(order.Symbol); err == nil && order.Timestamp.Before(clock) {
		b.log.Warn("Rejected order", zap.String("symbol", order.Symbol), zap.Time("timestamp", order.Timestamp), zap.Time("clock", clock))

		return order, errors.Newf(errors.ErrCodeOrderTimestampInPast,
			"order for %s at %s is earlier than its latest tick %s",
			order.Symbol, order.Timestamp.Format(time.RFC3339Nano), clock.Format(time.RFC3339Nano))
	}

	if order.ID == "" {
		order.ID = uuid.New().String()
	}

	b.book.Submit(order)
	b.submitted++

	b.log.Info("Received order",
		zap.String("order_id", order.ID),
		zap.String("symbol", order.Symbol),
		zap.String("side", string(order.Side)),
		zap.String("kind", string(order.Kind)),
		zap.Int64("quantity", order.Quantity),
		zap.Time("timestamp", order.Timestamp),
	)

	return order, nil
}

// SendMarketOrder implements strategy.OrderSender.
func (b *Backtester) SendMarketOrder(symbol string, quantity int64, side types.PurchaseType, timestamp time.Time) error {
	_, err := b.SubmitOrder(types.NewMarketOrder(symbol, quantity, side, timestamp))

	return err
}

// GetPosition implements engine.Engine.
func (b *Backtester) GetPosition(symbol string) types.Position {
	return b.ledger.Position(symbol)
}

func (b *Backtester) Positions() map[string]types.Position {
	return b.ledger.Positions()
}

func (b *Backtester) PendingOrders() []types.Order {
	return b.book.Pending()
}

func (b *Backtester) FilledOrders() []types.Order {
	out := make([]types.Order, len(b.filled))
	copy(out, b.filled)

	return out
}

// LastPrice implements engine.Engine.
func (b *Backtester) LastPrice(symbol string) (decimal.Decimal, error) {
	return b.snapshot.LastPrice(symbol)
}

// Tick returns the latest tick of symbol.
func (b *Backtester) Tick(symbol string) (types.Tick, error) {
	return b.snapshot.Tick(symbol)
}

// RealizedPnL implements engine.Engine.
func (b *Backtester) RealizedPnL() []types.PnLPoint {
	return b.realized.Points()
}

// UnrealizedPnL implements engine.Engine.
func (b *Backtester) UnrealizedPnL() []types.PnLPoint {
	return b.unrealized.Points()
}

// GetConfigSchema implements engine.Engine.
func (b *Backtester) GetConfigSchema() (string, error) {
	return b.config.GenerateSchemaJSON()
}

// RunID is empty until Run is called.
func (b *Backtester) RunID() string {
	return b.runID
}
