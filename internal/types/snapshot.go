package types

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

// MarketSnapshot caches the most recent tick per symbol. It keeps no history:
// every update overwrites the previous tick of that symbol.
type MarketSnapshot struct {
	ticks      map[string]*Tick
	lastSymbol string
	latest     time.Time
}

// NewMarketSnapshot returns an empty snapshot.
func NewMarketSnapshot() *MarketSnapshot {
	return &MarketSnapshot{
		ticks:      make(map[string]*Tick),
		lastSymbol: "",
		latest:     time.Time{},
	}
}

// AddLastPrice starts a new tick for symbol at ts. The open price of the new
// tick is zero until AddOpenPrice is called.
func (s *MarketSnapshot) AddLastPrice(ts time.Time, symbol string, price decimal.Decimal, volume int64) {
	s.ticks[symbol] = &Tick{
		Symbol:    symbol,
		Timestamp: ts,
		LastPrice: price,
		OpenPrice: decimal.Zero,
		Volume:    volume,
	}
	s.touch(symbol, ts)
}

// AddOpenPrice sets the open price on the current tick of symbol, creating
// the tick if the symbol has not been seen.
func (s *MarketSnapshot) AddOpenPrice(ts time.Time, symbol string, price decimal.Decimal) {
	tick, ok := s.ticks[symbol]
	if !ok {
		tick = &Tick{
			Symbol:    symbol,
			Timestamp: ts,
			LastPrice: decimal.Zero,
			OpenPrice: decimal.Zero,
			Volume:    0,
		}
		s.ticks[symbol] = tick
	}

	tick.OpenPrice = price
	s.touch(symbol, ts)
}

// Update replaces the tick of tick.Symbol.
func (s *MarketSnapshot) Update(tick Tick) {
	t := tick
	s.ticks[tick.Symbol] = &t
	s.touch(tick.Symbol, tick.Timestamp)
}

func (s *MarketSnapshot) touch(symbol string, ts time.Time) {
	s.lastSymbol = symbol
	if ts.After(s.latest) {
		s.latest = ts
	}
}

// Tick returns a copy of the latest tick for symbol.
func (s *MarketSnapshot) Tick(symbol string) (Tick, error) {
	tick, ok := s.ticks[symbol]
	if !ok {
		return Tick{}, errors.Newf(errors.ErrCodeUnknownSymbol, "no tick observed for symbol %s", symbol)
	}

	return *tick, nil
}

// LastPrice returns the last traded price of symbol.
func (s *MarketSnapshot) LastPrice(symbol string) (decimal.Decimal, error) {
	tick, err := s.Tick(symbol)
	if err != nil {
		return decimal.Zero, err
	}

	return tick.LastPrice, nil
}

// OpenPrice returns the open price of symbol's latest tick.
func (s *MarketSnapshot) OpenPrice(symbol string) (decimal.Decimal, error) {
	tick, err := s.Tick(symbol)
	if err != nil {
		return decimal.Zero, err
	}

	return tick.OpenPrice, nil
}

// Timestamp returns the timestamp of symbol's latest tick.
func (s *MarketSnapshot) Timestamp(symbol string) (time.Time, error) {
	tick, err := s.Tick(symbol)
	if err != nil {
		return time.Time{}, err
	}

	return tick.Timestamp, nil
}

// Has reports whether symbol has been observed.
func (s *MarketSnapshot) Has(symbol string) bool {
	_, ok := s.ticks[symbol]

	return ok
}

// Symbols returns the observed symbols in sorted order.
func (s *MarketSnapshot) Symbols() []string {
	symbols := make([]string, 0, len(s.ticks))
	for symbol := range s.ticks {
		symbols = append(symbols, symbol)
	}

	slices.Sort(symbols)

	return symbols
}

// LastSymbol is the symbol touched by the most recent update.
func (s *MarketSnapshot) LastSymbol() string {
	return s.lastSymbol
}

// LatestTimestamp is the simulated clock: the greatest timestamp observed so far.
func (s *MarketSnapshot) LatestTimestamp() time.Time {
	return s.latest
}
