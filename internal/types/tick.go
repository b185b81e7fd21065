package types

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

// Tick is a single price observation for one symbol at one instant.
//
// A tick is assembled in place: the last price and volume arrive first, the
// open price is set by a separate update for the same timestamp.
type Tick struct {
	Symbol    string          `yaml:"symbol" json:"symbol"`
	Timestamp time.Time       `yaml:"timestamp" json:"timestamp"`
	LastPrice decimal.Decimal `yaml:"last_price" json:"last_price"`
	OpenPrice decimal.Decimal `yaml:"open_price" json:"open_price"`
	Volume    int64           `yaml:"volume" json:"volume"`
}

// Validate rejects ticks a feed must never hand to the engine.
func (t Tick) Validate() error {
	if t.Symbol == "" {
		return errors.New(errors.ErrCodeInvalidTick, "tick symbol is required")
	}

	if t.Timestamp.IsZero() {
		return errors.Newf(errors.ErrCodeInvalidTick, "tick for %s has no timestamp", t.Symbol)
	}

	if t.LastPrice.IsNegative() || t.OpenPrice.IsNegative() {
		return errors.Newf(errors.ErrCodeInvalidTick, "tick for %s at %s has a negative price",
			t.Symbol, t.Timestamp.Format(time.RFC3339))
	}

	if t.Volume < 0 {
		return errors.Newf(errors.ErrCodeInvalidTick, "tick for %s at %s has negative volume %d",
			t.Symbol, t.Timestamp.Format(time.RFC3339), t.Volume)
	}

	return nil
}
