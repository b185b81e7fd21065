package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// PnLPoint is one observation in a P&L series.
type PnLPoint struct {
	Timestamp time.Time       `yaml:"timestamp" json:"timestamp"`
	Symbol    string          `yaml:"symbol" json:"symbol"`
	Value     decimal.Decimal `yaml:"value" json:"value"`
}

// PnLSeries is an append-only sequence of P&L points in the order they were
// recorded.
type PnLSeries struct {
	points []PnLPoint
}

// NewPnLSeries returns an empty series.
func NewPnLSeries() *PnLSeries {
	return &PnLSeries{points: []PnLPoint{}}
}

func (s *PnLSeries) Append(ts time.Time, symbol string, value decimal.Decimal) {
	s.points = append(s.points, PnLPoint{Timestamp: ts, Symbol: symbol, Value: value})
}

// Points returns a copy of the recorded points.
func (s *PnLSeries) Points() []PnLPoint {
	out := make([]PnLPoint, len(s.points))
	copy(out, s.points)

	return out
}

func (s *PnLSeries) Len() int {
	return len(s.points)
}

// Last returns the most recent point, if any.
func (s *PnLSeries) Last() (PnLPoint, bool) {
	if len(s.points) == 0 {
		return PnLPoint{}, false
	}

	return s.points[len(s.points)-1], true
}
