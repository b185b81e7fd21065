package feed

import (
	"context"
	"iter"
	"math"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-replay/internal/types"
)

// GeneratorConfig configures GeneratorFeed.
type GeneratorConfig struct {
	// Symbol is the trading symbol (e.g., "AAPL", "SPY")
	Symbol string
	// StartTime is the timestamp of the first tick
	StartTime time.Time
	// Interval is the duration between ticks
	Interval time.Duration
	// Count is the number of ticks to generate
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% per tick)
	Volatility float64
	// Trend is the total drift over the series (-0.01 to 0.01 for bearish to bullish)
	Trend float64
	// VolumeBase is the average volume per tick
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
	// Seed makes the series reproducible.
	Seed int64
}

// DefaultGeneratorConfig returns a sensible default configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:         "TEST",
		StartTime:      time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
		Interval:       time.Minute,
		Count:          10000,
		InitialPrice:   100.0,
		Volatility:     0.002, // 0.2% per tick
		Trend:          0.0,
		VolumeBase:     10000,
		VolumeVariance: 0.3,
		Seed:           42,
	}
}

// GeneratorFeed produces synthetic ticks following a geometric Brownian
// motion. Each tick opens at the previous close.
type GeneratorFeed struct {
	config GeneratorConfig
}

func NewGeneratorFeed(config GeneratorConfig) *GeneratorFeed {
	return &GeneratorFeed{config: config}
}

func (g *GeneratorFeed) Name() string {
	return "generator"
}

func (g *GeneratorFeed) Count(_ context.Context) (int, error) {
	return g.config.Count, nil
}

func (g *GeneratorFeed) Stream(ctx context.Context) iter.Seq2[types.Tick, error] {
	return func(yield func(types.Tick, error) bool) {
		config := g.config
		rng := rand.New(rand.NewSource(config.Seed))
		currentPrice := config.InitialPrice
		currentTime := config.StartTime

		for i := 0; i < config.Count; i++ {
			if err := ctx.Err(); err != nil {
				yield(types.Tick{}, err)

				return
			}

			open := currentPrice

			// Box-Muller transform for a standard normal sample
			u1 := 1 - rng.Float64()
			u2 := rng.Float64()
			z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

			drift := config.Trend / float64(config.Count)

			closePrice := open * (1 + config.Volatility*z + drift)
			if closePrice <= 0 {
				closePrice = open * 0.99
			}

			volume := config.VolumeBase * (1.0 + (rng.Float64()*2-1)*config.VolumeVariance)
			if volume < 0 {
				volume = config.VolumeBase * 0.1
			}

			tick := types.Tick{
				Symbol:    config.Symbol,
				Timestamp: currentTime,
				LastPrice: decimal.NewFromFloat(closePrice).Round(4),
				OpenPrice: decimal.NewFromFloat(open).Round(4),
				Volume:    int64(math.Round(volume)),
			}

			if !yield(tick, nil) {
				return
			}

			currentPrice = closePrice
			currentTime = currentTime.Add(config.Interval)
		}
	}
}
