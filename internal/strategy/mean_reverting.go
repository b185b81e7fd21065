package strategy

import (
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

const MeanRevertingName = "mean_reverting"

// minStdDev is the spread below which returns count as constant.
const minStdDev = 1e-12

// MeanRevertingConfig configures MeanReverting.
type MeanRevertingConfig struct {
	// Symbol is the instrument the strategy trades.
	Symbol string `yaml:"symbol" json:"symbol" jsonschema:"title=Symbol,description=Instrument to trade" validate:"required"`
	// Lookback is the number of closes the z-score is computed over.
	Lookback int `yaml:"lookback" json:"lookback" jsonschema:"title=Lookback,description=Number of closes in the z-score window,minimum=3,default=20" validate:"gte=3"`
	// BuyThreshold triggers a buy when the z-score falls below it.
	BuyThreshold float64 `yaml:"buy_threshold" json:"buy_threshold" jsonschema:"title=Buy threshold,default=-1.5" validate:"ltfield=SellThreshold"`
	// SellThreshold triggers a sell when the z-score rises above it.
	SellThreshold float64 `yaml:"sell_threshold" json:"sell_threshold" jsonschema:"title=Sell threshold,default=1.5"`
	// Quantity is the size of every order.
	Quantity int64 `yaml:"quantity" json:"quantity" jsonschema:"title=Quantity,minimum=1,default=100" validate:"gt=0"`
}

// DefaultMeanRevertingConfig returns the default parameters for symbol.
func DefaultMeanRevertingConfig(symbol string) MeanRevertingConfig {
	return MeanRevertingConfig{
		Symbol:        symbol,
		Lookback:      20,
		BuyThreshold:  -1.5,
		SellThreshold: 1.5,
		Quantity:      100,
	}
}

// MeanReverting trades the z-score of the latest close-to-close return
// against the returns in a trailing window of closes.
type MeanReverting struct {
	config  MeanRevertingConfig
	sender  OrderSender
	closes  []decimal.Decimal
	lastTS  time.Time
	isLong  bool
	isShort bool
}

// NewMeanReverting validates config and returns the strategy.
func NewMeanReverting(config MeanRevertingConfig) (*MeanReverting, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidStrategyOptions, "invalid mean reverting config", err)
	}

	return &MeanReverting{
		config:  config,
		sender:  nil,
		closes:  []decimal.Decimal{},
		lastTS:  time.Time{},
		isLong:  false,
		isShort: false,
	}, nil
}

func (s *MeanReverting) Name() string {
	return MeanRevertingName
}

func (s *MeanReverting) Initialize(sender OrderSender) error {
	if sender == nil {
		return errors.New(errors.ErrCodeStrategyConfigError, "order sender is required")
	}

	s.sender = sender

	return nil
}

func (s *MeanReverting) OnTick(market MarketView) error {
	if market.LastSymbol() != s.config.Symbol {
		return nil
	}

	tick, err := market.Tick(s.config.Symbol)
	if err != nil {
		return err
	}

	s.storeClose(tick)

	z, err := s.ZScore()
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeInsufficientData) || errors.HasCode(err, errors.ErrCodeDegenerateStatistic) {
			return nil
		}

		return err
	}

	switch {
	case z < s.config.BuyThreshold && !s.isLong:
		return s.sender.SendMarketOrder(s.config.Symbol, s.config.Quantity, types.PurchaseTypeBuy, tick.Timestamp)
	case z > s.config.SellThreshold && !s.isShort:
		return s.sender.SendMarketOrder(s.config.Symbol, s.config.Quantity, types.PurchaseTypeSell, tick.Timestamp)
	}

	return nil
}

// storeClose keeps one close per timestamp; a repeated timestamp overwrites.
func (s *MeanReverting) storeClose(tick types.Tick) {
	if len(s.closes) > 0 && tick.Timestamp.Equal(s.lastTS) {
		s.closes[len(s.closes)-1] = tick.LastPrice
	} else {
		s.closes = append(s.closes, tick.LastPrice)
	}

	s.lastTS = tick.Timestamp

	// only the trailing window is ever read
	if len(s.closes) > 4*s.config.Lookback {
		s.closes = append([]decimal.Decimal(nil), s.closes[len(s.closes)-s.config.Lookback:]...)
	}
}

// ZScore returns the z-score of the most recent return within the last
// Lookback closes, using the sample standard deviation.
func (s *MeanReverting) ZScore() (float64, error) {
	if len(s.closes) < s.config.Lookback {
		return 0, errors.NewInsufficientDataErrorf(s.config.Lookback, len(s.closes), s.config.Symbol,
			"need %d closes for %s, have %d", s.config.Lookback, s.config.Symbol, len(s.closes))
	}

	window := s.closes[len(s.closes)-s.config.Lookback:]
	returns := make([]float64, 0, len(window)-1)

	for i := 1; i < len(window); i++ {
		if window[i-1].IsZero() {
			return 0, errors.Newf(errors.ErrCodeDegenerateStatistic, "zero close in %s window", s.config.Symbol)
		}

		r, _ := window[i].Div(window[i-1]).Sub(decimal.NewFromInt(1)).Float64()
		returns = append(returns, r)
	}

	return zScoreOfLast(returns)
}

func zScoreOfLast(xs []float64) (float64, error) {
	if len(xs) < 2 {
		return 0, errors.NewInsufficientDataError(2, len(xs), "", "need at least two returns")
	}

	var sum float64
	for _, x := range xs {
		sum += x
	}

	mean := sum / float64(len(xs))

	var sq float64
	for _, x := range xs {
		sq += (x - mean) * (x - mean)
	}

	std := math.Sqrt(sq / float64(len(xs)-1))
	if math.IsNaN(std) || std < minStdDev {
		return 0, errors.New(errors.ErrCodeDegenerateStatistic, "returns have zero variance")
	}

	return (xs[len(xs)-1] - mean) / std, nil
}

func (s *MeanReverting) OnOrderFilled(_ types.Order) error {
	return nil
}

func (s *MeanReverting) OnPositionChanged(positions map[string]types.Position) error {
	if position, ok := positions[s.config.Symbol]; ok {
		s.isLong = position.IsLong()
		s.isShort = position.IsShort()
	}

	return nil
}
