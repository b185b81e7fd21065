package strategy

import (
	"github.com/go-playground/validator/v10"

	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

const ConsecutiveCandlesName = "consecutive_candles"

type ConsecutiveCandlesConfig struct {
	Symbol   string `yaml:"symbol" json:"symbol" jsonschema:"title=Symbol,description=Instrument to trade" validate:"required"`
	Quantity int64  `yaml:"quantity" json:"quantity" jsonschema:"title=Quantity,minimum=1,default=100" validate:"gt=0"`
}

// ConsecutiveCandles buys after two consecutive up ticks (close above open)
// and sells after two consecutive down ticks.
type ConsecutiveCandles struct {
	config  ConsecutiveCandlesConfig
	sender  OrderSender
	prev    *types.Tick
	isLong  bool
	isShort bool
}

func NewConsecutiveCandles(config ConsecutiveCandlesConfig) (*ConsecutiveCandles, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidStrategyOptions, "invalid consecutive candles config", err)
	}

	return &ConsecutiveCandles{
		config:  config,
		sender:  nil,
		prev:    nil,
		isLong:  false,
		isShort: false,
	}, nil
}

func (s *ConsecutiveCandles) Name() string {
	return ConsecutiveCandlesName
}

func (s *ConsecutiveCandles) Initialize(sender OrderSender) error {
	if sender == nil {
		return errors.New(errors.ErrCodeStrategyConfigError, "order sender is required")
	}

	s.sender = sender

	return nil
}

func (s *ConsecutiveCandles) OnTick(market MarketView) error {
	if market.LastSymbol() != s.config.Symbol {
		return nil
	}

	tick, err := market.Tick(s.config.Symbol)
	if err != nil {
		return err
	}

	prev := s.prev
	s.prev = &tick

	if prev == nil {
		return nil
	}

	up := func(t types.Tick) bool { return t.LastPrice.GreaterThan(t.OpenPrice) }
	down := func(t types.Tick) bool { return t.LastPrice.LessThan(t.OpenPrice) }

	switch {
	case up(tick) && up(*prev) && !s.isLong:
		return s.sender.SendMarketOrder(s.config.Symbol, s.config.Quantity, types.PurchaseTypeBuy, tick.Timestamp)
	case down(tick) && down(*prev) && !s.isShort:
		return s.sender.SendMarketOrder(s.config.Symbol, s.config.Quantity, types.PurchaseTypeSell, tick.Timestamp)
	}

	return nil
}

func (s *ConsecutiveCandles) OnOrderFilled(_ types.Order) error {
	return nil
}

func (s *ConsecutiveCandles) OnPositionChanged(positions map[string]types.Position) error {
	if position, ok := positions[s.config.Symbol]; ok {
		s.isLong = position.IsLong()
		s.isShort = position.IsShort()
	}

	return nil
}
