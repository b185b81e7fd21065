package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

type PurchaseType string

type OrderType string

type OrderStatus string

const (
	PurchaseTypeBuy  PurchaseType = "BUY"
	PurchaseTypeSell PurchaseType = "SELL"
)

const (
	OrderTypeMarket OrderType = "MARKET"
	// OrderTypeLimit is accepted into the book but has no matching rule.
	OrderTypeLimit OrderType = "LIMIT"
)

// Only PENDING -> FILLED is implemented. Partial fills, cancellation and
// expiry would add states here.
const (
	OrderStatusPending OrderStatus = "PENDING"
	OrderStatusFilled  OrderStatus = "FILLED"
)

// Sign is +1 for buys and -1 for sells.
func (p PurchaseType) Sign() decimal.Decimal {
	if p == PurchaseTypeSell {
		return decimal.NewFromInt(-1)
	}

	return decimal.NewFromInt(1)
}

// Order is a requested trade. Everything except the fill fields is fixed at
// creation.
type Order struct {
	ID         string          `yaml:"id" json:"id" validate:"omitempty,uuid"`
	Timestamp  time.Time       `yaml:"timestamp" json:"timestamp" validate:"required"`
	Symbol     string          `yaml:"symbol" json:"symbol" validate:"required"`
	Quantity   int64           `yaml:"quantity" json:"quantity" validate:"required,gt=0"`
	Side       PurchaseType    `yaml:"side" json:"side" validate:"required,oneof=BUY SELL"`
	Kind       OrderType       `yaml:"kind" json:"kind" validate:"required,oneof=MARKET LIMIT"`
	LimitPrice decimal.Decimal `yaml:"limit_price" json:"limit_price"`
	Status     OrderStatus     `yaml:"status" json:"status" validate:"required,oneof=PENDING FILLED"`
	// FilledPrice is set once the order has been matched.
	FilledPrice optional.Option[decimal.Decimal] `yaml:"filled_price" json:"filled_price"`
	// FilledTimestamp is set once the order has been matched.
	FilledTimestamp optional.Option[time.Time] `yaml:"filled_timestamp" json:"filled_timestamp"`
}

// NewMarketOrder returns a pending market order without an ID.
func NewMarketOrder(symbol string, quantity int64, side PurchaseType, ts time.Time) Order {
	return Order{
		ID:              "",
		Timestamp:       ts,
		Symbol:          symbol,
		Quantity:        quantity,
		Side:            side,
		Kind:            OrderTypeMarket,
		LimitPrice:      decimal.Zero,
		Status:          OrderStatusPending,
		FilledPrice:     optional.None[decimal.Decimal](),
		FilledTimestamp: optional.None[time.Time](),
	}
}

// Validate checks the order's fields against their tags.
func (o Order) Validate() error {
	validate := validator.New()

	if err := validate.Struct(o); err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidOrder, err, "invalid order for %q", o.Symbol)
	}

	return nil
}

// IsFilled reports whether the order has been matched.
func (o Order) IsFilled() bool {
	return o.Status == OrderStatusFilled
}

// Fill marks the order filled at price and ts. It succeeds exactly once.
func (o *Order) Fill(price decimal.Decimal, ts time.Time) error {
	if o.IsFilled() {
		return errors.Newf(errors.ErrCodeOrderAlreadyFilled, "order %s is already filled", o.ID)
	}

	o.Status = OrderStatusFilled
	o.FilledPrice = optional.Some(price)
	o.FilledTimestamp = optional.Some(ts)

	return nil
}
