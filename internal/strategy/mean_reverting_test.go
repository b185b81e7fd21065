package strategy_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/rxtech-lab/argo-replay/internal/strategy"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/mocks"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

type MeanRevertingTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	sender   *mocks.MockOrderSender
	snapshot *types.MarketSnapshot
	t0       time.Time
	n        int
}

func TestMeanRevertingSuite(t *testing.T) {
	suite.Run(t, new(MeanRevertingTestSuite))
}

func (suite *MeanRevertingTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.sender = mocks.NewMockOrderSender(suite.ctrl)
	suite.snapshot = types.NewMarketSnapshot()
	suite.t0 = time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC)
	suite.n = 0
}

func (suite *MeanRevertingTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *MeanRevertingTestSuite) newStrategy(lookback int) *strategy.MeanReverting {
	config := strategy.DefaultMeanRevertingConfig("AAPL")
	config.Lookback = lookback

	s, err := strategy.NewMeanReverting(config)
	suite.Require().NoError(err)
	suite.Require().NoError(s.Initialize(suite.sender))

	return s
}

// feed pushes one close for AAPL and returns its timestamp.
func (suite *MeanRevertingTestSuite) feed(s *strategy.MeanReverting, price string) time.Time {
	ts := suite.t0.Add(time.Duration(suite.n) * time.Hour)
	suite.n++

	suite.snapshot.AddLastPrice(ts, "AAPL", decimal.RequireFromString(price), 1)
	suite.snapshot.AddOpenPrice(ts, "AAPL", decimal.RequireFromString(price))
	suite.Require().NoError(s.OnTick(suite.snapshot))

	return ts
}

// warmUp feeds nine closes alternating by about 1%.
func (suite *MeanRevertingTestSuite) warmUp(s *strategy.MeanReverting) {
	for i := 0; i < 9; i++ {
		if i%2 == 0 {
			suite.feed(s, "100")
		} else {
			suite.feed(s, "101")
		}
	}
}

func (suite *MeanRevertingTestSuite) TestInsufficientHistoryEmitsNothing() {
	s := suite.newStrategy(5)
	suite.sender.EXPECT().SendMarketOrder(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	for _, p := range []string{"100", "101", "99", "100"} {
		suite.feed(s, p)
	}

	_, err := s.ZScore()
	suite.True(errors.IsInsufficientDataError(err))
	suite.True(errors.HasCode(err, errors.ErrCodeInsufficientData))
}

func (suite *MeanRevertingTestSuite) TestZeroVarianceEmitsNothing() {
	s := suite.newStrategy(5)
	suite.sender.EXPECT().SendMarketOrder(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	for _, p := range []string{"100", "100", "100", "100", "100", "100"} {
		suite.feed(s, p)
	}

	_, err := s.ZScore()
	suite.True(errors.HasCode(err, errors.ErrCodeDegenerateStatistic))
}

func (suite *MeanRevertingTestSuite) TestBuysOnSharpDrop() {
	s := suite.newStrategy(10)

	suite.warmUp(s)

	ts := suite.t0.Add(9 * time.Hour)
	suite.sender.EXPECT().SendMarketOrder("AAPL", int64(100), types.PurchaseTypeBuy, ts).Return(nil).Times(1)
	suite.feed(s, "80")

	z, err := s.ZScore()
	suite.Require().NoError(err)
	suite.Less(z, -1.5)
}

func (suite *MeanRevertingTestSuite) TestSellsOnSharpRise() {
	s := suite.newStrategy(10)

	suite.warmUp(s)

	ts := suite.t0.Add(9 * time.Hour)
	suite.sender.EXPECT().SendMarketOrder("AAPL", int64(100), types.PurchaseTypeSell, ts).Return(nil).Times(1)
	suite.feed(s, "130")
}

func (suite *MeanRevertingTestSuite) TestDoesNotAddToLongPosition() {
	s := suite.newStrategy(10)

	suite.warmUp(s)

	position := types.NewPosition("AAPL")
	position.ApplyFill(types.PurchaseTypeBuy, 100, decimal.NewFromInt(100))
	suite.Require().NoError(s.OnPositionChanged(map[string]types.Position{"AAPL": position}))

	suite.sender.EXPECT().SendMarketOrder(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	suite.feed(s, "80")
}

func (suite *MeanRevertingTestSuite) TestIgnoresOtherSymbols() {
	s := suite.newStrategy(3)
	suite.sender.EXPECT().SendMarketOrder(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	for i := 0; i < 10; i++ {
		ts := suite.t0.Add(time.Duration(i) * time.Hour)
		suite.snapshot.AddLastPrice(ts, "MSFT", decimal.NewFromInt(int64(100+i*i)), 1)
		suite.Require().NoError(s.OnTick(suite.snapshot))
	}
}

func (suite *MeanRevertingTestSuite) TestSenderErrorPropagates() {
	s := suite.newStrategy(10)

	suite.warmUp(s)

	suite.sender.EXPECT().SendMarketOrder(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New(errors.ErrCodeInvalidOrder, "rejected"))

	suite.snapshot.AddLastPrice(suite.t0.Add(9*time.Hour), "AAPL", decimal.NewFromInt(80), 1)
	err := s.OnTick(suite.snapshot)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidOrder))
}

func TestMeanRevertingConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *strategy.MeanRevertingConfig)
	}{
		{"missing symbol", func(c *strategy.MeanRevertingConfig) { c.Symbol = "" }},
		{"lookback too short", func(c *strategy.MeanRevertingConfig) { c.Lookback = 2 }},
		{"zero quantity", func(c *strategy.MeanRevertingConfig) { c.Quantity = 0 }},
		{"inverted thresholds", func(c *strategy.MeanRevertingConfig) { c.BuyThreshold, c.SellThreshold = 2, 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := strategy.DefaultMeanRevertingConfig("AAPL")
			tt.mutate(&config)

			_, err := strategy.NewMeanReverting(config)
			if !errors.HasCode(err, errors.ErrCodeInvalidStrategyOptions) {
				t.Fatalf("expected invalid strategy options, got %v", err)
			}
		})
	}
}
