package feed

import (
	"context"
	"fmt"
	"iter"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

type ReplayTestSuite struct {
	suite.Suite
	t0 time.Time
}

func TestReplaySuite(t *testing.T) {
	suite.Run(t, new(ReplayTestSuite))
}

func (suite *ReplayTestSuite) SetupTest() {
	suite.t0 = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
}

func (suite *ReplayTestSuite) tick(symbol string, offset time.Duration, open, last int64) types.Tick {
	return types.Tick{
		Symbol:    symbol,
		Timestamp: suite.t0.Add(offset),
		LastPrice: decimal.NewFromInt(last),
		OpenPrice: decimal.NewFromInt(open),
		Volume:    100,
	}
}

// failingFeed yields its ticks and then err.
type failingFeed struct {
	ticks []types.Tick
	err   error
}

func (f *failingFeed) Name() string { return "failing" }

func (f *failingFeed) Stream(_ context.Context) iter.Seq2[types.Tick, error] {
	return func(yield func(types.Tick, error) bool) {
		for _, tick := range f.ticks {
			if !yield(tick, nil) {
				return
			}
		}

		yield(types.Tick{}, f.err)
	}
}

func (suite *ReplayTestSuite) TestAppliesLastThenOpen() {
	f := NewMemoryFeed("memory", []types.Tick{
		suite.tick("AAPL", 0, 10, 11),
		suite.tick("MSFT", time.Minute, 20, 21),
		suite.tick("AAPL", 2*time.Minute, 12, 13),
	})

	var seen []string

	for snapshot, err := range Replay(context.Background(), f) {
		suite.Require().NoError(err)

		symbol := snapshot.LastSymbol()
		open, err := snapshot.OpenPrice(symbol)
		suite.Require().NoError(err)
		last, err := snapshot.LastPrice(symbol)
		suite.Require().NoError(err)

		seen = append(seen, fmt.Sprintf("%s %s/%s", symbol, open, last))
	}

	suite.Equal([]string{"AAPL 10/11", "MSFT 20/21", "AAPL 12/13"}, seen)
}

func (suite *ReplayTestSuite) TestRejectsNonMonotonicTimestamps() {
	f := NewMemoryFeed("memory", []types.Tick{
		suite.tick("AAPL", time.Minute, 10, 11),
		suite.tick("MSFT", 0, 20, 21), // earlier, but a different symbol
		suite.tick("AAPL", time.Minute, 10, 12),
		suite.tick("AAPL", 0, 10, 11),
	})

	count := 0

	var lastErr error

	for _, err := range Replay(context.Background(), f) {
		if err != nil {
			lastErr = err

			break
		}

		count++
	}

	suite.Equal(3, count)
	suite.True(errors.HasCode(lastErr, errors.ErrCodeNonMonotonicTimestamp), "got %v", lastErr)
}

func (suite *ReplayTestSuite) TestRejectsInvalidTick() {
	bad := suite.tick("AAPL", 0, 10, 11)
	bad.Volume = -1

	var lastErr error
	for _, err := range Replay(context.Background(), NewMemoryFeed("memory", []types.Tick{bad})) {
		lastErr = err
	}

	suite.True(errors.HasCode(lastErr, errors.ErrCodeInvalidTick))
}

func (suite *ReplayTestSuite) TestUncodedFeedErrorBecomesFeedUnavailable() {
	f := &failingFeed{
		ticks: []types.Tick{suite.tick("AAPL", 0, 10, 11)},
		err:   fmt.Errorf("connection reset"),
	}

	snapshots := 0

	var lastErr error

	for snapshot, err := range Replay(context.Background(), f) {
		if err != nil {
			lastErr = err

			continue
		}

		suite.NotNil(snapshot)
		snapshots++
	}

	suite.Equal(1, snapshots)
	suite.True(errors.HasCode(lastErr, errors.ErrCodeFeedUnavailable))
	suite.ErrorContains(lastErr, "connection reset")
}

func (suite *ReplayTestSuite) TestCodedFeedErrorIsKept() {
	f := &failingFeed{err: errors.New(errors.ErrCodeMarketDataFetchFailed, "rate limited")}

	var lastErr error
	for _, err := range Replay(context.Background(), f) {
		lastErr = err
	}

	suite.True(errors.HasCode(lastErr, errors.ErrCodeMarketDataFetchFailed))
}

func (suite *ReplayTestSuite) TestStopsWhenConsumerBreaks() {
	f := NewMemoryFeed("memory", []types.Tick{
		suite.tick("AAPL", 0, 10, 11),
		suite.tick("AAPL", time.Minute, 10, 11),
	})

	count := 0
	for range Replay(context.Background(), f) {
		count++

		break
	}

	suite.Equal(1, count)
}
