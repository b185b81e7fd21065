package feed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

type DuckDBFeedTestSuite struct {
	suite.Suite
	logger *logger.Logger
	dir    string
	t0     time.Time
}

func TestDuckDBFeedSuite(t *testing.T) {
	suite.Run(t, new(DuckDBFeedTestSuite))
}

func (suite *DuckDBFeedTestSuite) SetupTest() {
	suite.logger = logger.NewNopLogger()
	suite.dir = suite.T().TempDir()
	suite.t0 = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
}

// record drains a Recorder over ticks and returns the parquet path.
func (suite *DuckDBFeedTestSuite) record(ticks []types.Tick) string {
	path := filepath.Join(suite.dir, "data.parquet")
	recorder := NewRecorder(NewMemoryFeed("memory", ticks), path, suite.logger)

	passed := 0

	for tick, err := range recorder.Stream(context.Background()) {
		suite.Require().NoError(err)
		suite.Equal(ticks[passed].Symbol, tick.Symbol)
		passed++
	}

	suite.Equal(len(ticks), passed)
	suite.FileExists(path)

	return path
}

func (suite *DuckDBFeedTestSuite) sample() []types.Tick {
	return []types.Tick{
		{Symbol: "MSFT", Timestamp: suite.t0, OpenPrice: decimal.RequireFromString("300.5"), LastPrice: decimal.RequireFromString("301.25"), Volume: 10},
		{Symbol: "AAPL", Timestamp: suite.t0, OpenPrice: decimal.NewFromInt(100), LastPrice: decimal.NewFromInt(101), Volume: 20},
		{Symbol: "AAPL", Timestamp: suite.t0.Add(time.Minute), OpenPrice: decimal.NewFromInt(101), LastPrice: decimal.NewFromInt(99), Volume: 30},
		{Symbol: "AAPL", Timestamp: suite.t0.Add(2 * time.Minute), OpenPrice: decimal.NewFromInt(99), LastPrice: decimal.NewFromInt(98), Volume: 40},
	}
}

func (suite *DuckDBFeedTestSuite) TestRoundTripThroughRecorder() {
	path := suite.record(suite.sample())

	f, err := NewDuckDBFeed(path, DuckDBFeedOptions{}, suite.logger)
	suite.Require().NoError(err)
	defer f.Close()

	count, err := f.Count(context.Background())
	suite.Require().NoError(err)
	suite.Equal(4, count)

	var got []types.Tick
	for tick, err := range f.Stream(context.Background()) {
		suite.Require().NoError(err)
		got = append(got, tick)
	}

	suite.Require().Len(got, 4)
	// ordered by time, then symbol
	suite.Equal("AAPL", got[0].Symbol)
	suite.Equal("MSFT", got[1].Symbol)
	suite.True(decimal.RequireFromString("300.5").Equal(got[1].OpenPrice))
	suite.True(decimal.RequireFromString("301.25").Equal(got[1].LastPrice))
	suite.Equal(int64(10), got[1].Volume)
	suite.True(got[3].Timestamp.Equal(suite.t0.Add(2 * time.Minute)))
}

func (suite *DuckDBFeedTestSuite) TestFilters() {
	path := suite.record(suite.sample())

	f, err := NewDuckDBFeed(path, DuckDBFeedOptions{
		Symbol:    optional.Some("AAPL"),
		StartTime: optional.Some(suite.t0.Add(time.Minute)),
		EndTime:   optional.None[time.Time](),
	}, suite.logger)
	suite.Require().NoError(err)
	defer f.Close()

	count, err := f.Count(context.Background())
	suite.Require().NoError(err)
	suite.Equal(2, count)

	for tick, err := range f.Stream(context.Background()) {
		suite.Require().NoError(err)
		suite.Equal("AAPL", tick.Symbol)
		suite.False(tick.Timestamp.Before(suite.t0.Add(time.Minute)))
	}
}

func (suite *DuckDBFeedTestSuite) TestCSV() {
	path := filepath.Join(suite.dir, "data.csv")
	content := "time,symbol,open,close,volume\n" +
		"2024-01-02 09:30:00,AAPL,100.0,101.5,1000\n" +
		"2024-01-02 09:31:00,AAPL,101.5,102.0,1500\n"
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0o600))

	f, err := NewDuckDBFeed(path, DuckDBFeedOptions{}, suite.logger)
	suite.Require().NoError(err)
	defer f.Close()

	var got []types.Tick
	for tick, err := range f.Stream(context.Background()) {
		suite.Require().NoError(err)
		got = append(got, tick)
	}

	suite.Require().Len(got, 2)
	suite.True(decimal.RequireFromString("101.5").Equal(got[0].LastPrice))
	suite.Equal(int64(1500), got[1].Volume)
}

func (suite *DuckDBFeedTestSuite) TestMissingFile() {
	_, err := NewDuckDBFeed(filepath.Join(suite.dir, "missing.parquet"), DuckDBFeedOptions{}, suite.logger)
	suite.True(errors.HasCode(err, errors.ErrCodeFeedUnavailable))
}

func (suite *DuckDBFeedTestSuite) TestUnsupportedExtension() {
	_, err := NewDuckDBFeed(filepath.Join(suite.dir, "data.json"), DuckDBFeedOptions{}, suite.logger)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *DuckDBFeedTestSuite) TestRecorderPassesFeedErrors() {
	path := filepath.Join(suite.dir, "broken.parquet")
	recorder := NewRecorder(&failingFeed{err: errors.New(errors.ErrCodeMarketDataFetchFailed, "down")}, path, suite.logger)

	var lastErr error
	for _, err := range recorder.Stream(context.Background()) {
		lastErr = err
	}

	suite.True(errors.HasCode(lastErr, errors.ErrCodeMarketDataFetchFailed))
	suite.NoFileExists(path)
}

func (suite *DuckDBFeedTestSuite) TestRecorderSavesWhenConsumerStopsEarly() {
	path := filepath.Join(suite.dir, "partial.parquet")
	recorder := NewRecorder(NewMemoryFeed("memory", ticksAt("AAPL", suite.t0, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9)), path, suite.logger)

	passed := 0

	for _, err := range recorder.Stream(context.Background()) {
		suite.Require().NoError(err)

		passed++
		if passed == 6 {
			break
		}
	}

	suite.Require().FileExists(path)

	f, err := NewDuckDBFeed(path, DuckDBFeedOptions{}, suite.logger)
	suite.Require().NoError(err)
	defer f.Close()

	count, err := f.Count(context.Background())
	suite.Require().NoError(err)
	suite.Equal(6, count)
}

func (suite *DuckDBFeedTestSuite) TestRecorderSavesTicksBeforeFeedError() {
	path := filepath.Join(suite.dir, "broken.parquet")
	recorder := NewRecorder(&failingFeed{
		ticks: ticksAt("AAPL", suite.t0, 0, 1, 2),
		err:   errors.New(errors.ErrCodeMarketDataFetchFailed, "down"),
	}, path, suite.logger)

	var lastErr error
	for _, err := range recorder.Stream(context.Background()) {
		lastErr = err
	}

	suite.True(errors.HasCode(lastErr, errors.ErrCodeMarketDataFetchFailed))
	suite.Require().FileExists(path)

	f, err := NewDuckDBFeed(path, DuckDBFeedOptions{}, suite.logger)
	suite.Require().NoError(err)
	defer f.Close()

	count, err := f.Count(context.Background())
	suite.Require().NoError(err)
	suite.Equal(3, count)
}
