package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-replay/internal/feed"
	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

type DownloadCmdTestSuite struct {
	suite.Suite
	dataDir string
	out     *bytes.Buffer
}

func TestDownloadCmdSuite(t *testing.T) {
	suite.Run(t, new(DownloadCmdTestSuite))
}

func (suite *DownloadCmdTestSuite) SetupTest() {
	suite.dataDir = suite.T().TempDir()
	suite.out = &bytes.Buffer{}
}

func (suite *DownloadCmdTestSuite) run(args ...string) error {
	cmd := newCommand()
	cmd.Writer = suite.out
	cmd.ErrWriter = suite.out

	return cmd.Run(context.Background(), append([]string{"download", "--data", suite.dataDir}, args...))
}

func (suite *DownloadCmdTestSuite) TestGeneratorDownload() {
	err := suite.run("--ticker", "AAPL,MSFT", "--provider", "generator", "--timespan", "1h",
		"--start", "2024-01-01", "--end", "2024-01-02")
	suite.Require().NoError(err)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	path := outputPath(suite.dataDir, []string{"AAPL", "MSFT"}, start, start.AddDate(0, 0, 1), feed.TimespanOneHour)
	suite.Contains(suite.out.String(), "Downloaded 48 ticks to "+path)

	f, err := feed.NewDuckDBFeed(path, feed.DuckDBFeedOptions{
		Symbol:    optional.Some("MSFT"),
		StartTime: optional.None[time.Time](),
		EndTime:   optional.None[time.Time](),
	}, logger.NewNopLogger())
	suite.Require().NoError(err)

	defer f.Close()

	count, err := f.Count(context.Background())
	suite.Require().NoError(err)
	suite.Equal(24, count)
}

func (suite *DownloadCmdTestSuite) TestInvalidInput() {
	tests := []struct {
		name string
		args []string
		code errors.ErrorCode
	}{
		{"file provider", []string{"--provider", "file"}, errors.ErrCodeInvalidProvider},
		{"bad timespan", []string{"--timespan", "2d"}, errors.ErrCodeInvalidTimespan},
		{"inverted range", []string{"--end", "2023-12-01"}, errors.ErrCodeInvalidParameter},
		{"polygon without key", []string{"--provider", "polygon"}, errors.ErrCodeMissingParameter},
	}

	suite.T().Setenv("POLYGON_API_KEY", "")

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			args := append([]string{"--ticker", "AAPL", "--start", "2024-01-01"}, tt.args...)
			if tt.name != "inverted range" {
				args = append(args, "--end", "2024-02-01")
			}

			err := suite.run(args...)
			suite.True(errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func (suite *DownloadCmdTestSuite) TestParseProvider() {
	source, err := parseProvider("binance")
	suite.NoError(err)
	suite.Equal(feed.SourceBinance, source)

	_, err = parseProvider("kraken")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidProvider))
}

func (suite *DownloadCmdTestSuite) TestOutputPath() {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	suite.Equal("data/AAPL-MSFT_2024-01-01_2024-02-01_15m.parquet",
		outputPath("data", []string{"AAPL", "MSFT"}, start, start.AddDate(0, 1, 0), feed.TimespanFifteenMinutes))
}
