package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/moznion/go-optional"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-replay/internal/feed"
	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

// downloadAction fetches market data for the requested tickers and saves it
// as one parquet file the backtest file source can replay.
func downloadAction(ctx context.Context, cmd *cli.Command) error {
	appLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer appLogger.Sync() //nolint:errcheck // stdout sync fails on some terminals

	source, err := parseProvider(cmd.String("provider"))
	if err != nil {
		return err
	}

	timespan, err := feed.ParseTimespan(cmd.String("timespan"))
	if err != nil {
		return err
	}

	symbols := parseSymbols(cmd.String("ticker"))
	startDate := cmd.Timestamp("start")
	endDate := cmd.Timestamp("end")

	if !endDate.After(startDate) {
		return errors.Newf(errors.ErrCodeInvalidParameter, "end date %s must be after start date %s",
			endDate.Format(time.DateOnly), startDate.Format(time.DateOnly))
	}

	config := feed.SourceConfig{
		Source:        source,
		Symbols:       symbols,
		StartTime:     optional.Some(startDate),
		EndTime:       optional.Some(endDate),
		Timespan:      timespan,
		PolygonAPIKey: os.Getenv("POLYGON_API_KEY"),
		Seed:          cmd.Int64("seed"),
		// the generator fills the requested range bar by bar
		Count: int(endDate.Sub(startDate) / timespan.Duration()),
	}

	f, err := feed.NewSourceFeed(config, appLogger)
	if err != nil {
		return err
	}

	path := outputPath(cmd.String("data"), symbols, startDate, endDate, timespan)
	if err := os.MkdirAll(cmd.String("data"), 0755); err != nil {
		return errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to create %s", cmd.String("data"))
	}

	appLogger.Info("Starting download",
		zap.Strings("tickers", symbols),
		zap.String("provider", string(source)),
		zap.Time("start", startDate),
		zap.Time("end", endDate),
		zap.String("timespan", string(timespan)),
	)

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(fmt.Sprintf("Downloading from %s", source)),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(cmd.Root().ErrWriter),
	)

	downloaded := 0

	for _, err := range feed.NewRecorder(f, path, appLogger).Stream(ctx) {
		if err != nil {
			return errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "download failed", err)
		}

		downloaded++
		_ = bar.Add(1)
	}

	_ = bar.Finish()

	if downloaded == 0 {
		return errors.Newf(errors.ErrCodeNoDataFound, "no data returned for %v", symbols)
	}

	fmt.Fprintf(cmd.Root().Writer, "Downloaded %d ticks to %s\n", downloaded, path)

	return nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "download",
		Usage: "Download historical market data to parquet",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "ticker",
				Aliases:  []string{"t"},
				Usage:    "Ticker symbol; a comma separated list saves several tickers in one file",
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format (or RFC3339)",
				Config: cli.TimestampConfig{
					Layouts: []string{time.DateOnly, time.RFC3339},
				},
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format (or RFC3339). Defaults to today.",
				Value:   time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{time.DateOnly, time.RFC3339},
				},
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Data provider to use %v", downloadProviders),
				Value:   string(feed.SourcePolygon),
			},
			&cli.StringFlag{
				Name:  "timespan",
				Usage: "Bar size (e.g. 1m, 1h, 1d)",
				Value: string(feed.TimespanOneMinute),
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the data output directory",
				Value:   "data",
			},
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "Random seed for the generator provider",
				Value: 42,
			},
		},
		Action: downloadAction,
	}
}

func main() {
	_ = godotenv.Load()

	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
