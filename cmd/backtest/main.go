package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap/zapcore"

	engine_types "github.com/rxtech-lab/argo-replay/internal/backtest/engine"
	engine "github.com/rxtech-lab/argo-replay/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-replay/internal/feed"
	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/internal/strategy"
	"github.com/rxtech-lab/argo-replay/internal/version"
)

// backtestAction builds the feed, strategy and backtester from the flags,
// replays the feed and writes the results folder.
func backtestAction(ctx context.Context, cmd *cli.Command) error {
	level := zapcore.InfoLevel
	if cmd.Bool("verbose") {
		level = zapcore.DebugLevel
	}

	appLogger, err := logger.NewLoggerWithLevel(level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer appLogger.Sync() //nolint:errcheck // stdout sync fails on some terminals

	config, err := loadEngineConfig(cmd)
	if err != nil {
		return err
	}

	symbols := parseSymbols(cmd.String("symbol"))
	if len(symbols) == 0 {
		return fmt.Errorf("at least one symbol is required")
	}

	f, err := buildFeed(cmd, symbols, appLogger)
	if err != nil {
		return err
	}

	if closer, ok := f.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	strategyConfig, err := loadStrategyConfig(cmd)
	if err != nil {
		return err
	}

	s, err := strategy.NewStrategy(cmd.String("strategy"), symbols[0], strategyConfig)
	if err != nil {
		return err
	}

	backtester, err := engine.NewBacktester(config, s, f, appLogger)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar

	onStart := engine_types.OnBacktestStartCallback(func(runID, feedName, strategyName string, total int) error {
		if cmd.Bool("no-progress") {
			return nil
		}

		if total <= 0 {
			total = -1
		}

		bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription(fmt.Sprintf("Replaying %s through %s", feedName, strategyName)),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWriter(os.Stderr),
		)

		return nil
	})
	onProcess := engine_types.OnProcessDataCallback(func(current int, _ int) error {
		if bar != nil {
			return bar.Set(current)
		}

		return nil
	})
	onEnd := engine_types.OnBacktestEndCallback(func(_ error) {
		if bar != nil {
			_ = bar.Finish()
		}
	})

	runErr := backtester.Run(ctx, engine_types.LifecycleCallbacks{
		OnBacktestStart: &onStart,
		OnBacktestEnd:   &onEnd,
		OnProcessData:   &onProcess,
		OnOrderFilled:   nil,
	})

	// a failed run still reports what it processed
	result := backtester.Result()
	fmt.Fprintln(cmd.Root().Writer, renderSummary(result, runErr))

	if runErr != nil && result.Snapshots == 0 {
		return runErr
	}

	if folder := cmd.String("results"); folder != "" {
		if err := backtester.WriteResults(folder); err != nil {
			return err
		}
	}

	return runErr
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "backtest",
		Usage:   "Replay market data through a trading strategy",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a backtest engine config `FILE` (yaml)",
			},
			&cli.StringFlag{
				Name:    "symbol",
				Aliases: []string{"t"},
				Usage:   "Symbol to trade; a comma separated list replays several symbols merged by time",
				Value:   "AAPL",
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02", time.RFC3339},
				},
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02", time.RFC3339},
				},
			},
			&cli.StringFlag{
				Name:    "source",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Market data source %v", feed.Sources),
				Value:   string(feed.SourceGenerator),
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Parquet or CSV file (or glob) for the file source",
			},
			&cli.StringFlag{
				Name:  "timespan",
				Usage: "Bar size for polygon and binance (e.g. 1m, 1h, 1d)",
				Value: "1d",
			},
			&cli.StringFlag{
				Name:  "strategy",
				Usage: fmt.Sprintf("Strategy to run (%v)", strategy.Names()),
				Value: strategy.MeanRevertingName,
			},
			&cli.StringFlag{
				Name:  "strategy-config",
				Usage: "Path to a strategy config `FILE` (yaml)",
			},
			&cli.Int64Flag{
				Name:  "lookback",
				Usage: "Number of closes in the z-score window",
			},
			&cli.FloatFlag{
				Name:  "buy-threshold",
				Usage: "Buy when the z-score falls below this value",
			},
			&cli.FloatFlag{
				Name:  "sell-threshold",
				Usage: "Sell when the z-score rises above this value",
			},
			&cli.Int64Flag{
				Name:  "quantity",
				Usage: "Size of every order",
			},
			&cli.StringFlag{
				Name:    "results",
				Aliases: []string{"o"},
				Usage:   "Folder for the result files; empty skips writing",
				Value:   "results",
			},
			&cli.StringFlag{
				Name:  "save-data",
				Usage: "Save the replayed market data to this parquet `FILE`",
			},
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "Random seed for the generator source",
				Value: 42,
			},
			&cli.Int64Flag{
				Name:  "count",
				Usage: "Number of ticks for the generator source",
				Value: 1000,
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "Disable the progress bar",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log at debug level",
			},
		},
		Action: backtestAction,
	}
}

func main() {
	// .env is optional; it only supplies POLYGON_API_KEY
	_ = godotenv.Load()

	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
