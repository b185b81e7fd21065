package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	engine "github.com/rxtech-lab/argo-replay/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-replay/internal/feed"
	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

func parseSymbols(s string) []string {
	var symbols []string

	for _, symbol := range strings.Split(s, ",") {
		if symbol = strings.TrimSpace(symbol); symbol != "" {
			symbols = append(symbols, symbol)
		}
	}

	return symbols
}

func timestampOption(cmd *cli.Command, name string) optional.Option[time.Time] {
	if !cmd.IsSet(name) {
		return optional.None[time.Time]()
	}

	return optional.Some(cmd.Timestamp(name))
}

// buildFeed creates the feed selected by the flags. --save-data wraps it in
// a Recorder.
func buildFeed(cmd *cli.Command, symbols []string, log *logger.Logger) (feed.Feed, error) {
	timespan, err := feed.ParseTimespan(cmd.String("timespan"))
	if err != nil {
		return nil, err
	}

	config := feed.SourceConfig{
		Source:        feed.Source(cmd.String("source")),
		Symbols:       symbols,
		StartTime:     timestampOption(cmd, "start"),
		EndTime:       timestampOption(cmd, "end"),
		Timespan:      timespan,
		DataPath:      cmd.String("data"),
		PolygonAPIKey: os.Getenv("POLYGON_API_KEY"),
		Seed:          cmd.Int64("seed"),
		Count:         int(cmd.Int64("count")),
	}

	// a file replays every symbol it holds unless --symbol names one
	if config.Source == feed.SourceFile && !cmd.IsSet("symbol") {
		config.Symbols = nil
	}

	f, err := feed.NewSourceFeed(config, log)
	if err != nil {
		return nil, err
	}

	if path := cmd.String("save-data"); path != "" {
		f = feed.NewRecorder(f, path, log)
	}

	return f, nil
}

// loadEngineConfig reads --config, falling back to an empty config. The
// --start/--end flags fill a window the file leaves open.
func loadEngineConfig(cmd *cli.Command) (engine.BacktestEngineV1Config, error) {
	config := engine.EmptyConfig()

	if path := cmd.String("config"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return config, errors.Wrapf(errors.ErrCodeBacktestConfigError, err, "failed to read config %s", path)
		}

		if config, err = engine.ParseConfig(data); err != nil {
			return config, err
		}
	}

	if cmd.IsSet("start") && config.StartTime.IsNone() {
		config.StartTime = optional.Some(cmd.Timestamp("start"))
	}

	if cmd.IsSet("end") && config.EndTime.IsNone() {
		config.EndTime = optional.Some(cmd.Timestamp("end"))
	}

	return config, config.Validate()
}

// loadStrategyConfig merges --strategy-config with the per-parameter flags.
func loadStrategyConfig(cmd *cli.Command) ([]byte, error) {
	values := map[string]any{}

	if path := cmd.String("strategy-config"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeStrategyConfigError, err, "failed to read strategy config %s", path)
		}

		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeStrategyConfigError, err, "failed to parse strategy config %s", path)
		}
	}

	if cmd.IsSet("lookback") {
		values["lookback"] = cmd.Int64("lookback")
	}

	if cmd.IsSet("buy-threshold") {
		values["buy_threshold"] = cmd.Float("buy-threshold")
	}

	if cmd.IsSet("sell-threshold") {
		values["sell_threshold"] = cmd.Float("sell-threshold")
	}

	if cmd.IsSet("quantity") {
		values["quantity"] = cmd.Int64("quantity")
	}

	if len(values) == 0 {
		return nil, nil
	}

	data, err := yaml.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("failed to encode strategy config: %w", err)
	}

	return data, nil
}
