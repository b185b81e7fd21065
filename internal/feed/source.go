package feed

import (
	"time"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

// Source names a market data origin.
type Source string

const (
	SourceGenerator Source = "generator"
	SourceFile      Source = "file"
	SourcePolygon   Source = "polygon"
	SourceBinance   Source = "binance"
)

// Sources lists every supported source.
var Sources = []Source{SourceGenerator, SourceFile, SourcePolygon, SourceBinance}

// SourceConfig selects and parameterizes a feed.
type SourceConfig struct {
	Source  Source
	Symbols []string
	// StartTime and EndTime bound remote fetches and file reads. Remote
	// sources default to the year ending now.
	StartTime optional.Option[time.Time]
	EndTime   optional.Option[time.Time]
	Timespan  Timespan
	// DataPath is the parquet/CSV file or glob for SourceFile.
	DataPath      string
	PolygonAPIKey string
	// Seed and Count drive SourceGenerator; each symbol gets Seed+i.
	Seed  int64
	Count int
}

func (c SourceConfig) dateRange() (time.Time, time.Time) {
	end := c.EndTime.TakeOr(time.Now().UTC())
	start := c.StartTime.TakeOr(end.AddDate(-1, 0, 0))

	return start, end
}

// ticksWithin counts the interval steps from start that do not pass end.
func ticksWithin(start, end time.Time, interval time.Duration) int {
	if end.Before(start) || interval <= 0 {
		return 0
	}

	return int(end.Sub(start)/interval) + 1
}

// NewSourceFeed builds one feed per symbol for the configured source and
// merges them by time. SourceFile reads every symbol in the file unless
// exactly one symbol is given.
func NewSourceFeed(config SourceConfig, log *logger.Logger) (Feed, error) {
	if config.Timespan == "" {
		config.Timespan = TimespanOneDay
	}

	if config.Source != SourceFile && len(config.Symbols) == 0 {
		return nil, errors.New(errors.ErrCodeMissingParameter, "at least one symbol is required")
	}

	start, end := config.dateRange()

	var feeds []Feed

	switch config.Source {
	case SourceGenerator:
		for i, symbol := range config.Symbols {
			generatorConfig := DefaultGeneratorConfig()
			generatorConfig.Symbol = symbol
			generatorConfig.Seed = config.Seed + int64(i)
			generatorConfig.Interval = config.Timespan.Duration()

			if config.Count > 0 {
				generatorConfig.Count = config.Count
			}

			if config.StartTime.IsSome() || config.EndTime.IsSome() {
				generatorConfig.StartTime = start
			}

			// ticks past EndTime would be generated only to be dropped
			if config.EndTime.IsSome() {
				generatorConfig.Count = min(generatorConfig.Count, ticksWithin(generatorConfig.StartTime, end, generatorConfig.Interval))
			}

			feeds = append(feeds, NewGeneratorFeed(generatorConfig))
		}
	case SourceFile:
		if config.DataPath == "" {
			return nil, errors.New(errors.ErrCodeMissingParameter, "a data path is required for the file source")
		}

		options := DuckDBFeedOptions{
			Symbol:    optional.None[string](),
			StartTime: config.StartTime,
			EndTime:   config.EndTime,
		}

		if len(config.Symbols) == 1 {
			options.Symbol = optional.Some(config.Symbols[0])
		}

		f, err := NewDuckDBFeed(config.DataPath, options, log)
		if err != nil {
			return nil, err
		}

		feeds = append(feeds, f)
	case SourcePolygon:
		for _, symbol := range config.Symbols {
			f, err := NewPolygonFeed(config.PolygonAPIKey, symbol, start, end, config.Timespan)
			if err != nil {
				return nil, err
			}

			feeds = append(feeds, f)
		}
	case SourceBinance:
		if _, err := config.Timespan.BinanceInterval(); err != nil {
			return nil, err
		}

		for _, symbol := range config.Symbols {
			feeds = append(feeds, NewBinanceFeed(symbol, start, end, config.Timespan))
		}
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported source %q", config.Source)
	}

	if len(feeds) == 1 {
		return feeds[0], nil
	}

	return MergeFeeds(feeds...), nil
}
