package feed

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

func TestNewSourceFeedGenerator(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	f, err := NewSourceFeed(SourceConfig{
		Source:    SourceGenerator,
		Symbols:   []string{"AAPL", "MSFT"},
		StartTime: optional.Some(start),
		Timespan:  TimespanOneHour,
		Seed:      1,
		Count:     10,
	}, logger.NewNopLogger())
	require.NoError(t, err)

	count, err := Count(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 20, count)

	var first time.Time

	symbols := map[string]int{}

	for tick, err := range f.Stream(context.Background()) {
		require.NoError(t, err)

		if first.IsZero() {
			first = tick.Timestamp
		}

		symbols[tick.Symbol]++
	}

	assert.Equal(t, start, first)
	assert.Equal(t, map[string]int{"AAPL": 10, "MSFT": 10}, symbols)
}

func TestNewSourceFeedGeneratorStopsAtEndTime(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(5 * time.Hour)

	f, err := NewSourceFeed(SourceConfig{
		Source:    SourceGenerator,
		Symbols:   []string{"AAPL"},
		StartTime: optional.Some(start),
		EndTime:   optional.Some(end),
		Timespan:  TimespanOneHour,
		Count:     100,
	}, logger.NewNopLogger())
	require.NoError(t, err)

	var last time.Time

	ticks := 0

	for tick, err := range f.Stream(context.Background()) {
		require.NoError(t, err)

		last = tick.Timestamp
		ticks++
	}

	assert.Equal(t, 6, ticks)
	assert.Equal(t, end, last)
}

func TestTicksWithin(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, ticksWithin(start, start, time.Hour))
	assert.Equal(t, 3, ticksWithin(start, start.Add(150*time.Minute), time.Hour))
	assert.Equal(t, 0, ticksWithin(start, start.Add(-time.Hour), time.Hour))
}

func TestNewSourceFeedFileFiltersSingleSymbol(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ticks.parquet")

	generated, err := NewSourceFeed(SourceConfig{
		Source:  SourceGenerator,
		Symbols: []string{"AAPL", "MSFT"},
		Count:   5,
	}, logger.NewNopLogger())
	require.NoError(t, err)

	for _, err := range NewRecorder(generated, path, logger.NewNopLogger()).Stream(context.Background()) {
		require.NoError(t, err)
	}

	tests := []struct {
		name    string
		symbols []string
		want    int
	}{
		{"every symbol", nil, 10},
		{"one symbol", []string{"MSFT"}, 5},
		{"several symbols", []string{"AAPL", "MSFT"}, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewSourceFeed(SourceConfig{Source: SourceFile, Symbols: tt.symbols, DataPath: path}, logger.NewNopLogger())
			require.NoError(t, err)

			defer f.(*DuckDBFeed).Close()

			count, err := Count(context.Background(), f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, count)
		})
	}
}

func TestNewSourceFeedErrors(t *testing.T) {
	tests := []struct {
		name   string
		config SourceConfig
		code   errors.ErrorCode
	}{
		{"unknown source", SourceConfig{Source: "kraken", Symbols: []string{"AAPL"}}, errors.ErrCodeInvalidProvider},
		{"no symbols", SourceConfig{Source: SourceGenerator}, errors.ErrCodeMissingParameter},
		{"file without path", SourceConfig{Source: SourceFile}, errors.ErrCodeMissingParameter},
		{"polygon without key", SourceConfig{Source: SourcePolygon, Symbols: []string{"AAPL"}}, errors.ErrCodeMissingParameter},
		{
			"binance one second bars",
			SourceConfig{Source: SourceBinance, Symbols: []string{"BTCUSDT"}, Timespan: TimespanOneSecond},
			errors.ErrCodeInvalidTimespan,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSourceFeed(tt.config, logger.NewNopLogger())
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestSourceConfigDateRange(t *testing.T) {
	end := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	start, gotEnd := SourceConfig{EndTime: optional.Some(end)}.dateRange()
	assert.Equal(t, end, gotEnd)
	assert.Equal(t, end.AddDate(-1, 0, 0), start)
}
