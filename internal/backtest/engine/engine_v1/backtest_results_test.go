package engine

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	engine_types "github.com/rxtech-lab/argo-replay/internal/backtest/engine"
	"github.com/rxtech-lab/argo-replay/internal/feed"
	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/internal/strategy"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

func countRows(t *testing.T, path string) int {
	t.Helper()

	db, err := sql.Open("duckdb", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM read_parquet('%s')", path)).Scan(&n))

	return n
}

func TestWriteResults(t *testing.T) {
	config := feed.DefaultGeneratorConfig()
	config.Symbol = "AAPL"
	config.Count = 200
	config.Seed = 7

	s, err := strategy.NewConsecutiveCandles(strategy.ConsecutiveCandlesConfig{Symbol: "AAPL", Quantity: 10})
	require.NoError(t, err)

	b, err := NewBacktester(EmptyConfig(), s, feed.NewGeneratorFeed(config), logger.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, b.Run(context.Background(), engine_types.LifecycleCallbacks{}))

	folder := filepath.Join(t.TempDir(), "results")
	require.NoError(t, b.WriteResults(folder))

	result := b.Result()
	assert.Equal(t, 200, result.Snapshots)
	assert.Equal(t, result.OrdersFilled, countRows(t, filepath.Join(folder, "realized_pnl.parquet")))
	assert.Equal(t, 200, countRows(t, filepath.Join(folder, "unrealized_pnl.parquet")))
	assert.Equal(t, result.OrdersFilled+result.OrdersPending, countRows(t, filepath.Join(folder, "orders.parquet")))

	data, err := os.ReadFile(filepath.Join(folder, "stats.yaml"))
	require.NoError(t, err)

	var stats map[string]any
	require.NoError(t, yaml.Unmarshal(data, &stats))
	assert.Equal(t, b.RunID(), stats["run_id"])
	assert.Equal(t, "consecutive_candles", stats["strategy"])
	assert.Equal(t, 200, stats["snapshots"])
}

func TestResultWriterEmptySeries(t *testing.T) {
	folder := t.TempDir()
	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	pending := types.NewMarketOrder("AAPL", 1, types.PurchaseTypeBuy, ts)
	pending.ID = "pending"

	result := BacktestResult{
		RunID:              "run",
		Strategy:           "mock",
		TotalRealizedPnL:   decimal.Zero,
		TotalUnrealizedPnL: decimal.RequireFromString("12.5"),
		Positions:          []types.Position{types.NewPosition("AAPL")},
	}

	err := NewResultWriter(nil).Write(folder, result, nil, nil, []types.Order{pending})
	require.NoError(t, err)

	assert.Equal(t, 0, countRows(t, filepath.Join(folder, "realized_pnl.parquet")))
	assert.Equal(t, 1, countRows(t, filepath.Join(folder, "orders.parquet")))

	var decoded BacktestResult
	data, err := os.ReadFile(filepath.Join(folder, "stats.yaml"))
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, "12.5", decoded.TotalUnrealizedPnL.String())
	require.Len(t, decoded.Positions, 1)
	assert.Equal(t, "AAPL", decoded.Positions[0].Symbol)
}

func TestResultWriterUnwritableFolder(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	err := NewResultWriter(nil).Write(filepath.Join(file, "results"), BacktestResult{}, nil, nil, nil)
	assert.True(t, errors.HasCode(err, errors.ErrCodeBacktestWriteResults))
}
