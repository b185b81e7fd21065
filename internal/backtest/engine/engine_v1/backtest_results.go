package engine

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/internal/version"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

const resultBatchSize = 1000

// BacktestResult summarises a run. It is written to stats.yaml.
type BacktestResult struct {
	RunID              string           `yaml:"run_id"`
	EngineVersion      string           `yaml:"engine_version"`
	Strategy           string           `yaml:"strategy"`
	Feed               string           `yaml:"feed"`
	StartTime          time.Time        `yaml:"start_time"`
	EndTime            time.Time        `yaml:"end_time"`
	Snapshots          int              `yaml:"snapshots"`
	OrdersSubmitted    int              `yaml:"orders_submitted"`
	OrdersFilled       int              `yaml:"orders_filled"`
	OrdersPending      int              `yaml:"orders_pending"`
	TotalRealizedPnL   decimal.Decimal  `yaml:"total_realized_pnl"`
	TotalUnrealizedPnL decimal.Decimal  `yaml:"total_unrealized_pnl"`
	Positions          []types.Position `yaml:"positions"`
}

// Result summarises the backtester's current state. Every position is marked
// at the latest price seen for its symbol; the ledger itself is not touched.
func (b *Backtester) Result() BacktestResult {
	result := BacktestResult{
		RunID:              b.runID,
		EngineVersion:      version.GetVersion(),
		Strategy:           b.strategy.Name(),
		Feed:               b.feed.Name(),
		StartTime:          b.firstTick,
		EndTime:            b.lastTick,
		Snapshots:          b.processed,
		OrdersSubmitted:    b.submitted,
		OrdersFilled:       len(b.filled),
		OrdersPending:      b.book.Len(),
		TotalRealizedPnL:   decimal.Zero,
		TotalUnrealizedPnL: decimal.Zero,
		Positions:          []types.Position{},
	}

	positions := b.ledger.Positions()
	for _, symbol := range b.ledger.Symbols() {
		position := positions[symbol]
		if price, err := b.snapshot.LastPrice(symbol); err == nil {
			position.MarkToMarket(price)
		}

		result.TotalRealizedPnL = result.TotalRealizedPnL.Add(position.RealizedPnL)
		result.TotalUnrealizedPnL = result.TotalUnrealizedPnL.Add(position.UnrealizedPnL)
		result.Positions = append(result.Positions, position)
	}

	return result
}

// WriteResults writes the run's P&L series, orders and summary into folder.
func (b *Backtester) WriteResults(folder string) error {
	orders := append(b.FilledOrders(), b.PendingOrders()...)

	return NewResultWriter(b.log).Write(folder, b.Result(), b.RealizedPnL(), b.UnrealizedPnL(), orders)
}

// ResultWriter exports backtest output through an in-memory DuckDB database.
type ResultWriter struct {
	log *logger.Logger
	sq  squirrel.StatementBuilderType
}

func NewResultWriter(log *logger.Logger) *ResultWriter {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &ResultWriter{
		log: log,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// Write creates folder and fills it with realized_pnl.parquet,
// unrealized_pnl.parquet, orders.parquet and stats.yaml.
func (w *ResultWriter) Write(folder string, result BacktestResult, realized, unrealized []types.PnLPoint, orders []types.Order) error {
	if err := os.MkdirAll(folder, 0755); err != nil {
		return errors.Wrapf(errors.ErrCodeBacktestWriteResults, err, "failed to create results folder %s", folder)
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteResults, "failed to open duckdb", err)
	}
	defer db.Close()

	for _, table := range []string{"realized_pnl", "unrealized_pnl"} {
		if _, err := db.Exec(fmt.Sprintf(`CREATE TABLE %s (timestamp TIMESTAMP, symbol TEXT, value DOUBLE)`, table)); err != nil {
			return errors.Wrapf(errors.ErrCodeBacktestWriteResults, err, "failed to create %s table", table)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE orders (
			order_id TEXT,
			timestamp TIMESTAMP,
			symbol TEXT,
			side TEXT,
			kind TEXT,
			quantity BIGINT,
			status TEXT,
			filled_price DOUBLE,
			filled_timestamp TIMESTAMP
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteResults, "failed to create orders table", err)
	}

	if err := w.insertPnL(db, "realized_pnl", realized); err != nil {
		return err
	}

	if err := w.insertPnL(db, "unrealized_pnl", unrealized); err != nil {
		return err
	}

	if err := w.insertOrders(db, orders); err != nil {
		return err
	}

	paths := map[string]string{}

	for _, table := range []string{"realized_pnl", "unrealized_pnl", "orders"} {
		path := filepath.Join(folder, table+".parquet")
		// Using raw SQL as squirrel doesn't support COPY
		query := fmt.Sprintf(`COPY %s TO '%s' (FORMAT PARQUET)`, table, strings.ReplaceAll(path, "'", "''"))

		if _, err := db.Exec(query); err != nil {
			return errors.Wrapf(errors.ErrCodeBacktestWriteResults, err, "failed to export %s", path)
		}

		paths[table] = path
	}

	data, err := yaml.Marshal(result)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteResults, "failed to marshal stats", err)
	}

	statsPath := filepath.Join(folder, "stats.yaml")
	if err := os.WriteFile(statsPath, data, 0644); err != nil {
		return errors.Wrapf(errors.ErrCodeBacktestWriteResults, err, "failed to write %s", statsPath)
	}

	w.log.Info("Successfully exported backtest results",
		zap.String("realized_pnl", paths["realized_pnl"]),
		zap.String("unrealized_pnl", paths["unrealized_pnl"]),
		zap.String("orders", paths["orders"]),
		zap.String("stats", statsPath),
	)

	return nil
}

func (w *ResultWriter) insertPnL(db *sql.DB, table string, points []types.PnLPoint) error {
	for start := 0; start < len(points); start += resultBatchSize {
		end := min(start+resultBatchSize, len(points))

		builder := w.sq.Insert(table).Columns("timestamp", "symbol", "value")
		for _, point := range points[start:end] {
			value, _ := point.Value.Float64()
			builder = builder.Values(point.Timestamp, point.Symbol, value)
		}

		if err := exec(db, builder); err != nil {
			return errors.Wrapf(errors.ErrCodeBacktestWriteResults, err, "failed to insert into %s", table)
		}
	}

	return nil
}

func (w *ResultWriter) insertOrders(db *sql.DB, orders []types.Order) error {
	for start := 0; start < len(orders); start += resultBatchSize {
		end := min(start+resultBatchSize, len(orders))

		builder := w.sq.Insert("orders").Columns(
			"order_id", "timestamp", "symbol", "side", "kind", "quantity", "status", "filled_price", "filled_timestamp",
		)

		for _, order := range orders[start:end] {
			var (
				filledPrice     sql.NullFloat64
				filledTimestamp sql.NullTime
			)

			if order.FilledPrice.IsSome() {
				filledPrice.Float64, _ = order.FilledPrice.Unwrap().Float64()
				filledPrice.Valid = true
			}

			if order.FilledTimestamp.IsSome() {
				filledTimestamp.Time = order.FilledTimestamp.Unwrap()
				filledTimestamp.Valid = true
			}

			builder = builder.Values(order.ID, order.Timestamp, order.Symbol, string(order.Side), string(order.Kind),
				order.Quantity, string(order.Status), filledPrice, filledTimestamp)
		}

		if err := exec(db, builder); err != nil {
			return errors.Wrap(errors.ErrCodeBacktestWriteResults, "failed to insert orders", err)
		}
	}

	return nil
}

func exec(db *sql.DB, builder squirrel.InsertBuilder) error {
	query, args, err := builder.ToSql()
	if err != nil {
		return err
	}

	_, err = db.Exec(query, args...)

	return err
}
