package feed

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

// DuckDBFeedOptions narrows what a DuckDBFeed streams.
type DuckDBFeedOptions struct {
	// Symbol restricts the feed to one symbol when set.
	Symbol optional.Option[string]
	// StartTime is the inclusive lower bound on tick time.
	StartTime optional.Option[time.Time]
	// EndTime is the inclusive upper bound on tick time.
	EndTime optional.Option[time.Time]
}

// DuckDBFeed streams ticks from parquet or CSV files with the columns
// time, symbol, open, close and volume. Rows are ordered by time then symbol
// across all matched files.
type DuckDBFeed struct {
	db      *sql.DB
	logger  *logger.Logger
	sq      squirrel.StatementBuilderType
	path    string
	options DuckDBFeedOptions
}

// NewDuckDBFeed opens an in-memory DuckDB and exposes path (a file or a glob)
// as the market_data view.
func NewDuckDBFeed(path string, options DuckDBFeedOptions, log *logger.Logger) (*DuckDBFeed, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFeedUnavailable, "failed to open duckdb", err)
	}

	reader := "read_parquet"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		reader = "read_csv_auto"
	case ".parquet", "":
	default:
		db.Close()

		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "unsupported data file %q, expected .parquet or .csv", path)
	}

	// Squirrel doesn't support CREATE VIEW
	query := fmt.Sprintf(`CREATE VIEW market_data AS SELECT * FROM %s('%s');`, reader, strings.ReplaceAll(path, "'", "''"))
	if _, err := db.Exec(query); err != nil {
		db.Close()

		return nil, errors.Wrapf(errors.ErrCodeFeedUnavailable, err, "failed to load %s", path)
	}

	log.Debug("Loaded market data", zap.String("path", path), zap.String("reader", reader))

	return &DuckDBFeed{
		db:      db,
		logger:  log,
		sq:      squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		path:    path,
		options: options,
	}, nil
}

func (d *DuckDBFeed) Name() string {
	return "file"
}

func (d *DuckDBFeed) where() squirrel.And {
	conditions := squirrel.And{}

	if d.options.Symbol.IsSome() {
		conditions = append(conditions, squirrel.Eq{"symbol": d.options.Symbol.Unwrap()})
	}

	if d.options.StartTime.IsSome() {
		conditions = append(conditions, squirrel.GtOrEq{"time": d.options.StartTime.Unwrap()})
	}

	if d.options.EndTime.IsSome() {
		conditions = append(conditions, squirrel.LtOrEq{"time": d.options.EndTime.Unwrap()})
	}

	return conditions
}

// Count returns the number of ticks Stream will yield.
func (d *DuckDBFeed) Count(ctx context.Context) (int, error) {
	query, args, err := d.sq.Select("COUNT(*)").From("market_data").Where(d.where()).ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build count query", err)
	}

	var count int
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count market data", err)
	}

	return count, nil
}

func (d *DuckDBFeed) Stream(ctx context.Context) iter.Seq2[types.Tick, error] {
	return func(yield func(types.Tick, error) bool) {
		query, args, err := d.sq.
			Select("time", "symbol", "open", "close", "volume").
			From("market_data").
			Where(d.where()).
			OrderBy("time ASC", "symbol ASC").
			ToSql()
		if err != nil {
			yield(types.Tick{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err))

			return
		}

		d.logger.Debug("Streaming market data", zap.String("query", query))

		rows, err := d.db.QueryContext(ctx, query, args...)
		if err != nil {
			yield(types.Tick{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query market data", err))

			return
		}
		defer rows.Close()

		for rows.Next() {
			var (
				timestamp          time.Time
				symbol             string
				open, last, volume float64
			)

			if err := rows.Scan(&timestamp, &symbol, &open, &last, &volume); err != nil {
				yield(types.Tick{}, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "failed to scan row", err))

				return
			}

			tick := types.Tick{
				Symbol:    symbol,
				Timestamp: timestamp,
				LastPrice: decimal.NewFromFloat(last),
				OpenPrice: decimal.NewFromFloat(open),
				Volume:    int64(math.Round(volume)),
			}

			if !yield(tick, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(types.Tick{}, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating rows", err))
		}
	}
}

// Close closes the underlying database.
func (d *DuckDBFeed) Close() error {
	if d.db != nil {
		return d.db.Close()
	}

	return nil
}
