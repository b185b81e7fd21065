package feed

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

const recorderBatchSize = 1000

// Recorder passes the ticks of a feed through unchanged and saves them to a
// parquet file readable by DuckDBFeed once streaming stops.
type Recorder struct {
	feed       Feed
	outputPath string
	logger     *logger.Logger
	sq         squirrel.StatementBuilderType
}

func NewRecorder(feed Feed, outputPath string, log *logger.Logger) *Recorder {
	return &Recorder{
		feed:       feed,
		outputPath: outputPath,
		logger:     log,
		sq:         squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

func (r *Recorder) Name() string {
	return r.feed.Name()
}

// Count forwards to the wrapped feed when it can count.
func (r *Recorder) Count(ctx context.Context) (int, error) {
	return Count(ctx, r.feed)
}

// OutputPath is where the parquet file is written.
func (r *Recorder) OutputPath() string {
	return r.outputPath
}

// Stream yields the wrapped feed's ticks. The file is written when the feed
// ends, when it fails and when the consumer stops early, so a replay cut
// short still saves everything it saw.
func (r *Recorder) Stream(ctx context.Context) iter.Seq2[types.Tick, error] {
	return func(yield func(types.Tick, error) bool) {
		db, err := sql.Open("duckdb", ":memory:")
		if err != nil {
			yield(types.Tick{}, errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to open duckdb", err))

			return
		}
		defer db.Close()

		_, err = db.ExecContext(ctx, `
			CREATE TABLE market_data (
				time TIMESTAMP,
				symbol TEXT,
				open DOUBLE,
				close DOUBLE,
				volume BIGINT
			)
		`)
		if err != nil {
			yield(types.Tick{}, errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to create table", err))

			return
		}

		batch := make([]types.Tick, 0, recorderBatchSize)
		written := 0

		// save runs on every exit; a cancelled ctx must not lose the data
		save := func() error {
			saveCtx := context.WithoutCancel(ctx)
			if err := r.insert(saveCtx, db, batch); err != nil {
				return err
			}

			written += len(batch)
			batch = batch[:0]

			return r.export(saveCtx, db, written)
		}

		for tick, err := range r.feed.Stream(ctx) {
			if err != nil {
				if written+len(batch) == 0 {
					yield(types.Tick{}, err)

					return
				}

				if saveErr := save(); saveErr != nil {
					r.logger.Error("Failed to save partial market data", zap.String("path", r.outputPath), zap.Error(saveErr))
				}

				yield(types.Tick{}, err)

				return
			}

			batch = append(batch, tick)
			if len(batch) == recorderBatchSize {
				if err := r.insert(ctx, db, batch); err != nil {
					yield(types.Tick{}, err)

					return
				}

				written += len(batch)
				batch = batch[:0]
			}

			if !yield(tick, nil) {
				if err := save(); err != nil {
					r.logger.Error("Failed to save market data", zap.String("path", r.outputPath), zap.Error(err))
				}

				return
			}
		}

		if err := save(); err != nil {
			yield(types.Tick{}, err)
		}
	}
}

func (r *Recorder) export(ctx context.Context, db *sql.DB, written int) error {
	query := fmt.Sprintf(`COPY (SELECT * FROM market_data ORDER BY time, symbol) TO '%s' (FORMAT PARQUET)`,
		strings.ReplaceAll(r.outputPath, "'", "''"))
	if _, err := db.ExecContext(ctx, query); err != nil {
		return errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to export %s", r.outputPath)
	}

	r.logger.Info("Saved market data", zap.String("path", r.outputPath), zap.Int("ticks", written))

	return nil
}

func (r *Recorder) insert(ctx context.Context, db *sql.DB, ticks []types.Tick) error {
	if len(ticks) == 0 {
		return nil
	}

	builder := r.sq.Insert("market_data").Columns("time", "symbol", "open", "close", "volume")
	for _, tick := range ticks {
		open, _ := tick.OpenPrice.Float64()
		last, _ := tick.LastPrice.Float64()
		builder = builder.Values(tick.Timestamp, tick.Symbol, open, last, tick.Volume)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to build insert", err)
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to insert market data", err)
	}

	return nil
}
