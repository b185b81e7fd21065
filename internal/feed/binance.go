package feed

import (
	"context"
	"iter"
	"math"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

// binancePageSize is the default number of klines Binance returns per request.
const binancePageSize = 500

// BinanceFeed streams historical klines from Binance, paging through the
// requested range. Each kline becomes one tick stamped at its open time.
type BinanceFeed struct {
	client    *binance.Client
	symbol    string
	startDate time.Time
	endDate   time.Time
	timespan  Timespan
}

func NewBinanceFeed(symbol string, startDate time.Time, endDate time.Time, timespan Timespan) *BinanceFeed {
	return NewBinanceFeedWithClient(binance.NewClient("", ""), symbol, startDate, endDate, timespan)
}

func NewBinanceFeedWithClient(client *binance.Client, symbol string, startDate time.Time, endDate time.Time, timespan Timespan) *BinanceFeed {
	return &BinanceFeed{
		client:    client,
		symbol:    symbol,
		startDate: startDate,
		endDate:   endDate,
		timespan:  timespan,
	}
}

func (b *BinanceFeed) Name() string {
	return "binance"
}

func (b *BinanceFeed) Stream(ctx context.Context) iter.Seq2[types.Tick, error] {
	return func(yield func(types.Tick, error) bool) {
		interval, err := b.timespan.BinanceInterval()
		if err != nil {
			yield(types.Tick{}, err)

			return
		}

		endTimeMillis := b.endDate.UnixMilli()
		currentStartTime := b.startDate.UnixMilli()

		for {
			klines, err := b.client.NewKlinesService().
				Symbol(b.symbol).
				Interval(interval).
				StartTime(currentStartTime).
				EndTime(endTimeMillis).
				Do(ctx)
			if err != nil {
				yield(types.Tick{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch %s klines from binance", b.symbol))

				return
			}

			for _, k := range klines {
				tick, err := klineToTick(b.symbol, k)
				if err != nil {
					yield(types.Tick{}, err)

					return
				}

				if !yield(tick, nil) {
					return
				}
			}

			if len(klines) < binancePageSize {
				return
			}

			// the close time of the last kline + 1ms avoids duplicates
			currentStartTime = klines[len(klines)-1].CloseTime + 1
			if currentStartTime >= endTimeMillis {
				return
			}
		}
	}
}

func klineToTick(symbol string, k *binance.Kline) (types.Tick, error) {
	open, err := decimal.NewFromString(k.Open)
	if err != nil {
		return types.Tick{}, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid open price %q", k.Open)
	}

	last, err := decimal.NewFromString(k.Close)
	if err != nil {
		return types.Tick{}, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid close price %q", k.Close)
	}

	volume, err := strconv.ParseFloat(k.Volume, 64)
	if err != nil {
		return types.Tick{}, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid volume %q", k.Volume)
	}

	return types.Tick{
		Symbol:    symbol,
		Timestamp: time.UnixMilli(k.OpenTime).UTC(),
		LastPrice: last,
		OpenPrice: open,
		Volume:    int64(math.Round(volume)),
	}, nil
}
