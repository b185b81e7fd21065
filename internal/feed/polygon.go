package feed

import (
	"context"
	"iter"
	"math"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

// PolygonFeed streams aggregate bars from polygon.io. Each bar becomes one
// tick: the bar's close is the last price.
type PolygonFeed struct {
	client    *polygon.Client
	ticker    string
	startDate time.Time
	endDate   time.Time
	timespan  Timespan
}

func NewPolygonFeed(apiKey string, ticker string, startDate time.Time, endDate time.Time, timespan Timespan) (*PolygonFeed, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "polygon api key is required")
	}

	return NewPolygonFeedWithClient(polygon.New(apiKey), ticker, startDate, endDate, timespan), nil
}

func NewPolygonFeedWithClient(client *polygon.Client, ticker string, startDate time.Time, endDate time.Time, timespan Timespan) *PolygonFeed {
	return &PolygonFeed{
		client:    client,
		ticker:    ticker,
		startDate: startDate,
		endDate:   endDate,
		timespan:  timespan,
	}
}

func (p *PolygonFeed) Name() string {
	return "polygon"
}

func (p *PolygonFeed) Stream(ctx context.Context) iter.Seq2[types.Tick, error] {
	return func(yield func(types.Tick, error) bool) {
		//nolint:exhaustruct // third-party struct with many optional fields
		params := models.ListAggsParams{
			Ticker:     p.ticker,
			Multiplier: p.timespan.Multiplier(),
			Timespan:   p.timespan.Timespan(),
			From:       models.Millis(p.startDate),
			To:         models.Millis(p.endDate),
		}.WithLimit(50000)

		aggs := p.client.ListAggs(ctx, params)

		for aggs.Next() {
			agg := aggs.Item()

			tick := types.Tick{
				Symbol:    p.ticker,
				Timestamp: time.Time(agg.Timestamp),
				LastPrice: decimal.NewFromFloat(agg.Close),
				OpenPrice: decimal.NewFromFloat(agg.Open),
				Volume:    int64(math.Round(agg.Volume)),
			}

			if !yield(tick, nil) {
				return
			}
		}

		if err := aggs.Err(); err != nil {
			yield(types.Tick{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch %s aggregates from polygon", p.ticker))
		}
	}
}
