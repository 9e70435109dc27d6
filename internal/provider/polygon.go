package provider

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/tradehouse/bardata/internal/model"
)

// Compile-time interface check.
var _ Provider = (*Polygon)(nil)

// Lookback limits for Polygon aggregate requests: sixty days per request for
// intraday cadences, two years for daily and coarser.
var polygonLookbacks = map[model.Cadence]time.Duration{
	model.Cadence1Min:   60 * 24 * time.Hour,
	model.Cadence5Min:   60 * 24 * time.Hour,
	model.Cadence15Min:  60 * 24 * time.Hour,
	model.Cadence1Hour:  60 * 24 * time.Hour,
	model.Cadence4Hour:  60 * 24 * time.Hour,
	model.Cadence1Day:   2 * 365 * 24 * time.Hour,
	model.Cadence1Week:  2 * 365 * 24 * time.Hour,
	model.Cadence1Month: 2 * 365 * 24 * time.Hour,
}

type polygonSpan struct {
	multiplier int
	timespan   models.Timespan
}

var polygonSpans = map[model.Cadence]polygonSpan{
	model.Cadence1Min:   {1, models.Minute},
	model.Cadence5Min:   {5, models.Minute},
	model.Cadence15Min:  {15, models.Minute},
	model.Cadence1Hour:  {1, models.Hour},
	model.Cadence4Hour:  {4, models.Hour},
	model.Cadence1Day:   {1, models.Day},
	model.Cadence1Week:  {1, models.Week},
	model.Cadence1Month: {1, models.Month},
}

// Polygon fetches aggregate bars from the Polygon.io REST API. Aggregates are
// split-adjusted, so the close lands in AdjustedClose.
type Polygon struct {
	client      *polygon.Client
	callTimeout time.Duration
}

// NewPolygon creates a Polygon provider. callTimeout bounds each upstream
// request.
func NewPolygon(apiKey string, callTimeout time.Duration) *Polygon {
	return &Polygon{
		client:      polygon.New(apiKey),
		callTimeout: callTimeout,
	}
}

func (p *Polygon) Name() string { return "polygon" }

func (p *Polygon) MaxLookback(cadence model.Cadence) time.Duration {
	return polygonLookbacks[cadence]
}

func (p *Polygon) Fetch(ctx context.Context, instrument model.Instrument, cadence model.Cadence, rng model.Range, _ bool) ([]Observation, error) {
	span, ok := polygonSpans[cadence]
	if !ok {
		return nil, fmt.Errorf("polygon: unsupported cadence %v", cadence)
	}

	if p.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.callTimeout)
		defer cancel()
	}

	params := models.ListAggsParams{
		Ticker:     instrument.Symbol,
		Multiplier: span.multiplier,
		Timespan:   span.timespan,
		From:       models.Millis(time.UnixMilli(rng.Start).UTC()),
		To:         models.Millis(time.UnixMilli(rng.End).UTC()),
	}.WithOrder(models.Asc).WithLimit(50000).WithAdjusted(true)

	var obs []Observation
	iter := p.client.ListAggs(ctx, params)
	for iter.Next() {
		agg := iter.Item()
		ts := time.Time(agg.Timestamp).UnixMilli()
		if !rng.Contains(ts) {
			continue
		}
		c := agg.Close
		obs = append(obs, Observation{
			Timestamp:     ts,
			Open:          agg.Open,
			High:          agg.High,
			Low:           agg.Low,
			AdjustedClose: &c,
			Volume:        agg.Volume,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("polygon ListAggs %s: %w", instrument.Symbol, err)
	}
	return obs, nil
}
