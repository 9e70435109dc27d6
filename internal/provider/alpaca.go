package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"github.com/tradehouse/bardata/internal/model"
)

// Compile-time interface check.
var _ Provider = (*Alpaca)(nil)

// Lookback limits for Alpaca historical bar requests: ten days per request
// for intraday cadences, ten years for daily and coarser.
var alpacaLookbacks = map[model.Cadence]time.Duration{
	model.Cadence1Min:   10 * 24 * time.Hour,
	model.Cadence5Min:   10 * 24 * time.Hour,
	model.Cadence15Min:  10 * 24 * time.Hour,
	model.Cadence1Hour:  10 * 24 * time.Hour,
	model.Cadence4Hour:  10 * 24 * time.Hour,
	model.Cadence1Day:   10 * 365 * 24 * time.Hour,
	model.Cadence1Week:  10 * 365 * 24 * time.Hour,
	model.Cadence1Month: 10 * 365 * 24 * time.Hour,
}

var alpacaTimeFrames = map[model.Cadence]marketdata.TimeFrame{
	model.Cadence1Min:   marketdata.NewTimeFrame(1, marketdata.Min),
	model.Cadence5Min:   marketdata.NewTimeFrame(5, marketdata.Min),
	model.Cadence15Min:  marketdata.NewTimeFrame(15, marketdata.Min),
	model.Cadence1Hour:  marketdata.NewTimeFrame(1, marketdata.Hour),
	model.Cadence4Hour:  marketdata.NewTimeFrame(4, marketdata.Hour),
	model.Cadence1Day:   marketdata.NewTimeFrame(1, marketdata.Day),
	model.Cadence1Week:  marketdata.NewTimeFrame(1, marketdata.Week),
	model.Cadence1Month: marketdata.NewTimeFrame(1, marketdata.Month),
}

// Alpaca fetches historical bars from the Alpaca market-data API.
type Alpaca struct {
	client *marketdata.Client
	feed   string
}

// NewAlpaca creates an Alpaca provider. callTimeout bounds each upstream
// request via the underlying HTTP client.
func NewAlpaca(apiKey, apiSecret, dataURL, feed string, callTimeout time.Duration) *Alpaca {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	if callTimeout > 0 {
		opts.HTTPClient = &http.Client{Timeout: callTimeout}
	}
	if feed == "" {
		feed = "sip"
	}
	return &Alpaca{
		client: marketdata.NewClient(opts),
		feed:   feed,
	}
}

func (a *Alpaca) Name() string { return "alpaca" }

func (a *Alpaca) MaxLookback(cadence model.Cadence) time.Duration {
	return alpacaLookbacks[cadence]
}

func (a *Alpaca) Fetch(ctx context.Context, instrument model.Instrument, cadence model.Cadence, rng model.Range, _ bool) ([]Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tf, ok := alpacaTimeFrames[cadence]
	if !ok {
		return nil, fmt.Errorf("alpaca: unsupported cadence %v", cadence)
	}

	bars, err := a.client.GetBars(instrument.Symbol, marketdata.GetBarsRequest{
		TimeFrame: tf,
		Start:     time.UnixMilli(rng.Start).UTC(),
		End:       time.UnixMilli(rng.End).UTC(),
		Feed:      marketdata.Feed(a.feed),
	})
	if err != nil {
		return nil, fmt.Errorf("alpaca GetBars %s: %w", instrument.Symbol, err)
	}

	obs := make([]Observation, 0, len(bars))
	for _, b := range bars {
		ts := b.Timestamp.UnixMilli()
		// The upstream end bound is inclusive; keep the half-open contract.
		if !rng.Contains(ts) {
			continue
		}
		c := b.Close
		obs = append(obs, Observation{
			Timestamp: ts,
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     &c,
			Volume:    float64(b.Volume),
		})
	}
	return obs, nil
}
