// Package provider defines the uniform boundary to upstream market-data
// sources. Providers form an ordered, pluggable list: adding a source means
// implementing Provider and appending it to the priority list, with no
// orchestrator changes.
package provider

import (
	"context"
	"time"

	"github.com/tradehouse/bardata/internal/model"
)

// Observation is one raw bar record as returned by an upstream source,
// before validation and provenance stamping. Records may be incomplete; the
// orchestrator drops invalid ones.
type Observation struct {
	Timestamp     int64 // ms since epoch, UTC
	Open          float64
	High          float64
	Low           float64
	Close         *float64
	AdjustedClose *float64
	Volume        float64
}

// Provider fetches bars for an instrument/cadence/window from one upstream
// source. Implementations enforce their own per-call timeout; a timeout or
// upstream failure is a normal failed sub-window for the caller, not a crash.
type Provider interface {
	// Name identifies the source in provenance and usage tracking.
	Name() string

	// MaxLookback returns the widest window this source accepts in a single
	// request for the cadence.
	MaxLookback(cadence model.Cadence) time.Duration

	// Fetch returns raw observations for the instrument within rng. With
	// sessionOnly set, sources that distinguish extended-hours data may
	// restrict to the regular session.
	Fetch(ctx context.Context, instrument model.Instrument, cadence model.Cadence, rng model.Range, sessionOnly bool) ([]Observation, error)
}
