package model

import (
	"errors"
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------
// Cadence
// -----------------------------------------------------------------------------

// Cadence is the sampling granularity of bar data.
type Cadence int

const (
	Cadence1Min Cadence = iota
	Cadence5Min
	Cadence15Min
	Cadence1Hour
	Cadence4Hour
	Cadence1Day
	Cadence1Week
	Cadence1Month
)

var cadenceTokens = map[Cadence]string{
	Cadence1Min:   "1min",
	Cadence5Min:   "5min",
	Cadence15Min:  "15min",
	Cadence1Hour:  "1hour",
	Cadence4Hour:  "4hour",
	Cadence1Day:   "1day",
	Cadence1Week:  "1week",
	Cadence1Month: "1month",
}

var cadenceDeltas = map[Cadence]time.Duration{
	Cadence1Min:   time.Minute,
	Cadence5Min:   5 * time.Minute,
	Cadence15Min:  15 * time.Minute,
	Cadence1Hour:  time.Hour,
	Cadence4Hour:  4 * time.Hour,
	Cadence1Day:   24 * time.Hour,
	Cadence1Week:  7 * 24 * time.Hour,
	Cadence1Month: 30 * 24 * time.Hour,
}

// Short tokens accepted on CLI flags alongside the canonical names.
var cadenceAliases = map[string]Cadence{
	"1h":  Cadence1Hour,
	"4h":  Cadence4Hour,
	"1d":  Cadence1Day,
	"1w":  Cadence1Week,
	"1mo": Cadence1Month,
}

// ParseCadence converts a config/CLI token into a Cadence. Both canonical
// tokens ("1day") and short aliases ("1d") are accepted.
func ParseCadence(s string) (Cadence, error) {
	for c, tok := range cadenceTokens {
		if tok == s {
			return c, nil
		}
	}
	if c, ok := cadenceAliases[s]; ok {
		return c, nil
	}
	return 0, fmt.Errorf("unknown cadence %q", s)
}

// String returns the canonical token (e.g., "5min", "1day").
func (c Cadence) String() string {
	if tok, ok := cadenceTokens[c]; ok {
		return tok
	}
	return fmt.Sprintf("cadence(%d)", int(c))
}

// Valid reports whether c is a member of the cadence enumeration.
func (c Cadence) Valid() bool {
	_, ok := cadenceTokens[c]
	return ok
}

// Delta returns the expected duration between adjacent bars.
func (c Cadence) Delta() time.Duration {
	return cadenceDeltas[c]
}

// Intraday reports whether the cadence is finer than one day.
func (c Cadence) Intraday() bool {
	return c.Delta() < 24*time.Hour
}

// -----------------------------------------------------------------------------
// Instrument
// -----------------------------------------------------------------------------

// Instrument is a tradable identity resolvable to an internal numeric key.
// Instruments are created by symbol synchronization tooling and are read-only
// to this pipeline.
type Instrument struct {
	ID       int64  // Internal numeric key
	Symbol   string // Exchange symbol (e.g., "TSLA")
	Exchange string // Exchange code, selects the trading calendar
}

// -----------------------------------------------------------------------------
// Bar
// -----------------------------------------------------------------------------

// Bar is one immutable OHLCV observation. Identity is (InstrumentID,
// Timestamp) within a cadence; bars are never mutated after write.
type Bar struct {
	InstrumentID     int64
	Timestamp        int64 // Bar open time (ms since epoch, UTC)
	Open             float64
	High             float64
	Low              float64
	Close            *float64
	AdjustedClose    *float64
	Volume           float64
	IsRegularSession bool

	// Provenance
	Source    string // Provider that supplied the bar
	FetchedAt int64  // Ingest time (ms since epoch, UTC)
	FetchedBy string // Updater identity + invocation id
}

// Validate checks that every required field is present. A bar failing
// validation is dropped and counted, never written.
func (b *Bar) Validate() error {
	switch {
	case b.InstrumentID == 0:
		return errors.New("missing instrument id")
	case b.Timestamp == 0:
		return errors.New("missing timestamp")
	case b.Close == nil && b.AdjustedClose == nil:
		return errors.New("missing close")
	case b.High < b.Low:
		return fmt.Errorf("high %v below low %v", b.High, b.Low)
	case b.Volume < 0:
		return fmt.Errorf("negative volume %v", b.Volume)
	case b.Source == "":
		return errors.New("missing source")
	case b.FetchedAt == 0:
		return errors.New("missing fetched-at")
	case b.FetchedBy == "":
		return errors.New("missing fetched-by")
	}
	return nil
}
