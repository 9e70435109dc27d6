// Package store persists and retrieves bar data against the range-partitioned
// backing tables. The orchestrator depends only on the BarStore interface so
// it can run against Postgres in production and an in-memory store in tests.
package store

import (
	"context"

	"github.com/tradehouse/bardata/internal/model"
)

// BarStore reads range-filtered bars and bulk-writes validated bars.
type BarStore interface {
	// ReadBars returns bars for the instrument within rng, ordered by
	// timestamp ascending. With sessionOnly set, only regular-session bars
	// are returned.
	ReadBars(ctx context.Context, instrumentID int64, cadence model.Cadence, rng model.Range, sessionOnly bool) ([]model.Bar, error)

	// WriteBars persists a batch of bars for the cadence, routing each bar
	// to its partition. Duplicate identities are ignored, not errors; the
	// count of rows actually written is returned. On error the successfully
	// written portion is retained.
	WriteBars(ctx context.Context, cadence model.Cadence, bars []model.Bar) (int, error)
}
