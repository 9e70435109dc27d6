// Package partition maps (cadence, timestamp) pairs to physical range
// partitions and creates partitions on demand. Routing is pure computation;
// creation is a declarative, idempotent DDL step.
package partition

import (
	"fmt"
	"time"

	"github.com/tradehouse/bardata/internal/model"
)

// TablePrefix is the parent-table prefix for all bar partitions.
const TablePrefix = "bars"

// Partition width policy per cadence. Finer cadences get narrow partitions,
// coarse cadences wide ones.
var widths = map[model.Cadence]time.Duration{
	model.Cadence1Min:   24 * time.Hour,
	model.Cadence5Min:   7 * 24 * time.Hour,
	model.Cadence15Min:  14 * 24 * time.Hour,
	model.Cadence1Hour:  30 * 24 * time.Hour,
	model.Cadence4Hour:  120 * 24 * time.Hour,
	model.Cadence1Day:   365 * 24 * time.Hour,
	model.Cadence1Week:  730 * 24 * time.Hour,
	model.Cadence1Month: 3650 * 24 * time.Hour,
}

// ID identifies one physical partition: the parent table it belongs to, its
// name, and its half-open bounds in epoch milliseconds.
type ID struct {
	Name    string
	Cadence model.Cadence
	Start   int64
	End     int64
}

// Parent returns the parent partitioned table for the cadence.
func (id ID) Parent() string {
	return ParentTable(id.Cadence)
}

// ParentTable returns the per-cadence parent table name (e.g., "bars_1day").
func ParentTable(c model.Cadence) string {
	return fmt.Sprintf("%s_%s", TablePrefix, c)
}

// Width returns the partition width for a cadence.
func Width(c model.Cadence) time.Duration {
	return widths[c]
}

// Route computes the partition holding tsMillis for the given cadence. It is
// a pure function: identical inputs always produce the identical ID.
func Route(c model.Cadence, tsMillis int64) (ID, error) {
	w, ok := widths[c]
	if !ok {
		return ID{}, fmt.Errorf("no partition policy for cadence %v", c)
	}
	wms := w.Milliseconds()

	start := tsMillis - mod(tsMillis, wms)
	return ID{
		Name:    fmt.Sprintf("%s_%s_%d", TablePrefix, c, start/1000),
		Cadence: c,
		Start:   start,
		End:     start + wms,
	}, nil
}

// mod is a floored modulo so pre-epoch timestamps still align downward.
func mod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
