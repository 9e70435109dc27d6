// Package gap computes the sub-ranges of a requested interval for which no
// bar is stored and none is legitimately absent. It is pure computation: no
// I/O, deterministic output for identical inputs.
package gap

import (
	"time"

	"github.com/tradehouse/bardata/internal/calendar"
	"github.com/tradehouse/bardata/internal/model"
)

// FindMissing returns the missing sub-ranges of requested given the bars
// already on hand, sorted ascending and non-overlapping. bars must be ordered
// by timestamp ascending, as returned by the store.
//
// With sessionOnly set, candidate gaps are advanced through closed market
// time via the calendar's session boundaries: a gap lying entirely outside
// trading hours is expected absence, not data loss, and is not reported.
func FindMissing(bars []model.Bar, requested model.Range, cadence model.Cadence, sessionOnly bool, cal calendar.Calendar) []model.Range {
	if requested.Validate() != nil {
		return nil
	}

	delta := cadence.Delta().Milliseconds()
	var candidates []model.Range

	if len(bars) == 0 {
		candidates = []model.Range{requested}
	} else {
		// Leading gap before the first bar.
		if first := bars[0].Timestamp; first > requested.Start {
			candidates = append(candidates, model.Range{Start: requested.Start, End: first})
		}

		// Interior gaps between adjacent bars farther apart than one tick.
		for i := 0; i < len(bars)-1; i++ {
			cur, next := bars[i].Timestamp, bars[i+1].Timestamp
			if next-cur > delta {
				candidates = append(candidates, model.Range{Start: cur + delta, End: next})
			}
		}

		// Trailing gap after the last bar.
		if last := bars[len(bars)-1].Timestamp; last+delta < requested.End {
			candidates = append(candidates, model.Range{Start: last + delta, End: requested.End})
		}
	}

	if !sessionOnly || cal == nil {
		return compact(candidates)
	}

	var missing []model.Range
	for _, c := range candidates {
		if r, ok := trimToSessions(c, cal); ok {
			missing = append(missing, r)
		}
	}
	return compact(missing)
}

// trimToSessions advances the gap start through closed market time. If the
// next open instant falls at or beyond the gap end, the entire gap sits
// outside trading hours and is dropped.
func trimToSessions(r model.Range, cal calendar.Calendar) (model.Range, bool) {
	start := time.UnixMilli(r.Start).UTC()
	if !cal.IsOpen(start) {
		next := cal.NextOpen(start)
		if next.IsZero() {
			return model.Range{}, false
		}
		r.Start = next.UnixMilli()
	}
	if r.Start >= r.End {
		return model.Range{}, false
	}
	return r, true
}

// compact drops degenerate ranges without reordering; candidates are built
// in ascending order already.
func compact(rs []model.Range) []model.Range {
	out := rs[:0]
	for _, r := range rs {
		if r.Validate() == nil {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
