// Package window prepares missing-range lists for provider requests: merging
// fragments into maximal disjoint intervals, splitting oversized intervals to
// fit a provider's maximum lookback, and subtracting what a provider covered
// from what is still needed. All functions are pure.
package window

import (
	"sort"
	"time"

	"github.com/tradehouse/bardata/internal/model"
)

// Normalize merges overlapping and touching ranges into maximal disjoint
// intervals sorted ascending by start. Zero-width and inverted inputs are
// dropped.
func Normalize(rs []model.Range) []model.Range {
	var valid []model.Range
	for _, r := range rs {
		if r.Validate() == nil {
			valid = append(valid, r)
		}
	}
	if len(valid) == 0 {
		return nil
	}

	sort.Slice(valid, func(i, j int) bool {
		if valid[i].Start != valid[j].Start {
			return valid[i].Start < valid[j].Start
		}
		return valid[i].End < valid[j].End
	})

	out := []model.Range{valid[0]}
	for _, r := range valid[1:] {
		last := &out[len(out)-1]
		if r.Start <= last.End {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// Split normalizes rs and cuts every range wider than maxWindow into
// consecutive chunks of exactly maxWindow, with a shorter final remainder.
// The output covers the input exactly and contains no zero-width range.
func Split(rs []model.Range, maxWindow time.Duration) []model.Range {
	maxMs := maxWindow.Milliseconds()
	if maxMs <= 0 {
		return Normalize(rs)
	}

	var out []model.Range
	for _, r := range Normalize(rs) {
		for start := r.Start; start < r.End; start += maxMs {
			end := start + maxMs
			if end > r.End {
				end = r.End
			}
			out = append(out, model.Range{Start: start, End: end})
		}
	}
	return out
}

// Subtract returns the portions of target not covered by covered, the
// residual gap after one provider's fetch. Both inputs and the output are
// normalized.
func Subtract(target, covered []model.Range) []model.Range {
	tn := Normalize(target)
	cn := Normalize(covered)
	if len(cn) == 0 {
		return tn
	}

	var out []model.Range
	for _, t := range tn {
		cursor := t.Start
		for _, c := range cn {
			if c.End <= cursor || c.Start >= t.End {
				continue
			}
			if c.Start > cursor {
				out = append(out, model.Range{Start: cursor, End: c.Start})
			}
			if c.End > cursor {
				cursor = c.End
			}
		}
		if cursor < t.End {
			out = append(out, model.Range{Start: cursor, End: t.End})
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
