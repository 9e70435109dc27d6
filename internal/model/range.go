package model

import (
	"fmt"
	"time"
)

// Range is a half-open interval [Start, End) of UTC instants in epoch
// milliseconds. Lists of ranges handed between components are kept sorted
// ascending and non-overlapping.
type Range struct {
	Start int64
	End   int64
}

// NewRange builds a range from two instants, failing fast on inversion.
func NewRange(start, end time.Time) (Range, error) {
	r := Range{Start: start.UnixMilli(), End: end.UnixMilli()}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

// Validate reports a configuration error for an empty or inverted range.
func (r Range) Validate() error {
	if r.End <= r.Start {
		return fmt.Errorf("invalid range: end %d not after start %d", r.End, r.Start)
	}
	return nil
}

// IsZero reports whether the range is the zero value.
func (r Range) IsZero() bool {
	return r.Start == 0 && r.End == 0
}

// Duration returns the width of the range.
func (r Range) Duration() time.Duration {
	return time.Duration(r.End-r.Start) * time.Millisecond
}

// Contains reports whether ts falls inside [Start, End).
func (r Range) Contains(ts int64) bool {
	return ts >= r.Start && ts < r.End
}

// Overlaps reports whether r and o share any instant.
func (r Range) Overlaps(o Range) bool {
	return r.Start < o.End && o.Start < r.End
}

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s)",
		time.UnixMilli(r.Start).UTC().Format(time.RFC3339),
		time.UnixMilli(r.End).UTC().Format(time.RFC3339))
}

// PeriodRange converts a trailing period (e.g., 10 "year", 3 "month") into a
// concrete range ending at now. "ytd" ignores n and starts at the beginning
// of the current year.
func PeriodRange(n int, unit string, now time.Time) (Range, error) {
	now = now.UTC()
	var start time.Time
	switch unit {
	case "minute":
		start = now.Add(-time.Duration(n) * time.Minute)
	case "hour":
		start = now.Add(-time.Duration(n) * time.Hour)
	case "day":
		start = now.AddDate(0, 0, -n)
	case "week":
		start = now.AddDate(0, 0, -7*n)
	case "month":
		start = now.AddDate(0, -n, 0)
	case "year":
		start = now.AddDate(-n, 0, 0)
	case "ytd":
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return Range{}, fmt.Errorf("unknown period unit %q", unit)
	}
	if unit != "ytd" && n < 1 {
		return Range{}, fmt.Errorf("period length must be positive, got %d", n)
	}
	return NewRange(start, now)
}
