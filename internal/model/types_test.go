package model

import (
	"testing"
	"time"
)

func TestParseCadence(t *testing.T) {
	tests := []struct {
		token string
		want  Cadence
	}{
		{"1min", Cadence1Min},
		{"5min", Cadence5Min},
		{"15min", Cadence15Min},
		{"1hour", Cadence1Hour},
		{"4hour", Cadence4Hour},
		{"1day", Cadence1Day},
		{"1week", Cadence1Week},
		{"1month", Cadence1Month},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParseCadence(tt.token)
			if err != nil {
				t.Fatalf("ParseCadence(%q) error: %v", tt.token, err)
			}
			if got != tt.want {
				t.Errorf("ParseCadence(%q) = %v, want %v", tt.token, got, tt.want)
			}
			if got.String() != tt.token {
				t.Errorf("String() = %q, want %q", got.String(), tt.token)
			}
		})
	}

	if _, err := ParseCadence("30sec"); err == nil {
		t.Error("ParseCadence(30sec) succeeded, want error")
	}
}

func TestParseCadenceShortTokens(t *testing.T) {
	// Short tokens are what CLI flags default to and document.
	tests := []struct {
		token string
		want  Cadence
	}{
		{"1h", Cadence1Hour},
		{"4h", Cadence4Hour},
		{"1d", Cadence1Day},
		{"1w", Cadence1Week},
		{"1mo", Cadence1Month},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParseCadence(tt.token)
			if err != nil {
				t.Fatalf("ParseCadence(%q) error: %v", tt.token, err)
			}
			if got != tt.want {
				t.Errorf("ParseCadence(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestCadenceDelta(t *testing.T) {
	if d := Cadence5Min.Delta(); d != 5*time.Minute {
		t.Errorf("Cadence5Min.Delta() = %v, want 5m", d)
	}
	if d := Cadence1Day.Delta(); d != 24*time.Hour {
		t.Errorf("Cadence1Day.Delta() = %v, want 24h", d)
	}
	if !Cadence4Hour.Intraday() {
		t.Error("Cadence4Hour.Intraday() = false, want true")
	}
	if Cadence1Day.Intraday() {
		t.Error("Cadence1Day.Intraday() = true, want false")
	}
}

func TestRangeValidate(t *testing.T) {
	r := Range{Start: 100, End: 200}
	if err := r.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}

	inverted := Range{Start: 200, End: 100}
	if err := inverted.Validate(); err == nil {
		t.Error("Validate() on inverted range succeeded, want error")
	}

	empty := Range{Start: 100, End: 100}
	if err := empty.Validate(); err == nil {
		t.Error("Validate() on empty range succeeded, want error")
	}
}

func TestRangeContainsOverlaps(t *testing.T) {
	r := Range{Start: 100, End: 200}

	if !r.Contains(100) {
		t.Error("Contains(start) = false, want true")
	}
	if r.Contains(200) {
		t.Error("Contains(end) = true, want false (half-open)")
	}
	if !r.Overlaps(Range{Start: 150, End: 250}) {
		t.Error("Overlaps(partial) = false, want true")
	}
	if r.Overlaps(Range{Start: 200, End: 300}) {
		t.Error("Overlaps(touching) = true, want false")
	}
}

func TestPeriodRange(t *testing.T) {
	now := time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC)

	r, err := PeriodRange(10, "day", now)
	if err != nil {
		t.Fatalf("PeriodRange error: %v", err)
	}
	wantStart := now.AddDate(0, 0, -10).UnixMilli()
	if r.Start != wantStart {
		t.Errorf("Start = %d, want %d", r.Start, wantStart)
	}
	if r.End != now.UnixMilli() {
		t.Errorf("End = %d, want %d", r.End, now.UnixMilli())
	}

	ytd, err := PeriodRange(1, "ytd", now)
	if err != nil {
		t.Fatalf("PeriodRange(ytd) error: %v", err)
	}
	wantYTD := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	if ytd.Start != wantYTD {
		t.Errorf("ytd Start = %d, want %d", ytd.Start, wantYTD)
	}

	if _, err := PeriodRange(1, "fortnight", now); err == nil {
		t.Error("PeriodRange(fortnight) succeeded, want error")
	}
}

func TestBarValidate(t *testing.T) {
	c := 101.5
	valid := Bar{
		InstrumentID: 1,
		Timestamp:    1672704000000,
		Open:         100, High: 102, Low: 99, Close: &c,
		Volume:    5000,
		Source:    "alpaca",
		FetchedAt: 1672704060000,
		FetchedBy: "backfill/abc",
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() on complete bar: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Bar)
	}{
		{"missing instrument", func(b *Bar) { b.InstrumentID = 0 }},
		{"missing timestamp", func(b *Bar) { b.Timestamp = 0 }},
		{"missing close", func(b *Bar) { b.Close = nil; b.AdjustedClose = nil }},
		{"high below low", func(b *Bar) { b.High = 90 }},
		{"negative volume", func(b *Bar) { b.Volume = -1 }},
		{"missing source", func(b *Bar) { b.Source = "" }},
		{"missing fetched-at", func(b *Bar) { b.FetchedAt = 0 }},
		{"missing fetched-by", func(b *Bar) { b.FetchedBy = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := valid
			tt.mutate(&b)
			if err := b.Validate(); err == nil {
				t.Error("Validate() succeeded, want error")
			}
		})
	}

	// Adjusted close alone satisfies the close requirement.
	adj := valid
	adj.Close = nil
	adj.AdjustedClose = &c
	if err := adj.Validate(); err != nil {
		t.Errorf("Validate() with only adjusted close: %v", err)
	}
}
