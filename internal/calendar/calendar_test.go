package calendar

import (
	"testing"
	"time"
)

func nyseLike(t *testing.T) *Weekly {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("loading ET timezone: %v", err)
	}
	days := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
	return NewWeekly(loc, 9, 30, 16, 0, days, []string{"2023-01-02"}) // observed New Year's Day
}

func TestWeeklyIsOpen(t *testing.T) {
	cal := nyseLike(t)
	loc := time.FixedZone("ET", -5*3600)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"mid-session tuesday", time.Date(2023, 1, 10, 12, 0, 0, 0, loc), true},
		{"at open", time.Date(2023, 1, 10, 9, 30, 0, 0, loc), true},
		{"at close", time.Date(2023, 1, 10, 16, 0, 0, 0, loc), false},
		{"pre-open", time.Date(2023, 1, 10, 9, 0, 0, 0, loc), false},
		{"saturday", time.Date(2023, 1, 7, 12, 0, 0, 0, loc), false},
		{"holiday monday", time.Date(2023, 1, 2, 12, 0, 0, 0, loc), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cal.IsOpen(tt.at); got != tt.want {
				t.Errorf("IsOpen(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestWeeklyNextOpen(t *testing.T) {
	cal := nyseLike(t)
	loc := time.FixedZone("ET", -5*3600)

	// Friday after close jumps over the weekend and the Monday holiday.
	fridayEvening := time.Date(2022, 12, 30, 18, 0, 0, 0, loc)
	next := cal.NextOpen(fridayEvening)
	wantDay := time.Date(2023, 1, 3, 0, 0, 0, 0, loc)
	if next.Year() != wantDay.Year() || next.YearDay() != wantDay.YearDay() {
		t.Errorf("NextOpen(%v) = %v, want Tuesday 2023-01-03", fridayEvening, next)
	}
	if next.In(cal.loc).Hour() != 9 || next.In(cal.loc).Minute() != 30 {
		t.Errorf("NextOpen time-of-day = %v, want 09:30", next.In(cal.loc))
	}

	// An open instant is its own next open.
	during := time.Date(2023, 1, 10, 12, 0, 0, 0, loc)
	if got := cal.NextOpen(during); !got.Equal(during) {
		t.Errorf("NextOpen(open instant) = %v, want %v", got, during)
	}
}

func TestWeekdayFullDay(t *testing.T) {
	cal := NewWeekdayFullDay(time.UTC, []string{"2023-01-01"})

	if !cal.IsOpen(time.Date(2023, 1, 4, 0, 0, 0, 0, time.UTC)) {
		t.Error("IsOpen(weekday midnight) = false, want true for full-day sessions")
	}
	if cal.IsOpen(time.Date(2023, 1, 7, 12, 0, 0, 0, time.UTC)) {
		t.Error("IsOpen(saturday) = true, want false")
	}

	open, close, ok := cal.SessionBounds(time.Date(2023, 1, 4, 15, 0, 0, 0, time.UTC))
	if !ok {
		t.Fatal("SessionBounds(weekday) not ok")
	}
	if want := time.Date(2023, 1, 4, 0, 0, 0, 0, time.UTC); !open.Equal(want) {
		t.Errorf("open = %v, want %v", open, want)
	}
	if want := time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC); !close.Equal(want) {
		t.Errorf("close = %v, want %v", close, want)
	}
}

func TestStaticSource(t *testing.T) {
	def := NewWeekdayFullDay(time.UTC, nil)
	nyse := nyseLike(t)
	src := StaticSource{Default: def, ByExchange: map[string]Calendar{"NYSE": nyse}}

	if src.For("NYSE") != Calendar(nyse) {
		t.Error("For(NYSE) did not return the mapped calendar")
	}
	if src.For("LSE") != Calendar(def) {
		t.Error("For(unknown) did not fall back to the default")
	}
}
