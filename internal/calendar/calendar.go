// Package calendar provides market-hours awareness for gap detection and
// session-aware fetching. Calendars are consumed read-only; exchange session
// metadata is maintained by symbol synchronization tooling.
package calendar

import "time"

// Calendar reports whether a market is open at an instant and where its
// session boundaries fall.
type Calendar interface {
	// IsOpen reports whether the market is trading at t.
	IsOpen(t time.Time) bool

	// SessionBounds returns the open and close instants for the trading day
	// containing t. ok is false on weekends and holidays.
	SessionBounds(t time.Time) (open, close time.Time, ok bool)

	// IsHoliday reports whether the date containing t is a market holiday.
	IsHoliday(t time.Time) bool

	// NextOpen returns the next session open at or after t. If t is already
	// inside a session, t itself is returned.
	NextOpen(t time.Time) time.Time
}

// Source resolves the calendar for an instrument's exchange.
type Source interface {
	For(exchange string) Calendar
}

// StaticSource resolves calendars from a fixed map with a fallback.
type StaticSource struct {
	Default    Calendar
	ByExchange map[string]Calendar
}

func (s StaticSource) For(exchange string) Calendar {
	if c, ok := s.ByExchange[exchange]; ok {
		return c
	}
	return s.Default
}

// Weekly is a Calendar with one session per working weekday at fixed
// wall-clock times in a location, minus a holiday set.
type Weekly struct {
	loc       *time.Location
	openHour  int
	openMin   int
	closeHour int // 24 means the session runs to end of day
	closeMin  int
	days      map[time.Weekday]bool
	holidays  map[string]struct{} // "2006-01-02" in loc
}

// NewWeekly creates a Weekly calendar. days lists the working weekdays;
// holidays are dates formatted "2006-01-02" in loc.
func NewWeekly(loc *time.Location, openHour, openMin, closeHour, closeMin int, days []time.Weekday, holidays []string) *Weekly {
	w := &Weekly{
		loc:       loc,
		openHour:  openHour,
		openMin:   openMin,
		closeHour: closeHour,
		closeMin:  closeMin,
		days:      make(map[time.Weekday]bool, len(days)),
		holidays:  make(map[string]struct{}, len(holidays)),
	}
	for _, d := range days {
		w.days[d] = true
	}
	for _, h := range holidays {
		w.holidays[h] = struct{}{}
	}
	return w
}

// NewWeekdayFullDay returns a calendar whose sessions span entire weekdays.
// Useful for daily-and-coarser cadences where bars are stamped at midnight.
func NewWeekdayFullDay(loc *time.Location, holidays []string) *Weekly {
	days := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
	return NewWeekly(loc, 0, 0, 24, 0, days, holidays)
}

func (w *Weekly) IsHoliday(t time.Time) bool {
	_, ok := w.holidays[t.In(w.loc).Format("2006-01-02")]
	return ok
}

func (w *Weekly) isTradingDay(t time.Time) bool {
	lt := t.In(w.loc)
	return w.days[lt.Weekday()] && !w.IsHoliday(t)
}

func (w *Weekly) SessionBounds(t time.Time) (time.Time, time.Time, bool) {
	if !w.isTradingDay(t) {
		return time.Time{}, time.Time{}, false
	}
	lt := t.In(w.loc)
	open := time.Date(lt.Year(), lt.Month(), lt.Day(), w.openHour, w.openMin, 0, 0, w.loc)
	var close time.Time
	if w.closeHour >= 24 {
		close = time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, w.loc).AddDate(0, 0, 1)
	} else {
		close = time.Date(lt.Year(), lt.Month(), lt.Day(), w.closeHour, w.closeMin, 0, 0, w.loc)
	}
	return open, close, true
}

func (w *Weekly) IsOpen(t time.Time) bool {
	open, close, ok := w.SessionBounds(t)
	if !ok {
		return false
	}
	return !t.Before(open) && t.Before(close)
}

// NextOpen jumps directly to the next session boundary rather than scanning
// instant by instant, so closed stretches cost one iteration per day.
func (w *Weekly) NextOpen(t time.Time) time.Time {
	if w.IsOpen(t) {
		return t
	}
	// Bounded scan: with at least one working weekday per week the next
	// session is within the holiday span plus seven days.
	cursor := t
	for i := 0; i < 366*5; i++ {
		if open, _, ok := w.SessionBounds(cursor); ok && !open.Before(t) {
			return open
		}
		lc := cursor.In(w.loc)
		cursor = time.Date(lc.Year(), lc.Month(), lc.Day(), 0, 0, 0, 0, w.loc).AddDate(0, 0, 1)
	}
	return time.Time{}
}
