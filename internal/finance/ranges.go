package finance

import (
	"errors"
	"fmt"
	"time"
)

// Range is a symbolic date range selector.
type Range string

const (
	RangeToday     Range = "today"
	RangeYesterday Range = "yesterday"
	RangeWeek      Range = "week"
	RangeMonth     Range = "month"
	RangeLastMonth Range = "last_month"
	RangeYear      Range = "year"
	RangeAll       Range = "all"
)

var Ranges = []Range{RangeToday, RangeYesterday, RangeWeek, RangeMonth, RangeLastMonth, RangeYear, RangeAll}

var ErrUnknownRange = errors.New("unknown date range")

// ParseRange validates a selector; "" means all.
func ParseRange(s string) (Range, error) {
	if s == "" {
		return RangeAll, nil
	}
	for _, r := range Ranges {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRange, s)
}

// Window is a half-open [Start, End) interval. An unbounded window contains every instant.
type Window struct {
	Start     time.Time
	End       time.Time
	Unbounded bool
	Location  *time.Location
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if w.Unbounded {
		return true
	}
	return !t.Before(w.Start) && t.Before(w.End)
}

func (w Window) location() *time.Location {
	if w.Location != nil {
		return w.Location
	}
	return time.Local
}

// Resolve turns the selector into a concrete window anchored at now, in now's location.
func (r Range) Resolve(now time.Time) (Window, error) {
	loc := now.Location()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)
	tomorrow := today.AddDate(0, 0, 1)
	firstOfMonth := time.Date(y, m, 1, 0, 0, 0, 0, loc)

	w := Window{Location: loc}
	switch r {
	case RangeToday:
		w.Start, w.End = today, tomorrow
	case RangeYesterday:
		w.Start, w.End = today.AddDate(0, 0, -1), today
	case RangeWeek:
		w.Start, w.End = today.AddDate(0, 0, -6), tomorrow
	case RangeMonth:
		w.Start, w.End = firstOfMonth, firstOfMonth.AddDate(0, 1, 0)
	case RangeLastMonth:
		w.Start, w.End = firstOfMonth.AddDate(0, -1, 0), firstOfMonth
	case RangeYear:
		w.Start = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		w.End = w.Start.AddDate(1, 0, 0)
	case RangeAll, "":
		w.Unbounded = true
	default:
		return Window{}, fmt.Errorf("%w: %q", ErrUnknownRange, string(r))
	}
	return w, nil
}

// ResolveRange parses and resolves a selector in one step.
func ResolveRange(s string, now time.Time) (Window, error) {
	r, err := ParseRange(s)
	if err != nil {
		return Window{}, err
	}
	return r.Resolve(now)
}
