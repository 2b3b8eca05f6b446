package core

import (
	"strings"
	"time"
)

// Layouts accepted for dates in bookkeeping exports. Single-digit day and
// month are accepted too.
var exportDateLayouts = []string{
	"2-1-2006",
	"2/1/2006",
}

// ParseExportDate parses a DD-MM-YYYY or DD/MM/YYYY date in loc. Calendar
// impossibilities such as 31-02-2025 are rejected.
func ParseExportDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range exportDateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayString formats t as YYYY-MM-DD.
func DayString(t time.Time) string {
	return t.Format("2006-01-02")
}
