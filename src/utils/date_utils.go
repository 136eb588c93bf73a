package utils

import (
	"fmt"
	"time"
)

// DateLayout is the canonical year-month-day form produced by the upstream
// importer and consumed everywhere in this backend. Its lexicographic order
// matches its chronological order, which the sale-date filter relies on.
const DateLayout = "2006-01-02"

var timeLayouts = []string{"15:04:05", "15:04"}

// ParseDate parses a canonical date string.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", dateStr, err)
	}
	return t, nil
}

// ParseDateTime combines a transaction's date and time-of-day fields into one
// point in time. An empty time means midnight. A malformed value is reported
// rather than guessed at, since the chronological ordering built from these
// values decides which lots a sale consumes.
func ParseDateTime(dateStr, timeStr string) (time.Time, error) {
	day, err := ParseDate(dateStr)
	if err != nil {
		return time.Time{}, err
	}
	if timeStr == "" {
		return day, nil
	}
	for _, layout := range timeLayouts {
		if tod, err := time.Parse(layout, timeStr); err == nil {
			return day.Add(time.Duration(tod.Hour())*time.Hour +
				time.Duration(tod.Minute())*time.Minute +
				time.Duration(tod.Second())*time.Second), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (want HH:MM or HH:MM:SS)", timeStr)
}
