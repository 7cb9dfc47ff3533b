// Package calendar treats a calendar day as UTC midnight of its date so that
// day keys compare and persist the same way on every store.
package calendar

import (
	"errors"
	"strings"
	"time"
)

const Layout = "2006-01-02"

var ErrInvalidDay = errors.New("invalid_day")

// Normalize keeps only the date of t as seen in t's own location.
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// In returns the date of t as observed in loc.
func In(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Normalize(t.In(loc))
}

func Parse(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalidDay
	}
	t, err := time.Parse(Layout, value)
	if err != nil {
		return time.Time{}, ErrInvalidDay
	}
	return t, nil
}

func Format(day time.Time) string {
	return Normalize(day).Format(Layout)
}

func AddDays(day time.Time, n int) time.Time {
	return Normalize(day).AddDate(0, 0, n)
}

func Previous(day time.Time) time.Time {
	return AddDays(day, -1)
}

// IsNextDay reports whether next is exactly one calendar day after prev.
func IsNextDay(prev, next time.Time) bool {
	return AddDays(prev, 1).Equal(Normalize(next))
}

// Range lists every day from start to end inclusive.
func Range(start, end time.Time) []time.Time {
	start = Normalize(start)
	end = Normalize(end)
	if end.Before(start) {
		return nil
	}
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
