// Package schedule normalizes calendar dates and projects recurrence rules
// onto the date of their next occurrence.
package schedule

import (
	"regexp"
	"time"
)

// DateLayout is the only accepted calendar date format.
const DateLayout = "2006-01-02"

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Today formats now as a calendar date in now's location.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// ParseDate parses a strict YYYY-MM-DD string that names a real calendar day.
func ParseDate(raw string) (time.Time, bool) {
	if !datePattern.MatchString(raw) {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// NormalizeDate returns raw unchanged if it is a valid calendar date and
// today's date otherwise. The bool reports whether raw was accepted.
func NormalizeDate(raw string, now time.Time) (string, bool) {
	if _, ok := ParseDate(raw); ok {
		return raw, true
	}
	return Today(now), false
}

// NextDate computes the next occurrence after current. An unparseable
// current date is treated as today.
func NextDate(current string, r Recurrence, now time.Time) string {
	from, ok := ParseDate(current)
	if !ok {
		from, _ = ParseDate(Today(now))
	}
	return r.Next(from).Format(DateLayout)
}

// weekday maps time.Weekday onto 0=Monday..6=Sunday.
func weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// clampedDate builds year-month-day, pulling day back to the last valid day
// of the month when it overflows.
func clampedDate(year int, month time.Month, day int, loc *time.Location) time.Time {
	if last := daysIn(year, month); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}
