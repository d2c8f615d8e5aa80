package domain

import "time"

// DateLayout is the wire and storage format of calendar dates
const DateLayout = "2006-01-02"

// DateOf truncates t to its calendar date, expressed at UTC midnight.
// The calendar fields are read in t's own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonths adds n calendar months to a date, clamping the day to the end of the target month
// (Jan 31 + 1 month = Feb 28, or Feb 29 in a leap year)
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// ParseDate parses a YYYY-MM-DD string into a date at UTC midnight
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
