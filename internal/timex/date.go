package timex

import "time"

// DateString returns the calendar date of t in the local time zone,
// formatted as YYYY-MM-DD.
func DateString(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

// MonthString returns the calendar month of t in the local time zone,
// formatted as YYYY-MM.
func MonthString(t time.Time) string {
	return t.Local().Format("2006-01")
}
