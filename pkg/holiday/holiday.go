package holiday

import "time"

// Holiday is a single public-holiday date. The set of holidays is the
// calendar injected into shift classification: a shift worked on one of
// these dates is paid at the holiday rate regardless of weekday.
type Holiday struct {
	ID   int
	Date time.Time
	Name string
}

// DateOnly normalizes a timestamp to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
