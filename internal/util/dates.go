package util

import "time"

// Day-normalization helpers for the rotation schedule. All instants keep the
// location of their input so clubs see boundaries in their own wall clock.

// StartOfDay returns t truncated to 00:00:00.000.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns t normalized to 23:59:59.999.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// NextDayStart returns 00:00:00.000 of the day after t.
func NextDayStart(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1)
}
