package utils

import "time"

// DaysBetween returns the whole number of days separating two timestamps,
// order-insensitive.
func DaysBetween(a, b time.Time) int {
	if b.Before(a) {
		a, b = b, a
	}
	return int(b.Sub(a).Hours() / 24)
}

// StartOfWeek truncates a timestamp to midnight of that week's Sunday.
func StartOfWeek(t time.Time) time.Time {
	t = t.AddDate(0, 0, -int(t.Weekday()))
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
