// Package timeutil converts between absolute instants and wall-clock values
// in a configured timezone. All conversions go through time.Location so the
// UTC offset is derived for the specific instant, which keeps results correct
// across daylight-saving transitions.
package timeutil

import "time"

// HourMinute returns the local hour and minute of t in loc.
func HourMinute(t time.Time, loc *time.Location) (int, int) {
	lt := t.In(loc)
	return lt.Hour(), lt.Minute()
}

// DayKey returns a stable local calendar-day key, e.g. "2025-09-08".
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// MonthDayKey returns a year-independent local (month, day) key,
// e.g. "09-08". Used for anniversary matching.
func MonthDayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("01-02")
}

// ZonedDate returns the instant corresponding to the given wall-clock values
// in loc.
func ZonedDate(year int, month time.Month, day, hour, min int, loc *time.Location) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, loc)
}

// NextBirthday computes the next occurrence of birthday's local month-day at
// the given local hour, relative to now. If this year's occurrence has
// already passed it picks next year.
func NextBirthday(birthday, now time.Time, hour int, loc *time.Location) time.Time {
	b := birthday.In(loc)
	year := now.In(loc).Year()

	next := time.Date(year, b.Month(), b.Day(), hour, 0, 0, 0, loc)
	if !next.After(now) {
		next = time.Date(year+1, b.Month(), b.Day(), hour, 0, 0, 0, loc)
	}
	return next
}

// NoonUTC normalizes t to 12:00 UTC of its UTC calendar date. Hire dates are
// stored this way so the date survives rendering in any office timezone.
func NoonUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 12, 0, 0, 0, time.UTC)
}
