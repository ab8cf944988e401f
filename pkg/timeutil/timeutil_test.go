package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kyiv(t *testing.T) *time.Location {
	loc, err := time.LoadLocation("Europe/Kyiv")
	require.NoError(t, err)
	return loc
}

func TestHourMinute(t *testing.T) {
	loc := kyiv(t)

	// 06:00 UTC in winter is 08:00 in Kyiv (UTC+2).
	h, m := HourMinute(time.Date(2025, 1, 15, 6, 0, 0, 0, time.UTC), loc)
	assert.Equal(t, 8, h)
	assert.Equal(t, 0, m)

	// 06:00 UTC in summer is 09:00 in Kyiv (UTC+3).
	h, m = HourMinute(time.Date(2025, 7, 15, 6, 0, 0, 0, time.UTC), loc)
	assert.Equal(t, 9, h)
	assert.Equal(t, 0, m)
}

func TestDayKey_CrossesMidnightInLocalZone(t *testing.T) {
	loc := kyiv(t)

	// 22:30 UTC is already the next day in Kyiv.
	key := DayKey(time.Date(2025, 9, 7, 22, 30, 0, 0, time.UTC), loc)
	assert.Equal(t, "2025-09-08", key)

	assert.Equal(t, "2025-09-07", DayKey(time.Date(2025, 9, 7, 12, 0, 0, 0, time.UTC), loc))
}

func TestMonthDayKey(t *testing.T) {
	loc := kyiv(t)
	assert.Equal(t, "09-08", MonthDayKey(time.Date(2025, 9, 8, 10, 0, 0, 0, time.UTC), loc))
	// Late UTC evening rolls into the next local day.
	assert.Equal(t, "01-01", MonthDayKey(time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC), loc))
}

func TestZonedDate_DSTTransitions(t *testing.T) {
	loc := kyiv(t)

	winter := ZonedDate(2025, time.January, 10, 9, 0, loc)
	assert.Equal(t, time.Date(2025, 1, 10, 7, 0, 0, 0, time.UTC), winter.UTC())

	summer := ZonedDate(2025, time.July, 10, 9, 0, loc)
	assert.Equal(t, time.Date(2025, 7, 10, 6, 0, 0, 0, time.UTC), summer.UTC())
}

func TestNextBirthday(t *testing.T) {
	loc := kyiv(t)
	birthday := time.Date(1990, 9, 10, 0, 0, 0, 0, time.UTC)

	t.Run("later this year", func(t *testing.T) {
		now := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
		next := NextBirthday(birthday, now, 9, loc)
		assert.Equal(t, 2025, next.Year())
		assert.Equal(t, time.September, next.Month())
		assert.Equal(t, 10, next.Day())
		assert.Equal(t, 9, next.In(loc).Hour())
	})

	t.Run("already passed rolls to next year", func(t *testing.T) {
		now := time.Date(2025, 9, 20, 10, 0, 0, 0, time.UTC)
		next := NextBirthday(birthday, now, 9, loc)
		assert.Equal(t, 2026, next.Year())
	})

	t.Run("same day before trigger hour still today", func(t *testing.T) {
		// 04:00 UTC on Sep 10 is 07:00 Kyiv, before the 09:00 trigger.
		now := time.Date(2025, 9, 10, 4, 0, 0, 0, time.UTC)
		next := NextBirthday(birthday, now, 9, loc)
		assert.Equal(t, 2025, next.Year())
		assert.Equal(t, 10, next.In(loc).Day())
	})
}

func TestNoonUTC(t *testing.T) {
	in := time.Date(2025, 3, 5, 23, 45, 12, 0, time.UTC)
	got := NoonUTC(in)
	assert.Equal(t, time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC), got)

	// Input in another zone is normalized by its UTC date.
	loc := kyiv(t)
	in = time.Date(2025, 3, 6, 1, 30, 0, 0, loc) // 2025-03-05 23:30 UTC
	assert.Equal(t, time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC), NoonUTC(in))
}
