package week

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviousMonday(t *testing.T) {
	t.Run("is idempotent on a Monday", func(t *testing.T) {
		monday := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)

		result := PreviousMonday(monday)

		assert.Equal(t, monday, result)
		assert.Equal(t, time.Monday, result.Weekday())
	})

	t.Run("maps Sunday back to the previous Monday", func(t *testing.T) {
		sunday := time.Date(2024, 2, 11, 0, 0, 0, 0, time.UTC)

		result := PreviousMonday(sunday)

		assert.Equal(t, time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), result)
	})

	t.Run("returns the same Monday for all seven days of a week", func(t *testing.T) {
		monday := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)
		for i := 0; i < 7; i++ {
			day := monday.AddDate(0, 0, i)
			assert.Equal(t, monday, PreviousMonday(day), "day %s", day)
		}
	})

	t.Run("uses date-only semantics regardless of time and zone", func(t *testing.T) {
		warsaw, err := time.LoadLocation("Europe/Warsaw")
		require.NoError(t, err)

		// Late evening local time must not drift into the next day.
		lateMonday := time.Date(2024, 2, 5, 23, 30, 0, 0, warsaw)

		result := PreviousMonday(lateMonday)

		assert.Equal(t, time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), result)
	})

	t.Run("crosses month and year boundaries", func(t *testing.T) {
		newYear := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC) // Wednesday

		result := PreviousMonday(newYear)

		assert.Equal(t, time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), result)
	})
}

func TestParseKey(t *testing.T) {
	t.Run("parses a Monday unchanged", func(t *testing.T) {
		key, err := ParseKey("2024-02-05")

		require.NoError(t, err)
		assert.Equal(t, "2024-02-05", key.String())
	})

	t.Run("normalizes mid-week dates to Monday", func(t *testing.T) {
		key, err := ParseKey("2024-02-08") // Thursday

		require.NoError(t, err)
		assert.Equal(t, "2024-02-05", key.String())
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		_, err := ParseKey("05-02-2024")
		require.Error(t, err)

		_, err = ParseKey("not-a-date")
		require.Error(t, err)
	})
}

func TestKey_AddWeeks(t *testing.T) {
	key, err := ParseKey("2024-02-05")
	require.NoError(t, err)

	assert.Equal(t, "2024-02-12", key.AddWeeks(1).String())
	assert.Equal(t, "2024-01-29", key.AddWeeks(-1).String())
	assert.Equal(t, key, key.AddWeeks(4).AddWeeks(-4))
}

func TestKey_Days(t *testing.T) {
	key, err := ParseKey("2024-02-05")
	require.NoError(t, err)

	days := key.Days()

	assert.Equal(t, time.Monday, days[0].Weekday())
	assert.Equal(t, time.Sunday, days[6].Weekday())
	assert.Equal(t, time.Date(2024, 2, 11, 0, 0, 0, 0, time.UTC), days[6])
}

func TestShortLabel(t *testing.T) {
	assert.Equal(t, "02-05", ShortLabel(time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "12-30", ShortLabel(time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)))
}
