package week

import (
	"fmt"
	"time"
)

// KeyLayout is the canonical wire and storage format for week keys.
const KeyLayout = "2006-01-02"

// Key identifies a timesheet week by the calendar date of its Monday.
// The zero value is not a valid key; construct one with KeyOf or ParseKey.
type Key struct {
	monday time.Time // midnight UTC, always a Monday
}

// PreviousMonday returns the Monday on or before the given date, using
// date-only semantics (the result is midnight UTC for that calendar date).
// Applying it to a Monday returns the same day; a Sunday maps back six days
// to the previous Monday, never forward.
func PreviousMonday(t time.Time) time.Time {
	day := truncateToDate(t)
	delta := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -delta)
}

// KeyOf returns the Key of the week containing the given date.
func KeyOf(t time.Time) Key {
	return Key{monday: PreviousMonday(t)}
}

// ParseKey parses a YYYY-MM-DD string into a Key. Any day of a week is
// accepted; the result is normalized to that week's Monday.
func ParseKey(s string) (Key, error) {
	t, err := time.ParseInLocation(KeyLayout, s, time.UTC)
	if err != nil {
		return Key{}, fmt.Errorf("invalid week key %q: %w", s, err)
	}
	return KeyOf(t), nil
}

// String renders the key in the canonical YYYY-MM-DD format.
func (k Key) String() string {
	return k.monday.Format(KeyLayout)
}

// Monday returns the date of the week's Monday (midnight UTC).
func (k Key) Monday() time.Time {
	return k.monday
}

// AddWeeks returns the key shifted by n weeks (n may be negative).
func (k Key) AddWeeks(n int) Key {
	return Key{monday: k.monday.AddDate(0, 0, n*7)}
}

// Days returns the seven dates of the week, Monday first.
func (k Key) Days() [7]time.Time {
	var days [7]time.Time
	for i := range days {
		days[i] = k.monday.AddDate(0, 0, i)
	}
	return days
}

// IsZero reports whether the key is the zero value.
func (k Key) IsZero() bool {
	return k.monday.IsZero()
}

// ShortLabel formats a date as MM-DD for grid column headers.
func ShortLabel(t time.Time) string {
	return t.Format("01-02")
}

// truncateToDate drops the time-of-day and pins the calendar date to UTC, so
// that key computation never drifts a day across timezone boundaries.
func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
