package utils

import "time"

// Clock abstracts the current time so the week a grid opens on can be pinned
// in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock, delegating to time.Now.
type SystemClock struct{}

func (s SystemClock) Now() time.Time {
	return time.Now()
}

// MockClock reports a fixed instant.
type MockClock struct {
	FixedNow time.Time
}

func (m *MockClock) Now() time.Time {
	return m.FixedNow
}

func (m *MockClock) SetNow(now time.Time) {
	m.FixedNow = now
}
