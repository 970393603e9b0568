package clock

import "time"

// Clock is the time source for every persisted state transition.
// Timestamps always come from the server side, never from the client.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// System returns the real wall clock in UTC.
func System() Clock {
	return systemClock{}
}

// Fixed is a frozen clock for tests.
type Fixed struct {
	Time time.Time
}

func (f *Fixed) Now() time.Time {
	return f.Time
}

// Advance moves the fixed clock forward.
func (f *Fixed) Advance(d time.Duration) {
	f.Time = f.Time.Add(d)
}
