package clock

import "time"

// Clock abstracts time for code that paces itself with fixed delays, so the
// same logic runs in tests without real wall-clock waits.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

// Fake is a manually advanced Clock for tests. Sleep advances the current
// time immediately and records the requested duration.
type Fake struct {
	Current time.Time
	Slept   []time.Duration
}

// NewFake creates a Fake clock starting at the given time.
func NewFake(start time.Time) *Fake {
	return &Fake{Current: start}
}

// Now returns the fake current time.
func (f *Fake) Now() time.Time { return f.Current }

// Sleep advances the fake time by d without blocking.
func (f *Fake) Sleep(d time.Duration) {
	f.Current = f.Current.Add(d)
	f.Slept = append(f.Slept, d)
}

// Advance moves the fake time forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.Current = f.Current.Add(d)
}
