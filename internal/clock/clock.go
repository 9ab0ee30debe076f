// Package clock abstracts time for components whose scheduling behavior
// is asserted in tests. Production code passes Real; tests drive a Fake.
package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type Real struct{}

func (Real) Now() time.Time        { return time.Now() }
func (Real) Sleep(d time.Duration) { time.Sleep(d) }

// Fake is a manually advanced clock. Sleep blocks until Advance moves the
// clock to or past the deadline.
type Fake struct {
	mu       sync.Mutex
	now      time.Time
	sleepers []fakeSleeper
}

type fakeSleeper struct {
	deadline time.Time
	done     chan struct{}
}

func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	f.mu.Lock()
	s := fakeSleeper{deadline: f.now.Add(d), done: make(chan struct{})}
	f.sleepers = append(f.sleepers, s)
	f.mu.Unlock()
	<-s.done
}

// Advance moves the clock forward and wakes every sleeper whose deadline
// has been reached.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	rest := f.sleepers[:0]
	var wake []chan struct{}
	for _, s := range f.sleepers {
		if s.deadline.After(f.now) {
			rest = append(rest, s)
		} else {
			wake = append(wake, s.done)
		}
	}
	f.sleepers = rest
	f.mu.Unlock()
	for _, ch := range wake {
		close(ch)
	}
}

// Sleepers reports how many Sleep calls are currently blocked. Tests use
// it to wait for a worker to reach its sleep gate before advancing.
func (f *Fake) Sleepers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sleepers)
}
