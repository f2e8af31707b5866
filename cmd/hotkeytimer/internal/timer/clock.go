package timer

import "time"

// Stopper cancels a pending callback. Stop reports whether it prevented the call.
type Stopper interface {
	Stop() bool
}

// Clock is the time source the controller schedules against.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Stopper
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

// RealClock returns a Clock backed by package time.
func RealClock() Clock { return realClock{} }

func (realClock) Now() time.Time                              { return time.Now() }
func (realClock) AfterFunc(d time.Duration, f func()) Stopper { return time.AfterFunc(d, f) }
func (realClock) After(d time.Duration) <-chan time.Time      { return time.After(d) }
