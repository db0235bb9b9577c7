package engine

import "time"

// Clock abstracts time so phase timers can be driven by tests
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable handle returned by Clock.AfterFunc
type Timer interface {
	Stop() bool
}

type realClock struct{}

// RealClock returns a Clock backed by the time package
func RealClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// phaseTimer is the session's single live timer. gen identifies the arming
// so a firing that lost the race with Stop is recognised and dropped.
type phaseTimer struct {
	gen      uint64
	phase    Phase
	handle   Timer
	deadline time.Time
}
