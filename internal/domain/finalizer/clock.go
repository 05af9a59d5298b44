package finalizer

import "time"

// Clock abstracts time so resolution deadlines can be tested without
// waiting on real timers.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func NewClock() *realClock {
	return &realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}
