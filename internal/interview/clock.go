package interview

import (
	"time"
)

// Timer is the subset of *time.Timer the engine needs. The silence
// countdown and the session clock go through this so tests can drive
// them without real time. Timers are single-shot; a re-arm always
// creates a fresh one.
type Timer interface {
	Stop() bool
}

// Clock creates timers.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// NewRealClock returns a Clock backed by the runtime timer.
func NewRealClock() Clock {
	return realClock{}
}
