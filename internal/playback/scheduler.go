package playback

import "time"

// Timer is a pending deferred callback.
type Timer interface {
	// Stop prevents the callback from firing if it has not started yet.
	Stop() bool
}

// Scheduler defers a callback. The Player holds at most one outstanding Timer.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules on the runtime timer heap.
type RealScheduler struct{}

func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
