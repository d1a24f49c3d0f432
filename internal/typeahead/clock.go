package typeahead

import "time"

// Clock schedules debounce timers.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending AfterFunc call.
type Timer interface {
	// Stop prevents the call if it has not started. It reports whether it did.
	Stop() bool
}

// RealClock schedules with the time package.
type RealClock struct{}

// AfterFunc implements Clock.
func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
