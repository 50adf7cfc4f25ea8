package core

import "time"

// SetTimeNow replaces the service clock and returns a func restoring it.
func SetTimeNow(f func() time.Time) func() {
	prev := timeNow
	timeNow = f
	return func() { timeNow = prev }
}
