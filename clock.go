package mediatime

import "time"

// A Clock supplies the current time as a Timestamp. Substituting a
// fixed or scripted clock keeps time-dependent behaviour testable.
type Clock interface {
	Now() Timestamp
}

// SystemClock reads the operating system clock and converts it through
// the leap second table.
type SystemClock struct{}

func (SystemClock) Now() Timestamp { return TimestampFromTime(time.Now()) }

// DefaultClock backs Now and the "now" timestamp string. Tests may
// swap it out.
var DefaultClock Clock = SystemClock{}

// Now returns the current time from the DefaultClock.
func Now() Timestamp { return DefaultClock.Now() }
