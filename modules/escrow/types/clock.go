package types

import "time"

// Clock is the external time authority trades are timed against. It must be
// monotonically non-decreasing and not meaningfully forgeable by either
// trading party alone (block time in the reference deployment).
type Clock interface {
	Now() time.Time
}

// SystemClock reads the operating system clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
