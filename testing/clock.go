// Package escrowtesting holds shared fixtures for exercising the settlement
// modules: a manual clock standing in for the external time authority and
// helpers for producing notary-signed attestation bundles.
package escrowtesting

import (
	"sync"
	"time"
)

// GenesisTime is the instant manual clocks start at.
var GenesisTime = time.Unix(1_700_000_000, 0).UTC()

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a clock starting at GenesisTime.
func NewClock() *Clock {
	return &Clock{now: GenesisTime}
}

// Now returns the current clock reading.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
