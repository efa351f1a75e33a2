package scanner

import (
	"time"
)

// Cooldown gates repeat notifications per symbol. Entries never expire;
// symbol cardinality is bounded by the exchange's listed instruments.
// Not safe for concurrent use: the scanner touches it from a single
// goroutine only.
type Cooldown struct {
	period    time.Duration
	clock     func() time.Time
	lastAlert map[string]time.Time
}

// NewCooldown creates a cooldown tracker. A nil clock defaults to time.Now.
func NewCooldown(period time.Duration, clock func() time.Time) *Cooldown {
	if clock == nil {
		clock = time.Now
	}
	return &Cooldown{
		period:    period,
		clock:     clock,
		lastAlert: make(map[string]time.Time),
	}
}

// CanAlert reports whether the symbol is outside its cooldown window: either
// it has never alerted or at least the full period has elapsed.
func (c *Cooldown) CanAlert(symbol string) bool {
	last, ok := c.lastAlert[symbol]
	if !ok {
		return true
	}
	return c.clock().Sub(last) >= c.period
}

// Record marks the symbol as having alerted now. Call only after a confirmed
// successful dispatch; a failed send must not consume the cooldown.
func (c *Cooldown) Record(symbol string) {
	c.lastAlert[symbol] = c.clock()
}
