package scanner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock is a manually advanced clock for cooldown tests.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func TestCooldownFreshSymbol(t *testing.T) {
	cd := NewCooldown(time.Hour, newFakeClock().Now)
	assert.True(t, cd.CanAlert("BTCUSDT"))
	assert.True(t, cd.CanAlert("ETHUSDT"))
}

func TestCooldownWindow(t *testing.T) {
	clock := newFakeClock()
	cd := NewCooldown(time.Hour, clock.Now)

	cd.Record("BTCUSDT")
	assert.False(t, cd.CanAlert("BTCUSDT"))
	// Other symbols are unaffected.
	assert.True(t, cd.CanAlert("ETHUSDT"))

	clock.Advance(59 * time.Minute)
	assert.False(t, cd.CanAlert("BTCUSDT"))

	clock.Advance(1 * time.Minute)
	// Exactly the full period has elapsed.
	assert.True(t, cd.CanAlert("BTCUSDT"))
}

func TestCooldownRecordOverwrites(t *testing.T) {
	clock := newFakeClock()
	cd := NewCooldown(time.Hour, clock.Now)

	cd.Record("BTCUSDT")
	clock.Advance(61 * time.Minute)
	assert.True(t, cd.CanAlert("BTCUSDT"))

	cd.Record("BTCUSDT")
	assert.False(t, cd.CanAlert("BTCUSDT"))
	clock.Advance(61 * time.Minute)
	assert.True(t, cd.CanAlert("BTCUSDT"))
}
