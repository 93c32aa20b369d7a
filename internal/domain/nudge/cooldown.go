package nudge

import (
	"sync"
	"time"
)

// Cooldown defaults.
const (
	DefaultCooldown    = 10 * time.Minute
	DefaultMinCooldown = 5 * time.Minute
	DefaultMaxCooldown = 30 * time.Minute

	shrinkFactor = 0.9
	growFactor   = 1.5
)

// Cooldown is the adaptive minimum spacing between emitted nudges. It
// shrinks while remote generation succeeds and grows whenever the local
// fallback had to be used.
type Cooldown struct {
	mu      sync.Mutex
	current time.Duration
	floor   time.Duration
	ceiling time.Duration
	last    time.Time
}

// NewCooldown creates a cooldown starting at initial, clamped to
// [floor, ceiling].
func NewCooldown(initial, floor, ceiling time.Duration) *Cooldown {
	if floor <= 0 {
		floor = DefaultMinCooldown
	}
	if ceiling < floor {
		ceiling = DefaultMaxCooldown
		if ceiling < floor {
			ceiling = floor
		}
	}
	if initial <= 0 {
		initial = DefaultCooldown
	}
	c := &Cooldown{floor: floor, ceiling: ceiling}
	c.current = c.clamp(initial)
	return c
}

// Ready reports whether a nudge may be emitted at now.
func (c *Cooldown) Ready(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last.IsZero() || now.Sub(c.last) >= c.current
}

// Mark records a nudge emitted at now.
func (c *Cooldown) Mark(now time.Time) {
	c.mu.Lock()
	c.last = now
	c.mu.Unlock()
}

// Shrink applies the remote-success adjustment.
func (c *Cooldown) Shrink() {
	c.scale(shrinkFactor)
}

// Grow applies the fallback adjustment.
func (c *Cooldown) Grow() {
	c.scale(growFactor)
}

// Current returns the window in effect.
func (c *Cooldown) Current() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// SetBounds replaces the floor and cap and re-clamps the current window.
// Invalid bounds are ignored.
func (c *Cooldown) SetBounds(floor, ceiling time.Duration) {
	if floor <= 0 || ceiling < floor {
		return
	}
	c.mu.Lock()
	c.floor, c.ceiling = floor, ceiling
	c.current = c.clamp(c.current)
	c.mu.Unlock()
}

func (c *Cooldown) scale(f float64) {
	c.mu.Lock()
	c.current = c.clamp(time.Duration(float64(c.current) * f))
	c.mu.Unlock()
}

func (c *Cooldown) clamp(d time.Duration) time.Duration {
	if d < c.floor {
		return c.floor
	}
	if d > c.ceiling {
		return c.ceiling
	}
	return d
}
