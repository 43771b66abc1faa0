package session

import (
	"sync"
	"time"
)

// DefaultCooldown is the minimum gap between two generated replies to
// the same user.
const DefaultCooldown = 3 * time.Second

// Cooldowns tracks the last successful response time per user. A user
// is on cooldown while less than the window has elapsed since their
// last reply was dispatched; failed completions never extend it.
type Cooldowns struct {
	mu     sync.Mutex
	window time.Duration
	now    func() time.Time
	last   map[int64]time.Time
}

func NewCooldowns(window time.Duration) *Cooldowns {
	if window <= 0 {
		window = DefaultCooldown
	}
	return &Cooldowns{
		window: window,
		now:    time.Now,
		last:   make(map[int64]time.Time),
	}
}

// WithClock substitutes the time source. Used by tests.
func (c *Cooldowns) WithClock(now func() time.Time) *Cooldowns {
	c.now = now
	return c
}

// OnCooldown reports whether the user must still wait. Checking never
// resets or extends the window.
func (c *Cooldowns) OnCooldown(userID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	last, ok := c.last[userID]
	return ok && c.now().Sub(last) < c.window
}

// Set records now as the user's last response time. Called only after a
// reply was successfully produced and dispatched.
func (c *Cooldowns) Set(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.last[userID] = c.now()
}
