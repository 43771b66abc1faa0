package session

import "sync"

// Inflight is a single-slot guard keyed by user id. It keeps two
// completions for the same user from overlapping, which would let their
// history appends interleave out of order.
type Inflight struct {
	mu     sync.Mutex
	active map[int64]struct{}
}

func NewInflight() *Inflight {
	return &Inflight{active: make(map[int64]struct{})}
}

// TryAcquire claims the user's slot. It returns false if a completion
// for that user is already in flight.
func (g *Inflight) TryAcquire(userID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.active[userID]; busy {
		return false
	}
	g.active[userID] = struct{}{}
	return true
}

// Release frees the user's slot.
func (g *Inflight) Release(userID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.active, userID)
}
