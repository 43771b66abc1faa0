package session

import (
	"sync"

	"github.com/keetrykee/Kilua/internal/models"
)

// DefaultMaxTurns bounds a conversation window to the last 10 exchanges.
const DefaultMaxTurns = 20

// History keeps a bounded, per-user log of conversation turns. Entries
// are created lazily on first append and live until cleared or the
// process exits; there is no persistence for conversation state.
type History struct {
	mu       sync.RWMutex
	maxTurns int
	sessions map[int64][]models.Turn
}

func NewHistory(maxTurns int) *History {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &History{
		maxTurns: maxTurns,
		sessions: make(map[int64][]models.Turn),
	}
}

// Get returns a copy of the user's conversation window, oldest first.
// Unknown users get an empty slice.
func (h *History) Get(userID int64) []models.Turn {
	h.mu.RLock()
	defer h.mu.RUnlock()

	turns := h.sessions[userID]
	copied := make([]models.Turn, len(turns))
	copy(copied, turns)
	return copied
}

// Append records one completed exchange. If the window would exceed the
// bound the oldest turns are evicted first, so the most recent exchanges
// are always retained. Callers must only append after a successful
// completion; a failed call must not leave an orphan user turn behind.
func (h *History) Append(userID int64, userTurn, assistantTurn models.Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	turns := append(h.sessions[userID], userTurn, assistantTurn)
	if len(turns) > h.maxTurns {
		turns = turns[len(turns)-h.maxTurns:]
	}
	h.sessions[userID] = turns
}

// Clear drops the user's conversation window.
func (h *History) Clear(userID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.sessions, userID)
}

// Len reports the current window length for a user.
func (h *History) Len(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.sessions[userID])
}
