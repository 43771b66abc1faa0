package profile

import (
	"context"
	"time"
)

// Profile aggregates per-user counters. Counters only ever go up.
type Profile struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Messages  int64     `json:"messages"`
	Roasts    int64     `json:"roasts"`
	FirstSeen time.Time `json:"first_seen"`
}

// Store persists user profiles. The dispatch path only emits increments;
// durability is the store's concern.
type Store interface {
	Get(ctx context.Context, userID int64) (*Profile, error)
	IncrementMessages(ctx context.Context, userID int64, username string) error
	IncrementRoasts(ctx context.Context, userID int64) error
	Flush(ctx context.Context) error
	Close() error
}
