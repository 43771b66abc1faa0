package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FileStore keeps profiles in memory and flushes them as a flat
// userID→profile JSON document, on a fixed interval and on shutdown.
type FileStore struct {
	mu       sync.Mutex
	path     string
	profiles map[int64]*Profile
	dirty    bool
	now      func() time.Time
	logger   *zap.Logger
}

func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	s := &FileStore{
		path:     path,
		profiles: make(map[int64]*Profile),
		now:      time.Now,
		logger:   logger,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.logger.Info("No existing profile data, starting fresh", zap.String("path", s.path))
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading profile data: %w", err)
	}

	var raw map[string]*Profile
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing profile data: %w", err)
	}

	for key, p := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			s.logger.Warn("Skipping profile with bad key", zap.String("key", key))
			continue
		}
		p.UserID = id
		s.profiles[id] = p
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, userID int64) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.profiles[userID]; ok {
		copied := *p
		return &copied, nil
	}
	return &Profile{UserID: userID, FirstSeen: s.now()}, nil
}

func (s *FileStore) IncrementMessages(ctx context.Context, userID int64, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.get(userID)
	p.Messages++
	if username != "" {
		p.Username = username
	}
	s.dirty = true
	return nil
}

func (s *FileStore) IncrementRoasts(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.get(userID).Roasts++
	s.dirty = true
	return nil
}

// get returns the live profile for userID, creating it lazily.
// Callers must hold s.mu.
func (s *FileStore) get(userID int64) *Profile {
	p, ok := s.profiles[userID]
	if !ok {
		p = &Profile{UserID: userID, FirstSeen: s.now()}
		s.profiles[userID] = p
	}
	return p
}

// Flush writes the profile document if anything changed since the last
// flush.
func (s *FileStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}

	raw := make(map[string]*Profile, len(s.profiles))
	for id, p := range s.profiles {
		raw[strconv.FormatInt(id, 10)] = p
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding profile data: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing profile data: %w", err)
	}

	s.dirty = false
	return nil
}

func (s *FileStore) Close() error {
	return s.Flush(context.Background())
}
