// Package session binds a logged-in user to later requests through an
// opaque cookie token backed by a server-side session record.
package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSessionNotFound means the session id is unknown, expired or logged out.
var ErrSessionNotFound = errors.New("session not found")

// Store keeps session id -> user id records outside the relational store.
type Store interface {
	Save(ctx context.Context, id string, userID uint, ttl time.Duration) error
	Lookup(ctx context.Context, id string) (uint, error)
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	userID  uint
	expires time.Time
}

// MemoryStore is a process-local Store. Sessions do not survive a restart
// and are not shared between instances; use RedisStore for that.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, id string, userID uint, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = memoryEntry{userID: userID, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Lookup(_ context.Context, id string) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok {
		return 0, ErrSessionNotFound
	}
	if !s.now().Before(entry.expires) {
		delete(s.sessions, id)
		return 0, ErrSessionNotFound
	}
	return entry.userID, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
