package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is an in-process Store used by tests and local development.
type MemoryStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	data map[string]memoryEntry
	now  func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:  ttl,
		data: make(map[string]memoryEntry),
		now:  time.Now,
	}
}

// SetClock overrides the time source; tests use it to expire entries.
func (s *MemoryStore) SetClock(now func() time.Time) { s.now = now }

func (s *MemoryStore) Get(_ context.Context, sessionID, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.data[sessionID+":"+key]
	if !ok || s.now().After(entry.expiresAt) {
		delete(s.data, sessionID+":"+key)
		return "", ErrNotFound
	}
	return entry.value, nil
}

func (s *MemoryStore) Set(_ context.Context, sessionID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID+":"+key] = memoryEntry{value: value, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Pop(_ context.Context, sessionID, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.data[sessionID+":"+key]
	delete(s.data, sessionID+":"+key)
	if !ok || s.now().After(entry.expiresAt) {
		return "", ErrNotFound
	}
	return entry.value, nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID+":"+key)
	return nil
}
