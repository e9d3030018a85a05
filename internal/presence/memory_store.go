package presence

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	conversationID string
	expiresAt      time.Time
}

// MemoryStore is a single-process Store used when Redis is not configured
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) SetActive(_ context.Context, userKey, conversationID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userKey] = memoryEntry{conversationID: conversationID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, userKey, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[userKey]
	if !ok {
		return nil
	}
	if conversationID == "" || e.conversationID == conversationID {
		delete(s.entries, userKey)
	}
	return nil
}

func (s *MemoryStore) Active(_ context.Context, userKey string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[userKey]
	if !ok {
		return "", nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, userKey)
		return "", nil
	}
	return e.conversationID, nil
}
