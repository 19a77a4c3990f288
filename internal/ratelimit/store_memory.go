package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	count     int64
	expiresAt time.Time
}

// InMemoryCounterStore is the single-process fallback when Redis is not
// configured. Expired entries are dropped lazily on access.
type InMemoryCounterStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

func NewInMemoryCounterStore() *InMemoryCounterStore {
	return &InMemoryCounterStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

// WithClock overrides the time source; test helper.
func (s *InMemoryCounterStore) WithClock(fn func() time.Time) *InMemoryCounterStore {
	s.now = fn
	return s
}

func (s *InMemoryCounterStore) Increment(_ context.Context, wallet string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[wallet]
	if !ok || s.now().After(entry.expiresAt) {
		entry = &memoryEntry{expiresAt: s.now().Add(window)}
		s.entries[wallet] = entry
	}
	entry.count++
	return entry.count, nil
}

func (s *InMemoryCounterStore) Count(_ context.Context, wallet string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[wallet]
	if !ok {
		return 0, nil
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, wallet)
		return 0, nil
	}
	return entry.count, nil
}

func (s *InMemoryCounterStore) Delete(_ context.Context, wallet string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, wallet)
	return nil
}
