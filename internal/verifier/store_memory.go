package verifier

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"docproof/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu        sync.RWMutex
	verifiers map[string]*Verifier // keyed by lowercase email
	events    []VerificationEvent
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{verifiers: make(map[string]*Verifier)}
}

func (s *InMemoryStore) Create(_ context.Context, v *Verifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(v.Email)
	if _, exists := s.verifiers[key]; exists {
		return sentinel.ErrConflict
	}
	clone := *v
	s.verifiers[key] = &clone
	return nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*Verifier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.verifiers[strings.ToLower(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *v
	return &clone, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*Verifier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.verifiers {
		if v.ID == id {
			clone := *v
			return &clone, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) AppendVerification(_ context.Context, event *VerificationEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *event)
	return nil
}

func (s *InMemoryStore) CountVerifications(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.events)), nil
}
