package document

import (
	"context"
	"sync"

	"docproof/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*IssuedDocument // keyed by docHash
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{docs: make(map[string]*IssuedDocument)}
}

func (s *InMemoryStore) Create(_ context.Context, doc *IssuedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[doc.DocHash]; exists {
		return sentinel.ErrConflict
	}
	clone := *doc
	s.docs[doc.DocHash] = &clone
	return nil
}

func (s *InMemoryStore) FindByHash(_ context.Context, docHash string) (*IssuedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[docHash]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *doc
	return &clone, nil
}

func (s *InMemoryStore) CountValid(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, doc := range s.docs {
		if doc.Valid {
			n++
		}
	}
	return n, nil
}
