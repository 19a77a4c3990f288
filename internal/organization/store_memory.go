package organization

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"docproof/pkg/platform/sentinel"
)

// InMemoryStore keeps organizations in a map keyed by normalized wallet.
// All mutations happen under one lock, which gives the same atomicity
// guarantees the Postgres store gets from single-statement updates.
type InMemoryStore struct {
	mu   sync.RWMutex
	orgs map[string]*Organization
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{orgs: make(map[string]*Organization)}
}

func (s *InMemoryStore) Create(_ context.Context, org *Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := NormalizeWallet(org.WalletAddress)
	if _, exists := s.orgs[key]; exists {
		return sentinel.ErrConflict
	}
	clone := *org
	clone.WalletAddress = key
	s.orgs[key] = &clone
	return nil
}

func (s *InMemoryStore) FindByWallet(_ context.Context, wallet string) (*Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	org, ok := s.orgs[NormalizeWallet(wallet)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneOrg(org), nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, org := range s.orgs {
		if org.ID == id {
			return cloneOrg(org), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) RotateNonce(_ context.Context, wallet, oldNonce, newNonce string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	org, ok := s.orgs[NormalizeWallet(wallet)]
	if !ok {
		return sentinel.ErrNotFound
	}
	if org.Nonce != oldNonce {
		return sentinel.ErrStaleNonce
	}
	org.Nonce = newNonce
	org.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *InMemoryStore) ReplaceKYC(_ context.Context, wallet string, kyc KYCDetails) (*Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	org, ok := s.orgs[NormalizeWallet(wallet)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	replacement := kyc
	org.KYC = &replacement
	org.UpdatedAt = time.Now().UTC()
	return cloneOrg(org), nil
}

func (s *InMemoryStore) SetStatus(_ context.Context, wallet string, status KYCStatus) (*Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	org, ok := s.orgs[NormalizeWallet(wallet)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if org.KYC == nil {
		return nil, sentinel.ErrNotFound
	}
	org.KYC.Status = status
	org.UpdatedAt = time.Now().UTC()
	return cloneOrg(org), nil
}

func (s *InMemoryStore) ListByStatus(_ context.Context, status KYCStatus) ([]*Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Organization, 0)
	for _, org := range s.orgs {
		if org.KYC != nil && org.KYC.Status == status {
			out = append(out, cloneOrg(org))
		}
	}
	return out, nil
}

func (s *InMemoryStore) CountByStatus(_ context.Context, status KYCStatus) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, org := range s.orgs {
		if org.KYC != nil && org.KYC.Status == status {
			n++
		}
	}
	return n, nil
}

func cloneOrg(org *Organization) *Organization {
	clone := *org
	if org.KYC != nil {
		kyc := *org.KYC
		clone.KYC = &kyc
	}
	return &clone
}
