package buyer

import (
	"context"
	"sync"
	"time"

	id "tradegate/pkg/domain"
)

// InMemoryStore holds accounts in memory. Used by unit tests and local runs
// without Postgres.
type InMemoryStore struct {
	mu       sync.RWMutex
	accounts map[id.BuyerID]*Account
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{accounts: make(map[id.BuyerID]*Account)}
}

// Seed adds accounts. Test helper; registration is external in production.
func (s *InMemoryStore) Seed(accounts ...*Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range accounts {
		cp := *a
		s.accounts[a.ID] = &cp
	}
}

func (s *InMemoryStore) Get(_ context.Context, buyerID id.BuyerID) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.accounts[buyerID]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (s *InMemoryStore) MarkVerified(_ context.Context, buyerID id.BuyerID, verifiedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[buyerID]
	if !ok {
		return nil
	}
	if a.State == id.VerificationVerified {
		return nil
	}
	a.State = id.VerificationVerified
	t := verifiedAt
	a.VerifiedAt = &t
	return nil
}
