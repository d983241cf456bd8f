package membership

import (
	"context"
	"sync"

	id "tradegate/pkg/domain"
)

// InMemoryStore maps sellers to plans in memory. Used by unit tests and local
// runs without Postgres.
type InMemoryStore struct {
	mu    sync.RWMutex
	plans map[id.SellerID]*Plan
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{plans: make(map[id.SellerID]*Plan)}
}

// Assign sets a seller's plan. Test helper; subscriptions are managed
// externally in production.
func (s *InMemoryStore) Assign(sellerID id.SellerID, plan *Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *plan
	s.plans[sellerID] = &cp
}

func (s *InMemoryStore) PlanForSeller(_ context.Context, sellerID id.SellerID) (*Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.plans[sellerID]; ok {
		cp := *p
		return &cp, nil
	}
	return FreePlan(), nil
}
