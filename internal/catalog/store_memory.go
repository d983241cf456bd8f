package catalog

import (
	"context"
	"sort"
	"sync"

	id "tradegate/pkg/domain"
)

// InMemoryStore holds products in memory. Used by unit tests and local runs
// without Postgres.
type InMemoryStore struct {
	mu       sync.RWMutex
	products map[id.ProductID]*Product
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{products: make(map[id.ProductID]*Product)}
}

// Seed adds a product. Test helper; the catalog is read-only in production.
func (s *InMemoryStore) Seed(products ...*Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range products {
		cp := *p
		s.products[p.ID] = &cp
	}
}

func (s *InMemoryStore) GetProduct(_ context.Context, productID id.ProductID) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.products[productID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (s *InMemoryStore) ActiveProductsInCategory(_ context.Context, categoryID id.CategoryID, limit int) ([]*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*Product
	for _, p := range s.products {
		if p.Active && p.CategoryID == categoryID {
			cp := *p
			matches = append(matches, &cp)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
