package store

import (
	"context"
	"sort"
	"sync"

	"tradegate/internal/lead"
	id "tradegate/pkg/domain"
)

// InMemoryStore holds leads in memory. Used by unit tests and local runs
// without Postgres.
type InMemoryStore struct {
	mu    sync.RWMutex
	leads map[id.LeadID]*lead.Lead
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{leads: make(map[id.LeadID]*lead.Lead)}
}

func (s *InMemoryStore) Create(_ context.Context, l *lead.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *l
	s.leads[l.ID] = &cp
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, leadID id.LeadID) (*lead.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, ok := s.leads[leadID]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, nil
}

func (s *InMemoryStore) ListForSeller(_ context.Context, sellerID id.SellerID, filter lead.ListFilter) ([]*lead.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*lead.Lead
	for _, l := range s.leads {
		if l.SellerID != sellerID {
			continue
		}
		if filter.Status != nil && l.Status != *filter.Status {
			continue
		}
		if filter.CategoryID != nil && l.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.UnreadOnly && l.IsRead {
			continue
		}
		if filter.CreatedAfter != nil && l.CreatedAt.Before(*filter.CreatedAfter) {
			continue
		}
		cp := *l
		matches = append(matches, &cp)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matches) {
			return nil, nil
		}
		matches = matches[filter.Offset:]
	}
	if filter.Limit > 0 && len(matches) > filter.Limit {
		matches = matches[:filter.Limit]
	}
	return matches, nil
}

func (s *InMemoryStore) SetRead(_ context.Context, leadID id.LeadID, isRead bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.leads[leadID]; ok {
		l.IsRead = isRead
	}
	return nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, leadID id.LeadID, status lead.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.leads[leadID]; ok {
		l.Status = status
	}
	return nil
}
