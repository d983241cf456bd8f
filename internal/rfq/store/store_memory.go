package store

import (
	"context"
	"sort"
	"sync"

	"tradegate/internal/rfq"
	id "tradegate/pkg/domain"
)

// InMemoryStore holds requirements and RFQs in memory. Used by unit tests and
// local runs without Postgres.
type InMemoryStore struct {
	mu           sync.RWMutex
	requirements map[id.RequirementID]*rfq.Requirement
	rfqs         map[id.RFQID]*rfq.RFQ
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		requirements: make(map[id.RequirementID]*rfq.Requirement),
		rfqs:         make(map[id.RFQID]*rfq.RFQ),
	}
}

func (s *InMemoryStore) CreateRequirement(_ context.Context, req *rfq.Requirement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *req
	cp.Categories = append([]id.CategoryID(nil), req.Categories...)
	s.requirements[req.ID] = &cp
	return nil
}

func (s *InMemoryStore) CreateRFQ(_ context.Context, r *rfq.RFQ) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rfqs[r.ID] = copyRFQ(r)
	return nil
}

func (s *InMemoryStore) GetRFQ(_ context.Context, rfqID id.RFQID) (*rfq.RFQ, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.rfqs[rfqID]; ok {
		return copyRFQ(r), nil
	}
	return nil, nil
}

func (s *InMemoryStore) ListForSeller(_ context.Context, sellerID id.SellerID, filter rfq.ListFilter) ([]*rfq.RFQ, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(filter, func(r *rfq.RFQ) bool { return r.SellerID == sellerID }), nil
}

func (s *InMemoryStore) ListForBuyer(_ context.Context, buyerID id.BuyerID, filter rfq.ListFilter) ([]*rfq.RFQ, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(filter, func(r *rfq.RFQ) bool { return r.BuyerID == buyerID }), nil
}

func (s *InMemoryStore) listLocked(filter rfq.ListFilter, match func(*rfq.RFQ) bool) []*rfq.RFQ {
	var matches []*rfq.RFQ
	for _, r := range s.rfqs {
		if !match(r) {
			continue
		}
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		matches = append(matches, copyRFQ(r))
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matches) {
			return nil
		}
		matches = matches[filter.Offset:]
	}
	if filter.Limit > 0 && len(matches) > filter.Limit {
		matches = matches[:filter.Limit]
	}
	return matches
}

func (s *InMemoryStore) SetQuote(_ context.Context, rfqID id.RFQID, quote *rfq.Quote, status rfq.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rfqs[rfqID]; ok {
		cp := *quote
		r.Quote = &cp
		r.Status = status
	}
	return nil
}

func (s *InMemoryStore) SetStatus(_ context.Context, rfqID id.RFQID, status rfq.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rfqs[rfqID]; ok {
		r.Status = status
	}
	return nil
}

func copyRFQ(r *rfq.RFQ) *rfq.RFQ {
	cp := *r
	if r.Quote != nil {
		q := *r.Quote
		cp.Quote = &q
	}
	return &cp
}
