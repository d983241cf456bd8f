package quota

import (
	"context"
	"sync"
	"time"

	id "tradegate/pkg/domain"
	"tradegate/pkg/requestcontext"
)

// InMemoryStore tracks per-buyer slot usage under one mutex, which gives the
// reserve its check-then-record atomicity in a single process.
type InMemoryStore struct {
	mu     sync.Mutex
	usage  map[id.BuyerID][]time.Time
	counts map[id.BuyerID]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		usage:  make(map[id.BuyerID][]time.Time),
		counts: make(map[id.BuyerID]int),
	}
}

func (s *InMemoryStore) Reserve(ctx context.Context, buyerID id.BuyerID, limit int, window time.Duration) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	used := s.usedLocked(ctx, buyerID, window)
	if used >= limit {
		return &Result{Allowed: false, Used: used, Limit: limit}, nil
	}

	if window > 0 {
		s.usage[buyerID] = append(s.usage[buyerID], requestcontext.Now(ctx))
	} else {
		s.counts[buyerID]++
	}
	used++
	return &Result{Allowed: true, Used: used, Limit: limit, Remaining: limit - used}, nil
}

func (s *InMemoryStore) Release(ctx context.Context, buyerID id.BuyerID, window time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if window > 0 {
		if times := s.usage[buyerID]; len(times) > 0 {
			s.usage[buyerID] = times[:len(times)-1]
		}
		return nil
	}
	if s.counts[buyerID] > 0 {
		s.counts[buyerID]--
	}
	return nil
}

func (s *InMemoryStore) Usage(ctx context.Context, buyerID id.BuyerID, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usedLocked(ctx, buyerID, window), nil
}

// usedLocked counts live slots, pruning entries that rolled out of the
// window. Lifetime mode (window == 0) is a plain counter.
func (s *InMemoryStore) usedLocked(ctx context.Context, buyerID id.BuyerID, window time.Duration) int {
	if window <= 0 {
		return s.counts[buyerID]
	}
	cutoff := requestcontext.Now(ctx).Add(-window)
	times := s.usage[buyerID]
	live := times[:0]
	for _, t := range times {
		if t.After(cutoff) {
			live = append(live, t)
		}
	}
	s.usage[buyerID] = live
	return len(live)
}
