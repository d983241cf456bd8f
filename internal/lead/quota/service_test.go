package quota

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"tradegate/internal/audit"
	id "tradegate/pkg/domain"
	"tradegate/pkg/requestcontext"
)

// =============================================================================
// Quota Service Test Suite
// =============================================================================
// Justification for unit tests: the reserve path is the only serialized hot
// path in the system; the concurrency guarantee cannot be exercised through
// E2E tests reliably.

type QuotaServiceSuite struct {
	suite.Suite
	store   *InMemoryStore
	service *Service
}

func TestQuotaServiceSuite(t *testing.T) {
	suite.Run(t, new(QuotaServiceSuite))
}

func (s *QuotaServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()

	var err error
	s.service, err = New(s.store, 3, 0)
	s.Require().NoError(err)
}

// =============================================================================
// Constructor Tests (Invariant Enforcement)
// =============================================================================

func (s *QuotaServiceSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil, 3, 0)
		s.Error(err)
		s.Contains(err.Error(), "quota store is required")
	})

	s.Run("non-positive limit returns error", func() {
		_, err := New(s.store, 0, 0)
		s.Error(err)
		s.Contains(err.Error(), "quota limit must be positive")
	})

	s.Run("valid arguments return configured service", func() {
		svc, err := New(s.store, 3, 0)
		s.NoError(err)
		s.NotNil(svc)
		s.Equal(3, svc.Limit())
	})
}

// =============================================================================
// ReserveSlot Tests
// =============================================================================

func (s *QuotaServiceSuite) TestReserveSlot() {
	ctx := context.Background()

	s.Run("nil buyer id returns bad request", func() {
		_, err := s.service.ReserveSlot(ctx, id.BuyerID{})
		s.Error(err)
		s.Contains(err.Error(), "buyer_id is required")
	})

	s.Run("allows up to the limit then denies", func() {
		buyerID := id.NewBuyerID()

		for i := 1; i <= 3; i++ {
			result, err := s.service.ReserveSlot(ctx, buyerID)
			s.Require().NoError(err)
			s.True(result.Allowed)
			s.Equal(i, result.Used)
		}

		result, err := s.service.ReserveSlot(ctx, buyerID)
		s.Require().NoError(err)
		s.False(result.Allowed)
		s.Equal(3, result.Used)
		s.Equal(0, result.Remaining)
	})

	s.Run("denial is reported through result, not error", func() {
		buyerID := id.NewBuyerID()
		for i := 0; i < 3; i++ {
			_, err := s.service.ReserveSlot(ctx, buyerID)
			s.Require().NoError(err)
		}

		result, err := s.service.ReserveSlot(ctx, buyerID)
		s.NoError(err)
		s.False(result.Allowed)
	})

	s.Run("denial lands on the audit trail", func() {
		publisher := audit.NewMemoryPublisher()
		svc, err := New(s.store, 1, 0, WithAuditPublisher(publisher))
		s.Require().NoError(err)

		buyerID := id.NewBuyerID()
		_, err = svc.ReserveSlot(ctx, buyerID)
		s.Require().NoError(err)
		_, err = svc.ReserveSlot(ctx, buyerID)
		s.Require().NoError(err)

		events := publisher.Events()
		s.Require().Len(events, 1)
		s.Equal(audit.ActionLeadQuotaExceeded, events[0].Action)
		s.Equal(buyerID.String(), events[0].Actor)
	})

	s.Run("buyers do not share counters", func() {
		first, second := id.NewBuyerID(), id.NewBuyerID()
		for i := 0; i < 3; i++ {
			result, err := s.service.ReserveSlot(ctx, first)
			s.Require().NoError(err)
			s.Require().True(result.Allowed)
		}

		result, err := s.service.ReserveSlot(ctx, second)
		s.NoError(err)
		s.True(result.Allowed)
	})
}

// TestReserveSlotConcurrent hammers the last remaining slot from many
// goroutines; exactly one may win it.
func (s *QuotaServiceSuite) TestReserveSlotConcurrent() {
	ctx := context.Background()
	buyerID := id.NewBuyerID()

	// Burn two of three slots first.
	for i := 0; i < 2; i++ {
		_, err := s.service.ReserveSlot(ctx, buyerID)
		s.Require().NoError(err)
	}

	const workers = 50
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
		errs    []error
	)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			result, err := s.service.ReserveSlot(ctx, buyerID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			if result.Allowed {
				allowed++
			}
		}()
	}
	wg.Wait()

	s.Empty(errs)
	s.Equal(1, allowed)

	usage, err := s.service.Usage(ctx, buyerID)
	s.NoError(err)
	s.Equal(3, usage)
}

// =============================================================================
// ReleaseSlot Tests
// =============================================================================

func (s *QuotaServiceSuite) TestReleaseSlot() {
	ctx := context.Background()

	s.Run("returns a consumed slot", func() {
		buyerID := id.NewBuyerID()
		for i := 0; i < 3; i++ {
			_, err := s.service.ReserveSlot(ctx, buyerID)
			s.Require().NoError(err)
		}

		s.Require().NoError(s.service.ReleaseSlot(ctx, buyerID))

		result, err := s.service.ReserveSlot(ctx, buyerID)
		s.NoError(err)
		s.True(result.Allowed)
	})

	s.Run("never goes below zero", func() {
		buyerID := id.NewBuyerID()
		s.Require().NoError(s.service.ReleaseSlot(ctx, buyerID))

		usage, err := s.service.Usage(ctx, buyerID)
		s.NoError(err)
		s.Equal(0, usage)
	})
}

// =============================================================================
// Windowed Counter Tests
// =============================================================================

func (s *QuotaServiceSuite) TestWindowedCounter() {
	s.Run("old reservations age out of the window", func() {
		svc, err := New(NewInMemoryStore(), 2, time.Minute)
		s.Require().NoError(err)

		start := time.Now()
		ctx := requestcontext.WithTime(context.Background(), start)

		buyerID := id.NewBuyerID()
		for i := 0; i < 2; i++ {
			result, err := svc.ReserveSlot(ctx, buyerID)
			s.Require().NoError(err)
			s.Require().True(result.Allowed)
		}

		result, err := svc.ReserveSlot(ctx, buyerID)
		s.Require().NoError(err)
		s.False(result.Allowed)

		later := requestcontext.WithTime(context.Background(), start.Add(2*time.Minute))
		result, err = svc.ReserveSlot(later, buyerID)
		s.NoError(err)
		s.True(result.Allowed)
	})
}
