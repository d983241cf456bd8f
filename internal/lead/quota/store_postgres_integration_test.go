//go:build integration

package quota_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"tradegate/internal/lead/quota"
	id "tradegate/pkg/domain"
	"tradegate/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *quota.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = quota.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "lead_quota_usage")
	s.Require().NoError(err)
}

// TestConcurrentReserve verifies that concurrent reserves never hand out more
// slots than the limit: the conditional upsert serializes on the row lock.
func (s *PostgresStoreSuite) TestConcurrentReserve() {
	ctx := context.Background()
	buyerID := id.NewBuyerID()
	limit := 3
	const goroutines = 50

	var wg sync.WaitGroup
	var allowed, denied atomic.Int32
	var mu sync.Mutex
	var errs []error

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			result, err := s.store.Reserve(ctx, buyerID, limit, 0)
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return
			}
			if result.Allowed {
				allowed.Add(1)
			} else {
				denied.Add(1)
			}
		}()
	}

	wg.Wait()

	s.Require().Empty(errs)
	s.Equal(int32(limit), allowed.Load(), "exactly %d reserves should be allowed", limit)
	s.Equal(int32(goroutines-limit), denied.Load())

	used, err := s.store.Usage(ctx, buyerID, 0)
	s.Require().NoError(err)
	s.Equal(limit, used)
}

// TestReleaseRollsBack verifies a released slot becomes reservable again.
func (s *PostgresStoreSuite) TestReleaseRollsBack() {
	ctx := context.Background()
	buyerID := id.NewBuyerID()
	limit := 3

	for i := 0; i < limit; i++ {
		result, err := s.store.Reserve(ctx, buyerID, limit, 0)
		s.Require().NoError(err)
		s.Require().True(result.Allowed)
	}

	result, err := s.store.Reserve(ctx, buyerID, limit, 0)
	s.Require().NoError(err)
	s.Require().False(result.Allowed)

	s.Require().NoError(s.store.Release(ctx, buyerID, 0))

	result, err = s.store.Reserve(ctx, buyerID, limit, 0)
	s.Require().NoError(err)
	s.True(result.Allowed)

	used, err := s.store.Usage(ctx, buyerID, 0)
	s.Require().NoError(err)
	s.Equal(limit, used)
}

// TestBuyersAreIsolated verifies one buyer exhausting the cap does not touch
// another buyer's counter.
func (s *PostgresStoreSuite) TestBuyersAreIsolated() {
	ctx := context.Background()
	first := id.NewBuyerID()
	second := id.NewBuyerID()
	limit := 3

	for i := 0; i < limit; i++ {
		result, err := s.store.Reserve(ctx, first, limit, 0)
		s.Require().NoError(err)
		s.Require().True(result.Allowed)
	}

	result, err := s.store.Reserve(ctx, second, limit, 0)
	s.Require().NoError(err)
	s.True(result.Allowed)
	s.Equal(1, result.Used)
}
