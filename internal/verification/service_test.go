package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"tradegate/internal/audit"
	"tradegate/internal/buyer"
	"tradegate/internal/verification/rdap"
	id "tradegate/pkg/domain"
	"tradegate/pkg/requestcontext"
)

// fakeOracle returns canned domain ages keyed by domain.
type fakeOracle struct {
	results map[string]rdap.Result
	err     error
	calls   int
}

func (f *fakeOracle) DomainAge(_ context.Context, domain string) (rdap.Result, error) {
	f.calls++
	if f.err != nil {
		return rdap.Result{}, f.err
	}
	return f.results[domain], nil
}

func agedResult(age time.Duration) rdap.Result {
	return rdap.Result{Known: true, RegisteredAt: time.Now().Add(-age), Age: age}
}

// =============================================================================
// Verification Service Test Suite
// =============================================================================

type VerificationServiceSuite struct {
	suite.Suite
	buyers *buyer.InMemoryStore
	oracle *fakeOracle
	minAge time.Duration
}

func TestVerificationServiceSuite(t *testing.T) {
	suite.Run(t, new(VerificationServiceSuite))
}

func (s *VerificationServiceSuite) SetupTest() {
	s.buyers = buyer.NewInMemoryStore()
	s.oracle = &fakeOracle{results: map[string]rdap.Result{}}
	s.minAge = 4383 * time.Hour
}

func (s *VerificationServiceSuite) newService(opts ...Option) *Service {
	svc, err := New(s.buyers, s.oracle, s.minAge, opts...)
	s.Require().NoError(err)
	return svc
}

func (s *VerificationServiceSuite) seedBuyer(email, claimedDomain string) *buyer.Account {
	account := &buyer.Account{
		ID:            id.NewBuyerID(),
		Email:         email,
		Name:          "Test Buyer",
		ClaimedDomain: claimedDomain,
		State:         id.VerificationUnverified,
		CreatedAt:     time.Now(),
	}
	s.buyers.Seed(account)
	return account
}

func (s *VerificationServiceSuite) TestNew() {
	s.Run("nil buyer store returns error", func() {
		_, err := New(nil, s.oracle, s.minAge)
		s.Error(err)
	})

	s.Run("nil oracle returns error", func() {
		_, err := New(s.buyers, nil, s.minAge)
		s.Error(err)
	})
}

// =============================================================================
// Evaluate Tests
// =============================================================================

func (s *VerificationServiceSuite) TestEvaluateVerifies() {
	ctx := context.Background()
	svc := s.newService()

	s.Run("matching domain older than minimum verifies the account", func() {
		account := s.seedBuyer("jane@acme.com", "acme.com")
		s.oracle.results["acme.com"] = agedResult(5 * 365 * 24 * time.Hour)

		decision, err := svc.Evaluate(ctx, account.ID, "")
		s.Require().NoError(err)
		s.True(decision.Verified)
		s.Equal(ReasonVerified, decision.Reason)
		s.Greater(decision.DomainAgeYears, 0.5)

		stored, err := s.buyers.Get(ctx, account.ID)
		s.Require().NoError(err)
		s.True(stored.IsVerified())
		s.NotNil(stored.VerifiedAt)
	})

	s.Run("email subdomain satisfies the claimed domain", func() {
		account := s.seedBuyer("ops@mail.acme.com", "acme.com")
		s.oracle.results["acme.com"] = agedResult(2 * 365 * 24 * time.Hour)

		decision, err := svc.Evaluate(ctx, account.ID, "")
		s.Require().NoError(err)
		s.True(decision.Verified)
	})

	s.Run("domain comparison is case-insensitive", func() {
		account := s.seedBuyer("jane@ACME.com", "Acme.COM")
		s.oracle.results["acme.com"] = agedResult(2 * 365 * 24 * time.Hour)

		decision, err := svc.Evaluate(ctx, account.ID, "")
		s.Require().NoError(err)
		s.True(decision.Verified)
	})
}

func (s *VerificationServiceSuite) TestEvaluateDenies() {
	ctx := context.Background()
	svc := s.newService()

	s.Run("mismatched email domain denies without a registry call", func() {
		account := s.seedBuyer("jane@gmail.com", "acme.com")
		before := s.oracle.calls

		decision, err := svc.Evaluate(ctx, account.ID, "")
		s.Require().NoError(err)
		s.False(decision.Verified)
		s.Equal(ReasonDomainMismatch, decision.Reason)
		s.False(decision.Retryable)
		s.Equal(before, s.oracle.calls)
	})

	s.Run("lookalike suffix does not match", func() {
		account := s.seedBuyer("jane@notacme.com", "acme.com")

		decision, err := svc.Evaluate(ctx, account.ID, "")
		s.Require().NoError(err)
		s.Equal(ReasonDomainMismatch, decision.Reason)
	})

	s.Run("young domain denies with domain_too_new", func() {
		account := s.seedBuyer("jane@fresh.io", "fresh.io")
		s.oracle.results["fresh.io"] = agedResult(30 * 24 * time.Hour)

		decision, err := svc.Evaluate(ctx, account.ID, "")
		s.Require().NoError(err)
		s.False(decision.Verified)
		s.Equal(ReasonDomainTooNew, decision.Reason)

		stored, err := s.buyers.Get(ctx, account.ID)
		s.Require().NoError(err)
		s.False(stored.IsVerified())
	})

	s.Run("unknown registration date denies conservatively", func() {
		account := s.seedBuyer("jane@ghost.example", "ghost.example")
		s.oracle.results["ghost.example"] = rdap.Result{Known: false}

		decision, err := svc.Evaluate(ctx, account.ID, "")
		s.Require().NoError(err)
		s.False(decision.Verified)
		s.Equal(ReasonDomainAgeUnknown, decision.Reason)
		s.False(decision.Retryable)
	})
}

func (s *VerificationServiceSuite) TestEvaluateRegistryFailure() {
	ctx := context.Background()

	s.Run("registry outage is retryable and never verifies", func() {
		svc := s.newService()
		s.oracle.err = errors.New("rdap: connection refused")
		account := s.seedBuyer("jane@acme.com", "acme.com")

		decision, err := svc.Evaluate(ctx, account.ID, "")
		s.Require().NoError(err)
		s.False(decision.Verified)
		s.Equal(ReasonRegistryUnavailable, decision.Reason)
		s.True(decision.Retryable)

		stored, err := s.buyers.Get(ctx, account.ID)
		s.Require().NoError(err)
		s.False(stored.IsVerified())
	})
}

func (s *VerificationServiceSuite) TestEvaluateIdempotent() {
	svc := s.newService()

	s.Run("re-evaluation keeps the original verifiedAt", func() {
		account := s.seedBuyer("jane@acme.com", "acme.com")
		s.oracle.results["acme.com"] = agedResult(3 * 365 * 24 * time.Hour)

		first := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
		ctx := requestcontext.WithTime(context.Background(), first)
		decision, err := svc.Evaluate(ctx, account.ID, "")
		s.Require().NoError(err)
		s.Require().True(decision.Verified)

		later := requestcontext.WithTime(context.Background(), first.Add(72*time.Hour))
		callsBefore := s.oracle.calls
		decision, err = svc.Evaluate(later, account.ID, "")
		s.Require().NoError(err)
		s.True(decision.Verified)
		s.Equal(ReasonAlreadyVerified, decision.Reason)
		s.Equal(callsBefore, s.oracle.calls)

		stored, err := s.buyers.Get(context.Background(), account.ID)
		s.Require().NoError(err)
		s.Require().NotNil(stored.VerifiedAt)
		s.Equal(first, stored.VerifiedAt.UTC())
	})
}

func (s *VerificationServiceSuite) TestEvaluateInputs() {
	ctx := context.Background()
	svc := s.newService()

	s.Run("unknown buyer returns not found", func() {
		_, err := svc.Evaluate(ctx, id.NewBuyerID(), "")
		s.Error(err)
		s.Contains(err.Error(), "not found")
	})

	s.Run("claimed domain override replaces the stored one", func() {
		account := s.seedBuyer("jane@acme.com", "wrong-typo.com")
		s.oracle.results["acme.com"] = agedResult(2 * 365 * 24 * time.Hour)

		decision, err := svc.Evaluate(ctx, account.ID, "acme.com")
		s.Require().NoError(err)
		s.True(decision.Verified)
	})

	s.Run("missing claimed domain returns invalid input", func() {
		account := s.seedBuyer("jane@acme.com", "")

		_, err := svc.Evaluate(ctx, account.ID, "")
		s.Error(err)
	})
}

func (s *VerificationServiceSuite) TestAuditTrail() {
	ctx := context.Background()
	publisher := audit.NewMemoryPublisher()
	svc := s.newService(WithAuditPublisher(publisher))

	account := s.seedBuyer("jane@acme.com", "acme.com")
	s.oracle.results["acme.com"] = agedResult(2 * 365 * 24 * time.Hour)

	_, err := svc.Evaluate(ctx, account.ID, "")
	s.Require().NoError(err)

	events := publisher.Events()
	s.Require().Len(events, 1)
	s.Equal(audit.ActionBuyerVerified, events[0].Action)

	// The idempotent re-read adds nothing.
	_, err = svc.Evaluate(ctx, account.ID, "")
	s.Require().NoError(err)
	s.Len(publisher.Events(), 1)
}
