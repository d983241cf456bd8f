// Package verification decides whether a buyer account becomes verified.
// The rule: the buyer's email domain must match the claimed company domain,
// and the domain must have been registered long enough ago per the RDAP
// registry. Denial is a result, not an error, so callers always get a reason
// they can show the buyer.
package verification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tradegate/internal/audit"
	"tradegate/internal/buyer"
	"tradegate/internal/verification/metrics"
	"tradegate/internal/verification/rdap"
	id "tradegate/pkg/domain"
	dErrors "tradegate/pkg/domain-errors"
	"tradegate/pkg/requestcontext"
)

// Reason explains a verification outcome to the buyer.
type Reason string

const (
	// ReasonVerified: all checks passed; the account is now verified.
	ReasonVerified Reason = "verified"
	// ReasonAlreadyVerified: idempotent re-evaluation of a verified account.
	ReasonAlreadyVerified Reason = "already_verified"
	// ReasonDomainMismatch: the email domain does not belong to the claimed
	// company domain.
	ReasonDomainMismatch Reason = "domain_mismatch"
	// ReasonDomainTooNew: the registry knows the domain but it is younger
	// than the minimum age.
	ReasonDomainTooNew Reason = "domain_too_new"
	// ReasonDomainAgeUnknown: the registry produced no usable registration
	// event; treated conservatively as not-old-enough.
	ReasonDomainAgeUnknown Reason = "domain_age_unknown"
	// ReasonRegistryUnavailable: the lookup itself failed. Not a denial of
	// the claim; the buyer can retry later.
	ReasonRegistryUnavailable Reason = "registry_unavailable"
)

// Decision is the outcome of evaluating a buyer's verification claim.
type Decision struct {
	Verified bool
	Reason   Reason
	// Retryable is set when the outcome reflects registry availability
	// rather than the claim itself.
	Retryable bool
	// DomainAgeYears carries the age estimate when the registry knew the
	// domain, for operator visibility.
	DomainAgeYears float64
}

// Service is the verification evaluator.
type Service struct {
	buyers    buyer.Store
	oracle    rdap.Oracle
	minAge    time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
	publisher audit.Publisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

func New(buyers buyer.Store, oracle rdap.Oracle, minAge time.Duration, opts ...Option) (*Service, error) {
	if buyers == nil {
		return nil, fmt.Errorf("buyer store is required")
	}
	if oracle == nil {
		return nil, fmt.Errorf("domain age oracle is required")
	}
	svc := &Service{
		buyers: buyers,
		oracle: oracle,
		minAge: minAge,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Evaluate runs the verification rule for a buyer. claimedDomain overrides
// the domain stored on the account when non-empty (the buyer may correct a
// typo without a profile round-trip). Already-verified accounts short-circuit
// with no state change and no registry traffic.
func (s *Service) Evaluate(ctx context.Context, buyerID id.BuyerID, claimedDomain string) (*Decision, error) {
	account, err := s.buyers.Get(ctx, buyerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load buyer account")
	}
	if account == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "buyer account not found")
	}

	if account.IsVerified() {
		return s.conclude(ctx, account, &Decision{Verified: true, Reason: ReasonAlreadyVerified}), nil
	}

	claimed := id.NormalizeDomain(claimedDomain)
	if claimed == "" {
		claimed = id.NormalizeDomain(account.ClaimedDomain)
	}
	if claimed == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "claimed company domain is required")
	}

	emailDomain := id.EmailDomain(account.Email)
	if !domainMatches(emailDomain, claimed) {
		return s.conclude(ctx, account, &Decision{Reason: ReasonDomainMismatch}), nil
	}

	start := time.Now()
	result, err := s.oracle.DomainAge(ctx, claimed)
	if s.metrics != nil {
		s.metrics.ObserveLookup(time.Since(start), err != nil)
	}
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "domain age lookup failed",
				"buyer_id", buyerID,
				"domain", claimed,
				"error", err,
			)
		}
		return s.conclude(ctx, account, &Decision{Reason: ReasonRegistryUnavailable, Retryable: true}), nil
	}

	if !result.Known {
		return s.conclude(ctx, account, &Decision{Reason: ReasonDomainAgeUnknown}), nil
	}
	if result.Age <= s.minAge {
		return s.conclude(ctx, account, &Decision{
			Reason:         ReasonDomainTooNew,
			DomainAgeYears: result.AgeYears(),
		}), nil
	}

	now := requestcontext.Now(ctx)
	if err := s.buyers.MarkVerified(ctx, buyerID, now); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist verification")
	}

	return s.conclude(ctx, account, &Decision{
		Verified:       true,
		Reason:         ReasonVerified,
		DomainAgeYears: result.AgeYears(),
	}), nil
}

// conclude records metrics and the audit trail for an evaluation outcome.
func (s *Service) conclude(ctx context.Context, account *buyer.Account, d *Decision) *Decision {
	if s.metrics != nil {
		s.metrics.ObserveEvaluation(string(d.Reason))
	}

	// Re-evaluating a verified account is a read; only real outcomes are
	// audit-worthy.
	if d.Reason == ReasonAlreadyVerified {
		return d
	}

	action := audit.ActionVerificationDenied
	if d.Verified {
		action = audit.ActionBuyerVerified
	}
	audit.Log(ctx, s.logger, s.publisher, audit.Event{
		Actor:   account.ID.String(),
		Action:  action,
		Subject: account.ID.String(),
		Outcome: string(d.Reason),
	})
	return d
}

// domainMatches implements the case-insensitive exact-or-subdomain suffix
// rule: mail.acme.com satisfies a claim of acme.com, notacme.com does not.
func domainMatches(emailDomain, claimed string) bool {
	if emailDomain == "" || claimed == "" {
		return false
	}
	if emailDomain == claimed {
		return true
	}
	return len(emailDomain) > len(claimed) && emailDomain[len(emailDomain)-len(claimed)-1] == '.' &&
		emailDomain[len(emailDomain)-len(claimed):] == claimed
}
