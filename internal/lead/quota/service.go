// Package quota is the ledger capping how many leads an unverified buyer may
// create. The check and the record are one atomic reserve so two concurrent
// requests can never both take the last slot.
package quota

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tradegate/internal/audit"
	id "tradegate/pkg/domain"
	dErrors "tradegate/pkg/domain-errors"
)

// Result reports the outcome of a reserve attempt.
type Result struct {
	Allowed   bool
	Used      int
	Limit     int
	Remaining int
}

// Store performs the serialized per-buyer counter operations.
type Store interface {
	// Reserve atomically consumes one slot when usage is below limit.
	// A zero window means the counter never resets (lifetime cap).
	Reserve(ctx context.Context, buyerID id.BuyerID, limit int, window time.Duration) (*Result, error)

	// Release returns one previously reserved slot, used to roll back when
	// lead persistence fails after a successful reserve.
	Release(ctx context.Context, buyerID id.BuyerID, window time.Duration) error

	// Usage returns the buyer's current slot consumption.
	Usage(ctx context.Context, buyerID id.BuyerID, window time.Duration) (int, error)
}

// Service is the quota ledger.
type Service struct {
	store     Store
	limit     int
	window    time.Duration
	logger    *slog.Logger
	publisher audit.Publisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

func New(store Store, limit int, window time.Duration, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("quota store is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("quota limit must be positive")
	}
	svc := &Service{
		store:  store,
		limit:  limit,
		window: window,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Limit returns the configured cap.
func (s *Service) Limit() int {
	return s.limit
}

// ReserveSlot consumes one lead slot for the buyer. When the cap is already
// reached the denial is recorded on the audit trail and reported through the
// result, not as an error; the caller owns the user-facing rejection.
func (s *Service) ReserveSlot(ctx context.Context, buyerID id.BuyerID) (*Result, error) {
	if buyerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "buyer_id is required")
	}

	result, err := s.store.Reserve(ctx, buyerID, s.limit, s.window)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reserve lead slot")
	}

	if !result.Allowed {
		audit.Log(ctx, s.logger, s.publisher, audit.Event{
			Actor:   buyerID.String(),
			Action:  audit.ActionLeadQuotaExceeded,
			Subject: buyerID.String(),
			Outcome: fmt.Sprintf("used %d of %d", result.Used, result.Limit),
		})
	}

	return result, nil
}

// ReleaseSlot rolls back a reservation after a failed lead persist.
func (s *Service) ReleaseSlot(ctx context.Context, buyerID id.BuyerID) error {
	if err := s.store.Release(ctx, buyerID, s.window); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to release lead slot")
	}
	return nil
}

// Usage returns the buyer's current consumption for operator endpoints.
func (s *Service) Usage(ctx context.Context, buyerID id.BuyerID) (int, error) {
	used, err := s.store.Usage(ctx, buyerID, s.window)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read quota usage")
	}
	return used, nil
}
