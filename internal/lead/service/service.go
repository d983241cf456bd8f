// Package service is the lead lifecycle manager: it accepts or rejects new
// inquiries, freezes the buyer contact snapshot, derives expiry at read time,
// and guards seller-side mutations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tradegate/internal/audit"
	"tradegate/internal/buyer"
	"tradegate/internal/catalog"
	"tradegate/internal/lead"
	"tradegate/internal/lead/metrics"
	"tradegate/internal/lead/quota"
	leadstore "tradegate/internal/lead/store"
	id "tradegate/pkg/domain"
	dErrors "tradegate/pkg/domain-errors"
	"tradegate/pkg/email"
	"tradegate/pkg/requestcontext"
)

// CreateDetails is the buyer's inquiry payload.
type CreateDetails struct {
	Message  string
	Quantity int
}

// Service manages the lead lifecycle.
type Service struct {
	leads     leadstore.Store
	buyers    buyer.Store
	catalog   catalog.Store
	quota     *quota.Service
	ttl       time.Duration
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

func New(leads leadstore.Store, buyers buyer.Store, products catalog.Store, quotaLedger *quota.Service, ttl time.Duration, opts ...Option) (*Service, error) {
	if leads == nil {
		return nil, fmt.Errorf("lead store is required")
	}
	if buyers == nil {
		return nil, fmt.Errorf("buyer store is required")
	}
	if products == nil {
		return nil, fmt.Errorf("catalog store is required")
	}
	if quotaLedger == nil {
		return nil, fmt.Errorf("quota ledger is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("lead ttl must be positive")
	}
	svc := &Service{
		leads:   leads,
		buyers:  buyers,
		catalog: products,
		quota:   quotaLedger,
		ttl:     ttl,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// TTL returns the configured visible lifetime of a lead.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// CreateLead accepts a buyer inquiry against one product. Unverified buyers
// consume a quota slot first; the reserve is atomic, so a concurrent burst
// against the last slot yields exactly one accepted lead. The contact
// snapshot is frozen from the account as it stands right now.
func (s *Service) CreateLead(ctx context.Context, buyerID id.BuyerID, productID id.ProductID, details CreateDetails) (*lead.Lead, error) {
	account, err := s.buyers.Get(ctx, buyerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load buyer account")
	}
	if account == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "buyer account not found")
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load product")
	}
	if product == nil || !product.Active {
		return nil, dErrors.New(dErrors.CodeNotFound, "product not found or inactive")
	}

	if details.Quantity < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "quantity cannot be negative")
	}

	reserved := false
	if !account.IsVerified() {
		result, err := s.quota.ReserveSlot(ctx, buyerID)
		if err != nil {
			return nil, err
		}
		if !result.Allowed {
			if s.metrics != nil {
				s.metrics.IncrementQuotaRejections()
			}
			return nil, dErrors.New(dErrors.CodeQuotaExceeded,
				fmt.Sprintf("unverified buyers are limited to %d inquiries; verify your company to continue", result.Limit))
		}
		reserved = true
	}

	contact := account.ContactSnapshot()
	if contact.Name == "" {
		contact.Name = email.DeriveDisplayName(account.Email)
	}

	l := &lead.Lead{
		ID:         id.NewLeadID(),
		BuyerID:    buyerID,
		ProductID:  product.ID,
		SellerID:   product.SellerID,
		CategoryID: product.CategoryID,
		Message:    details.Message,
		Quantity:   details.Quantity,
		Contact:    contact,
		Status:     lead.StatusOpen,
		CreatedAt:  requestcontext.Now(ctx),
	}

	if err := s.leads.Create(ctx, l); err != nil {
		if reserved {
			if rerr := s.quota.ReleaseSlot(ctx, buyerID); rerr != nil && s.logger != nil {
				s.logger.ErrorContext(ctx, "failed to roll back quota slot",
					"buyer_id", buyerID,
					"error", rerr,
				)
			}
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist lead")
	}

	if s.metrics != nil {
		s.metrics.IncrementLeadsCreated()
	}
	audit.Log(ctx, s.logger, s.publisher, audit.Event{
		Actor:   buyerID.String(),
		Action:  audit.ActionLeadCreated,
		Subject: l.ID.String(),
		Outcome: "success",
	})

	return l, nil
}

// ListForSeller returns the seller's leads. Expired leads are excluded by
// default; they remain stored and can be requested with includeExpired.
func (s *Service) ListForSeller(ctx context.Context, sellerID id.SellerID, filter lead.ListFilter, includeExpired bool) ([]*lead.Lead, error) {
	if sellerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "seller_id is required")
	}
	if !includeExpired {
		cutoff := requestcontext.Now(ctx).Add(-s.ttl)
		filter.CreatedAfter = &cutoff
	}
	leads, err := s.leads.ListForSeller(ctx, sellerID, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list leads")
	}
	return leads, nil
}

// MarkAsRead flips the read flag. Only the owning seller may do it.
func (s *Service) MarkAsRead(ctx context.Context, sellerID id.SellerID, leadID id.LeadID) (*lead.Lead, error) {
	l, err := s.ownedLead(ctx, sellerID, leadID)
	if err != nil {
		return nil, err
	}
	if !l.IsRead {
		if err := s.leads.SetRead(ctx, leadID, true); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark lead read")
		}
		l.IsRead = true
	}
	return l, nil
}

// UpdateStatus sets the lead status. Only the owning seller may do it.
func (s *Service) UpdateStatus(ctx context.Context, sellerID id.SellerID, leadID id.LeadID, status lead.Status) (*lead.Lead, error) {
	l, err := s.ownedLead(ctx, sellerID, leadID)
	if err != nil {
		return nil, err
	}
	if l.Status != status {
		if err := s.leads.UpdateStatus(ctx, leadID, status); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update lead status")
		}
		l.Status = status
	}
	return l, nil
}

// ownedLead loads a lead and enforces seller ownership. A foreign lead reads
// as not-found so the endpoint does not leak lead existence across sellers.
func (s *Service) ownedLead(ctx context.Context, sellerID id.SellerID, leadID id.LeadID) (*lead.Lead, error) {
	l, err := s.leads.Get(ctx, leadID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load lead")
	}
	if l == nil || l.SellerID != sellerID {
		return nil, dErrors.New(dErrors.CodeNotFound, "lead not found")
	}
	return l, nil
}
