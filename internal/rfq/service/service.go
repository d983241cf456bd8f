// Package service implements requirement fanout and the RFQ state machine.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"tradegate/internal/audit"
	"tradegate/internal/buyer"
	"tradegate/internal/catalog"
	"tradegate/internal/entitlement"
	"tradegate/internal/rfq"
	"tradegate/internal/rfq/metrics"
	rfqstore "tradegate/internal/rfq/store"
	id "tradegate/pkg/domain"
	dErrors "tradegate/pkg/domain-errors"
	"tradegate/pkg/email"
	"tradegate/pkg/requestcontext"
)

// maxParallelResolves bounds concurrent anchor lookups during fanout.
const maxParallelResolves = 8

// RequirementInput is the buyer's sourcing request before fanout.
type RequirementInput struct {
	ProductName string
	Quantity    int
	TradeTerms  string
	TargetPrice float64
	Currency    string
	MaxBudget   float64
	Details     string
	Categories  []id.CategoryID
}

// QuoteInput is a seller's answer to a pending RFQ.
type QuoteInput struct {
	Price         float64
	Currency      string
	Quantity      int
	DeliveryTerms string
}

// Service runs requirement fanout and guards RFQ transitions.
type Service struct {
	store       rfqstore.Store
	buyers      buyer.Store
	catalog     catalog.Store
	gate        *entitlement.Gate
	anchorLimit int
	pendingTTL  time.Duration
	logger      *slog.Logger
	metrics     *metrics.Metrics
	publisher   audit.Publisher
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

func New(store rfqstore.Store, buyers buyer.Store, products catalog.Store, gate *entitlement.Gate, anchorLimit int, pendingTTL time.Duration, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("rfq store is required")
	}
	if buyers == nil {
		return nil, fmt.Errorf("buyer store is required")
	}
	if products == nil {
		return nil, fmt.Errorf("catalog store is required")
	}
	if gate == nil {
		return nil, fmt.Errorf("entitlement gate is required")
	}
	if anchorLimit <= 0 {
		anchorLimit = 1
	}
	if pendingTTL <= 0 {
		return nil, fmt.Errorf("rfq pending ttl must be positive")
	}
	svc := &Service{
		store:       store,
		buyers:      buyers,
		catalog:     products,
		gate:        gate,
		anchorLimit: anchorLimit,
		pendingTTL:  pendingTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// PendingTTL returns how long an RFQ stays pending before reading as expired.
func (s *Service) PendingTTL() time.Duration {
	return s.pendingTTL
}

// SubmitRequirement fans a requirement out into one RFQ per category that has
// an eligible anchor product. Categories resolve in parallel; a failure in
// one category skips that category and never aborts the others. Zero created
// RFQs is a valid result the caller must surface as a non-success outcome.
func (s *Service) SubmitRequirement(ctx context.Context, buyerID id.BuyerID, input RequirementInput) (*rfq.FanoutResult, error) {
	account, err := s.buyers.Get(ctx, buyerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load buyer account")
	}
	if account == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "buyer account not found")
	}
	if len(input.Categories) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "at least one category is required")
	}

	start := time.Now()
	now := requestcontext.Now(ctx)

	requirement := &rfq.Requirement{
		ID:          id.NewRequirementID(),
		BuyerID:     buyerID,
		ProductName: input.ProductName,
		Quantity:    input.Quantity,
		TradeTerms:  input.TradeTerms,
		TargetPrice: input.TargetPrice,
		Currency:    input.Currency,
		MaxBudget:   input.MaxBudget,
		Details:     input.Details,
		Categories:  dedupeCategories(input.Categories),
		CreatedAt:   now,
	}
	if err := s.store.CreateRequirement(ctx, requirement); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist requirement")
	}

	contact := account.ContactSnapshot()
	if contact.Name == "" {
		contact.Name = email.DeriveDisplayName(account.Email)
	}
	message := requirement.ComposeMessage()

	// One slot per category, filled by index so no extra locking is needed.
	type outcome struct {
		anchor *catalog.Product
		skip   rfq.SkipReason
	}
	outcomes := make([]outcome, len(requirement.Categories))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelResolves)
	for i, categoryID := range requirement.Categories {
		g.Go(func() error {
			products, err := s.catalog.ActiveProductsInCategory(gctx, categoryID, s.anchorLimit)
			if err != nil {
				if s.logger != nil {
					s.logger.WarnContext(gctx, "anchor resolve failed",
						"category_id", categoryID,
						"error", err,
					)
				}
				outcomes[i] = outcome{skip: rfq.SkipResolveFailed}
				return nil
			}
			if len(products) == 0 {
				outcomes[i] = outcome{skip: rfq.SkipNoEligibleAnchor}
				return nil
			}
			outcomes[i] = outcome{anchor: products[0]}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "fanout aborted")
	}

	result := &rfq.FanoutResult{Requirement: requirement, Created: []*rfq.RFQ{}}
	for i, categoryID := range requirement.Categories {
		o := outcomes[i]
		if o.anchor == nil {
			result.Skipped = append(result.Skipped, rfq.SkippedCategory{CategoryID: categoryID, Reason: o.skip})
			if s.metrics != nil {
				s.metrics.IncrementSkipped(string(o.skip))
			}
			continue
		}

		r := &rfq.RFQ{
			ID:            id.NewRFQID(),
			RequirementID: requirement.ID,
			BuyerID:       buyerID,
			ProductID:     o.anchor.ID,
			SellerID:      o.anchor.SellerID,
			CategoryID:    categoryID,
			Quantity:      requirement.Quantity,
			TargetPrice:   requirement.TargetPrice,
			Currency:      requirement.Currency,
			Message:       message,
			Contact:       contact,
			Status:        rfq.StatusPending,
			CreatedAt:     now,
		}
		if err := s.store.CreateRFQ(ctx, r); err != nil {
			if s.logger != nil {
				s.logger.ErrorContext(ctx, "failed to persist rfq",
					"category_id", categoryID,
					"error", err,
				)
			}
			result.Skipped = append(result.Skipped, rfq.SkippedCategory{CategoryID: categoryID, Reason: rfq.SkipResolveFailed})
			if s.metrics != nil {
				s.metrics.IncrementSkipped(string(rfq.SkipResolveFailed))
			}
			continue
		}
		result.Created = append(result.Created, r)
	}

	if s.metrics != nil {
		s.metrics.ObserveFanout(len(result.Created), time.Since(start).Seconds())
	}
	audit.Log(ctx, s.logger, s.publisher, audit.Event{
		Actor:   buyerID.String(),
		Action:  audit.ActionRequirementFanout,
		Subject: requirement.ID.String(),
		Outcome: fmt.Sprintf("created=%d skipped=%d", len(result.Created), len(result.Skipped)),
	})

	return result, nil
}

// SubmitQuote attaches a seller quote to a pending RFQ. The seller must own
// the RFQ and hold a plan with quote access.
func (s *Service) SubmitQuote(ctx context.Context, sellerID id.SellerID, rfqID id.RFQID, input QuoteInput) (*rfq.RFQ, error) {
	if input.Price <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "quote price must be positive")
	}
	if input.Quantity <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "quote quantity must be positive")
	}

	if err := s.gate.RequireQuoteAccess(ctx, sellerID); err != nil {
		return nil, err
	}

	r, err := s.ownedRFQ(ctx, sellerID, rfqID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	if r.EffectiveStatus(now, s.pendingTTL) != rfq.StatusPending {
		return nil, dErrors.New(dErrors.CodeConflict,
			fmt.Sprintf("rfq is %s; only pending rfqs accept quotes", r.EffectiveStatus(now, s.pendingTTL)))
	}

	quote := &rfq.Quote{
		Price:         input.Price,
		Currency:      input.Currency,
		Quantity:      input.Quantity,
		DeliveryTerms: input.DeliveryTerms,
		SubmittedAt:   now,
	}
	if err := s.store.SetQuote(ctx, rfqID, quote, rfq.StatusQuoted); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist quote")
	}
	r.Quote = quote
	r.Status = rfq.StatusQuoted

	if s.metrics != nil {
		s.metrics.IncrementQuotesSubmitted()
	}
	audit.Log(ctx, s.logger, s.publisher, audit.Event{
		Actor:   sellerID.String(),
		Action:  audit.ActionQuoteSubmitted,
		Subject: rfqID.String(),
		Outcome: "success",
	})

	return r, nil
}

// RespondToQuote records the buyer's accept or reject decision on a quoted RFQ.
func (s *Service) RespondToQuote(ctx context.Context, buyerID id.BuyerID, rfqID id.RFQID, accept bool) (*rfq.RFQ, error) {
	r, err := s.store.GetRFQ(ctx, rfqID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load rfq")
	}
	if r == nil || r.BuyerID != buyerID {
		return nil, dErrors.New(dErrors.CodeNotFound, "rfq not found")
	}
	if r.Status != rfq.StatusQuoted {
		return nil, dErrors.New(dErrors.CodeConflict,
			fmt.Sprintf("rfq is %s; only quoted rfqs can be accepted or rejected", r.Status))
	}

	status := rfq.StatusRejected
	if accept {
		status = rfq.StatusAccepted
	}
	if err := s.store.SetStatus(ctx, rfqID, status); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update rfq status")
	}
	r.Status = status
	return r, nil
}

// ListForSeller returns the seller's RFQs with read-time expiry applied.
func (s *Service) ListForSeller(ctx context.Context, sellerID id.SellerID, filter rfq.ListFilter) ([]*rfq.RFQ, error) {
	if sellerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "seller_id is required")
	}
	rfqs, err := s.store.ListForSeller(ctx, sellerID, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list rfqs")
	}
	s.applyExpiry(ctx, rfqs)
	return rfqs, nil
}

// ListForBuyer returns the buyer's RFQs with read-time expiry applied.
func (s *Service) ListForBuyer(ctx context.Context, buyerID id.BuyerID, filter rfq.ListFilter) ([]*rfq.RFQ, error) {
	if buyerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "buyer_id is required")
	}
	rfqs, err := s.store.ListForBuyer(ctx, buyerID, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list rfqs")
	}
	s.applyExpiry(ctx, rfqs)
	return rfqs, nil
}

func (s *Service) applyExpiry(ctx context.Context, rfqs []*rfq.RFQ) {
	now := requestcontext.Now(ctx)
	for _, r := range rfqs {
		r.Status = r.EffectiveStatus(now, s.pendingTTL)
	}
}

func (s *Service) ownedRFQ(ctx context.Context, sellerID id.SellerID, rfqID id.RFQID) (*rfq.RFQ, error) {
	r, err := s.store.GetRFQ(ctx, rfqID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load rfq")
	}
	if r == nil || r.SellerID != sellerID {
		return nil, dErrors.New(dErrors.CodeNotFound, "rfq not found")
	}
	return r, nil
}

func dedupeCategories(categories []id.CategoryID) []id.CategoryID {
	seen := make(map[id.CategoryID]struct{}, len(categories))
	out := make([]id.CategoryID, 0, len(categories))
	for _, c := range categories {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
