package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"tradegate/internal/entitlement"
	"tradegate/internal/membership"
	"tradegate/internal/rfq"
	"tradegate/internal/rfq/service"
	id "tradegate/pkg/domain"
	dErrors "tradegate/pkg/domain-errors"
	"tradegate/pkg/platform/httputil"
	"tradegate/pkg/requestcontext"
)

// Service defines the interface for RFQ operations.
type Service interface {
	SubmitRequirement(ctx context.Context, buyerID id.BuyerID, input service.RequirementInput) (*rfq.FanoutResult, error)
	SubmitQuote(ctx context.Context, sellerID id.SellerID, rfqID id.RFQID, input service.QuoteInput) (*rfq.RFQ, error)
	RespondToQuote(ctx context.Context, buyerID id.BuyerID, rfqID id.RFQID, accept bool) (*rfq.RFQ, error)
	ListForSeller(ctx context.Context, sellerID id.SellerID, filter rfq.ListFilter) ([]*rfq.RFQ, error)
	ListForBuyer(ctx context.Context, buyerID id.BuyerID, filter rfq.ListFilter) ([]*rfq.RFQ, error)
}

// Handler wires RFQ endpoints to the RFQ service and the entitlement gate.
type Handler struct {
	service Service
	plans   membership.Store
	gate    *entitlement.Gate
	logger  *slog.Logger
}

// New constructs an RFQ handler with its dependencies.
func New(service Service, plans membership.Store, gate *entitlement.Gate, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		plans:   plans,
		gate:    gate,
		logger:  logger,
	}
}

// Register mounts RFQ endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/requirements", h.HandleSubmitRequirement)
	r.Get("/rfqs", h.HandleListRFQs)
	r.Post("/rfqs/{rfqID}/quote", h.HandleSubmitQuote)
	r.Post("/rfqs/{rfqID}/decision", h.HandleQuoteDecision)
}

// HandleSubmitRequirement handles POST /requirements requests. A fanout that
// creates zero RFQs still returns 200; the body carries the distinct outcome.
func (h *Handler) HandleSubmitRequirement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	buyerID := requestcontext.BuyerID(ctx)
	if buyerID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "buyer authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[SubmitRequirementRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.SubmitRequirement(ctx, buyerID, req.ToInput())
	if err != nil {
		h.logger.ErrorContext(ctx, "requirement fanout failed",
			"request_id", requestID,
			"buyer_id", buyerID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "requirement fanned out",
		"request_id", requestID,
		"buyer_id", buyerID,
		"requirement_id", result.Requirement.ID,
		"created", len(result.Created),
		"skipped", len(result.Skipped),
	)
	httputil.WriteJSON(w, http.StatusOK, FromFanoutResult(result))
}

// HandleListRFQs handles GET /rfqs. Sellers see their inbound RFQs with the
// contact gated by plan; buyers see their own outbound RFQs unredacted.
func (h *Handler) HandleListRFQs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	filter, err := parseListQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if sellerID := requestcontext.SellerID(ctx); !sellerID.IsNil() {
		rfqs, err := h.service.ListForSeller(ctx, sellerID, filter)
		if err != nil {
			h.logger.ErrorContext(ctx, "rfq listing failed",
				"request_id", requestID,
				"seller_id", sellerID,
				"error", err,
			)
			httputil.WriteError(w, err)
			return
		}

		plan, err := h.plans.PlanForSeller(ctx, sellerID)
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve membership plan"))
			return
		}

		resp := &ListRFQsResponse{RFQs: make([]*RFQResponse, 0, len(rfqs))}
		for _, item := range rfqs {
			view := h.gate.Render(ctx, sellerID, plan, item.Contact)
			resp.RFQs = append(resp.RFQs, FromRFQ(item, view))
		}
		resp.Count = len(resp.RFQs)
		httputil.WriteJSON(w, http.StatusOK, resp)
		return
	}

	buyerID := requestcontext.BuyerID(ctx)
	if buyerID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	rfqs, err := h.service.ListForBuyer(ctx, buyerID, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "rfq listing failed",
			"request_id", requestID,
			"buyer_id", buyerID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	resp := &ListRFQsResponse{RFQs: make([]*RFQResponse, 0, len(rfqs))}
	for _, item := range rfqs {
		view := entitlement.ContactView{
			Name:     item.Contact.Name,
			Email:    item.Contact.Email,
			Phone:    item.Contact.Phone,
			Company:  item.Contact.Company,
			Revealed: true,
		}
		resp.RFQs = append(resp.RFQs, FromRFQ(item, view))
	}
	resp.Count = len(resp.RFQs)
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleSubmitQuote handles POST /rfqs/{rfqID}/quote requests.
func (h *Handler) HandleSubmitQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	sellerID := requestcontext.SellerID(ctx)
	if sellerID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "seller authentication required"))
		return
	}

	rfqID, err := id.ParseRFQID(chi.URLParam(r, "rfqID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[SubmitQuoteRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	updated, err := h.service.SubmitQuote(ctx, sellerID, rfqID, req.ToInput())
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "quote submission failed",
				"request_id", requestID,
				"seller_id", sellerID,
				"rfq_id", rfqID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	plan, err := h.plans.PlanForSeller(ctx, sellerID)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve membership plan"))
		return
	}
	view := h.gate.Render(ctx, sellerID, plan, updated.Contact)
	httputil.WriteJSON(w, http.StatusOK, FromRFQ(updated, view))
}

// HandleQuoteDecision handles POST /rfqs/{rfqID}/decision requests from the buyer.
func (h *Handler) HandleQuoteDecision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	buyerID := requestcontext.BuyerID(ctx)
	if buyerID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "buyer authentication required"))
		return
	}

	rfqID, err := id.ParseRFQID(chi.URLParam(r, "rfqID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[QuoteDecisionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	updated, err := h.service.RespondToQuote(ctx, buyerID, rfqID, req.Accepted())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	// The buyer owns the contact snapshot, so it renders unredacted here.
	view := entitlement.ContactView{
		Name:     updated.Contact.Name,
		Email:    updated.Contact.Email,
		Phone:    updated.Contact.Phone,
		Company:  updated.Contact.Company,
		Revealed: true,
	}
	httputil.WriteJSON(w, http.StatusOK, FromRFQ(updated, view))
}

func parseListQuery(r *http.Request) (rfq.ListFilter, error) {
	var filter rfq.ListFilter

	q := r.URL.Query()
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, err := rfq.ParseStatus(raw)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return filter, dErrors.New(dErrors.CodeInvalidInput, "limit must be a non-negative integer")
		}
		filter.Limit = limit
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return filter, dErrors.New(dErrors.CodeInvalidInput, "offset must be a non-negative integer")
		}
		filter.Offset = offset
	}
	return filter, nil
}
