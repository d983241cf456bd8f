package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"tradegate/internal/entitlement"
	"tradegate/internal/lead"
	"tradegate/internal/lead/service"
	"tradegate/internal/membership"
	id "tradegate/pkg/domain"
	dErrors "tradegate/pkg/domain-errors"
	"tradegate/pkg/platform/httputil"
	"tradegate/pkg/requestcontext"
)

// Service defines the interface for lead lifecycle operations.
type Service interface {
	CreateLead(ctx context.Context, buyerID id.BuyerID, productID id.ProductID, details service.CreateDetails) (*lead.Lead, error)
	ListForSeller(ctx context.Context, sellerID id.SellerID, filter lead.ListFilter, includeExpired bool) ([]*lead.Lead, error)
	MarkAsRead(ctx context.Context, sellerID id.SellerID, leadID id.LeadID) (*lead.Lead, error)
	UpdateStatus(ctx context.Context, sellerID id.SellerID, leadID id.LeadID, status lead.Status) (*lead.Lead, error)
	TTL() time.Duration
}

// Handler wires lead endpoints to the lead service and the entitlement gate.
type Handler struct {
	service Service
	plans   membership.Store
	gate    *entitlement.Gate
	logger  *slog.Logger
}

// New constructs a lead handler with its dependencies.
func New(service Service, plans membership.Store, gate *entitlement.Gate, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		plans:   plans,
		gate:    gate,
		logger:  logger,
	}
}

// Register mounts lead endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/leads", h.HandleCreateLead)
	r.Get("/leads", h.HandleListLeads)
	r.Post("/leads/{leadID}/read", h.HandleMarkRead)
	r.Patch("/leads/{leadID}/status", h.HandleUpdateStatus)
}

// HandleCreateLead handles POST /leads requests.
func (h *Handler) HandleCreateLead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	buyerID := requestcontext.BuyerID(ctx)
	if buyerID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "buyer authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateLeadRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	created, err := h.service.CreateLead(ctx, buyerID, req.ParsedProductID(), service.CreateDetails{
		Message:  req.Message,
		Quantity: req.Quantity,
	})
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeQuotaExceeded) {
			h.logger.ErrorContext(ctx, "lead creation failed",
				"request_id", requestID,
				"buyer_id", buyerID,
				"product_id", req.ProductID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "lead created",
		"request_id", requestID,
		"buyer_id", buyerID,
		"lead_id", created.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromCreatedLead(created))
}

// HandleListLeads handles GET /leads requests for the authenticated seller.
func (h *Handler) HandleListLeads(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	sellerID := requestcontext.SellerID(ctx)
	if sellerID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "seller authentication required"))
		return
	}

	filter, includeExpired, err := parseListQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	leads, err := h.service.ListForSeller(ctx, sellerID, filter, includeExpired)
	if err != nil {
		h.logger.ErrorContext(ctx, "lead listing failed",
			"request_id", requestID,
			"seller_id", sellerID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	// Resolve the plan once for the whole page.
	plan, err := h.plans.PlanForSeller(ctx, sellerID)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve membership plan"))
		return
	}

	now := requestcontext.Now(ctx)
	ttl := h.service.TTL()
	resp := &ListLeadsResponse{Leads: make([]*LeadResponse, 0, len(leads))}
	for _, l := range leads {
		view := h.gate.Render(ctx, sellerID, plan, l.Contact)
		resp.Leads = append(resp.Leads, FromLead(l, view, now, ttl))
	}
	resp.Count = len(resp.Leads)

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleMarkRead handles POST /leads/{leadID}/read requests.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	h.handleSellerMutation(w, r, func(ctx context.Context, sellerID id.SellerID, leadID id.LeadID) (*lead.Lead, error) {
		return h.service.MarkAsRead(ctx, sellerID, leadID)
	})
}

// HandleUpdateStatus handles PATCH /leads/{leadID}/status requests.
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[UpdateStatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	h.handleSellerMutation(w, r, func(ctx context.Context, sellerID id.SellerID, leadID id.LeadID) (*lead.Lead, error) {
		return h.service.UpdateStatus(ctx, sellerID, leadID, req.ParsedStatus())
	})
}

func (h *Handler) handleSellerMutation(w http.ResponseWriter, r *http.Request, mutate func(context.Context, id.SellerID, id.LeadID) (*lead.Lead, error)) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	sellerID := requestcontext.SellerID(ctx)
	if sellerID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "seller authentication required"))
		return
	}

	leadID, err := id.ParseLeadID(chi.URLParam(r, "leadID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	updated, err := mutate(ctx, sellerID, leadID)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "lead mutation failed",
				"request_id", requestID,
				"seller_id", sellerID,
				"lead_id", leadID,
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
	httputil.WriteJSON(w, http.StatusOK, FromLead(updated, view, requestcontext.Now(ctx), h.service.TTL()))
}

func parseListQuery(r *http.Request) (lead.ListFilter, bool, error) {
	var filter lead.ListFilter

	q := r.URL.Query()
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, err := lead.ParseStatus(raw)
		if err != nil {
			return filter, false, err
		}
		filter.Status = &status
	}
	if raw := strings.TrimSpace(q.Get("category_id")); raw != "" {
		categoryID, err := id.ParseCategoryID(raw)
		if err != nil {
			return filter, false, err
		}
		filter.CategoryID = &categoryID
	}
	filter.UnreadOnly = q.Get("unread_only") == "true"

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return filter, false, dErrors.New(dErrors.CodeInvalidInput, "limit must be a non-negative integer")
		}
		filter.Limit = limit
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return filter, false, dErrors.New(dErrors.CodeInvalidInput, "offset must be a non-negative integer")
		}
		filter.Offset = offset
	}

	return filter, q.Get("include_expired") == "true", nil
}
