package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"tradegate/internal/verification"
	id "tradegate/pkg/domain"
	dErrors "tradegate/pkg/domain-errors"
	"tradegate/pkg/platform/httputil"
	"tradegate/pkg/requestcontext"
)

// Service defines the interface for verification operations.
type Service interface {
	Evaluate(ctx context.Context, buyerID id.BuyerID, claimedDomain string) (*verification.Decision, error)
}

// Handler wires verification endpoints to the verification service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a verification handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts verification endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/verification/evaluate", h.HandleEvaluate)
}

// EvaluateRequest is the HTTP request body for POST /verification/evaluate.
type EvaluateRequest struct {
	ClaimedDomain string `json:"claimed_domain"`
}

// Validate validates the request. The claimed domain is optional; when empty
// the domain stored on the account is used.
func (r *EvaluateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.ClaimedDomain = strings.TrimSpace(r.ClaimedDomain)
	if len(r.ClaimedDomain) > 253 {
		return dErrors.New(dErrors.CodeInvalidInput, "claimed_domain is too long")
	}
	return nil
}

// EvaluateResponse is the HTTP response for POST /verification/evaluate.
type EvaluateResponse struct {
	Verified       bool    `json:"verified"`
	Reason         string  `json:"reason"`
	Retryable      bool    `json:"retryable"`
	DomainAgeYears float64 `json:"domain_age_years,omitempty"`
}

// HandleEvaluate handles POST /verification/evaluate requests.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	buyerID := requestcontext.BuyerID(ctx)
	if buyerID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "buyer authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	decision, err := h.service.Evaluate(ctx, buyerID, req.ClaimedDomain)
	if err != nil {
		h.logger.ErrorContext(ctx, "verification evaluation failed",
			"request_id", requestID,
			"buyer_id", buyerID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "verification evaluated",
		"request_id", requestID,
		"buyer_id", buyerID,
		"verified", decision.Verified,
		"reason", decision.Reason,
	)
	// A registry outage reads as 503 so clients know to retry; a denial of
	// the claim itself is a 200 with verified=false.
	status := http.StatusOK
	if decision.Retryable {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, &EvaluateResponse{
		Verified:       decision.Verified,
		Reason:         string(decision.Reason),
		Retryable:      decision.Retryable,
		DomainAgeYears: decision.DomainAgeYears,
	})
}
