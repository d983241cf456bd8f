package handler

import (
	"time"

	"tradegate/internal/entitlement"
	"tradegate/internal/rfq"
)

// QuoteResponse is the rendering of a seller quote.
type QuoteResponse struct {
	Price         float64   `json:"price"`
	Currency      string    `json:"currency"`
	Quantity      int       `json:"quantity"`
	DeliveryTerms string    `json:"delivery_terms"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// RFQResponse is the rendering of one RFQ. Contact carries the
// plan-dependent view for sellers and the full view for the owning buyer.
type RFQResponse struct {
	ID            string                  `json:"id"`
	RequirementID string                  `json:"requirement_id"`
	ProductID     string                  `json:"product_id"`
	CategoryID    string                  `json:"category_id"`
	Quantity      int                     `json:"quantity"`
	TargetPrice   float64                 `json:"target_price"`
	Currency      string                  `json:"currency"`
	Message       string                  `json:"message"`
	Contact       entitlement.ContactView `json:"contact"`
	Status        string                  `json:"status"`
	Quote         *QuoteResponse          `json:"quote,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
}

// FromRFQ converts a stored RFQ plus its rendered contact view.
func FromRFQ(r *rfq.RFQ, contact entitlement.ContactView) *RFQResponse {
	resp := &RFQResponse{
		ID:            r.ID.String(),
		RequirementID: r.RequirementID.String(),
		ProductID:     r.ProductID.String(),
		CategoryID:    r.CategoryID.String(),
		Quantity:      r.Quantity,
		TargetPrice:   r.TargetPrice,
		Currency:      r.Currency,
		Message:       r.Message,
		Contact:       contact,
		Status:        string(r.Status),
		CreatedAt:     r.CreatedAt,
	}
	if r.Quote != nil {
		resp.Quote = &QuoteResponse{
			Price:         r.Quote.Price,
			Currency:      r.Quote.Currency,
			Quantity:      r.Quote.Quantity,
			DeliveryTerms: r.Quote.DeliveryTerms,
			SubmittedAt:   r.Quote.SubmittedAt,
		}
	}
	return resp
}

// SkippedCategoryResponse reports one category dropped from a fanout.
type SkippedCategoryResponse struct {
	CategoryID string `json:"category_id"`
	Reason     string `json:"reason"`
}

// FanoutResponse is the HTTP response for POST /requirements. Created may be
// zero; Outcome distinguishes that from a normal fanout.
type FanoutResponse struct {
	RequirementID string                    `json:"requirement_id"`
	Outcome       string                    `json:"outcome"`
	Created       int                       `json:"created"`
	RFQs          []*RFQBriefResponse       `json:"rfqs"`
	Skipped       []SkippedCategoryResponse `json:"skipped"`
}

// RFQBriefResponse is the buyer-facing summary of one created RFQ.
type RFQBriefResponse struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	CategoryID string `json:"category_id"`
	Status     string `json:"status"`
}

const (
	outcomeFanout = "fanout"
	outcomeNoRFQs = "no_rfqs_created"
)

// FromFanoutResult converts the service result to the HTTP response.
func FromFanoutResult(result *rfq.FanoutResult) *FanoutResponse {
	resp := &FanoutResponse{
		RequirementID: result.Requirement.ID.String(),
		Outcome:       outcomeFanout,
		Created:       len(result.Created),
		RFQs:          make([]*RFQBriefResponse, 0, len(result.Created)),
		Skipped:       make([]SkippedCategoryResponse, 0, len(result.Skipped)),
	}
	if len(result.Created) == 0 {
		resp.Outcome = outcomeNoRFQs
	}
	for _, r := range result.Created {
		resp.RFQs = append(resp.RFQs, &RFQBriefResponse{
			ID:         r.ID.String(),
			ProductID:  r.ProductID.String(),
			CategoryID: r.CategoryID.String(),
			Status:     string(r.Status),
		})
	}
	for _, skipped := range result.Skipped {
		resp.Skipped = append(resp.Skipped, SkippedCategoryResponse{
			CategoryID: skipped.CategoryID.String(),
			Reason:     string(skipped.Reason),
		})
	}
	return resp
}

// ListRFQsResponse is the HTTP response for GET /rfqs.
type ListRFQsResponse struct {
	RFQs  []*RFQResponse `json:"rfqs"`
	Count int            `json:"count"`
}
