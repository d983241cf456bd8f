package handler

import (
	"time"

	"tradegate/internal/entitlement"
	"tradegate/internal/lead"
)

// CreateLeadResponse is the HTTP response for POST /leads.
type CreateLeadResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// FromCreatedLead converts a stored lead to the buyer-facing response.
func FromCreatedLead(l *lead.Lead) *CreateLeadResponse {
	return &CreateLeadResponse{
		ID:        l.ID.String(),
		ProductID: l.ProductID.String(),
		Status:    string(l.Status),
		CreatedAt: l.CreatedAt,
	}
}

// LeadResponse is the seller-facing rendering of one lead. Contact carries
// the plan-dependent view, never the raw stored snapshot.
type LeadResponse struct {
	ID         string                  `json:"id"`
	ProductID  string                  `json:"product_id"`
	CategoryID string                  `json:"category_id"`
	Message    string                  `json:"message"`
	Quantity   int                     `json:"quantity"`
	Contact    entitlement.ContactView `json:"contact"`
	Status     string                  `json:"status"`
	IsRead     bool                    `json:"is_read"`
	Expired    bool                    `json:"expired"`
	CreatedAt  time.Time               `json:"created_at"`
}

// ListLeadsResponse is the HTTP response for GET /leads.
type ListLeadsResponse struct {
	Leads []*LeadResponse `json:"leads"`
	Count int             `json:"count"`
}

// FromLead converts a stored lead plus its rendered contact view.
func FromLead(l *lead.Lead, contact entitlement.ContactView, now time.Time, ttl time.Duration) *LeadResponse {
	return &LeadResponse{
		ID:         l.ID.String(),
		ProductID:  l.ProductID.String(),
		CategoryID: l.CategoryID.String(),
		Message:    l.Message,
		Quantity:   l.Quantity,
		Contact:    contact,
		Status:     string(l.Status),
		IsRead:     l.IsRead,
		Expired:    l.IsExpired(now, ttl),
		CreatedAt:  l.CreatedAt,
	}
}
