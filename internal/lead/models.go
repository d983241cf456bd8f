// Package lead defines the buyer-inquiry record and its lifecycle rules.
package lead

import (
	"time"

	id "tradegate/pkg/domain"
	dErrors "tradegate/pkg/domain-errors"
)

// Status is the explicit lifecycle state of a lead. Expiry is not a status:
// it is derived from CreatedAt at read time and a lead is never un-expired.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// ParseStatus constructs a Status from external input.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOpen, StatusClosed:
		return Status(s), nil
	case "":
		return "", dErrors.New(dErrors.CodeInvalidInput, "lead status cannot be empty")
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid lead status")
	}
}

// Lead is one buyer inquiry against one product. Seller and category are
// denormalized from the product at creation; the contact snapshot is frozen
// at creation and never rewritten by later profile edits.
type Lead struct {
	ID         id.LeadID          `json:"id"`
	BuyerID    id.BuyerID         `json:"buyer_id"`
	ProductID  id.ProductID       `json:"product_id"`
	SellerID   id.SellerID        `json:"seller_id"`
	CategoryID id.CategoryID      `json:"category_id"`
	Message    string             `json:"message"`
	Quantity   int                `json:"quantity"`
	Contact    id.ContactSnapshot `json:"contact"`
	Status     Status             `json:"status"`
	IsRead     bool               `json:"is_read"`
	CreatedAt  time.Time          `json:"created_at"`
}

// IsExpired reports whether the lead has passed its visible lifetime.
// Strictly greater-than: a lead is still visible exactly at the cutoff.
func (l *Lead) IsExpired(now time.Time, ttl time.Duration) bool {
	return now.Sub(l.CreatedAt) > ttl
}

// ListFilter narrows seller-facing lead listings.
type ListFilter struct {
	Status     *Status
	CategoryID *id.CategoryID
	UnreadOnly bool
	// CreatedAfter excludes leads created strictly before the cutoff, so a
	// lead exactly at the cutoff is still visible, matching IsExpired. The
	// service sets it from the expiry rule unless expired leads were asked
	// for explicitly.
	CreatedAfter *time.Time
	Limit        int
	Offset       int
}
