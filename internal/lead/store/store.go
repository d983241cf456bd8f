// Package store persists leads. Expiry is not stored: the service derives it
// from CreatedAt at read time and narrows listings with ListFilter.
package store

import (
	"context"

	"tradegate/internal/lead"
	id "tradegate/pkg/domain"
)

// Store is the lead persistence surface.
type Store interface {
	// Create persists a new lead.
	Create(ctx context.Context, l *lead.Lead) error

	// Get returns a lead by ID, or nil when it does not exist.
	Get(ctx context.Context, leadID id.LeadID) (*lead.Lead, error)

	// ListForSeller returns the seller's leads newest first, narrowed by the
	// filter.
	ListForSeller(ctx context.Context, sellerID id.SellerID, filter lead.ListFilter) ([]*lead.Lead, error)

	// SetRead updates the read flag.
	SetRead(ctx context.Context, leadID id.LeadID, isRead bool) error

	// UpdateStatus sets the lead status.
	UpdateStatus(ctx context.Context, leadID id.LeadID, status lead.Status) error
}
