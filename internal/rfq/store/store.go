// Package store persists requirements and RFQs.
package store

import (
	"context"

	"tradegate/internal/rfq"
	id "tradegate/pkg/domain"
)

// Store is the persistence contract for the RFQ domain.
type Store interface {
	// CreateRequirement persists the requirement record.
	CreateRequirement(ctx context.Context, req *rfq.Requirement) error

	// CreateRFQ persists one fanout artifact.
	CreateRFQ(ctx context.Context, r *rfq.RFQ) error

	// GetRFQ returns nil without error when the RFQ does not exist.
	GetRFQ(ctx context.Context, rfqID id.RFQID) (*rfq.RFQ, error)

	// ListForSeller returns the seller's RFQs, newest first.
	ListForSeller(ctx context.Context, sellerID id.SellerID, filter rfq.ListFilter) ([]*rfq.RFQ, error)

	// ListForBuyer returns the buyer's RFQs, newest first.
	ListForBuyer(ctx context.Context, buyerID id.BuyerID, filter rfq.ListFilter) ([]*rfq.RFQ, error)

	// SetQuote attaches a quote and moves the RFQ to the given status.
	SetQuote(ctx context.Context, rfqID id.RFQID, quote *rfq.Quote, status rfq.Status) error

	// SetStatus updates the status only.
	SetStatus(ctx context.Context, rfqID id.RFQID, status rfq.Status) error
}
