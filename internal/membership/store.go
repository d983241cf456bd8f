package membership

import (
	"context"

	id "tradegate/pkg/domain"
)

// Store resolves the current plan of a seller.
type Store interface {
	// PlanForSeller returns the seller's active plan. Sellers without a
	// subscription get the free plan, never an error.
	PlanForSeller(ctx context.Context, sellerID id.SellerID) (*Plan, error)
}
