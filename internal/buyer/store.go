package buyer

import (
	"context"
	"time"

	id "tradegate/pkg/domain"
)

// Store persists buyer accounts. The engine reads accounts and performs one
// mutation: marking an account verified.
type Store interface {
	// Get returns the account, or nil when it does not exist.
	Get(ctx context.Context, buyerID id.BuyerID) (*Account, error)

	// MarkVerified transitions the account to verified at the given time.
	// Must be a no-op (preserving the original verifiedAt) when the account
	// is already verified.
	MarkVerified(ctx context.Context, buyerID id.BuyerID, verifiedAt time.Time) error
}
