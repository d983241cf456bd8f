// Package buyer holds the buyer account records the verification service
// reads and advances. Registration and deletion are external concerns; the
// engine only ever flips verification state.
package buyer

import (
	"time"

	id "tradegate/pkg/domain"
)

// Account is a buyer account as seen by the entitlement engine.
type Account struct {
	ID            id.BuyerID
	Email         string
	Name          string
	Phone         string
	Company       string
	ClaimedDomain string
	State         id.VerificationState
	VerifiedAt    *time.Time
	CreatedAt     time.Time
}

// ContactSnapshot captures the account's current contact block for embedding
// into a new lead or RFQ. Snapshots are immutable once stored.
func (a *Account) ContactSnapshot() id.ContactSnapshot {
	return id.ContactSnapshot{
		Name:    a.Name,
		Email:   a.Email,
		Phone:   a.Phone,
		Company: a.Company,
	}
}

// IsVerified reports whether the account passed domain verification.
func (a *Account) IsVerified() bool {
	return a.State == id.VerificationVerified
}
