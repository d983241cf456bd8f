// Package rfq defines the requirement and RFQ domain model. A requirement is
// a buyer's multi-category sourcing request; fanout turns it into one RFQ per
// category that has an eligible anchor product.
package rfq

import (
	"fmt"
	"strings"
	"time"

	id "tradegate/pkg/domain"
	dErrors "tradegate/pkg/domain-errors"
)

// Status is the RFQ lifecycle state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusQuoted   Status = "quoted"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPending, StatusQuoted, StatusAccepted, StatusRejected, StatusExpired:
		return Status(raw), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("invalid rfq status: %q", raw))
	}
}

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected || s == StatusExpired
}

// Requirement is a buyer's sourcing request before fanout.
type Requirement struct {
	ID          id.RequirementID `json:"id"`
	BuyerID     id.BuyerID       `json:"buyer_id"`
	ProductName string           `json:"product_name"`
	Quantity    int              `json:"quantity"`
	TradeTerms  string           `json:"trade_terms"`
	TargetPrice float64          `json:"target_price"`
	Currency    string           `json:"currency"`
	MaxBudget   float64          `json:"max_budget"`
	Details     string           `json:"details"`
	Categories  []id.CategoryID  `json:"categories"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ComposeMessage flattens the requirement into the RFQ message body. Fields
// appear in a fixed order and empty ones are dropped, so two requirements
// with the same populated fields always render identically.
func (r Requirement) ComposeMessage() string {
	var lines []string
	if r.Details != "" {
		lines = append(lines, r.Details)
	}
	if r.ProductName != "" {
		lines = append(lines, "Product: "+r.ProductName)
	}
	if r.TradeTerms != "" {
		lines = append(lines, "Trade terms: "+r.TradeTerms)
	}
	if r.TargetPrice > 0 {
		lines = append(lines, fmt.Sprintf("Target price: %.2f %s", r.TargetPrice, r.Currency))
	}
	if r.MaxBudget > 0 {
		lines = append(lines, fmt.Sprintf("Max budget: %.2f %s", r.MaxBudget, r.Currency))
	}
	return strings.Join(lines, "\n")
}

// Quote is a seller's answer to a pending RFQ.
type Quote struct {
	Price         float64   `json:"price"`
	Currency      string    `json:"currency"`
	Quantity      int       `json:"quantity"`
	DeliveryTerms string    `json:"delivery_terms"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// RFQ is the per-anchor artifact produced by fanout. Seller and category are
// denormalized from the anchor product at creation time.
type RFQ struct {
	ID            id.RFQID           `json:"id"`
	RequirementID id.RequirementID   `json:"requirement_id"`
	BuyerID       id.BuyerID         `json:"buyer_id"`
	ProductID     id.ProductID       `json:"product_id"`
	SellerID      id.SellerID        `json:"seller_id"`
	CategoryID    id.CategoryID      `json:"category_id"`
	Quantity      int                `json:"quantity"`
	TargetPrice   float64            `json:"target_price"`
	Currency      string             `json:"currency"`
	Message       string             `json:"message"`
	Contact       id.ContactSnapshot `json:"contact"`
	Status        Status             `json:"status"`
	Quote         *Quote             `json:"quote,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// EffectiveStatus derives the read-time status: a pending RFQ older than the
// pending TTL reads as expired without ever being rewritten.
func (r *RFQ) EffectiveStatus(now time.Time, pendingTTL time.Duration) Status {
	if r.Status == StatusPending && now.Sub(r.CreatedAt) > pendingTTL {
		return StatusExpired
	}
	return r.Status
}

// SkipReason explains why a category produced no RFQ during fanout.
type SkipReason string

const (
	SkipNoEligibleAnchor SkipReason = "no_eligible_anchor"
	SkipResolveFailed    SkipReason = "resolve_failed"
)

// SkippedCategory reports one category dropped from a fanout.
type SkippedCategory struct {
	CategoryID id.CategoryID `json:"category_id"`
	Reason     SkipReason    `json:"reason"`
}

// FanoutResult is the outcome of submitting a requirement. Created may be
// empty; callers must treat that as a distinct non-success outcome.
type FanoutResult struct {
	Requirement *Requirement      `json:"requirement"`
	Created     []*RFQ            `json:"created"`
	Skipped     []SkippedCategory `json:"skipped"`
}

// ListFilter narrows seller RFQ listings.
type ListFilter struct {
	Status *Status
	Limit  int
	Offset int
}
