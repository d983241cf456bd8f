// Package domain provides typed identifiers and value objects shared across
// services. IDs are distinct types over uuid.UUID so a BuyerID can never be
// passed where a SellerID is expected; parse at trust boundaries via the
// Parse* constructors, which reject empty, malformed, and nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "tradegate/pkg/domain-errors"
)

type (
	// BuyerID identifies a buyer account.
	BuyerID uuid.UUID
	// SellerID identifies a seller account.
	SellerID uuid.UUID
	// ProductID identifies a product listing.
	ProductID uuid.UUID
	// CategoryID identifies a product category.
	CategoryID uuid.UUID
	// LeadID identifies a single buyer inquiry.
	LeadID uuid.UUID
	// RequirementID identifies a buyer sourcing requirement.
	RequirementID uuid.UUID
	// RFQID identifies a per-seller request for quote.
	RFQID uuid.UUID
	// PlanID identifies a membership plan.
	PlanID uuid.UUID
)

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return u, nil
}

// ParseBuyerID validates and returns a BuyerID from external input.
func ParseBuyerID(s string) (BuyerID, error) {
	u, err := parseUUID(s, "buyer_id")
	return BuyerID(u), err
}

// ParseSellerID validates and returns a SellerID from external input.
func ParseSellerID(s string) (SellerID, error) {
	u, err := parseUUID(s, "seller_id")
	return SellerID(u), err
}

// ParseProductID validates and returns a ProductID from external input.
func ParseProductID(s string) (ProductID, error) {
	u, err := parseUUID(s, "product_id")
	return ProductID(u), err
}

// ParseCategoryID validates and returns a CategoryID from external input.
func ParseCategoryID(s string) (CategoryID, error) {
	u, err := parseUUID(s, "category_id")
	return CategoryID(u), err
}

// ParseLeadID validates and returns a LeadID from external input.
func ParseLeadID(s string) (LeadID, error) {
	u, err := parseUUID(s, "lead_id")
	return LeadID(u), err
}

// ParseRequirementID validates and returns a RequirementID from external input.
func ParseRequirementID(s string) (RequirementID, error) {
	u, err := parseUUID(s, "requirement_id")
	return RequirementID(u), err
}

// ParseRFQID validates and returns an RFQID from external input.
func ParseRFQID(s string) (RFQID, error) {
	u, err := parseUUID(s, "rfq_id")
	return RFQID(u), err
}

// ParsePlanID validates and returns a PlanID from external input.
func ParsePlanID(s string) (PlanID, error) {
	u, err := parseUUID(s, "plan_id")
	return PlanID(u), err
}

// NewBuyerID returns a fresh random BuyerID.
func NewBuyerID() BuyerID { return BuyerID(uuid.New()) }

// NewSellerID returns a fresh random SellerID.
func NewSellerID() SellerID { return SellerID(uuid.New()) }

// NewProductID returns a fresh random ProductID.
func NewProductID() ProductID { return ProductID(uuid.New()) }

// NewCategoryID returns a fresh random CategoryID.
func NewCategoryID() CategoryID { return CategoryID(uuid.New()) }

// NewLeadID returns a fresh random LeadID.
func NewLeadID() LeadID { return LeadID(uuid.New()) }

// NewRequirementID returns a fresh random RequirementID.
func NewRequirementID() RequirementID { return RequirementID(uuid.New()) }

// NewRFQID returns a fresh random RFQID.
func NewRFQID() RFQID { return RFQID(uuid.New()) }

// NewPlanID returns a fresh random PlanID.
func NewPlanID() PlanID { return PlanID(uuid.New()) }

func (id BuyerID) String() string       { return uuid.UUID(id).String() }
func (id SellerID) String() string      { return uuid.UUID(id).String() }
func (id ProductID) String() string     { return uuid.UUID(id).String() }
func (id CategoryID) String() string    { return uuid.UUID(id).String() }
func (id LeadID) String() string        { return uuid.UUID(id).String() }
func (id RequirementID) String() string { return uuid.UUID(id).String() }
func (id RFQID) String() string         { return uuid.UUID(id).String() }
func (id PlanID) String() string        { return uuid.UUID(id).String() }

func (id BuyerID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id SellerID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ProductID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id CategoryID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id LeadID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id RequirementID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id RFQID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id PlanID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
