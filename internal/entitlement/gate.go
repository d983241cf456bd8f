// Package entitlement gates buyer contact details behind the seller's
// membership plan. Redaction happens at read time only; stored lead records
// always keep the full snapshot.
package entitlement

import (
	"context"
	"fmt"
	"log/slog"

	"tradegate/internal/audit"
	"tradegate/internal/membership"
	id "tradegate/pkg/domain"
	dErrors "tradegate/pkg/domain-errors"
)

// ContactView is the plan-dependent rendering of a contact snapshot.
type ContactView struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
	Revealed bool   `json:"revealed"`

	// UpgradeMessage is set only on redacted views.
	UpgradeMessage string `json:"upgrade_message,omitempty"`
}

// Gate resolves a seller's plan and applies contact redaction.
type Gate struct {
	plans     membership.Store
	logger    *slog.Logger
	publisher audit.Publisher
}

type Option func(*Gate)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) { g.logger = logger }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(g *Gate) { g.publisher = publisher }
}

func New(plans membership.Store, opts ...Option) (*Gate, error) {
	if plans == nil {
		return nil, fmt.Errorf("membership store is required")
	}
	g := &Gate{plans: plans}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// RevealContact renders the snapshot for the given seller. Sellers whose plan
// carries contact reveal see the full snapshot; everyone else gets a masked
// view with an upgrade pointer.
func (g *Gate) RevealContact(ctx context.Context, sellerID id.SellerID, contact id.ContactSnapshot) (ContactView, error) {
	plan, err := g.plans.PlanForSeller(ctx, sellerID)
	if err != nil {
		return ContactView{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve membership plan")
	}
	return g.Render(ctx, sellerID, plan, contact), nil
}

// Render applies the plan to one snapshot. Split from RevealContact so list
// endpoints can resolve the plan once and render many leads.
func (g *Gate) Render(ctx context.Context, sellerID id.SellerID, plan *membership.Plan, contact id.ContactSnapshot) ContactView {
	if plan != nil && plan.ContactReveal {
		return ContactView{
			Name:     contact.Name,
			Email:    contact.Email,
			Phone:    contact.Phone,
			Company:  contact.Company,
			Revealed: true,
		}
	}

	audit.Log(ctx, g.logger, g.publisher, audit.Event{
		Actor:   sellerID.String(),
		Action:  audit.ActionContactRedacted,
		Outcome: "redacted",
	})

	return ContactView{
		Name:           maskName(contact.Name),
		Email:          maskEmail(contact.Email),
		Phone:          maskPhone(contact.Phone),
		Company:        contact.Company,
		Revealed:       false,
		UpgradeMessage: UpgradeMessage(),
	}
}

// RequireQuoteAccess rejects sellers whose plan does not include quoting.
func (g *Gate) RequireQuoteAccess(ctx context.Context, sellerID id.SellerID) error {
	plan, err := g.plans.PlanForSeller(ctx, sellerID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve membership plan")
	}
	if plan == nil || !plan.QuoteAccess {
		return dErrors.New(dErrors.CodeEntitlementRequired, UpgradeMessage())
	}
	return nil
}

// UpgradeMessage names the plan that unlocks gated features.
func UpgradeMessage() string {
	return fmt.Sprintf("upgrade to the %s plan to unlock full buyer contact details and quoting", membership.UpgradePlanName)
}

// maskName keeps the first letter so the seller can tell contacts apart.
func maskName(name string) string {
	if name == "" {
		return "***"
	}
	runes := []rune(name)
	return string(runes[0]) + "***"
}

func maskEmail(_ string) string {
	return "***@***.com"
}

func maskPhone(_ string) string {
	return "***-***-****"
}
