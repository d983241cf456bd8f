// Package membership exposes read-only access to seller subscription plans.
// Plan changes happen in the billing side of the marketplace; the engine only
// reads the current plan to gate contact reveal and quoting.
package membership

import id "tradegate/pkg/domain"

// Plan is a seller membership tier with its feature flags.
type Plan struct {
	ID                id.PlanID
	Name              string
	MonthlyPriceCents int
	// LeadsPerMonth caps how many leads the seller can receive; 0 = unlimited.
	LeadsPerMonth     int
	VerificationBadge bool
	// ContactReveal grants full buyer contact details on leads and RFQs.
	ContactReveal bool
	// QuoteAccess grants the ability to submit quotes on RFQs.
	QuoteAccess bool
}

// FreePlanName is the default tier for sellers without a subscription.
const FreePlanName = "Free"

// UpgradePlanName is the tier named in upgrade calls-to-action when a feature
// is gated.
const UpgradePlanName = "Gold Supplier"

// FreePlan returns the zero-entitlement default plan.
func FreePlan() *Plan {
	return &Plan{
		Name:          FreePlanName,
		LeadsPerMonth: 10,
	}
}
