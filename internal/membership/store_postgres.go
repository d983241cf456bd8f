package membership

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "tradegate/pkg/domain"
)

// PostgresStore reads plans through the seller_subscriptions join maintained
// by the billing side.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) PlanForSeller(ctx context.Context, sellerID id.SellerID) (*Plan, error) {
	query := `
		SELECT p.id, p.name, p.monthly_price_cents, p.leads_per_month,
		       p.verification_badge, p.contact_reveal, p.quote_access
		FROM membership_plans p
		JOIN seller_subscriptions s ON s.plan_id = p.id
		WHERE s.seller_id = $1 AND s.active
	`
	var plan Plan
	var planID string
	err := s.db.QueryRowContext(ctx, query, sellerID.String()).Scan(
		&planID,
		&plan.Name,
		&plan.MonthlyPriceCents,
		&plan.LeadsPerMonth,
		&plan.VerificationBadge,
		&plan.ContactReveal,
		&plan.QuoteAccess,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return FreePlan(), nil
		}
		return nil, fmt.Errorf("plan for seller: %w", err)
	}
	pu, err := uuid.Parse(planID)
	if err != nil {
		return nil, fmt.Errorf("parse plan id: %w", err)
	}
	plan.ID = id.PlanID(pu)
	return &plan, nil
}
