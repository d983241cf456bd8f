package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"tradegate/internal/rfq"
	id "tradegate/pkg/domain"
)

// PostgresStore persists requirements and RFQs in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateRequirement(ctx context.Context, req *rfq.Requirement) error {
	categories := make([]string, 0, len(req.Categories))
	for _, c := range req.Categories {
		categories = append(categories, c.String())
	}
	query := `
		INSERT INTO requirements (
			id, buyer_id, product_name, quantity, trade_terms,
			target_price, currency, max_budget, details, categories, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		req.ID.String(), req.BuyerID.String(), req.ProductName, req.Quantity, req.TradeTerms,
		req.TargetPrice, req.Currency, req.MaxBudget, req.Details, pq.Array(categories), req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create requirement: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateRFQ(ctx context.Context, r *rfq.RFQ) error {
	query := `
		INSERT INTO rfqs (
			id, requirement_id, buyer_id, product_id, seller_id, category_id,
			quantity, target_price, currency, message,
			contact_name, contact_email, contact_phone, contact_company,
			status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := s.db.ExecContext(ctx, query,
		r.ID.String(), r.RequirementID.String(), r.BuyerID.String(), r.ProductID.String(), r.SellerID.String(), r.CategoryID.String(),
		r.Quantity, r.TargetPrice, r.Currency, r.Message,
		r.Contact.Name, r.Contact.Email, r.Contact.Phone, r.Contact.Company,
		string(r.Status), r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create rfq: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetRFQ(ctx context.Context, rfqID id.RFQID) (*rfq.RFQ, error) {
	query := selectRFQ + ` WHERE id = $1`
	r, err := scanRFQ(s.db.QueryRowContext(ctx, query, rfqID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get rfq: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) ListForSeller(ctx context.Context, sellerID id.SellerID, filter rfq.ListFilter) ([]*rfq.RFQ, error) {
	return s.list(ctx, "seller_id", sellerID.String(), filter)
}

func (s *PostgresStore) ListForBuyer(ctx context.Context, buyerID id.BuyerID, filter rfq.ListFilter) ([]*rfq.RFQ, error) {
	return s.list(ctx, "buyer_id", buyerID.String(), filter)
}

func (s *PostgresStore) list(ctx context.Context, ownerColumn, owner string, filter rfq.ListFilter) ([]*rfq.RFQ, error) {
	var (
		conds = []string{ownerColumn + " = $1"}
		args  = []any{owner}
	)
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conds = append(conds, "status = $"+strconv.Itoa(len(args)))
	}

	query := selectRFQ + " WHERE " + strings.Join(conds, " AND ") + " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rfqs: %w", err)
	}
	defer rows.Close()

	var rfqs []*rfq.RFQ
	for rows.Next() {
		r, err := scanRFQ(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rfq: %w", err)
		}
		rfqs = append(rfqs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rfqs: %w", err)
	}
	return rfqs, nil
}

func (s *PostgresStore) SetQuote(ctx context.Context, rfqID id.RFQID, quote *rfq.Quote, status rfq.Status) error {
	query := `
		UPDATE rfqs
		SET quote_price = $2, quote_currency = $3, quote_quantity = $4,
		    quote_delivery_terms = $5, quote_submitted_at = $6, status = $7
		WHERE id = $1
	`
	_, err := s.db.ExecContext(ctx, query,
		rfqID.String(), quote.Price, quote.Currency, quote.Quantity,
		quote.DeliveryTerms, quote.SubmittedAt, string(status),
	)
	if err != nil {
		return fmt.Errorf("set rfq quote: %w", err)
	}
	return nil
}

func (s *PostgresStore) SetStatus(ctx context.Context, rfqID id.RFQID, status rfq.Status) error {
	_, err := s.db.ExecContext(ctx, `UPDATE rfqs SET status = $2 WHERE id = $1`, rfqID.String(), string(status))
	if err != nil {
		return fmt.Errorf("set rfq status: %w", err)
	}
	return nil
}

const selectRFQ = `
	SELECT id, requirement_id, buyer_id, product_id, seller_id, category_id,
	       quantity, target_price, currency, message,
	       contact_name, contact_email, contact_phone, contact_company,
	       status, created_at,
	       quote_price, quote_currency, quote_quantity, quote_delivery_terms, quote_submitted_at
	FROM rfqs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRFQ(row rowScanner) (*rfq.RFQ, error) {
	var (
		r                                        rfq.RFQ
		rfqID, requirementID, buyerID, productID string
		sellerID, categoryID, status             string
		quotePrice                               sql.NullFloat64
		quoteCurrency, quoteDeliveryTerms        sql.NullString
		quoteQuantity                            sql.NullInt64
		quoteSubmittedAt                         sql.NullTime
	)
	err := row.Scan(
		&rfqID, &requirementID, &buyerID, &productID, &sellerID, &categoryID,
		&r.Quantity, &r.TargetPrice, &r.Currency, &r.Message,
		&r.Contact.Name, &r.Contact.Email, &r.Contact.Phone, &r.Contact.Company,
		&status, &r.CreatedAt,
		&quotePrice, &quoteCurrency, &quoteQuantity, &quoteDeliveryTerms, &quoteSubmittedAt,
	)
	if err != nil {
		return nil, err
	}

	ids := []struct {
		raw string
		dst func(uuid.UUID)
	}{
		{rfqID, func(u uuid.UUID) { r.ID = id.RFQID(u) }},
		{requirementID, func(u uuid.UUID) { r.RequirementID = id.RequirementID(u) }},
		{buyerID, func(u uuid.UUID) { r.BuyerID = id.BuyerID(u) }},
		{productID, func(u uuid.UUID) { r.ProductID = id.ProductID(u) }},
		{sellerID, func(u uuid.UUID) { r.SellerID = id.SellerID(u) }},
		{categoryID, func(u uuid.UUID) { r.CategoryID = id.CategoryID(u) }},
	}
	for _, f := range ids {
		u, err := uuid.Parse(f.raw)
		if err != nil {
			return nil, fmt.Errorf("parse id %q: %w", f.raw, err)
		}
		f.dst(u)
	}

	parsed, err := rfq.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	r.Status = parsed

	if quoteSubmittedAt.Valid {
		r.Quote = &rfq.Quote{
			Price:         quotePrice.Float64,
			Currency:      quoteCurrency.String,
			Quantity:      int(quoteQuantity.Int64),
			DeliveryTerms: quoteDeliveryTerms.String,
			SubmittedAt:   quoteSubmittedAt.Time,
		}
	}
	return &r, nil
}
