package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"tradegate/internal/lead"
	id "tradegate/pkg/domain"
)

// PostgresStore persists leads in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, l *lead.Lead) error {
	query := `
		INSERT INTO leads (
			id, buyer_id, product_id, seller_id, category_id,
			message, quantity,
			contact_name, contact_email, contact_phone, contact_company,
			status, is_read, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.db.ExecContext(ctx, query,
		l.ID.String(), l.BuyerID.String(), l.ProductID.String(), l.SellerID.String(), l.CategoryID.String(),
		l.Message, l.Quantity,
		l.Contact.Name, l.Contact.Email, l.Contact.Phone, l.Contact.Company,
		string(l.Status), l.IsRead, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create lead: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, leadID id.LeadID) (*lead.Lead, error) {
	query := selectLead + ` WHERE id = $1`
	l, err := scanLead(s.db.QueryRowContext(ctx, query, leadID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lead: %w", err)
	}
	return l, nil
}

func (s *PostgresStore) ListForSeller(ctx context.Context, sellerID id.SellerID, filter lead.ListFilter) ([]*lead.Lead, error) {
	var (
		conds = []string{"seller_id = $1"}
		args  = []any{sellerID.String()}
	)
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conds = append(conds, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.CategoryID != nil {
		args = append(args, filter.CategoryID.String())
		conds = append(conds, "category_id = $"+strconv.Itoa(len(args)))
	}
	if filter.UnreadOnly {
		conds = append(conds, "NOT is_read")
	}
	if filter.CreatedAfter != nil {
		args = append(args, *filter.CreatedAfter)
		conds = append(conds, "created_at >= $"+strconv.Itoa(len(args)))
	}

	query := selectLead + " WHERE " + strings.Join(conds, " AND ") + " ORDER BY created_at DESC"
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
		return nil, fmt.Errorf("list leads for seller: %w", err)
	}
	defer rows.Close()

	var leads []*lead.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return leads, nil
}

func (s *PostgresStore) SetRead(ctx context.Context, leadID id.LeadID, isRead bool) error {
	_, err := s.db.ExecContext(ctx, `UPDATE leads SET is_read = $2 WHERE id = $1`, leadID.String(), isRead)
	if err != nil {
		return fmt.Errorf("set lead read flag: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, leadID id.LeadID, status lead.Status) error {
	_, err := s.db.ExecContext(ctx, `UPDATE leads SET status = $2 WHERE id = $1`, leadID.String(), string(status))
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	return nil
}

const selectLead = `
	SELECT id, buyer_id, product_id, seller_id, category_id,
	       message, quantity,
	       contact_name, contact_email, contact_phone, contact_company,
	       status, is_read, created_at
	FROM leads`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*lead.Lead, error) {
	var (
		l                                                lead.Lead
		leadID, buyerID, productID, sellerID, categoryID string
		status                                           string
	)
	err := row.Scan(
		&leadID, &buyerID, &productID, &sellerID, &categoryID,
		&l.Message, &l.Quantity,
		&l.Contact.Name, &l.Contact.Email, &l.Contact.Phone, &l.Contact.Company,
		&status, &l.IsRead, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	ids := []struct {
		raw string
		dst func(uuid.UUID)
	}{
		{leadID, func(u uuid.UUID) { l.ID = id.LeadID(u) }},
		{buyerID, func(u uuid.UUID) { l.BuyerID = id.BuyerID(u) }},
		{productID, func(u uuid.UUID) { l.ProductID = id.ProductID(u) }},
		{sellerID, func(u uuid.UUID) { l.SellerID = id.SellerID(u) }},
		{categoryID, func(u uuid.UUID) { l.CategoryID = id.CategoryID(u) }},
	}
	for _, f := range ids {
		u, err := uuid.Parse(f.raw)
		if err != nil {
			return nil, fmt.Errorf("parse id %q: %w", f.raw, err)
		}
		f.dst(u)
	}

	parsed, err := lead.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	l.Status = parsed
	return &l, nil
}
