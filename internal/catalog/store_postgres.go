package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "tradegate/pkg/domain"
)

// PostgresStore reads products from the marketplace's listings tables.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetProduct(ctx context.Context, productID id.ProductID) (*Product, error) {
	query := `
		SELECT id, seller_id, category_id, name, active, created_at
		FROM products
		WHERE id = $1
	`
	p, err := scanProduct(s.db.QueryRowContext(ctx, query, productID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) ActiveProductsInCategory(ctx context.Context, categoryID id.CategoryID, limit int) ([]*Product, error) {
	query := `
		SELECT id, seller_id, category_id, name, active, created_at
		FROM products
		WHERE category_id = $1 AND active
		ORDER BY created_at
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, categoryID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("active products in category: %w", err)
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*Product, error) {
	var p Product
	var productID, sellerID, categoryID string
	if err := row.Scan(&productID, &sellerID, &categoryID, &p.Name, &p.Active, &p.CreatedAt); err != nil {
		return nil, err
	}
	pu, err := uuid.Parse(productID)
	if err != nil {
		return nil, fmt.Errorf("parse product id: %w", err)
	}
	su, err := uuid.Parse(sellerID)
	if err != nil {
		return nil, fmt.Errorf("parse seller id: %w", err)
	}
	cu, err := uuid.Parse(categoryID)
	if err != nil {
		return nil, fmt.Errorf("parse category id: %w", err)
	}
	p.ID = id.ProductID(pu)
	p.SellerID = id.SellerID(su)
	p.CategoryID = id.CategoryID(cu)
	return &p, nil
}
