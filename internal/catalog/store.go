package catalog

import (
	"context"

	id "tradegate/pkg/domain"
)

// Store is the read-only product/category query surface.
type Store interface {
	// GetProduct returns a product by ID, or nil when it does not exist.
	GetProduct(ctx context.Context, productID id.ProductID) (*Product, error)

	// ActiveProductsInCategory returns up to limit active products in a
	// category, oldest listing first. The first result is the fanout anchor.
	ActiveProductsInCategory(ctx context.Context, categoryID id.CategoryID, limit int) ([]*Product, error)
}
