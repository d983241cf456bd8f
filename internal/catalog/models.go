// Package catalog exposes read-only access to the product/category listings
// maintained by the rest of the marketplace. The entitlement engine only
// needs two queries: a product by ID and the active products of a category.
package catalog

import (
	"time"

	id "tradegate/pkg/domain"
)

// Product is the denormalized listing view the engine reads. Seller and
// category ride along so leads and RFQs can snapshot them without joins.
type Product struct {
	ID         id.ProductID
	SellerID   id.SellerID
	CategoryID id.CategoryID
	Name       string
	Active     bool
	CreatedAt  time.Time
}
