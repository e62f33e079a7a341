package product

import (
	"context"

	"apotheca/internal/domain"
)

// Repository defines data access for products.
type Repository interface {
	domain.CatalogRepository[*Product]

	// FindByName returns the product with the given name (case-insensitive),
	// or a not-found error.
	FindByName(ctx context.Context, name string) (*Product, error)
}
