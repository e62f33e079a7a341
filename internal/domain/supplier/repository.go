package supplier

import (
	"context"

	"apotheca/internal/domain"
)

// Repository defines data access for suppliers.
type Repository interface {
	domain.CatalogRepository[*Supplier]

	// FindByName returns the supplier with the given name (case-insensitive),
	// or a not-found error.
	FindByName(ctx context.Context, name string) (*Supplier, error)
}
