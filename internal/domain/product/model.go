// Package product provides the Product catalog.
// Products are the named medicines a pharmacy deals in; physical stock
// lives in the inventory package, keyed by product name and batch.
package product

import (
	"context"

	"apotheca/internal/core/apperror"
	"apotheca/internal/core/entity"
)

// DefaultLowStockThreshold is used when a product does not set its own.
const DefaultLowStockThreshold = 10

// Product represents a medicine in the pharmacy's catalog.
type Product struct {
	entity.Catalog

	// Description is free-form notes (composition, usage)
	Description *string `db:"description" json:"description,omitempty"`

	// Category groups products for reporting (e.g. "Tablet", "Syrup")
	Category *string `db:"category" json:"category,omitempty"`

	// LowStockThreshold triggers a low-stock alert when available
	// inventory for the product drops to or below it
	LowStockThreshold int64 `db:"low_stock_threshold" json:"lowStockThreshold"`
}

// NewProduct creates a new Product with the default alert threshold.
func NewProduct(pharmacyID, name string) *Product {
	return &Product{
		Catalog:           entity.NewCatalog(pharmacyID, name),
		LowStockThreshold: DefaultLowStockThreshold,
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if p.LowStockThreshold < 0 {
		return apperror.NewValidation("low stock threshold cannot be negative").
			WithDetail("field", "lowStockThreshold")
	}

	return nil
}
