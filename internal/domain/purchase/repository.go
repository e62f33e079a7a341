package purchase

import (
	"context"
	"time"

	"apotheca/internal/core/id"
	"apotheca/internal/core/types"
)

// ListFilter narrows the purchase list.
type ListFilter struct {
	Search     string
	SupplierID *id.ID
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}

// ListResult is one page of purchases with the unpaged total.
type ListResult struct {
	Items      []*Purchase
	TotalCount int
}

// PricePoint is one historical price observation for a product.
type PricePoint struct {
	ProductName  string      `db:"product_name" json:"productName"`
	SupplierName string      `db:"supplier_name" json:"supplierName"`
	PackPrice    types.Money `db:"pack_price" json:"packPrice"`
	PricePerUnit types.Money `db:"price_per_unit" json:"pricePerUnit"`
	PurchaseDate time.Time   `db:"purchase_date" json:"purchaseDate"`
}

// Repository defines data access for purchases.
type Repository interface {
	Create(ctx context.Context, p *Purchase) error
	GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error)

	// GetForUpdate retrieves a purchase with row-level lock.
	// Must be called within a transaction.
	GetForUpdate(ctx context.Context, purchaseID id.ID) (*Purchase, error)

	// Update overwrites the document and its lines with an optimistic
	// version check.
	Update(ctx context.Context, p *Purchase) error

	// Delete removes the document and its lines.
	Delete(ctx context.Context, purchaseID id.ID) error

	List(ctx context.Context, filter ListFilter) (ListResult, error)

	// ListPricePoints returns every line of the pharmacy's purchases as a
	// price observation, for the price-history comparison.
	ListPricePoints(ctx context.Context) ([]PricePoint, error)
}
