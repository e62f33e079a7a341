package customer

import (
	"context"

	"apotheca/internal/core/id"
	"apotheca/internal/core/types"
	"apotheca/internal/domain"
)

// Repository defines data access for customers.
type Repository interface {
	domain.CatalogRepository[*Customer]

	// FindByNameOrMobile returns the first customer matching either the
	// given name (case-insensitive) or mobile number. Used when bills
	// reference customers by free-form name instead of id.
	FindByNameOrMobile(ctx context.Context, name, mobile string) (*Customer, error)

	// GetForUpdate retrieves a customer with row-level lock (SELECT FOR UPDATE).
	// Must be called within a transaction.
	GetForUpdate(ctx context.Context, customerID id.ID) (*Customer, error)

	// AdjustDebt atomically adds delta to the customer's total_debt.
	// Negative deltas reduce debt and may drive the balance negative.
	AdjustDebt(ctx context.Context, customerID id.ID, delta types.Money) error

	// ListDebtors returns customers with a positive debt balance,
	// largest balance first.
	ListDebtors(ctx context.Context, limit int) ([]*Customer, error)
}
