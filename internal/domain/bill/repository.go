package bill

import (
	"context"
	"time"

	"apotheca/internal/core/id"
)

// ListFilter narrows the bill list.
type ListFilter struct {
	Search     string
	CustomerID *id.ID
	IsPaid     *bool
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}

// ListResult is one page of bills with the unpaged total.
type ListResult struct {
	Items      []*Bill
	TotalCount int
}

// Repository defines data access for bills.
type Repository interface {
	Create(ctx context.Context, b *Bill) error
	GetByID(ctx context.Context, billID id.ID) (*Bill, error)

	// GetForUpdate retrieves a bill with row-level lock.
	// Must be called within a transaction.
	GetForUpdate(ctx context.Context, billID id.ID) (*Bill, error)

	// Update overwrites the document and its lines with an optimistic
	// version check.
	Update(ctx context.Context, b *Bill) error

	// Delete removes the document and its lines.
	Delete(ctx context.Context, billID id.ID) error

	List(ctx context.Context, filter ListFilter) (ListResult, error)

	// ListByCustomer returns all of a customer's bills, newest first.
	ListByCustomer(ctx context.Context, customerID id.ID) ([]*Bill, error)

	// MarkAllPaidForCustomer marks every unpaid bill of the customer as
	// paid and returns the number settled. Implements customer.BillSettler.
	MarkAllPaidForCustomer(ctx context.Context, customerID id.ID) (int64, error)

	// SetPDFURL records the rendered document location.
	SetPDFURL(ctx context.Context, billID id.ID, url string) error
}
