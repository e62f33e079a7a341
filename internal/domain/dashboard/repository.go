package dashboard

import (
	"context"
	"time"

	"apotheca/internal/core/types"
)

// Repository runs the dashboard aggregates. Heavy sums stay in SQL;
// shaping happens in the service.
type Repository interface {
	// PeriodTotals sums revenue, profit and bill count for the range.
	// Nil bounds are open-ended.
	PeriodTotals(ctx context.Context, from, to *time.Time) (PeriodTotals, error)

	// InventoryValue is Σ available_quantity × purchase_price over rows
	// with positive availability.
	InventoryValue(ctx context.Context) (types.Money, error)

	Counts(ctx context.Context) (Counts, error)

	// TotalDebt sums customer balances.
	TotalDebt(ctx context.Context) (types.Money, error)

	// DailySales groups bills by day over [from, to). Days without sales
	// are absent from the result.
	DailySales(ctx context.Context, from, to time.Time) ([]DailySales, error)

	// TopProducts groups bill items by product name, most units first.
	TopProducts(ctx context.Context, limit int) ([]ProductSales, error)

	// TopDebtors returns customers with the largest positive balances.
	TopDebtors(ctx context.Context, limit int) ([]Debtor, error)

	// SupplierTotals groups purchases by supplier.
	SupplierTotals(ctx context.Context) ([]SupplierTotals, error)
}
