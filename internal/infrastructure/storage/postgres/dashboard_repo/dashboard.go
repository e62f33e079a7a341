// Package dashboard_repo runs the dashboard aggregate queries. All sums
// happen in SQL; rows come back pre-reduced per pharmacy.
package dashboard_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	appctx "apotheca/internal/core/context"
	"apotheca/internal/core/types"
	"apotheca/internal/domain/dashboard"
	"apotheca/internal/infrastructure/storage/postgres"
)

// DashboardRepo implements dashboard.Repository.
type DashboardRepo struct {
	txManager *postgres.TxManager
}

// NewDashboardRepo creates a dashboard repository.
func NewDashboardRepo(txManager *postgres.TxManager) *DashboardRepo {
	return &DashboardRepo{txManager: txManager}
}

func (r *DashboardRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// PeriodTotals sums revenue, profit and bill count over the range.
func (r *DashboardRepo) PeriodTotals(ctx context.Context, from, to *time.Time) (dashboard.PeriodTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(grand_total), 0) AS revenue,
			COALESCE(SUM(profit), 0) AS profit,
			COUNT(*) AS bill_count
		FROM doc_bills
		WHERE pharmacy_id = $1
	`
	args := []any{appctx.GetPharmacyID(ctx)}

	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND date < $%d", len(args))
	}

	var totals dashboard.PeriodTotals
	if err := pgxscan.Get(ctx, r.querier(ctx), &totals, query, args...); err != nil {
		return dashboard.PeriodTotals{}, fmt.Errorf("period totals: %w", err)
	}

	return totals, nil
}

// InventoryValue sums available stock at purchase cost.
func (r *DashboardRepo) InventoryValue(ctx context.Context) (types.Money, error) {
	query := `
		SELECT COALESCE(SUM(available_quantity * purchase_price), 0)
		FROM inv_items
		WHERE pharmacy_id = $1 AND available_quantity > 0
	`

	var value types.Money
	err := r.querier(ctx).QueryRow(ctx, query, appctx.GetPharmacyID(ctx)).Scan(&value)
	if err != nil {
		return types.Zero(), fmt.Errorf("inventory value: %w", err)
	}

	return value, nil
}

// Counts returns bill, customer and inventory row tallies.
func (r *DashboardRepo) Counts(ctx context.Context) (dashboard.Counts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM doc_bills WHERE pharmacy_id = $1) AS bills,
			(SELECT COUNT(*) FROM cat_customers WHERE pharmacy_id = $1 AND deletion_mark = false) AS customers,
			(SELECT COUNT(*) FROM inv_items WHERE pharmacy_id = $1) AS inventory_items
	`

	var counts dashboard.Counts
	if err := pgxscan.Get(ctx, r.querier(ctx), &counts, query, appctx.GetPharmacyID(ctx)); err != nil {
		return dashboard.Counts{}, fmt.Errorf("counts: %w", err)
	}

	return counts, nil
}

// TotalDebt sums customer balances.
func (r *DashboardRepo) TotalDebt(ctx context.Context) (types.Money, error) {
	query := `
		SELECT COALESCE(SUM(total_debt), 0)
		FROM cat_customers
		WHERE pharmacy_id = $1 AND deletion_mark = false
	`

	var debt types.Money
	err := r.querier(ctx).QueryRow(ctx, query, appctx.GetPharmacyID(ctx)).Scan(&debt)
	if err != nil {
		return types.Zero(), fmt.Errorf("total debt: %w", err)
	}

	return debt, nil
}

// DailySales groups bills by day over [from, to).
func (r *DashboardRepo) DailySales(ctx context.Context, from, to time.Time) ([]dashboard.DailySales, error) {
	query := `
		SELECT
			date_trunc('day', date) AS day,
			COALESCE(SUM(grand_total), 0) AS revenue,
			COALESCE(SUM(profit), 0) AS profit,
			COUNT(*) AS bill_count
		FROM doc_bills
		WHERE pharmacy_id = $1 AND date >= $2 AND date < $3
		GROUP BY day
		ORDER BY day ASC
	`

	var days []dashboard.DailySales
	err := pgxscan.Select(ctx, r.querier(ctx), &days, query, appctx.GetPharmacyID(ctx), from, to)
	if err != nil {
		return nil, fmt.Errorf("daily sales: %w", err)
	}

	return days, nil
}

// TopProducts groups bill items by product name, most units first.
func (r *DashboardRepo) TopProducts(ctx context.Context, limit int) ([]dashboard.ProductSales, error) {
	query := `
		SELECT
			i.product_name,
			SUM(i.quantity) AS quantity_sold,
			COALESCE(SUM(i.total), 0) AS revenue
		FROM doc_bill_items i
		JOIN doc_bills b ON b.id = i.document_id
		WHERE b.pharmacy_id = $1
		GROUP BY i.product_name
		ORDER BY quantity_sold DESC, revenue DESC
		LIMIT $2
	`

	var products []dashboard.ProductSales
	err := pgxscan.Select(ctx, r.querier(ctx), &products, query, appctx.GetPharmacyID(ctx), limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}

	return products, nil
}

// TopDebtors returns customers with the largest positive balances.
func (r *DashboardRepo) TopDebtors(ctx context.Context, limit int) ([]dashboard.Debtor, error) {
	query := `
		SELECT
			id AS customer_id,
			name AS customer_name,
			mobile,
			total_debt
		FROM cat_customers
		WHERE pharmacy_id = $1 AND deletion_mark = false AND total_debt > 0
		ORDER BY total_debt DESC
		LIMIT $2
	`

	var debtors []dashboard.Debtor
	err := pgxscan.Select(ctx, r.querier(ctx), &debtors, query, appctx.GetPharmacyID(ctx), limit)
	if err != nil {
		return nil, fmt.Errorf("top debtors: %w", err)
	}

	return debtors, nil
}

// SupplierTotals groups purchases by supplier.
func (r *DashboardRepo) SupplierTotals(ctx context.Context) ([]dashboard.SupplierTotals, error) {
	query := `
		SELECT
			supplier_name,
			COUNT(*) AS purchase_count,
			COALESCE(SUM(total_amount), 0) AS total_amount
		FROM doc_purchases
		WHERE pharmacy_id = $1
		GROUP BY supplier_name
		ORDER BY total_amount DESC
	`

	var totals []dashboard.SupplierTotals
	err := pgxscan.Select(ctx, r.querier(ctx), &totals, query, appctx.GetPharmacyID(ctx))
	if err != nil {
		return nil, fmt.Errorf("supplier totals: %w", err)
	}

	return totals, nil
}

var _ dashboard.Repository = (*DashboardRepo)(nil)
