// Package dashboard computes per-pharmacy analytics. Everything is
// recomputed per request from the live tables; there are no
// materialized views.
package dashboard

import (
	"time"

	"apotheca/internal/core/types"
)

// PeriodTotals are the sales reductions over one date range.
type PeriodTotals struct {
	Revenue   types.Money `db:"revenue" json:"revenue"`
	Profit    types.Money `db:"profit" json:"profit"`
	BillCount int64       `db:"bill_count" json:"billCount"`
}

// Counts are the entity tallies shown on the dashboard.
type Counts struct {
	Bills          int64 `db:"bills" json:"bills"`
	Customers      int64 `db:"customers" json:"customers"`
	InventoryItems int64 `db:"inventory_items" json:"inventoryItems"`
}

// Stats is the headline dashboard payload.
type Stats struct {
	Today   PeriodTotals `json:"today"`
	Month   PeriodTotals `json:"month"`
	AllTime PeriodTotals `json:"allTime"`

	// InventoryValue is Σ available_quantity × purchase_price over rows
	// with positive availability
	InventoryValue types.Money `json:"inventoryValue"`

	Counts Counts `json:"counts"`

	// TotalDebt is the outstanding balance across all customers
	TotalDebt types.Money `json:"totalDebt"`
}

// DailySales is one day in a sales series.
type DailySales struct {
	Date      time.Time   `db:"day" json:"date"`
	Revenue   types.Money `db:"revenue" json:"revenue"`
	Profit    types.Money `db:"profit" json:"profit"`
	BillCount int64       `db:"bill_count" json:"billCount"`
}

// ProductSales is one row of the top-products report.
type ProductSales struct {
	ProductName  string      `db:"product_name" json:"productName"`
	QuantitySold int64       `db:"quantity_sold" json:"quantitySold"`
	Revenue      types.Money `db:"revenue" json:"revenue"`
}

// Debtor is one row of the debt summary.
type Debtor struct {
	CustomerID   string      `db:"customer_id" json:"customerId"`
	CustomerName string      `db:"customer_name" json:"customerName"`
	Mobile       *string     `db:"mobile" json:"mobile,omitempty"`
	TotalDebt    types.Money `db:"total_debt" json:"totalDebt"`
}

// DebtSummary is the debt panel: the biggest debtors plus the overall
// outstanding balance.
type DebtSummary struct {
	TopDebtors []Debtor    `json:"topDebtors"`
	TotalDebt  types.Money `json:"totalDebt"`
}

// SupplierTotals is one row of the supplier analysis.
type SupplierTotals struct {
	SupplierName  string      `db:"supplier_name" json:"supplierName"`
	PurchaseCount int64       `db:"purchase_count" json:"purchaseCount"`
	TotalAmount   types.Money `db:"total_amount" json:"totalAmount"`
}
