// Package bill provides the Bill document: a customer sale whose
// non-manual lines draw down inventory and whose unpaid total feeds the
// customer's debt balance.
package bill

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"apotheca/internal/core/apperror"
	"apotheca/internal/core/entity"
	"apotheca/internal/core/id"
	"apotheca/internal/core/types"
)

// WalkInName is the display name for bills without a customer record.
const WalkInName = "Walk-in"

// negativeSentinel marks legacy lines that were billed against stock
// that did not exist. Such lines carry no real inventory reference.
const negativeSentinel = "negative-"

// IsNegativeRef reports whether an inventory reference is the legacy
// sentinel rather than a real row id.
func IsNegativeRef(ref string) bool {
	return strings.HasPrefix(ref, negativeSentinel)
}

// Item is one sold line. Lines referencing an inventory row decrement
// its availability; lines without one are manual and touch no stock.
type Item struct {
	// LineID is a stable identifier of the line
	LineID id.ID `db:"line_id" json:"lineId"`

	// LineNo is the position in the document (1-based)
	LineNo int `db:"line_no" json:"lineNo"`

	// InventoryRef is the inventory row id as a string, empty for manual
	// lines. May carry the legacy "negative-" sentinel.
	InventoryRef string `db:"inventory_ref" json:"inventoryId,omitempty"`

	ProductName string `db:"product_name" json:"productName"`
	BatchNo     string `db:"batch_no" json:"batchNo,omitempty"`

	Quantity int64 `db:"quantity" json:"quantity"`

	// UnitPrice is the selling price per unit
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// DiscountPercent is the per-line discount
	DiscountPercent types.Money `db:"discount_percent" json:"discountPercent"`

	// PurchasePrice is the per-unit cost, carried for profit calculation
	PurchasePrice types.Money `db:"purchase_price" json:"purchasePrice"`

	// Derived amounts
	Subtotal       types.Money `db:"subtotal" json:"subtotal"`
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`
	Total          types.Money `db:"total" json:"total"`
	Profit         types.Money `db:"profit" json:"profit"`

	// IsManual marks lines sold outside tracked stock
	IsManual bool `db:"is_manual" json:"isManual"`
}

// Bill represents a customer sale.
type Bill struct {
	entity.Document // Number holds the bill number

	// CustomerID is nil for walk-in sales
	CustomerID     *id.ID `db:"customer_id" json:"customerId,omitempty"`
	CustomerName   string `db:"customer_name" json:"customerName"`
	CustomerMobile string `db:"customer_mobile" json:"customerMobile,omitempty"`

	Items []Item `db:"-" json:"items"`

	Subtotal        types.Money `db:"subtotal" json:"subtotal"`
	DiscountPercent types.Money `db:"discount_percent" json:"discountPercent"`
	DiscountAmount  types.Money `db:"discount_amount" json:"discountAmount"`
	GrandTotal      types.Money `db:"grand_total" json:"grandTotal"`
	TotalCost       types.Money `db:"total_cost" json:"totalCost"`
	Profit          types.Money `db:"profit" json:"profit"`

	IsPaid      bool       `db:"is_paid" json:"isPaid"`
	PaymentDate *time.Time `db:"payment_date" json:"paymentDate,omitempty"`
	PaidAt      *time.Time `db:"paid_at" json:"paidAt,omitempty"`
	DueDate     *time.Time `db:"due_date" json:"dueDate,omitempty"`

	// InventoryBilledQty counts units drawn from tracked stock,
	// NegativeBilledQty counts units sold on manual lines
	InventoryBilledQty int64 `db:"inventory_billed_qty" json:"inventoryBilledQty"`
	NegativeBilledQty  int64 `db:"negative_billed_qty" json:"negativeBilledQty"`

	// PDFURL points at the rendered bill in object storage
	PDFURL *string `db:"pdf_url" json:"pdfUrl,omitempty"`
}

// New creates an empty Bill dated now.
func New(pharmacyID string) *Bill {
	return &Bill{
		Document:        entity.NewDocument(pharmacyID),
		CustomerName:    WalkInName,
		Subtotal:        types.Zero(),
		DiscountPercent: types.Zero(),
		DiscountAmount:  types.Zero(),
		GrandTotal:      types.Zero(),
		TotalCost:       types.Zero(),
		Profit:          types.Zero(),
	}
}

// ItemInput carries one canonical line as accepted by AddItem.
type ItemInput struct {
	InventoryRef    string
	ProductName     string
	BatchNo         string
	Quantity        int64
	UnitPrice       types.Money
	DiscountPercent types.Money
	PurchasePrice   types.Money
}

// AddItem appends a line, deriving its amounts. Quantity defaults to 1;
// prices and discount default to zero values. A line without an
// inventory reference is manual.
func (b *Bill) AddItem(in ItemInput) *Item {
	qty := in.Quantity
	if qty <= 0 {
		qty = 1
	}

	qtyDec := decimal.NewFromInt(qty)
	subtotal := qtyDec.Mul(in.UnitPrice)
	discount := types.Percent(subtotal, in.DiscountPercent)
	total := subtotal.Sub(discount)
	profit := in.UnitPrice.Sub(in.PurchasePrice).Mul(qtyDec).Sub(discount)

	item := Item{
		LineID:          id.New(),
		LineNo:          len(b.Items) + 1,
		InventoryRef:    in.InventoryRef,
		ProductName:     in.ProductName,
		BatchNo:         in.BatchNo,
		Quantity:        qty,
		UnitPrice:       in.UnitPrice,
		DiscountPercent: in.DiscountPercent,
		PurchasePrice:   in.PurchasePrice,
		Subtotal:        subtotal,
		DiscountAmount:  discount,
		Total:           total,
		Profit:          profit,
		IsManual:        in.InventoryRef == "",
	}

	b.Items = append(b.Items, item)
	b.ComputeTotals()
	return &b.Items[len(b.Items)-1]
}

// ComputeTotals recomputes the document aggregates from the lines and
// the document-level discount percent.
func (b *Bill) ComputeTotals() {
	subtotal := types.Zero()
	totalCost := types.Zero()
	itemProfit := types.Zero()

	for _, item := range b.Items {
		subtotal = subtotal.Add(item.Total)
		totalCost = totalCost.Add(item.PurchasePrice.Mul(decimal.NewFromInt(item.Quantity)))
		itemProfit = itemProfit.Add(item.Profit)
	}

	b.Subtotal = subtotal
	b.DiscountAmount = types.Percent(subtotal, b.DiscountPercent)
	b.GrandTotal = subtotal.Sub(b.DiscountAmount)
	b.TotalCost = totalCost
	b.Profit = itemProfit.Sub(b.DiscountAmount)
}

// ApplyDiscountPercent changes the document discount and recomputes
// discount_amount and grand_total from the stored subtotal. Lines are
// not re-walked and profit is left as is.
func (b *Bill) ApplyDiscountPercent(pct types.Money) {
	b.DiscountPercent = pct
	b.DiscountAmount = types.Percent(b.Subtotal, pct)
	b.GrandTotal = b.Subtotal.Sub(b.DiscountAmount)
}

// Validate implements entity.Validatable interface.
func (b *Bill) Validate(ctx context.Context) error {
	if err := b.Document.Validate(ctx); err != nil {
		return err
	}

	if len(b.Items) == 0 {
		return apperror.NewValidation("bill must have at least one item")
	}

	for i, item := range b.Items {
		if item.ProductName == "" {
			return apperror.NewValidation("product name is required").
				WithDetail("line", i+1)
		}
		if item.Quantity <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("line", i+1).
				WithDetail("product", item.ProductName)
		}
	}

	if b.DiscountPercent.IsNegative() {
		return apperror.NewValidation("discount percent cannot be negative").
			WithDetail("field", "discountPercent")
	}

	return nil
}
