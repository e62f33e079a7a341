// Package purchase provides the Purchase document: a supplier invoice
// whose lines feed stock on creation and are reversed on edit or delete.
package purchase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"apotheca/internal/core/apperror"
	"apotheca/internal/core/entity"
	"apotheca/internal/core/id"
	"apotheca/internal/core/types"
)

// Item is one purchased batch line.
type Item struct {
	// LineID is a stable identifier of the line
	LineID id.ID `db:"line_id" json:"lineId"`

	// LineNo is the position in the document (1-based)
	LineNo int `db:"line_no" json:"lineNo"`

	// ProductName is the raw display name as entered
	ProductName string `db:"product_name" json:"productName"`

	BatchNo    string     `db:"batch_no" json:"batchNo"`
	ExpiryDate *time.Time `db:"expiry_date" json:"expiryDate,omitempty"`

	// PackQuantity is the number of packs bought
	PackQuantity int64 `db:"pack_quantity" json:"packQuantity"`

	// UnitsPerPack defaults to 1 when the line comes in legacy shape
	UnitsPerPack int64 `db:"units_per_pack" json:"unitsPerPack"`

	// PackPrice is the cost of one pack
	PackPrice types.Money `db:"pack_price" json:"packPrice"`

	// PricePerUnit is derived: pack_price / units_per_pack, rounded
	PricePerUnit types.Money `db:"price_per_unit" json:"pricePerUnit"`

	// MRP is the per-unit maximum retail price
	MRP types.Money `db:"mrp" json:"mrp"`

	// TotalUnits is derived: pack_quantity × units_per_pack
	TotalUnits int64 `db:"total_units" json:"totalUnits"`

	// ItemTotal is derived: pack_quantity × pack_price
	ItemTotal types.Money `db:"item_total" json:"itemTotal"`
}

// Purchase represents a recorded supplier invoice.
type Purchase struct {
	entity.Document

	// SupplierID is a soft reference; SupplierName is denormalized for
	// display and survives supplier deletion
	SupplierID   *id.ID `db:"supplier_id" json:"supplierId,omitempty"`
	SupplierName string `db:"supplier_name" json:"supplierName"`

	// InvoiceNo is the supplier's invoice number
	InvoiceNo string `db:"invoice_no" json:"invoiceNo,omitempty"`

	Items []Item `db:"-" json:"items"`

	// TotalAmount is the sum of item totals
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`
}

// New creates an empty Purchase dated now.
func New(pharmacyID string) *Purchase {
	return &Purchase{
		Document:    entity.NewDocument(pharmacyID),
		TotalAmount: types.Zero(),
	}
}

// ItemInput carries one canonical line as accepted by AddItem.
type ItemInput struct {
	ProductName  string
	BatchNo      string
	ExpiryDate   *time.Time
	PackQuantity int64
	UnitsPerPack int64
	PackPrice    types.Money
	MRP          types.Money
}

// AddItem appends a line, deriving units, per-unit price and the line
// total. UnitsPerPack of zero falls back to 1 for the unit count and to
// the pack price for the per-unit price.
func (p *Purchase) AddItem(in ItemInput) *Item {
	upp := in.UnitsPerPack
	if upp <= 0 {
		upp = 1
	}

	pricePerUnit := in.PackPrice
	if in.UnitsPerPack > 0 {
		pricePerUnit = types.Round2(in.PackPrice.Div(decimal.NewFromInt(in.UnitsPerPack)))
	}

	item := Item{
		LineID:       id.New(),
		LineNo:       len(p.Items) + 1,
		ProductName:  in.ProductName,
		BatchNo:      in.BatchNo,
		ExpiryDate:   in.ExpiryDate,
		PackQuantity: in.PackQuantity,
		UnitsPerPack: upp,
		PackPrice:    in.PackPrice,
		PricePerUnit: pricePerUnit,
		MRP:          in.MRP,
		TotalUnits:   in.PackQuantity * upp,
		ItemTotal:    decimal.NewFromInt(in.PackQuantity).Mul(in.PackPrice),
	}

	p.Items = append(p.Items, item)
	p.recalculateTotals()
	return &p.Items[len(p.Items)-1]
}

func (p *Purchase) recalculateTotals() {
	total := types.Zero()
	for _, item := range p.Items {
		total = total.Add(item.ItemTotal)
	}
	p.TotalAmount = total
}

// Validate implements entity.Validatable interface.
func (p *Purchase) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}

	if len(p.Items) == 0 {
		return apperror.NewValidation("purchase must have at least one item")
	}

	for i, item := range p.Items {
		if item.ProductName == "" {
			return apperror.NewValidation("product name is required").
				WithDetail("line", i+1)
		}
		if item.PackQuantity <= 0 {
			return apperror.NewValidation("pack quantity must be positive").
				WithDetail("line", i+1).
				WithDetail("product", item.ProductName)
		}
		if item.PackPrice.IsNegative() {
			return apperror.NewValidation("pack price cannot be negative").
				WithDetail("line", i+1).
				WithDetail("product", item.ProductName)
		}
	}

	return nil
}
