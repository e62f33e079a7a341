package dto

import (
	"time"

	"apotheca/internal/core/types"
	"apotheca/internal/domain/purchase"
)

// PurchaseItemRequest is one line of a purchase. The legacy client shape
// used quantity/purchasePrice for whole packs; those aliases map to
// packQuantity/packPrice with one unit per pack.
type PurchaseItemRequest struct {
	ProductName  string      `json:"productName" binding:"required"`
	BatchNo      string      `json:"batchNo"`
	ExpiryDate   *time.Time  `json:"expiryDate"`
	PackQuantity int64       `json:"packQuantity"`
	UnitsPerPack int64       `json:"unitsPerPack"`
	PackPrice    types.Money `json:"packPrice"`
	MRP          types.Money `json:"mrp"`

	// Legacy aliases
	Quantity      int64       `json:"quantity"`
	PurchasePrice types.Money `json:"purchasePrice"`
}

// ToInput normalizes the line to the canonical shape.
func (r PurchaseItemRequest) ToInput() purchase.ItemInput {
	packQty := r.PackQuantity
	if packQty == 0 {
		packQty = r.Quantity
	}
	packPrice := r.PackPrice
	if packPrice.IsZero() && !r.PurchasePrice.IsZero() {
		packPrice = r.PurchasePrice
	}
	return purchase.ItemInput{
		ProductName:  r.ProductName,
		BatchNo:      r.BatchNo,
		ExpiryDate:   r.ExpiryDate,
		PackQuantity: packQty,
		UnitsPerPack: r.UnitsPerPack,
		PackPrice:    packPrice,
		MRP:          r.MRP,
	}
}

// CreatePurchaseRequest records a supplier invoice.
type CreatePurchaseRequest struct {
	SupplierID   *string               `json:"supplierId"`
	SupplierName string                `json:"supplierName"`
	InvoiceNo    string                `json:"invoiceNo"`
	Date         *time.Time            `json:"date"`
	Notes        string                `json:"notes"`
	Items        []PurchaseItemRequest `json:"items" binding:"required,min=1"`
}

// UpdatePurchaseRequest replaces a purchase's header and lines.
type UpdatePurchaseRequest struct {
	SupplierID   *string               `json:"supplierId"`
	SupplierName string                `json:"supplierName"`
	InvoiceNo    string                `json:"invoiceNo"`
	Date         *time.Time            `json:"date"`
	Notes        string                `json:"notes"`
	Items        []PurchaseItemRequest `json:"items" binding:"required,min=1"`
	Version      int                   `json:"version" binding:"required,min=1"`
}

// PurchaseItemResponse is one stored purchase line.
type PurchaseItemResponse struct {
	LineID       string      `json:"lineId"`
	LineNo       int         `json:"lineNo"`
	ProductName  string      `json:"productName"`
	BatchNo      string      `json:"batchNo"`
	ExpiryDate   *time.Time  `json:"expiryDate,omitempty"`
	PackQuantity int64       `json:"packQuantity"`
	UnitsPerPack int64       `json:"unitsPerPack"`
	PackPrice    types.Money `json:"packPrice"`
	PricePerUnit types.Money `json:"pricePerUnit"`
	MRP          types.Money `json:"mrp"`
	TotalUnits   int64       `json:"totalUnits"`
	ItemTotal    types.Money `json:"itemTotal"`
}

// PurchaseResponse contains a purchase with its lines.
type PurchaseResponse struct {
	DocumentResponse
	SupplierID   *string                `json:"supplierId,omitempty"`
	SupplierName string                 `json:"supplierName"`
	InvoiceNo    string                 `json:"invoiceNo,omitempty"`
	Items        []PurchaseItemResponse `json:"items"`
	TotalAmount  types.Money            `json:"totalAmount"`
}

// FromPurchase creates PurchaseResponse from a Purchase.
func FromPurchase(p *purchase.Purchase) PurchaseResponse {
	items := make([]PurchaseItemResponse, len(p.Items))
	for i, item := range p.Items {
		items[i] = PurchaseItemResponse{
			LineID:       item.LineID.String(),
			LineNo:       item.LineNo,
			ProductName:  item.ProductName,
			BatchNo:      item.BatchNo,
			ExpiryDate:   item.ExpiryDate,
			PackQuantity: item.PackQuantity,
			UnitsPerPack: item.UnitsPerPack,
			PackPrice:    item.PackPrice,
			PricePerUnit: item.PricePerUnit,
			MRP:          item.MRP,
			TotalUnits:   item.TotalUnits,
			ItemTotal:    item.ItemTotal,
		}
	}

	resp := PurchaseResponse{
		DocumentResponse: FromDocument(p.Document),
		SupplierName:     p.SupplierName,
		InvoiceNo:        p.InvoiceNo,
		Items:            items,
		TotalAmount:      p.TotalAmount,
	}
	if p.SupplierID != nil {
		s := p.SupplierID.String()
		resp.SupplierID = &s
	}
	return resp
}
