package dto

import (
	"time"

	"apotheca/internal/core/types"
	"apotheca/internal/domain/bill"
)

// BillItemRequest is one sold line. Price may arrive as unitPrice or the
// legacy price alias.
type BillItemRequest struct {
	InventoryID     string      `json:"inventoryId"`
	ProductName     string      `json:"productName" binding:"required"`
	BatchNo         string      `json:"batchNo"`
	Quantity        int64       `json:"quantity"`
	UnitPrice       types.Money `json:"unitPrice"`
	DiscountPercent types.Money `json:"discountPercent"`
	PurchasePrice   types.Money `json:"purchasePrice"`

	// Legacy alias for unitPrice
	Price types.Money `json:"price"`
}

// ToInput normalizes the line to the canonical shape.
func (r BillItemRequest) ToInput() bill.ItemInput {
	unitPrice := r.UnitPrice
	if unitPrice.IsZero() && !r.Price.IsZero() {
		unitPrice = r.Price
	}
	return bill.ItemInput{
		InventoryRef:    r.InventoryID,
		ProductName:     r.ProductName,
		BatchNo:         r.BatchNo,
		Quantity:        r.Quantity,
		UnitPrice:       unitPrice,
		DiscountPercent: r.DiscountPercent,
		PurchasePrice:   r.PurchasePrice,
	}
}

// CreateBillRequest generates a bill.
type CreateBillRequest struct {
	CustomerID      *string           `json:"customerId"`
	CustomerName    string            `json:"customerName"`
	CustomerMobile  string            `json:"customerMobile"`
	Date            *time.Time        `json:"date"`
	DueDate         *time.Time        `json:"dueDate"`
	DiscountPercent types.Money       `json:"discountPercent"`
	IsPaid          bool              `json:"isPaid"`
	PaymentDate     *time.Time        `json:"paymentDate"`
	Notes           string            `json:"notes"`
	Items           []BillItemRequest `json:"items" binding:"required,min=1"`
}

// UpdateBillRequest applies a partial bill update.
type UpdateBillRequest struct {
	CustomerName    *string      `json:"customerName"`
	CustomerMobile  *string      `json:"customerMobile"`
	Notes           *string      `json:"notes"`
	DueDate         *time.Time   `json:"dueDate"`
	DiscountPercent *types.Money `json:"discountPercent"`
	IsPaid          *bool        `json:"isPaid"`
	PaymentDate     *time.Time   `json:"paymentDate"`
}

// ToInput converts the request to the domain update.
func (r UpdateBillRequest) ToInput() bill.UpdateInput {
	return bill.UpdateInput{
		CustomerName:    r.CustomerName,
		CustomerMobile:  r.CustomerMobile,
		Notes:           r.Notes,
		DueDate:         r.DueDate,
		DiscountPercent: r.DiscountPercent,
		IsPaid:          r.IsPaid,
		PaymentDate:     r.PaymentDate,
	}
}

// BillItemResponse is one stored bill line.
type BillItemResponse struct {
	LineID          string      `json:"lineId"`
	LineNo          int         `json:"lineNo"`
	InventoryID     string      `json:"inventoryId,omitempty"`
	ProductName     string      `json:"productName"`
	BatchNo         string      `json:"batchNo,omitempty"`
	Quantity        int64       `json:"quantity"`
	UnitPrice       types.Money `json:"unitPrice"`
	DiscountPercent types.Money `json:"discountPercent"`
	PurchasePrice   types.Money `json:"purchasePrice"`
	Subtotal        types.Money `json:"subtotal"`
	DiscountAmount  types.Money `json:"discountAmount"`
	Total           types.Money `json:"total"`
	Profit          types.Money `json:"profit"`
	IsManual        bool        `json:"isManual"`
}

// BillResponse contains a bill with its lines. TotalAmount mirrors
// GrandTotal for clients built against the legacy field name.
type BillResponse struct {
	DocumentResponse
	CustomerID         *string            `json:"customerId,omitempty"`
	CustomerName       string             `json:"customerName"`
	CustomerMobile     string             `json:"customerMobile,omitempty"`
	Items              []BillItemResponse `json:"items"`
	Subtotal           types.Money        `json:"subtotal"`
	DiscountPercent    types.Money        `json:"discountPercent"`
	DiscountAmount     types.Money        `json:"discountAmount"`
	GrandTotal         types.Money        `json:"grandTotal"`
	TotalAmount        types.Money        `json:"totalAmount"`
	TotalCost          types.Money        `json:"totalCost"`
	Profit             types.Money        `json:"profit"`
	IsPaid             bool               `json:"isPaid"`
	PaymentDate        *time.Time         `json:"paymentDate,omitempty"`
	PaidAt             *time.Time         `json:"paidAt,omitempty"`
	DueDate            *time.Time         `json:"dueDate,omitempty"`
	InventoryBilledQty int64              `json:"inventoryBilledQty"`
	NegativeBilledQty  int64              `json:"negativeBilledQty"`
	PDFURL             *string            `json:"pdfUrl,omitempty"`
}

// FromBill creates BillResponse from a Bill.
func FromBill(b *bill.Bill) BillResponse {
	items := make([]BillItemResponse, len(b.Items))
	for i, item := range b.Items {
		items[i] = BillItemResponse{
			LineID:          item.LineID.String(),
			LineNo:          item.LineNo,
			InventoryID:     item.InventoryRef,
			ProductName:     item.ProductName,
			BatchNo:         item.BatchNo,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
			PurchasePrice:   item.PurchasePrice,
			Subtotal:        item.Subtotal,
			DiscountAmount:  item.DiscountAmount,
			Total:           item.Total,
			Profit:          item.Profit,
			IsManual:        item.IsManual,
		}
	}

	resp := BillResponse{
		DocumentResponse:   FromDocument(b.Document),
		CustomerName:       b.CustomerName,
		CustomerMobile:     b.CustomerMobile,
		Items:              items,
		Subtotal:           b.Subtotal,
		DiscountPercent:    b.DiscountPercent,
		DiscountAmount:     b.DiscountAmount,
		GrandTotal:         b.GrandTotal,
		TotalAmount:        b.GrandTotal,
		TotalCost:          b.TotalCost,
		Profit:             b.Profit,
		IsPaid:             b.IsPaid,
		PaymentDate:        b.PaymentDate,
		PaidAt:             b.PaidAt,
		DueDate:            b.DueDate,
		InventoryBilledQty: b.InventoryBilledQty,
		NegativeBilledQty:  b.NegativeBilledQty,
		PDFURL:             b.PDFURL,
	}
	if b.CustomerID != nil {
		s := b.CustomerID.String()
		resp.CustomerID = &s
	}
	return resp
}

// FromBills maps a slice of bills.
func FromBills(bills []*bill.Bill) []BillResponse {
	out := make([]BillResponse, len(bills))
	for i, b := range bills {
		out[i] = FromBill(b)
	}
	return out
}

// EmailBillRequest mails the rendered bill.
type EmailBillRequest struct {
	To string `json:"to" binding:"required,email"`
}

// PDFURLResponse returns the stored document location.
type PDFURLResponse struct {
	URL string `json:"url"`
}
