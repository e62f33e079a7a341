package dto

import (
	"time"

	"apotheca/internal/core/types"
	"apotheca/internal/domain/inventory"
)

// InventoryItemResponse contains one stock row.
type InventoryItemResponse struct {
	BaseResponse
	ProductName       string      `json:"productName"`
	BatchNo           string      `json:"batchNo"`
	Quantity          int64       `json:"quantity"`
	AvailableQuantity int64       `json:"availableQuantity"`
	PurchasePrice     types.Money `json:"purchasePrice"`
	MRP               types.Money `json:"mrp"`
	UnitsPerPack      int64       `json:"unitsPerPack"`
	PackPrice         types.Money `json:"packPrice"`
	ExpiryDate        *time.Time  `json:"expiryDate,omitempty"`
	SupplierID        *string     `json:"supplierId,omitempty"`
	SupplierName      string      `json:"supplierName,omitempty"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

// FromInventoryItem creates InventoryItemResponse from an Item.
func FromInventoryItem(i *inventory.Item) InventoryItemResponse {
	resp := InventoryItemResponse{
		BaseResponse:      FromBaseCatalog(i.BaseCatalog),
		ProductName:       i.Name,
		BatchNo:           i.BatchNo,
		Quantity:          i.Quantity,
		AvailableQuantity: i.AvailableQuantity,
		PurchasePrice:     i.PurchasePrice,
		MRP:               i.MRP,
		UnitsPerPack:      i.UnitsPerPack,
		PackPrice:         i.PackPrice,
		ExpiryDate:        i.ExpiryDate,
		SupplierName:      i.SupplierName,
		CreatedAt:         i.CreatedAt,
		UpdatedAt:         i.UpdatedAt,
	}
	if i.SupplierID != nil {
		s := i.SupplierID.String()
		resp.SupplierID = &s
	}
	return resp
}

// FromInventoryItems maps a slice of stock rows.
func FromInventoryItems(items []*inventory.Item) []InventoryItemResponse {
	out := make([]InventoryItemResponse, len(items))
	for i, item := range items {
		out[i] = FromInventoryItem(item)
	}
	return out
}

// AdjustInventoryRequest for manual stock corrections.
type AdjustInventoryRequest struct {
	Quantity          *int64       `json:"quantity"`
	AvailableQuantity *int64       `json:"availableQuantity"`
	PurchasePrice     *types.Money `json:"purchasePrice"`
	MRP               *types.Money `json:"mrp"`
	ExpiryDate        *time.Time   `json:"expiryDate"`
}

// ToAdjust converts the request to the domain adjustment.
func (r AdjustInventoryRequest) ToAdjust() inventory.Adjust {
	return inventory.Adjust{
		Quantity:          r.Quantity,
		AvailableQuantity: r.AvailableQuantity,
		PurchasePrice:     r.PurchasePrice,
		MRP:               r.MRP,
		ExpiryDate:        r.ExpiryDate,
	}
}

// InventoryAlertsResponse groups the stock warning lists.
type InventoryAlertsResponse struct {
	LowStock []InventoryItemResponse `json:"lowStock"`
	Expiring []InventoryItemResponse `json:"expiring"`
	Expired  []InventoryItemResponse `json:"expired"`
}

// FromAlerts creates InventoryAlertsResponse from domain alerts.
func FromAlerts(a *inventory.Alerts) InventoryAlertsResponse {
	return InventoryAlertsResponse{
		LowStock: FromInventoryItems(a.LowStock),
		Expiring: FromInventoryItems(a.Expiring),
		Expired:  FromInventoryItems(a.Expired),
	}
}
