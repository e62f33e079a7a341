package dto

import (
	"apotheca/internal/domain/product"
)

// ProductResponse contains product fields.
type ProductResponse struct {
	BaseResponse
	Name              string  `json:"name"`
	Description       *string `json:"description,omitempty"`
	Category          *string `json:"category,omitempty"`
	LowStockThreshold int64   `json:"lowStockThreshold"`
}

// FromProduct creates ProductResponse from a Product.
func FromProduct(p *product.Product) ProductResponse {
	return ProductResponse{
		BaseResponse:      FromBaseCatalog(p.BaseCatalog),
		Name:              p.Name,
		Description:       p.Description,
		Category:          p.Category,
		LowStockThreshold: p.LowStockThreshold,
	}
}

// CreateProductRequest for creating products.
type CreateProductRequest struct {
	Name              string  `json:"name" binding:"required"`
	Description       *string `json:"description"`
	Category          *string `json:"category"`
	LowStockThreshold *int64  `json:"lowStockThreshold"`
}

// ToEntity converts the request to a Product.
func (r CreateProductRequest) ToEntity(pharmacyID string) *product.Product {
	p := product.NewProduct(pharmacyID, r.Name)
	p.Description = r.Description
	p.Category = r.Category
	if r.LowStockThreshold != nil {
		p.LowStockThreshold = *r.LowStockThreshold
	}
	return p
}

// UpdateProductRequest for updating products.
type UpdateProductRequest struct {
	Name              *string `json:"name"`
	Description       *string `json:"description"`
	Category          *string `json:"category"`
	LowStockThreshold *int64  `json:"lowStockThreshold"`
	Version           int     `json:"version" binding:"required,min=1"`
}

// ApplyTo applies changed fields onto an existing Product.
func (r UpdateProductRequest) ApplyTo(p *product.Product) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Description != nil {
		p.Description = r.Description
	}
	if r.Category != nil {
		p.Category = r.Category
	}
	if r.LowStockThreshold != nil {
		p.LowStockThreshold = *r.LowStockThreshold
	}
	p.Version = r.Version
}
