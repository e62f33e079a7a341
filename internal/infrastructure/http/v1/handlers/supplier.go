package handlers

import (
	"github.com/gin-gonic/gin"

	"apotheca/internal/domain/supplier"
	"apotheca/internal/infrastructure/http/v1/dto"
)

// SupplierHandler handles supplier endpoints.
type SupplierHandler struct {
	*CatalogHandler[*supplier.Supplier, dto.CreateSupplierRequest, dto.UpdateSupplierRequest]
}

// NewSupplierHandler creates a new supplier handler.
func NewSupplierHandler(base *BaseHandler, service *supplier.Service) *SupplierHandler {
	catalogHandler := NewCatalogHandler(base, CatalogHandlerConfig[*supplier.Supplier, dto.CreateSupplierRequest, dto.UpdateSupplierRequest]{
		Service:    service.CatalogService,
		EntityName: "supplier",
		MapCreateDTO: func(pharmacyID string, req dto.CreateSupplierRequest) *supplier.Supplier {
			return req.ToEntity(pharmacyID)
		},
		MapUpdateDTO: func(req dto.UpdateSupplierRequest, existing *supplier.Supplier) *supplier.Supplier {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(s *supplier.Supplier) any {
			return dto.FromSupplier(s)
		},
	})

	return &SupplierHandler{CatalogHandler: catalogHandler}
}

// RegisterRoutes registers supplier routes.
func (h *SupplierHandler) RegisterRoutes(group *gin.RouterGroup) {
	suppliers := group.Group("/suppliers")
	{
		suppliers.GET("", h.List)
		suppliers.POST("", h.Create)
		suppliers.GET("/:id", h.Get)
		suppliers.PUT("/:id", h.Update)
		suppliers.DELETE("/:id", h.Delete)
		suppliers.POST("/:id/deletion-mark", h.SetDeletionMark)
	}
}
