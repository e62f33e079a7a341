package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"apotheca/internal/core/apperror"
	"apotheca/internal/core/id"
	"apotheca/internal/domain/bill"
	"apotheca/internal/domain/customer"
	"apotheca/internal/infrastructure/http/v1/dto"
	"apotheca/internal/infrastructure/http/v1/middleware"
)

// CustomerHandler handles customer endpoints. CRUD goes through the
// generic catalog handler; debt operations are customer-specific.
type CustomerHandler struct {
	*CatalogHandler[*customer.Customer, dto.CreateCustomerRequest, dto.UpdateCustomerRequest]
	service     *customer.Service
	billService *bill.Service
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(base *BaseHandler, service *customer.Service, billService *bill.Service) *CustomerHandler {
	catalogHandler := NewCatalogHandler(base, CatalogHandlerConfig[*customer.Customer, dto.CreateCustomerRequest, dto.UpdateCustomerRequest]{
		Service:    service.CatalogService,
		EntityName: "customer",
		MapCreateDTO: func(pharmacyID string, req dto.CreateCustomerRequest) *customer.Customer {
			return req.ToEntity(pharmacyID)
		},
		MapUpdateDTO: func(req dto.UpdateCustomerRequest, existing *customer.Customer) *customer.Customer {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(c *customer.Customer) any {
			return dto.FromCustomer(c)
		},
	})

	return &CustomerHandler{
		CatalogHandler: catalogHandler,
		service:        service,
		billService:    billService,
	}
}

// Debtors handles GET /customers/debtors
func (h *CustomerHandler) Debtors(c *gin.Context) {
	ctx := c.Request.Context()

	limit := h.ParseIntQuery(c, "limit", 50)
	debtors, err := h.service.ListDebtors(ctx, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.CustomerResponse, len(debtors))
	for i, d := range debtors {
		items[i] = dto.FromCustomer(d)
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// ClearDebt handles POST /customers/:id/clear-debt
func (h *CustomerHandler) ClearDebt(c *gin.Context) {
	ctx := c.Request.Context()

	customerID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	result, err := h.service.ClearDebt(ctx, customerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ClearDebtResponse{
		ClearedAmount: result.ClearedAmount,
		BillsSettled:  result.BillsSettled,
	})
}

// Bills handles GET /customers/:id/bills
func (h *CustomerHandler) Bills(c *gin.Context) {
	ctx := c.Request.Context()

	customerID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	bills, err := h.billService.ListByCustomer(ctx, customerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": dto.FromBills(bills)})
}

// RegisterRoutes registers customer routes.
func (h *CustomerHandler) RegisterRoutes(group *gin.RouterGroup) {
	customers := group.Group("/customers")
	{
		customers.GET("", h.List)
		customers.POST("", h.Create)
		customers.GET("/debtors", h.Debtors)
		customers.GET("/:id", h.Get)
		customers.PUT("/:id", h.Update)
		customers.DELETE("/:id", h.Delete)
		customers.POST("/:id/deletion-mark", h.SetDeletionMark)
		customers.POST("/:id/clear-debt", middleware.RequireAdmin(), h.ClearDebt)
		customers.GET("/:id/bills", h.Bills)
	}
}
