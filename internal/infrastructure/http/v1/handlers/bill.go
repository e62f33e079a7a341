package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"apotheca/internal/core/apperror"
	appctx "apotheca/internal/core/context"
	"apotheca/internal/core/id"
	"apotheca/internal/domain/bill"
	"apotheca/internal/infrastructure/http/v1/dto"
)

// BillHandler handles billing endpoints.
type BillHandler struct {
	*BaseHandler
	service *bill.Service
}

// NewBillHandler creates a new bill handler.
func NewBillHandler(base *BaseHandler, service *bill.Service) *BillHandler {
	return &BillHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /bills
func (h *BillHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateBillRequest
	if !h.BindJSON(c, &req) {
		return
	}

	b := bill.New(appctx.GetPharmacyID(ctx))
	if req.CustomerID != nil {
		cid, err := id.Parse(*req.CustomerID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid customer id"))
			return
		}
		b.CustomerID = &cid
	}
	if req.CustomerName != "" {
		b.CustomerName = req.CustomerName
	}
	b.CustomerMobile = req.CustomerMobile
	if req.Date != nil {
		b.Date = *req.Date
	}
	b.DueDate = req.DueDate
	b.Notes = req.Notes

	for _, item := range req.Items {
		b.AddItem(item.ToInput())
	}
	if req.DiscountPercent.IsPositive() {
		b.ApplyDiscountPercent(req.DiscountPercent)
	}

	if req.IsPaid {
		b.IsPaid = true
		now := time.Now().UTC()
		b.PaidAt = &now
		if req.PaymentDate != nil {
			b.PaymentDate = req.PaymentDate
		} else {
			b.PaymentDate = &now
		}
	}

	if err := h.service.Create(ctx, b); err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromBill(b)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// List handles GET /bills
func (h *BillHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	pg := h.ParsePagination(c, 50)
	filter := bill.ListFilter{
		Search: c.Query("search"),
		Limit:  pg.Limit,
		Offset: pg.Offset,
	}
	if s := c.Query("customerId"); s != "" {
		customerID, err := id.Parse(s)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid customer id"))
			return
		}
		filter.CustomerID = &customerID
	}
	if s := c.Query("isPaid"); s != "" {
		paid := s == "true"
		filter.IsPaid = &paid
	}
	var ok bool
	if filter.DateFrom, ok = h.parseDateQuery(c, "dateFrom"); !ok {
		return
	}
	if filter.DateTo, ok = h.parseDateQuery(c, "dateTo"); !ok {
		return
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, b := range result.Items {
		items[i] = dto.FromBill(b)
	}

	c.JSON(http.StatusOK, dto.NewListResponse(items, pg, int64(result.TotalCount)))
}

// Get handles GET /bills/:id
func (h *BillHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	billID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	b, err := h.service.GetByID(ctx, billID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromBill(b))
}

// Update handles PUT /bills/:id - partial header update.
func (h *BillHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	billID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateBillRequest
	if !h.BindJSON(c, &req) {
		return
	}

	b, err := h.service.Update(ctx, billID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromBill(b))
}

// MarkPaid handles POST /bills/:id/mark-paid
func (h *BillHandler) MarkPaid(c *gin.Context) {
	ctx := c.Request.Context()

	billID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	b, err := h.service.MarkPaid(ctx, billID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromBill(b))
}

// Delete handles DELETE /bills/:id?restoreInventory=true
func (h *BillHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	billID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	restoreInventory := c.Query("restoreInventory") == "true"

	if err := h.service.Delete(ctx, billID, restoreInventory); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// RenderPDF handles POST /bills/:id/pdf - renders and stores the bill.
func (h *BillHandler) RenderPDF(c *gin.Context) {
	ctx := c.Request.Context()

	billID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	url, err := h.service.RenderPDF(ctx, billID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.PDFURLResponse{URL: url})
}

// EmailPDF handles POST /bills/:id/email - mails the rendered bill.
func (h *BillHandler) EmailPDF(c *gin.Context) {
	ctx := c.Request.Context()

	billID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.EmailBillRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.EmailPDF(ctx, billID, req.To); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "bill emailed")
}

// RegisterRoutes registers bill routes.
func (h *BillHandler) RegisterRoutes(group *gin.RouterGroup) {
	bills := group.Group("/bills")
	{
		bills.GET("", h.List)
		bills.POST("", h.Create)
		bills.GET("/:id", h.Get)
		bills.PUT("/:id", h.Update)
		bills.DELETE("/:id", h.Delete)
		bills.POST("/:id/mark-paid", h.MarkPaid)
		bills.POST("/:id/pdf", h.RenderPDF)
		bills.POST("/:id/email", h.EmailPDF)
	}
}
