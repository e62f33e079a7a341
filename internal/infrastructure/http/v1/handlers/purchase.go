package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"apotheca/internal/core/apperror"
	appctx "apotheca/internal/core/context"
	"apotheca/internal/core/id"
	"apotheca/internal/core/types"
	"apotheca/internal/domain/purchase"
	"apotheca/internal/infrastructure/http/v1/dto"
)

// PurchaseHandler handles purchase document endpoints.
type PurchaseHandler struct {
	*BaseHandler
	service *purchase.Service
}

// NewPurchaseHandler creates a new purchase handler.
func NewPurchaseHandler(base *BaseHandler, service *purchase.Service) *PurchaseHandler {
	return &PurchaseHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /purchases
func (h *PurchaseHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreatePurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := purchase.New(appctx.GetPharmacyID(ctx))
	applyPurchaseHeader(p, req.SupplierID, req.SupplierName, req.InvoiceNo, req.Date, req.Notes)
	for _, item := range req.Items {
		p.AddItem(item.ToInput())
	}

	if err := h.service.Create(ctx, p); err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromPurchase(p)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// List handles GET /purchases
func (h *PurchaseHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	pg := h.ParsePagination(c, 20)
	filter := purchase.ListFilter{
		Search: c.Query("search"),
		Limit:  pg.Limit,
		Offset: pg.Offset,
	}
	if s := c.Query("supplierId"); s != "" {
		supplierID, err := id.Parse(s)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid supplier id"))
			return
		}
		filter.SupplierID = &supplierID
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
	for i, p := range result.Items {
		items[i] = dto.FromPurchase(p)
	}

	c.JSON(http.StatusOK, dto.NewListResponse(items, pg, int64(result.TotalCount)))
}

// Get handles GET /purchases/:id
func (h *PurchaseHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	purchaseID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	p, err := h.service.GetByID(ctx, purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromPurchase(p))
}

// Update handles PUT /purchases/:id - replaces header and lines.
func (h *PurchaseHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	purchaseID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdatePurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := purchase.New(appctx.GetPharmacyID(ctx))
	p.ID = purchaseID
	p.Version = req.Version
	applyPurchaseHeader(p, req.SupplierID, req.SupplierName, req.InvoiceNo, req.Date, req.Notes)
	for _, item := range req.Items {
		p.AddItem(item.ToInput())
	}

	if err := h.service.Update(ctx, p); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPurchase(p))
}

// Delete handles DELETE /purchases/:id
func (h *PurchaseHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	purchaseID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Delete(ctx, purchaseID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// PriceHistory handles GET /purchases/price-history - compares a quoted
// price against past purchases of the product.
func (h *PurchaseHandler) PriceHistory(c *gin.Context) {
	ctx := c.Request.Context()

	productName := c.Query("productName")
	currentPrice := types.Zero()
	if s := c.Query("currentPrice"); s != "" {
		parsed, err := types.NewMoneyFromString(s)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid current price"))
			return
		}
		currentPrice = parsed
	}

	history, err := h.service.GetPriceHistory(ctx, productName, currentPrice)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

// ImportCSV handles POST /purchases/import - records one purchase from an
// uploaded CSV of lines.
func (h *PurchaseHandler) ImportCSV(c *gin.Context) {
	ctx := c.Request.Context()

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		h.Error(c, apperror.NewValidation("CSV file is required").WithDetail("field", "file"))
		return
	}
	defer file.Close()

	supplierName := c.PostForm("supplierName")
	invoiceNo := c.PostForm("invoiceNo")

	p, err := h.service.ImportCSV(ctx, supplierName, invoiceNo, file)
	if err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromPurchase(p)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

func applyPurchaseHeader(p *purchase.Purchase, supplierID *string, supplierName, invoiceNo string, date *time.Time, notes string) {
	if supplierID != nil {
		if sid, err := id.Parse(*supplierID); err == nil {
			p.SupplierID = &sid
		}
	}
	p.SupplierName = supplierName
	p.InvoiceNo = invoiceNo
	if date != nil {
		p.Date = *date
	}
	p.Notes = notes
}

// RegisterRoutes registers purchase routes.
func (h *PurchaseHandler) RegisterRoutes(group *gin.RouterGroup) {
	purchases := group.Group("/purchases")
	{
		purchases.GET("", h.List)
		purchases.POST("", h.Create)
		purchases.GET("/price-history", h.PriceHistory)
		purchases.POST("/import", h.ImportCSV)
		purchases.GET("/:id", h.Get)
		purchases.PUT("/:id", h.Update)
		purchases.DELETE("/:id", h.Delete)
	}
}
