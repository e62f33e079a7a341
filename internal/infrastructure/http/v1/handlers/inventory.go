package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"apotheca/internal/core/apperror"
	"apotheca/internal/core/id"
	"apotheca/internal/domain"
	"apotheca/internal/domain/inventory"
	"apotheca/internal/infrastructure/http/v1/dto"
)

// InventoryHandler handles stock endpoints.
type InventoryHandler struct {
	*BaseHandler
	service *inventory.Service
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(base *BaseHandler, service *inventory.Service) *InventoryHandler {
	return &InventoryHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /inventory
func (h *InventoryHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	pg := h.ParsePagination(c, 50)

	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.Limit = pg.Limit
	filter.Offset = pg.Offset
	filter.OrderBy = pg.OrderBy(c.DefaultQuery("orderBy", "name"))

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, item := range result.Items {
		items[i] = dto.FromInventoryItem(item)
	}

	c.JSON(http.StatusOK, dto.NewListResponse(items, pg, result.TotalCount))
}

// Search handles GET /inventory/search - ranked batch lookup for billing.
func (h *InventoryHandler) Search(c *gin.Context) {
	ctx := c.Request.Context()

	query := c.Query("q")
	if query == "" {
		query = c.Query("search")
	}
	limit := h.ParseIntQuery(c, "limit", 20)

	items, err := h.service.Search(ctx, query, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": dto.FromInventoryItems(items)})
}

// Alerts handles GET /inventory/alerts
func (h *InventoryHandler) Alerts(c *gin.Context) {
	ctx := c.Request.Context()

	alerts, err := h.service.GetAlerts(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromAlerts(alerts))
}

// Get handles GET /inventory/:id
func (h *InventoryHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	itemID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	item, err := h.service.GetByID(ctx, itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromInventoryItem(item))
}

// Adjust handles PUT /inventory/:id - manual stock correction.
func (h *InventoryHandler) Adjust(c *gin.Context) {
	ctx := c.Request.Context()

	itemID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.AdjustInventoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	item, err := h.service.Adjust(ctx, itemID, req.ToAdjust())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromInventoryItem(item))
}

// Remove handles DELETE /inventory/:id - removes the stock row.
func (h *InventoryHandler) Remove(c *gin.Context) {
	ctx := c.Request.Context()

	itemID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Remove(ctx, itemID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers inventory routes.
func (h *InventoryHandler) RegisterRoutes(group *gin.RouterGroup) {
	inv := group.Group("/inventory")
	{
		inv.GET("", h.List)
		inv.GET("/search", h.Search)
		inv.GET("/alerts", h.Alerts)
		inv.GET("/:id", h.Get)
		inv.PUT("/:id", h.Adjust)
		inv.DELETE("/:id", h.Remove)
	}
}
