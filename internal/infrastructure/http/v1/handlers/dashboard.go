package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"apotheca/internal/domain/dashboard"
)

// DashboardHandler handles analytics endpoints. The domain types carry
// their own JSON shape, so responses go out without a DTO layer.
type DashboardHandler struct {
	*BaseHandler
	service *dashboard.Service
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(base *BaseHandler, service *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Stats handles GET /dashboard/stats
func (h *DashboardHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.service.GetStats(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// SalesChart handles GET /dashboard/sales-chart?period=7d|30d|90d
func (h *DashboardHandler) SalesChart(c *gin.Context) {
	ctx := c.Request.Context()

	series, err := h.service.GetSalesChart(ctx, c.Query("period"))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": series})
}

// SalesTrend handles GET /dashboard/sales-trend?days=N
func (h *DashboardHandler) SalesTrend(c *gin.Context) {
	ctx := c.Request.Context()

	days := h.ParseIntQuery(c, "days", 7)
	series, err := h.service.GetSalesTrend(ctx, days)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": series})
}

// TopProducts handles GET /dashboard/top-products?limit=N
func (h *DashboardHandler) TopProducts(c *gin.Context) {
	ctx := c.Request.Context()

	limit := h.ParseIntQuery(c, "limit", 10)
	products, err := h.service.GetTopProducts(ctx, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": products})
}

// DebtSummary handles GET /dashboard/debt-summary
func (h *DashboardHandler) DebtSummary(c *gin.Context) {
	ctx := c.Request.Context()

	summary, err := h.service.GetDebtSummary(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// SupplierAnalysis handles GET /dashboard/supplier-analysis
func (h *DashboardHandler) SupplierAnalysis(c *gin.Context) {
	ctx := c.Request.Context()

	totals, err := h.service.GetSupplierAnalysis(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": totals})
}

// RegisterRoutes registers dashboard routes.
func (h *DashboardHandler) RegisterRoutes(group *gin.RouterGroup) {
	dash := group.Group("/dashboard")
	{
		dash.GET("/stats", h.Stats)
		dash.GET("/sales-chart", h.SalesChart)
		dash.GET("/sales-trend", h.SalesTrend)
		dash.GET("/top-products", h.TopProducts)
		dash.GET("/debt-summary", h.DebtSummary)
		dash.GET("/supplier-analysis", h.SupplierAnalysis)
	}
}
