package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"apotheca/internal/core/types"
	"apotheca/internal/domain/dashboard"
	"apotheca/internal/infrastructure/http/v1/middleware"
)

type stubDashboardRepo struct{}

func (stubDashboardRepo) PeriodTotals(context.Context, *time.Time, *time.Time) (dashboard.PeriodTotals, error) {
	return dashboard.PeriodTotals{}, nil
}

func (stubDashboardRepo) InventoryValue(context.Context) (types.Money, error) {
	return types.Money{}, nil
}

func (stubDashboardRepo) Counts(context.Context) (dashboard.Counts, error) {
	return dashboard.Counts{}, nil
}

func (stubDashboardRepo) TotalDebt(context.Context) (types.Money, error) {
	return types.Money{}, nil
}

func (stubDashboardRepo) DailySales(context.Context, time.Time, time.Time) ([]dashboard.DailySales, error) {
	return nil, nil
}

func (stubDashboardRepo) TopProducts(context.Context, int) ([]dashboard.ProductSales, error) {
	return nil, nil
}

func (stubDashboardRepo) TopDebtors(context.Context, int) ([]dashboard.Debtor, error) {
	return nil, nil
}

func (stubDashboardRepo) SupplierTotals(context.Context) ([]dashboard.SupplierTotals, error) {
	return nil, nil
}

func dashboardTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware.ErrorHandler())

	h := NewDashboardHandler(NewBaseHandler(), dashboard.NewService(stubDashboardRepo{}))
	h.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func TestDashboardRoutes_SalesTrendPath(t *testing.T) {
	router := dashboardTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/sales-trend?days=7", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	// The old path must stay gone.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/trend", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
