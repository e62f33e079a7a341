package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"apotheca/internal/domain/medicine"
	"apotheca/internal/infrastructure/http/v1/dto"
)

// MedicineHandler serves the global medicine reference catalog. The
// catalog is shared public data, so its routes skip authentication.
type MedicineHandler struct {
	*BaseHandler
	service *medicine.Service
}

// NewMedicineHandler creates a new medicine handler.
func NewMedicineHandler(base *BaseHandler, service *medicine.Service) *MedicineHandler {
	return &MedicineHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Search handles GET /medicines/search?q=...&limit=N
func (h *MedicineHandler) Search(c *gin.Context) {
	ctx := c.Request.Context()

	limit := h.ParseIntQuery(c, "limit", 20)
	items, err := h.service.Search(ctx, c.Query("q"), limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromMedicines(items))
}

// RegisterRoutes registers medicine routes on an unauthenticated group.
func (h *MedicineHandler) RegisterRoutes(group *gin.RouterGroup) {
	meds := group.Group("/medicines")
	{
		meds.GET("/search", h.Search)
	}
}
