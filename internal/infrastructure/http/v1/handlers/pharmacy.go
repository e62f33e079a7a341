package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"apotheca/internal/core/apperror"
	"apotheca/internal/domain/bill"
	"apotheca/internal/domain/pharmacy"
	"apotheca/internal/infrastructure/http/v1/dto"
	"apotheca/internal/infrastructure/http/v1/middleware"
)

const maxLogoBytes = 2 << 20

// PharmacyHandler handles pharmacy settings endpoints.
type PharmacyHandler struct {
	*BaseHandler
	service *pharmacy.Service

	// store holds uploaded logos, may be nil when uploads are disabled
	store bill.ObjectStore
}

// NewPharmacyHandler creates a new pharmacy handler.
func NewPharmacyHandler(base *BaseHandler, service *pharmacy.Service, store bill.ObjectStore) *PharmacyHandler {
	return &PharmacyHandler{
		BaseHandler: base,
		service:     service,
		store:       store,
	}
}

// Get handles GET /pharmacy - the authenticated user's pharmacy.
func (h *PharmacyHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	p, err := h.service.Current(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromPharmacy(p))
}

// Update handles PUT /pharmacy - settings change, admin only.
func (h *PharmacyHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpdatePharmacyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Update(ctx, req.ToSettings())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPharmacy(p))
}

// UploadLogo handles POST /pharmacy/logo - stores the logo and records
// its URL, admin only.
func (h *PharmacyHandler) UploadLogo(c *gin.Context) {
	ctx := c.Request.Context()

	if h.store == nil {
		h.Error(c, apperror.NewBusinessRule("uploads_disabled", "File uploads are not configured"))
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.Error(c, apperror.NewValidation("logo file is required").WithDetail("field", "file"))
		return
	}
	defer file.Close()

	if header.Size > maxLogoBytes {
		h.Error(c, apperror.NewValidation("logo file too large").WithDetail("maxBytes", maxLogoBytes))
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType := mimeForExt(ext)
	if contentType == "" {
		h.Error(c, apperror.NewValidation("unsupported logo format").WithDetail("ext", ext))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxLogoBytes))
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}

	p, err := h.service.Current(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	key := fmt.Sprintf("pharmacies/%s/logo%s", p.ID, ext)
	url, err := h.store.Put(ctx, key, contentType, data)
	if err != nil {
		h.Error(c, err)
		return
	}

	updated, err := h.service.SetLogoURL(ctx, url)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPharmacy(updated))
}

func mimeForExt(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	default:
		return ""
	}
}

// RegisterRoutes registers pharmacy routes.
func (h *PharmacyHandler) RegisterRoutes(group *gin.RouterGroup) {
	ph := group.Group("/pharmacy")
	{
		ph.GET("", h.Get)
		ph.PUT("", middleware.RequireAdmin(), h.Update)
		ph.POST("/logo", middleware.RequireAdmin(), h.UploadLogo)
	}
}
