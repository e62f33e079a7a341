package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"apotheca/internal/core/apperror"
	"apotheca/internal/core/id"
	"apotheca/internal/domain/auth"
	"apotheca/internal/infrastructure/http/v1/dto"
	"apotheca/internal/infrastructure/http/v1/middleware"
)

// UsersHandler handles staff account management. All routes are
// admin-only.
type UsersHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(base *BaseHandler, service *auth.Service) *UsersHandler {
	return &UsersHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /users
func (h *UsersHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.CreateUser(ctx, req.ToAuthRequest())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromUser(user))
}

// List handles GET /users
func (h *UsersHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := h.service.ListUsers(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": dto.FromUsers(users)})
}

// Delete handles DELETE /users/:id
func (h *UsersHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	userID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid user id"))
		return
	}

	if err := h.service.DeleteUser(ctx, userID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers user management routes.
func (h *UsersHandler) RegisterRoutes(group *gin.RouterGroup) {
	users := group.Group("/users", middleware.RequireAdmin())
	{
		users.POST("", h.Create)
		users.GET("", h.List)
		users.DELETE("/:id", h.Delete)
	}
}
