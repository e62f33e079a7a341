// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"apotheca/internal/infrastructure/http/v1/handlers"
)

// RouteRegistrar is implemented by every handler that wires its own
// routes into a group.
type RouteRegistrar interface {
	RegisterRoutes(group *gin.RouterGroup)
}

// registerAll wires each handler into the group.
func registerAll(group *gin.RouterGroup, regs ...RouteRegistrar) {
	for _, r := range regs {
		r.RegisterRoutes(group)
	}
}

// The catalog handlers share one CRUD surface; keep them aligned.
type catalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	SetDeletionMark(c *gin.Context)
}

var (
	_ catalogRouteHandler = (*handlers.CustomerHandler)(nil)
	_ catalogRouteHandler = (*handlers.SupplierHandler)(nil)
	_ catalogRouteHandler = (*handlers.ProductHandler)(nil)
)
