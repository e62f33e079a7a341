// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"apotheca/internal/domain/auth"
	"apotheca/internal/domain/bill"
	"apotheca/internal/domain/customer"
	"apotheca/internal/domain/dashboard"
	"apotheca/internal/domain/inventory"
	"apotheca/internal/domain/medicine"
	"apotheca/internal/domain/pharmacy"
	"apotheca/internal/domain/product"
	"apotheca/internal/domain/purchase"
	"apotheca/internal/domain/supplier"
	"apotheca/internal/infrastructure/http/v1/handlers"
	"apotheca/internal/infrastructure/http/v1/middleware"
	"apotheca/internal/infrastructure/storage/postgres"
	"apotheca/pkg/logger"
)

// Services bundles the domain services exposed over HTTP.
type Services struct {
	Auth      *auth.Service
	Pharmacy  *pharmacy.Service
	Customer  *customer.Service
	Supplier  *supplier.Service
	Product   *product.Service
	Inventory *inventory.Service
	Medicine  *medicine.Service
	Purchase  *purchase.Service
	Bill      *bill.Service
	Dashboard *dashboard.Service
}

// RouterConfig holds router configuration.
type RouterConfig struct {
	Pool      *postgres.Pool
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	Services Services

	// FileStore serves uploaded documents, may be nil
	FileStore bill.ObjectStore

	// StaticDir is the local directory behind /files, empty when no
	// local store is configured
	StaticDir string

	// IdempotencyEnabled enables replay protection on mutating routes
	IdempotencyEnabled bool
	IdempotencyTTL     time.Duration
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// Rendered bills and uploaded logos
	if cfg.StaticDir != "" {
		router.Static("/files", cfg.StaticDir)
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.Services.Auth)

	// API v1
	api := router.Group("/api/v1")
	{
		publicAuth := api.Group("/auth")

		// Global medicine catalog is shared lookup data, no token needed
		handlers.NewMedicineHandler(baseHandler, cfg.Services.Medicine).RegisterRoutes(api)

		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		if cfg.IdempotencyEnabled {
			ttl := cfg.IdempotencyTTL
			if ttl <= 0 {
				ttl = 10 * time.Minute
			}
			store := postgres.NewIdempotencyStore(cfg.Pool, cfg.TxManager, ttl)
			protected.Use(middleware.Idempotency(store))
		}

		authHandler.RegisterRoutes(publicAuth, protected.Group("/auth"))

		registerAll(protected,
			handlers.NewUsersHandler(baseHandler, cfg.Services.Auth),
			handlers.NewPharmacyHandler(baseHandler, cfg.Services.Pharmacy, cfg.FileStore),
			handlers.NewCustomerHandler(baseHandler, cfg.Services.Customer, cfg.Services.Bill),
			handlers.NewSupplierHandler(baseHandler, cfg.Services.Supplier),
			handlers.NewProductHandler(baseHandler, cfg.Services.Product),
			handlers.NewInventoryHandler(baseHandler, cfg.Services.Inventory),
			handlers.NewPurchaseHandler(baseHandler, cfg.Services.Purchase),
			handlers.NewBillHandler(baseHandler, cfg.Services.Bill),
			handlers.NewDashboardHandler(baseHandler, cfg.Services.Dashboard),
		)
	}

	return router
}
