// Package main is the entry point for the apotheca API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"apotheca/internal/app"
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
	v1 "apotheca/internal/infrastructure/http/v1"
	"apotheca/internal/infrastructure/mail"
	"apotheca/internal/infrastructure/numerator"
	"apotheca/internal/infrastructure/objectstore"
	"apotheca/internal/infrastructure/pdf"
	"apotheca/internal/infrastructure/storage/postgres"
	"apotheca/internal/infrastructure/storage/postgres/auth_repo"
	"apotheca/internal/infrastructure/storage/postgres/catalog_repo"
	"apotheca/internal/infrastructure/storage/postgres/dashboard_repo"
	"apotheca/internal/infrastructure/storage/postgres/document_repo"
	"apotheca/pkg/logger"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: !cfg.IsProduction(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting apotheca server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseDSN)
	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MinConns = cfg.DBMinConns

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	userRepo := auth_repo.NewUserRepo(txManager)
	pharmacyRepo := catalog_repo.NewPharmacyRepo(txManager)
	customerRepo := catalog_repo.NewCustomerRepo(txManager)
	supplierRepo := catalog_repo.NewSupplierRepo(txManager)
	productRepo := catalog_repo.NewProductRepo(txManager)
	inventoryRepo := catalog_repo.NewInventoryRepo(txManager)
	medicineRepo := catalog_repo.NewMedicineRepo(txManager)
	purchaseRepo := document_repo.NewPurchaseRepo(txManager)
	billRepo := document_repo.NewBillRepo(txManager)
	dashboardRepo := dashboard_repo.NewDashboardRepo(txManager)

	// --- Shared infrastructure ---
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}
	numeratorService := numerator.NewWithTxManager(txManager)

	mailer := mail.NewSMTPMailer(mail.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})

	var renderer bill.Renderer
	if cfg.GotenbergURL != "" {
		r, err := pdf.NewGotenbergRenderer(cfg.GotenbergURL, nil)
		if err != nil {
			log.Fatalw("failed to initialize pdf renderer", "error", err)
		}
		if err := r.Ping(ctx); err != nil {
			log.Warnw("gotenberg not reachable, pdf rendering degraded", "error", err)
		}
		renderer = r
	}

	fileStore := objectstore.NewLocalStore(cfg.UploadDir, cfg.PublicURL+"/files")

	// --- JWT ---
	jwtConfig := auth.DefaultJWTConfig(cfg.JWTSecret)
	if cfg.JWTTokenTTL > 0 {
		jwtConfig.TokenTTL = cfg.JWTTokenTTL
	}
	jwtService := auth.NewJWTService(jwtConfig)

	// --- Domain services ---
	pharmacyService := pharmacy.NewService(pharmacyRepo, txManager)

	authConfig := auth.DefaultServiceConfig()
	authConfig.BcryptCost = cfg.BcryptCost
	authService := auth.NewService(userRepo, pharmacyRepo, txManager, jwtService, mailer, authConfig)

	// The bill repository doubles as the customer's bill settler.
	customerService := customer.NewService(customerRepo, billRepo, txManager)
	supplierService := supplier.NewService(supplierRepo, txManager)
	productService := product.NewService(productRepo, txManager)
	inventoryService := inventory.NewService(inventoryRepo, txManager)
	medicineService := medicine.NewService(medicineRepo)

	purchaseService := purchase.NewService(
		purchaseRepo,
		inventoryService,
		supplierService,
		numeratorService,
		auditService,
		txManager,
	)

	billService := bill.NewService(bill.Deps{
		Repo:       billRepo,
		Customers:  customerService,
		Inventory:  inventoryService,
		Pharmacies: pharmacyService,
		Numerator:  numeratorService,
		Audit:      auditService,
		TxManager:  txManager,
		Renderer:   renderer,
		Store:      fileStore,
		Mailer:     mailer,
	})

	dashboardService := dashboard.NewService(dashboardRepo)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:         pool,
		TxManager:    txManager,
		Logger:       log,
		JWTValidator: jwtService,
		Services: v1.Services{
			Auth:      authService,
			Pharmacy:  pharmacyService,
			Customer:  customerService,
			Supplier:  supplierService,
			Product:   productService,
			Inventory: inventoryService,
			Medicine:  medicineService,
			Purchase:  purchaseService,
			Bill:      billService,
			Dashboard: dashboardService,
		},
		FileStore:          fileStore,
		StaticDir:          cfg.UploadDir,
		IdempotencyEnabled: cfg.IdempotencyEnabled,
		IdempotencyTTL:     cfg.IdempotencyTTL,
	})

	// --- HTTP server ---
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
