// Package main provides a CLI tool for seeding the database with a demo
// pharmacy and initial data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	appctx "apotheca/internal/core/context"
	"apotheca/internal/core/id"
	"apotheca/internal/core/types"
	"apotheca/internal/domain/auth"
	"apotheca/internal/domain/bill"
	"apotheca/internal/domain/customer"
	"apotheca/internal/domain/inventory"
	"apotheca/internal/domain/medicine"
	"apotheca/internal/domain/pharmacy"
	"apotheca/internal/domain/product"
	"apotheca/internal/domain/purchase"
	"apotheca/internal/domain/supplier"
	"apotheca/internal/infrastructure/numerator"
	"apotheca/internal/infrastructure/storage/postgres"
	"apotheca/internal/infrastructure/storage/postgres/auth_repo"
	"apotheca/internal/infrastructure/storage/postgres/catalog_repo"
	"apotheca/internal/infrastructure/storage/postgres/document_repo"
	"apotheca/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_DSN")
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_DSN environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)

	userRepo := auth_repo.NewUserRepo(txManager)
	pharmacyRepo := catalog_repo.NewPharmacyRepo(txManager)

	email := getEnv("SEED_ADMIN_EMAIL", "admin@apotheca.local")
	password := getEnv("SEED_ADMIN_PASSWORD", "admin12345")

	exists, err := userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		log.Fatalw("failed to check admin user", "error", err)
	}
	if exists {
		log.Infow("admin user already seeded", "email", email)
		return
	}

	ph := pharmacy.NewPharmacy(getEnv("SEED_PHARMACY_NAME", "Demo Pharmacy"))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalw("failed to hash password", "error", err)
	}

	admin := auth.NewUser(ph.ID.String(), "Administrator", email, string(hash), auth.RoleAdmin)
	admin.IsPrimaryAdmin = true
	admin.Verified = true

	err = txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := pharmacyRepo.Create(ctx, ph); err != nil {
			return err
		}
		return userRepo.Create(ctx, admin)
	})
	if err != nil {
		log.Fatalw("failed to seed pharmacy and admin", "error", err)
	}

	log.Infow("seeded pharmacy with admin user",
		"pharmacy_id", ph.ID,
		"email", email)

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		// Demo data goes through the real services so numbers, stock and
		// debt come out consistent.
		seedCtx := appctx.WithUser(ctx, &appctx.UserContext{
			UserID:     admin.ID.String(),
			PharmacyID: ph.ID.String(),
			Email:      admin.Email,
			Role:       string(admin.Role),
			IsAdmin:    true,
		})
		if err := seedDemoData(seedCtx, txManager, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
		log.Info("seeded demo data")
	}

	log.Info("seeding completed successfully")
}

func seedDemoData(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) error {
	pharmacyID := appctx.GetPharmacyID(ctx)

	customerRepo := catalog_repo.NewCustomerRepo(txManager)
	supplierRepo := catalog_repo.NewSupplierRepo(txManager)
	productRepo := catalog_repo.NewProductRepo(txManager)
	inventoryRepo := catalog_repo.NewInventoryRepo(txManager)
	purchaseRepo := document_repo.NewPurchaseRepo(txManager)
	billRepo := document_repo.NewBillRepo(txManager)
	pharmacyRepo := catalog_repo.NewPharmacyRepo(txManager)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		return err
	}
	numeratorService := numerator.NewWithTxManager(txManager)

	customerService := customer.NewService(customerRepo, billRepo, txManager)
	supplierService := supplier.NewService(supplierRepo, txManager)
	productService := product.NewService(productRepo, txManager)
	inventoryService := inventory.NewService(inventoryRepo, txManager)
	pharmacyService := pharmacy.NewService(pharmacyRepo, txManager)

	purchaseService := purchase.NewService(
		purchaseRepo, inventoryService, supplierService,
		numeratorService, auditService, txManager)

	billService := bill.NewService(bill.Deps{
		Repo:       billRepo,
		Customers:  customerService,
		Inventory:  inventoryService,
		Pharmacies: pharmacyService,
		Numerator:  numeratorService,
		Audit:      auditService,
		TxManager:  txManager,
	})

	medicineRepo := catalog_repo.NewMedicineRepo(txManager)
	for _, m := range []*medicine.Medicine{
		{ID: id.New(), RefID: 1, Name: "Dolo 650 Tablet", Price: types.MustMoney("30.91"),
			Manufacturer: "Micro Labs Ltd", PackSizeLabel: "strip of 15 tablets",
			Composition1: "Paracetamol (650mg)"},
		{ID: id.New(), RefID: 2, Name: "Cetirizine 10mg Tablet", Price: types.MustMoney("18.00"),
			Manufacturer: "Cipla Ltd", PackSizeLabel: "strip of 10 tablets",
			Composition1: "Cetirizine (10mg)"},
		{ID: id.New(), RefID: 3, Name: "Amoxyclav 625 Tablet", Price: types.MustMoney("202.00"),
			Manufacturer: "Abbott", PackSizeLabel: "strip of 10 tablets",
			Composition1: "Amoxycillin (500mg)", Composition2: "Clavulanic Acid (125mg)"},
	} {
		if err := medicineRepo.Upsert(ctx, m); err != nil {
			return err
		}
	}

	for _, name := range []string{"Paracetamol 500mg", "Amoxicillin 250mg", "Cetirizine 10mg"} {
		if err := productService.Create(ctx, product.NewProduct(pharmacyID, name)); err != nil {
			return err
		}
	}

	c := customer.NewCustomer(pharmacyID, "Ravi Kumar")
	mobile := "9876543210"
	c.Mobile = &mobile
	if err := customerService.Create(ctx, c); err != nil {
		return err
	}

	p := purchase.New(pharmacyID)
	p.SupplierName = "MedSupply Distributors"
	p.InvoiceNo = "INV-1001"
	p.AddItem(purchase.ItemInput{
		ProductName:  "Paracetamol 500mg",
		BatchNo:      "PCM-24A",
		PackQuantity: 10,
		UnitsPerPack: 15,
		PackPrice:    types.MustMoney("22.50"),
		MRP:          types.MustMoney("2.10"),
	})
	p.AddItem(purchase.ItemInput{
		ProductName:  "Cetirizine 10mg",
		BatchNo:      "CTZ-24B",
		PackQuantity: 5,
		UnitsPerPack: 10,
		PackPrice:    types.MustMoney("18.00"),
		MRP:          types.MustMoney("2.50"),
	})
	if err := purchaseService.Create(ctx, p); err != nil {
		return err
	}
	log.Infow("seeded purchase", "number", p.Number)

	items, err := inventoryService.Search(ctx, "Paracetamol", 1)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("seeded stock not found")
	}

	b := bill.New(pharmacyID)
	cid := c.ID
	b.CustomerID = &cid
	b.Date = time.Now().UTC()
	b.AddItem(bill.ItemInput{
		InventoryRef:  items[0].ID.String(),
		ProductName:   items[0].Name,
		BatchNo:       items[0].BatchNo,
		Quantity:      10,
		UnitPrice:     items[0].MRP,
		PurchasePrice: items[0].PurchasePrice,
	})
	if err := billService.Create(ctx, b); err != nil {
		return err
	}
	log.Infow("seeded bill", "number", b.Number)

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
