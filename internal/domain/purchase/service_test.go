package purchase

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apotheca/internal/core/apperror"
	appctx "apotheca/internal/core/context"
	"apotheca/internal/core/id"
	corenumerator "apotheca/internal/core/numerator"
	"apotheca/internal/core/types"
	"apotheca/internal/domain"
	"apotheca/internal/domain/audit"
	"apotheca/internal/domain/inventory"
	"apotheca/internal/domain/supplier"
)

// --- Fakes ---

type nopTxManager struct{}

func (nopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakePurchaseRepo struct {
	purchases map[id.ID]*Purchase
	points    []PricePoint
}

func newFakePurchaseRepo() *fakePurchaseRepo {
	return &fakePurchaseRepo{purchases: make(map[id.ID]*Purchase)}
}

func (r *fakePurchaseRepo) Create(ctx context.Context, p *Purchase) error {
	r.purchases[p.ID] = p
	return nil
}

func (r *fakePurchaseRepo) GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error) {
	p, ok := r.purchases[purchaseID]
	if !ok {
		return nil, apperror.NewNotFound("purchase", purchaseID.String())
	}
	return p, nil
}

func (r *fakePurchaseRepo) GetForUpdate(ctx context.Context, purchaseID id.ID) (*Purchase, error) {
	return r.GetByID(ctx, purchaseID)
}

func (r *fakePurchaseRepo) Update(ctx context.Context, p *Purchase) error {
	if _, ok := r.purchases[p.ID]; !ok {
		return apperror.NewNotFound("purchase", p.ID.String())
	}
	r.purchases[p.ID] = p
	return nil
}

func (r *fakePurchaseRepo) Delete(ctx context.Context, purchaseID id.ID) error {
	delete(r.purchases, purchaseID)
	return nil
}

func (r *fakePurchaseRepo) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	var result ListResult
	for _, p := range r.purchases {
		result.Items = append(result.Items, p)
	}
	result.TotalCount = len(result.Items)
	return result, nil
}

func (r *fakePurchaseRepo) ListPricePoints(ctx context.Context) ([]PricePoint, error) {
	return r.points, nil
}

type fakeInventoryRepo struct {
	byKey map[string]*inventory.Item
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{byKey: make(map[string]*inventory.Item)}
}

func (r *fakeInventoryRepo) Create(ctx context.Context, item *inventory.Item) error {
	r.byKey[item.Key] = item
	return nil
}

func (r *fakeInventoryRepo) GetByID(ctx context.Context, itemID id.ID) (*inventory.Item, error) {
	for _, item := range r.byKey {
		if item.ID == itemID {
			return item, nil
		}
	}
	return nil, apperror.NewNotFound("inventory item", itemID.String())
}

func (r *fakeInventoryRepo) Update(ctx context.Context, item *inventory.Item) error {
	r.byKey[item.Key] = item
	return nil
}

func (r *fakeInventoryRepo) Delete(ctx context.Context, itemID id.ID) error { return nil }

func (r *fakeInventoryRepo) SetDeletionMark(ctx context.Context, itemID id.ID, marked bool) error {
	return nil
}

func (r *fakeInventoryRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*inventory.Item], error) {
	return domain.ListResult[*inventory.Item]{}, nil
}

func (r *fakeInventoryRepo) Exists(ctx context.Context, itemID id.ID) (bool, error) {
	_, err := r.GetByID(ctx, itemID)
	return err == nil, nil
}

func (r *fakeInventoryRepo) FindByBatchKey(ctx context.Context, key inventory.BatchKey) (*inventory.Item, error) {
	item, ok := r.byKey[key.String()]
	if !ok {
		return nil, apperror.NewNotFound("inventory item", key.String())
	}
	return item, nil
}

func (r *fakeInventoryRepo) ApplyDelta(ctx context.Context, itemID id.ID, qtyDelta, availDelta int64) error {
	item, err := r.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	item.Quantity += qtyDelta
	item.AvailableQuantity += availDelta
	return nil
}

func (r *fakeInventoryRepo) Search(ctx context.Context, query string, limit int) ([]*inventory.Item, error) {
	return nil, nil
}

func (r *fakeInventoryRepo) ListLowStock(ctx context.Context) ([]*inventory.Item, error) {
	return nil, nil
}

func (r *fakeInventoryRepo) ListExpiring(ctx context.Context) ([]*inventory.Item, error) {
	return nil, nil
}

func (r *fakeInventoryRepo) ListExpired(ctx context.Context) ([]*inventory.Item, error) {
	return nil, nil
}

func (r *fakeInventoryRepo) HardDelete(ctx context.Context, itemID id.ID) error {
	for key, item := range r.byKey {
		if item.ID == itemID {
			delete(r.byKey, key)
		}
	}
	return nil
}

type fakeSupplierRepo struct {
	byName map[string]*supplier.Supplier
}

func newFakeSupplierRepo() *fakeSupplierRepo {
	return &fakeSupplierRepo{byName: make(map[string]*supplier.Supplier)}
}

func (r *fakeSupplierRepo) Create(ctx context.Context, s *supplier.Supplier) error {
	r.byName[strings.ToLower(s.Name)] = s
	return nil
}

func (r *fakeSupplierRepo) GetByID(ctx context.Context, supplierID id.ID) (*supplier.Supplier, error) {
	for _, s := range r.byName {
		if s.ID == supplierID {
			return s, nil
		}
	}
	return nil, apperror.NewNotFound("supplier", supplierID.String())
}

func (r *fakeSupplierRepo) Update(ctx context.Context, s *supplier.Supplier) error { return nil }

func (r *fakeSupplierRepo) Delete(ctx context.Context, supplierID id.ID) error { return nil }

func (r *fakeSupplierRepo) SetDeletionMark(ctx context.Context, supplierID id.ID, marked bool) error {
	return nil
}

func (r *fakeSupplierRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*supplier.Supplier], error) {
	return domain.ListResult[*supplier.Supplier]{}, nil
}

func (r *fakeSupplierRepo) Exists(ctx context.Context, supplierID id.ID) (bool, error) {
	return false, nil
}

func (r *fakeSupplierRepo) FindByName(ctx context.Context, name string) (*supplier.Supplier, error) {
	s, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, apperror.NewNotFound("supplier", name)
	}
	return s, nil
}

// --- Fixture ---

type fixture struct {
	service       *Service
	purchaseRepo  *fakePurchaseRepo
	inventoryRepo *fakeInventoryRepo
	supplierRepo  *fakeSupplierRepo
}

func newFixture() *fixture {
	purchaseRepo := newFakePurchaseRepo()
	inventoryRepo := newFakeInventoryRepo()
	supplierRepo := newFakeSupplierRepo()
	txManager := nopTxManager{}

	seq := 0
	gen := &corenumerator.MockGenerator{
		GetNextNumberFunc: func(ctx context.Context, cfg corenumerator.Config, opts *corenumerator.Options, period time.Time) (string, error) {
			seq++
			return fmt.Sprintf("%s-2026-%05d", cfg.Prefix, seq), nil
		},
	}

	return &fixture{
		service: NewService(
			purchaseRepo,
			inventory.NewService(inventoryRepo, txManager),
			supplier.NewService(supplierRepo, txManager),
			gen,
			audit.NopLogger{},
			txManager,
		),
		purchaseRepo:  purchaseRepo,
		inventoryRepo: inventoryRepo,
		supplierRepo:  supplierRepo,
	}
}

func testCtx() context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID:     "u-1",
		PharmacyID: "ph-1",
		IsAdmin:    true,
	})
}

// --- Tests ---

func TestCreate_AppliesStockAndResolvesSupplier(t *testing.T) {
	f := newFixture()
	ctx := testCtx()

	p := New("ph-1")
	p.SupplierName = "MedSupply"
	p.AddItem(ItemInput{
		ProductName:  "Paracetamol 500mg",
		BatchNo:      "B1",
		PackQuantity: 10,
		UnitsPerPack: 15,
		PackPrice:    types.MustMoney("22.50"),
		MRP:          types.MustMoney("2.10"),
	})

	require.NoError(t, f.service.Create(ctx, p))

	assert.Equal(t, "PUR-2026-00001", p.Number)
	require.NotNil(t, p.SupplierID, "supplier should be auto-created")

	sup, err := f.supplierRepo.FindByName(ctx, "MedSupply")
	require.NoError(t, err)
	assert.Equal(t, sup.ID, *p.SupplierID)

	key := inventory.NewBatchKey("Paracetamol 500mg", "B1")
	item, err := f.inventoryRepo.FindByBatchKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(150), item.Quantity)
	assert.Equal(t, int64(150), item.AvailableQuantity)
	assert.True(t, item.PurchasePrice.Equal(types.MustMoney("1.50")))
	assert.True(t, item.MRP.Equal(types.MustMoney("2.10")))
}

func TestCreate_SecondReceiptIncrementsSameBatch(t *testing.T) {
	f := newFixture()
	ctx := testCtx()

	for i := 0; i < 2; i++ {
		p := New("ph-1")
		p.SupplierName = "MedSupply"
		p.AddItem(ItemInput{
			ProductName:  "Dolo 650",
			BatchNo:      "D1",
			PackQuantity: 2,
			UnitsPerPack: 10,
			PackPrice:    types.MustMoney("30"),
		})
		require.NoError(t, f.service.Create(ctx, p))
	}

	item, err := f.inventoryRepo.FindByBatchKey(ctx, inventory.NewBatchKey("Dolo 650", "D1"))
	require.NoError(t, err)
	assert.Equal(t, int64(40), item.Quantity)
	assert.Len(t, f.inventoryRepo.byKey, 1, "same batch key should not create a second row")
}

func TestCreate_InvalidDocument(t *testing.T) {
	f := newFixture()

	p := New("ph-1")
	err := f.service.Create(testCtx(), p)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestDelete_ReversesStock(t *testing.T) {
	f := newFixture()
	ctx := testCtx()

	p := New("ph-1")
	p.SupplierName = "MedSupply"
	p.AddItem(ItemInput{
		ProductName:  "Cetirizine",
		BatchNo:      "C1",
		PackQuantity: 5,
		UnitsPerPack: 10,
		PackPrice:    types.MustMoney("18"),
	})
	require.NoError(t, f.service.Create(ctx, p))

	// Simulate sales before the purchase is deleted.
	item, err := f.inventoryRepo.FindByBatchKey(ctx, inventory.NewBatchKey("Cetirizine", "C1"))
	require.NoError(t, err)
	require.NoError(t, f.inventoryRepo.ApplyDelta(ctx, item.ID, 0, -10))

	require.NoError(t, f.service.Delete(ctx, p.ID))

	assert.Equal(t, int64(0), item.Quantity)
	assert.Equal(t, int64(-10), item.AvailableQuantity, "reversal has no floor")

	_, err = f.service.GetByID(ctx, p.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdate_ReplacesLines(t *testing.T) {
	f := newFixture()
	ctx := testCtx()

	p := New("ph-1")
	p.SupplierName = "MedSupply"
	p.AddItem(ItemInput{
		ProductName:  "Amoxicillin",
		BatchNo:      "A1",
		PackQuantity: 4,
		UnitsPerPack: 10,
		PackPrice:    types.MustMoney("50"),
	})
	require.NoError(t, f.service.Create(ctx, p))

	updated := New("ph-1")
	updated.ID = p.ID
	updated.Version = p.Version
	updated.SupplierName = "MedSupply"
	updated.AddItem(ItemInput{
		ProductName:  "Amoxicillin",
		BatchNo:      "A1",
		PackQuantity: 1,
		UnitsPerPack: 10,
		PackPrice:    types.MustMoney("50"),
	})
	require.NoError(t, f.service.Update(ctx, updated))

	assert.Equal(t, p.Number, updated.Number, "number survives edits")

	item, err := f.inventoryRepo.FindByBatchKey(ctx, inventory.NewBatchKey("Amoxicillin", "A1"))
	require.NoError(t, err)
	assert.Equal(t, int64(10), item.Quantity, "old contribution backed out, new applied")
}

func TestImportCSV(t *testing.T) {
	f := newFixture()
	ctx := testCtx()

	csvData := strings.Join([]string{
		"product_name,batch_no,expiry_date,pack_quantity,units_per_pack,pack_price,mrp",
		"Paracetamol 500mg,P1,2027-06-30,10,15,22.50,2.10",
		"Cetirizine 10mg,C1,,5,10,18.00,2.50",
	}, "\n")

	p, err := f.service.ImportCSV(ctx, "MedSupply", "INV-42", strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, "INV-42", p.InvoiceNo)
	require.Len(t, p.Items, 2)
	assert.Equal(t, int64(150), p.Items[0].TotalUnits)
	require.NotNil(t, p.Items[0].ExpiryDate)
	assert.Nil(t, p.Items[1].ExpiryDate)
	assert.True(t, p.TotalAmount.Equal(types.MustMoney("315.00")), "got %s", p.TotalAmount)

	// The import lands in stock like any other purchase.
	_, err = f.inventoryRepo.FindByBatchKey(ctx, inventory.NewBatchKey("Cetirizine 10mg", "C1"))
	assert.NoError(t, err)
}

func TestImportCSV_Rejections(t *testing.T) {
	f := newFixture()
	ctx := testCtx()

	tests := []struct {
		name string
		csv  string
	}{
		{name: "missing required column", csv: "product_name,pack_quantity\nA,1"},
		{name: "no rows", csv: "product_name,pack_quantity,pack_price"},
		{name: "bad quantity", csv: "product_name,pack_quantity,pack_price\nA,ten,5"},
		{name: "bad expiry", csv: "product_name,batch_no,expiry_date,pack_quantity,pack_price\nA,B,30-06-2027,1,5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.ImportCSV(ctx, "S", "", strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
		})
	}
}

func TestGetPriceHistory(t *testing.T) {
	f := newFixture()
	ctx := testCtx()

	now := time.Now().UTC()
	f.purchaseRepo.points = []PricePoint{
		{ProductName: "Paracetamol 650mg", SupplierName: "Alpha", PackPrice: types.MustMoney("20"), PurchaseDate: now},
		{ProductName: "Paracetamol", SupplierName: "Beta", PackPrice: types.MustMoney("25"), PurchaseDate: now},
		{ProductName: "Paracetamol", SupplierName: "beta", PackPrice: types.MustMoney("25"), PurchaseDate: now}, // dupe
		{ProductName: "Cetirizine", SupplierName: "Alpha", PackPrice: types.MustMoney("5"), PurchaseDate: now},
	}

	h, err := f.service.GetPriceHistory(ctx, "Paracetamol 500mg", types.MustMoney("26"))
	require.NoError(t, err)

	assert.Len(t, h.AllHistoricalPrices, 2, "dosage variants match, duplicates collapse, other products drop")
	require.NotNil(t, h.Cheapest)
	assert.Equal(t, "Alpha", h.Cheapest.SupplierName)
	assert.True(t, h.IsHigherThanHistory)
	assert.True(t, h.PriceDifference.Equal(types.MustMoney("6")), "got %s", h.PriceDifference)
	assert.Len(t, h.CheaperOptions, 2)
}

func TestGetPriceHistory_NoMatches(t *testing.T) {
	f := newFixture()

	h, err := f.service.GetPriceHistory(testCtx(), "Unknown Drug", types.MustMoney("10"))
	require.NoError(t, err)

	assert.Empty(t, h.AllHistoricalPrices)
	assert.Nil(t, h.Cheapest)
	assert.False(t, h.IsHigherThanHistory)
	assert.True(t, h.PriceDifference.IsZero())
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Paracetamol 650mg", "paracetamol"},
		{"DOLO-650", "dolo 650"},
		{"  Crocin   Advance ", "crocin advance"},
	}
	for _, tt := range tests {
		if got := normalizeName(tt.in); got != tt.want {
			t.Errorf("normalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
