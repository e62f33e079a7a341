package bill

import (
	"context"
	"fmt"
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
	"apotheca/internal/domain/customer"
	"apotheca/internal/domain/inventory"
	"apotheca/internal/domain/pharmacy"
)

// --- Fakes ---

type nopTxManager struct{}

func (nopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeBillRepo struct {
	bills map[id.ID]*Bill
}

func newFakeBillRepo() *fakeBillRepo {
	return &fakeBillRepo{bills: make(map[id.ID]*Bill)}
}

func (r *fakeBillRepo) Create(ctx context.Context, b *Bill) error {
	r.bills[b.ID] = b
	return nil
}

func (r *fakeBillRepo) GetByID(ctx context.Context, billID id.ID) (*Bill, error) {
	b, ok := r.bills[billID]
	if !ok {
		return nil, apperror.NewNotFound("bill", billID.String())
	}
	return b, nil
}

func (r *fakeBillRepo) GetForUpdate(ctx context.Context, billID id.ID) (*Bill, error) {
	return r.GetByID(ctx, billID)
}

func (r *fakeBillRepo) Update(ctx context.Context, b *Bill) error {
	r.bills[b.ID] = b
	return nil
}

func (r *fakeBillRepo) Delete(ctx context.Context, billID id.ID) error {
	delete(r.bills, billID)
	return nil
}

func (r *fakeBillRepo) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	var result ListResult
	for _, b := range r.bills {
		result.Items = append(result.Items, b)
	}
	result.TotalCount = len(result.Items)
	return result, nil
}

func (r *fakeBillRepo) ListByCustomer(ctx context.Context, customerID id.ID) ([]*Bill, error) {
	var out []*Bill
	for _, b := range r.bills {
		if b.CustomerID != nil && *b.CustomerID == customerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBillRepo) MarkAllPaidForCustomer(ctx context.Context, customerID id.ID) (int64, error) {
	var settled int64
	now := time.Now().UTC()
	for _, b := range r.bills {
		if b.CustomerID != nil && *b.CustomerID == customerID && !b.IsPaid {
			b.IsPaid = true
			b.PaidAt = &now
			settled++
		}
	}
	return settled, nil
}

func (r *fakeBillRepo) SetPDFURL(ctx context.Context, billID id.ID, url string) error {
	b, err := r.GetByID(ctx, billID)
	if err != nil {
		return err
	}
	b.PDFURL = &url
	return nil
}

type fakeCustomerRepo struct {
	customers map[id.ID]*customer.Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: make(map[id.ID]*customer.Customer)}
}

func (r *fakeCustomerRepo) Create(ctx context.Context, c *customer.Customer) error {
	r.customers[c.ID] = c
	return nil
}

func (r *fakeCustomerRepo) GetByID(ctx context.Context, customerID id.ID) (*customer.Customer, error) {
	c, ok := r.customers[customerID]
	if !ok {
		return nil, apperror.NewNotFound("customer", customerID.String())
	}
	return c, nil
}

func (r *fakeCustomerRepo) Update(ctx context.Context, c *customer.Customer) error {
	r.customers[c.ID] = c
	return nil
}

func (r *fakeCustomerRepo) Delete(ctx context.Context, customerID id.ID) error {
	delete(r.customers, customerID)
	return nil
}

func (r *fakeCustomerRepo) SetDeletionMark(ctx context.Context, customerID id.ID, marked bool) error {
	return nil
}

func (r *fakeCustomerRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*customer.Customer], error) {
	return domain.ListResult[*customer.Customer]{}, nil
}

func (r *fakeCustomerRepo) Exists(ctx context.Context, customerID id.ID) (bool, error) {
	_, ok := r.customers[customerID]
	return ok, nil
}

func (r *fakeCustomerRepo) FindByNameOrMobile(ctx context.Context, name, mobile string) (*customer.Customer, error) {
	for _, c := range r.customers {
		if name != "" && c.Name == name {
			return c, nil
		}
		if mobile != "" && c.Mobile != nil && *c.Mobile == mobile {
			return c, nil
		}
	}
	return nil, apperror.NewNotFound("customer", name)
}

func (r *fakeCustomerRepo) GetForUpdate(ctx context.Context, customerID id.ID) (*customer.Customer, error) {
	return r.GetByID(ctx, customerID)
}

func (r *fakeCustomerRepo) AdjustDebt(ctx context.Context, customerID id.ID, delta types.Money) error {
	c, err := r.GetByID(ctx, customerID)
	if err != nil {
		return err
	}
	c.TotalDebt = c.TotalDebt.Add(delta)
	return nil
}

func (r *fakeCustomerRepo) ListDebtors(ctx context.Context, limit int) ([]*customer.Customer, error) {
	var out []*customer.Customer
	for _, c := range r.customers {
		if c.TotalDebt.IsPositive() {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeInventoryRepo struct {
	byID map[id.ID]*inventory.Item
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{byID: make(map[id.ID]*inventory.Item)}
}

func (r *fakeInventoryRepo) Create(ctx context.Context, item *inventory.Item) error {
	r.byID[item.ID] = item
	return nil
}

func (r *fakeInventoryRepo) GetByID(ctx context.Context, itemID id.ID) (*inventory.Item, error) {
	item, ok := r.byID[itemID]
	if !ok {
		return nil, apperror.NewNotFound("inventory item", itemID.String())
	}
	return item, nil
}

func (r *fakeInventoryRepo) Update(ctx context.Context, item *inventory.Item) error {
	r.byID[item.ID] = item
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
	_, ok := r.byID[itemID]
	return ok, nil
}

func (r *fakeInventoryRepo) FindByBatchKey(ctx context.Context, key inventory.BatchKey) (*inventory.Item, error) {
	for _, item := range r.byID {
		if item.Key == key.String() {
			return item, nil
		}
	}
	return nil, apperror.NewNotFound("inventory item", key.String())
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
	delete(r.byID, itemID)
	return nil
}

type fakePharmacyRepo struct {
	pharmacies map[id.ID]*pharmacy.Pharmacy
}

func (r *fakePharmacyRepo) Create(ctx context.Context, p *pharmacy.Pharmacy) error {
	r.pharmacies[p.ID] = p
	return nil
}

func (r *fakePharmacyRepo) GetByID(ctx context.Context, pharmacyID id.ID) (*pharmacy.Pharmacy, error) {
	p, ok := r.pharmacies[pharmacyID]
	if !ok {
		return nil, apperror.NewNotFound("pharmacy", pharmacyID.String())
	}
	return p, nil
}

func (r *fakePharmacyRepo) Update(ctx context.Context, p *pharmacy.Pharmacy) error {
	r.pharmacies[p.ID] = p
	return nil
}

// --- Fixture ---

type fixture struct {
	service       *Service
	billRepo      *fakeBillRepo
	customerRepo  *fakeCustomerRepo
	inventoryRepo *fakeInventoryRepo
	pharmacyID    string
}

func newFixture() *fixture {
	billRepo := newFakeBillRepo()
	customerRepo := newFakeCustomerRepo()
	inventoryRepo := newFakeInventoryRepo()
	pharmacyRepo := &fakePharmacyRepo{pharmacies: make(map[id.ID]*pharmacy.Pharmacy)}
	txManager := nopTxManager{}

	ph := pharmacy.NewPharmacy("Test Pharmacy")
	pharmacyRepo.pharmacies[ph.ID] = ph

	seq := 0
	gen := &corenumerator.MockGenerator{
		GetNextNumberFunc: func(ctx context.Context, cfg corenumerator.Config, opts *corenumerator.Options, period time.Time) (string, error) {
			seq++
			return fmt.Sprintf("%s-2026-%05d", cfg.Prefix, seq), nil
		},
	}

	return &fixture{
		service: NewService(Deps{
			Repo:       billRepo,
			Customers:  customer.NewService(customerRepo, billRepo, txManager),
			Inventory:  inventory.NewService(inventoryRepo, txManager),
			Pharmacies: pharmacy.NewService(pharmacyRepo, txManager),
			Numerator:  gen,
			Audit:      audit.NopLogger{},
			TxManager:  txManager,
		}),
		billRepo:      billRepo,
		customerRepo:  customerRepo,
		inventoryRepo: inventoryRepo,
		pharmacyID:    ph.ID.String(),
	}
}

func (f *fixture) ctx() context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID:     "u-1",
		PharmacyID: f.pharmacyID,
		IsAdmin:    true,
	})
}

func (f *fixture) stockItem(name, batch string, available int64) *inventory.Item {
	item := inventory.NewItem(f.pharmacyID, name, batch)
	item.Quantity = available
	item.AvailableQuantity = available
	item.MRP = types.MustMoney("2.10")
	item.PurchasePrice = types.MustMoney("1.50")
	f.inventoryRepo.byID[item.ID] = item
	return item
}

func (f *fixture) namedCustomer(name, mobile string) *customer.Customer {
	c := customer.NewCustomer(f.pharmacyID, name)
	if mobile != "" {
		c.Mobile = &mobile
	}
	f.customerRepo.customers[c.ID] = c
	return c
}

// --- Tests ---

func TestCreate_UnpaidBillAddsDebtAndDrawsStock(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	item := f.stockItem("Paracetamol 500mg", "B1", 100)
	c := f.namedCustomer("Ravi Kumar", "9876543210")

	b := New(f.pharmacyID)
	cid := c.ID
	b.CustomerID = &cid
	b.AddItem(ItemInput{
		InventoryRef:  item.ID.String(),
		ProductName:   item.Name,
		Quantity:      10,
		UnitPrice:     types.MustMoney("2.10"),
		PurchasePrice: types.MustMoney("1.50"),
	})

	require.NoError(t, f.service.Create(ctx, b))

	assert.Equal(t, "BILL-2026-00001", b.Number)
	assert.Equal(t, "Ravi Kumar", b.CustomerName)
	assert.Equal(t, "9876543210", b.CustomerMobile)
	assert.Equal(t, int64(90), item.AvailableQuantity)
	assert.Equal(t, int64(100), item.Quantity, "total received units are untouched by sales")
	assert.Equal(t, int64(10), b.InventoryBilledQty)
	assert.True(t, c.TotalDebt.Equal(types.MustMoney("21.00")), "got %s", c.TotalDebt)
}

func TestCreate_PaidBillLeavesDebtAlone(t *testing.T) {
	f := newFixture()
	c := f.namedCustomer("Ravi Kumar", "")

	b := New(f.pharmacyID)
	cid := c.ID
	b.CustomerID = &cid
	b.IsPaid = true
	b.AddItem(ItemInput{ProductName: "Bandage", Quantity: 2, UnitPrice: types.MustMoney("10")})

	require.NoError(t, f.service.Create(f.ctx(), b))
	assert.True(t, c.TotalDebt.IsZero())
}

func TestCreate_WalkIn(t *testing.T) {
	f := newFixture()

	b := New(f.pharmacyID)
	b.AddItem(ItemInput{ProductName: "Bandage", UnitPrice: types.MustMoney("10")})

	require.NoError(t, f.service.Create(f.ctx(), b))

	assert.Nil(t, b.CustomerID)
	assert.Equal(t, WalkInName, b.CustomerName)
	assert.Equal(t, int64(1), b.NegativeBilledQty, "manual lines count as untracked units")
}

func TestCreate_FreeFormNameCreatesCustomer(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	b := New(f.pharmacyID)
	b.CustomerName = "Anita Desai"
	b.CustomerMobile = "9000000000"
	b.AddItem(ItemInput{ProductName: "Bandage", UnitPrice: types.MustMoney("10")})

	require.NoError(t, f.service.Create(ctx, b))

	require.NotNil(t, b.CustomerID)
	c, err := f.customerRepo.GetByID(ctx, *b.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, "Anita Desai", c.Name)
	assert.True(t, c.TotalDebt.Equal(types.MustMoney("10")))
}

func TestCreate_OversellingAllowed(t *testing.T) {
	f := newFixture()

	item := f.stockItem("Cetirizine", "C1", 5)

	b := New(f.pharmacyID)
	b.AddItem(ItemInput{
		InventoryRef: item.ID.String(),
		ProductName:  item.Name,
		Quantity:     8,
		UnitPrice:    types.MustMoney("2.50"),
	})

	require.NoError(t, f.service.Create(f.ctx(), b))
	assert.Equal(t, int64(-3), item.AvailableQuantity)
}

func TestUpdate_DiscountRecomputesFromStoredSubtotal(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	b := New(f.pharmacyID)
	b.AddItem(ItemInput{ProductName: "A", Quantity: 2, UnitPrice: types.MustMoney("50")})
	require.NoError(t, f.service.Create(ctx, b))

	pct := types.MustMoney("10")
	updated, err := f.service.Update(ctx, b.ID, UpdateInput{DiscountPercent: &pct})
	require.NoError(t, err)

	assert.True(t, updated.DiscountAmount.Equal(types.MustMoney("10")))
	assert.True(t, updated.GrandTotal.Equal(types.MustMoney("90")))
}

func TestUpdate_NegativeDiscountRejected(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	b := New(f.pharmacyID)
	b.AddItem(ItemInput{ProductName: "A", UnitPrice: types.MustMoney("10")})
	require.NoError(t, f.service.Create(ctx, b))

	pct := types.MustMoney("-5")
	_, err := f.service.Update(ctx, b.ID, UpdateInput{DiscountPercent: &pct})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestMarkPaid_SettlesDebt(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	c := f.namedCustomer("Ravi Kumar", "")
	b := New(f.pharmacyID)
	cid := c.ID
	b.CustomerID = &cid
	b.AddItem(ItemInput{ProductName: "A", Quantity: 3, UnitPrice: types.MustMoney("10")})
	require.NoError(t, f.service.Create(ctx, b))
	require.True(t, c.TotalDebt.Equal(types.MustMoney("30")))

	updated, err := f.service.MarkPaid(ctx, b.ID)
	require.NoError(t, err)

	assert.True(t, updated.IsPaid)
	assert.NotNil(t, updated.PaidAt)
	assert.NotNil(t, updated.PaymentDate)
	assert.True(t, c.TotalDebt.IsZero(), "got %s", c.TotalDebt)

	_, err = f.service.MarkPaid(ctx, b.ID)
	require.Error(t, err, "marking twice is rejected")
}

func TestDelete_RestoresStockAndDebt(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	item := f.stockItem("Paracetamol", "B1", 50)
	c := f.namedCustomer("Ravi Kumar", "")

	b := New(f.pharmacyID)
	cid := c.ID
	b.CustomerID = &cid
	b.AddItem(ItemInput{
		InventoryRef: item.ID.String(),
		ProductName:  item.Name,
		Quantity:     5,
		UnitPrice:    types.MustMoney("2"),
	})
	require.NoError(t, f.service.Create(ctx, b))
	require.Equal(t, int64(45), item.AvailableQuantity)

	require.NoError(t, f.service.Delete(ctx, b.ID, true))

	assert.Equal(t, int64(50), item.AvailableQuantity)
	assert.True(t, c.TotalDebt.IsZero(), "got %s", c.TotalDebt)
	_, err := f.service.GetByID(ctx, b.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDelete_SkipsLegacyNegativeRefs(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	b := New(f.pharmacyID)
	b.AddItem(ItemInput{
		InventoryRef: "negative-1699999999",
		ProductName:  "Ghost Stock",
		Quantity:     4,
		UnitPrice:    types.MustMoney("1"),
	})
	require.NoError(t, f.service.Create(ctx, b))
	require.Equal(t, int64(4), b.NegativeBilledQty)

	// Restore must not blow up on the sentinel reference.
	require.NoError(t, f.service.Delete(ctx, b.ID, true))
}

func TestClearDebt_SettlesAllBills(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	c := f.namedCustomer("Ravi Kumar", "")
	customerService := customer.NewService(f.customerRepo, f.billRepo, nopTxManager{})

	for i := 0; i < 2; i++ {
		b := New(f.pharmacyID)
		cid := c.ID
		b.CustomerID = &cid
		b.AddItem(ItemInput{ProductName: "A", Quantity: 1, UnitPrice: types.MustMoney("25")})
		require.NoError(t, f.service.Create(ctx, b))
	}
	require.True(t, c.TotalDebt.Equal(types.MustMoney("50")))

	result, err := customerService.ClearDebt(ctx, c.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.BillsSettled)
	assert.True(t, result.ClearedAmount.Equal(types.MustMoney("50")))
	assert.True(t, c.TotalDebt.IsZero())
}
