package bill

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"apotheca/internal/core/types"
)

func TestAddItem_DerivesAmounts(t *testing.T) {
	b := New("ph-1")
	assert.Equal(t, WalkInName, b.CustomerName)

	item := b.AddItem(ItemInput{
		InventoryRef:    "0198f5a0-0000-7000-8000-000000000001",
		ProductName:     "Paracetamol 500mg",
		Quantity:        10,
		UnitPrice:       types.MustMoney("2.10"),
		DiscountPercent: types.MustMoney("10"),
		PurchasePrice:   types.MustMoney("1.50"),
	})

	assert.False(t, item.IsManual)
	assert.True(t, item.Subtotal.Equal(types.MustMoney("21.00")), "got %s", item.Subtotal)
	assert.True(t, item.DiscountAmount.Equal(types.MustMoney("2.10")), "got %s", item.DiscountAmount)
	assert.True(t, item.Total.Equal(types.MustMoney("18.90")), "got %s", item.Total)
	// Profit: (2.10-1.50)*10 - 2.10
	assert.True(t, item.Profit.Equal(types.MustMoney("3.90")), "got %s", item.Profit)

	assert.True(t, b.Subtotal.Equal(types.MustMoney("18.90")))
	assert.True(t, b.GrandTotal.Equal(types.MustMoney("18.90")))
	assert.True(t, b.TotalCost.Equal(types.MustMoney("15.00")))
	assert.True(t, b.Profit.Equal(types.MustMoney("3.90")))
}

func TestAddItem_Defaults(t *testing.T) {
	b := New("ph-1")

	item := b.AddItem(ItemInput{ProductName: "Bandage"})

	assert.Equal(t, int64(1), item.Quantity)
	assert.True(t, item.IsManual, "a line without inventory reference is manual")
	assert.True(t, item.Total.IsZero())
}

func TestComputeTotals_DocumentDiscountOnTopOfLineDiscounts(t *testing.T) {
	b := New("ph-1")
	b.AddItem(ItemInput{ProductName: "A", Quantity: 2, UnitPrice: types.MustMoney("50")})
	b.AddItem(ItemInput{ProductName: "B", Quantity: 1, UnitPrice: types.MustMoney("100")})

	b.DiscountPercent = types.MustMoney("5")
	b.ComputeTotals()

	assert.True(t, b.Subtotal.Equal(types.MustMoney("200")))
	assert.True(t, b.DiscountAmount.Equal(types.MustMoney("10")))
	assert.True(t, b.GrandTotal.Equal(types.MustMoney("190")))
}

func TestApplyDiscountPercent_UsesStoredSubtotalOnly(t *testing.T) {
	b := New("ph-1")
	b.AddItem(ItemInput{
		ProductName:   "A",
		Quantity:      2,
		UnitPrice:     types.MustMoney("50"),
		PurchasePrice: types.MustMoney("30"),
	})
	profitBefore := b.Profit

	b.ApplyDiscountPercent(types.MustMoney("10"))

	assert.True(t, b.DiscountAmount.Equal(types.MustMoney("10")))
	assert.True(t, b.GrandTotal.Equal(types.MustMoney("90")))
	assert.True(t, b.Profit.Equal(profitBefore), "profit is left as is")
}

func TestIsNegativeRef(t *testing.T) {
	assert.True(t, IsNegativeRef("negative-1699999999"))
	assert.False(t, IsNegativeRef("0198f5a0-0000-7000-8000-000000000001"))
	assert.False(t, IsNegativeRef(""))
}
