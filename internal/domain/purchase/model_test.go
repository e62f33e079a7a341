package purchase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apotheca/internal/core/types"
)

func TestAddItem_DerivesLineAmounts(t *testing.T) {
	p := New("ph-1")

	item := p.AddItem(ItemInput{
		ProductName:  "Paracetamol 500mg",
		BatchNo:      "PCM-24A",
		PackQuantity: 10,
		UnitsPerPack: 15,
		PackPrice:    types.MustMoney("22.50"),
		MRP:          types.MustMoney("2.10"),
	})

	assert.Equal(t, 1, item.LineNo)
	assert.Equal(t, int64(150), item.TotalUnits)
	assert.True(t, item.PricePerUnit.Equal(types.MustMoney("1.50")), "got %s", item.PricePerUnit)
	assert.True(t, item.ItemTotal.Equal(types.MustMoney("225.00")), "got %s", item.ItemTotal)
	assert.True(t, p.TotalAmount.Equal(types.MustMoney("225.00")), "got %s", p.TotalAmount)
}

func TestAddItem_LegacyShapeDefaultsUnitsPerPack(t *testing.T) {
	p := New("ph-1")

	item := p.AddItem(ItemInput{
		ProductName:  "Cough Syrup",
		PackQuantity: 3,
		PackPrice:    types.MustMoney("80"),
	})

	assert.Equal(t, int64(1), item.UnitsPerPack)
	assert.Equal(t, int64(3), item.TotalUnits)
	// Without a pack size the per-unit price is the pack price itself.
	assert.True(t, item.PricePerUnit.Equal(types.MustMoney("80")), "got %s", item.PricePerUnit)
}

func TestAddItem_RoundsPerUnitPrice(t *testing.T) {
	p := New("ph-1")

	item := p.AddItem(ItemInput{
		ProductName:  "Dolo 650",
		PackQuantity: 1,
		UnitsPerPack: 3,
		PackPrice:    types.MustMoney("10.00"),
	})

	assert.True(t, item.PricePerUnit.Equal(types.MustMoney("3.33")), "got %s", item.PricePerUnit)
	// The line total comes off the pack price, not the rounded unit price.
	assert.True(t, item.ItemTotal.Equal(types.MustMoney("10.00")), "got %s", item.ItemTotal)
}

func TestAddItem_AccumulatesTotal(t *testing.T) {
	p := New("ph-1")

	p.AddItem(ItemInput{ProductName: "A", PackQuantity: 2, PackPrice: types.MustMoney("10")})
	p.AddItem(ItemInput{ProductName: "B", PackQuantity: 1, PackPrice: types.MustMoney("5.50")})

	assert.Len(t, p.Items, 2)
	assert.Equal(t, 2, p.Items[1].LineNo)
	assert.True(t, p.TotalAmount.Equal(types.MustMoney("25.50")), "got %s", p.TotalAmount)
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("empty document", func(t *testing.T) {
		p := New("ph-1")
		require.Error(t, p.Validate(ctx))
	})

	t.Run("missing product name", func(t *testing.T) {
		p := New("ph-1")
		p.AddItem(ItemInput{PackQuantity: 1, PackPrice: types.MustMoney("1")})
		require.Error(t, p.Validate(ctx))
	})

	t.Run("zero pack quantity", func(t *testing.T) {
		p := New("ph-1")
		p.AddItem(ItemInput{ProductName: "A", PackPrice: types.MustMoney("1")})
		require.Error(t, p.Validate(ctx))
	})

	t.Run("valid", func(t *testing.T) {
		p := New("ph-1")
		p.AddItem(ItemInput{ProductName: "A", PackQuantity: 1, PackPrice: types.MustMoney("1")})
		require.NoError(t, p.Validate(ctx))
	})
}
