package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taller-labs/workshop-api/internal/domain"
)

func testItem(name string, price string, quantity int) *domain.InventoryItem {
	p, _ := decimal.NewFromString(price)
	item := &domain.InventoryItem{
		Name:     name,
		Price:    p,
		Quantity: quantity,
	}
	item.ID = uuid.New()
	return item
}

func TestCart_AddItem(t *testing.T) {
	t.Run("adds a new line", func(t *testing.T) {
		cart := &domain.Cart{}
		item := testItem("Screen protector", "5.00", 10)

		require.NoError(t, cart.AddItem(item))

		require.Len(t, cart.Lines, 1)
		assert.Equal(t, item.ID, cart.Lines[0].ItemID)
		assert.Equal(t, 1, cart.Lines[0].Quantity)
		assert.True(t, cart.Lines[0].Subtotal.Equal(item.Price))
	})

	t.Run("increments an existing line", func(t *testing.T) {
		cart := &domain.Cart{}
		item := testItem("Battery", "20.00", 10)

		require.NoError(t, cart.AddItem(item))
		require.NoError(t, cart.AddItem(item))
		require.NoError(t, cart.AddItem(item))

		require.Len(t, cart.Lines, 1)
		assert.Equal(t, 3, cart.Lines[0].Quantity)
		assert.True(t, cart.Lines[0].Subtotal.Equal(decimal.RequireFromString("60.00")))
	})

	t.Run("rejects out of stock item and leaves cart unchanged", func(t *testing.T) {
		cart := &domain.Cart{}
		item := testItem("Rare part", "99.00", 0)

		err := cart.AddItem(item)
		assert.ErrorIs(t, err, domain.ErrOutOfStock)
		assert.Empty(t, cart.Lines)
	})

	t.Run("counts carted quantity against stock", func(t *testing.T) {
		cart := &domain.Cart{}
		item := testItem("Cable", "3.00", 2)

		require.NoError(t, cart.AddItem(item))
		require.NoError(t, cart.AddItem(item))

		err := cart.AddItem(item)
		assert.ErrorIs(t, err, domain.ErrOutOfStock)

		require.Len(t, cart.Lines, 1)
		assert.Equal(t, 2, cart.Lines[0].Quantity)
	})
}

func TestCart_Totals(t *testing.T) {
	t.Run("computes subtotal, tax and total", func(t *testing.T) {
		cart := &domain.Cart{}
		a := testItem("Charger", "15.50", 10)
		b := testItem("Case", "10.00", 10)

		require.NoError(t, cart.AddItem(a))
		require.NoError(t, cart.AddItem(b))

		totals := cart.Totals(decimal.NewFromInt(16))

		assert.Equal(t, "25.50", totals.Subtotal.StringFixed(2))
		assert.Equal(t, "4.08", totals.Tax.StringFixed(2))
		assert.Equal(t, "29.58", totals.Total.StringFixed(2))
	})

	t.Run("zero tax percent", func(t *testing.T) {
		cart := &domain.Cart{}
		require.NoError(t, cart.AddItem(testItem("Sticker", "1.00", 5)))

		totals := cart.Totals(decimal.Zero)

		assert.Equal(t, "1.00", totals.Subtotal.StringFixed(2))
		assert.Equal(t, "0.00", totals.Tax.StringFixed(2))
		assert.Equal(t, "1.00", totals.Total.StringFixed(2))
	})

	t.Run("empty cart totals are zero", func(t *testing.T) {
		cart := &domain.Cart{}
		totals := cart.Totals(decimal.NewFromInt(16))

		assert.True(t, totals.Subtotal.IsZero())
		assert.True(t, totals.Tax.IsZero())
		assert.True(t, totals.Total.IsZero())
	})

	t.Run("rounds tax to cents", func(t *testing.T) {
		cart := &domain.Cart{}
		require.NoError(t, cart.AddItem(testItem("Washer", "0.33", 10)))

		totals := cart.Totals(decimal.NewFromInt(16))

		// 0.33 * 16% = 0.0528, rounded to 0.05
		assert.Equal(t, "0.05", totals.Tax.StringFixed(2))
		assert.Equal(t, "0.38", totals.Total.StringFixed(2))
	})
}
