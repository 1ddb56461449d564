package domain

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrOutOfStock is returned when a cart add would exceed available stock
var ErrOutOfStock = errors.New("item is out of stock")

// CartLine is one product line in an in-progress sale
type CartLine struct {
	ItemID   uuid.UUID
	Name     string
	Price    decimal.Decimal
	Quantity int
	Subtotal decimal.Decimal
}

// Cart accumulates sale lines before commit. The zero value is usable.
type Cart struct {
	Lines []CartLine
}

// AddItem adds one unit of the given inventory item. If the item is
// already in the cart its quantity and subtotal are updated, otherwise a
// new line is appended. Available stock is checked against what the cart
// already holds; on ErrOutOfStock the cart is left unchanged.
func (c *Cart) AddItem(item *InventoryItem) error {
	carted := 0
	for _, l := range c.Lines {
		if l.ItemID == item.ID {
			carted = l.Quantity
			break
		}
	}
	if item.Quantity-carted <= 0 {
		return ErrOutOfStock
	}

	for i := range c.Lines {
		if c.Lines[i].ItemID == item.ID {
			c.Lines[i].Quantity++
			c.Lines[i].Subtotal = item.Price.Mul(decimal.NewFromInt(int64(c.Lines[i].Quantity)))
			return nil
		}
	}

	c.Lines = append(c.Lines, CartLine{
		ItemID:   item.ID,
		Name:     item.Name,
		Price:    item.Price,
		Quantity: 1,
		Subtotal: item.Price,
	})
	return nil
}

// CartTotals holds the computed amounts for a cart
type CartTotals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Totals computes subtotal, tax and total for the cart at the given tax
// percentage, rounding each amount to cents.
func (c *Cart) Totals(taxPercent decimal.Decimal) CartTotals {
	subtotal := decimal.Zero
	for _, l := range c.Lines {
		subtotal = subtotal.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(taxPercent).Div(decimal.NewFromInt(100)).Round(2)
	return CartTotals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax).Round(2),
	}
}
