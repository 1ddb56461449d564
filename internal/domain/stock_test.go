package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/taller-labs/workshop-api/internal/domain"
)

func TestClassifyStock(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		want     domain.StockLevel
	}{
		{"zero is out of stock", 0, domain.StockOut},
		{"negative is out of stock", -1, domain.StockOut},
		{"one is low", 1, domain.StockLow},
		{"cutoff is low", domain.LowStockCutoff, domain.StockLow},
		{"above cutoff is normal", domain.LowStockCutoff + 1, domain.StockNormal},
		{"large quantity is normal", 500, domain.StockNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ClassifyStock(tt.quantity))
		})
	}
}

func TestNormalizeOrderStatus(t *testing.T) {
	t.Run("legacy active maps to pending", func(t *testing.T) {
		assert.Equal(t, domain.OrderStatusPending, domain.NormalizeOrderStatus("active"))
	})

	t.Run("current values pass through", func(t *testing.T) {
		assert.Equal(t, domain.OrderStatusInProgress, domain.NormalizeOrderStatus("in_progress"))
		assert.Equal(t, domain.OrderStatusDelivered, domain.NormalizeOrderStatus("delivered"))
	})

	t.Run("unknown values pass through invalid", func(t *testing.T) {
		assert.False(t, domain.NormalizeOrderStatus("bogus").IsValid())
	})
}
