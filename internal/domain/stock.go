package domain

// StockLevel classifies an inventory quantity for display and alerting
type StockLevel string

const (
	StockOut    StockLevel = "out_of_stock"
	StockLow    StockLevel = "low"
	StockNormal StockLevel = "normal"
)

// LowStockCutoff is the quantity at or below which an item counts as low
// (but not out of) stock.
const LowStockCutoff = 3

// ClassifyStock maps an on-hand quantity to its stock level. All views
// and alerts derive the level through this function.
func ClassifyStock(quantity int) StockLevel {
	switch {
	case quantity <= 0:
		return StockOut
	case quantity <= LowStockCutoff:
		return StockLow
	default:
		return StockNormal
	}
}
