package report

import (
	"sort"

	"bizconsole/internal/model"
)

// StockLevel is the fixed-threshold classification of a stock count.
type StockLevel string

const (
	OutOfStock StockLevel = "OUT_OF_STOCK"
	Critical   StockLevel = "CRITICAL"
	Low        StockLevel = "LOW"
	Adequate   StockLevel = "ADEQUATE"
)

// Fixed thresholds; per-product minimums are handled by LowStock instead.
const (
	CriticalBelow = 5
	LowBelow      = 10
)

// Classify buckets a stock count. Negative counts are treated as zero.
func Classify(stock int) StockLevel {
	switch {
	case stock <= 0:
		return OutOfStock
	case stock < CriticalBelow:
		return Critical
	case stock < LowBelow:
		return Low
	default:
		return Adequate
	}
}

// LowStock returns the products whose stock is below their own
// min_stock_level, in input order. Inactive products are included.
func LowStock(products []model.Product) []model.Product {
	out := make([]model.Product, 0)
	for _, p := range products {
		if p.IsLowStock() {
			out = append(out, p)
		}
	}
	return out
}

// StockAlert pairs a product with its fixed-threshold level.
type StockAlert struct {
	Product model.Product
	Level   StockLevel
}

// Alerts returns every product that is not ADEQUATE, emptiest first.
func Alerts(products []model.Product) []StockAlert {
	out := make([]StockAlert, 0)
	for _, p := range products {
		if lvl := Classify(p.StockQuantity); lvl != Adequate {
			out = append(out, StockAlert{Product: p, Level: lvl})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Product.StockQuantity < out[j].Product.StockQuantity
	})
	return out
}
