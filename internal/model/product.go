package model

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// Product is the client copy of a catalog entry owned by the backend.
// Price and CostPrice are non-negative; StockQuantity >= 0.
type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category_name"`
	Price         decimal.Decimal `json:"price"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	StockQuantity int             `json:"stock_quantity"`
	MinStockLevel int             `json:"min_stock_level"`
	Active        bool            `json:"is_active"`
}

// ProfitMargin is the per-unit margin: price - cost_price.
func (p Product) ProfitMargin() decimal.Decimal {
	return p.Price.Sub(p.CostPrice)
}

// IsLowStock reports whether stock is below the product's own minimum.
func (p Product) IsLowStock() bool {
	return p.StockQuantity < p.MinStockLevel
}

type productWire struct {
	ID            json.RawMessage  `json:"id"`
	Name          string           `json:"name"`
	CategoryName  string           `json:"category_name"`
	Category      json.RawMessage  `json:"category"`
	Price         *decimal.Decimal `json:"price"`
	CostPrice     *decimal.Decimal `json:"cost_price"`
	StockQuantity *int             `json:"stock_quantity"`
	Stock         *int             `json:"stock"`
	CurrentStock  *int             `json:"current_stock"`
	MinStockLevel *int             `json:"min_stock_level"`
	MinStock      *int             `json:"min_stock"`
	IsActive      *bool            `json:"is_active"`
}

// UnmarshalJSON resolves the field aliases used by different endpoints
// (stock / current_stock, category / category_name, min_stock) and clamps
// negative stock to zero. A missing is_active means active, matching the
// backend default.
func (p *Product) UnmarshalJSON(data []byte) error {
	var w productWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	id, _ := reference(w.ID)
	catID, catName := reference(w.Category)
	category := firstString(w.CategoryName, catName)
	if category == "" && catID != 0 {
		category = strconv.FormatInt(catID, 10)
	}

	*p = Product{
		ID:            id,
		Name:          w.Name,
		Category:      category,
		Price:         firstDecimal(w.Price),
		CostPrice:     firstDecimal(w.CostPrice),
		StockQuantity: firstInt(w.StockQuantity, w.Stock, w.CurrentStock),
		MinStockLevel: firstInt(w.MinStockLevel, w.MinStock),
		Active:        w.IsActive == nil || *w.IsActive,
	}
	if p.StockQuantity < 0 {
		p.StockQuantity = 0
	}
	return nil
}

// ProductRequest is the create/update payload for /products/.
type ProductRequest struct {
	Name          string          `json:"name"            validate:"required,min=1,max=200"`
	Category      string          `json:"category_name"   validate:"required"`
	Price         decimal.Decimal `json:"price"           validate:"min=0"`
	CostPrice     decimal.Decimal `json:"cost_price"      validate:"min=0"`
	StockQuantity int             `json:"stock_quantity"  validate:"min=0"`
	MinStockLevel int             `json:"min_stock_level" validate:"min=0"`
	Active        bool            `json:"is_active"`
}
