package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// SaleItem is one product line inside a sale.
type SaleItem struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Subtotal returns quantity * unit_price.
func (i SaleItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Sale is a completed sale. Flattened single-product sales returned by the
// backend are normalized into a one-line Items slice at decode time.
// Profit is invalid (not supplied) when the server did not compute it.
type Sale struct {
	ID            int64               `json:"id"`
	SellerID      int64               `json:"seller"`
	SellerName    string              `json:"seller_name"`
	Items         []SaleItem          `json:"items"`
	PaymentMethod PaymentMethod       `json:"payment_method"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	Profit        decimal.NullDecimal `json:"profit"`
	SaleDate      time.Time           `json:"sale_date"`
}

// Quantity is the number of units across all lines.
func (s Sale) Quantity() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// ItemsTotal is Σ quantity*unit_price over the lines.
func (s Sale) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

type saleItemWire struct {
	ProductID   json.RawMessage  `json:"product_id"`
	Product     json.RawMessage  `json:"product"`
	ProductName string           `json:"product_name"`
	Quantity    *int             `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	SalePrice   *decimal.Decimal `json:"sale_price"`
	Price       *decimal.Decimal `json:"price"`
}

func (w saleItemWire) item() SaleItem {
	id, name := reference(w.ProductID)
	if id == 0 {
		pid, pname := reference(w.Product)
		id = pid
		name = firstString(name, pname)
	}
	return SaleItem{
		ProductID:   id,
		ProductName: firstString(w.ProductName, name),
		Quantity:    firstInt(w.Quantity),
		UnitPrice:   firstDecimal(w.UnitPrice, w.SalePrice, w.Price),
	}
}

type saleWire struct {
	saleItemWire
	ID            json.RawMessage     `json:"id"`
	Seller        json.RawMessage     `json:"seller"`
	SellerName    string              `json:"seller_name"`
	Items         []saleItemWire      `json:"items"`
	PaymentMethod PaymentMethod       `json:"payment_method"`
	TotalAmount   *decimal.Decimal    `json:"total_amount"`
	Total         *decimal.Decimal    `json:"total"`
	Profit        decimal.NullDecimal `json:"profit"`
	SaleDate      *string             `json:"sale_date"`
	CreatedAt     *string             `json:"created_at"`
	Date          *string             `json:"date"`
}

// UnmarshalJSON accepts both the multi-item and the flattened
// (product, quantity, sale_price) shapes and derives total_amount when the
// server omitted it.
func (s *Sale) UnmarshalJSON(data []byte) error {
	var w saleWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	id, _ := reference(w.ID)
	sellerID, sellerName := reference(w.Seller)

	*s = Sale{
		ID:            id,
		SellerID:      sellerID,
		SellerName:    firstString(w.SellerName, sellerName),
		PaymentMethod: w.PaymentMethod,
		Profit:        w.Profit,
		SaleDate:      firstTime(w.SaleDate, w.CreatedAt, w.Date),
	}
	if s.PaymentMethod == "" {
		s.PaymentMethod = PaymentCash
	}

	switch {
	case len(w.Items) > 0:
		s.Items = make([]SaleItem, 0, len(w.Items))
		for _, iw := range w.Items {
			s.Items = append(s.Items, iw.item())
		}
	case len(w.ProductID) > 0 || len(w.Product) > 0:
		s.Items = []SaleItem{w.saleItemWire.item()}
	default:
		s.Items = []SaleItem{}
	}

	if w.TotalAmount != nil {
		s.TotalAmount = *w.TotalAmount
	} else if w.Total != nil {
		s.TotalAmount = *w.Total
	} else {
		s.TotalAmount = s.ItemsTotal()
	}
	return nil
}

// SalePayload is one of the two accepted POST /sales/ bodies:
// SingleSaleRequest or CartSaleRequest.
type SalePayload interface {
	salePayload()
}

// SingleSaleRequest is the flattened one-product sale.
type SingleSaleRequest struct {
	ProductID     int64           `json:"product_id"     validate:"required,gt=0"`
	Quantity      int             `json:"quantity"       validate:"required,min=1"`
	SalePrice     decimal.Decimal `json:"sale_price"     validate:"min=0"`
	PaymentMethod PaymentMethod   `json:"payment_method" validate:"required,oneof=CASH CARD MOBILE_MONEY"`
}

// SaleLine is one line of a CartSaleRequest.
type SaleLine struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Quantity  int             `json:"quantity"   validate:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"min=0"`
}

// CartSaleRequest is a multi-item sale built from a point-of-sale cart.
type CartSaleRequest struct {
	Items         []SaleLine    `json:"items"          validate:"required,min=1,dive"`
	PaymentMethod PaymentMethod `json:"payment_method" validate:"required,oneof=CASH CARD MOBILE_MONEY"`
}

func (SingleSaleRequest) salePayload() {}
func (CartSaleRequest) salePayload()   {}

// Total is Σ quantity*unit_price over the request lines.
func (r CartSaleRequest) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range r.Items {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}
