// Package cart is the point-of-sale cart: line items accumulated in memory
// and submitted as one multi-item sale.
//
//	EMPTY → ACCUMULATING → SUBMITTING → EMPTY          (success)
//	                                  → ACCUMULATING   (failure, lines kept)
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"bizconsole/internal/gateway"
	"bizconsole/internal/model"
)

type State int

const (
	Empty State = iota
	Accumulating
	Submitting
)

func (s State) String() string {
	switch s {
	case Empty:
		return "EMPTY"
	case Accumulating:
		return "ACCUMULATING"
	case Submitting:
		return "SUBMITTING"
	default:
		return "UNKNOWN"
	}
}

var (
	ErrEmptyCart  = errors.New("cart: nothing to submit")
	ErrOutOfStock = errors.New("cart: product out of stock")
	ErrSubmitting = errors.New("cart: submission in progress")
)

// SaleCreator is the part of the Sales client the cart needs.
type SaleCreator interface {
	Create(ctx context.Context, payload model.SalePayload) (gateway.Result[model.Sale], error)
}

// Line is one product in the cart. UnitPrice is the product price at the
// time it was first added.
type Line struct {
	ProductID int64
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is owned by a single point-of-sale session. Methods are safe for
// concurrent use; edits are refused while a submission is in flight.
type Cart struct {
	mu         sync.Mutex
	id         string
	lines      []Line
	submitting bool
	sales      SaleCreator
}

func New(sales SaleCreator) *Cart {
	return &Cart{id: uuid.NewString(), sales: sales}
}

// ID identifies the current cart; it changes after each successful submission.
func (c *Cart) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

func (c *Cart) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.submitting:
		return Submitting
	case len(c.lines) == 0:
		return Empty
	default:
		return Accumulating
	}
}

func (c *Cart) find(productID int64) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// Add puts qty units of p in the cart (qty < 1 counts as 1), incrementing an
// existing line. A product with zero stock is refused and the cart is left
// unchanged. Available stock is not otherwise enforced.
func (c *Cart) Add(p model.Product, qty int) error {
	if qty < 1 {
		qty = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return ErrSubmitting
	}
	if p.StockQuantity <= 0 {
		return ErrOutOfStock
	}
	if i := c.find(p.ID); i >= 0 {
		c.lines[i].Quantity += qty
		return nil
	}
	c.lines = append(c.lines, Line{ProductID: p.ID, Name: p.Name, UnitPrice: p.Price, Quantity: qty})
	return nil
}

// UpdateQuantity sets a line's quantity; qty < 1 removes the line. Unknown
// products are ignored.
func (c *Cart) UpdateQuantity(productID int64, qty int) error {
	if qty < 1 {
		return c.Remove(productID)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return ErrSubmitting
	}
	if i := c.find(productID); i >= 0 {
		c.lines[i].Quantity = qty
	}
	return nil
}

// Remove deletes a line. Removing an absent product is not an error.
func (c *Cart) Remove(productID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return ErrSubmitting
	}
	if i := c.find(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
	return nil
}

// Clear empties the cart.
func (c *Cart) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return ErrSubmitting
	}
	c.lines = nil
	return nil
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Line(nil), c.lines...)
}

// Total is Σ unit_price × quantity, recomputed on every call.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Submit sends the cart as one multi-item sale. On success the cart is
// emptied; on any failure it is left exactly as it was.
func (c *Cart) Submit(ctx context.Context, method model.PaymentMethod) (model.Sale, error) {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return model.Sale{}, ErrSubmitting
	}
	if len(c.lines) == 0 {
		c.mu.Unlock()
		return model.Sale{}, ErrEmptyCart
	}
	if method == "" {
		method = model.PaymentCash
	}
	req := model.CartSaleRequest{PaymentMethod: method, Items: make([]model.SaleLine, 0, len(c.lines))}
	for _, l := range c.lines {
		req.Items = append(req.Items, model.SaleLine{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	cartID := c.id
	c.submitting = true
	c.mu.Unlock()

	res, err := c.sales.Create(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
	if err != nil {
		log.Warn().Err(err).Str("cart_id", cartID).Int("lines", len(c.lines)).Msg("cart: submission failed, cart kept")
		return model.Sale{}, fmt.Errorf("submit cart: %w", err)
	}
	c.lines = nil
	c.id = uuid.NewString()
	log.Info().Str("cart_id", cartID).Int64("sale_id", res.Data.ID).Str("total", req.Total().String()).Msg("cart: sale submitted")
	return res.Data, nil
}
