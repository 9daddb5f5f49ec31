package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single-product stock movement.
type Transaction struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product"`
	ProductName string          `json:"product_name"`
	Type        TransactionType `json:"transaction_type"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Profit      decimal.Decimal `json:"profit"`
	Date        time.Time       `json:"transaction_date"`
	Notes       string          `json:"notes"`
}

type transactionWire struct {
	ID              json.RawMessage  `json:"id"`
	Product         json.RawMessage  `json:"product"`
	ProductID       json.RawMessage  `json:"product_id"`
	ProductName     string           `json:"product_name"`
	TransactionType TransactionType  `json:"transaction_type"`
	Type            TransactionType  `json:"type"`
	Quantity        *int             `json:"quantity"`
	UnitPrice       *decimal.Decimal `json:"unit_price"`
	TotalAmount     *decimal.Decimal `json:"total_amount"`
	Amount          *decimal.Decimal `json:"amount"`
	Profit          *decimal.Decimal `json:"profit"`
	TransactionDate *string          `json:"transaction_date"`
	Date            *string          `json:"date"`
	Notes           string           `json:"notes"`
}

// UnmarshalJSON resolves type/transaction_type, date/transaction_date and
// amount/total_amount aliases. total_amount falls back to
// quantity*unit_price.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var w transactionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	id, _ := reference(w.ID)
	pid, pname := reference(w.Product)
	if pid == 0 {
		pid, _ = reference(w.ProductID)
	}
	typ := w.TransactionType
	if typ == "" {
		typ = w.Type
	}
	*t = Transaction{
		ID:          id,
		ProductID:   pid,
		ProductName: firstString(w.ProductName, pname),
		Type:        typ,
		Quantity:    firstInt(w.Quantity),
		UnitPrice:   firstDecimal(w.UnitPrice),
		Profit:      firstDecimal(w.Profit),
		Date:        firstTime(w.TransactionDate, w.Date),
		Notes:       w.Notes,
	}
	switch {
	case w.TotalAmount != nil:
		t.TotalAmount = *w.TotalAmount
	case w.Amount != nil:
		t.TotalAmount = *w.Amount
	default:
		t.TotalAmount = t.UnitPrice.Mul(decimal.NewFromInt(int64(t.Quantity)))
	}
	// Only sales carry profit.
	if t.Type != TransactionSale {
		t.Profit = decimal.Zero
	}
	return nil
}

// TransactionRequest is the create/update payload for /transactions/.
type TransactionRequest struct {
	ProductID int64           `json:"product"          validate:"required,gt=0"`
	Type      TransactionType `json:"transaction_type" validate:"required,oneof=SALE PURCHASE RETURN"`
	Quantity  int             `json:"quantity"         validate:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price"       validate:"min=0"`
	Notes     string          `json:"notes,omitempty"`
}
