package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizconsole/internal/apierror"
	"bizconsole/internal/gateway"
	"bizconsole/internal/model"
)

type stubSales struct {
	calls  int
	last   model.SalePayload
	err    error
	during func()
}

func (s *stubSales) Create(_ context.Context, p model.SalePayload) (gateway.Result[model.Sale], error) {
	s.calls++
	s.last = p
	if s.during != nil {
		s.during()
	}
	if s.err != nil {
		return gateway.Result[model.Sale]{}, s.err
	}
	return gateway.Result[model.Sale]{Data: model.Sale{ID: 42}, Source: model.SourceLive}, nil
}

var (
	productA = model.Product{ID: 1, Name: "4G Data Plan 10GB", Price: decimal.NewFromInt(25000), StockQuantity: 100}
	productB = model.Product{ID: 3, Name: "Business Bundle", Price: decimal.NewFromInt(150000), StockQuantity: 25}
	soldOut  = model.Product{ID: 9, Name: "Gone", Price: decimal.NewFromInt(10), StockQuantity: 0}
)

func TestCart_TotalScenario(t *testing.T) {
	c := New(&stubSales{})
	require.NoError(t, c.Add(productA, 2))
	require.NoError(t, c.Add(productB, 1))
	assert.True(t, c.Total().Equal(decimal.NewFromInt(200000)))

	require.NoError(t, c.Remove(productA.ID))
	assert.True(t, c.Total().Equal(decimal.NewFromInt(150000)))
}

func TestCart_AddThenRemoveRestoresState(t *testing.T) {
	c := New(&stubSales{})
	require.NoError(t, c.Add(productB, 1))
	before, beforeTotal := c.Lines(), c.Total()

	require.NoError(t, c.Add(productA, 3))
	require.NoError(t, c.Remove(productA.ID))

	assert.Equal(t, before, c.Lines())
	assert.True(t, beforeTotal.Equal(c.Total()))
}

func TestCart_OneAtATimeEqualsBulk(t *testing.T) {
	for n := 1; n <= 6; n++ {
		single, bulk := New(nil), New(nil)
		for i := 0; i < n; i++ {
			require.NoError(t, single.Add(productA, 1))
		}
		require.NoError(t, bulk.Add(productA, n))
		assert.True(t, single.Total().Equal(bulk.Total()), "n=%d", n)
		assert.Equal(t, single.Lines(), bulk.Lines())
	}
}

func TestCart_AddDefaultsAndStock(t *testing.T) {
	c := New(nil)
	assert.Equal(t, Empty, c.State())

	assert.ErrorIs(t, c.Add(soldOut, 1), ErrOutOfStock)
	assert.Equal(t, Empty, c.State())

	require.NoError(t, c.Add(productA, 0))
	require.Len(t, c.Lines(), 1)
	assert.Equal(t, 1, c.Lines()[0].Quantity)
	assert.Equal(t, Accumulating, c.State())
}

func TestCart_PriceSnapshottedAtAdd(t *testing.T) {
	c := New(nil)
	p := productA
	require.NoError(t, c.Add(p, 1))
	p.Price = decimal.NewFromInt(1)
	require.NoError(t, c.Add(p, 1))
	assert.True(t, c.Total().Equal(decimal.NewFromInt(50000)))
}

func TestCart_UpdateQuantity(t *testing.T) {
	c := New(nil)
	require.NoError(t, c.Add(productA, 1))

	require.NoError(t, c.UpdateQuantity(productA.ID, 4))
	assert.True(t, c.Total().Equal(decimal.NewFromInt(100000)))

	require.NoError(t, c.UpdateQuantity(999, 2))
	assert.Len(t, c.Lines(), 1)

	require.NoError(t, c.UpdateQuantity(productA.ID, 0))
	assert.Equal(t, Empty, c.State())
	require.NoError(t, c.Remove(productA.ID), "remove is idempotent")
}

func TestCart_SubmitEmptyDoesNotCallSales(t *testing.T) {
	sales := &stubSales{}
	c := New(sales)
	_, err := c.Submit(context.Background(), model.PaymentCash)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 0, sales.calls)
}

func TestCart_SubmitSuccessClears(t *testing.T) {
	sales := &stubSales{}
	c := New(sales)
	id := c.ID()
	require.NoError(t, c.Add(productA, 2))
	require.NoError(t, c.Add(productB, 1))

	sale, err := c.Submit(context.Background(), model.PaymentCard)
	require.NoError(t, err)
	assert.Equal(t, int64(42), sale.ID)
	assert.Equal(t, Empty, c.State())
	assert.NotEqual(t, id, c.ID())

	req, ok := sales.last.(model.CartSaleRequest)
	require.True(t, ok)
	assert.Equal(t, model.PaymentCard, req.PaymentMethod)
	require.Len(t, req.Items, 2)
	assert.Equal(t, model.SaleLine{ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(25000)}, req.Items[0])
	assert.True(t, req.Total().Equal(decimal.NewFromInt(200000)))
}

func TestCart_SubmitFailureKeepsLines(t *testing.T) {
	sales := &stubSales{err: apierror.Classify("POST /sales/", 500, nil)}
	c := New(sales)
	require.NoError(t, c.Add(productA, 2))
	id := c.ID()

	_, err := c.Submit(context.Background(), model.PaymentCash)
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.ServerError))
	assert.Equal(t, Accumulating, c.State())
	assert.Equal(t, id, c.ID())
	assert.True(t, c.Total().Equal(decimal.NewFromInt(50000)))

	sales.err = nil
	_, err = c.Submit(context.Background(), model.PaymentCash)
	require.NoError(t, err)
	assert.Equal(t, 2, sales.calls)
}

func TestCart_EditsRejectedWhileSubmitting(t *testing.T) {
	sales := &stubSales{}
	c := New(sales)
	require.NoError(t, c.Add(productA, 1))

	var addErr, removeErr, submitErr error
	var state State
	sales.during = func() {
		state = c.State()
		addErr = c.Add(productB, 1)
		removeErr = c.Remove(productA.ID)
		_, submitErr = c.Submit(context.Background(), model.PaymentCash)
	}
	_, err := c.Submit(context.Background(), model.PaymentCash)
	require.NoError(t, err)

	assert.Equal(t, Submitting, state)
	assert.True(t, errors.Is(addErr, ErrSubmitting))
	assert.True(t, errors.Is(removeErr, ErrSubmitting))
	assert.True(t, errors.Is(submitErr, ErrSubmitting))
	assert.Equal(t, 1, sales.calls)
}
