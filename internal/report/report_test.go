package report

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizconsole/internal/model"
)

// Thursday 15 Oct 2026, week of Monday 12 Oct.
var at = time.Date(2026, time.October, 15, 15, 0, 0, 0, time.UTC)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func sale(id int64, when time.Time, productID int64, qty int, unit int64) model.Sale {
	item := model.SaleItem{ProductID: productID, ProductName: "p", Quantity: qty, UnitPrice: dec(unit)}
	return model.Sale{ID: id, SellerID: 1, SellerName: "seller1", Items: []model.SaleItem{item}, TotalAmount: item.Subtotal(), SaleDate: when}
}

func TestClassify_Boundaries(t *testing.T) {
	cases := map[int]StockLevel{
		-3: OutOfStock, 0: OutOfStock,
		1: Critical, 4: Critical,
		5: Low, 9: Low,
		10: Adequate, 1000: Adequate,
	}
	for stock, want := range cases {
		assert.Equal(t, want, Classify(stock), "stock=%d", stock)
	}
}

func TestLowStock_UsesPerProductMinimum(t *testing.T) {
	products := []model.Product{
		{ID: 1, StockQuantity: 8, MinStockLevel: 10},
		{ID: 2, StockQuantity: 12, MinStockLevel: 5},
		{ID: 3, StockQuantity: 0, MinStockLevel: 1},
	}
	got := LowStock(products)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)

	assert.Empty(t, LowStock(nil))
	assert.NotNil(t, LowStock(nil))
}

func TestAlerts_IndependentOfMinimum(t *testing.T) {
	products := []model.Product{
		{ID: 1, StockQuantity: 8, MinStockLevel: 5}, // LOW by threshold, not below minimum
		{ID: 2, StockQuantity: 50, MinStockLevel: 100},
		{ID: 3, StockQuantity: 0},
	}
	alerts := Alerts(products)
	require.Len(t, alerts, 2)
	assert.Equal(t, OutOfStock, alerts[0].Level)
	assert.Equal(t, Low, alerts[1].Level)
}

func TestMarginPct(t *testing.T) {
	assert.True(t, MarginPct(dec(50), dec(0)).IsZero())
	assert.True(t, MarginPct(dec(0), dec(0)).IsZero())
	assert.True(t, MarginPct(dec(25), dec(200)).Equal(decimal.NewFromFloat(12.5)))
}

func TestGrowthPct(t *testing.T) {
	g, ok := GrowthPct(dec(150), dec(100))
	assert.True(t, ok)
	assert.True(t, g.Equal(dec(50)))

	g, ok = GrowthPct(dec(80), dec(100))
	assert.True(t, ok)
	assert.True(t, g.Equal(dec(-20)))

	assert.NotPanics(t, func() {
		g, ok = GrowthPct(dec(500), decimal.Zero)
	})
	assert.False(t, ok)
	assert.True(t, g.IsZero())
}

func TestWindowFor(t *testing.T) {
	w := WindowFor(model.PeriodWeekly, at)
	assert.Equal(t, "Week 3", w.Label)
	assert.Equal(t, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), w.End)

	sunday := time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, w.Start, WindowFor(model.PeriodWeekly, sunday).Start)

	assert.Equal(t, "2026-10-15", WindowFor(model.PeriodDaily, at).Label)
	assert.Equal(t, "October", WindowFor(model.PeriodMonthly, at).Label)
	assert.Equal(t, "2026", WindowFor(model.PeriodYearly, at).Label)

	prior := PriorWindow(WindowFor(model.PeriodMonthly, at))
	assert.Equal(t, "September", prior.Label)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), prior.Start)
}

func TestRollup_PartitionsByWindow(t *testing.T) {
	in := Input{Sales: []model.Sale{
		sale(1, at.Add(-time.Hour), 1, 2, 100),                            // today
		sale(2, time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC), 1, 1, 100), // Monday
		sale(3, time.Date(2026, 10, 2, 9, 0, 0, 0, time.UTC), 2, 1, 300),  // this month
		sale(4, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), 2, 1, 1000),  // this year
		sale(5, time.Date(2025, 12, 31, 9, 0, 0, 0, time.UTC), 2, 1, 7),   // last year
	}}
	b := Build(in, at)

	assert.True(t, b.Daily.Sales.Equal(dec(200)))
	assert.Equal(t, 1, b.Daily.Transactions)
	assert.True(t, b.Weekly.Sales.Equal(dec(300)))
	assert.True(t, b.Monthly.Sales.Equal(dec(600)))
	assert.True(t, b.Yearly.Sales.Equal(dec(1600)))
	assert.Equal(t, 4, b.Yearly.Transactions)

	require.Len(t, b.Weekly.DailyBreakdown, 7)
	assert.Equal(t, "Monday", b.Weekly.DailyBreakdown[0].Day)
	assert.True(t, b.Weekly.DailyBreakdown[0].Sales.Equal(dec(100)))
	assert.True(t, b.Weekly.DailyBreakdown[3].Sales.Equal(dec(200)))

	require.Len(t, b.Yearly.MonthlyBreakdown, 12)
	assert.True(t, b.Yearly.MonthlyBreakdown[2].Sales.Equal(dec(1000)))
}

func TestRollup_ProfitUsesSuppliedOrDerived(t *testing.T) {
	withProfit := sale(1, at, 1, 1, 100)
	withProfit.Profit = decimal.NewNullDecimal(dec(40))
	derived := sale(2, at, 2, 2, 50) // cost 30 each -> profit 40

	in := Input{
		Sales:    []model.Sale{withProfit, derived},
		Products: []model.Product{{ID: 2, CostPrice: dec(30)}},
	}
	r := Rollup(in, WindowFor(model.PeriodDaily, at))

	assert.True(t, r.Profit.Equal(dec(80)))
	assert.Equal(t, model.BasisSaleProfit, r.Basis)
	assert.True(t, r.ProfitLoss.Equal(dec(80)))
	assert.True(t, Margin(r).Equal(dec(40)))
}

func TestRollup_PurchaseBasis(t *testing.T) {
	in := Input{
		Sales: []model.Sale{sale(1, at, 1, 10, 100)},
		Transactions: []model.Transaction{
			{Type: model.TransactionPurchase, TotalAmount: dec(400), Date: at.Add(-time.Hour)},
			{Type: model.TransactionPurchase, TotalAmount: dec(999), Date: at.AddDate(0, 0, -40)},
			{Type: model.TransactionReturn, TotalAmount: dec(50), Date: at},
		},
	}
	r := Rollup(in, WindowFor(model.PeriodDaily, at))

	assert.Equal(t, model.BasisPurchases, r.Basis)
	assert.True(t, r.Purchases.Equal(dec(400)))
	assert.True(t, r.ProfitLoss.Equal(dec(600)))
}

func TestRollup_SalesDerivedFromTransactions(t *testing.T) {
	in := Input{Transactions: []model.Transaction{
		{ID: 1, Type: model.TransactionSale, ProductID: 1, Quantity: 2, UnitPrice: dec(10), TotalAmount: dec(20), Profit: dec(5), Date: at},
		{ID: 2, Type: model.TransactionPurchase, TotalAmount: dec(8), Date: at},
	}}
	r := Rollup(in, WindowFor(model.PeriodDaily, at))
	assert.True(t, r.Sales.Equal(dec(20)))
	assert.True(t, r.Profit.Equal(dec(5)))
	assert.True(t, r.ProfitLoss.Equal(dec(12)))
}

func TestRollup_EmptyInputIsTotal(t *testing.T) {
	b := Build(Input{}, at)
	for _, r := range []model.PeriodReport{b.Daily, b.Weekly, b.Monthly, b.Yearly} {
		assert.True(t, r.Sales.IsZero())
		assert.True(t, r.ProfitLoss.IsZero())
		assert.NotNil(t, r.TopProducts)
		assert.NotNil(t, r.BySeller)
		assert.NotNil(t, r.CategoryBreakdown)
		assert.True(t, Margin(r).IsZero())
	}
}

func TestRollup_Breakdowns(t *testing.T) {
	a := sale(1, at, 1, 3, 100)
	b := sale(2, at, 2, 1, 500)
	b.SellerID, b.SellerName = 2, "seller2"
	in := Input{
		Sales:    []model.Sale{a, b},
		Products: []model.Product{{ID: 1, Category: "Data Plans"}, {ID: 2, Category: "Routers"}},
	}
	r := Rollup(in, WindowFor(model.PeriodMonthly, at))

	require.Len(t, r.TopProducts, 2)
	assert.Equal(t, int64(2), r.TopProducts[0].ProductID)
	assert.Equal(t, 3, r.TopProducts[1].Quantity)

	require.Len(t, r.BySeller, 2)
	assert.Equal(t, "seller2", r.BySeller[0].Seller)

	require.Len(t, r.CategoryBreakdown, 2)
	assert.Equal(t, "Routers", r.CategoryBreakdown[0].Category)
	assert.True(t, r.CategoryBreakdown[0].Percentage.Equal(decimal.RequireFromString("62.5")))
}

// Randomized data must keep profit_loss = sales - purchases under both bases.
func TestRollup_ProfitLossIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for round := 0; round < 50; round++ {
		var sales []model.Sale
		var txs []model.Transaction
		n := rng.Intn(40)
		for i := 0; i < n; i++ {
			when := start.Add(time.Duration(rng.Intn(365*24)) * time.Hour)
			s := sale(int64(i), when, int64(rng.Intn(5)), rng.Intn(5)+1, int64(rng.Intn(100000)))
			if rng.Intn(2) == 0 {
				s.Profit = decimal.NewNullDecimal(dec(int64(rng.Intn(5000))))
			}
			sales = append(sales, s)
			txs = append(txs, model.Transaction{Type: model.TransactionPurchase, TotalAmount: dec(int64(rng.Intn(50000))), Date: when})
		}
		products := []model.Product{{ID: 1, CostPrice: dec(100)}, {ID: 3, CostPrice: dec(7)}}
		for _, in := range []Input{{Sales: sales, Products: products}, {Sales: sales, Transactions: txs, Products: products}} {
			b := Build(in, at)
			for _, r := range []model.PeriodReport{b.Daily, b.Weekly, b.Monthly, b.Yearly} {
				assert.True(t, r.ProfitLoss.Equal(r.Sales.Sub(r.Purchases)), "round %d %s basis %s", round, r.Kind, r.Basis)
			}
		}
	}
}

func TestCompare(t *testing.T) {
	cur := model.PeriodReport{Sales: dec(200), Profit: dec(50), Transactions: 4}
	prior := model.PeriodReport{Sales: dec(100), Transactions: 0}
	g := Compare(cur, prior)
	assert.True(t, g.SalesDefined)
	assert.True(t, g.Sales.Equal(dec(100)))
	assert.False(t, g.ProfitDefined)
	assert.False(t, g.TxDefined)
}
