// Package report turns raw sales, transactions and products into the
// PeriodReport shape: per-window totals, profit/loss under either basis,
// breakdowns, margins, growth and stock classification. Every function is
// total over partial data; missing values contribute zero.
package report

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"bizconsole/internal/model"
)

const topProductsLimit = 5

// Input is the raw data a rollup is computed from.
type Input struct {
	Sales []model.Sale
	// Transactions feed purchases. A nil slice means purchases are not
	// tracked and profit_loss falls back to the per-sale basis.
	Transactions []model.Transaction
	// Products supply cost prices and categories.
	Products []model.Product
}

// Window is a half-open time range [Start, End).
type Window struct {
	Kind  model.PeriodKind
	Label string
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// WindowFor returns the window of the given kind containing at, in at's
// location. Weeks start on Monday; the weekly label numbers weeks within the
// month as ceil(day / 7).
func WindowFor(kind model.PeriodKind, at time.Time) Window {
	loc := at.Location()
	day := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, loc)
	switch kind {
	case model.PeriodWeekly:
		start := day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
		return Window{Kind: kind, Label: fmt.Sprintf("Week %d", (at.Day()+6)/7), Start: start, End: start.AddDate(0, 0, 7)}
	case model.PeriodMonthly:
		start := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, loc)
		return Window{Kind: kind, Label: at.Month().String(), Start: start, End: start.AddDate(0, 1, 0)}
	case model.PeriodYearly:
		start := time.Date(at.Year(), time.January, 1, 0, 0, 0, 0, loc)
		return Window{Kind: kind, Label: strconv.Itoa(at.Year()), Start: start, End: start.AddDate(1, 0, 0)}
	default:
		return Window{Kind: model.PeriodDaily, Label: day.Format("2006-01-02"), Start: day, End: day.AddDate(0, 0, 1)}
	}
}

// PriorWindow returns the window immediately preceding w.
func PriorWindow(w Window) Window {
	return WindowFor(w.Kind, w.Start.Add(-time.Nanosecond))
}

// Build computes the daily, weekly, monthly and yearly reports at time at.
func Build(in Input, at time.Time) model.ReportBundle {
	return model.ReportBundle{
		Daily:   Rollup(in, WindowFor(model.PeriodDaily, at)),
		Weekly:  Rollup(in, WindowFor(model.PeriodWeekly, at)),
		Monthly: Rollup(in, WindowFor(model.PeriodMonthly, at)),
		Yearly:  Rollup(in, WindowFor(model.PeriodYearly, at)),
	}
}

// Rollup aggregates the sales and purchases falling inside w.
//
// With purchases tracked, profit_loss = sales - purchases. Otherwise
// profit_loss = Σ per-sale profit, and Purchases is reported as the implied
// cost of goods sold (sales - profit) so the sales - purchases identity
// holds for every report.
func Rollup(in Input, w Window) model.PeriodReport {
	loc := w.Start.Location()
	costs, categories := index(in.Products)
	sales := in.Sales
	if sales == nil && in.Transactions != nil {
		sales = SalesFromTransactions(in.Transactions)
	}

	var included []model.Sale
	for _, s := range sales {
		if w.Contains(s.SaleDate.In(loc)) {
			included = append(included, s)
		}
	}

	r := model.PeriodReport{
		Kind:         w.Kind,
		Label:        w.Label,
		Start:        w.Start,
		Sales:        decimal.Zero,
		Transactions: len(included),
	}
	for _, s := range included {
		r.Sales = r.Sales.Add(s.TotalAmount)
	}
	r.Profit = ProfitLossFromSaleProfit(included, costs)

	if in.Transactions != nil {
		purchases := decimal.Zero
		for _, t := range in.Transactions {
			if t.Type == model.TransactionPurchase && w.Contains(t.Date.In(loc)) {
				purchases = purchases.Add(t.TotalAmount)
			}
		}
		r.Purchases = purchases
		r.ProfitLoss = ProfitLossFromPurchases(r.Sales, purchases)
		r.Basis = model.BasisPurchases
	} else {
		r.ProfitLoss = r.Profit
		r.Purchases = r.Sales.Sub(r.Profit)
		r.Basis = model.BasisSaleProfit
	}

	r.TopProducts = topProducts(included)
	r.BySeller = bySeller(included)
	switch w.Kind {
	case model.PeriodWeekly:
		r.DailyBreakdown = byDay(included, w)
	case model.PeriodMonthly:
		r.CategoryBreakdown = byCategory(included, categories, r.Sales)
	case model.PeriodYearly:
		r.MonthlyBreakdown = byMonth(included, costs, loc)
	}
	r.Normalize()
	return r
}

// SalesFromTransactions treats each SALE transaction as a one-line sale.
func SalesFromTransactions(txs []model.Transaction) []model.Sale {
	out := make([]model.Sale, 0, len(txs))
	for _, t := range txs {
		if t.Type != model.TransactionSale {
			continue
		}
		out = append(out, model.Sale{
			ID:            t.ID,
			Items:         []model.SaleItem{{ProductID: t.ProductID, ProductName: t.ProductName, Quantity: t.Quantity, UnitPrice: t.UnitPrice}},
			PaymentMethod: model.PaymentCash,
			TotalAmount:   t.TotalAmount,
			Profit:        decimal.NewNullDecimal(t.Profit),
			SaleDate:      t.Date,
		})
	}
	return out
}

func index(products []model.Product) (map[int64]decimal.Decimal, map[int64]string) {
	costs := make(map[int64]decimal.Decimal, len(products))
	categories := make(map[int64]string, len(products))
	for _, p := range products {
		costs[p.ID] = p.CostPrice
		categories[p.ID] = p.Category
	}
	return costs, categories
}

func topProducts(sales []model.Sale) []model.ProductBreakdown {
	acc := map[int64]*model.ProductBreakdown{}
	var order []int64
	for _, s := range sales {
		for _, it := range s.Items {
			b, ok := acc[it.ProductID]
			if !ok {
				b = &model.ProductBreakdown{ProductID: it.ProductID, Name: it.ProductName, Revenue: decimal.Zero}
				acc[it.ProductID] = b
				order = append(order, it.ProductID)
			}
			if b.Name == "" {
				b.Name = it.ProductName
			}
			b.Quantity += it.Quantity
			b.Revenue = b.Revenue.Add(it.Subtotal())
		}
	}
	out := make([]model.ProductBreakdown, 0, len(order))
	for _, id := range order {
		out = append(out, *acc[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].Quantity > out[j].Quantity
	})
	if len(out) > topProductsLimit {
		out = out[:topProductsLimit]
	}
	return out
}

func bySeller(sales []model.Sale) []model.SellerBreakdown {
	acc := map[int64]*model.SellerBreakdown{}
	var order []int64
	for _, s := range sales {
		b, ok := acc[s.SellerID]
		if !ok {
			b = &model.SellerBreakdown{SellerID: s.SellerID, Seller: s.SellerName, TotalSales: decimal.Zero}
			acc[s.SellerID] = b
			order = append(order, s.SellerID)
		}
		if b.Seller == "" {
			b.Seller = s.SellerName
		}
		b.TotalSales = b.TotalSales.Add(s.TotalAmount)
		b.Transactions++
	}
	out := make([]model.SellerBreakdown, 0, len(order))
	for _, id := range order {
		out = append(out, *acc[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalSales.GreaterThan(out[j].TotalSales) })
	return out
}

// byDay always returns seven rows, Monday first.
func byDay(sales []model.Sale, w Window) []model.DayBreakdown {
	out := make([]model.DayBreakdown, 7)
	for i := range out {
		out[i] = model.DayBreakdown{Day: w.Start.AddDate(0, 0, i).Weekday().String(), Sales: decimal.Zero}
	}
	loc := w.Start.Location()
	for _, s := range sales {
		d := s.SaleDate.In(loc)
		i := (int(d.Weekday()) + 6) % 7
		out[i].Sales = out[i].Sales.Add(s.TotalAmount)
		out[i].Transactions++
	}
	return out
}

// byCategory splits each sale's items by product category. Sales without
// items count toward "Uncategorized".
func byCategory(sales []model.Sale, categories map[int64]string, total decimal.Decimal) []model.CategoryBreakdown {
	const uncategorized = "Uncategorized"
	acc := map[string]decimal.Decimal{}
	var order []string
	add := func(cat string, v decimal.Decimal) {
		if cat == "" {
			cat = uncategorized
		}
		if _, ok := acc[cat]; !ok {
			order = append(order, cat)
		}
		acc[cat] = acc[cat].Add(v)
	}
	for _, s := range sales {
		itemsTotal := s.ItemsTotal()
		if len(s.Items) == 0 || itemsTotal.IsZero() {
			add(uncategorized, s.TotalAmount)
			continue
		}
		// Distribute total_amount (which may include server-side
		// adjustments) proportionally to item subtotals.
		for _, it := range s.Items {
			share := s.TotalAmount.Mul(it.Subtotal()).Div(itemsTotal)
			add(categories[it.ProductID], share)
		}
	}
	out := make([]model.CategoryBreakdown, 0, len(order))
	for _, cat := range order {
		out = append(out, model.CategoryBreakdown{
			Category:   cat,
			Sales:      acc[cat].Round(2),
			Percentage: pct(acc[cat], total).Round(2),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sales.GreaterThan(out[j].Sales) })
	return out
}

// byMonth always returns twelve rows, January first.
func byMonth(sales []model.Sale, costs map[int64]decimal.Decimal, loc *time.Location) []model.MonthBreakdown {
	out := make([]model.MonthBreakdown, 12)
	for i := range out {
		out[i] = model.MonthBreakdown{Month: time.Month(i + 1).String(), Sales: decimal.Zero, Profit: decimal.Zero}
	}
	for _, s := range sales {
		m := s.SaleDate.In(loc).Month() - 1
		out[m].Sales = out[m].Sales.Add(s.TotalAmount)
		out[m].Profit = out[m].Profit.Add(SaleProfit(s, costs))
	}
	return out
}
