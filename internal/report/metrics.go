package report

import (
	"github.com/shopspring/decimal"

	"bizconsole/internal/model"
)

var hundred = decimal.NewFromInt(100)

// MarginPct is profit / sales * 100, or 0 when sales is zero.
func MarginPct(profit, sales decimal.Decimal) decimal.Decimal {
	return pct(profit, sales)
}

func pct(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// Margin is MarginPct over a report's totals.
func Margin(r model.PeriodReport) decimal.Decimal {
	return MarginPct(r.Profit, r.Sales)
}

// GrowthPct is (current - prior) / prior * 100. When prior is zero the
// change is undefined: it returns 0 and false.
func GrowthPct(current, prior decimal.Decimal) (decimal.Decimal, bool) {
	if prior.IsZero() {
		return decimal.Zero, false
	}
	return current.Sub(prior).Div(prior).Mul(hundred), true
}

// Growth compares two reports of the same kind.
type Growth struct {
	Sales         decimal.Decimal
	SalesDefined  bool
	Profit        decimal.Decimal
	ProfitDefined bool
	Transactions  decimal.Decimal
	TxDefined     bool
}

func Compare(current, prior model.PeriodReport) Growth {
	var g Growth
	g.Sales, g.SalesDefined = GrowthPct(current.Sales, prior.Sales)
	g.Profit, g.ProfitDefined = GrowthPct(current.Profit, prior.Profit)
	g.Transactions, g.TxDefined = GrowthPct(
		decimal.NewFromInt(int64(current.Transactions)),
		decimal.NewFromInt(int64(prior.Transactions)),
	)
	return g
}

// ProfitLossFromPurchases is the purchase-tracking definition:
// sales - purchases.
func ProfitLossFromPurchases(sales, purchases decimal.Decimal) decimal.Decimal {
	return sales.Sub(purchases)
}

// ProfitLossFromSaleProfit is the per-sale definition: the sum of each
// sale's profit. Sales without a supplied profit use total_amount minus the
// cost of their items; unknown costs count as zero.
func ProfitLossFromSaleProfit(sales []model.Sale, costs map[int64]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(SaleProfit(s, costs))
	}
	return total
}

// SaleProfit returns the server-supplied profit, or derives it from costs.
func SaleProfit(s model.Sale, costs map[int64]decimal.Decimal) decimal.Decimal {
	if s.Profit.Valid {
		return s.Profit.Decimal
	}
	cost := decimal.Zero
	for _, it := range s.Items {
		cost = cost.Add(costs[it.ProductID].Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return s.TotalAmount.Sub(cost)
}

// Totals projects a report onto the profit/loss summary row.
func Totals(r model.PeriodReport) model.PeriodTotals {
	return model.PeriodTotals{TotalSales: r.Sales, TotalProfit: r.Profit, TransactionCount: r.Transactions}
}
