package fallback

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"bizconsole/internal/model"
)

// Purchases are a fixed 68% of sales in the demo data, so profit_loss is
// 32% of sales for every window and every monthly row.
var purchaseRatio = decimal.NewFromFloat(0.68)

func period(kind model.PeriodKind, label string, start time.Time, sales int64, transactions int) model.PeriodReport {
	s := d(sales)
	purchases := s.Mul(purchaseRatio).Round(0)
	pl := s.Sub(purchases)
	return model.PeriodReport{
		Kind:         kind,
		Label:        label,
		Start:        start,
		Sales:        s,
		Purchases:    purchases,
		Profit:       pl,
		ProfitLoss:   pl,
		Basis:        model.BasisPurchases,
		Transactions: transactions,
	}
}

// Reports returns the full daily/weekly/monthly/yearly bundle for the
// windows containing now.
func Reports(now time.Time) model.ReportBundle {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	offset := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -offset)
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	year := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())

	daily := period(model.PeriodDaily, day.Format("2006-01-02"), day, 1250000, 45)
	daily.TopProducts = []model.ProductBreakdown{
		{ProductID: 3, Name: "Business Bundle", Quantity: 5, Revenue: d(750000)},
		{ProductID: 1, Name: "4G Data Plan 10GB", Quantity: 15, Revenue: d(375000)},
		{ProductID: 2, Name: "Fiber Optic Router", Quantity: 8, Revenue: d(239999)},
	}
	daily.BySeller = []model.SellerBreakdown{
		{SellerID: 1, Seller: "seller1", TotalSales: d(800000), Transactions: 29},
		{SellerID: 2, Seller: "seller2", TotalSales: d(450000), Transactions: 16},
	}

	weekDays := []struct {
		sales int64
		tx    int
	}{{1200000, 42}, {1150000, 38}, {1300000, 45}, {1400000, 50}, {1800000, 65}, {1100000, 40}, {800000, 35}}
	var weekSales int64
	var weekTx int
	breakdown := make([]model.DayBreakdown, 0, len(weekDays))
	for i, wd := range weekDays {
		weekSales += wd.sales
		weekTx += wd.tx
		breakdown = append(breakdown, model.DayBreakdown{
			Day:          monday.AddDate(0, 0, i).Weekday().String(),
			Sales:        d(wd.sales),
			Transactions: wd.tx,
		})
	}
	weekly := period(model.PeriodWeekly, fmt.Sprintf("Week %d", (now.Day()+6)/7), monday, weekSales, weekTx)
	weekly.DailyBreakdown = breakdown

	categories := []struct {
		name  string
		sales int64
	}{{"Data Plans", 14000000}, {"Routers", 7000000}, {"Bundles", 10500000}, {"Electronics", 3500000}}
	var monthSales int64
	for _, c := range categories {
		monthSales += c.sales
	}
	monthly := period(model.PeriodMonthly, now.Month().String(), month, monthSales, 1260)
	for _, c := range categories {
		monthly.CategoryBreakdown = append(monthly.CategoryBreakdown, model.CategoryBreakdown{
			Category:   c.name,
			Sales:      d(c.sales),
			Percentage: d(c.sales).Mul(d(100)).Div(d(monthSales)).Round(2),
		})
	}

	monthSeries := []int64{35000000, 33600000, 37800000, 35000000, 36400000, 33600000, 35000000, 36400000, 37800000, 39200000, 37800000, 42000000}
	var yearSales int64
	months := make([]model.MonthBreakdown, 0, 12)
	for i, s := range monthSeries {
		yearSales += s
		sales := d(s)
		months = append(months, model.MonthBreakdown{
			Month:  time.Month(i + 1).String(),
			Sales:  sales,
			Profit: sales.Sub(sales.Mul(purchaseRatio).Round(0)),
		})
	}
	yearly := period(model.PeriodYearly, strconv.Itoa(now.Year()), year, yearSales, 15120)
	yearly.MonthlyBreakdown = months

	bundle := model.ReportBundle{Daily: daily, Weekly: weekly, Monthly: monthly, Yearly: yearly}
	bundle.Daily.Normalize()
	bundle.Weekly.Normalize()
	bundle.Monthly.Normalize()
	bundle.Yearly.Normalize()
	return bundle
}

// ProfitLoss returns the BOSS-only profit/loss summary consistent with Reports.
func ProfitLoss(now time.Time) model.ProfitLossReport {
	b := Reports(now)
	totals := func(r model.PeriodReport) model.PeriodTotals {
		return model.PeriodTotals{TotalSales: r.Sales, TotalProfit: r.Profit, TransactionCount: r.Transactions}
	}
	return model.ProfitLossReport{
		Daily:       totals(b.Daily),
		Weekly:      totals(b.Weekly),
		Monthly:     totals(b.Monthly),
		TopProducts: b.Daily.TopProducts,
	}
}
