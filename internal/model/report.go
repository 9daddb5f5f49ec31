package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// PeriodKind identifies the rollup window of a PeriodReport.
type PeriodKind string

const (
	PeriodDaily   PeriodKind = "daily"
	PeriodWeekly  PeriodKind = "weekly"
	PeriodMonthly PeriodKind = "monthly"
	PeriodYearly  PeriodKind = "yearly"
)

// ProfitLossBasis records which definition produced PeriodReport.ProfitLoss.
type ProfitLossBasis string

const (
	// BasisPurchases: profit_loss = sales - purchases.
	BasisPurchases ProfitLossBasis = "sales_minus_purchases"
	// BasisSaleProfit: profit_loss = Σ per-sale profit.
	BasisSaleProfit ProfitLossBasis = "sum_of_sale_profit"
)

// ProductBreakdown is one row of a top-products table.
type ProductBreakdown struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type productBreakdownWire struct {
	ProductID    json.RawMessage  `json:"product_id"`
	Name         string           `json:"name"`
	ProductName  string           `json:"product__name"`
	QuantitySold *int             `json:"quantity_sold"`
	Sales        *int             `json:"sales"`
	Revenue      *decimal.Decimal `json:"revenue"`
}

func (b *ProductBreakdown) UnmarshalJSON(data []byte) error {
	var w productBreakdownWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	id, _ := reference(w.ProductID)
	*b = ProductBreakdown{
		ProductID: id,
		Name:      firstString(w.Name, w.ProductName),
		Quantity:  firstInt(w.QuantitySold, w.Sales),
		Revenue:   firstDecimal(w.Revenue),
	}
	return nil
}

// SellerBreakdown is one row of a sales-by-seller table.
type SellerBreakdown struct {
	SellerID     int64           `json:"seller_id"`
	Seller       string          `json:"seller"`
	TotalSales   decimal.Decimal `json:"total_sales"`
	Transactions int             `json:"transaction_count"`
}

// DayBreakdown is one day of a weekly report.
type DayBreakdown struct {
	Day          string          `json:"day"`
	Sales        decimal.Decimal `json:"sales"`
	Transactions int             `json:"transactions"`
}

// CategoryBreakdown is one category of a monthly report.
type CategoryBreakdown struct {
	Category   string          `json:"category"`
	Sales      decimal.Decimal `json:"sales"`
	Percentage decimal.Decimal `json:"percentage"`
}

// MonthBreakdown is one month of a yearly report.
type MonthBreakdown struct {
	Month  string          `json:"month"`
	Sales  decimal.Decimal `json:"sales"`
	Profit decimal.Decimal `json:"profit"`
}

// PeriodReport is a rollup over one window. Every report, live or
// synthesized, exposes the same field set: breakdown slices are never nil
// after Normalize and missing numbers decode as zero.
type PeriodReport struct {
	Kind              PeriodKind          `json:"period_type"`
	Label             string              `json:"period"`
	Start             time.Time           `json:"start"`
	Sales             decimal.Decimal     `json:"sales"`
	Purchases         decimal.Decimal     `json:"purchases"`
	Profit            decimal.Decimal     `json:"total_profit"`
	ProfitLoss        decimal.Decimal     `json:"profit_loss"`
	Basis             ProfitLossBasis     `json:"profit_loss_basis"`
	Transactions      int                 `json:"transactions"`
	TopProducts       []ProductBreakdown  `json:"top_products"`
	BySeller          []SellerBreakdown   `json:"sales_by_seller"`
	DailyBreakdown    []DayBreakdown      `json:"daily_breakdown"`
	CategoryBreakdown []CategoryBreakdown `json:"category_breakdown"`
	MonthlyBreakdown  []MonthBreakdown    `json:"monthly_breakdown"`
}

// Normalize replaces nil breakdowns with empty slices.
func (r *PeriodReport) Normalize() {
	if r.TopProducts == nil {
		r.TopProducts = []ProductBreakdown{}
	}
	if r.BySeller == nil {
		r.BySeller = []SellerBreakdown{}
	}
	if r.DailyBreakdown == nil {
		r.DailyBreakdown = []DayBreakdown{}
	}
	if r.CategoryBreakdown == nil {
		r.CategoryBreakdown = []CategoryBreakdown{}
	}
	if r.MonthlyBreakdown == nil {
		r.MonthlyBreakdown = []MonthBreakdown{}
	}
}

type periodReportWire struct {
	Kind              PeriodKind          `json:"period_type"`
	Period            json.RawMessage     `json:"period"`
	Date              string              `json:"date"`
	Year              json.RawMessage     `json:"year"`
	Start             *string             `json:"start"`
	WeekStart         *string             `json:"week_start"`
	Sales             *decimal.Decimal    `json:"sales"`
	TotalSales        *decimal.Decimal    `json:"total_sales"`
	Purchases         *decimal.Decimal    `json:"purchases"`
	TotalPurchases    *decimal.Decimal    `json:"total_purchases"`
	Profit            *decimal.Decimal    `json:"total_profit"`
	ProfitLoss        *decimal.Decimal    `json:"profit_loss"`
	Basis             ProfitLossBasis     `json:"profit_loss_basis"`
	Transactions      *int                `json:"transactions"`
	TransactionCount  *int                `json:"transaction_count"`
	TotalTransactions *int                `json:"total_transactions"`
	TopProducts       []ProductBreakdown  `json:"top_products"`
	BySeller          []SellerBreakdown   `json:"sales_by_seller"`
	DailyBreakdown    []DayBreakdown      `json:"daily_breakdown"`
	CategoryBreakdown []CategoryBreakdown `json:"category_breakdown"`
	MonthlyBreakdown  []MonthBreakdown    `json:"monthly_breakdown"`
}

// UnmarshalJSON accepts the daily/weekly/monthly/yearly summary shapes
// (date, period or year label; sales or total_sales; transactions,
// transaction_count or total_transactions). When profit_loss is absent it
// is derived as sales - purchases; a missing total_profit takes profit_loss.
func (r *PeriodReport) UnmarshalJSON(data []byte) error {
	var w periodReportWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	label := firstString(labelOf(w.Period), w.Date, labelOf(w.Year))
	*r = PeriodReport{
		Kind:              w.Kind,
		Label:             label,
		Start:             firstTime(w.Start, w.WeekStart, &w.Date),
		Sales:             firstDecimal(w.Sales, w.TotalSales),
		Purchases:         firstDecimal(w.Purchases, w.TotalPurchases),
		Profit:            firstDecimal(w.Profit),
		Basis:             w.Basis,
		Transactions:      firstInt(w.Transactions, w.TransactionCount, w.TotalTransactions),
		TopProducts:       w.TopProducts,
		BySeller:          w.BySeller,
		DailyBreakdown:    w.DailyBreakdown,
		CategoryBreakdown: w.CategoryBreakdown,
		MonthlyBreakdown:  w.MonthlyBreakdown,
	}
	if w.ProfitLoss != nil {
		r.ProfitLoss = *w.ProfitLoss
	} else {
		r.ProfitLoss = r.Sales.Sub(r.Purchases)
	}
	if w.Profit == nil {
		r.Profit = r.ProfitLoss
	}
	if r.Basis == "" {
		r.Basis = BasisPurchases
	}
	r.Normalize()
	return nil
}

// labelOf reads a period label sent either as a string or a bare number.
func labelOf(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// ReportBundle is the body of GET /reports/ and
// /reports/generate_all_summaries/.
type ReportBundle struct {
	Daily   PeriodReport `json:"daily"`
	Weekly  PeriodReport `json:"weekly"`
	Monthly PeriodReport `json:"monthly"`
	Yearly  PeriodReport `json:"yearly"`
}

// PeriodTotals is one window of the profit/loss report.
type PeriodTotals struct {
	TotalSales       decimal.Decimal `json:"total_sales"`
	TotalProfit      decimal.Decimal `json:"total_profit"`
	TransactionCount int             `json:"transaction_count"`
}

// ProfitLossReport is the body of GET /sales/profit_loss_report/
// (BOSS only).
type ProfitLossReport struct {
	Daily       PeriodTotals       `json:"daily"`
	Weekly      PeriodTotals       `json:"weekly"`
	Monthly     PeriodTotals       `json:"monthly"`
	TopProducts []ProductBreakdown `json:"top_products"`
}
