package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"bizconsole/internal/dashboard"
	"bizconsole/internal/model"
	"bizconsole/internal/report"
)

// levels pairs each product with its fixed-threshold classification.
func levels(products []model.Product) map[int64]report.StockLevel {
	out := make(map[int64]report.StockLevel, len(products))
	for _, p := range products {
		out[p.ID] = report.Classify(p.StockQuantity)
	}
	return out
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func renderStock(out io.Writer, products []model.Product, src model.DataSource) {
	lv := levels(products)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK\tMIN\tLEVEL")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%s\n",
			p.ID, p.Name, p.Category, money(p.Price), p.StockQuantity, p.MinStockLevel, lv[p.ID])
	}
	_ = w.Flush()
	if src.IsFallback() {
		fmt.Fprintln(out, "(demo data: products endpoint unavailable)")
	}
}

func renderSnapshot(out io.Writer, s dashboard.Snapshot) {
	fmt.Fprintf(out, "Dashboard at %s\n", s.LoadedAt.Format("2006-01-02 15:04:05"))
	if demo := s.FallbackSections(); len(demo) > 0 {
		fmt.Fprintf(out, "(demo data: %s)\n", strings.Join(demo, ", "))
	}

	if s.Ok(dashboard.SectionReports) {
		fmt.Fprintf(out, "\nBackend reports [%s]:\n", s.Sources[dashboard.SectionReports])
		renderPeriods(out, s.Reports, nil, false)
	}
	fmt.Fprintf(out, "\nComputed from records [%s]:\n", s.ComputedSource())
	renderPeriods(out, s.Computed, s.Growth, true)

	if s.ProfitLoss != nil && len(s.ProfitLoss.TopProducts) > 0 {
		fmt.Fprintf(out, "\nTop products this month%s:\n", tag(s, dashboard.SectionProfitLoss))
		for _, p := range s.ProfitLoss.TopProducts {
			fmt.Fprintf(out, "  %-28s x%-4d %s\n", p.Name, p.Quantity, money(p.Revenue))
		}
	}

	if len(s.Alerts) > 0 {
		fmt.Fprintf(out, "\nStock alerts%s:\n", tag(s, dashboard.SectionProducts))
		for _, al := range s.Alerts {
			fmt.Fprintf(out, "  %-12s %s (%d left)\n", al.Level, al.Product.Name, al.Product.StockQuantity)
		}
	}

	if len(s.Errors) > 0 {
		names := make([]string, 0, len(s.Errors))
		for name := range s.Errors {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintln(out, "\nUnavailable (retry with dashboard):")
		for _, name := range names {
			fmt.Fprintf(out, "  %-14s %s\n", name, s.Errors[name])
		}
	}
	fmt.Fprintln(out)
}

// renderPeriods prints one row per period, with a growth column when
// withGrowth is set.
func renderPeriods(out io.Writer, b model.ReportBundle, growth map[model.PeriodKind]report.Growth, withGrowth bool) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header := "PERIOD\tLABEL\tSALES\tPURCHASES\tPROFIT/LOSS\tMARGIN %\tTX"
	if withGrowth {
		header += "\tGROWTH %"
	}
	fmt.Fprintln(w, header)
	rows := []model.PeriodReport{b.Daily, b.Weekly, b.Monthly, b.Yearly}
	for i, kind := range []model.PeriodKind{model.PeriodDaily, model.PeriodWeekly, model.PeriodMonthly, model.PeriodYearly} {
		r := rows[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d",
			kind, r.Label, money(r.Sales), money(r.Purchases), money(r.ProfitLoss),
			report.Margin(r).StringFixed(1), r.Transactions)
		if withGrowth {
			g := "n/a"
			if gr := growth[kind]; gr.SalesDefined {
				g = gr.Sales.StringFixed(1)
			}
			fmt.Fprintf(w, "\t%s", g)
		}
		fmt.Fprintln(w)
	}
	_ = w.Flush()
}

// tag labels a section that was synthesized.
func tag(s dashboard.Snapshot, section string) string {
	if s.Sources[section].IsFallback() {
		return " [fallback]"
	}
	return ""
}
