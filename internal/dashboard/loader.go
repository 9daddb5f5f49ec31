// Package dashboard loads everything a reporting view needs in one
// concurrent pass. Fetches are independent: each one records its own
// outcome and a failure never cancels the others.
package dashboard

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"bizconsole/internal/client"
	"bizconsole/internal/model"
	"bizconsole/internal/report"
)

// Section names, used as keys in Snapshot.Sources and Snapshot.Errors.
const (
	SectionProducts     = "products"
	SectionLowStock     = "low_stock"
	SectionSales        = "sales"
	SectionTransactions = "transactions"
	SectionReports      = "reports"
	SectionProfitLoss   = "profit_loss"
	SectionHealth       = "health"
)

// Snapshot is one settled load.
type Snapshot struct {
	LoadedAt     time.Time
	Products     []model.Product
	LowStock     []model.Product
	Sales        []model.Sale
	Transactions []model.Transaction
	// Reports is the backend's bundle (live or synthesized).
	Reports model.ReportBundle
	// Computed is the bundle derived locally from Sales, Transactions and
	// Products; available even when the reports endpoint failed.
	Computed   model.ReportBundle
	Growth     map[model.PeriodKind]report.Growth
	Alerts     []report.StockAlert
	ProfitLoss *model.ProfitLossReport
	Health     *model.HealthStatus
	Sources    map[string]model.DataSource
	Errors     map[string]error
}

// Ok reports whether section loaded.
func (s Snapshot) Ok(section string) bool {
	_, ok := s.Sources[section]
	return ok
}

// UsesFallback reports whether any section was synthesized.
func (s Snapshot) UsesFallback() bool {
	for _, src := range s.Sources {
		if src.IsFallback() {
			return true
		}
	}
	return false
}

// FallbackSections lists the synthesized sections in name order.
func (s Snapshot) FallbackSections() []string {
	var names []string
	for name, src := range s.Sources {
		if src.IsFallback() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ComputedSource is the provenance of Computed: fallback when any of the
// records it was derived from were synthesized.
func (s Snapshot) ComputedSource() model.DataSource {
	for _, name := range []string{SectionSales, SectionTransactions, SectionProducts} {
		if s.Sources[name].IsFallback() {
			return model.SourceFallback
		}
	}
	return model.SourceLive
}

// Loader fans out the dashboard fetches.
type Loader struct {
	api         *client.API
	concurrency int
	now         func() time.Time
}

func NewLoader(api *client.API) *Loader {
	return &Loader{api: api, concurrency: 4, now: time.Now}
}

type task struct {
	name string
	run  func(ctx context.Context, s *Snapshot) (model.DataSource, error)
}

func (l *Loader) tasks() []task {
	return []task{
		{SectionProducts, func(ctx context.Context, s *Snapshot) (model.DataSource, error) {
			res, err := l.api.Products.List(ctx, client.ProductFilter{})
			s.Products = res.Data
			return res.Source, err
		}},
		{SectionLowStock, func(ctx context.Context, s *Snapshot) (model.DataSource, error) {
			res, err := l.api.Products.LowStock(ctx)
			s.LowStock = res.Data
			return res.Source, err
		}},
		{SectionSales, func(ctx context.Context, s *Snapshot) (model.DataSource, error) {
			res, err := l.api.Sales.List(ctx)
			s.Sales = res.Data
			return res.Source, err
		}},
		{SectionTransactions, func(ctx context.Context, s *Snapshot) (model.DataSource, error) {
			res, err := l.api.Transactions.List(ctx)
			s.Transactions = res.Data
			return res.Source, err
		}},
		{SectionReports, func(ctx context.Context, s *Snapshot) (model.DataSource, error) {
			res, err := l.api.Reports.All(ctx)
			s.Reports = res.Data
			return res.Source, err
		}},
		{SectionProfitLoss, func(ctx context.Context, s *Snapshot) (model.DataSource, error) {
			res, err := l.api.Sales.ProfitLossReport(ctx)
			if err == nil {
				s.ProfitLoss = &res.Data
			}
			return res.Source, err
		}},
		{SectionHealth, func(ctx context.Context, s *Snapshot) (model.DataSource, error) {
			res, err := l.api.Health.Check(ctx)
			if err == nil {
				s.Health = &res.Data
			}
			return res.Source, err
		}},
	}
}

// Load runs every fetch and waits for all of them to settle. It never fails
// as a whole; per-section failures are in Snapshot.Errors.
func (l *Loader) Load(ctx context.Context) Snapshot {
	snap := Snapshot{
		LoadedAt: l.now(),
		Sources:  map[string]model.DataSource{},
		Errors:   map[string]error{},
	}
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(l.concurrency)
	for _, t := range l.tasks() {
		t := t
		g.Go(func() error {
			// Each task fills a private snapshot; sections are merged under
			// the lock so completions may arrive in any order.
			var part Snapshot
			src, err := t.run(ctx, &part)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				snap.Errors[t.name] = err
				log.Warn().Err(err).Str("section", t.name).Msg("dashboard: section failed")
				return nil
			}
			snap.Sources[t.name] = src
			snap.merge(t.name, part)
			return nil
		})
	}
	_ = g.Wait()

	snap.derive(l.now())
	return snap
}

// merge copies one section from part into s.
func (s *Snapshot) merge(section string, part Snapshot) {
	switch section {
	case SectionProducts:
		s.Products = part.Products
	case SectionLowStock:
		s.LowStock = part.LowStock
	case SectionSales:
		s.Sales = part.Sales
	case SectionTransactions:
		s.Transactions = part.Transactions
	case SectionReports:
		s.Reports = part.Reports
	case SectionProfitLoss:
		s.ProfitLoss = part.ProfitLoss
	case SectionHealth:
		s.Health = part.Health
	}
}

// derive recomputes the locally aggregated views from the raw sections.
func (s *Snapshot) derive(at time.Time) {
	in := report.Input{Sales: s.Sales, Transactions: s.Transactions, Products: s.Products}
	if !s.Ok(SectionTransactions) {
		in.Transactions = nil
	}
	s.Computed = report.Build(in, at)
	s.Growth = map[model.PeriodKind]report.Growth{}
	for _, kind := range []model.PeriodKind{model.PeriodDaily, model.PeriodWeekly, model.PeriodMonthly, model.PeriodYearly} {
		w := report.WindowFor(kind, at)
		s.Growth[kind] = report.Compare(report.Rollup(in, w), report.Rollup(in, report.PriorWindow(w)))
	}
	s.Alerts = report.Alerts(s.Products)
	if s.LowStock == nil && s.Ok(SectionProducts) {
		s.LowStock = report.LowStock(s.Products)
	}
}
