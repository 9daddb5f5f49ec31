package dashboard

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizconsole/internal/apierror"
	"bizconsole/internal/client"
	"bizconsole/internal/gateway"
	"bizconsole/internal/model"
)

var now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func newLoader(t *testing.T, mux *http.ServeMux) *Loader {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	gw := gateway.New(gateway.Options{
		BaseURL:  srv.URL,
		Timeout:  2 * time.Second,
		Fallback: true,
		Breaker:  gateway.BreakerConfig{FailureThreshold: 100},
		Now:      func() time.Time { return now },
	})
	l := NewLoader(client.New(gw, nil))
	l.now = func() time.Time { return now }
	return l
}

func write(code int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = io.WriteString(w, body)
	}
}

func TestLoad_PartialFailureDoesNotAbortOthers(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/products/", write(200, `[{"id":1,"name":"Router","price":"100","cost_price":"60","stock_quantity":3,"min_stock_level":5}]`))
	mux.HandleFunc("/sales/", write(500, `{"detail":"boom"}`))
	mux.HandleFunc("/sales/profit_loss_report/", write(403, `{"error":"Only BOSS can access profit reports"}`))
	mux.HandleFunc("/transactions/", write(200, `[{"id":1,"product":1,"transaction_type":"PURCHASE","quantity":2,"unit_price":"60","transaction_date":"2026-10-15T09:00:00Z"}]`))
	// reports and health are not deployed: served by fallback

	snap := newLoader(t, mux).Load(context.Background())

	assert.True(t, apierror.Is(snap.Errors[SectionSales], apierror.ServerError))
	assert.True(t, apierror.Is(snap.Errors[SectionProfitLoss], apierror.Forbidden))
	assert.Nil(t, snap.ProfitLoss)

	assert.Equal(t, model.SourceLive, snap.Sources[SectionProducts])
	assert.Equal(t, model.SourceLive, snap.Sources[SectionTransactions])
	assert.Equal(t, model.SourceFallback, snap.Sources[SectionReports])
	assert.Equal(t, model.SourceFallback, snap.Sources[SectionHealth])
	assert.True(t, snap.UsesFallback())
	assert.Equal(t, []string{SectionHealth, SectionReports}, snap.FallbackSections())
	assert.Equal(t, model.SourceLive, snap.ComputedSource())

	require.Len(t, snap.Products, 1)
	require.Len(t, snap.Alerts, 1)
	assert.Equal(t, "Week 3", snap.Reports.Weekly.Label)

	// computed locally from what did load
	assert.True(t, snap.Computed.Daily.Purchases.Equal(snap.Transactions[0].TotalAmount))
	assert.Equal(t, model.BasisPurchases, snap.Computed.Daily.Basis)
	assert.False(t, snap.Growth[model.PeriodDaily].SalesDefined)
}

func TestLoad_AllDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	gw := gateway.New(gateway.Options{BaseURL: url, Fallback: true, Breaker: gateway.BreakerConfig{FailureThreshold: 100}})
	l := NewLoader(client.New(gw, nil))

	snap := l.Load(context.Background())
	assert.Len(t, snap.Errors, 7)
	for _, err := range snap.Errors {
		assert.True(t, apierror.Is(err, apierror.NetworkUnreachable))
	}
	assert.True(t, snap.Computed.Daily.Sales.IsZero())
	assert.NotNil(t, snap.Computed.Daily.TopProducts)
}

func TestRefresh_KeepsPreviousSectionOnFailure(t *testing.T) {
	var failProducts atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/products/", func(w http.ResponseWriter, r *http.Request) {
		if failProducts.Load() {
			write(503, ``)(w, r)
			return
		}
		write(200, `[{"id":7,"name":"Switch","stock_quantity":12}]`)(w, r)
	})
	r := NewRefresher(newLoader(t, mux), time.Hour, nil)

	first := r.Refresh(context.Background())
	require.Len(t, first.Products, 1)
	assert.NotContains(t, first.Errors, SectionProducts)

	failProducts.Store(true)
	second := r.Refresh(context.Background())
	require.Len(t, second.Products, 1, "previous products kept")
	assert.Equal(t, int64(7), second.Products[0].ID)
	assert.True(t, apierror.Is(second.Errors[SectionProducts], apierror.ServerError))

	cur, ok := r.Current()
	require.True(t, ok)
	assert.Equal(t, second.LoadedAt, cur.LoadedAt)
}

func TestRefresher_StartPublishes(t *testing.T) {
	mux := http.NewServeMux()
	updates := make(chan Snapshot, 4)
	r := NewRefresher(newLoader(t, mux), time.Hour, func(s Snapshot) {
		select {
		case updates <- s:
		default:
		}
	})
	require.NoError(t, r.Start(context.Background()))
	defer r.Stop()

	select {
	case snap := <-updates:
		assert.Equal(t, model.SourceFallback, snap.Sources[SectionProducts])
	case <-time.After(5 * time.Second):
		t.Fatal("no refresh published")
	}
}
