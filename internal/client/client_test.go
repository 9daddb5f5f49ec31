package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizconsole/internal/apierror"
	"bizconsole/internal/gateway"
	"bizconsole/internal/model"
	"bizconsole/internal/report"
	"bizconsole/internal/session"
)

type recorded struct {
	Method string
	Path   string
	Auth   string
	Body   string
}

type fakeBackend struct {
	mu    sync.Mutex
	calls []recorded
	mux   *http.ServeMux
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, recorded{Method: r.Method, Path: r.URL.RequestURI(), Auth: r.Header.Get("Authorization"), Body: string(body)})
	f.mu.Unlock()
	f.mux.ServeHTTP(w, r)
}

func (f *fakeBackend) Calls() []recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recorded(nil), f.calls...)
}

func reply(code int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = io.WriteString(w, body)
	}
}

func setup(t *testing.T, fallback bool, routes map[string]http.HandlerFunc) (*API, *fakeBackend, *session.Session) {
	t.Helper()
	fb := &fakeBackend{mux: http.NewServeMux()}
	for pattern, h := range routes {
		fb.mux.HandleFunc(pattern, h)
	}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)

	sess, err := session.New(context.Background(), session.NewMemoryStore())
	require.NoError(t, err)
	gw := gateway.New(gateway.Options{
		BaseURL:  srv.URL,
		Timeout:  2 * time.Second,
		Fallback: fallback,
		Session:  sess,
		Now:      func() time.Time { return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC) },
	})
	return New(gw, sess), fb, sess
}

func TestAuth_LoginPersistsAndAttachesToken(t *testing.T) {
	api, fb, sess := setup(t, true, map[string]http.HandlerFunc{
		"/auth/login/": reply(200, `{"access":"tok-1","user":{"id":4,"username":"boss","role":"boss"}}`),
		"/products/":   reply(200, `[]`),
	})
	ctx := context.Background()

	u, err := api.Auth.Login(ctx, model.Credentials{Username: "boss", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleBoss, u.Role)
	assert.Equal(t, "tok-1", sess.Token())

	_, err = api.Products.List(ctx, ProductFilter{})
	require.NoError(t, err)
	calls := fb.Calls()
	assert.Equal(t, "Bearer tok-1", calls[len(calls)-1].Auth)

	require.NoError(t, api.Auth.Logout(ctx))
	assert.Empty(t, sess.Token())
}

func TestAuth_LoginMissingEndpointIsNotFaked(t *testing.T) {
	api, _, sess := setup(t, true, nil)
	_, err := api.Auth.Login(context.Background(), model.Credentials{Username: "x", Password: "secret123"})
	assert.True(t, apierror.Is(err, apierror.EndpointNotFound))
	assert.False(t, sess.Authenticated())
}

func TestAuth_BadCredentials(t *testing.T) {
	api, _, _ := setup(t, true, map[string]http.HandlerFunc{
		"/auth/login/": reply(401, `{"detail":"No active account found with the given credentials"}`),
	})
	_, err := api.Auth.Login(context.Background(), model.Credentials{Username: "x", Password: "wrong-pass"})
	var e *apierror.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, apierror.Validation, e.Kind)
	assert.Equal(t, "No active account found with the given credentials", e.Message)
}

func TestValidation_NoRequestSent(t *testing.T) {
	api, fb, _ := setup(t, true, map[string]http.HandlerFunc{"/": reply(200, `{}`)})
	ctx := context.Background()

	_, err := api.Products.Create(ctx, model.ProductRequest{Name: "", Price: decimal.NewFromInt(-1)})
	var e *apierror.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, apierror.Validation, e.Kind)
	assert.Equal(t, 0, e.Status)
	assert.Contains(t, e.Fields, "name")
	assert.Contains(t, e.Fields, "price")

	_, err = api.Sales.Create(ctx, model.CartSaleRequest{PaymentMethod: model.PaymentCash})
	assert.True(t, apierror.Is(err, apierror.Validation))

	err = api.Users.ResetPassword(ctx, 3, "short")
	assert.True(t, apierror.Is(err, apierror.Validation))

	assert.Empty(t, fb.Calls())
}

func TestProducts_ListActiveOnly(t *testing.T) {
	api, fb, _ := setup(t, true, map[string]http.HandlerFunc{
		"/products/": reply(200, `[{"id":1,"name":"A","is_active":true},{"id":2,"name":"B","is_active":false},{"id":3,"name":"C"}]`),
	})
	res, err := api.Products.List(context.Background(), ProductFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, model.SourceLive, res.Source)
	require.Len(t, res.Data, 2)
	assert.Equal(t, "/products/?is_active=true", fb.Calls()[0].Path)
}

func TestProducts_LowStockScenario(t *testing.T) {
	api, _, _ := setup(t, true, map[string]http.HandlerFunc{
		"/products/low-stock/": reply(200, `[
			{"id":1,"name":"A","stock_quantity":8,"min_stock_level":10},
			{"id":2,"name":"B","stock_quantity":12,"min_stock_level":5},
			{"id":3,"name":"C","stock_quantity":0,"min_stock_level":1}]`),
	})
	res, err := api.Products.LowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Data, 2)
	assert.Equal(t, int64(1), res.Data[0].ID)
	assert.Equal(t, int64(3), res.Data[1].ID)
}

func TestProducts_LowStockFallback(t *testing.T) {
	api, _, _ := setup(t, true, nil)
	res, err := api.Products.LowStock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.SourceFallback, res.Source)
	assert.Len(t, res.Data, 3)
}

func TestSales_CreateCartPayload(t *testing.T) {
	api, fb, _ := setup(t, true, map[string]http.HandlerFunc{
		"/sales/": reply(201, `{"id":77,"seller":{"id":1,"username":"seller1"},"items":[{"product":1,"quantity":2,"unit_price":"25000"}],"payment_method":"MOMO"}`),
	})
	req := model.CartSaleRequest{
		Items:         []model.SaleLine{{ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(25000)}},
		PaymentMethod: model.PaymentMobileMoney,
	}
	res, err := api.Sales.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(77), res.Data.ID)
	assert.Equal(t, "seller1", res.Data.SellerName)
	assert.Equal(t, model.PaymentMobileMoney, res.Data.PaymentMethod)
	assert.True(t, res.Data.TotalAmount.Equal(decimal.NewFromInt(50000)))

	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(fb.Calls()[0].Body), &sent))
	assert.Equal(t, "MOBILE_MONEY", sent["payment_method"])
	assert.Len(t, sent["items"], 1)
}

func TestSales_CreateAgainstMissingEndpointFails(t *testing.T) {
	api, _, _ := setup(t, true, nil)
	_, err := api.Sales.Create(context.Background(), model.SingleSaleRequest{
		ProductID: 1, Quantity: 1, SalePrice: decimal.NewFromInt(10), PaymentMethod: model.PaymentCash,
	})
	assert.True(t, apierror.Is(err, apierror.EndpointNotFound))
}

func TestSales_ProfitLossForbidden(t *testing.T) {
	api, _, _ := setup(t, true, map[string]http.HandlerFunc{
		"/sales/profit_loss_report/": reply(403, `{"error":"Only BOSS can access profit reports"}`),
	})
	_, err := api.Sales.ProfitLossReport(context.Background())
	var e *apierror.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, apierror.Forbidden, e.Kind)
	assert.Equal(t, MsgProfitReportForbidden, e.Message)
	assert.Equal(t, 403, e.Status)
}

func TestUsers_ResetPasswordSendsOnlyNewPassword(t *testing.T) {
	api, fb, _ := setup(t, true, map[string]http.HandlerFunc{
		"/users/3/reset_password/": reply(200, `{"message":"Password reset successfully"}`),
	})
	require.NoError(t, api.Users.ResetPassword(context.Background(), 3, "n3w-passw0rd"))
	assert.JSONEq(t, `{"new_password":"n3w-passw0rd"}`, fb.Calls()[0].Body)
}

func TestUsers_StatisticsFallback(t *testing.T) {
	api, _, _ := setup(t, true, nil)
	res, err := api.Users.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.SourceFallback, res.Source)
	assert.Equal(t, 5, res.Data.TotalUsers)
	assert.Equal(t, 3, res.Data.ByRole[model.RoleSeller])
}

func TestReports_LiveDjangoShape(t *testing.T) {
	api, _, _ := setup(t, true, map[string]http.HandlerFunc{
		"/reports/daily/": reply(200, `{"date":"2026-10-15","total_sales":"1500.00","total_purchases":"900.00","total_transactions":12}`),
	})
	res, err := api.Reports.Daily(context.Background())
	require.NoError(t, err)
	r := res.Data
	assert.Equal(t, model.PeriodDaily, r.Kind)
	assert.Equal(t, "2026-10-15", r.Label)
	assert.Equal(t, 12, r.Transactions)
	assert.True(t, r.ProfitLoss.Equal(decimal.NewFromInt(600)))
	assert.True(t, r.Profit.Equal(decimal.NewFromInt(600)))
	assert.Equal(t, "40.0", report.Margin(r).StringFixed(1))
	assert.NotNil(t, r.TopProducts)
}

func TestReports_StrictModePropagates404(t *testing.T) {
	api, _, _ := setup(t, false, nil)
	_, err := api.Reports.All(context.Background())
	assert.True(t, apierror.Is(err, apierror.EndpointNotFound))
}

func TestHealth_Fallback(t *testing.T) {
	api, _, _ := setup(t, true, nil)
	res, err := api.Health.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", res.Data.Status)
	assert.Equal(t, model.SourceFallback, res.Source)
}
