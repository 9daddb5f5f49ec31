// Package fallback synthesizes substitute records for endpoints the backend
// has not deployed yet. Everything here is pure: the same path and clock
// always produce the same data, and synthesized records satisfy the same
// invariants as live ones (non-negative stock, profit_loss = sales - purchases).
package fallback

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bizconsole/internal/model"
)

// Resource is the category a request path belongs to.
type Resource string

const (
	ResourceProducts     Resource = "products"
	ResourceSales        Resource = "sales"
	ResourceTransactions Resource = "transactions"
	ResourceUsers        Resource = "users"
	ResourceReports      Resource = "reports"
	ResourceHealth       Resource = "health"
	ResourceUnknown      Resource = ""
)

// Route is a request path resolved to a resource, an optional sub-action
// ("low-stock", "statistics", "daily", ...) and an optional record id.
type Route struct {
	Resource Resource
	Action   string
	ID       int64
}

// Resolve maps a request path such as "/api/products/4/" to a Route. Leading
// segments that are not a known resource (an "/api" prefix) are skipped.
func Resolve(path string) Route {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	segs := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	for i, seg := range segs {
		res := Resource(strings.ToLower(seg))
		switch res {
		case ResourceProducts, ResourceSales, ResourceTransactions, ResourceUsers, ResourceReports, ResourceHealth:
		default:
			continue
		}
		r := Route{Resource: res}
		for _, rest := range segs[i+1:] {
			if id, err := strconv.ParseInt(rest, 10, 64); err == nil && r.ID == 0 {
				r.ID = id
				continue
			}
			if r.Action == "" {
				r.Action = strings.ToLower(strings.ReplaceAll(rest, "_", "-"))
			}
		}
		return r
	}
	return Route{}
}

// For returns the substitute value for path, or false when no synthesized
// equivalent exists (unknown endpoint, or a record id outside the catalog).
// The returned value has the same JSON shape as the live response.
func For(path string, now time.Time) (any, bool) {
	r := Resolve(path)
	switch r.Resource {
	case ResourceProducts:
		switch {
		case r.Action == "low-stock":
			return LowStock(), true
		case r.ID != 0:
			return byID(Products(), r.ID, func(p model.Product) int64 { return p.ID })
		case r.Action == "":
			return Products(), true
		}
	case ResourceSales:
		switch {
		case r.Action == "profit-loss-report":
			return ProfitLoss(now), true
		case r.ID != 0:
			return byID(Sales(now), r.ID, func(s model.Sale) int64 { return s.ID })
		case r.Action == "":
			return Sales(now), true
		}
	case ResourceTransactions:
		switch {
		case r.ID != 0:
			return byID(Transactions(now), r.ID, func(t model.Transaction) int64 { return t.ID })
		case r.Action == "":
			return Transactions(now), true
		}
	case ResourceUsers:
		switch {
		case r.Action == "statistics":
			return Statistics(now), true
		case r.ID != 0 && r.Action == "":
			return byID(Users(now), r.ID, func(u model.User) int64 { return u.ID })
		case r.Action == "":
			return Users(now), true
		}
	case ResourceReports:
		switch r.Action {
		case "", "generate-all-summaries":
			return Reports(now), true
		case "daily":
			return Reports(now).Daily, true
		case "weekly":
			return Reports(now).Weekly, true
		case "monthly":
			return Reports(now).Monthly, true
		case "yearly":
			return Reports(now).Yearly, true
		case "low-stock":
			return LowStock(), true
		}
	case ResourceHealth:
		return Health(now), true
	}
	return nil, false
}

func byID[T any](items []T, id int64, key func(T) int64) (any, bool) {
	for _, it := range items {
		if key(it) == id {
			return it, true
		}
	}
	return nil, false
}

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// Products returns the fixed demo catalog.
func Products() []model.Product {
	return []model.Product{
		{ID: 1, Name: "4G Data Plan 10GB", Category: "Data Plans", Price: d(25000), CostPrice: d(18000), StockQuantity: 100, MinStockLevel: 20, Active: true},
		{ID: 2, Name: "Fiber Optic Router", Category: "Routers", Price: d(299999), CostPrice: d(210000), StockQuantity: 15, MinStockLevel: 5, Active: true},
		{ID: 3, Name: "Business Bundle", Category: "Bundles", Price: d(150000), CostPrice: d(100000), StockQuantity: 25, MinStockLevel: 10, Active: true},
		{ID: 4, Name: "Wireless Access Point", Category: "Electronics", Price: d(199999), CostPrice: d(140000), StockQuantity: 8, MinStockLevel: 10, Active: true},
		{ID: 5, Name: "Network Switch 8-Port", Category: "Electronics", Price: d(89999), CostPrice: d(60000), StockQuantity: 12, MinStockLevel: 5, Active: true},
	}
}

// LowStock returns products below their own minimum level.
func LowStock() []model.Product {
	return []model.Product{
		{ID: 4, Name: "Wireless Access Point", Category: "Electronics", Price: d(199999), CostPrice: d(140000), StockQuantity: 8, MinStockLevel: 10, Active: true},
		{ID: 6, Name: "CAT6 Ethernet Cable", Category: "Electronics", Price: d(15000), CostPrice: d(9000), StockQuantity: 5, MinStockLevel: 20, Active: true},
		{ID: 7, Name: "5G WiFi Router", Category: "Routers", Price: d(349999), CostPrice: d(250000), StockQuantity: 3, MinStockLevel: 5, Active: true},
	}
}

// Sales returns twelve sales spread over the last three days, each with a
// per-sale profit derived from the catalog cost prices.
func Sales(now time.Time) []model.Sale {
	catalog := Products()
	methods := []model.PaymentMethod{model.PaymentCash, model.PaymentCard, model.PaymentMobileMoney}
	sellers := Users(now)
	out := make([]model.Sale, 0, 12)
	for i := 0; i < 12; i++ {
		p := catalog[i%len(catalog)]
		qty := i%3 + 1
		item := model.SaleItem{ProductID: p.ID, ProductName: p.Name, Quantity: qty, UnitPrice: p.Price}
		seller := sellers[i%2]
		out = append(out, model.Sale{
			ID:            int64(i + 1),
			SellerID:      seller.ID,
			SellerName:    seller.Username,
			Items:         []model.SaleItem{item},
			PaymentMethod: methods[i%len(methods)],
			TotalAmount:   item.Subtotal(),
			Profit:        decimal.NewNullDecimal(p.ProfitMargin().Mul(d(int64(qty)))),
			SaleDate:      now.Add(-time.Duration(i) * 6 * time.Hour),
		})
	}
	return out
}

// Transactions returns thirty stock movements cycling SALE, PURCHASE, RETURN.
func Transactions(now time.Time) []model.Transaction {
	catalog := Products()
	types := []model.TransactionType{model.TransactionSale, model.TransactionPurchase, model.TransactionReturn}
	out := make([]model.Transaction, 0, 30)
	for i := 0; i < 30; i++ {
		p := catalog[i%len(catalog)]
		typ := types[i%len(types)]
		qty := i%5 + 1
		unit := p.Price
		profit := decimal.Zero
		if typ == model.TransactionPurchase {
			unit = p.CostPrice
		}
		if typ == model.TransactionSale {
			profit = p.ProfitMargin().Mul(d(int64(qty)))
		}
		out = append(out, model.Transaction{
			ID:          int64(i + 1),
			ProductID:   p.ID,
			ProductName: p.Name,
			Type:        typ,
			Quantity:    qty,
			UnitPrice:   unit,
			TotalAmount: unit.Mul(d(int64(qty))),
			Profit:      profit,
			Date:        now.Add(-time.Duration(i) * 5 * time.Hour),
		})
	}
	return out
}

// Users returns a small roster with one inactive account.
func Users(now time.Time) []model.User {
	day := 24 * time.Hour
	return []model.User{
		{ID: 1, Username: "seller1", Email: "seller1@example.com", FirstName: "Amina", LastName: "Nakato", Role: model.RoleSeller, EmployeeID: "EMP001", Active: true, DateJoined: now.Add(-400 * day), TotalSales: 142, TotalRevenue: d(12850000)},
		{ID: 2, Username: "seller2", Email: "seller2@example.com", FirstName: "Brian", LastName: "Okello", Role: model.RoleSeller, EmployeeID: "EMP002", Active: true, DateJoined: now.Add(-12 * day), TotalSales: 37, TotalRevenue: d(3100000)},
		{ID: 3, Username: "manager", Email: "manager@example.com", FirstName: "Grace", LastName: "Achieng", Role: model.RoleManager, EmployeeID: "EMP003", Active: true, DateJoined: now.Add(-700 * day)},
		{ID: 4, Username: "boss", Email: "boss@example.com", FirstName: "David", LastName: "Mugisha", Role: model.RoleBoss, EmployeeID: "EMP004", Active: true, DateJoined: now.Add(-1000 * day)},
		{ID: 5, Username: "seller3", Email: "seller3@example.com", FirstName: "Esther", LastName: "Nambi", Role: model.RoleSeller, EmployeeID: "EMP005", Active: false, DateJoined: now.Add(-90 * day), TotalSales: 8, TotalRevenue: d(640000)},
	}
}

// Statistics summarizes Users: counts by role and accounts joined in the
// last 30 days.
func Statistics(now time.Time) model.UserStatistics {
	users := Users(now)
	stats := model.UserStatistics{
		TotalUsers:    len(users),
		ByRole:        map[model.Role]int{},
		RecentSignups: []model.User{},
	}
	cutoff := now.Add(-30 * 24 * time.Hour)
	for _, u := range users {
		stats.ByRole[u.Role]++
		if u.Active {
			stats.ActiveUsers++
		}
		if u.DateJoined.After(cutoff) {
			stats.RecentSignups = append(stats.RecentSignups, u)
		}
	}
	return stats
}

// Health reports the synthesized backend as healthy.
func Health(now time.Time) model.HealthStatus {
	return model.HealthStatus{Status: "healthy", Timestamp: now}
}
