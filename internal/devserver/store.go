package devserver

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"bizconsole/internal/fallback"
	"bizconsole/internal/model"
	"bizconsole/internal/report"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDuplicateUsername = errors.New("username already exists")
)

type account struct {
	user model.User
	hash string
}

// Store is the in-memory dataset behind the development backend. It is
// seeded from the fallback catalog so live and synthesized responses look
// alike. Safe for concurrent use.
type Store struct {
	mu           sync.RWMutex
	products     []model.Product
	sales        []model.Sale
	transactions []model.Transaction
	accounts     []account
	nextID       map[string]int64
	now          func() time.Time
}

// NewStore seeds the store at now. Every seeded account shares
// passwordHash.
func NewStore(now func() time.Time, passwordHash string) *Store {
	if now == nil {
		now = time.Now
	}
	at := now()
	s := &Store{
		products:     fallback.Products(),
		sales:        fallback.Sales(at),
		transactions: fallback.Transactions(at),
		nextID:       map[string]int64{},
		now:          now,
	}
	for _, u := range fallback.Users(at) {
		s.accounts = append(s.accounts, account{user: u, hash: passwordHash})
	}
	s.nextID["products"] = maxID(s.products, func(p model.Product) int64 { return p.ID })
	s.nextID["sales"] = maxID(s.sales, func(v model.Sale) int64 { return v.ID })
	s.nextID["transactions"] = maxID(s.transactions, func(t model.Transaction) int64 { return t.ID })
	s.nextID["users"] = maxID(s.accounts, func(a account) int64 { return a.user.ID })
	return s
}

func maxID[T any](items []T, id func(T) int64) int64 {
	var m int64
	for _, it := range items {
		if v := id(it); v > m {
			m = v
		}
	}
	return m
}

// id must be called with mu held.
func (s *Store) id(collection string) int64 {
	s.nextID[collection]++
	return s.nextID[collection]
}

// ── Products ─────────────────────────────────────────────────────────────────

func (s *Store) Products(activeOnly bool) []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s *Store) Product(id int64) (model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.productIndex(id)
	if i < 0 {
		return model.Product{}, ErrNotFound
	}
	return s.products[i], nil
}

func (s *Store) productIndex(id int64) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// LowStock returns active products below their own minimum.
func (s *Store) LowStock() []model.Product {
	return report.LowStock(s.Products(true))
}

func (s *Store) CreateProduct(req model.ProductRequest) model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := productFrom(s.id("products"), req)
	s.products = append(s.products, p)
	return p
}

func (s *Store) UpdateProduct(id int64, req model.ProductRequest) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.productIndex(id)
	if i < 0 {
		return model.Product{}, ErrNotFound
	}
	s.products[i] = productFrom(id, req)
	return s.products[i], nil
}

func (s *Store) DeleteProduct(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.productIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	s.products = append(s.products[:i], s.products[i+1:]...)
	return nil
}

func productFrom(id int64, req model.ProductRequest) model.Product {
	return model.Product{
		ID:            id,
		Name:          req.Name,
		Category:      req.Category,
		Price:         req.Price,
		CostPrice:     req.CostPrice,
		StockQuantity: req.StockQuantity,
		MinStockLevel: req.MinStockLevel,
		Active:        req.Active,
	}
}

// ── Sales ────────────────────────────────────────────────────────────────────

func (s *Store) Sales() []model.Sale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Sale(nil), s.sales...)
}

func (s *Store) Sale(id int64) (model.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.sales {
		if v.ID == id {
			return v, nil
		}
	}
	return model.Sale{}, ErrNotFound
}

// CreateSale records a sale for seller, decrementing stock and writing one
// SALE transaction per line. Either every line is applied or none is.
// A zero line price means the catalog price.
func (s *Store) CreateSale(seller model.User, req model.CartSaleRequest) (model.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type pending struct {
		idx  int
		item model.SaleItem
	}
	lines := make([]pending, 0, len(req.Items))
	need := map[int]int{}
	for _, l := range req.Items {
		i := s.productIndex(l.ProductID)
		if i < 0 || !s.products[i].Active {
			return model.Sale{}, fmt.Errorf("product %d: %w", l.ProductID, ErrNotFound)
		}
		p := s.products[i]
		need[i] += l.Quantity
		if need[i] > p.StockQuantity {
			return model.Sale{}, fmt.Errorf("%s: %w", p.Name, ErrInsufficientStock)
		}
		price := l.UnitPrice
		if price.IsZero() {
			price = p.Price
		}
		lines = append(lines, pending{idx: i, item: model.SaleItem{
			ProductID: p.ID, ProductName: p.Name, Quantity: l.Quantity, UnitPrice: price,
		}})
	}

	now := s.now()
	sale := model.Sale{
		ID:            s.id("sales"),
		SellerID:      seller.ID,
		SellerName:    seller.Username,
		PaymentMethod: req.PaymentMethod,
		SaleDate:      now,
	}
	profit := decimal.Zero
	for _, l := range lines {
		p := &s.products[l.idx]
		p.StockQuantity -= l.item.Quantity
		qty := decimal.NewFromInt(int64(l.item.Quantity))
		lineProfit := l.item.UnitPrice.Sub(p.CostPrice).Mul(qty)
		profit = profit.Add(lineProfit)
		sale.Items = append(sale.Items, l.item)
		s.transactions = append(s.transactions, model.Transaction{
			ID:          s.id("transactions"),
			ProductID:   p.ID,
			ProductName: p.Name,
			Type:        model.TransactionSale,
			Quantity:    l.item.Quantity,
			UnitPrice:   l.item.UnitPrice,
			TotalAmount: l.item.Subtotal(),
			Profit:      lineProfit,
			Date:        now,
			Notes:       fmt.Sprintf("sale #%d", sale.ID),
		})
	}
	sale.TotalAmount = sale.ItemsTotal()
	sale.Profit = decimal.NewNullDecimal(profit)
	s.sales = append(s.sales, sale)
	return sale, nil
}

// ── Transactions ─────────────────────────────────────────────────────────────

func (s *Store) Transactions() []model.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Transaction(nil), s.transactions...)
}

func (s *Store) transactionIndex(id int64) int {
	for i, t := range s.transactions {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// CreateTransaction applies the stock movement: PURCHASE and RETURN add
// units, SALE removes them.
func (s *Store) CreateTransaction(req model.TransactionRequest) (model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.productIndex(req.ProductID)
	if i < 0 {
		return model.Transaction{}, fmt.Errorf("product %d: %w", req.ProductID, ErrNotFound)
	}
	p := &s.products[i]
	switch req.Type {
	case model.TransactionSale:
		if req.Quantity > p.StockQuantity {
			return model.Transaction{}, fmt.Errorf("%s: %w", p.Name, ErrInsufficientStock)
		}
		p.StockQuantity -= req.Quantity
	default:
		p.StockQuantity += req.Quantity
	}
	t := transactionFrom(s.id("transactions"), req, *p, s.now())
	s.transactions = append(s.transactions, t)
	return t, nil
}

// UpdateTransaction rewrites the record only; stock is not re-applied.
func (s *Store) UpdateTransaction(id int64, req model.TransactionRequest) (model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ti := s.transactionIndex(id)
	if ti < 0 {
		return model.Transaction{}, ErrNotFound
	}
	pi := s.productIndex(req.ProductID)
	if pi < 0 {
		return model.Transaction{}, fmt.Errorf("product %d: %w", req.ProductID, ErrNotFound)
	}
	s.transactions[ti] = transactionFrom(id, req, s.products[pi], s.transactions[ti].Date)
	return s.transactions[ti], nil
}

func (s *Store) DeleteTransaction(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.transactionIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
	return nil
}

func transactionFrom(id int64, req model.TransactionRequest, p model.Product, at time.Time) model.Transaction {
	qty := decimal.NewFromInt(int64(req.Quantity))
	price := req.UnitPrice
	if price.IsZero() {
		price = p.Price
	}
	t := model.Transaction{
		ID:          id,
		ProductID:   p.ID,
		ProductName: p.Name,
		Type:        req.Type,
		Quantity:    req.Quantity,
		UnitPrice:   price,
		TotalAmount: price.Mul(qty),
		Profit:      decimal.Zero,
		Date:        at,
		Notes:       req.Notes,
	}
	if req.Type == model.TransactionSale {
		t.Profit = price.Sub(p.CostPrice).Mul(qty)
	}
	return t
}

// ── Users ────────────────────────────────────────────────────────────────────

func (s *Store) Users() []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.User, len(s.accounts))
	for i, a := range s.accounts {
		out[i] = a.user
	}
	return out
}

func (s *Store) accountIndex(id int64) int {
	for i, a := range s.accounts {
		if a.user.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) User(id int64) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.accountIndex(id)
	if i < 0 {
		return model.User{}, ErrNotFound
	}
	return s.accounts[i].user, nil
}

// Account looks up an active account by username (case-insensitive) and
// returns its password hash.
func (s *Store) Account(username string) (model.User, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if strings.EqualFold(a.user.Username, username) && a.user.Active {
			return a.user, a.hash, true
		}
	}
	return model.User{}, "", false
}

func (s *Store) CreateUser(req model.UserRequest, hash string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if strings.EqualFold(a.user.Username, req.Username) {
			return model.User{}, ErrDuplicateUsername
		}
	}
	u := userFrom(model.User{ID: s.id("users"), DateJoined: s.now()}, req)
	s.accounts = append(s.accounts, account{user: u, hash: hash})
	return u, nil
}

// UpdateUser applies req. An empty hash keeps the current password.
func (s *Store) UpdateUser(id int64, req model.UserRequest, hash string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.accountIndex(id)
	if i < 0 {
		return model.User{}, ErrNotFound
	}
	for j, a := range s.accounts {
		if j != i && strings.EqualFold(a.user.Username, req.Username) {
			return model.User{}, ErrDuplicateUsername
		}
	}
	s.accounts[i].user = userFrom(s.accounts[i].user, req)
	if hash != "" {
		s.accounts[i].hash = hash
	}
	return s.accounts[i].user, nil
}

func (s *Store) SetPassword(id int64, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.accountIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	s.accounts[i].hash = hash
	return nil
}

func (s *Store) DeleteUser(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.accountIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	s.accounts = append(s.accounts[:i], s.accounts[i+1:]...)
	return nil
}

func userFrom(base model.User, req model.UserRequest) model.User {
	base.Username = req.Username
	base.Email = req.Email
	base.FirstName = req.FirstName
	base.LastName = req.LastName
	base.Role = req.Role
	base.EmployeeID = req.EmployeeID
	base.Phone = req.Phone
	base.Address = req.Address
	base.Active = req.Active
	return base
}

// Statistics counts accounts by role and lists those joined in the last
// 30 days, newest first.
func (s *Store) Statistics() model.UserStatistics {
	users := s.Users()
	stats := model.UserStatistics{
		TotalUsers:    len(users),
		ByRole:        map[model.Role]int{},
		RecentSignups: []model.User{},
	}
	cutoff := s.now().Add(-30 * 24 * time.Hour)
	for _, u := range users {
		stats.ByRole[u.Role]++
		if u.Active {
			stats.ActiveUsers++
		}
		if u.DateJoined.After(cutoff) {
			stats.RecentSignups = append(stats.RecentSignups, u)
		}
	}
	sort.Slice(stats.RecentSignups, func(i, j int) bool {
		return stats.RecentSignups[i].DateJoined.After(stats.RecentSignups[j].DateJoined)
	})
	return stats
}

// ── Reports ──────────────────────────────────────────────────────────────────

// Reports aggregates the current dataset with the purchases basis.
func (s *Store) Reports() model.ReportBundle {
	in := report.Input{
		Sales:        s.Sales(),
		Transactions: s.Transactions(),
		Products:     s.Products(false),
	}
	return report.Build(in, s.now())
}

// ProfitLoss summarizes the daily, weekly and monthly windows.
func (s *Store) ProfitLoss() model.ProfitLossReport {
	b := s.Reports()
	return model.ProfitLossReport{
		Daily:       report.Totals(b.Daily),
		Weekly:      report.Totals(b.Weekly),
		Monthly:     report.Totals(b.Monthly),
		TopProducts: b.Monthly.TopProducts,
	}
}
