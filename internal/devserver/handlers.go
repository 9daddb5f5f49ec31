package devserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"bizconsole/internal/apierror"
	"bizconsole/internal/model"
)

type handlers struct {
	store  *Store
	tokens *Tokens
	cost   int
	now    func() time.Time
}

// bindAndValidate binds the JSON body and runs the validate tags. It writes
// the error response itself; callers return immediately on false.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON parse error - "+err.Error()))
		return false
	}
	if fields := model.Validate(req); fields != nil {
		c.JSON(http.StatusBadRequest, apierror.NewValidation(fields))
		return false
	}
	return true
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, apierror.New("Not found."))
		return 0, false
	}
	return id, true
}

// fail maps store errors onto responses; anything unexpected goes to
// ErrorHandler.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.New("Not found."))
	case errors.Is(err, ErrInsufficientStock):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	case errors.Is(err, ErrDuplicateUsername):
		c.JSON(http.StatusBadRequest, gin.H{"username": []string{"A user with that username already exists."}})
	default:
		_ = c.Error(err)
	}
}

// ── Products ─────────────────────────────────────────────────────────────────

func (h *handlers) listProducts(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.Query("is_active"))
	c.JSON(http.StatusOK, h.store.Products(activeOnly))
}

func (h *handlers) getProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	p, err := h.store.Product(id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) lowStock(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.LowStock())
}

func (h *handlers) createProduct(c *gin.Context) {
	var req model.ProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	c.JSON(http.StatusCreated, h.store.CreateProduct(req))
}

func (h *handlers) updateProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req model.ProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	p, err := h.store.UpdateProduct(id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) deleteProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.store.DeleteProduct(id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Sales ────────────────────────────────────────────────────────────────────

// saleRequest accepts both the flattened single-product body and the
// multi-item cart body.
type saleRequest struct {
	Items         []model.SaleLine    `json:"items"`
	ProductID     int64               `json:"product_id"`
	Quantity      int                 `json:"quantity"`
	SalePrice     decimal.Decimal     `json:"sale_price"`
	PaymentMethod model.PaymentMethod `json:"payment_method"`
}

func (r saleRequest) cart() model.CartSaleRequest {
	out := model.CartSaleRequest{Items: r.Items, PaymentMethod: r.PaymentMethod}
	if len(out.Items) == 0 && r.ProductID != 0 {
		out.Items = []model.SaleLine{{ProductID: r.ProductID, Quantity: r.Quantity, UnitPrice: r.SalePrice}}
	}
	return out
}

// ownSalesOnly reports whether the caller may only see their own sales.
func ownSalesOnly(c *gin.Context) (int64, bool) {
	claims := GetClaims(c)
	role := model.Role(claims.Role)
	return claims.UserID, role != model.RoleManager && role != model.RoleBoss
}

// listSales returns every sale to MANAGER and BOSS, and a seller's own
// sales to anyone else.
func (h *handlers) listSales(c *gin.Context) {
	sales := h.store.Sales()
	if uid, own := ownSalesOnly(c); own {
		mine := make([]model.Sale, 0, len(sales))
		for _, s := range sales {
			if s.SellerID == uid {
				mine = append(mine, s)
			}
		}
		sales = mine
	}
	c.JSON(http.StatusOK, sales)
}

func (h *handlers) getSale(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	s, err := h.store.Sale(id)
	if uid, own := ownSalesOnly(c); err == nil && own && s.SellerID != uid {
		err = ErrNotFound
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *handlers) createSale(c *gin.Context) {
	var body saleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON parse error - "+err.Error()))
		return
	}
	req := body.cart()
	if fields := model.Validate(req); fields != nil {
		c.JSON(http.StatusBadRequest, apierror.NewValidation(fields))
		return
	}
	claims := GetClaims(c)
	seller, err := h.store.User(claims.UserID)
	if err != nil {
		seller = model.User{ID: claims.UserID, Username: claims.Username}
	}
	sale, err := h.store.CreateSale(seller, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

// profitLossReport is BOSS-only and answers other roles with the custom
// {"error": ...} envelope.
func (h *handlers) profitLossReport(c *gin.Context) {
	if claims := GetClaims(c); claims == nil || model.Role(claims.Role) != model.RoleBoss {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only BOSS can access profit reports"})
		return
	}
	c.JSON(http.StatusOK, h.store.ProfitLoss())
}

// ── Transactions ─────────────────────────────────────────────────────────────

func (h *handlers) listTransactions(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Transactions())
}

func (h *handlers) createTransaction(c *gin.Context) {
	var req model.TransactionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	t, err := h.store.CreateTransaction(req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *handlers) updateTransaction(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req model.TransactionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	t, err := h.store.UpdateTransaction(id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *handlers) deleteTransaction(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.store.DeleteTransaction(id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Users ────────────────────────────────────────────────────────────────────

func (h *handlers) listUsers(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Users())
}

func (h *handlers) getUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	u, err := h.store.User(id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *handlers) createUser(c *gin.Context) {
	var req model.UserRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"password": []string{"This field is required."}})
		return
	}
	hash, err := HashPassword(req.Password, h.cost)
	if err != nil {
		_ = c.Error(err)
		return
	}
	u, err := h.store.CreateUser(req, hash)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *handlers) updateUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req model.UserRequest
	if !bindAndValidate(c, &req) {
		return
	}
	var hash string
	if req.Password != "" {
		var err error
		if hash, err = HashPassword(req.Password, h.cost); err != nil {
			_ = c.Error(err)
			return
		}
	}
	u, err := h.store.UpdateUser(id, req, hash)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *handlers) deleteUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if claims := GetClaims(c); claims != nil && claims.UserID == id {
		c.JSON(http.StatusBadRequest, apierror.New("You cannot delete your own account."))
		return
	}
	if err := h.store.DeleteUser(id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) resetPassword(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req model.ResetPasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}
	hash, err := HashPassword(req.NewPassword, h.cost)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.store.SetPassword(id, hash); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, apierror.New("Password reset successfully."))
}

func (h *handlers) userStatistics(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Statistics())
}

// ── Reports ──────────────────────────────────────────────────────────────────

func (h *handlers) allReports(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Reports())
}

func (h *handlers) periodReport(kind model.PeriodKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		b := h.store.Reports()
		var r model.PeriodReport
		switch kind {
		case model.PeriodDaily:
			r = b.Daily
		case model.PeriodWeekly:
			r = b.Weekly
		case model.PeriodMonthly:
			r = b.Monthly
		default:
			r = b.Yearly
		}
		c.JSON(http.StatusOK, r)
	}
}

// ── Health ───────────────────────────────────────────────────────────────────

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, model.HealthStatus{Status: "healthy", Timestamp: h.now()})
}
