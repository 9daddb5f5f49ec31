// Package devserver is a partial development backend for the console. It
// serves the same REST surface as the production API from an in-memory
// store, and route groups can be left undeployed to reproduce a
// half-rolled-out backend locally.
package devserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bizconsole/internal/apierror"
	"bizconsole/internal/model"
)

// Route groups that can be disabled.
const (
	GroupAuth         = "auth"
	GroupProducts     = "products"
	GroupSales        = "sales"
	GroupTransactions = "transactions"
	GroupUsers        = "users"
	GroupReports      = "reports"
	GroupHealth       = "health"
)

type Options struct {
	Store      *Store
	Secret     string
	TokenTTL   time.Duration
	Disabled   map[string]bool // route groups left unregistered
	BcryptCost int             // 0 means DefaultBcryptCost
	Release    bool
	Now        func() time.Time
}

// NewRouter wires all handlers under /api and returns the gin engine.
func NewRouter(opts Options) *gin.Engine {
	if opts.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 8 * time.Hour
	}
	h := &handlers{
		store:  opts.Store,
		tokens: NewTokens(opts.Secret, opts.TokenTTL, opts.Now),
		cost:   opts.BcryptCost,
		now:    opts.Now,
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(RequestID())
	r.Use(Logger())
	r.Use(Recovery())
	r.Use(CORS())
	r.Use(ErrorHandler())
	r.Use(RateLimiter(1000, time.Minute))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, apierror.New("Not found."))
	})

	enabled := func(group string) bool { return !opts.Disabled[group] }
	api := r.Group("/api")

	if enabled(GroupHealth) {
		api.GET("/health/", h.health)
	}
	if enabled(GroupAuth) {
		api.POST("/auth/login/", LoginRateLimiter(), h.login)
	}

	authed := api.Group("", JWTAuth(opts.Secret))
	staff := RequireRole(model.RoleManager, model.RoleBoss)

	if enabled(GroupProducts) {
		g := authed.Group("/products")
		g.GET("/", h.listProducts)
		g.GET("/low-stock/", h.lowStock)
		g.GET("/:id/", h.getProduct)
		g.POST("/", staff, h.createProduct)
		g.PUT("/:id/", staff, h.updateProduct)
		g.DELETE("/:id/", staff, h.deleteProduct)
	}

	if enabled(GroupSales) {
		g := authed.Group("/sales")
		g.GET("/", h.listSales)
		g.POST("/", h.createSale)
		g.GET("/profit_loss_report/", h.profitLossReport)
		g.GET("/:id/", h.getSale)
	}

	if enabled(GroupTransactions) {
		g := authed.Group("/transactions")
		g.GET("/", h.listTransactions)
		g.POST("/", staff, h.createTransaction)
		g.PUT("/:id/", staff, h.updateTransaction)
		g.DELETE("/:id/", staff, h.deleteTransaction)
	}

	if enabled(GroupUsers) {
		g := authed.Group("/users", staff)
		g.GET("/", h.listUsers)
		g.POST("/", h.createUser)
		g.GET("/statistics/", h.userStatistics)
		g.GET("/:id/", h.getUser)
		g.PUT("/:id/", h.updateUser)
		g.DELETE("/:id/", RequireRole(model.RoleBoss), h.deleteUser)
		g.POST("/:id/reset_password/", h.resetPassword)
	}

	if enabled(GroupReports) {
		g := authed.Group("/reports")
		g.GET("/", h.allReports)
		g.GET("/daily/", h.periodReport(model.PeriodDaily))
		g.GET("/weekly/", h.periodReport(model.PeriodWeekly))
		g.GET("/monthly/", h.periodReport(model.PeriodMonthly))
		g.GET("/yearly/", h.periodReport(model.PeriodYearly))
		g.GET("/low_stock/", h.lowStock)
		g.GET("/generate_all_summaries/", h.allReports)
	}

	return r
}
