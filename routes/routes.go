package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/fashionshop-api/cart"
	"github.com/junaidrashid-git/fashionshop-api/checkout"
	"github.com/junaidrashid-git/fashionshop-api/config"
	checkoutControllers "github.com/junaidrashid-git/fashionshop-api/controllers/checkout"
	orderControllers "github.com/junaidrashid-git/fashionshop-api/controllers/order"
	"github.com/junaidrashid-git/fashionshop-api/events"
	"github.com/junaidrashid-git/fashionshop-api/idempotency"
	"github.com/junaidrashid-git/fashionshop-api/metrics"
	"github.com/junaidrashid-git/fashionshop-api/orders"
	"github.com/junaidrashid-git/fashionshop-api/vnpay"
	"github.com/junaidrashid-git/fashionshop-api/vouchers"
	"gorm.io/gorm"
)

// Deps is everything the handlers need, built once at startup.
type Deps struct {
	DB      *gorm.DB
	Config  config.Config
	Metrics *metrics.Metrics
	Hub     *orderControllers.Hub

	Carts        *cart.Service
	CartProvider *cart.Provider
	Checkout     checkoutControllers.Deps
	Orders       *orders.Service
	Payments     *vnpay.Service
}

// NewDeps builds the services on top of one database and one event publisher.
// hub may be nil when no live feed is wanted.
func NewDeps(db *gorm.DB, cfg config.Config, pub events.Publisher, m *metrics.Metrics, hub *orderControllers.Hub, idem *idempotency.Store) Deps {
	provider := cart.NewProvider(db)
	payments := vnpay.NewService(db, vnpay.NewGateway(cfg.VNPay), pub, m)
	return Deps{
		DB:           db,
		Config:       cfg,
		Metrics:      m,
		Hub:          hub,
		Carts:        cart.NewService(db),
		CartProvider: provider,
		Checkout: checkoutControllers.Deps{
			Checkout:    checkout.NewService(db, pub, m),
			Carts:       provider,
			Vouchers:    vouchers.NewService(db),
			Payments:    payments,
			Idempotency: idem,
		},
		Orders:   orders.NewService(db, pub),
		Payments: payments,
	}
}

// SetupRoutes is the single entry-point that wires up every route group.
func SetupRoutes(r *gin.Engine, d Deps) {
	// 1️⃣ Public routes: health, metrics, gateway callback, stock lookup, guest cart
	r.GET("/healthz", healthz(d.DB))
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}
	SetupPaymentRoutes(r, d)
	SetupProductRoutes(r, d)
	SetupGuestRoutes(r, d)

	// 2️⃣ User routes (JWT-protected)
	SetupUserRoutes(r, d)

	// 3️⃣ Admin routes (API-Key-protected)
	SetupAdminRoutes(r, d)
}

func healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
