package routes

import (
	"github.com/gin-gonic/gin"
	paymentControllers "github.com/junaidrashid-git/fashionshop-api/controllers/payment"
	userControllers "github.com/junaidrashid-git/fashionshop-api/controllers/user"
	"github.com/junaidrashid-git/fashionshop-api/middleware"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires API-Key middleware.
func SetupAdminRoutes(r *gin.Engine, d Deps) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateAPIKey(d.Config.AdminAPIKey))
	{
		// ─────────── Stock ───────────
		SetupAdminProductRoutes(adminGroup, d)

		// ─────────── Customers ───────────
		adminGroup.GET("/users", userControllers.GetAllUsers(d.DB))

		// ─────────── Order Management ───────────
		SetupAdminOrderRoutes(adminGroup, d)

		// ─────────── Payments ───────────
		adminGroup.GET("/payments/export-excel", paymentControllers.ExportPaymentsToExcel(d.DB))
	}
}
