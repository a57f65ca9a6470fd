package routes

import (
	"github.com/gin-gonic/gin"
	cartControllers "github.com/junaidrashid-git/fashionshop-api/controllers/cart"
	checkoutControllers "github.com/junaidrashid-git/fashionshop-api/controllers/checkout"
	userControllers "github.com/junaidrashid-git/fashionshop-api/controllers/user"
	"github.com/junaidrashid-git/fashionshop-api/middleware"
)

// SetupUserRoutes registers all "/user/*" endpoints. Requires JWT middleware.
func SetupUserRoutes(r *gin.Engine, d Deps) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken(d.Config.JWTSecret))
	{
		// ──────────────── Profile ────────────────
		userGroup.GET("", userControllers.GetUser(d.DB))
		userGroup.PUT("", userControllers.UpdateUser(d.DB))

		// ──────────────── Shopping Cart ────────────────
		cartGroup := userGroup.Group("/cart")
		{
			cartGroup.GET("", cartControllers.GetCart(d.CartProvider))
			cartGroup.POST("", cartControllers.AddToCart(d.Carts))
			cartGroup.POST("/merge", cartControllers.MergeGuestCart(d.Carts))
			cartGroup.PUT("/:variant_id", cartControllers.UpdateCartItem(d.Carts))
			cartGroup.DELETE("/:variant_id", cartControllers.RemoveCartItem(d.Carts))
			cartGroup.DELETE("", cartControllers.ClearCart(d.Carts))
		}

		// ──────────────── Checkout ────────────────
		checkoutGroup := userGroup.Group("/checkout")
		{
			checkoutGroup.GET("", checkoutControllers.GetCheckoutForm(d.Checkout))
			checkoutGroup.POST("/voucher-preview", checkoutControllers.PreviewVoucher(d.Checkout))
			checkoutGroup.POST("", checkoutControllers.PlaceOrder(d.Checkout))
		}

		// ──────────────── Orders ────────────────
		SetupUserOrderRoutes(userGroup, d)
	}
}
