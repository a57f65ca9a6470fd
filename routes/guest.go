package routes

import (
	"github.com/gin-gonic/gin"
	cartControllers "github.com/junaidrashid-git/fashionshop-api/controllers/cart"
)

// SetupGuestRoutes registers the cookie cart used before sign-in.
func SetupGuestRoutes(r *gin.Engine, d Deps) {
	guestCart := r.Group("/guest/cart")
	{
		guestCart.GET("", cartControllers.GetGuestCart(d.CartProvider))
		guestCart.POST("", cartControllers.AddToGuestCart(d.Carts))
		guestCart.PUT("/:variant_id", cartControllers.UpdateGuestCartItem(d.Carts))
		guestCart.DELETE("/:variant_id", cartControllers.RemoveGuestCartItem())
		guestCart.DELETE("", cartControllers.ClearGuestCart())
	}
}
