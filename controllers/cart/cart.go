package cartControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/fashionshop-api/cart"
	"github.com/junaidrashid-git/fashionshop-api/controllers"
	"github.com/junaidrashid-git/fashionshop-api/middleware"
)

type CartItemInput struct {
	VariantID uint `json:"variant_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

type QuantityInput struct {
	Quantity int `json:"quantity" binding:"required"`
}

// GET /user/cart
func GetCart(provider *cart.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := provider.FromAccount(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			controllers.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"cart":       snap,
			"item_count": snap.ItemCount(),
			"sub_total":  snap.Subtotal(),
		})
	}
}

// POST /user/cart adds to the quantity already in the cart.
func AddToCart(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			controllers.BadRequest(c, "Invalid input: "+err.Error())
			return
		}
		item, err := svc.SetQuantity(c.Request.Context(), middleware.UserID(c), input.VariantID, input.Quantity, true)
		if err != nil {
			controllers.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// PUT /user/cart/:variant_id replaces the quantity.
func UpdateCartItem(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		variantID, ok := controllers.ParseID(c, "variant_id")
		if !ok {
			return
		}
		var input QuantityInput
		if err := c.ShouldBindJSON(&input); err != nil {
			controllers.BadRequest(c, "Invalid input: "+err.Error())
			return
		}
		item, err := svc.SetQuantity(c.Request.Context(), middleware.UserID(c), variantID, input.Quantity, false)
		if err != nil {
			controllers.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// DELETE /user/cart/:variant_id
func RemoveCartItem(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		variantID, ok := controllers.ParseID(c, "variant_id")
		if !ok {
			return
		}
		if err := svc.RemoveItem(c.Request.Context(), middleware.UserID(c), variantID); err != nil {
			controllers.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
	}
}

// DELETE /user/cart
func ClearCart(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Clear(c.Request.Context(), middleware.UserID(c)); err != nil {
			controllers.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}

// POST /user/cart/merge moves the guest cookie cart into the account cart.
func MergeGuestCart(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		items := cart.ReadGuestCart(c)
		if len(items) == 0 {
			c.JSON(http.StatusOK, gin.H{"merge_status": false, "merged": []uint{}, "skipped": []uint{}})
			return
		}
		res, err := svc.MergeGuest(c.Request.Context(), middleware.UserID(c), items)
		if err != nil {
			controllers.RespondError(c, err)
			return
		}
		cart.ClearGuestCart(c)
		c.JSON(http.StatusOK, gin.H{"merge_status": len(res.Merged) > 0, "merged": res.Merged, "skipped": res.Skipped})
	}
}
