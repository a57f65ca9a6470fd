package cartControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/fashionshop-api/cart"
	"github.com/junaidrashid-git/fashionshop-api/controllers"
)

// GET /guest/cart prices the cookie cart from the live catalog.
func GetGuestCart(provider *cart.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := provider.FromGuest(c.Request.Context(), cart.ReadGuestCart(c))
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

// POST /guest/cart
func AddToGuestCart(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			controllers.BadRequest(c, "Invalid input: "+err.Error())
			return
		}
		items := cart.ReadGuestCart(c)
		qty := items[input.VariantID] + input.Quantity
		if err := svc.CheckAvailable(c.Request.Context(), input.VariantID, qty); err != nil {
			controllers.RespondError(c, err)
			return
		}
		items[input.VariantID] = qty
		cart.WriteGuestCart(c, items)
		c.JSON(http.StatusOK, gin.H{"variant_id": input.VariantID, "quantity": qty})
	}
}

// PUT /guest/cart/:variant_id
func UpdateGuestCartItem(svc *cart.Service) gin.HandlerFunc {
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
		if err := svc.CheckAvailable(c.Request.Context(), variantID, input.Quantity); err != nil {
			controllers.RespondError(c, err)
			return
		}
		items := cart.ReadGuestCart(c)
		items[variantID] = input.Quantity
		cart.WriteGuestCart(c, items)
		c.JSON(http.StatusOK, gin.H{"variant_id": variantID, "quantity": input.Quantity})
	}
}

// DELETE /guest/cart/:variant_id
func RemoveGuestCartItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		variantID, ok := controllers.ParseID(c, "variant_id")
		if !ok {
			return
		}
		items := cart.ReadGuestCart(c)
		if _, found := items[variantID]; !found {
			controllers.RespondError(c, cart.ErrItemNotFound)
			return
		}
		delete(items, variantID)
		cart.WriteGuestCart(c, items)
		c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
	}
}

// DELETE /guest/cart
func ClearGuestCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		cart.ClearGuestCart(c)
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}
