package productcontroller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/fashionshop-api/controllers"
	"github.com/junaidrashid-git/fashionshop-api/inventory"
	"github.com/junaidrashid-git/fashionshop-api/models"
	"github.com/junaidrashid-git/fashionshop-api/pricing"
	"gorm.io/gorm"
)

// GetVariantAvailability answers what the product page needs before an add
// to cart: the price after discount and how many units can still be sold.
// URL param: /products/variants/:id
func GetVariantAvailability(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := controllers.ParseID(c, "id")
		if !ok {
			return
		}

		var variant models.ProductVariant
		if err := db.WithContext(c.Request.Context()).Preload("Product").First(&variant, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Variant not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve variant"})
			}
			return
		}
		if !variant.Product.IsActive {
			c.JSON(http.StatusNotFound, gin.H{"error": "Variant not found"})
			return
		}

		available := inventory.Available(variant)
		c.JSON(http.StatusOK, gin.H{
			"variant_id":   variant.ID,
			"sku_variant":  variant.SKUVariant,
			"product_name": variant.Product.Name,
			"size":         variant.Size,
			"color":        variant.Color,
			"unit_price":   pricing.DiscountedUnitPrice(variant.Product),
			"available":    available,
			"in_stock":     available > 0,
		})
	}
}
