package productcontroller

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/fashionshop-api/controllers"
	"github.com/junaidrashid-git/fashionshop-api/inventory"
	"github.com/junaidrashid-git/fashionshop-api/models"
	"gorm.io/gorm"
)

type RestockInput struct {
	// Delta is added to the variant and its product; negative values write stock off.
	Delta int `json:"delta" binding:"required"`
}

// RestockVariant moves stock for a variant and its product together.
// PUT /admin/products/variants/:id/stock
func RestockVariant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := controllers.ParseID(c, "id")
		if !ok {
			return
		}
		var input RestockInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		var variant models.ProductVariant
		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&variant, id).Error; err != nil {
				return err
			}
			if input.Delta > 0 {
				return inventory.Release(tx, variant, input.Delta)
			}
			return inventory.Reserve(tx, variant, -input.Delta)
		})
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Variant not found"})
			return
		}
		if err != nil {
			controllers.RespondError(c, err)
			return
		}

		if err := db.WithContext(c.Request.Context()).Preload("Product").First(&variant, id).Error; err != nil {
			controllers.RespondError(c, err)
			return
		}
		log.Printf("📦 Variant %s stock moved by %d, now %d", variant.SKUVariant, input.Delta, variant.Stock)
		c.JSON(http.StatusOK, variant)
	}
}
