package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/fashionshop-api/inventory"
	"github.com/junaidrashid-git/fashionshop-api/models"
	"github.com/junaidrashid-git/fashionshop-api/pricing"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

// ExportProductsToExcel writes one row per variant so stock can be checked
// against the warehouse count.
func ExportProductsToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products []models.Product
		if err := db.WithContext(c.Request.Context()).Preload("Variants").Order("id ASC").Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Stock")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		// Header row
		headers := []string{
			"ProductID", "SKU", "Name", "Price", "Discount", "FinalPrice", "Active",
			"VariantID", "VariantSKU", "Size", "Color", "VariantStock", "ProductStock", "Available",
		}
		headerRow := sheet.AddRow()
		for _, h := range headers {
			headerRow.AddCell().SetValue(h)
		}

		// Data rows
		for _, p := range products {
			for _, v := range p.Variants {
				v.Product = p
				row := sheet.AddRow()
				row.AddCell().SetValue(p.ID)
				row.AddCell().SetValue(p.SKU)
				row.AddCell().SetValue(p.Name)
				row.AddCell().SetValue(p.Price.StringFixed(2))
				row.AddCell().SetValue(p.Discount.StringFixed(2))
				row.AddCell().SetValue(pricing.DiscountedUnitPrice(p).StringFixed(2))
				row.AddCell().SetValue(p.IsActive)
				row.AddCell().SetValue(v.ID)
				row.AddCell().SetValue(v.SKUVariant)
				row.AddCell().SetValue(v.Size)
				row.AddCell().SetValue(v.Color)
				row.AddCell().SetValue(v.Stock)
				row.AddCell().SetValue(p.Stock)
				row.AddCell().SetValue(inventory.Available(v))
			}
		}

		// Set response headers for download
		c.Header("Content-Disposition", "attachment; filename=products.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
			return
		}
	}
}
