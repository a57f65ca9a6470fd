package routes

import (
	"github.com/gin-gonic/gin"
	productcontroller "github.com/junaidrashid-git/fashionshop-api/controllers/product"
)

// SetupProductRoutes registers the public stock lookup used by product pages.
func SetupProductRoutes(r *gin.Engine, d Deps) {
	r.GET("/products/variants/:id", productcontroller.GetVariantAvailability(d.DB))
}

func SetupAdminProductRoutes(adminGroup *gin.RouterGroup, d Deps) {
	products := adminGroup.Group("/products")
	{
		products.GET("/export-excel", productcontroller.ExportProductsToExcel(d.DB))
		products.PUT("/variants/:id/stock", productcontroller.RestockVariant(d.DB))
	}
}
