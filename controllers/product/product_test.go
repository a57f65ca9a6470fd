package productcontroller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/fashionshop-api/models"
	"github.com/junaidrashid-git/fashionshop-api/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func stockRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.GET("/products/variants/:id", GetVariantAvailability(db))
	r.GET("/admin/products/export-excel", ExportProductsToExcel(db))
	r.PUT("/admin/products/variants/:id/stock", RestockVariant(db))
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestVariantAvailability(t *testing.T) {
	db := storetest.Open(t)
	v := storetest.SeedVariant(t, db, storetest.ProductSpec{Price: "200.00", Discount: "25", ProductStock: 2, VariantStock: 5})
	r := stockRouter(db)

	w := do(t, r, http.MethodGet, fmt.Sprintf("/products/variants/%d", v.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		UnitPrice string `json:"unit_price"`
		Available int    `json:"available"`
		InStock   bool   `json:"in_stock"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "150", body.UnitPrice)
	assert.Equal(t, 2, body.Available)
	assert.True(t, body.InStock)

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/products/variants/999", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/products/variants/x", nil).Code)
}

func TestVariantAvailabilityHidesInactiveProducts(t *testing.T) {
	db := storetest.Open(t)
	v := storetest.SeedVariant(t, db, storetest.ProductSpec{ProductStock: 2, VariantStock: 2})
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", v.ProductID).Update("is_active", false).Error)

	w := do(t, stockRouter(db), http.MethodGet, fmt.Sprintf("/products/variants/%d", v.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRestockVariant(t *testing.T) {
	db := storetest.Open(t)
	v := storetest.SeedVariant(t, db, storetest.ProductSpec{ProductStock: 4, VariantStock: 2})
	r := stockRouter(db)
	path := fmt.Sprintf("/admin/products/variants/%d/stock", v.ID)

	w := do(t, r, http.MethodPut, path, RestockInput{Delta: 5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	after := storetest.Reload(t, db, v.ID)
	assert.Equal(t, 7, after.Stock)
	assert.Equal(t, 9, after.Product.Stock)

	w = do(t, r, http.MethodPut, path, RestockInput{Delta: -3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	after = storetest.Reload(t, db, v.ID)
	assert.Equal(t, 4, after.Stock)
	assert.Equal(t, 6, after.Product.Stock)

	w = do(t, r, http.MethodPut, path, RestockInput{Delta: -10})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 4, storetest.Reload(t, db, v.ID).Stock)

	w = do(t, r, http.MethodPut, path, RestockInput{Delta: 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPut, "/admin/products/variants/999/stock", RestockInput{Delta: 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportProductsToExcel(t *testing.T) {
	db := storetest.Open(t)
	storetest.SeedVariant(t, db, storetest.ProductSpec{SKU: "A", ProductStock: 3, VariantStock: 2})
	storetest.SeedVariant(t, db, storetest.ProductSpec{SKU: "B", ProductStock: 1, VariantStock: 5})

	w := do(t, stockRouter(db), http.MethodGet, "/admin/products/export-excel", nil)
	require.Equal(t, http.StatusOK, w.Code)

	file, err := xlsx.OpenBinary(w.Body.Bytes())
	require.NoError(t, err)
	rows := file.Sheets[0].Rows
	require.Len(t, rows, 3)
	assert.Equal(t, "VariantSKU", rows[0].Cells[8].Value)
	assert.Equal(t, "2", rows[1].Cells[13].Value)
	assert.Equal(t, "1", rows[2].Cells[13].Value)
}
