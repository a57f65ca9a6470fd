package paymentControllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/fashionshop-api/models"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

const excelTime = "2006-01-02 15:04:05"

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(excelTime)
}

// BuildPaymentsWorkbook writes one row per gateway transaction, plus one row
// for each payment that never reached the gateway.
func BuildPaymentsWorkbook(payments []models.Payment) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Payments")
	if err != nil {
		return nil, err
	}

	headers := []string{
		"OrderID", "PaymentID", "Method", "Status", "Amount", "PaidAt", "ExpiresAt",
		"Gateway", "TxnRef", "GatewayTxnID", "ResponseCode", "ResponseMessage", "CallbackAt",
	}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetValue(h)
	}

	for _, p := range payments {
		base := func() *xlsx.Row {
			row := sheet.AddRow()
			row.AddCell().SetValue(p.OrderID)
			row.AddCell().SetValue(p.ID)
			row.AddCell().SetValue(string(p.Method))
			row.AddCell().SetValue(string(p.Status))
			row.AddCell().SetValue(p.Amount.StringFixed(2))
			row.AddCell().SetValue(formatTime(p.PaidAt))
			row.AddCell().SetValue(formatTime(p.ExpiresAt))
			return row
		}

		if len(p.Transactions) == 0 {
			base()
			continue
		}
		for _, txn := range p.Transactions {
			row := base()
			row.AddCell().SetValue(string(txn.Gateway))
			row.AddCell().SetValue(txn.TxnRef)
			row.AddCell().SetValue(txn.GatewayTxnID)
			row.AddCell().SetValue(txn.ResponseCode)
			row.AddCell().SetValue(txn.ResponseMessage)
			row.AddCell().SetValue(txn.CreatedAt.Format(excelTime))
		}
	}
	return file, nil
}

// GET /admin/payments/export-excel
func ExportPaymentsToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payments []models.Payment
		if err := db.WithContext(c.Request.Context()).
			Preload("Transactions", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
			Order("order_id ASC").
			Find(&payments).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
			return
		}

		file, err := BuildPaymentsWorkbook(payments)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		c.Header("Content-Disposition", "attachment; filename=payments.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
			return
		}
	}
}
