// Package storetest opens throwaway in-memory databases with the shop schema and
// seeds the rows most tests need.
package storetest

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/junaidrashid-git/fashionshop-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a migrated database private to the calling test. A single
// connection means concurrent transactions queue up instead of failing with
// SQLITE_BUSY.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func SeedUser(t testing.TB, db *gorm.DB, email string) models.User {
	t.Helper()
	u := models.User{
		Email:    email,
		FullName: "Nguyen Van A",
		Phone:    "0901234567",
		Address:  "12 Ly Thuong Kiet, Ward 7, District 10, Ho Chi Minh City",
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

type ProductSpec struct {
	SKU          string
	Name         string
	Price        string
	Discount     string
	ProductStock int
	VariantStock int
	Size         string
	Color        string
}

// SeedVariant creates a product with one variant and one image.
func SeedVariant(t testing.TB, db *gorm.DB, spec ProductSpec) models.ProductVariant {
	t.Helper()
	if spec.SKU == "" {
		spec.SKU = "SKU-" + uuid.NewString()[:8]
	}
	if spec.Name == "" {
		spec.Name = "Linen Shirt"
	}
	if spec.Price == "" {
		spec.Price = "100.00"
	}
	if spec.Discount == "" {
		spec.Discount = "0"
	}
	if spec.Size == "" {
		spec.Size = "M"
	}
	if spec.Color == "" {
		spec.Color = "White"
	}

	p := models.Product{
		SKU:      spec.SKU,
		Name:     spec.Name,
		Price:    Dec(spec.Price),
		Discount: Dec(spec.Discount),
		Stock:    spec.ProductStock,
		IsActive: true,
		Images:   []models.ProductImage{{URL: "/img/" + spec.SKU + ".jpg"}},
	}
	require.NoError(t, db.Create(&p).Error)

	v := models.ProductVariant{
		ProductID:  p.ID,
		SKUVariant: spec.SKU + "-" + spec.Size + "-" + spec.Color,
		Size:       spec.Size,
		Color:      spec.Color,
		Stock:      spec.VariantStock,
	}
	require.NoError(t, db.Create(&v).Error)
	v.Product = p
	return v
}

type VoucherSpec struct {
	Code          string
	Percent       int
	MaxDiscount   string
	MinOrderValue string
	UsageLimit    *int
	UsedCount     int
	Inactive      bool
	StartAt       *time.Time
	EndAt         *time.Time
}

func SeedVoucher(t testing.TB, db *gorm.DB, spec VoucherSpec) models.Voucher {
	t.Helper()
	v := models.Voucher{
		Code:            spec.Code,
		DiscountPercent: spec.Percent,
		UsageLimit:      spec.UsageLimit,
		UsedCount:       spec.UsedCount,
		IsActive:        !spec.Inactive,
		StartAt:         spec.StartAt,
		EndAt:           spec.EndAt,
	}
	if spec.MaxDiscount != "" {
		v.MaxDiscountAmount = decimal.NewNullDecimal(Dec(spec.MaxDiscount))
	}
	if spec.MinOrderValue != "" {
		v.MinOrderValue = decimal.NewNullDecimal(Dec(spec.MinOrderValue))
	}
	require.NoError(t, db.Create(&v).Error)
	return v
}

func IntPtr(n int) *int { return &n }

// Reload re-reads the variant and its product.
func Reload(t testing.TB, db *gorm.DB, variantID uint) models.ProductVariant {
	t.Helper()
	var v models.ProductVariant
	require.NoError(t, db.Preload("Product").First(&v, variantID).Error)
	return v
}

type OrderSpec struct {
	UserID        string
	Method        models.PaymentMethod
	Status        models.OrderStatus
	PaymentStatus models.PaymentStatus
	Variant       models.ProductVariant
	Quantity      int
	UnitPrice     string
	Voucher       *models.Voucher
	ExpiresAt     *time.Time
}

// SeedOrder writes an order with one line straight to the tables, bypassing
// checkout. Totals are computed from the line and the optional voucher percent
// without caps; stock is not touched.
func SeedOrder(t testing.TB, db *gorm.DB, spec OrderSpec) models.Order {
	t.Helper()
	if spec.Method == "" {
		spec.Method = models.PaymentMethodCOD
	}
	if spec.Status == "" {
		spec.Status = models.OrderStatusPending
	}
	if spec.PaymentStatus == "" {
		spec.PaymentStatus = models.PaymentStatusPending
	}
	if spec.Quantity == 0 {
		spec.Quantity = 1
	}
	if spec.UnitPrice == "" {
		spec.UnitPrice = "100.00"
	}

	unit := Dec(spec.UnitPrice)
	sub := unit.Mul(decimal.NewFromInt(int64(spec.Quantity))).Round(2)
	discount := decimal.Zero
	o := models.Order{
		UserID:        spec.UserID,
		Status:        spec.Status,
		PaymentMethod: spec.Method,
		Items: []models.OrderItem{{
			VariantID:   spec.Variant.ID,
			ProductName: spec.Variant.Product.Name,
			Size:        spec.Variant.Size,
			Color:       spec.Variant.Color,
			Quantity:    spec.Quantity,
			UnitPrice:   unit,
			TotalPrice:  sub,
		}},
		Address: models.OrderAddress{RecipientName: "Tran Thi B", Phone: "0912345678", AddressLine: "12 Ly Thuong Kiet"},
	}
	if spec.Voucher != nil {
		o.VoucherCode = spec.Voucher.Code
		o.VoucherDiscountPercent = spec.Voucher.DiscountPercent
		o.VoucherMaxDiscount = spec.Voucher.MaxDiscountAmount
		o.VoucherMinOrderValue = spec.Voucher.MinOrderValue
		discount = sub.Mul(decimal.NewFromInt(int64(spec.Voucher.DiscountPercent))).Div(decimal.NewFromInt(100)).Round(2)
	}
	o.SubTotal = sub
	o.DiscountAmount = discount
	o.TotalAmount = sub.Sub(discount)
	o.Payment = models.Payment{Method: spec.Method, Status: spec.PaymentStatus, Amount: o.TotalAmount, ExpiresAt: spec.ExpiresAt}
	require.NoError(t, db.Create(&o).Error)
	return o
}

// Payment re-reads the payment of an order.
func Payment(t testing.TB, db *gorm.DB, orderID uint) models.Payment {
	t.Helper()
	var p models.Payment
	require.NoError(t, db.Where("order_id = ?", orderID).First(&p).Error)
	return p
}
