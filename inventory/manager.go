// Package inventory moves stock for a variant and its product as one unit.
// Both counters change together or neither does.
package inventory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/junaidrashid-git/fashionshop-api/models"
	"gorm.io/gorm"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("stock quantity must be greater than zero")
)

type InsufficientStockError struct {
	SKU         string `json:"sku"`
	ProductName string `json:"product_name"`
	Size        string `json:"size,omitempty"`
	Color       string `json:"color,omitempty"`
	Available   int    `json:"available"`
	Requested   int    `json:"requested"`
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if attrs := variantLabel(e.Size, e.Color); attrs != "" {
		name += " (" + attrs + ")"
	}
	return fmt.Sprintf("insufficient stock for %s: %d available, %d requested", name, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

func variantLabel(size, color string) string {
	parts := make([]string, 0, 2)
	if size != "" {
		parts = append(parts, size)
	}
	if color != "" {
		parts = append(parts, color)
	}
	return strings.Join(parts, " / ")
}

// Shortage builds the error for a variant whose Product is loaded.
func Shortage(v models.ProductVariant, requested int) *InsufficientStockError {
	return &InsufficientStockError{
		SKU:         v.SKUVariant,
		ProductName: v.Product.Name,
		Size:        v.Size,
		Color:       v.Color,
		Available:   Available(v),
		Requested:   requested,
	}
}

// Available is what can still be sold of v: the lower of both counters.
func Available(v models.ProductVariant) int {
	if v.Product.Stock < v.Stock {
		return v.Product.Stock
	}
	return v.Stock
}

func HasStock(v models.ProductVariant, qty int) bool {
	return v.Stock >= qty && v.Product.Stock >= qty
}

// Reserve takes qty off the variant and its product. Each UPDATE only matches
// while enough stock remains, so a stale read can never oversell.
func Reserve(tx *gorm.DB, v models.ProductVariant, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	return tx.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ProductVariant{}).
			Where("id = ? AND stock >= ?", v.ID, qty).
			UpdateColumn("stock", gorm.Expr("stock - ?", qty))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return shortageFromDB(tx, v.ID, qty)
		}

		res = tx.Model(&models.Product{}).
			Where("id = ? AND stock >= ?", v.ProductID, qty).
			UpdateColumn("stock", gorm.Expr("stock - ?", qty))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return shortageFromDB(tx, v.ID, qty)
		}
		return nil
	})
}

// Release puts qty back on both counters.
func Release(tx *gorm.DB, v models.ProductVariant, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	return tx.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ProductVariant{}).Where("id = ?", v.ID).
			UpdateColumn("stock", gorm.Expr("stock + ?", qty)).Error; err != nil {
			return err
		}
		return tx.Model(&models.Product{}).Where("id = ?", v.ProductID).
			UpdateColumn("stock", gorm.Expr("stock + ?", qty)).Error
	})
}

// Adjust reserves a positive delta and releases a negative one.
func Adjust(tx *gorm.DB, v models.ProductVariant, delta int) error {
	switch {
	case delta > 0:
		return Reserve(tx, v, delta)
	case delta < 0:
		return Release(tx, v, -delta)
	}
	return nil
}

func shortageFromDB(tx *gorm.DB, variantID uint, qty int) error {
	var current models.ProductVariant
	if err := tx.Preload("Product").First(&current, variantID).Error; err != nil {
		return err
	}
	return Shortage(current, qty)
}
