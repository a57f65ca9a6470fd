package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product.Discount is a percentage (0-100). Product.Stock is the aggregate over
// all variants and moves together with the variant counters.
type Product struct {
	ID        uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	SKU       string           `gorm:"uniqueIndex;not null" json:"sku"`
	Name      string           `gorm:"not null" json:"name"`
	Price     decimal.Decimal  `gorm:"type:decimal(15,2);not null" json:"price"`
	Discount  decimal.Decimal  `gorm:"type:decimal(5,2);not null;default:0" json:"discount"`
	Stock     int              `gorm:"not null;default:0" json:"stock"`
	IsActive  bool             `json:"is_active"`
	Images    []ProductImage   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	Variants  []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type ProductVariant struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID  uint      `gorm:"index;not null" json:"product_id"`
	Product    Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	SKUVariant string    `gorm:"column:sku_variant;uniqueIndex;not null" json:"sku_variant"`
	Size       string    `json:"size,omitempty"`
	Color      string    `json:"color,omitempty"`
	Stock      int       `gorm:"not null;default:0" json:"stock"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ProductImage struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID uint   `gorm:"index;not null" json:"product_id"`
	URL       string `gorm:"not null" json:"url"`
	SortOrder int    `json:"sort_order"`
}

// PrimaryImage returns the first image by sort order, or "" when the product has none loaded.
func (p Product) PrimaryImage() string {
	best := -1
	for i, img := range p.Images {
		if best < 0 || img.SortOrder < p.Images[best].SortOrder {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return p.Images[best].URL
}
