package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	CartID    uint       `gorm:"primaryKey" json:"cart_id"`
	UserID    string     `gorm:"uniqueIndex;not null" json:"user_id"` // one cart per user
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	CartID     uint            `gorm:"index;not null" json:"cart_id"`
	VariantID  uint            `gorm:"index;not null" json:"variant_id"`
	Variant    ProductVariant  `gorm:"foreignKey:VariantID" json:"variant"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total_price"`
	AddedAt    time.Time       `json:"added_at"`
}
