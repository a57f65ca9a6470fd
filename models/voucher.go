package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Voucher struct {
	ID                uint                `gorm:"primaryKey" json:"id"`
	Code              string              `gorm:"uniqueIndex;not null" json:"code"`
	DiscountPercent   int                 `gorm:"not null" json:"discount_percent"` // 0-100
	MaxDiscountAmount decimal.NullDecimal `gorm:"type:decimal(15,2)" json:"max_discount_amount"`
	MinOrderValue     decimal.NullDecimal `gorm:"type:decimal(15,2)" json:"min_order_value"`
	StartAt           *time.Time          `json:"start_at,omitempty"`
	EndAt             *time.Time          `json:"end_at,omitempty"`
	UsageLimit        *int                `json:"usage_limit,omitempty"`
	UsedCount         int                 `gorm:"not null;default:0" json:"used_count"`
	IsActive          bool                `json:"is_active"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// BeforeSave stores codes trimmed and upper-cased so lookups by shopper input match.
func (v *Voucher) BeforeSave(tx *gorm.DB) error {
	v.Code = strings.ToUpper(strings.TrimSpace(v.Code))
	return nil
}

// VoucherTerms is the part of a voucher that prices an order.
type VoucherTerms struct {
	DiscountPercent   int
	MaxDiscountAmount decimal.NullDecimal
	MinOrderValue     decimal.NullDecimal
}

func (v Voucher) Terms() *VoucherTerms {
	return &VoucherTerms{
		DiscountPercent:   v.DiscountPercent,
		MaxDiscountAmount: v.MaxDiscountAmount,
		MinOrderValue:     v.MinOrderValue,
	}
}
