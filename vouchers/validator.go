package vouchers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/junaidrashid-git/fashionshop-api/models"
	"github.com/junaidrashid-git/fashionshop-api/pricing"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrVoucherNotFound      = errors.New("voucher not found")
	ErrVoucherNotApplicable = errors.New("voucher not applicable")

	ErrInactive           = fmt.Errorf("%w: voucher is disabled", ErrVoucherNotApplicable)
	ErrNotStarted         = fmt.Errorf("%w: voucher is not active yet", ErrVoucherNotApplicable)
	ErrExpired            = fmt.Errorf("%w: voucher has expired", ErrVoucherNotApplicable)
	ErrUsageLimitReached  = fmt.Errorf("%w: voucher usage limit reached", ErrVoucherNotApplicable)
	ErrBelowMinOrderValue = fmt.Errorf("%w: order value is below the voucher minimum", ErrVoucherNotApplicable)
)

// checkValid returns the first reason the voucher cannot be used right now.
func checkValid(v models.Voucher, now time.Time) error {
	switch {
	case !v.IsActive:
		return ErrInactive
	case v.StartAt != nil && now.Before(*v.StartAt):
		return ErrNotStarted
	case v.EndAt != nil && now.After(*v.EndAt):
		return ErrExpired
	case v.UsageLimit != nil && v.UsedCount >= *v.UsageLimit:
		return ErrUsageLimitReached
	}
	return nil
}

// Check is IsApplicable with the rejection reason attached.
func Check(v models.Voucher, orderValue decimal.Decimal, now time.Time) error {
	if err := checkValid(v, now); err != nil {
		return err
	}
	if v.MinOrderValue.Valid && orderValue.LessThan(v.MinOrderValue.Decimal) {
		return ErrBelowMinOrderValue
	}
	return nil
}

func IsValid(v models.Voucher, now time.Time) bool {
	return checkValid(v, now) == nil
}

func IsApplicable(v models.Voucher, orderValue decimal.Decimal, now time.Time) bool {
	return Check(v, orderValue, now) == nil
}

// NormalizeCode trims and upper-cases a shopper-typed code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Find loads a voucher by code. With lock set the row stays locked until tx ends.
func Find(tx *gorm.DB, code string, lock bool) (*models.Voucher, error) {
	q := tx
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var v models.Voucher
	if err := q.Where("UPPER(TRIM(code)) = ?", NormalizeCode(code)).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVoucherNotFound
		}
		return nil, err
	}
	return &v, nil
}

// Redeem counts one use. The limit is re-checked by the UPDATE itself so two
// concurrent checkouts can never both take the last use.
func Redeem(tx *gorm.DB, voucherID uint) error {
	res := tx.Model(&models.Voucher{}).
		Where("id = ? AND (usage_limit IS NULL OR used_count < usage_limit)", voucherID).
		UpdateColumn("used_count", gorm.Expr("used_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUsageLimitReached
	}
	return nil
}

// Release gives back one use, e.g. when an order is cancelled.
func Release(tx *gorm.DB, code string) error {
	return tx.Model(&models.Voucher{}).
		Where("UPPER(TRIM(code)) = ? AND used_count > 0", NormalizeCode(code)).
		UpdateColumn("used_count", gorm.Expr("used_count - ?", 1)).Error
}

type Preview struct {
	Code            string          `json:"code"`
	DiscountPercent int             `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// Preview prices a code against a subtotal without writing anything.
// A blank code previews as no discount.
func (s *Service) Preview(ctx context.Context, code string, subtotal decimal.Decimal) (*Preview, error) {
	subtotal = pricing.Round(subtotal)
	if NormalizeCode(code) == "" {
		return &Preview{DiscountAmount: decimal.Zero, TotalAmount: subtotal}, nil
	}

	v, err := Find(s.db.WithContext(ctx), code, false)
	if err != nil {
		return nil, err
	}
	if err := Check(*v, subtotal, s.now()); err != nil {
		return nil, err
	}

	discount := pricing.VoucherDiscount(subtotal, v.Terms())
	return &Preview{
		Code:            v.Code,
		DiscountPercent: v.DiscountPercent,
		DiscountAmount:  discount,
		TotalAmount:     pricing.TotalAmount(subtotal, discount),
	}, nil
}
