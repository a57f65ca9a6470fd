// Package pricing holds the money arithmetic shared by checkout, voucher preview and
// order edits. Every result is rounded half-up to two decimals.
package pricing

import (
	"errors"

	"github.com/junaidrashid-git/fashionshop-api/models"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrMissingPrice    = errors.New("unit price is required")
)

const scale = 2

var hundred = decimal.NewFromInt(100)

// Round applies the shop's money rounding: half away from zero, two places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(scale)
}

func percentOf(amount, percent decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(percent).Div(hundred))
}

// DiscountedUnitPrice is price minus the product's own percentage discount.
func DiscountedUnitPrice(p models.Product) decimal.Decimal {
	if p.Discount.LessThanOrEqual(decimal.Zero) {
		return Round(p.Price)
	}
	return Round(p.Price.Sub(percentOf(p.Price, p.Discount)))
}

func LineTotal(unitPrice *decimal.Decimal, qty int) (decimal.Decimal, error) {
	if unitPrice == nil {
		return decimal.Zero, ErrMissingPrice
	}
	if qty <= 0 {
		return decimal.Zero, ErrInvalidQuantity
	}
	return Round(unitPrice.Mul(decimal.NewFromInt(int64(qty)))), nil
}

// Subtotal sums line totals; an empty list is 0.00.
func Subtotal(lineTotals []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range lineTotals {
		sum = sum.Add(t)
	}
	return Round(sum)
}

// VoucherDiscount never exceeds the voucher cap nor the subtotal itself.
func VoucherDiscount(subtotal decimal.Decimal, terms *models.VoucherTerms) decimal.Decimal {
	if terms == nil || terms.DiscountPercent <= 0 {
		return decimal.Zero
	}
	if terms.MinOrderValue.Valid && subtotal.LessThan(terms.MinOrderValue.Decimal) {
		return decimal.Zero
	}
	discount := percentOf(subtotal, decimal.NewFromInt(int64(terms.DiscountPercent)))
	if terms.MaxDiscountAmount.Valid && discount.GreaterThan(terms.MaxDiscountAmount.Decimal) {
		discount = Round(terms.MaxDiscountAmount.Decimal)
	}
	if discount.GreaterThan(subtotal) {
		discount = Round(subtotal)
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount
}

func TotalAmount(subtotal, discount decimal.Decimal) decimal.Decimal {
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return Round(total)
}
