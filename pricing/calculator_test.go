package pricing

import (
	"testing"

	"github.com/junaidrashid-git/fashionshop-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

func TestDiscountedUnitPrice(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		discount string
		want     string
	}{
		{"ten percent off", "100.00", "10", "90.00"},
		{"no discount", "59.999", "0", "60.00"},
		{"negative discount ignored", "20.00", "-5", "20.00"},
		{"half-up on the cents", "19.99", "15", "16.99"},
		{"full discount", "45.50", "100", "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiscountedUnitPrice(models.Product{Price: dec(tt.price), Discount: dec(tt.discount)})
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestLineTotal(t *testing.T) {
	price := dec("90.00")
	total, err := LineTotal(&price, 2)
	require.NoError(t, err)
	assert.Equal(t, "180.00", total.StringFixed(2))

	_, err = LineTotal(&price, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = LineTotal(nil, 1)
	assert.ErrorIs(t, err, ErrMissingPrice)
}

func TestSubtotal(t *testing.T) {
	assert.Equal(t, "0.00", Subtotal(nil).StringFixed(2))
	assert.Equal(t, "180.55", Subtotal([]decimal.Decimal{dec("100.50"), dec("80.05")}).StringFixed(2))
}

func TestVoucherDiscount(t *testing.T) {
	subtotal := dec("180.00")

	t.Run("no voucher", func(t *testing.T) {
		assert.True(t, VoucherDiscount(subtotal, nil).IsZero())
	})

	t.Run("percent with minimum met", func(t *testing.T) {
		terms := &models.VoucherTerms{DiscountPercent: 20, MinOrderValue: nullDec("100")}
		assert.Equal(t, "36.00", VoucherDiscount(subtotal, terms).StringFixed(2))
	})

	t.Run("capped by max discount", func(t *testing.T) {
		terms := &models.VoucherTerms{DiscountPercent: 20, MaxDiscountAmount: nullDec("20.00")}
		assert.Equal(t, "20.00", VoucherDiscount(subtotal, terms).StringFixed(2))
	})

	t.Run("below minimum order value", func(t *testing.T) {
		terms := &models.VoucherTerms{DiscountPercent: 20, MinOrderValue: nullDec("100.00")}
		assert.True(t, VoucherDiscount(dec("50.00"), terms).IsZero())
	})

	t.Run("never above the subtotal", func(t *testing.T) {
		terms := &models.VoucherTerms{DiscountPercent: 100}
		got := VoucherDiscount(dec("12.34"), terms)
		assert.Equal(t, "12.34", got.StringFixed(2))
	})
}

func TestVoucherDiscountCapInvariant(t *testing.T) {
	caps := []string{"0.00", "5.00", "20.00", "1000.00"}
	subtotals := []string{"0.00", "0.01", "9.99", "180.00", "12345.67"}
	for _, c := range caps {
		for _, s := range subtotals {
			for _, pct := range []int{1, 15, 50, 100} {
				terms := &models.VoucherTerms{DiscountPercent: pct, MaxDiscountAmount: nullDec(c)}
				got := VoucherDiscount(dec(s), terms)
				limit := decimal.Min(dec(c), dec(s))
				assert.Truef(t, got.LessThanOrEqual(limit), "discount %s exceeds min(%s, %s)", got, c, s)
			}
		}
	}
}

func TestTotalAmount(t *testing.T) {
	assert.Equal(t, "144.00", TotalAmount(dec("180.00"), dec("36.00")).StringFixed(2))
	assert.Equal(t, "0.00", TotalAmount(dec("10.00"), dec("25.00")).StringFixed(2))

	// applying twice yields the same cent-exact value
	once := TotalAmount(dec("99.995"), dec("0.00"))
	twice := TotalAmount(once, dec("0.00"))
	assert.True(t, once.Equal(twice))
	assert.Equal(t, "100.00", once.StringFixed(2))
}

func TestTotalAmountExactSubtraction(t *testing.T) {
	pairs := [][2]string{{"180.00", "36.00"}, {"0.01", "0.01"}, {"1000.10", "0.09"}, {"55.55", "20.00"}}
	for _, p := range pairs {
		s, d := dec(p[0]), dec(p[1])
		assert.Equal(t, s.Sub(d).StringFixed(2), TotalAmount(s, d).StringFixed(2))
	}
}

func TestScenarioA(t *testing.T) {
	unit := DiscountedUnitPrice(models.Product{Price: dec("100.00"), Discount: dec("10")})
	line, err := LineTotal(&unit, 2)
	require.NoError(t, err)
	sub := Subtotal([]decimal.Decimal{line})
	discount := VoucherDiscount(sub, &models.VoucherTerms{DiscountPercent: 20, MinOrderValue: nullDec("100")})

	assert.Equal(t, "90.00", unit.StringFixed(2))
	assert.Equal(t, "180.00", sub.StringFixed(2))
	assert.Equal(t, "36.00", discount.StringFixed(2))
	assert.Equal(t, "144.00", TotalAmount(sub, discount).StringFixed(2))
}
