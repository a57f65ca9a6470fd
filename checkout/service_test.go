package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/junaidrashid-git/fashionshop-api/cart"
	"github.com/junaidrashid-git/fashionshop-api/events"
	"github.com/junaidrashid-git/fashionshop-api/inventory"
	"github.com/junaidrashid-git/fashionshop-api/models"
	"github.com/junaidrashid-git/fashionshop-api/storetest"
	"github.com/junaidrashid-git/fashionshop-api/vouchers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func codForm() Form {
	return Form{RecipientName: "Tran Thi B", Phone: "0912345678", PaymentMethod: models.PaymentMethodCOD}
}

func accountSnapshot(t *testing.T, db *gorm.DB, userID string, lines map[uint]int) cart.Snapshot {
	t.Helper()
	svc := cart.NewService(db)
	for variantID, qty := range lines {
		_, err := svc.SetQuantity(context.Background(), userID, variantID, qty, false)
		require.NoError(t, err)
	}
	snap, err := cart.NewProvider(db).FromAccount(context.Background(), userID)
	require.NoError(t, err)
	return snap
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestPlaceOrderWithVoucher(t *testing.T) {
	db := storetest.Open(t)
	u := storetest.SeedUser(t, db, "shopper@shop.test")
	v := storetest.SeedVariant(t, db, storetest.ProductSpec{Price: "100.00", Discount: "10", ProductStock: 10, VariantStock: 5})
	voucher := storetest.SeedVoucher(t, db, storetest.VoucherSpec{Code: "SALE20", Percent: 20, MinOrderValue: "100"})
	rec := &recorder{}
	svc := NewService(db, rec, nil)

	snap := accountSnapshot(t, db, u.ID, map[uint]int{v.ID: 2})
	form := codForm()
	form.VoucherCode = "sale20"
	form.Note = "  call before delivery "

	res, err := svc.PlaceOrder(context.Background(), u.Email, form, snap)
	require.NoError(t, err)
	assert.False(t, res.ClearGuestCookie)

	var order models.Order
	require.NoError(t, db.Preload("Items").Preload("Address").Preload("Payment").First(&order, res.OrderID).Error)
	assert.Equal(t, "180.00", order.SubTotal.StringFixed(2))
	assert.Equal(t, "36.00", order.DiscountAmount.StringFixed(2))
	assert.Equal(t, "144.00", order.TotalAmount.StringFixed(2))
	assert.Equal(t, "SALE20", order.VoucherCode)
	assert.Equal(t, 20, order.VoucherDiscountPercent)
	assert.Equal(t, models.OrderStatusPending, order.Status)

	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, "90.00", order.Items[0].UnitPrice.StringFixed(2))

	assert.Equal(t, "12 Ly Thuong Kiet", order.Address.AddressLine)
	assert.Equal(t, "call before delivery", order.Address.Note)

	assert.Equal(t, models.PaymentStatusPending, order.Payment.Status)
	assert.Equal(t, "144.00", order.Payment.Amount.StringFixed(2))
	assert.Nil(t, order.Payment.PaidAt)

	stock := storetest.Reload(t, db, v.ID)
	assert.Equal(t, 3, stock.Stock)
	assert.Equal(t, 8, stock.Product.Stock)

	var used models.Voucher
	require.NoError(t, db.First(&used, voucher.ID).Error)
	assert.Equal(t, 1, used.UsedCount)

	assert.Zero(t, countRows(t, db, &models.CartItem{}))

	require.Len(t, rec.events, 1)
	assert.Equal(t, events.OrderPlaced, rec.events[0].Type)
	assert.Equal(t, res.OrderID, rec.events[0].OrderID)
}

func TestPlaceOrderCappedVoucher(t *testing.T) {
	db := storetest.Open(t)
	u := storetest.SeedUser(t, db, "cap@shop.test")
	v := storetest.SeedVariant(t, db, storetest.ProductSpec{Price: "100.00", Discount: "10", ProductStock: 10, VariantStock: 5})
	storetest.SeedVoucher(t, db, storetest.VoucherSpec{Code: "CAP20", Percent: 20, MaxDiscount: "20.00"})

	form := codForm()
	form.VoucherCode = "CAP20"
	res, err := NewService(db, nil, nil).PlaceOrder(context.Background(), u.Email, form, accountSnapshot(t, db, u.ID, map[uint]int{v.ID: 2}))
	require.NoError(t, err)
	assert.Equal(t, "20.00", res.Order.DiscountAmount.StringFixed(2))
	assert.Equal(t, "160.00", res.Order.TotalAmount.StringFixed(2))
	assert.True(t, res.Order.VoucherMaxDiscount.Valid)
}

func TestPlaceOrderInsufficientStockIsAllOrNothing(t *testing.T) {
	db := storetest.Open(t)
	u := storetest.SeedUser(t, db, "short@shop.test")
	ok := storetest.SeedVariant(t, db, storetest.ProductSpec{Name: "Tee", ProductStock: 10, VariantStock: 10})
	short := storetest.SeedVariant(t, db, storetest.ProductSpec{Name: "Boots", ProductStock: 10, VariantStock: 3, Size: "42", Color: "Black"})

	snap := cart.Snapshot{Source: cart.SourceAccount, Lines: []cart.Line{
		{VariantID: ok.ID, Quantity: 2, UnitPrice: storetest.Dec("10.00"), LineTotal: storetest.Dec("20.00")},
		{VariantID: short.ID, Quantity: 5, UnitPrice: storetest.Dec("50.00"), LineTotal: storetest.Dec("250.00")},
	}}

	_, err := NewService(db, nil, nil).PlaceOrder(context.Background(), u.Email, codForm(), snap)
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)

	var shortage *inventory.InsufficientStockError
	require.True(t, errors.As(err, &shortage))
	assert.Equal(t, "Boots", shortage.ProductName)
	assert.Equal(t, "42", shortage.Size)
	assert.Equal(t, "Black", shortage.Color)
	assert.Equal(t, 3, shortage.Available)

	assert.Equal(t, 10, storetest.Reload(t, db, ok.ID).Stock)
	assert.Equal(t, 10, storetest.Reload(t, db, ok.ID).Product.Stock)
	assert.Equal(t, 3, storetest.Reload(t, db, short.ID).Stock)
	assert.Equal(t, 10, storetest.Reload(t, db, short.ID).Product.Stock)
	assert.Zero(t, countRows(t, db, &models.Order{}))
	assert.Zero(t, countRows(t, db, &models.Payment{}))
}

func TestPlaceOrderAggregatesDemandPerProduct(t *testing.T) {
	db := storetest.Open(t)
	u := storetest.SeedUser(t, db, "agg@shop.test")
	v := storetest.SeedVariant(t, db, storetest.ProductSpec{ProductStock: 3, VariantStock: 3})

	snap := cart.Snapshot{Source: cart.SourceGuest, Lines: []cart.Line{
		{VariantID: v.ID, Quantity: 2, UnitPrice: storetest.Dec("10.00")},
		{VariantID: v.ID, Quantity: 2, UnitPrice: storetest.Dec("10.00")},
	}}
	_, err := NewService(db, nil, nil).PlaceOrder(context.Background(), u.Email, codForm(), snap)
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
	assert.Equal(t, 3, storetest.Reload(t, db, v.ID).Stock)
}

func TestPlaceOrderVoucherRejectionRollsBackStock(t *testing.T) {
	db := storetest.Open(t)
	u := storetest.SeedUser(t, db, "vr@shop.test")
	v := storetest.SeedVariant(t, db, storetest.ProductSpec{Price: "50.00", ProductStock: 10, VariantStock: 10})
	storetest.SeedVoucher(t, db, storetest.VoucherSpec{Code: "BIG", Percent: 10, MinOrderValue: "100.00"})
	snap := accountSnapshot(t, db, u.ID, map[uint]int{v.ID: 1})
	svc := NewService(db, nil, nil)

	form := codForm()
	form.VoucherCode = "BIG"
	_, err := svc.PlaceOrder(context.Background(), u.Email, form, snap)
	require.ErrorIs(t, err, ErrVoucherInvalid)
	assert.ErrorIs(t, err, vouchers.ErrBelowMinOrderValue)

	form.VoucherCode = "MISSING"
	_, err = svc.PlaceOrder(context.Background(), u.Email, form, snap)
	require.ErrorIs(t, err, ErrVoucherInvalid)
	assert.ErrorIs(t, err, vouchers.ErrVoucherNotFound)

	assert.Equal(t, 10, storetest.Reload(t, db, v.ID).Stock)
	assert.Equal(t, 10, storetest.Reload(t, db, v.ID).Product.Stock)
	assert.Zero(t, countRows(t, db, &models.Order{}))
	assert.EqualValues(t, 1, countRows(t, db, &models.CartItem{}))
}

func TestPlaceOrderVoucherUsageLimit(t *testing.T) {
	db := storetest.Open(t)
	a := storetest.SeedUser(t, db, "first@shop.test")
	b := storetest.SeedUser(t, db, "second@shop.test")
	v := storetest.SeedVariant(t, db, storetest.ProductSpec{Price: "100.00", ProductStock: 10, VariantStock: 10})
	storetest.SeedVoucher(t, db, storetest.VoucherSpec{Code: "LAST", Percent: 10, UsageLimit: storetest.IntPtr(1)})
	svc := NewService(db, nil, nil)

	form := codForm()
	form.VoucherCode = "LAST"
	_, err := svc.PlaceOrder(context.Background(), a.Email, form, accountSnapshot(t, db, a.ID, map[uint]int{v.ID: 1}))
	require.NoError(t, err)

	_, err = svc.PlaceOrder(context.Background(), b.Email, form, accountSnapshot(t, db, b.ID, map[uint]int{v.ID: 1}))
	require.ErrorIs(t, err, ErrVoucherInvalid)
	assert.ErrorIs(t, err, vouchers.ErrUsageLimitReached)
	assert.Equal(t, 9, storetest.Reload(t, db, v.ID).Stock)
}

func TestPlaceOrderGuestSourceKeepsAccountCart(t *testing.T) {
	db := storetest.Open(t)
	u := storetest.SeedUser(t, db, "guest@shop.test")
	stored := storetest.SeedVariant(t, db, storetest.ProductSpec{ProductStock: 10, VariantStock: 10})
	cookie := storetest.SeedVariant(t, db, storetest.ProductSpec{Price: "30.00", ProductStock: 10, VariantStock: 10})
	accountSnapshot(t, db, u.ID, map[uint]int{stored.ID: 1})

	snap, err := cart.NewProvider(db).FromGuest(context.Background(), map[uint]int{cookie.ID: 2})
	require.NoError(t, err)

	form := codForm()
	form.PaymentMethod = models.PaymentMethodBankTransfer
	res, err := NewService(db, nil, nil).PlaceOrder(context.Background(), u.Email, form, snap)
	require.NoError(t, err)
	assert.True(t, res.ClearGuestCookie)
	assert.Equal(t, "60.00", res.Order.TotalAmount.StringFixed(2))
	assert.Equal(t, models.PaymentMethodBankTransfer, res.Order.Payment.Method)
	assert.EqualValues(t, 1, countRows(t, db, &models.CartItem{}))
}

func TestPlaceOrderPreconditions(t *testing.T) {
	db := storetest.Open(t)
	u := storetest.SeedUser(t, db, "pre@shop.test")
	v := storetest.SeedVariant(t, db, storetest.ProductSpec{ProductStock: 5, VariantStock: 5})
	svc := NewService(db, nil, nil)
	ctx := context.Background()
	snap := cart.Snapshot{Source: cart.SourceGuest, Lines: []cart.Line{{VariantID: v.ID, Quantity: 1, UnitPrice: storetest.Dec("1.00")}}}

	_, err := svc.PlaceOrder(ctx, " ", codForm(), snap)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = svc.PlaceOrder(ctx, "ghost@shop.test", codForm(), snap)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.PlaceOrder(ctx, u.Email, codForm(), cart.Snapshot{})
	assert.ErrorIs(t, err, ErrCartEmpty)

	gone := cart.Snapshot{Lines: []cart.Line{{VariantID: 9999, Quantity: 1, UnitPrice: storetest.Dec("1.00")}}}
	_, err = svc.PlaceOrder(ctx, u.Email, codForm(), gone)
	assert.ErrorIs(t, err, ErrCartEmpty)

	bad := codForm()
	bad.PaymentMethod = "crypto"
	_, err = svc.PlaceOrder(ctx, u.Email, bad, snap)
	assert.ErrorIs(t, err, ErrInvalidForm)

	noName := codForm()
	noName.RecipientName = " "
	_, err = svc.PlaceOrder(ctx, u.Email, noName, snap)
	assert.ErrorIs(t, err, ErrInvalidForm)

	assert.Equal(t, 5, storetest.Reload(t, db, v.ID).Stock)
}

func TestConcurrentCheckoutsForLastUnit(t *testing.T) {
	db := storetest.Open(t)
	v := storetest.SeedVariant(t, db, storetest.ProductSpec{ProductStock: 1, VariantStock: 1})
	svc := NewService(db, nil, nil)

	emails := []string{"one@shop.test", "two@shop.test"}
	for _, e := range emails {
		storetest.SeedUser(t, db, e)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(emails))
	for i, e := range emails {
		wg.Add(1)
		go func(i int, email string) {
			defer wg.Done()
			snap := cart.Snapshot{Source: cart.SourceGuest, Lines: []cart.Line{{VariantID: v.ID, Quantity: 1, UnitPrice: storetest.Dec("10.00")}}}
			_, errs[i] = svc.PlaceOrder(context.Background(), email, codForm(), snap)
		}(i, e)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
	}
	assert.Equal(t, 1, succeeded)
	got := storetest.Reload(t, db, v.ID)
	assert.Equal(t, 0, got.Stock)
	assert.Equal(t, 0, got.Product.Stock)
}

func TestPrefilledForm(t *testing.T) {
	db := storetest.Open(t)
	u := storetest.SeedUser(t, db, "pf@shop.test")

	form, err := NewService(db, nil, nil).PrefilledForm(context.Background(), u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.FullName, form.RecipientName)
	assert.Equal(t, u.Phone, form.Phone)
	assert.Equal(t, "12 Ly Thuong Kiet", form.AddressLine)
}

func TestStreetLine(t *testing.T) {
	assert.Equal(t, "123 Nguyen Hue", StreetLine(" 123 Nguyen Hue , Q1, TP.HCM"))
	assert.Equal(t, "45 Le Loi", StreetLine("45 Le Loi"))
	assert.Equal(t, "", StreetLine("  "))
	assert.Equal(t, "", StreetLine(", District 3"))
}
