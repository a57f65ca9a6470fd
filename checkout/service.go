// Package checkout turns a cart snapshot into a persisted order in one
// transaction: stock is validated and reserved, the voucher is applied and
// redeemed, and the order is written with its items, address and payment.
// Any failure leaves the database as it was.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/junaidrashid-git/fashionshop-api/cart"
	"github.com/junaidrashid-git/fashionshop-api/events"
	"github.com/junaidrashid-git/fashionshop-api/inventory"
	"github.com/junaidrashid-git/fashionshop-api/metrics"
	"github.com/junaidrashid-git/fashionshop-api/models"
	"github.com/junaidrashid-git/fashionshop-api/pricing"
	"github.com/junaidrashid-git/fashionshop-api/vouchers"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	db      *gorm.DB
	events  events.Publisher
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(db *gorm.DB, pub events.Publisher, m *metrics.Metrics) *Service {
	if pub == nil {
		pub = events.Nop
	}
	return &Service{db: db, events: pub, metrics: m, now: time.Now}
}

type Result struct {
	OrderID uint
	// ClearGuestCookie tells the caller the order came from the cookie cart.
	ClearGuestCookie bool
	Order            *models.Order
}

// PlaceOrder checks out snap for the shopper identified by email.
func (s *Service) PlaceOrder(ctx context.Context, email string, form Form, snap cart.Snapshot) (res *Result, err error) {
	defer func() { s.metrics.CheckoutResult(outcome(err)) }()

	user, err := s.findUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if snap.IsEmpty() {
		return nil, ErrCartEmpty
	}
	if err := form.normalize(); err != nil {
		return nil, err
	}
	street := StreetLine(user.Address)
	if street == "" {
		street = StreetLine(form.AddressLine)
	}
	if street == "" {
		return nil, fmt.Errorf("%w: delivery address is required", ErrInvalidForm)
	}

	var order models.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		variants, err := lockVariants(tx, snap)
		if err != nil {
			return err
		}

		// Validate every line before touching any stock. Demand is summed per
		// variant and per product so two lines of one product cannot each pass alone.
		lines := make([]cart.Line, 0, len(snap.Lines))
		variantDemand := map[uint]int{}
		productDemand := map[uint]int{}
		for _, l := range snap.Lines {
			v, ok := variants[l.VariantID]
			if !ok || l.Quantity <= 0 {
				continue
			}
			variantDemand[v.ID] += l.Quantity
			productDemand[v.ProductID] += l.Quantity
			lines = append(lines, l)
		}
		if len(lines) == 0 {
			return ErrCartEmpty
		}
		for _, l := range lines {
			v := variants[l.VariantID]
			if v.Stock < variantDemand[v.ID] || v.Product.Stock < productDemand[v.ProductID] {
				return inventory.Shortage(v, variantDemand[v.ID])
			}
		}

		items := make([]models.OrderItem, 0, len(lines))
		totals := make([]decimal.Decimal, 0, len(lines))
		for _, l := range lines {
			v := variants[l.VariantID]
			if err := inventory.Reserve(tx, v, l.Quantity); err != nil {
				return err
			}
			unit := pricing.Round(l.UnitPrice)
			total, err := pricing.LineTotal(&unit, l.Quantity)
			if err != nil {
				return err
			}
			items = append(items, models.OrderItem{
				VariantID:   v.ID,
				ProductName: v.Product.Name,
				Size:        v.Size,
				Color:       v.Color,
				Image:       l.Image,
				Quantity:    l.Quantity,
				UnitPrice:   unit,
				TotalPrice:  total,
			})
			totals = append(totals, total)
		}
		subtotal := pricing.Subtotal(totals)

		var voucher *models.Voucher
		var terms *models.VoucherTerms
		if form.VoucherCode != "" {
			voucher, err = vouchers.Find(tx, form.VoucherCode, true)
			if err != nil {
				return voucherError(err)
			}
			if err := vouchers.Check(*voucher, subtotal, s.now()); err != nil {
				return voucherError(err)
			}
			terms = voucher.Terms()
		}
		discount := pricing.VoucherDiscount(subtotal, terms)
		total := pricing.TotalAmount(subtotal, discount)

		order = models.Order{
			UserID: user.ID,
			Items:  items,
			Address: models.OrderAddress{
				RecipientName: form.RecipientName,
				Phone:         form.Phone,
				AddressLine:   street,
				Ward:          form.Ward,
				District:      form.District,
				City:          form.City,
				Note:          form.Note,
			},
			Payment: models.Payment{
				Method: form.PaymentMethod,
				Status: models.PaymentStatusPending,
				Amount: total,
			},
			SubTotal:       subtotal,
			DiscountAmount: discount,
			TotalAmount:    total,
			Status:         models.OrderStatusPending,
			PaymentMethod:  form.PaymentMethod,
		}
		if voucher != nil {
			order.VoucherCode = voucher.Code
			order.VoucherDiscountPercent = voucher.DiscountPercent
			order.VoucherMaxDiscount = voucher.MaxDiscountAmount
			order.VoucherMinOrderValue = voucher.MinOrderValue
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		if voucher != nil {
			if err := vouchers.Redeem(tx, voucher.ID); err != nil {
				return voucherError(err)
			}
		}

		if snap.Source == cart.SourceAccount {
			return cart.ClearItems(tx, user.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("📦 Order #%d placed by %s: %d line(s), total %s, %s", order.ID, user.Email, len(order.Items), order.TotalAmount.StringFixed(2), order.PaymentMethod)
	events.Emit(ctx, s.events, events.ForOrder(events.OrderPlaced, order))

	return &Result{
		OrderID:          order.ID,
		ClearGuestCookie: snap.Source == cart.SourceGuest,
		Order:            &order,
	}, nil
}

// lockVariants loads and row-locks every variant in the snapshot and its
// product, in id order so concurrent checkouts lock in the same sequence.
func lockVariants(tx *gorm.DB, snap cart.Snapshot) (map[uint]models.ProductVariant, error) {
	ids := make([]uint, 0, len(snap.Lines))
	seen := map[uint]bool{}
	for _, l := range snap.Lines {
		if !seen[l.VariantID] {
			seen[l.VariantID] = true
			ids = append(ids, l.VariantID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var variants []models.ProductVariant
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).Order("id ASC").Find(&variants).Error; err != nil {
		return nil, err
	}

	productIDs := make([]uint, 0, len(variants))
	seenProduct := map[uint]bool{}
	for _, v := range variants {
		if !seenProduct[v.ProductID] {
			seenProduct[v.ProductID] = true
			productIDs = append(productIDs, v.ProductID)
		}
	}
	sort.Slice(productIDs, func(i, j int) bool { return productIDs[i] < productIDs[j] })

	var products []models.Product
	if len(productIDs) > 0 {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", productIDs).Order("id ASC").Find(&products).Error; err != nil {
			return nil, err
		}
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	out := make(map[uint]models.ProductVariant, len(variants))
	for _, v := range variants {
		p, ok := byID[v.ProductID]
		if !ok {
			continue
		}
		v.Product = p
		out[v.ID] = v
	}
	return out, nil
}

func voucherError(err error) error {
	if errors.Is(err, vouchers.ErrVoucherNotFound) || errors.Is(err, vouchers.ErrVoucherNotApplicable) {
		return fmt.Errorf("%w: %w", ErrVoucherInvalid, err)
	}
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotAuthenticated), errors.Is(err, ErrUserNotFound):
		return "unauthenticated"
	case errors.Is(err, ErrCartEmpty):
		return "cart_empty"
	case errors.Is(err, ErrInvalidForm):
		return "invalid_form"
	case errors.Is(err, inventory.ErrInsufficientStock):
		return "out_of_stock"
	case errors.Is(err, ErrVoucherInvalid):
		return "voucher_invalid"
	}
	return "error"
}
