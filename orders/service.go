// Package orders runs everything that happens to an order after checkout:
// staff status changes, quantity corrections and cancellations.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/junaidrashid-git/fashionshop-api/events"
	"github.com/junaidrashid-git/fashionshop-api/inventory"
	"github.com/junaidrashid-git/fashionshop-api/models"
	"github.com/junaidrashid-git/fashionshop-api/pricing"
	"github.com/junaidrashid-git/fashionshop-api/vouchers"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrItemNotFound      = errors.New("order item not found")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrOrderClosed       = errors.New("order is already completed or cancelled")
	ErrInvalidTransition = errors.New("order status change not allowed")
	ErrInvalidReason     = errors.New("invalid cancel reason")
	ErrNotCancellable    = errors.New("order can no longer be cancelled")
)

type Service struct {
	db     *gorm.DB
	events events.Publisher
	now    func() time.Time
}

func NewService(db *gorm.DB, pub events.Publisher) *Service {
	if pub == nil {
		pub = events.Nop
	}
	return &Service{db: db, events: pub, now: time.Now}
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	UserID string
	Status models.OrderStatus
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.Order, error) {
	q := s.db.WithContext(ctx).
		Preload("Items").
		Preload("Address").
		Preload("Payment").
		Order("created_at DESC")
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Get loads one order with its lines, address, payment and gateway history.
// A non-empty userID restricts the lookup to that customer's orders.
func (s *Service) Get(ctx context.Context, orderID uint, userID string) (*models.Order, error) {
	q := s.db.WithContext(ctx).
		Preload("Items").
		Preload("Address").
		Preload("Payment").
		Preload("Payment.Transactions", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") })
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	var order models.Order
	if err := q.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func lockOrder(tx *gorm.DB, orderID uint, userID string) (*models.Order, error) {
	q := tx.Clauses(clause.Locking{Strength: "UPDATE"})
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	var order models.Order
	if err := q.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if err := tx.Where("order_id = ?", order.ID).Order("id ASC").Find(&order.Items).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateItemQuantity corrects the quantity of one line. Stock moves by the
// difference, and the order totals and payment amount are recomputed from the
// voucher terms stored on the order.
func (s *Service) UpdateItemQuantity(ctx context.Context, orderID, itemID uint, qty int) (*models.Order, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, orderID, "")
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return ErrOrderClosed
		}

		idx := -1
		for i := range order.Items {
			if order.Items[i].ID == itemID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrItemNotFound
		}
		item := &order.Items[idx]

		var variant models.ProductVariant
		if err := tx.Preload("Product").First(&variant, item.VariantID).Error; err != nil {
			return fmt.Errorf("load variant %d: %w", item.VariantID, err)
		}
		if err := inventory.Adjust(tx, variant, qty-item.Quantity); err != nil {
			return err
		}

		lineTotal, err := pricing.LineTotal(&item.UnitPrice, qty)
		if err != nil {
			return err
		}
		item.Quantity = qty
		item.TotalPrice = lineTotal
		if err := tx.Model(&models.OrderItem{}).Where("id = ?", item.ID).
			Updates(map[string]interface{}{"quantity": qty, "total_price": lineTotal}).Error; err != nil {
			return err
		}

		totals := make([]decimal.Decimal, 0, len(order.Items))
		for _, it := range order.Items {
			totals = append(totals, it.TotalPrice)
		}
		subtotal := pricing.Subtotal(totals)
		discount := pricing.VoucherDiscount(subtotal, order.VoucherTerms())
		total := pricing.TotalAmount(subtotal, discount)

		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
			"sub_total":       subtotal,
			"discount_amount": discount,
			"total_amount":    total,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Payment{}).Where("order_id = ?", order.ID).
			Update("amount", total).Error
	})
	if err != nil {
		return nil, err
	}

	order, err := s.Get(ctx, orderID, "")
	if err != nil {
		return nil, err
	}
	log.Printf("📦 Order #%d item %d set to %d, total now %s", order.ID, itemID, qty, order.TotalAmount.StringFixed(2))
	events.Emit(ctx, s.events, events.ForOrder(events.OrderUpdated, *order))
	return order, nil
}

// UpdateStatus moves an order one step along its lifecycle. Asking for
// cancelled is treated as a staff cancellation with reason "other".
func (s *Service) UpdateStatus(ctx context.Context, orderID uint, to models.OrderStatus) (*models.Order, error) {
	if to == models.OrderStatusCancelled {
		return s.Cancel(ctx, CancelRequest{OrderID: orderID, Reason: models.CancelReasonOther})
	}

	var from models.OrderStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, orderID, "")
		if err != nil {
			return err
		}
		from = order.Status
		if !CanTransition(from, to) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
		}
		res := tx.Model(&models.Order{}).Where("id = ? AND status = ?", order.ID, from).Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: status changed concurrently", ErrInvalidTransition)
		}

		// cash is collected on delivery
		if to == models.OrderStatusDelivered && order.PaymentMethod == models.PaymentMethodCOD {
			return tx.Model(&models.Payment{}).
				Where("order_id = ? AND status = ?", order.ID, models.PaymentStatusPending).
				Updates(map[string]interface{}{"status": models.PaymentStatusSuccess, "paid_at": s.now().UTC()}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.Get(ctx, orderID, "")
	if err != nil {
		return nil, err
	}
	log.Printf("📦 Order #%d moved from %s to %s", order.ID, from, to)
	events.Emit(ctx, s.events, events.ForOrder(events.OrderUpdated, *order))
	return order, nil
}

type CancelRequest struct {
	OrderID uint
	// UserID is set when the customer cancels; staff cancellations leave it empty.
	UserID string
	Reason models.CancelReason
	Note   string
}

// Cancel closes an order, puts its stock back and returns the voucher use it
// consumed. Customers may only cancel before the order is being processed.
func (s *Service) Cancel(ctx context.Context, req CancelRequest) (*models.Order, error) {
	reason, ok := models.ParseCancelReason(string(req.Reason))
	if !ok {
		return nil, ErrInvalidReason
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, req.OrderID, req.UserID)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return ErrOrderClosed
		}
		if req.UserID != "" && !customerCancellable(order.Status) {
			return ErrNotCancellable
		}

		for _, item := range order.Items {
			var variant models.ProductVariant
			if err := tx.First(&variant, item.VariantID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					log.Printf("⚠️ Variant %d of order #%d no longer exists, stock not returned", item.VariantID, order.ID)
					continue
				}
				return err
			}
			if err := inventory.Release(tx, variant, item.Quantity); err != nil {
				return err
			}
		}

		if order.VoucherCode != "" {
			if err := vouchers.Release(tx, order.VoucherCode); err != nil {
				return err
			}
		}

		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
			"status":        models.OrderStatusCancelled,
			"cancel_reason": reason,
			"cancel_note":   req.Note,
			"cancelled_at":  s.now().UTC(),
		}).Error; err != nil {
			return err
		}

		// close any open gateway attempt
		return tx.Model(&models.Payment{}).
			Where("order_id = ? AND status = ?", order.ID, models.PaymentStatusPending).
			Update("status", models.PaymentStatusFailed).Error
	})
	if err != nil {
		return nil, err
	}

	order, err := s.Get(ctx, req.OrderID, "")
	if err != nil {
		return nil, err
	}
	by := "staff"
	if req.UserID != "" {
		by = "customer"
	}
	log.Printf("❌ Order #%d cancelled by %s: %s", order.ID, by, reason.Label())
	events.Emit(ctx, s.events, events.ForOrder(events.OrderCancelled, *order))
	return order, nil
}
