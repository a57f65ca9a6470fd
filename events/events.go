// Package events carries order and payment lifecycle notifications to whoever
// listens: Kafka for downstream services, the admin websocket feed for staff.
package events

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/junaidrashid-git/fashionshop-api/models"
	"github.com/shopspring/decimal"
)

type Type string

const (
	OrderPlaced      Type = "order.placed"
	OrderUpdated     Type = "order.updated"
	OrderCancelled   Type = "order.cancelled"
	PaymentSucceeded Type = "payment.succeeded"
	PaymentFailed    Type = "payment.failed"
)

type Event struct {
	Type          Type                 `json:"type"`
	OrderID       uint                 `json:"order_id"`
	UserID        string               `json:"user_id,omitempty"`
	Status        models.OrderStatus   `json:"status,omitempty"`
	PaymentStatus models.PaymentStatus `json:"payment_status,omitempty"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	OccurredAt    time.Time            `json:"occurred_at"`
}

// ForOrder fills an event from an order as it is right now.
func ForOrder(t Type, o models.Order) Event {
	return Event{
		Type:          t,
		OrderID:       o.ID,
		UserID:        o.UserID,
		Status:        o.Status,
		PaymentStatus: o.Payment.Status,
		TotalAmount:   o.TotalAmount,
		OccurredAt:    time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type nop struct{}

func (nop) Publish(context.Context, Event) error { return nil }

// Nop drops every event.
var Nop Publisher = nop{}

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Emit publishes after a commit. Failures are logged and never reach the shopper.
func Emit(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		log.Printf("⚠️ Failed to publish %s for order %d: %v", e.Type, e.OrderID, err)
	}
}
