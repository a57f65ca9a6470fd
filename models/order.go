package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string
type PaymentMethod string
type CancelReason string

const (
	// Order statuses, forward flow plus cancellation
	OrderStatusPending    OrderStatus = "pending"    // placed, awaiting confirmation
	OrderStatusConfirmed  OrderStatus = "confirmed"  // confirmed by staff
	OrderStatusProcessing OrderStatus = "processing" // being packed
	OrderStatusShipped    OrderStatus = "shipped"    // out for delivery
	OrderStatusDelivered  OrderStatus = "delivered"  // customer received the parcel
	OrderStatusCompleted  OrderStatus = "completed"  // closed, reviews allowed
	OrderStatusCancelled  OrderStatus = "cancelled"

	PaymentMethodCOD          PaymentMethod = "cod"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer" // paid online through the gateway

	CancelReasonChangeMind      CancelReason = "change_mind"
	CancelReasonOrderedWrong    CancelReason = "ordered_wrong"
	CancelReasonFoundCheaper    CancelReason = "found_cheaper"
	CancelReasonDeliveryTooSlow CancelReason = "delivery_too_slow"
	CancelReasonPaymentIssue    CancelReason = "payment_issue"
	CancelReasonOther           CancelReason = "other"
)

var cancelReasonLabels = map[CancelReason]string{
	CancelReasonChangeMind:      "Changed my mind",
	CancelReasonOrderedWrong:    "Ordered the wrong product, size or color",
	CancelReasonFoundCheaper:    "Found a cheaper price",
	CancelReasonDeliveryTooSlow: "Delivery takes too long",
	CancelReasonPaymentIssue:    "Payment problem",
	CancelReasonOther:           "Other",
}

// ParseOrderStatus accepts any casing of a known status.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCompleted, OrderStatusCancelled:
		return st, true
	}
	return "", false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// AllowsReview reports whether items of an order in this status may be reviewed.
func (s OrderStatus) AllowsReview() bool {
	return s == OrderStatusCompleted
}

func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case PaymentMethodCOD, PaymentMethodBankTransfer:
		return m, true
	}
	return "", false
}

func ParseCancelReason(s string) (CancelReason, bool) {
	r := CancelReason(strings.ToLower(strings.TrimSpace(s)))
	_, ok := cancelReasonLabels[r]
	return r, ok
}

func (r CancelReason) Label() string {
	return cancelReasonLabels[r]
}

type Order struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID string `gorm:"index;not null" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"-"`

	Items   []OrderItem  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Address OrderAddress `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"address"`
	Payment Payment      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"payment"`

	SubTotal       decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"sub_total"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"discount_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total_amount"`

	// Voucher terms copied at placement; later voucher edits never touch this order.
	VoucherCode            string              `json:"voucher_code,omitempty"`
	VoucherDiscountPercent int                 `json:"voucher_discount_percent,omitempty"`
	VoucherMaxDiscount     decimal.NullDecimal `gorm:"type:decimal(15,2)" json:"voucher_max_discount"`
	VoucherMinOrderValue   decimal.NullDecimal `gorm:"type:decimal(15,2)" json:"voucher_min_order_value"`

	Status        OrderStatus   `gorm:"type:VARCHAR(20);not null;default:'pending'" json:"status"`
	PaymentMethod PaymentMethod `gorm:"type:VARCHAR(20);not null" json:"payment_method"`

	CancelReason CancelReason `gorm:"type:VARCHAR(30)" json:"cancel_reason,omitempty"`
	CancelNote   string       `json:"cancel_note,omitempty"`
	CancelledAt  *time.Time   `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VoucherTerms returns the snapshotted voucher terms, or nil when no voucher was applied.
func (o Order) VoucherTerms() *VoucherTerms {
	if o.VoucherCode == "" {
		return nil
	}
	return &VoucherTerms{
		DiscountPercent:   o.VoucherDiscountPercent,
		MaxDiscountAmount: o.VoucherMaxDiscount,
		MinOrderValue:     o.VoucherMinOrderValue,
	}
}

type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"index;not null" json:"order_id"`
	VariantID   uint            `gorm:"index;not null" json:"variant_id"`
	Variant     ProductVariant  `gorm:"foreignKey:VariantID" json:"-"`
	ProductName string          `json:"product_name"`
	Size        string          `json:"size,omitempty"`
	Color       string          `json:"color,omitempty"`
	Image       string          `json:"image,omitempty"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"unit_price"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total_price"`
}

type OrderAddress struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	OrderID       uint      `gorm:"uniqueIndex;not null" json:"order_id"`
	RecipientName string    `gorm:"size:150;not null" json:"recipient_name"`
	Phone         string    `gorm:"size:20;not null" json:"phone"`
	AddressLine   string    `gorm:"not null" json:"address_line"`
	Ward          string    `gorm:"size:100" json:"ward,omitempty"`
	District      string    `gorm:"size:100" json:"district,omitempty"`
	City          string    `gorm:"size:100" json:"city,omitempty"`
	Note          string    `gorm:"type:text" json:"note,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
