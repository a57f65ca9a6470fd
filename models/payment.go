package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string
type PaymentGateway string

const (
	PaymentStatusPending  PaymentStatus = "pending"  // waiting for the gateway, or cash on delivery
	PaymentStatusSuccess  PaymentStatus = "success"  // gateway confirmed the charge
	PaymentStatusFailed   PaymentStatus = "failed"   // gateway declined, or the attempt expired
	PaymentStatusRefunded PaymentStatus = "refunded" // money returned to customer

	PaymentGatewayVNPay PaymentGateway = "vnpay"
)

type Payment struct {
	ID           uint                 `gorm:"primaryKey" json:"id"`
	OrderID      uint                 `gorm:"uniqueIndex;not null" json:"order_id"`
	Method       PaymentMethod        `gorm:"type:VARCHAR(20);not null" json:"method"`
	Status       PaymentStatus        `gorm:"type:VARCHAR(20);not null;default:'pending'" json:"status"`
	Amount       decimal.Decimal      `gorm:"type:decimal(15,2);not null" json:"amount"`
	PaidAt       *time.Time           `json:"paid_at,omitempty"`
	ExpiresAt    *time.Time           `gorm:"index" json:"expires_at,omitempty"` // end of the latest gateway window
	Transactions []PaymentTransaction `gorm:"foreignKey:PaymentID;constraint:OnDelete:CASCADE" json:"transactions,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// PaymentTransaction is one gateway round-trip. Rows are only ever inserted.
type PaymentTransaction struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	PaymentID       uint           `gorm:"index;not null" json:"payment_id"`
	Gateway         PaymentGateway `gorm:"type:VARCHAR(20);not null" json:"gateway"`
	TxnRef          string         `gorm:"size:100" json:"txn_ref"`
	GatewayTxnID    string         `gorm:"size:100" json:"gateway_txn_id"`
	ResponseCode    string         `gorm:"size:10" json:"response_code"`
	ResponseMessage string         `gorm:"type:text" json:"response_message"`
	SecureHash      string         `gorm:"size:255" json:"-"`
	CreatedAt       time.Time      `json:"created_at"`
}
