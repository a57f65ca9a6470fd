package vnpay

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/junaidrashid-git/fashionshop-api/events"
	"github.com/junaidrashid-git/fashionshop-api/metrics"
	"github.com/junaidrashid-git/fashionshop-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	ErrCodeInvalidSignature = "invalid_signature"
	ErrCodeInvalidOrder     = "invalid_order"
	ErrCodeOrderNotFound    = "order_not_found"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrNotOnlinePayment = errors.New("order is not paid by bank transfer")
	ErrAlreadyPaid      = errors.New("order is already paid")
	ErrOrderClosed      = errors.New("order is closed")
)

type CallbackResult struct {
	Success      bool   `json:"success"`
	OrderID      uint   `json:"order_id,omitempty"`
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	// Ignored marks a callback for a payment that was already settled.
	Ignored bool `json:"-"`
}

// Service ties the gateway to stored payments.
type Service struct {
	db      *gorm.DB
	gateway *Gateway
	events  events.Publisher
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(db *gorm.DB, gw *Gateway, pub events.Publisher, m *metrics.Metrics) *Service {
	if pub == nil {
		pub = events.Nop
	}
	return &Service{db: db, gateway: gw, events: pub, metrics: m, now: time.Now}
}

// PaymentURL issues a fresh signed URL for a bank-transfer order and records
// when that gateway window closes. userID limits the lookup to the owner's
// orders when set.
func (s *Service) PaymentURL(ctx context.Context, orderID uint, userID, clientIP string) (string, error) {
	var order models.Order
	q := s.db.WithContext(ctx).Preload("Payment")
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	if err := q.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrOrderNotFound
		}
		return "", err
	}

	switch {
	case order.PaymentMethod != models.PaymentMethodBankTransfer:
		return "", ErrNotOnlinePayment
	case order.Status.IsTerminal():
		return "", ErrOrderClosed
	case order.Payment.Status == models.PaymentStatusSuccess || order.Payment.Status == models.PaymentStatusRefunded:
		return "", ErrAlreadyPaid
	}

	pu, err := s.gateway.CreatePaymentURL(order, clientIP)
	if err != nil {
		return "", err
	}

	// a retry reopens a payment the sweeper already expired
	if err := s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND status IN ?", order.Payment.ID, []models.PaymentStatus{models.PaymentStatusPending, models.PaymentStatusFailed}).
		Updates(map[string]interface{}{"expires_at": pu.ExpiresAt.UTC(), "status": models.PaymentStatusPending}).Error; err != nil {
		return "", err
	}

	log.Printf("💳 VNPay payment URL issued for order #%d (expires %s)", order.ID, pu.ExpiresAt.Format(time.RFC3339))
	return pu.URL, nil
}

// ProcessCallback verifies a gateway callback and reconciles the payment.
// Nothing is read or written unless the signature checks out. Every verified
// callback for a known order appends one transaction row. A payment that is
// already SUCCESS or REFUNDED keeps its status and publishes no event.
func (s *Service) ProcessCallback(ctx context.Context, params map[string]string) (res CallbackResult, err error) {
	defer func() {
		if err == nil {
			s.metrics.CallbackResult(callbackOutcome(res))
		}
	}()

	if !s.gateway.VerifyCallback(params) {
		log.Printf("❌ VNPay callback rejected: invalid signature (txn ref %q)", params["vnp_TxnRef"])
		return CallbackResult{ErrorCode: ErrCodeInvalidSignature, ErrorMessage: "Invalid signature"}, nil
	}

	code := params["vnp_ResponseCode"]
	ref := params["vnp_TxnRef"]
	id, perr := strconv.ParseUint(strings.TrimSpace(ref), 10, 64)
	if perr != nil || id == 0 {
		log.Printf("❌ VNPay callback with invalid txn ref %q", ref)
		return CallbackResult{ErrorCode: ErrCodeInvalidOrder, ErrorMessage: "Invalid order reference"}, nil
	}
	orderID := uint(id)

	var payment models.Payment
	var found, settled bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("order_id = ?", orderID).First(&payment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true

		txn := models.PaymentTransaction{
			PaymentID:       payment.ID,
			Gateway:         models.PaymentGatewayVNPay,
			TxnRef:          ref,
			GatewayTxnID:    params["vnp_TransactionNo"],
			ResponseCode:    code,
			ResponseMessage: ResponseMessage(code),
			SecureHash:      params[ParamSecureHash],
		}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}

		if payment.Status == models.PaymentStatusSuccess || payment.Status == models.PaymentStatusRefunded {
			settled = true
			return nil
		}
		updates := map[string]interface{}{"status": models.PaymentStatusFailed}
		if IsSuccess(code) {
			now := s.now()
			updates = map[string]interface{}{"status": models.PaymentStatusSuccess, "paid_at": now}
			payment.PaidAt = &now
		}
		payment.Status = updates["status"].(models.PaymentStatus)
		return tx.Model(&models.Payment{}).Where("id = ?", payment.ID).Updates(updates).Error
	})
	if err != nil {
		return CallbackResult{}, err
	}
	if !found {
		log.Printf("❌ VNPay callback for unknown order #%d", orderID)
		return CallbackResult{OrderID: orderID, ErrorCode: ErrCodeOrderNotFound, ErrorMessage: "Order not found"}, nil
	}

	if settled {
		log.Printf("⚠️ VNPay callback for order #%d ignored, payment already %s (code %s)", orderID, payment.Status, code)
		if IsSuccess(code) {
			return CallbackResult{Success: true, OrderID: orderID, Ignored: true}, nil
		}
		return CallbackResult{OrderID: orderID, ErrorCode: code, ErrorMessage: ResponseMessage(code), Ignored: true}, nil
	}

	e := events.Event{
		OrderID:       orderID,
		PaymentStatus: payment.Status,
		TotalAmount:   payment.Amount,
		OccurredAt:    s.now().UTC(),
	}
	if IsSuccess(code) {
		log.Printf("✅ VNPay payment succeeded for order #%d", orderID)
		e.Type = events.PaymentSucceeded
		events.Emit(ctx, s.events, e)
		return CallbackResult{Success: true, OrderID: orderID}, nil
	}

	log.Printf("⚠️ VNPay payment failed for order #%d: %s (%s)", orderID, ResponseMessage(code), code)
	e.Type = events.PaymentFailed
	events.Emit(ctx, s.events, e)
	return CallbackResult{OrderID: orderID, ErrorCode: code, ErrorMessage: ResponseMessage(code)}, nil
}

func callbackOutcome(r CallbackResult) string {
	switch {
	case r.Ignored:
		return "ignored"
	case r.Success:
		return "success"
	case r.ErrorCode == ErrCodeInvalidSignature, r.ErrorCode == ErrCodeInvalidOrder, r.ErrorCode == ErrCodeOrderNotFound:
		return r.ErrorCode
	}
	return "declined"
}
