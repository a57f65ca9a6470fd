// Package controllers holds what every handler package shares: turning
// domain errors into HTTP answers and reading path ids.
package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/fashionshop-api/cart"
	"github.com/junaidrashid-git/fashionshop-api/checkout"
	"github.com/junaidrashid-git/fashionshop-api/idempotency"
	"github.com/junaidrashid-git/fashionshop-api/inventory"
	"github.com/junaidrashid-git/fashionshop-api/orders"
	"github.com/junaidrashid-git/fashionshop-api/pricing"
	"github.com/junaidrashid-git/fashionshop-api/vnpay"
	"github.com/junaidrashid-git/fashionshop-api/vouchers"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// Checked in order, so wrappers come before the errors they wrap.
var errorTable = []errorMapping{
	{checkout.ErrNotAuthenticated, http.StatusUnauthorized, "not_authenticated"},
	{checkout.ErrUserNotFound, http.StatusUnauthorized, "user_not_found"},
	{checkout.ErrCartEmpty, http.StatusUnprocessableEntity, "cart_empty"},
	{checkout.ErrInvalidForm, http.StatusBadRequest, "invalid_form"},
	{checkout.ErrVoucherInvalid, http.StatusUnprocessableEntity, "voucher_invalid"},
	{inventory.ErrInsufficientStock, http.StatusConflict, "insufficient_stock"},
	{vouchers.ErrVoucherNotFound, http.StatusNotFound, "voucher_not_found"},
	{vouchers.ErrVoucherNotApplicable, http.StatusUnprocessableEntity, "voucher_not_applicable"},
	{pricing.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{inventory.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{cart.ErrVariantNotFound, http.StatusNotFound, "variant_not_found"},
	{cart.ErrItemNotFound, http.StatusNotFound, "cart_item_not_found"},
	{orders.ErrOrderNotFound, http.StatusNotFound, "order_not_found"},
	{orders.ErrItemNotFound, http.StatusNotFound, "order_item_not_found"},
	{orders.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{orders.ErrOrderClosed, http.StatusConflict, "order_closed"},
	{orders.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{orders.ErrInvalidReason, http.StatusBadRequest, "invalid_cancel_reason"},
	{orders.ErrNotCancellable, http.StatusConflict, "not_cancellable"},
	{vnpay.ErrOrderNotFound, http.StatusNotFound, "order_not_found"},
	{vnpay.ErrNotOnlinePayment, http.StatusConflict, "not_online_payment"},
	{vnpay.ErrAlreadyPaid, http.StatusConflict, "already_paid"},
	{vnpay.ErrOrderClosed, http.StatusConflict, "order_closed"},
	{vnpay.ErrNotConfigured, http.StatusServiceUnavailable, "payment_unavailable"},
	{idempotency.ErrInProgress, http.StatusConflict, "request_in_progress"},
	{idempotency.ErrInvalidKey, http.StatusBadRequest, "invalid_idempotency_key"},
}

// RespondError writes {"error", "code"} for a known error and a plain 500 otherwise.
func RespondError(c *gin.Context, err error) {
	var shortage *inventory.InsufficientStockError
	if errors.As(err, &shortage) {
		c.JSON(http.StatusConflict, gin.H{
			"error":   shortage.Error(),
			"code":    "insufficient_stock",
			"details": shortage,
		})
		return
	}

	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			c.JSON(m.status, gin.H{"error": err.Error(), "code": m.code})
			return
		}
	}

	log.Printf("❌ %s %s failed: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "code": "internal"})
}

// BadRequest answers 400 for malformed input.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": "bad_request"})
}

// ParseID reads a positive numeric path parameter, answering 400 when it is not one.
func ParseID(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, name+" must be a positive number")
		return 0, false
	}
	return uint(id), true
}
