package checkoutControllers

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/fashionshop-api/cart"
	"github.com/junaidrashid-git/fashionshop-api/checkout"
	"github.com/junaidrashid-git/fashionshop-api/controllers"
	"github.com/junaidrashid-git/fashionshop-api/idempotency"
	"github.com/junaidrashid-git/fashionshop-api/middleware"
	"github.com/junaidrashid-git/fashionshop-api/models"
	"github.com/junaidrashid-git/fashionshop-api/vnpay"
	"github.com/junaidrashid-git/fashionshop-api/vouchers"
)

type Deps struct {
	Checkout    *checkout.Service
	Carts       *cart.Provider
	Vouchers    *vouchers.Service
	Payments    *vnpay.Service
	Idempotency *idempotency.Store
}

type VoucherPreviewInput struct {
	Code string `json:"code"`
}

// snapshotFor picks the cart to check out: a non-empty cookie cart wins over
// the stored one.
func snapshotFor(c *gin.Context, carts *cart.Provider) (cart.Snapshot, error) {
	if items := cart.ReadGuestCart(c); len(items) > 0 {
		snap, err := carts.FromGuest(c.Request.Context(), items)
		if err != nil || !snap.IsEmpty() {
			return snap, err
		}
	}
	return carts.FromAccount(c.Request.Context(), middleware.UserID(c))
}

// ClientIP prefers the first X-Forwarded-For hop.
func ClientIP(c *gin.Context) string {
	if fwd := strings.TrimSpace(c.GetHeader("X-Forwarded-For")); fwd != "" {
		return vnpay.NormalizeIP(fwd)
	}
	return vnpay.NormalizeIP(c.ClientIP())
}

// GET /user/checkout returns the prefilled form and the cart being checked out.
func GetCheckoutForm(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := d.Checkout.PrefilledForm(c.Request.Context(), middleware.Email(c))
		if err != nil {
			controllers.RespondError(c, err)
			return
		}
		snap, err := snapshotFor(c, d.Carts)
		if err != nil {
			controllers.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"form":            form,
			"cart":            snap,
			"sub_total":       snap.Subtotal(),
			"payment_methods": []models.PaymentMethod{models.PaymentMethodCOD, models.PaymentMethodBankTransfer},
		})
	}
}

// POST /user/checkout/voucher-preview prices a code against the current cart.
func PreviewVoucher(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input VoucherPreviewInput
		if err := c.ShouldBindJSON(&input); err != nil {
			controllers.BadRequest(c, "Invalid input: "+err.Error())
			return
		}
		snap, err := snapshotFor(c, d.Carts)
		if err != nil {
			controllers.RespondError(c, err)
			return
		}
		if snap.IsEmpty() {
			controllers.RespondError(c, checkout.ErrCartEmpty)
			return
		}
		preview, err := d.Vouchers.Preview(c.Request.Context(), input.Code, snap.Subtotal())
		if err != nil {
			controllers.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"sub_total": snap.Subtotal(), "preview": preview})
	}
}

// POST /user/checkout places the order. With an Idempotency-Key header a
// retried submit gets the first order back instead of a second one.
func PlaceOrder(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form checkout.Form
		if err := c.ShouldBindJSON(&form); err != nil {
			controllers.BadRequest(c, "Invalid input: "+err.Error())
			return
		}
		ctx := c.Request.Context()
		userID := middleware.UserID(c)

		claim, err := d.Idempotency.Begin(ctx, userID, c.GetHeader(idempotency.HeaderName))
		if err != nil {
			controllers.RespondError(c, err)
			return
		}
		if claim.Replayed {
			c.JSON(http.StatusOK, gin.H{"order_id": claim.OrderID, "replayed": true})
			return
		}

		snap, err := snapshotFor(c, d.Carts)
		if err != nil {
			abort(ctx, claim)
			controllers.RespondError(c, err)
			return
		}
		res, err := d.Checkout.PlaceOrder(ctx, middleware.Email(c), form, snap)
		if err != nil {
			abort(ctx, claim)
			controllers.RespondError(c, err)
			return
		}
		if err := claim.Complete(ctx, res.OrderID); err != nil {
			log.Printf("⚠️ Could not record idempotency key for order #%d, key frees in %s: %v", res.OrderID, idempotency.PendingTTL, err)
		}
		if res.ClearGuestCookie {
			cart.ClearGuestCart(c)
		}

		body := gin.H{
			"message":        "Order placed successfully",
			"order_id":       res.OrderID,
			"total_amount":   res.Order.TotalAmount,
			"payment_method": res.Order.PaymentMethod,
		}
		if res.Order.PaymentMethod == models.PaymentMethodBankTransfer {
			// the order stands even when the gateway link fails; the shopper can retry it
			payURL, err := d.Payments.PaymentURL(ctx, res.OrderID, userID, ClientIP(c))
			if err != nil {
				log.Printf("❌ Payment URL for order #%d failed: %v", res.OrderID, err)
				body["payment_error"] = err.Error()
			} else {
				body["payment_url"] = payURL
			}
		}
		c.JSON(http.StatusCreated, body)
	}
}

func abort(ctx context.Context, claim *idempotency.Claim) {
	if err := claim.Abort(ctx); err != nil {
		log.Printf("⚠️ Could not release idempotency key: %v", err)
	}
}
