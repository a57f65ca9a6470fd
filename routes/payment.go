package routes

import (
	"github.com/gin-gonic/gin"
	paymentControllers "github.com/junaidrashid-git/fashionshop-api/controllers/payment"
)

// SetupPaymentRoutes registers the gateway return URL. It is public: the
// signature on the query is the authentication.
func SetupPaymentRoutes(r *gin.Engine, d Deps) {
	payment := r.Group("/payment")
	{
		payment.GET("/vnpay/callback", paymentControllers.VNPayCallback(
			d.Payments, d.Config.CheckoutSuccessURL, d.Config.CheckoutFailureURL))
	}
}
