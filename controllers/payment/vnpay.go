package paymentControllers

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/fashionshop-api/vnpay"
)

// GET /payment/vnpay/callback
// The gateway sends the shopper's browser here; it always ends in a redirect
// to the storefront's success or failure page.
func VNPayCallback(svc *vnpay.Service, successURL, failureURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := map[string]string{}
		for key, values := range c.Request.URL.Query() {
			if len(values) > 0 {
				params[key] = values[0]
			}
		}

		res, err := svc.ProcessCallback(c.Request.Context(), params)
		if err != nil {
			c.Redirect(http.StatusFound, failureURL+"?error=internal_error")
			return
		}
		c.Redirect(http.StatusFound, RedirectTarget(res, successURL, failureURL))
	}
}

// RedirectTarget is success/<id>, or failure[/<id>]?error=<code>.
func RedirectTarget(res vnpay.CallbackResult, successURL, failureURL string) string {
	if res.Success {
		return fmt.Sprintf("%s/%d", successURL, res.OrderID)
	}
	target := failureURL
	if res.OrderID != 0 && res.ErrorCode != vnpay.ErrCodeOrderNotFound {
		target = fmt.Sprintf("%s/%d", failureURL, res.OrderID)
	}
	return target + "?error=" + url.QueryEscape(res.ErrorCode)
}
