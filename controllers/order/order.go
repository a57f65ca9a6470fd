package orderControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/fashionshop-api/controllers"
	"github.com/junaidrashid-git/fashionshop-api/controllers/checkout"
	"github.com/junaidrashid-git/fashionshop-api/middleware"
	"github.com/junaidrashid-git/fashionshop-api/models"
	"github.com/junaidrashid-git/fashionshop-api/orders"
	"github.com/junaidrashid-git/fashionshop-api/vnpay"
)

// -------- Request Structs --------

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type UpdateItemQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required"`
	Note   string `json:"note"`
}

// orderView adds the derived flags clients need to render an order.
func orderView(o models.Order) gin.H {
	return gin.H{
		"order":         o,
		"allows_review": o.Status.AllowsReview(),
		"next_statuses": orders.NextStatuses(o.Status),
		"cancel_label":  o.CancelReason.Label(),
	}
}

// -------- Customer Handlers --------

// GET /user/orders
func GetMyOrders(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.List(c.Request.Context(), orders.Filter{UserID: middleware.UserID(c)})
		if err != nil {
			controllers.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GET /user/orders/:orderID
func GetMyOrder(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := controllers.ParseID(c, "orderID")
		if !ok {
			return
		}
		order, err := svc.Get(c.Request.Context(), id, middleware.UserID(c))
		if err != nil {
			controllers.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, orderView(*order))
	}
}

// POST /user/orders/:orderID/cancel
func CancelMyOrder(svc *orders.Service) gin.HandlerFunc {
	return cancelHandler(svc, true)
}

// POST /user/orders/:orderID/payment-url issues a fresh gateway link.
func RetryPayment(payments *vnpay.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := controllers.ParseID(c, "orderID")
		if !ok {
			return
		}
		payURL, err := payments.PaymentURL(c.Request.Context(), id, middleware.UserID(c), checkoutControllers.ClientIP(c))
		if err != nil {
			controllers.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order_id": id, "payment_url": payURL})
	}
}

// -------- Admin Handlers --------

// GET /admin/orders?status=
func GetAllOrders(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var f orders.Filter
		if raw := c.Query("status"); raw != "" {
			st, ok := models.ParseOrderStatus(raw)
			if !ok {
				controllers.BadRequest(c, "invalid order status")
				return
			}
			f.Status = st
		}
		list, err := svc.List(c.Request.Context(), f)
		if err != nil {
			controllers.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GET /admin/orders/:orderID
func GetOrderByID(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := controllers.ParseID(c, "orderID")
		if !ok {
			return
		}
		order, err := svc.Get(c.Request.Context(), id, "")
		if err != nil {
			controllers.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, orderView(*order))
	}
}

// PUT /admin/orders/:orderID/status
func UpdateOrderStatus(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := controllers.ParseID(c, "orderID")
		if !ok {
			return
		}
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			controllers.BadRequest(c, err.Error())
			return
		}
		status, ok := models.ParseOrderStatus(req.Status)
		if !ok {
			controllers.BadRequest(c, "invalid order status")
			return
		}
		order, err := svc.UpdateStatus(c.Request.Context(), id, status)
		if err != nil {
			controllers.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, orderView(*order))
	}
}

// PUT /admin/orders/:orderID/items/:itemID
func UpdateOrderItemQuantity(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := controllers.ParseID(c, "orderID")
		if !ok {
			return
		}
		itemID, ok := controllers.ParseID(c, "itemID")
		if !ok {
			return
		}
		var req UpdateItemQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			controllers.BadRequest(c, err.Error())
			return
		}
		order, err := svc.UpdateItemQuantity(c.Request.Context(), orderID, itemID, req.Quantity)
		if err != nil {
			controllers.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, orderView(*order))
	}
}

// POST /admin/orders/:orderID/cancel
func CancelOrder(svc *orders.Service) gin.HandlerFunc {
	return cancelHandler(svc, false)
}

func cancelHandler(svc *orders.Service, customer bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := controllers.ParseID(c, "orderID")
		if !ok {
			return
		}
		var req CancelOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			controllers.BadRequest(c, err.Error())
			return
		}
		cr := orders.CancelRequest{OrderID: id, Reason: models.CancelReason(req.Reason), Note: req.Note}
		if customer {
			cr.UserID = middleware.UserID(c)
		}
		order, err := svc.Cancel(c.Request.Context(), cr)
		if err != nil {
			controllers.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, orderView(*order))
	}
}
