package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/junaidrashid-git/fashionshop-api/controllers/order"
)

func SetupUserOrderRoutes(userGroup *gin.RouterGroup, d Deps) {
	orders := userGroup.Group("/orders")
	{
		orders.GET("", orderControllers.GetMyOrders(d.Orders))
		orders.GET("/:orderID", orderControllers.GetMyOrder(d.Orders))
		orders.POST("/:orderID/cancel", orderControllers.CancelMyOrder(d.Orders))
		orders.POST("/:orderID/payment-url", orderControllers.RetryPayment(d.Payments))
	}
}

func SetupAdminOrderRoutes(adminGroup *gin.RouterGroup, d Deps) {
	orders := adminGroup.Group("/orders")
	{
		orders.GET("", orderControllers.GetAllOrders(d.Orders))

		// websocket endpoint for real-time order updates
		if d.Hub != nil {
			orders.GET("/ws", d.Hub.OrderWebSocketHandler)
		}

		orders.GET("/:orderID", orderControllers.GetOrderByID(d.Orders))
		orders.PUT("/:orderID/status", orderControllers.UpdateOrderStatus(d.Orders))
		orders.PUT("/:orderID/items/:itemID", orderControllers.UpdateOrderItemQuantity(d.Orders))
		orders.POST("/:orderID/cancel", orderControllers.CancelOrder(d.Orders))
	}
}
