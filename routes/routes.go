package routes

import (
	"net/http"

	"github.com/Injajul/Foodify2/controllers"
	"github.com/Injajul/Foodify2/entity"
	"github.com/Injajul/Foodify2/middlewares"
	"github.com/Injajul/Foodify2/ws"

	"github.com/gin-gonic/gin"
)

// Deps is everything the HTTP layer needs, built once in main.
type Deps struct {
	Auth *middlewares.Authenticator

	Menu       *controllers.MenuController
	Cart       *controllers.CartController
	Order      *controllers.OrderController
	OwnerOrder *controllers.OwnerOrderController
	Review     *controllers.ReviewController
	Payment    *controllers.PaymentController
	Identity   *controllers.AuthController
	Hub        *ws.OrderHub
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	authed := d.Auth.AuthMiddleware()
	sellerOnly := d.Auth.AuthMiddleware(entity.RoleSeller)

	// Webhooks (signature checked in the handler, no bearer token)
	wh := r.Group("/webhooks")
	{
		wh.POST("/stripe", d.Payment.StripeWebhook)
		wh.POST("/clerk", d.Identity.IdentityWebhook)
	}

	r.GET("/users/me", authed, d.Identity.Me)

	// Menu (public)
	r.GET("/restaurants/:restaurantId/menu", d.Menu.Get)

	// Cart
	cart := r.Group("/cart", authed)
	{
		cart.GET("", d.Cart.Get)
		cart.POST("/checkout", d.Cart.CheckoutCart)
		cart.POST("/:restaurantId/:productId", d.Cart.Add)
		cart.PATCH("/:restaurantId/items/:productId", d.Cart.UpdateQuantity)
		cart.DELETE("/:restaurantId/:productId", d.Cart.RemoveItem)
	}

	// Orders
	orders := r.Group("/orders")
	{
		orders.GET("/user", authed, d.Order.ListMine)
		orders.PATCH("/:id/cancel", authed, d.Order.Cancel)

		orders.GET("/seller", sellerOnly, d.OwnerOrder.List)
		orders.PATCH("/:id/restaurant/:restaurantId/status", sellerOnly, d.OwnerOrder.UpdateStatus)
	}

	// Reviews
	r.GET("/reviews/:productId", d.Review.List)
	r.POST("/reviews/:productId", authed, d.Review.Upsert)

	// Live order updates
	r.GET("/ws/orders", d.Auth.WSAuthMiddleware(), d.Hub.HandleWebSocket)
}
