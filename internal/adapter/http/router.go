package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codigix/Furnituredemo/internal/adapter/http/middleware"
	"github.com/codigix/Furnituredemo/internal/logging"
)

func NewRouter(oh *OrderHandler, ph *ProductHandler, uh *UserHandler, ch *CartHandler, authz *middleware.Authz) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())
	r.Use(middleware.Logging(logging.New("http")))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		users := api.Group("/users")
		{
			users.POST("/register", uh.Register)
			users.POST("/login", uh.Login)
			users.GET("/profile", authz.RequireUser(), uh.GetProfile)
			users.PUT("/profile", authz.RequireUser(), uh.UpdateProfile)
		}

		products := api.Group("/products")
		{
			products.GET("", ph.List)
			products.GET("/:id", ph.Get)
			products.POST("", authz.RequireAdmin(), ph.Create)
			products.PUT("/:id", authz.RequireAdmin(), ph.Update)
			products.DELETE("/:id", authz.RequireAdmin(), ph.Delete)
		}

		cart := api.Group("/cart", authz.RequireUser())
		{
			cart.POST("", ch.Add)
			cart.GET("", ch.List)
			cart.PUT("/:id", ch.Update)
			cart.DELETE("/:id", ch.Remove)
		}

		orders := api.Group("/orders")
		{
			orders.POST("", authz.RequireUser(), oh.PlaceOrder)
			orders.POST("/checkout", authz.RequireUser(), oh.Checkout)
			orders.GET("/myorders", authz.RequireUser(), oh.ListMyOrders)
			orders.GET("/:id", authz.RequireUser(), oh.GetOrder)
			orders.GET("/:id/status", authz.RequireUser(), oh.GetOrderStatus)
			orders.GET("", authz.RequireAdmin(), oh.ListAllOrders)
			orders.PUT("/:id/status", authz.RequireAdmin(), oh.SetOrderStatus)
		}
	}

	return r
}
