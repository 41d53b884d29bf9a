package router

import (
	"github.com/amaretto/amaretto-backend/config"
	"github.com/amaretto/amaretto-backend/internal/app/controller"
	"github.com/amaretto/amaretto-backend/internal/metrics"
	"github.com/amaretto/amaretto-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Controllers groups the HTTP handlers the route table dispatches to
type Controllers struct {
	Auth        *controller.AuthController
	Product     *controller.ProductController
	Order       *controller.OrderController
	OrderFeed   *controller.OrderFeedController
	Cart        *controller.CartController
	Settings    *controller.SettingsController
	Upload      *controller.UploadController
	Diagnostics *controller.DiagnosticsController
}

type Router struct {
	controllers    Controllers
	authMiddleware *middleware.AuthMiddleware
	orderLimiter   *middleware.RateLimiter
	loginLimiter   *middleware.RateLimiter
	config         *config.Config
}

func NewRouter(
	controllers Controllers,
	authMiddleware *middleware.AuthMiddleware,
	orderLimiter *middleware.RateLimiter,
	loginLimiter *middleware.RateLimiter,
	cfg *config.Config,
) *Router {
	return &Router{
		controllers:    controllers,
		authMiddleware: authMiddleware,
		orderLimiter:   orderLimiter,
		loginLimiter:   loginLimiter,
		config:         cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Amaretto API is running",
		})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	admin := r.authMiddleware.RequireAdmin()
	ctl := r.controllers

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", r.loginLimiter.Limit(), ctl.Auth.Login)
			auth.POST("/logout", ctl.Auth.Logout)
			auth.GET("/me", admin, ctl.Auth.Me)
		}

		products := v1.Group("/products")
		{
			products.GET("", ctl.Product.ListProducts)
			products.GET("/:identifier", ctl.Product.GetProduct)
			products.POST("", admin, ctl.Product.CreateProduct)
			products.PUT("/:identifier", admin, ctl.Product.UpdateProduct)
			products.DELETE("/:identifier", admin, ctl.Product.DeleteProduct)
			products.PATCH("/:identifier/stock", admin, ctl.Product.ToggleStock)
			products.PATCH("/:identifier/sale", admin, ctl.Product.SetSale)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("", r.orderLimiter.Limit(), ctl.Order.SubmitOrder)
			orders.GET("", admin, ctl.Order.ListOrders)
			orders.GET("/:id", admin, ctl.Order.GetOrder)
		}

		settings := v1.Group("/settings")
		{
			settings.GET("", ctl.Settings.GetSettings)
			settings.PUT("", admin, ctl.Settings.UpdateSettings)
			settings.POST("/reset-content", admin, ctl.Settings.ResetContent)
		}

		v1.GET("/homepage-featured", ctl.Settings.GetHomepageFeatured)
		v1.PUT("/homepage-featured", admin, ctl.Settings.UpdateHomepageFeatured)

		cart := v1.Group("/cart")
		{
			cart.GET("", ctl.Cart.GetCart)
			cart.POST("/items", ctl.Cart.AddToCart)
			cart.PUT("/items/:productId", ctl.Cart.UpdateCartItem)
			cart.DELETE("/items/:productId", ctl.Cart.RemoveFromCart)
			cart.DELETE("", ctl.Cart.ClearCart)
			cart.POST("/checkout-link", ctl.Cart.CheckoutLink)
		}

		upload := v1.Group("/upload", admin)
		{
			upload.POST("/presigned-urls", ctl.Upload.GeneratePresignedURLs)
			upload.GET("/images", ctl.Upload.ListImages)
		}

		adminGroup := v1.Group("/admin", admin)
		{
			adminGroup.GET("/orders/export", ctl.Order.ExportOrders)
			adminGroup.GET("/orders/ws", ctl.OrderFeed.Connect)
			adminGroup.GET("/diagnostics/db", ctl.Diagnostics.StoreStatus)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Cart-ID, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Cart-ID, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
