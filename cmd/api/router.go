package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shop-backend/internal/shared/middleware"
	"shop-backend/internal/shared/response"
)

func SetupRouter(app *application) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(app))

		setupCatalogRoutes(v1, app)
		setupCouponRoutes(v1, app)
		setupOrderRoutes(v1, app)
		setupPaymentRoutes(v1, app)
		setupAdminRoutes(v1, app)
	}

	return router
}

// ========================================
// CATALOG ROUTES (public)
// ========================================
func setupCatalogRoutes(v1 *gin.RouterGroup, app *application) {
	products := v1.Group("/products")
	{
		products.GET("", app.catalogHandler.ListProducts)
		products.GET("/:id", app.catalogHandler.GetProduct)
	}
}

// ========================================
// COUPON ROUTES
// ========================================
func setupCouponRoutes(v1 *gin.RouterGroup, app *application) {
	coupons := v1.Group("/coupons")
	coupons.Use(middleware.AuthMiddleware(app.config.JWT.Secret))
	{
		coupons.POST("/preview", app.couponHandler.Preview)
	}
}

// ========================================
// ORDER ROUTES
// ========================================
func setupOrderRoutes(v1 *gin.RouterGroup, app *application) {
	orders := v1.Group("/orders")
	orders.Use(middleware.AuthMiddleware(app.config.JWT.Secret))
	{
		orders.POST("", app.orderHandler.CreateOrder)
		orders.GET("", app.orderHandler.ListOrders)
		orders.GET("/:id", app.orderHandler.GetOrder)
		orders.POST("/:id/cancel", app.orderHandler.CancelOrder)
	}
}

// ========================================
// PAYMENT ROUTES
// ========================================
func setupPaymentRoutes(v1 *gin.RouterGroup, app *application) {
	if app.paymentHandler == nil {
		return
	}

	payments := v1.Group("/payments")
	{
		payments.POST("/vnpay", middleware.AuthMiddleware(app.config.JWT.Secret), app.paymentHandler.InitiatePayment)
		// the gateway calls back unauthenticated; the signature is the auth
		payments.GET("/vnpay/callback", app.paymentHandler.Callback)
	}
}

// ========================================
// ADMIN ROUTES
// ========================================
func setupAdminRoutes(v1 *gin.RouterGroup, app *application) {
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(app.config.JWT.Secret), middleware.AdminMiddleware())
	{
		admin.PATCH("/orders/:id/status", app.orderHandler.UpdateStatus)
	}
}

// ========================================
// HEALTH CHECK
// ========================================
func healthCheckHandler(app *application) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := gin.H{"database": "ok", "redis": "ok"}

		if err := app.db.HealthCheck(ctx); err != nil {
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if err := app.redis.HealthCheck(ctx); err != nil {
			checks["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		}

		if status != http.StatusOK {
			response.ErrorWithDetails(c, status, "SYS_002", "dependency unavailable", checks)
			return
		}

		response.Success(c, status, gin.H{
			"status":      "healthy",
			"version":     app.config.App.Version,
			"environment": app.config.App.Environment,
			"checks":      checks,
		})
	}
}
