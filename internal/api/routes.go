package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/rentalhub/internal/core"
	"github.com/example/rentalhub/internal/metrics"
	"github.com/example/rentalhub/internal/middleware"
)

// Services groups the core services the routes are served by.
type Services struct {
	Accounts core.AccountService
	Listings core.ListingService
	Payments core.PaymentService
}

// SetupRoutes configures all the application routes with their handlers and middleware.
// Global middleware (logging, recovery, CORS, metrics) is expected to be applied to the
// router by the caller.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	authMW *middleware.AuthMiddleware,
	paymentLimiter *middleware.RateLimiter,
	sessions SessionManager,
	services Services,
	recorder *metrics.Recorder,
) {
	accountHandler := NewAccountHandler(services.Accounts, services.Listings, sessions, logger)
	listingHandler := NewListingHandler(services.Listings, logger)
	paymentHandler := NewPaymentHandler(services.Payments, logger)
	adminHandler := NewAdminHandler(services.Accounts, logger)

	apiV1 := router.Group("/api/v1")
	{
		users := apiV1.Group("/users", authMW.VerifyToken())
		{
			users.POST("/initialize", accountHandler.InitializeProfile)
			users.GET("/me", accountHandler.GetCurrentUser)
			users.GET("/me/listings", accountHandler.ListMyListings)
		}

		apiV1.POST("/auth/signout", authMW.VerifyToken(), accountHandler.SignOut)

		listings := apiV1.Group("/listings")
		{
			// Browsing works anonymously; premium fields depend on the session.
			listings.GET("", authMW.OptionalToken(), listingHandler.ListListings)
			listings.GET("/:id", authMW.OptionalToken(), listingHandler.GetListing)

			listings.POST("", authMW.VerifyToken(), listingHandler.CreateListing)
			listings.PATCH("/:id/status", authMW.VerifyToken(), listingHandler.UpdateStatus)
			listings.GET("/:id/nearby", authMW.VerifyToken(), listingHandler.Nearby)
		}

		apiV1.POST("/payments/verify", authMW.VerifyToken(), paymentLimiter.Handler(), paymentHandler.VerifyPayment)

		admin := apiV1.Group("/admin", authMW.VerifyToken(), authMW.RequireAdmin())
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.PATCH("/users/:id/payment", adminHandler.SetPaymentStatus)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Rentalhub backend is healthy."})
	})
	if recorder != nil {
		router.GET("/metrics", gin.WrapH(recorder.Handler()))
	}

	logger.Info("API routes configured successfully under /api/v1, /health and /metrics.")
}
