package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/habalhub/habal-hub/internal/api/handlers"
	"github.com/habalhub/habal-hub/internal/api/middleware"
	"github.com/habalhub/habal-hub/internal/domain/user"
	"github.com/habalhub/habal-hub/internal/service/session"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, sessions *session.Service, nrApp *newrelic.Application) {
	// Add New Relic middleware if enabled
	if nrApp != nil {
		r.Use(nrgin.Middleware(nrApp))
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	requireAuth := middleware.RequireAuth(sessions)

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// WebSocket connection (token via query parameter)
		v1.GET("/ws", requireAuth, h.HandleWebSocket)

		// Auth endpoints
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", middleware.GuestOnly(sessions), h.SignUp)
			auth.POST("/signin", middleware.GuestOnly(sessions), h.SignIn)
			auth.POST("/signout", requireAuth, h.SignOut)
			auth.GET("/me", requireAuth, h.Me)
		}

		// Ride endpoints
		rides := v1.Group("/rides", requireAuth)
		{
			rides.POST("", middleware.RequireRoles(user.RoleRider), h.BookRide)
			rides.GET("", h.ListRides)
			rides.GET("/estimate", h.EstimateFare)
			rides.GET("/:id", h.GetRide)
			rides.POST("/:id/accept", middleware.RequireRoles(user.RoleDriver), h.AcceptRide)
			rides.POST("/:id/start", middleware.RequireRoles(user.RoleDriver), h.StartRide)
			rides.POST("/:id/complete", middleware.RequireRoles(user.RoleDriver), h.CompleteRide)
			rides.POST("/:id/cancel", middleware.RequireRoles(user.RoleRider), h.CancelRide)
			rides.POST("/:id/rate", middleware.RequireRoles(user.RoleRider), h.RateRide)
		}

		// Profile endpoints
		profile := v1.Group("/profile", requireAuth)
		{
			profile.PUT("", h.UpdateProfile)
			profile.GET("/reviews", h.ListMyReviews)

			profile.POST("/locations", h.CreateSavedLocation)
			profile.GET("/locations", h.ListSavedLocations)
			profile.DELETE("/locations/:id", h.DeleteSavedLocation)

			profile.POST("/payment-methods", h.CreatePaymentMethod)
			profile.GET("/payment-methods", h.ListPaymentMethods)
			profile.POST("/payment-methods/:id/default", h.SetDefaultPaymentMethod)
			profile.DELETE("/payment-methods/:id", h.DeletePaymentMethod)
		}

		// Tracking endpoints
		tracking := v1.Group("/tracking", requireAuth)
		{
			tracking.POST("/location", middleware.RequireRoles(user.RoleDriver), h.UpdateMyLocation)
			tracking.GET("/nearby", h.NearbyDrivers)
			tracking.GET("/drivers/:id/stream", h.WatchDriver)
		}

		// Admin endpoints
		admin := v1.Group("/admin", requireAuth, middleware.RequireRoles(user.RoleAdmin))
		{
			admin.GET("/overview", h.AdminOverview)
			admin.GET("/users", h.AdminListUsers)
			admin.PUT("/users/:id", h.AdminUpdateUser)
		}
	}
}
