package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-launchpad/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes, every owner route requires authentication
	v1 := router.Group("/api/v1")
	owners := v1.Group("/owners/:owner_id", middleware.Auth(authCfg))
	{
		// Asset status and history
		owners.GET("/asset", handler.GetAsset)
		owners.GET("/actions", handler.ListActions)

		// Deployment
		owners.POST("/logo", handler.UploadLogo)
		owners.POST("/asset", handler.CreateAsset)

		// Paid trading unlock
		owners.POST("/unlock/request", handler.RequestUnlock)
		owners.POST("/unlock/confirm", handler.ConfirmUnlock)

		// Paid listing submission
		owners.POST("/listing/request", handler.RequestListing)
		owners.POST("/listing/confirm", handler.ConfirmListing)
	}
}
