package router

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"listingstudio.app/studio/internal/http/handler"
	"listingstudio.app/studio/internal/service"
)

type RouterConfig struct {
	Redis              *redis.Client
	StatusStreamPrefix string
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		listingHandler := handler.NewListingHandler(services.Listings())
		stagingHandler := handler.NewStagingHandler(services.Staging())
		statusHandler := handler.NewStagingStatusHandler(services.Staging(), cfg.Redis, cfg.StatusStreamPrefix)

		sessions := v1.Group("/sessions")
		SessionRouter(sessions, listingHandler)
		ListingRouter(sessions.Group("/:session_id/listing"), listingHandler)
		StagingRouter(sessions.Group("/:session_id/staging"), stagingHandler, statusHandler)
	}
}
