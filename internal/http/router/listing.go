package router

import (
	"github.com/gin-gonic/gin"

	"listingstudio.app/studio/internal/http/handler"
)

func SessionRouter(rg *gin.RouterGroup, h *handler.ListingHandler) {
	rg.POST("", h.CreateSession)
	rg.DELETE("/:session_id", h.Reset)
}

func ListingRouter(rg *gin.RouterGroup, h *handler.ListingHandler) {
	rg.POST("", h.Submit)
	rg.GET("", h.Get)
	rg.POST("/description", h.RegenerateDescription)
}
