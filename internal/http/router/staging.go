package router

import (
	"github.com/gin-gonic/gin"

	"listingstudio.app/studio/internal/http/handler"
)

func StagingRouter(rg *gin.RouterGroup, h *handler.StagingHandler, status *handler.StagingStatusHandler) {
	rg.POST("", h.Stage)
	rg.GET("", h.Status)
	rg.GET("/photos/:index", h.Photo)
	rg.GET("/stream", status.Stream)
}
