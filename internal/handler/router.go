package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/pitchcoach/internal/middleware"
)

type RouterDeps struct {
	Conversations   *ConversationHandler
	Insights        *InsightHandler
	UploadRateLimit time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	upload := api.Group("")
	if deps.UploadRateLimit > 0 {
		upload.Use(middleware.RateLimit(deps.UploadRateLimit))
	}
	upload.POST("/upload", deps.Conversations.Upload)

	api.GET("/conversations/:id/transcript", deps.Conversations.GetTranscript)
	api.GET("/conversations/:id/pitch", deps.Conversations.GetPitch)
	api.GET("/conversations/:id/coverage", deps.Insights.Coverage)
	api.GET("/conversations/:id/search", deps.Insights.Search)
	api.POST("/conversations/:id/chat", deps.Insights.Chat)
}
