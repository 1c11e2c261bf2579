package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/api/handlers"
	"github.com/yourusername/mediagrab-go/api/middleware"
	"github.com/yourusername/mediagrab-go/internal/app"
)

// SetupRouter sets up the HTTP router
func SetupRouter(queueMgr *app.QueueManager, downloadMgr *app.DownloadManager, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))

	healthHandler := handlers.NewHealthHandler(queueMgr)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	v1 := router.Group("/api/v1")
	{
		downloadHandler := handlers.NewDownloadHandler(queueMgr, downloadMgr, log)
		downloads := v1.Group("/downloads")
		{
			downloads.POST("", downloadHandler.AddDownload)
			downloads.GET("", downloadHandler.ListDownloads)
			downloads.GET("/stats", downloadHandler.GetStats)
			downloads.GET("/:id", downloadHandler.GetDownload)
			downloads.GET("/:id/outcome", downloadHandler.GetOutcome)
			downloads.POST("/:id/cancel", downloadHandler.CancelDownload)
			downloads.POST("/:id/retry", downloadHandler.RetryDownload)
			downloads.DELETE("/:id", downloadHandler.DeleteDownload)
		}
	}

	return router
}
