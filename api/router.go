package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/bookqueue-go/api/handlers"
	"github.com/yourusername/bookqueue-go/api/middleware"
	"github.com/yourusername/bookqueue-go/internal/app"
)

// SetupRouter sets up the HTTP router
func SetupRouter(
	store *app.Store,
	commands *app.CommandService,
	poller *app.Poller,
	log *zap.Logger,
) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(poller)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		queueHandler := handlers.NewQueueHandler(store, commands, log)

		queue := v1.Group("/queue")
		{
			queue.GET("", queueHandler.GetQueue)
			queue.GET("/stats", queueHandler.GetStats)
			queue.POST("/reorder", queueHandler.Reorder)
		}

		downloads := v1.Group("/downloads")
		{
			downloads.POST("", queueHandler.StartDownload)
			downloads.GET("/:id", queueHandler.GetDownload)
			downloads.POST("/:id/cancel", queueHandler.CancelDownload)
			downloads.DELETE("/completed", queueHandler.ClearCompleted)
		}

		history := v1.Group("/history")
		{
			history.GET("", queueHandler.GetHistory)
			history.DELETE("", queueHandler.ClearHistory)
		}

		notifications := v1.Group("/notifications")
		{
			notifications.GET("", queueHandler.GetNotifications)
			notifications.POST("/:id/dismiss", queueHandler.DismissNotification)
		}
	}

	return router
}
