package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/beast717/ishtri.site-sub000/internal/api/handler"
)

// SetupNotificationRouter configures the Gin router for the notification
// API service.
func SetupNotificationRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "notification-api",
		})
	})

	notificationHandler := handler.NewNotificationHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		notifications := v1.Group("/notifications")
		{
			// GET /api/v1/notifications - List the user's notifications
			notifications.GET("", notificationHandler.ListNotifications)

			// GET /api/v1/notifications/unread-count - Unread badge count
			notifications.GET("/unread-count", notificationHandler.UnreadCount)

			// POST /api/v1/notifications/:notification_id/read - Mark one read
			notifications.POST("/:notification_id/read", notificationHandler.MarkRead)

			// POST /api/v1/notifications/read-all - Mark everything read
			notifications.POST("/read-all", notificationHandler.MarkAllRead)
		}
	}

	return r
}

// SetupMatcherRouter configures the Gin router for the matcher service's
// control surface: health and the manual cycle trigger.
func SetupMatcherRouter(logger *slog.Logger, trigger handler.CycleTrigger) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "matcher-service",
		})
	})

	matchHandler := handler.NewMatchHandler(logger, trigger)

	v1 := r.Group("/api/v1")
	{
		// POST /api/v1/match/run - Run one match cycle now
		v1.POST("/match/run", matchHandler.RunCycle)
	}

	return r
}
