package router

import (
	"net/http"

	"github.com/anonto42/nano-midea/engagement/internal/handlers"
	"github.com/anonto42/nano-midea/engagement/internal/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SetupRoutes registers every route. Everything under /api/v1 sits behind
// the identity middleware auth.
func SetupRoutes(e *echo.Echo, svc *services.Services, auth echo.MiddlewareFunc, logger *zap.Logger) {
	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "engagement api"})
	})

	api := e.Group("/api/v1")
	api.Use(auth)

	handlers.NewUserHandler(svc.Users, svc.Graph).RegisterProfileRoutes(api)
	handlers.NewFollowHandler(svc.Graph).RegisterFollowRoutes(api)
	handlers.NewPostHandler(svc.Posts).RegisterPostRoutes(api)
	handlers.NewFeedHandler(svc.Feed).RegisterFeedRoutes(api)
	handlers.NewLikeHandler(svc.Likes).RegisterLikeRoutes(api)
	handlers.NewCommentHandler(svc.Comments).RegisterCommentRoutes(api)
	handlers.NewNotificationHandler(svc.Notifications).RegisterNotificationRoutes(api)
	handlers.NewActivityHandler(svc.Activity).RegisterActivityRoutes(api)

	logger.Info("Routes configured", zap.Int("count", len(e.Routes())))
}
