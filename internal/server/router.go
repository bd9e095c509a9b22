package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/mindgrove/mindgrove-backend/internal/handlers"
	"github.com/mindgrove/mindgrove-backend/internal/middleware"
)

type RouterConfig struct {
	Mode           string
	AllowOrigins   []string
	AuthMiddleware *middleware.AuthMiddleware
	CanvasHandler  *handlers.CanvasHandler
	TopicHandler   *handlers.TopicHandler
	AIHandler      *handlers.AIHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	router := gin.Default()
	router.Use(otelgin.Middleware("mindgrove-backend"))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

// ===============
// || Public    ||
// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

// ===============
// || Protected ||
// ===============
	api := router.Group("/api/v1")
	api.Use(cfg.AuthMiddleware.RequireAuth())
	// Canvases
	api.POST("/canvases", cfg.CanvasHandler.Create)
	api.GET("/canvases", cfg.CanvasHandler.List)
	api.GET("/canvases/:canvasId", cfg.CanvasHandler.Get)
	api.PUT("/canvases/:canvasId", cfg.CanvasHandler.Update)
	api.DELETE("/canvases/:canvasId", cfg.CanvasHandler.Delete)
	api.GET("/canvases/:canvasId/graph", cfg.CanvasHandler.Graph)
	// Topics
	api.POST("/canvases/:canvasId/topics", cfg.TopicHandler.Create)
	api.GET("/canvases/:canvasId/topics", cfg.TopicHandler.ListForCanvas)
	api.GET("/topics/:topicId", cfg.TopicHandler.Get)
	api.PUT("/topics/:topicId", cfg.TopicHandler.Update)
	api.DELETE("/topics/:topicId", cfg.TopicHandler.Delete)
	// AI
	api.POST("/canvases/:canvasId/expand", cfg.AIHandler.GenerateKeywords)
	api.POST("/canvases/:canvasId/topics/:topicId/insights", cfg.AIHandler.GenerateInsights)

	return router
}
