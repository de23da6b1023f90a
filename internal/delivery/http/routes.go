package http

import (
	"github.com/gin-gonic/gin"
	"github.com/neuralgenius/tupi-proxy/config"
	"github.com/rs/zerolog"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger zerolog.Logger) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(RecoveryMiddleware(logger))
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	api := router.Group("/api")
	{
		api.GET("/search", handler.Search)
		api.POST("/getConversationId", handler.GetConversationID)
	}

	return router
}
