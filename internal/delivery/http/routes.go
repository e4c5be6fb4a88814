package http

import (
	"github.com/gin-gonic/gin"

	"github.com/basketcost/backend/config"
	"github.com/basketcost/backend/internal/logger"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log := logger.Named("http")
	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware(log))
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		units := v1.Group("/units")
		{
			units.POST("/parse", handler.ParseUnit)
		}

		prices := v1.Group("/prices")
		{
			prices.GET("", handler.ListPrices)
			prices.POST("/normalize", handler.NormalizePrices)
		}

		nutrition := v1.Group("/nutrition")
		{
			nutrition.GET("/:item", handler.GetNutrition)
		}
	}

	return router
}
