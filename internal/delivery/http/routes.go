package http

import (
	"github.com/gin-gonic/gin"
	"github.com/qkart/storefront/config"
	"github.com/qkart/storefront/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(NewRateLimiter(cfg.RateLimit.PerIP, cfg.RateLimit.Burst).Middleware())
	{
		v1.POST("/session", handler.Login)
		v1.DELETE("/session", handler.Logout)

		storefront := v1.Group("/storefront")
		{
			storefront.GET("", handler.GetStorefront)
			storefront.POST("/search", handler.Search)
			storefront.POST("/cart", handler.AddToCart)
			storefront.PUT("/cart/:productId", handler.SetQuantity)
			storefront.GET("/checkout", handler.Checkout)
		}
	}

	return router
}
