package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skillmatch/backend/config"
)

// MetricsCollector instruments requests and serves the metrics endpoint
type MetricsCollector interface {
	Middleware() gin.HandlerFunc
	Handler() http.Handler
}

// SetupRouter creates and configures the Gin router. metrics may be nil.
func SetupRouter(cfg *config.Config, handler *Handler, metrics MetricsCollector) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.Upload.MaxBytes

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	if metrics != nil {
		router.Use(metrics.Middleware())
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		v1.GET("/roles", handler.ListRoles)

		analyze := v1.Group("/analyze")
		{
			analyze.POST("", handler.Analyze)
			analyze.POST("/upload", handler.AnalyzeUpload)
		}

		reports := v1.Group("/reports")
		{
			reports.GET("/:id", handler.DownloadReport)
			reports.GET("/:id/chart", handler.DownloadChart)
		}
	}

	return router
}
