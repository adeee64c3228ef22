// Package api exposes the ranking engine over HTTP with gin.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gcbaptista/jobmatch/internal/logging"
	"github.com/gcbaptista/jobmatch/services"
)

// Limits applied to request bodies.
const (
	MaxRequestBytes = 10 << 20
	MaxResumeBytes  = 5 << 20
	MaxBatchQueries = 100
)

// API holds dependencies for API handlers.
type API struct {
	engine services.Engine
	logger *zap.Logger
}

// NewAPI creates a new API handler structure.
func NewAPI(engine services.Engine, logger *zap.Logger) *API {
	return &API{engine: engine, logger: logging.OrNop(logger)}
}

// SetupRoutes registers every route on router.
func SetupRoutes(router *gin.Engine, engine services.Engine, logger *zap.Logger) {
	apiHandler := NewAPI(engine, logger)

	router.Use(RequestIDMiddleware(), LoggerMiddleware(apiHandler.logger), CORSMiddleware(), RequestSizeLimitMiddleware(MaxRequestBytes))

	router.GET("/health", apiHandler.HealthCheckHandler)
	router.GET("/analytics", apiHandler.GetAnalyticsHandler)
	router.GET("/settings", apiHandler.GetSettingsHandler)

	jobRoutes := router.Group("/jobs")
	{
		jobRoutes.GET("", apiHandler.ListJobsHandler)
		jobRoutes.GET("/metrics", apiHandler.GetJobMetricsHandler)
		jobRoutes.GET("/:jobId", apiHandler.GetJobHandler)
	}

	apiRoutes := router.Group("/api")
	{
		rec := apiRoutes.Group("/jobs/recommendations")
		{
			rec.POST("", apiHandler.RankHandler)
			rec.POST("/upload", apiHandler.RankUploadHandler)
			rec.POST("/batch", apiHandler.RankBatchHandler)
		}

		corpusRoutes := apiRoutes.Group("/corpus")
		{
			corpusRoutes.GET("", apiHandler.GetSnapshotHandler)
			corpusRoutes.POST("/refresh", apiHandler.RefreshSnapshotHandler)
			corpusRoutes.POST("/invalidate", apiHandler.InvalidateSnapshotHandler)
			corpusRoutes.PUT("/documents", apiHandler.ImportDocumentsHandler)
		}
	}
}

// HealthCheckHandler provides a simple health check endpoint
func (api *API) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "jobmatch",
		"timestamp": time.Now().Unix(),
	})
}

func (api *API) GetAnalyticsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.engine.Analytics())
}

// GetSettingsHandler returns the effective ranking settings.
func (api *API) GetSettingsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.engine.Settings())
}
