package handler

import (
	"net/http"
	"strings"

	"muuguzi/internal/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BuildInfo describes the running binary
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// RouterOptions configures SetupRouter
type RouterOptions struct {
	AllowedOrigins string
	MetricsEnabled bool
	RateLimiter    *IPRateLimiter // nil disables rate limiting
	Build          BuildInfo
	Logger         *zap.Logger
}

// SetupRouter wires middleware and routes onto a new gin engine
func SetupRouter(prediction *PredictionHandler, caregivers *CaregiverHandler, opts RouterOptions) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), AccessLog(logger))
	if opts.MetricsEnabled {
		router.Use(metrics.Middleware())
	}

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = splitOrigins(opts.AllowedOrigins)
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", RequestIDHeader}
	router.Use(cors.New(corsConfig))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "Muuguzi backend running"})
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"service":    "muuguzi-backend",
			"version":    opts.Build.Version,
			"build_time": opts.Build.BuildTime,
			"git_commit": opts.Build.GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    opts.Build.Version,
			"build_time": opts.Build.BuildTime,
			"git_commit": opts.Build.GitCommit,
		})
	})

	if opts.MetricsEnabled {
		router.GET("/metrics", metrics.Handler())
	}

	api := router.Group("/api")
	if opts.RateLimiter != nil {
		api.Use(RateLimit(opts.RateLimiter))
	}
	{
		api.POST("/predict_survival", prediction.PredictSurvival)
		api.POST("/match_caregivers", caregivers.Match)
		api.GET("/caregivers", caregivers.List)
		api.POST("/admin/caregivers", caregivers.Create)
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return router
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
