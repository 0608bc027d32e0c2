package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"muuguzi/internal/config"
	"muuguzi/internal/handler"
	"muuguzi/internal/logger"
	"muuguzi/internal/repository"
	"muuguzi/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync()

	zl.Info("Muuguzi backend",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	gin.SetMode(cfg.Server.GinMode)

	// Caregiver store
	var (
		store    service.CaregiverStore
		recorder service.AssessmentRecorder
	)
	if cfg.UsesPostgres() {
		repo, err := repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
			zl,
		)
		if err != nil {
			zl.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer repo.Close()

		if err := repo.EnsureSchema(context.Background(), cfg.Store.AssessmentLogEnabled); err != nil {
			zl.Fatal("Failed to prepare database schema", zap.Error(err))
		}
		store = repo
		if cfg.Store.AssessmentLogEnabled {
			recorder = repo
		}
		zl.Info("Using PostgreSQL caregiver store", zap.Bool("assessment_log", recorder != nil))
	} else {
		store = repository.NewFileCaregiverStore(cfg.Store.CaregiverFile, zl)
		zl.Info("Using file caregiver store", zap.String("path", cfg.Store.CaregiverFile))
	}

	// Learned model, loaded lazily on the first prediction
	loader := service.NewONNXLoader(service.ONNXConfig{
		LibraryPath: cfg.Model.LibraryPath,
		InputName:   cfg.Model.InputName,
		OutputName:  cfg.Model.OutputName,
	}, zl)
	models := service.NewModelCell(cfg.Model.Path, loader, zl)
	defer models.Close()

	// Initialize services
	predictor := service.NewPredictor(service.NewRuleScorer(), models, recorder, zl)
	defer predictor.Close()
	ranker := service.NewCaregiverRanker(service.DefaultMatchWeights(), service.DefaultMaxMatches)
	caregiverService := service.NewCaregiverService(store, ranker, zl)

	// Initialize handlers
	delay := time.Duration(cfg.Server.ResponseDelaySeconds) * time.Second
	predictionHandler := handler.NewPredictionHandler(predictor, delay, zl)
	caregiverHandler := handler.NewCaregiverHandler(caregiverService, delay, zl)

	var limiter *handler.IPRateLimiter
	if cfg.RateLimit.RequestsPerSecond > 0 {
		limiter = handler.NewIPRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	router := handler.SetupRouter(predictionHandler, caregiverHandler, handler.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MetricsEnabled: cfg.Metrics.Enabled,
		RateLimiter:    limiter,
		Build: handler.BuildInfo{
			Version:   Version,
			BuildTime: BuildTime,
			GitCommit: GitCommit,
		},
		Logger: zl,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		zl.Info("Starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(config.MaxResponseDelaySeconds+5)*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("Server shutdown failed", zap.Error(err))
	}
	zl.Info("Server stopped")
}
