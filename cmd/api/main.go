package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"library-board-api/internal/cache"
	"library-board-api/internal/config"
	"library-board-api/internal/database"
	"library-board-api/internal/job"
	"library-board-api/internal/metrics"
	"library-board-api/internal/repository"
	"library-board-api/internal/router"
	"library-board-api/internal/service"
	"library-board-api/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logger.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Set Gin mode
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Starting Library Board Service",
		zap.String("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("storage_backend", cfg.Storage.Backend),
	)

	// Initialize database (실패해도 앱은 시작됨 - 백그라운드 재연결)
	dbConfig := database.Config{
		DSN:             cfg.Database.GetDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	db, err := database.New(dbConfig)
	if err != nil {
		logger.Warn("Failed to connect to database on startup, will retry in background",
			zap.Error(err))
		// 백그라운드에서 DB 연결 재시도 (5초 간격)
		database.NewAsync(dbConfig, 5*time.Second, logger)
	} else {
		database.SetDB(db)
		logger.Info("Database connected successfully")

		// Run auto migration (DB 연결된 경우만)
		if err := database.AutoMigrate(db); err != nil {
			logger.Warn("Failed to run database migrations", zap.Error(err))
		} else {
			logger.Info("Database migrations completed")
		}
	}

	// Initialize metrics
	m := metrics.NewWithLogger(logger)
	logger.Info("Metrics initialized")

	if db != nil {
		database.RegisterMetricsCallbacks(db, m)
		dbStatsDone := database.StartDBStatsCollector(db, m)
		defer close(dbStatsDone)

		businessCollector := metrics.NewBusinessMetricsCollector(db, m, logger)
		businessCollector.Start()
		defer businessCollector.Stop()
	}

	// Initialize storage backend
	store, err := initFileStore(cfg.Storage, logger)
	if err != nil {
		logger.Fatal("Failed to initialize attachment storage", zap.Error(err))
	}

	// Initialize Redis-backed view ranking. The ranking degrades to
	// database-only behaviour when Redis is unavailable.
	var ranker service.ViewRanker
	redisClient, err := database.NewRedis(cfg.Redis, logger)
	if err != nil {
		logger.Warn("Failed to connect to Redis, popular posts ranking disabled", zap.Error(err))
	} else {
		ranker = cache.NewViewRanking(redisClient, logger)
		logger.Info("Redis view ranking initialized")
	}

	// Setup router with all dependencies
	r := router.Setup(router.Config{
		DB:             db,
		Logger:         logger,
		JWTSecret:      cfg.JWT.Secret,
		Store:          store,
		Ranker:         ranker,
		Metrics:        m,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	// Schedule the purge job for deleted posts
	var scheduler *cron.Cron
	if cfg.Purge.Enabled && db != nil {
		purgeJob := job.NewPurgeJob(
			repository.NewPostRepository(db),
			repository.NewAttachmentRepository(db),
			store,
			cfg.Purge.Retention,
			logger,
		)

		scheduler = cron.New()
		if _, err := scheduler.AddJob(cfg.Purge.Schedule, purgeJob); err != nil {
			logger.Error("Failed to schedule purge job", zap.Error(err))
		} else {
			scheduler.Start()
			logger.Info("Purge job scheduled",
				zap.String("schedule", cfg.Purge.Schedule),
				zap.Duration("retention", cfg.Purge.Retention),
			)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Library Board Service started successfully",
			zap.String("address", srv.Addr),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	if scheduler != nil {
		scheduler.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Warn("Failed to close Redis client", zap.Error(err))
		}
	}

	logger.Info("Server exited gracefully")
}

// initFileStore builds the attachment store for the configured backend
func initFileStore(cfg config.StorageConfig, logger *zap.Logger) (*storage.FileStore, error) {
	var backend storage.Backend
	var err error

	switch cfg.Backend {
	case "s3":
		backend, err = storage.NewS3Backend(context.Background(), storage.S3Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		})
	default:
		backend, err = storage.NewFSBackend(cfg.RootDir)
	}
	if err != nil {
		return nil, err
	}

	return storage.NewFileStore(backend, cfg.MaxUploadBytes, cfg.AllowedExtensions, logger), nil
}

// initLogger initializes the zap logger with the specified level
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      zapLevel == zapcore.DebugLevel,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}
