// Package main runs the video-to-blog automation HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/config"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/automation"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/blogposts"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/meetings"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/middleware"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/probe"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/processinglogs"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/transcripts"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/uploads"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/videos"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/webhooks"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/worker"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/pkg/cloudinary"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/pkg/database"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/pkg/queue"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/pkg/redis"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/pkg/response"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	fileStore, err := storage.NewLocal(cfg.Storage.RootDir, logger)
	if err != nil {
		logger.Fatal("storage", zap.Error(err))
	}

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:          cfg.AWS.Region,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			ArchiveBucket:   cfg.AWS.ArchiveBucket,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 archive disabled", zap.Error(err))
		}
	}

	mediaHost := cloudinary.NewClient(cloudinary.Config{
		CloudName: cfg.Cloudinary.CloudName,
		APIKey:    cfg.Cloudinary.APIKey,
		APISecret: cfg.Cloudinary.APISecret,
	}, logger)
	if !mediaHost.Enabled() {
		logger.Warn("cloudinary not configured, uploads fall back to local URLs")
	}

	prober := probe.New(logger)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	meetingRepo := meetings.NewRepository(pool)
	videoRepo := videos.NewRepository(pool)
	blogRepo := blogposts.NewRepository(pool)
	logRepo := processinglogs.NewRepository(pool)

	supabase := transcripts.NewSupabaseClient(cfg.Supabase.URL, cfg.Supabase.ServiceRoleKey, logger)
	if !supabase.Enabled() {
		logger.Warn("supabase not configured, transcript flow disabled")
	}

	maxUploadBytes := cfg.Storage.MaxUploadMB * 1024 * 1024

	uploadService := uploads.NewService(meetingRepo, videoRepo, fileStore, mediaHost, prober,
		jobQueue, cfg.Automation.UploadFlowURL(), cfg.Server.BaseURL, maxUploadBytes, logger)
	uploadHandler := uploads.NewHandler(uploadService, maxUploadBytes, logger)

	transcriptService := transcripts.NewService(supabase, meetingRepo, jobQueue,
		cfg.Automation.TranscriptFlowURL(), logger)
	transcriptHandler := transcripts.NewHandler(transcriptService, logger)

	webhookHandler := webhooks.NewHandler(meetingRepo, blogRepo, logRepo, logger)
	meetingHandler := meetings.NewHandler(meetingRepo, blogRepo, logRepo, supabase, logger)
	videoHandler := videos.NewHandler(videoRepo, fileStore, prober, logger)

	trigger := automation.NewTrigger(time.Duration(cfg.Automation.TimeoutSeconds)*time.Second, logger)
	processor := worker.NewProcessor(jobQueue, trigger, s3Client, videoRepo, fileStore, logger)
	retention := worker.NewRetentionScanner(fileStore, jobQueue,
		time.Duration(cfg.Storage.RetentionDays)*24*time.Hour,
		time.Duration(cfg.Storage.RetentionScanHours)*time.Hour, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))
	router.MaxMultipartMemory = 32 << 20

	router.GET("/health", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			logger.Error("health check failed", zap.Error(err))
			response.ServiceUnavailable(c, "Database unreachable")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "connected"})
	})

	uploadHandler.RegisterRoutes(router)
	transcriptHandler.RegisterRoutes(router)
	webhookHandler.RegisterRoutes(router)
	meetingHandler.RegisterRoutes(router)
	videoHandler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Background worker (trigger dispatch + retention archiving)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go processor.Run(workerCtx)
	if s3Client != nil {
		go retention.Run(workerCtx)
		logger.Info("retention scanner started",
			zap.Int("retention_days", cfg.Storage.RetentionDays))
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
