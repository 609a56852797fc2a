// Package main runs the background job worker (automation trigger dispatch,
// video archiving) as a standalone process.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/config"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/automation"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/videos"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/worker"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/pkg/database"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/pkg/queue"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/pkg/redis"
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

	videoRepo := videos.NewRepository(pool)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	trigger := automation.NewTrigger(time.Duration(cfg.Automation.TimeoutSeconds)*time.Second, logger)
	processor := worker.NewProcessor(jobQueue, trigger, s3Client, videoRepo, fileStore, logger)
	retention := worker.NewRetentionScanner(fileStore, jobQueue,
		time.Duration(cfg.Storage.RetentionDays)*24*time.Hour,
		time.Duration(cfg.Storage.RetentionScanHours)*time.Hour, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	if s3Client != nil {
		go retention.Run(workerCtx)
	}
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
