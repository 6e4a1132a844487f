package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/hibiken/asynq"
	"github.com/studymate/backend/libs/config"
	"github.com/studymate/backend/libs/logger"
	"github.com/studymate/backend/services/course-service/internal/generation"
	"github.com/studymate/backend/services/course-service/internal/jobs"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting Course Service Worker")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	// Jobs emit follow-up events through the same bus the API uses
	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()

	genClient, err := generation.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.FallbackAPIKey, cfg.Gemini.Model, logger.Logger)
	if err != nil {
		logger.Logger.Fatal("Failed to create generation client", zap.Error(err))
	}

	dispatcher, err := NewWorker(cfg, db, jobs.NewAsynqBus(asynqClient), genClient, logger.Logger)
	if err != nil {
		logger.Logger.Fatal("Failed to register job handlers", zap.Error(err))
	}

	// Create Asynq server
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Generation.WorkerConcurrency,
		Queues: map[string]int{
			jobs.QueueGeneration: 5,
			jobs.QueueDefault:    1,
		},
		Logger: logger.Logger.Sugar(),
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			if retried >= maxRetry {
				logger.Logger.Error("Event exhausted its retries", zap.String("event", task.Type()), zap.Error(err))
			}
		}),
	})

	mux := asynq.NewServeMux()
	dispatcher.Mount(mux)

	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Logger.Fatal("Failed to start worker", zap.Error(err))
		}
	}()

	logger.Logger.Info("Worker started", zap.Int("concurrency", cfg.Generation.WorkerConcurrency))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down worker...")
	srv.Shutdown()
	logger.Logger.Info("Worker exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
