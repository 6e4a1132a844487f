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
	"github.com/studymate/backend/services/course-service/internal/repositories"
	"github.com/studymate/backend/services/course-service/internal/services"
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

	logger.Logger.Info("Starting Course Service Scheduler")

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

	// Create Asynq client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	genClient, err := generation.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.FallbackAPIKey, cfg.Gemini.Model, logger.Logger)
	if err != nil {
		logger.Logger.Fatal("Failed to create generation client", zap.Error(err))
	}

	courseRepo := repositories.NewCourseRepository(db)
	userStatsService := services.NewUserStatsService(repositories.NewUserRepository(db), services.QuotaLimits{
		Free:   cfg.Quota.FreeDailyCourses,
		Member: cfg.Quota.MemberDailyCourses,
	}, logger.Logger)
	courseService := services.NewCourseService(
		courseRepo,
		repositories.NewChapterNoteRepository(db),
		userStatsService,
		genClient,
		jobs.NewAsynqBus(asynqClient),
		logger.Logger,
	)

	scheduler := NewScheduler(rdb, courseService, repositories.NewCheckpointRepository(db), cfg.Sweeper.StaleAfter, logger.Logger)
	if err := scheduler.Start(cfg.Sweeper.Cron); err != nil {
		logger.Logger.Fatal("Failed to start scheduler", zap.Error(err))
	}
	defer func() {
		logger.Logger.Info("Shutting down scheduler...")
		scheduler.Stop()
		logger.Logger.Info("Scheduler exited")
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
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
