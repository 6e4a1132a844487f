package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/hibiken/asynq"
	"github.com/studymate/backend/libs/auth/middleware"
	"github.com/studymate/backend/libs/auth/service"
	"github.com/studymate/backend/libs/config"
	"github.com/studymate/backend/libs/logger"
	loggerMiddleware "github.com/studymate/backend/libs/logger/middleware"
	sharedMiddleware "github.com/studymate/backend/libs/middlewares"
	_ "github.com/studymate/backend/services/course-service/docs"
	"github.com/studymate/backend/services/course-service/internal/generation"
	"github.com/studymate/backend/services/course-service/internal/handlers"
	"github.com/studymate/backend/services/course-service/internal/jobs"
	"github.com/studymate/backend/services/course-service/internal/repositories"
	"github.com/studymate/backend/services/course-service/internal/services"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// @title StudyMate Course API
// @version 1.0
// @description API for AI generated courses, chapter notes, flashcards and quizzes

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description API key for service-to-service authentication
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token. Required for admin endpoints.
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

	logger.Logger.Info("Starting Course Service API")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

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

	// Create Asynq client, the producer side of the job event bus
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()
	bus := jobs.NewAsynqBus(asynqClient)

	// The outline is generated inside the request
	genClient, err := generation.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.FallbackAPIKey, cfg.Gemini.Model, logger.Logger)
	if err != nil {
		logger.Logger.Fatal("Failed to create generation client", zap.Error(err))
	}

	tokenManager := service.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize repositories
	courseRepo := repositories.NewCourseRepository(db)
	noteRepo := repositories.NewChapterNoteRepository(db)
	studyContentRepo := repositories.NewStudyTypeContentRepository(db)
	userRepo := repositories.NewUserRepository(db)
	progressRepo := repositories.NewProgressRepository(db)

	// Initialize services
	userStatsService := services.NewUserStatsService(userRepo, services.QuotaLimits{
		Free:   cfg.Quota.FreeDailyCourses,
		Member: cfg.Quota.MemberDailyCourses,
	}, logger.Logger)
	courseService := services.NewCourseService(courseRepo, noteRepo, userStatsService, genClient, bus, logger.Logger)
	studyContentService := services.NewStudyContentService(studyContentRepo, courseRepo, genClient, bus, logger.Logger)
	userService := services.NewUserService(userRepo, bus, logger.Logger)
	analyticsService := services.NewAnalyticsService(progressRepo, courseRepo, services.AnalyticsConfig{}, logger.Logger)

	// Initialize handlers
	courseHandler := handlers.NewCourseHandler(courseService, logger.Logger)
	studyContentHandler := handlers.NewStudyContentHandler(studyContentService, logger.Logger)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, logger.Logger)
	userHandler := handlers.NewUserHandler(userService, logger.Logger)
	adminHandler := handlers.NewAdminHandler(courseService, logger.Logger)

	// Initialize auth middleware
	apiKeyMiddleware := middleware.APIKeyMiddleware(cfg.APIKey)
	adminMiddleware := middleware.RoleMiddleware(tokenManager, service.RoleAdmin)

	// Setup router
	r := chi.NewRouter()

	r.Use(sharedMiddleware.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger.Logger))
	r.Use(sharedMiddleware.RecoveryMiddleware(logger.Logger))
	r.Use(sharedMiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(sharedMiddleware.RequestSizeLimitMiddleware(10 * 1024 * 1024)) // 10MB

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	r.Route("/api/v1", func(r chi.Router) {
		// API key protected endpoints
		r.Group(func(r chi.Router) {
			r.Use(apiKeyMiddleware)
			courseHandler.RegisterRoutes(r)
			studyContentHandler.RegisterRoutes(r)
			analyticsHandler.RegisterRoutes(r)
			userHandler.RegisterRoutes(r)
		})

		// Admin endpoints (JWT protected)
		r.Group(func(r chi.Router) {
			r.Use(adminMiddleware)
			adminHandler.RegisterRoutes(r)
		})
	})

	// Outline generation waits on the AI provider, so the write timeout is generous
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
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

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "course_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// Running from cmd/api
		if _, err := os.Stat("../../migrations"); err == nil {
			migrationPath = "file://../../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(migrationPath, "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
