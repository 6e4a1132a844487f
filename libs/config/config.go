// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database   DatabaseConfig
	Redis      RedisConfig
	Server     ServerConfig
	Logging    LoggingConfig
	CORS       CORSConfig
	JWT        JWTConfig
	SMTP       SMTPConfig
	Gemini     GeminiConfig
	Generation GenerationConfig
	Quota      QuotaConfig
	Sweeper    SweeperConfig
	APIKey     string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns the host:port pair used by Redis clients
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds JWT token configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// SMTPConfig holds SMTP server configuration
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// NotifyCourseReady enables the course-ready email sent after notes generation
	NotifyCourseReady bool
}

// GeminiConfig holds AI provider credentials.
// FallbackAPIKey is optional; when empty the client never switches credentials.
type GeminiConfig struct {
	APIKey         string
	FallbackAPIKey string
	Model          string
}

// GenerationConfig holds pacing settings of the background generation jobs
type GenerationConfig struct {
	ChapterDelay      time.Duration
	RetryPause        time.Duration
	MaxRetries        int
	WorkerConcurrency int
}

// QuotaConfig holds daily course creation limits
type QuotaConfig struct {
	FreeDailyCourses   int
	MemberDailyCourses int
}

// SweeperConfig holds settings of the stale course sweeper
type SweeperConfig struct {
	Cron       string
	StaleAfter time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	godotenv.Load()

	cfg := &Config{}

	// Database configuration
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		return nil, fmt.Errorf("DB_HOST is required")
	}
	cfg.Database.Host = dbHost

	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		return nil, fmt.Errorf("DB_PORT is required")
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	cfg.Database.User = dbUser

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	cfg.Database.Password = dbPassword

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}
	cfg.Database.DBName = dbName

	// Server configuration
	if cfg.Server.Port, err = intEnv("SERVER_PORT", 8080); err != nil {
		return nil, err
	}

	// Logging configuration
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info" // default level
	}
	cfg.Logging.Level = logLevel

	// CORS configuration
	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.JWT.Secret = jwtSecret

	if cfg.JWT.AccessTokenExpiry, err = durationEnv("JWT_ACCESS_TOKEN_EXPIRY", time.Hour); err != nil {
		return nil, err
	}

	// API Key configuration (service-to-service authentication)
	cfg.APIKey = os.Getenv("API_KEY")

	// Redis configuration
	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		redisHost = "localhost" // default
	}
	cfg.Redis.Host = redisHost
	if cfg.Redis.Port, err = intEnv("REDIS_PORT", 6379); err != nil {
		return nil, err
	}
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD") // optional
	if cfg.Redis.DB, err = intEnv("REDIS_DB", 0); err != nil {
		return nil, err
	}

	// SMTP configuration (optional, for course-ready notifications)
	smtpHost := os.Getenv("SMTP_HOST")
	if smtpHost == "" {
		smtpHost = "localhost" // default
	}
	cfg.SMTP.Host = smtpHost
	if cfg.SMTP.Port, err = intEnv("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	cfg.SMTP.Username = os.Getenv("SMTP_USERNAME") // optional
	cfg.SMTP.Password = os.Getenv("SMTP_PASSWORD") // optional
	smtpFrom := os.Getenv("SMTP_FROM")
	if smtpFrom == "" {
		smtpFrom = "noreply@studymate.app" // default
	}
	cfg.SMTP.From = smtpFrom
	cfg.SMTP.NotifyCourseReady = strings.EqualFold(os.Getenv("NOTIFY_COURSE_READY"), "true")

	// Gemini configuration
	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	cfg.Gemini.APIKey = geminiKey
	cfg.Gemini.FallbackAPIKey = os.Getenv("GEMINI_FALLBACK_API_KEY") // optional
	geminiModel := os.Getenv("GEMINI_MODEL")
	if geminiModel == "" {
		geminiModel = "gemini-2.0-flash"
	}
	cfg.Gemini.Model = geminiModel

	// Generation pacing
	if cfg.Generation.ChapterDelay, err = durationEnv("CHAPTER_DELAY", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.Generation.RetryPause, err = durationEnv("RETRY_PAUSE", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.Generation.MaxRetries, err = intEnv("GENERATION_MAX_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.Generation.WorkerConcurrency, err = intEnv("WORKER_CONCURRENCY", 5); err != nil {
		return nil, err
	}

	// Quota configuration
	if cfg.Quota.FreeDailyCourses, err = intEnv("FREE_DAILY_COURSES", 10); err != nil {
		return nil, err
	}
	if cfg.Quota.MemberDailyCourses, err = intEnv("MEMBER_DAILY_COURSES", 999); err != nil {
		return nil, err
	}

	// Sweeper configuration
	sweeperCron := os.Getenv("SWEEPER_CRON")
	if sweeperCron == "" {
		sweeperCron = "*/5 * * * *"
	}
	cfg.Sweeper.Cron = sweeperCron
	if cfg.Sweeper.StaleAfter, err = durationEnv("SWEEPER_STALE_AFTER", 15*time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&multiStatements=true",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}

// parseOrigins splits a comma-separated origin list.
// An empty or blank list allows all origins.
func parseOrigins(raw string) []string {
	if raw == "" {
		return []string{"*"}
	}
	origins := make([]string, 0)
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func intEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
