package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads the configuration from the .env file or environment variables for integration tests
// If the TEST_DB_* variables are not all set, it returns a Config with empty database values
// which allows tests to use fallback DSN values
func LoadTestConfig() (*Config, error) {
	// Try loading from project root, then from the working directory
	_ = godotenv.Load("../../../../.env")
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.APIKey = os.Getenv("TEST_API_KEY")
	cfg.JWT.Secret = os.Getenv("TEST_JWT_SECRET")

	cfg.Redis.Host = os.Getenv("TEST_REDIS_HOST")
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	redisPort, err := intEnv("TEST_REDIS_PORT", 6379)
	if err != nil {
		return nil, err
	}
	cfg.Redis.Port = redisPort
	cfg.Redis.DB = 1

	dbHost := os.Getenv("TEST_DB_HOST")
	dbPortStr := os.Getenv("TEST_DB_PORT")
	dbUser := os.Getenv("TEST_DB_USER")
	dbPassword := os.Getenv("TEST_DB_PASSWORD")
	dbName := os.Getenv("TEST_DB_NAME")
	if dbHost == "" || dbPortStr == "" || dbUser == "" || dbPassword == "" || dbName == "" {
		// Return config without database to allow fallback DSN in tests
		return cfg, nil
	}

	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid TEST_DB_PORT: %w", err)
	}

	cfg.Database = DatabaseConfig{
		Host:     dbHost,
		Port:     dbPort,
		User:     dbUser,
		Password: dbPassword,
		DBName:   dbName,
	}

	return cfg, nil
}

// HasDatabase reports whether database settings were provided
func (c *Config) HasDatabase() bool {
	return c.Database.Host != ""
}
