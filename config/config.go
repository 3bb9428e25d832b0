package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL   string
	ServerPort    string
	Environment   string
	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration
}

var AppConfig *Config

func Load() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// .env file is optional, continue without it
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}

	AppConfig = &Config{
		DatabaseURL:   databaseURL,
		ServerPort:    getEnv("PORT", "8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SessionTTL:    sessionTTL(),
	}

	return nil
}

// sessionTTL reads SESSION_TTL_HOURS, defaulting to one week.
func sessionTTL() time.Duration {
	if v := os.Getenv("SESSION_TTL_HOURS"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil && hours > 0 {
			return time.Duration(hours) * time.Hour
		}
	}
	return 168 * time.Hour
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
