package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	Language    string
	LogLevel    string
	API         APIConfig
	Session     SessionConfig
	Redis       RedisConfig
	Database    DatabaseConfig
}

type APIConfig struct {
	BaseURL     string
	Timeout     time.Duration
	MaxRetries  int
	LogoutDelay time.Duration
	Breaker     BreakerConfig
}

type BreakerConfig struct {
	FailureRatio float64
	MinRequests  uint32
	OpenTimeout  time.Duration
}

type SessionConfig struct {
	Backend string
	File    string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Session backends
const (
	SessionBackendFile     = "file"
	SessionBackendRedis    = "redis"
	SessionBackendPostgres = "postgres"
)

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LANGUAGE", "id")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("API_TIMEOUT", "10s")
	viper.SetDefault("LOGOUT_DELAY", "2s")
	viper.SetDefault("SESSION_BACKEND", SessionBackendFile)
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	timeout, err := getDurationOrViper("API_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	logoutDelay, err := getDurationOrViper("LOGOUT_DELAY", 2*time.Second)
	if err != nil {
		return nil, err
	}
	breakerTimeout, err := getDurationOrViper("BREAKER_OPEN_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	maxRetries, err := getIntOrViper("API_MAX_RETRIES", 0)
	if err != nil {
		return nil, err
	}
	minRequests, err := getIntOrViper("BREAKER_MIN_REQUESTS", 5)
	if err != nil {
		return nil, err
	}
	redisDB, err := getIntOrViper("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	failureRatio, err := strconv.ParseFloat(getEnvOrViper("BREAKER_FAILURE_RATIO", "0.5"), 64)
	if err != nil {
		return nil, fmt.Errorf("BREAKER_FAILURE_RATIO: %w", err)
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Language:    getEnvOrViper("LANGUAGE", "id"),
		LogLevel:    getEnvOrViper("LOG_LEVEL", "info"),
		API: APIConfig{
			BaseURL:     getEnvOrViper("API_BASE_URL", ""),
			Timeout:     timeout,
			MaxRetries:  maxRetries,
			LogoutDelay: logoutDelay,
			Breaker: BreakerConfig{
				FailureRatio: failureRatio,
				MinRequests:  uint32(minRequests),
				OpenTimeout:  breakerTimeout,
			},
		},
		Session: SessionConfig{
			Backend: getEnvOrViper("SESSION_BACKEND", SessionBackendFile),
			File:    getEnvOrViper("SESSION_FILE", defaultSessionFile()),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrViper("REDIS_ADDR", "localhost:6379"),
			Password: getEnvOrViper("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "procurement"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
	}

	// Validate required fields
	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL is required")
	}
	switch cfg.Session.Backend {
	case SessionBackendFile, SessionBackendRedis, SessionBackendPostgres:
	default:
		return nil, fmt.Errorf("SESSION_BACKEND must be one of file, redis, postgres; got %q", cfg.Session.Backend)
	}
	if cfg.API.Breaker.FailureRatio <= 0 || cfg.API.Breaker.FailureRatio > 1 {
		return nil, fmt.Errorf("BREAKER_FAILURE_RATIO must be in (0, 1]")
	}

	return cfg, nil
}

// DSN renders the lib/pq connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func getDurationOrViper(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnvOrViper(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getIntOrViper(key string, defaultValue int) (int, error) {
	raw := getEnvOrViper(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "procurement", "session.json")
}
