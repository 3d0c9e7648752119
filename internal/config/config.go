package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	GoEnv string `env:"GO_ENV" default:"development"`

	// HTTP
	HTTPHost string `env:"HTTP_HOST" default:"127.0.0.1"`
	HTTPPort int    `env:"HTTP_PORT" default:"8080"`

	// Database
	DatabaseDriver string `env:"DATABASE_DRIVER" default:"sqlite"`
	DatabaseURL    string `env:"DATABASE_URL" default:"./data/bookex.db"`

	// Authentication
	JWTSecret     string        `env:"JWT_SECRET" required:"true"`
	SessionTTL    time.Duration `env:"SESSION_TTL" default:"24h"`
	SessionCookie string        `env:"SESSION_COOKIE" default:"bookex_session"`

	// Picture storage
	StorageBackend string        `env:"STORAGE_BACKEND" default:"local"`
	MediaRoot      string        `env:"MEDIA_ROOT" default:"./data/uploads"`
	MediaURL       string        `env:"MEDIA_URL" default:"/media/"`
	MinioEndpoint  string        `env:"MINIO_ENDPOINT"`
	MinioAccessKey string        `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string        `env:"MINIO_SECRET_KEY"`
	MinioBucket    string        `env:"MINIO_BUCKET" default:"bookex-pictures"`
	MinioUseSSL    bool          `env:"MINIO_USE_SSL" default:"false"`
	PictureURLTTL  time.Duration `env:"PICTURE_URL_TTL" default:"1h"`
	UploadMaxSize  int64         `env:"UPLOAD_MAX_SIZE" default:"5242880"`

	// Rate limiting
	RedisURL          string        `env:"REDIS_URL"`
	RateLimitEnabled  bool          `env:"RATE_LIMIT_ENABLED" default:"true"`
	RateLimitRequests int           `env:"RATE_LIMIT_REQUESTS" default:"30"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW" default:"1m"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// .env is optional, system env vars still apply without it
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv reads the configuration without touching .env files.
func FromEnv() (*Config, error) {
	config := &Config{}

	if err := loadEnvString(&config.GoEnv, "GO_ENV", "development"); err != nil {
		return nil, err
	}

	// HTTP
	if err := loadEnvString(&config.HTTPHost, "HTTP_HOST", "127.0.0.1"); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.HTTPPort, "HTTP_PORT", 8080); err != nil {
		return nil, err
	}

	// Database
	if err := loadEnvString(&config.DatabaseDriver, "DATABASE_DRIVER", "sqlite"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.DatabaseURL, "DATABASE_URL", "./data/bookex.db"); err != nil {
		return nil, err
	}

	// Authentication
	if err := loadEnvStringRequired(&config.JWTSecret, "JWT_SECRET"); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.SessionTTL, "SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.SessionCookie, "SESSION_COOKIE", "bookex_session"); err != nil {
		return nil, err
	}

	// Picture storage
	if err := loadEnvString(&config.StorageBackend, "STORAGE_BACKEND", "local"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.MediaRoot, "MEDIA_ROOT", "./data/uploads"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.MediaURL, "MEDIA_URL", "/media/"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.MinioEndpoint, "MINIO_ENDPOINT", ""); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.MinioAccessKey, "MINIO_ACCESS_KEY", ""); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.MinioSecretKey, "MINIO_SECRET_KEY", ""); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.MinioBucket, "MINIO_BUCKET", "bookex-pictures"); err != nil {
		return nil, err
	}
	if err := loadEnvBool(&config.MinioUseSSL, "MINIO_USE_SSL", false); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.PictureURLTTL, "PICTURE_URL_TTL", time.Hour); err != nil {
		return nil, err
	}
	if err := loadEnvInt64(&config.UploadMaxSize, "UPLOAD_MAX_SIZE", 5<<20); err != nil {
		return nil, err
	}

	// Rate limiting
	if err := loadEnvString(&config.RedisURL, "REDIS_URL", ""); err != nil {
		return nil, err
	}
	if err := loadEnvBool(&config.RateLimitEnabled, "RATE_LIMIT_ENABLED", true); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.RateLimitRequests, "RATE_LIMIT_REQUESTS", 30); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.RateLimitWindow, "RATE_LIMIT_WINDOW", time.Minute); err != nil {
		return nil, err
	}

	// Logging
	if err := loadEnvString(&config.LogLevel, "LOG_LEVEL", "info"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.LogFormat, "LOG_FORMAT", "text"); err != nil {
		return nil, err
	}
	return config, nil
}

// Helper functions for type conversion and validation
func loadEnvString(target *string, key, defaultValue string) error {
	if value := os.Getenv(key); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvStringRequired(target *string, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return fmt.Errorf("required environment variable %s is not set", key)
	}
	*target = value
	return nil
}

func loadEnvInt(target *int, key string, defaultValue int) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvInt64(target *int64, key string, defaultValue int64) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvBool(target *bool, key string, defaultValue bool) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvDuration(target *time.Duration, key string, defaultValue time.Duration) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

// Validate performs validation on the loaded configuration
func (c *Config) Validate() error {
	var errors []string

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errors = append(errors, "HTTP_PORT must be between 1 and 65535")
	}

	validDrivers := []string{"postgres", "sqlite"}
	if !contains(validDrivers, c.DatabaseDriver) {
		errors = append(errors, fmt.Sprintf("DATABASE_DRIVER must be one of: %s", strings.Join(validDrivers, ", ")))
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		errors = append(errors, "DATABASE_URL must not be empty")
	}

	// HS256 needs a reasonably long secret
	if len(c.JWTSecret) < 32 {
		errors = append(errors, "JWT_SECRET should be at least 32 characters long")
	}
	if c.SessionTTL <= 0 {
		errors = append(errors, "SESSION_TTL must be positive")
	}

	switch c.StorageBackend {
	case "local":
		if strings.TrimSpace(c.MediaRoot) == "" {
			errors = append(errors, "MEDIA_ROOT is required for the local storage backend")
		}
	case "minio":
		if c.MinioEndpoint == "" || c.MinioAccessKey == "" || c.MinioSecretKey == "" {
			errors = append(errors, "MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio storage backend")
		}
	default:
		errors = append(errors, "STORAGE_BACKEND must be one of: local, minio")
	}
	if c.UploadMaxSize <= 0 {
		errors = append(errors, "UPLOAD_MAX_SIZE must be positive")
	}

	if c.RateLimitEnabled && (c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0) {
		errors = append(errors, "RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive when rate limiting is enabled")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}

	validLogFormats := []string{"text", "json"}
	if !contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: %s", strings.Join(validLogFormats, ", ")))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// HTTPAddr is the listen address for the api server.
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

// Helper function to check if slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
