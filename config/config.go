package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"wardrobeapi/services"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// Config holds process configuration. Every value comes from the environment.
type Config struct {
	Env  string
	Port string

	// DBDriver selects the gorm dialector: "postgres" or "sqlite".
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUsername string
	DBPassword string
	DBName     string
	SQLitePath string

	JWTSecret string

	GoogleAPIKey string

	// Model names passed to the generative AI provider.
	ImageModel string
	TextModel  string

	// ProviderTimeout bounds every single outbound AI call.
	ProviderTimeout time.Duration

	// RetryAttempts is the total attempt count for transient provider failures.
	RetryAttempts  int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	WeatherAPIKey string

	R2AccountID       string
	R2AccessKeyID     string
	R2AccessKeySecret string
	R2BucketName      string

	AsyncBrokerAddress string
	SentryDSN          string
}

// DefaultConfig returns the configuration used when the environment is empty.
func DefaultConfig() *Config {
	return &Config{
		Env:                EnvDevelopment,
		Port:               "8083",
		DBDriver:           "postgres",
		SQLitePath:         "wardrobe.db",
		ImageModel:         "gemini-2.5-flash-image-preview",
		TextModel:          "gemini-2.5-flash",
		ProviderTimeout:    60 * time.Second,
		RetryAttempts:      3,
		RetryBaseDelay:     500 * time.Millisecond,
		RetryMaxDelay:      5 * time.Second,
		AsyncBrokerAddress: "127.0.0.1:6379",
	}
}

func Load() (*Config, error) {
	cfg := DefaultConfig()

	cfg.Env = services.GetEnv("ENV", cfg.Env)
	cfg.Port = services.GetEnv("PORT", cfg.Port)
	cfg.DBDriver = services.GetEnv("DB_DRIVER", cfg.DBDriver)
	cfg.DBHost = services.GetEnv("DB_HOST", "")
	cfg.DBPort = services.GetEnv("DB_PORT", "5432")
	cfg.DBUsername = services.GetEnv("DB_USERNAME", "")
	cfg.DBPassword = services.GetEnv("DB_PASSWORD", "")
	cfg.DBName = services.GetEnv("DB_NAME", "")
	cfg.SQLitePath = services.GetEnv("SQLITE_PATH", cfg.SQLitePath)
	cfg.JWTSecret = services.GetEnv("JWT_SECRET", "")
	cfg.GoogleAPIKey = services.GetEnv("GOOGLE_API_KEY", "")
	cfg.ImageModel = services.GetEnv("AI_IMAGE_MODEL", cfg.ImageModel)
	cfg.TextModel = services.GetEnv("AI_TEXT_MODEL", cfg.TextModel)
	cfg.WeatherAPIKey = services.GetEnv("WEATHER_API_KEY", "")
	cfg.R2AccountID = services.GetEnv("R2_ACCOUNT_ID", "")
	cfg.R2AccessKeyID = services.GetEnv("R2_ACCESS_KEY_ID", "")
	cfg.R2AccessKeySecret = services.GetEnv("R2_ACCESS_KEY_SECRET", "")
	cfg.R2BucketName = services.GetEnv("R2_BUCKET_NAME", "")
	cfg.AsyncBrokerAddress = services.GetEnv("ASYNC_BROKER_ADDRESS", cfg.AsyncBrokerAddress)
	cfg.SentryDSN = services.GetEnv("SENTRY_DSN", "")

	if raw := services.GetEnv("AI_PROVIDER_TIMEOUT", ""); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("AI_PROVIDER_TIMEOUT: %w", err)
		}
		cfg.ProviderTimeout = timeout
	}
	if raw := services.GetEnv("AI_RETRY_ATTEMPTS", ""); raw != "" {
		attempts, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("AI_RETRY_ATTEMPTS: %w", err)
		}
		cfg.RetryAttempts = attempts
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is not set")
	}
	if c.ProviderTimeout <= 0 {
		return errors.New("AI_PROVIDER_TIMEOUT must be positive")
	}
	if c.RetryAttempts < 1 {
		return errors.New("AI_RETRY_ATTEMPTS must be at least 1")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// StorageEnabled reports whether images go to object storage instead of inline data URIs.
func (c *Config) StorageEnabled() bool {
	return c.R2BucketName != "" && c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2AccessKeySecret != ""
}
