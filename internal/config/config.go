package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// DefaultSecretKey is only meant for local desktop use.
const DefaultSecretKey = "kunci-rahasia-lokal-yang-super-aman"

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Server
	Host string `mapstructure:"HOST"`
	Port int    `mapstructure:"PORT"`
	Env  string `mapstructure:"APP_ENV"` // development | production

	// Database. SQLitePath is used when DatabaseURL is empty.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	SQLitePath  string `mapstructure:"SQLITE_PATH"`

	// Redis is optional; empty disables token revocation.
	RedisURL string `mapstructure:"REDIS_URL"`

	// Auth
	SecretKey          string `mapstructure:"SECRET_KEY"`
	JWTExpirationHours int    `mapstructure:"JWT_EXPIRATION_HOURS"`

	// Business
	LowStockThreshold  int   `mapstructure:"LOW_STOCK_THRESHOLD"`
	PageSize           int   `mapstructure:"PAGE_SIZE"`
	ImportMaxMB        int64 `mapstructure:"IMPORT_MAX_MB"`
	RateLimitPerMinute int   `mapstructure:"RATE_LIMIT_PER_MINUTE"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("HOST", "127.0.0.1")
	v.SetDefault("PORT", 5000)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SQLITE_PATH", "gudang.db")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("SECRET_KEY", DefaultSecretKey)
	v.SetDefault("JWT_EXPIRATION_HOURS", 8)
	v.SetDefault("LOW_STOCK_THRESHOLD", 50)
	v.SetDefault("PAGE_SIZE", 10)
	v.SetDefault("IMPORT_MAX_MB", 10)
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 600)

	// Optional .env file for local development, ignored when missing.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !strings.Contains(err.Error(), "no such file") {
			return nil, fmt.Errorf("read .env: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.DatabaseURL = normalizeDatabaseURL(cfg.DatabaseURL)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY must not be empty")
	}
	if c.IsProduction() && c.SecretKey == DefaultSecretKey {
		return errors.New("SECRET_KEY must be set in production")
	}
	if c.JWTExpirationHours <= 0 {
		return errors.New("JWT_EXPIRATION_HOURS must be positive")
	}
	if c.PageSize <= 0 {
		return errors.New("PAGE_SIZE must be positive")
	}
	if c.LowStockThreshold < 0 {
		return errors.New("LOW_STOCK_THRESHOLD must not be negative")
	}
	if c.ImportMaxMB <= 0 {
		return errors.New("IMPORT_MAX_MB must be positive")
	}
	if c.RateLimitPerMinute <= 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// normalizeDatabaseURL maps Heroku-style postgres:// URLs to postgresql://.
func normalizeDatabaseURL(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	if strings.HasPrefix(dsn, "postgres://") {
		return "postgresql://" + strings.TrimPrefix(dsn, "postgres://")
	}
	return dsn
}
