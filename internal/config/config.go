// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables and an optional config.yaml. It provides a centralized Config
// struct used across the application.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration values. The mapstructure keys
// double as environment variable names (upper-cased) and config.yaml keys.
type Config struct {
	// Server settings
	Host string `mapstructure:"app_host"`
	Port string `mapstructure:"app_port"`
	Env  string `mapstructure:"app_env"` // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string `mapstructure:"postgres_host"`
	DBPort     string `mapstructure:"postgres_port"`
	DBUser     string `mapstructure:"postgres_user"`
	DBPassword string `mapstructure:"postgres_password"`
	DBName     string `mapstructure:"postgres_db"`

	// Valkey (Redis-compatible cache)
	ValkeyHost     string        `mapstructure:"valkey_host"`
	ValkeyPort     string        `mapstructure:"valkey_port"`
	ValkeyPassword string        `mapstructure:"valkey_password"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`

	// S3-compatible object storage. Storage is disabled when S3Endpoint is empty.
	S3Endpoint      string        `mapstructure:"s3_endpoint"`
	S3Region        string        `mapstructure:"s3_region"`
	S3AccessKey     string        `mapstructure:"s3_access_key"`
	S3SecretKey     string        `mapstructure:"s3_secret_key"`
	S3BucketPublic  string        `mapstructure:"s3_bucket_public"`
	S3BucketPrivate string        `mapstructure:"s3_bucket_private"`
	S3PublicURL     string        `mapstructure:"s3_public_url"`
	DownloadURLTTL  time.Duration `mapstructure:"s3_download_ttl"`

	// Admin API bearer token
	AdminToken string `mapstructure:"admin_token"`

	// Public API rate limiting, per client IP
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`
	// Reverse proxies in front of the server that append to X-Forwarded-For.
	// Zero means the header is ignored.
	TrustedProxies int `mapstructure:"rate_limit_trusted_proxies"`
}

// defaults lists every key Load knows about. Keys must be registered for
// viper to pick them up from the environment during Unmarshal.
var defaults = map[string]any{
	"app_host": "0.0.0.0",
	"app_port": "8080",
	"app_env":  "development",

	"postgres_host":     "localhost",
	"postgres_port":     "5432",
	"postgres_user":     "moonui",
	"postgres_password": "changeme",
	"postgres_db":       "moonui",

	"valkey_host":     "localhost",
	"valkey_port":     "6379",
	"valkey_password": "",
	"cache_ttl":       5 * time.Minute,

	"s3_endpoint":       "",
	"s3_region":         "fsn1",
	"s3_access_key":     "",
	"s3_secret_key":     "",
	"s3_bucket_public":  "moonui-public",
	"s3_bucket_private": "moonui-private",
	"s3_public_url":     "",
	"s3_download_ttl":   15 * time.Minute,

	"admin_token": "",

	"rate_limit_requests": 120,
	"rate_limit_window":   time.Minute,

	"rate_limit_trusted_proxies": 0,
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. If file is non-empty it must exist;
// otherwise a config.yaml in the working directory is read when present.
// Environment variables win over the file. Returns an error if critical
// values are missing in production mode.
func Load(file string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.AdminToken == "" {
			return nil, fmt.Errorf("ADMIN_TOKEN must be set in production")
		}
	}
	if cfg.RateLimitRequests < 1 || cfg.RateLimitWindow <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}
	if cfg.TrustedProxies < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_TRUSTED_PROXIES must not be negative")
	}

	return &cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// ValkeyAddr returns the Valkey address (host:port).
func (c *Config) ValkeyAddr() string {
	return fmt.Sprintf("%s:%s", c.ValkeyHost, c.ValkeyPort)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// StorageEnabled reports whether S3 settings are present.
func (c *Config) StorageEnabled() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}
