// Package config loads runtime configuration from defaults, an optional
// config file and environment variables (highest precedence).
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the job board.
// The mapstructure tags double as environment variable names (upper-cased).
type Config struct {
	Port     string `mapstructure:"port"`
	GRPCPort string `mapstructure:"grpc_port"`

	DatabaseURL string `mapstructure:"database_url"`
	RedisURL    string `mapstructure:"redis_url"`

	AdzunaAppID   string        `mapstructure:"adzuna_app_id"`
	AdzunaAppKey  string        `mapstructure:"adzuna_app_key"`
	AdzunaCountry string        `mapstructure:"adzuna_country"` // e.g. "in", "gb", "us"
	AdzunaBaseURL string        `mapstructure:"adzuna_base_url"`
	AdzunaTimeout time.Duration `mapstructure:"adzuna_timeout"`

	RemoteOKBaseURL string        `mapstructure:"remoteok_base_url"`
	RemoteOKTimeout time.Duration `mapstructure:"remoteok_timeout"`

	UserAgent       string        `mapstructure:"user_agent"`
	LiveResultCap   int           `mapstructure:"live_result_cap"`
	LiveRemoteLimit int           `mapstructure:"live_remote_limit"`
	ProbeInterval   time.Duration `mapstructure:"probe_interval"`

	JWTSecret          string `mapstructure:"jwt_secret"`
	JWTExpirationHours int    `mapstructure:"jwt_expiration_hours"`

	TracingEnabled bool `mapstructure:"tracing_enabled"`
}

var defaults = map[string]any{
	"port":                 "8080",
	"grpc_port":            "9090",
	"database_url":         "",
	"redis_url":            "",
	"adzuna_app_id":        "",
	"adzuna_app_key":       "",
	"adzuna_country":       "in",
	"adzuna_base_url":      "https://api.adzuna.com/v1/api/jobs",
	"adzuna_timeout":       "15s",
	"remoteok_base_url":    "https://remoteok.io/api",
	"remoteok_timeout":     "10s",
	"user_agent":           "KaamKhoj/1.0",
	"live_result_cap":      40,
	"live_remote_limit":    100,
	"probe_interval":       "6h",
	"jwt_secret":           "",
	"jwt_expiration_hours": 24,
	"tracing_enabled":      false,
}

// Load reads configuration. Every key needs a default so AutomaticEnv
// picks up the matching variable during Unmarshal.
func Load() (*Config, error) {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.LiveResultCap < 1 {
		return fmt.Errorf("LIVE_RESULT_CAP must be a positive integer, got %d", c.LiveResultCap)
	}
	if c.LiveRemoteLimit < 1 {
		return fmt.Errorf("LIVE_REMOTE_LIMIT must be a positive integer, got %d", c.LiveRemoteLimit)
	}
	if c.ProbeInterval < time.Minute {
		return fmt.Errorf("PROBE_INTERVAL must be at least 1m, got %s", c.ProbeInterval)
	}
	if c.JWTExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be a positive integer, got %d", c.JWTExpirationHours)
	}
	return nil
}

// ValidateServe checks the settings only the HTTP server needs.
func (c *Config) ValidateServe() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	return nil
}

// JWTExpiration returns the token lifetime.
func (c *Config) JWTExpiration() time.Duration {
	return time.Duration(c.JWTExpirationHours) * time.Hour
}
