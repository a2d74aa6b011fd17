package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig
	Shop          ShopConfig
	Search        SearchConfig
	Session       SessionConfig
	RateLimit     RateLimitConfig
	Log           LogConfig
	Notifications NotificationConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ShopConfig holds the remote shop API configuration
type ShopConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"` // requests per second
	Burst     int           `mapstructure:"burst"`
}

// SearchConfig holds search behaviour configuration
type SearchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// SessionConfig holds session store configuration
type SessionConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds inbound rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per second
	Burst int `mapstructure:"burst"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// NotificationConfig mirrors the snackbar settings of the storefront UI
type NotificationConfig struct {
	MaxSnack         int  `mapstructure:"max_snack"`
	PreventDuplicate bool `mapstructure:"prevent_duplicate"`
}

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/storefront/")

	// Environment variable settings
	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads variables from ./.env without overriding ones already set
func loadEnvFile() error {
	err := godotenv.Load(".env")
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// AutomaticEnv only sees keys viper already knows about
	v.SetDefault("shop.base_url", "")
	v.SetDefault("session.redis_url", "")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("shop.timeout", "10s")
	v.SetDefault("shop.rate_limit", 20.0)
	v.SetDefault("shop.burst", 10)

	v.SetDefault("search.debounce", "500ms")

	v.SetDefault("session.type", "memory")
	v.SetDefault("session.ttl", "24h")

	v.SetDefault("ratelimit.per_ip", 20)
	v.SetDefault("ratelimit.burst", 40)

	v.SetDefault("log.level", "info")

	v.SetDefault("notifications.max_snack", 1)
	v.SetDefault("notifications.prevent_duplicate", true)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Shop.BaseURL == "" {
		return fmt.Errorf("shop base URL is required (set STOREFRONT_SHOP_BASE_URL)")
	}

	if config.Session.Type != "memory" && config.Session.Type != "redis" {
		return fmt.Errorf("session type must be 'memory' or 'redis', got: %s", config.Session.Type)
	}

	if config.Session.Type == "redis" && config.Session.RedisURL == "" {
		return fmt.Errorf("redis URL is required when session type is 'redis'")
	}

	if config.Search.Debounce <= 0 {
		return fmt.Errorf("search debounce must be positive, got: %s", config.Search.Debounce)
	}

	if config.Notifications.MaxSnack < 1 {
		return fmt.Errorf("notifications max_snack must be at least 1, got: %d", config.Notifications.MaxSnack)
	}

	return nil
}

// LookupToken returns the bearer token configured for CLI use, if any
func LookupToken() string {
	return os.Getenv("STOREFRONT_TOKEN")
}
