package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/yosefkovan/storefront/pkg/config"
	"github.com/yosefkovan/storefront/pkg/database"
)

// Config holds all configuration for the storefront.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"storefront"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"storefront_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"storefront"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Redis (session carts)
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Cart TTL in hours; the session cookie uses the same lifetime.
	CartTTLHours int `env:"CART_TTL_HOURS" envDefault:"24"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// JWT
	JWTSecret     string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	JWTExpiryMins int    `env:"JWT_EXPIRY_MINUTES" envDefault:"60"`

	// Product image storage
	ImageDir     string `env:"IMAGE_DIR" envDefault:"./data/images"`
	ImageBaseURL string `env:"IMAGE_BASE_URL" envDefault:"/images"`

	// Admin account seeded at startup
	AdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@storefront.local"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"Adm1nPassword"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}
	if cfg.PostgresHost == "" {
		return nil, fmt.Errorf("POSTGRES_HOST is required")
	}
	if cfg.PostgresUser == "" {
		return nil, fmt.Errorf("POSTGRES_USER is required")
	}
	if len(cfg.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.CartTTLHours < 1 {
		return nil, fmt.Errorf("CART_TTL_HOURS must be at least 1, got %d", cfg.CartTTLHours)
	}
	return cfg, nil
}

// Postgres returns the pool configuration for the main database.
func (c *Config) Postgres() database.PostgresConfig {
	return database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: time.Duration(c.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(c.DBMaxConnIdleTimeMins) * time.Minute,
	}
}

// Redis returns the connection configuration for the cart store.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPass,
		DB:       c.RedisDB,
	}
}

// CartTTL returns the cart lifetime as a duration.
func (c *Config) CartTTL() time.Duration {
	return time.Duration(c.CartTTLHours) * time.Hour
}

// JWTExpiry returns the access token lifetime as a duration.
func (c *Config) JWTExpiry() time.Duration {
	return time.Duration(c.JWTExpiryMins) * time.Minute
}
