// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

// Room inventory backends.
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// DatabaseConfig describes the Postgres room repository.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN renders a lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig describes the Redis instance holding batches, results and the
// inventory cache.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, r.Port)
}

// Config is the full service configuration.
type Config struct {
	Port string

	Rooms struct {
		Source   string // "file" or "postgres"
		File     string
		CacheTTL time.Duration // zero disables the Redis snapshot cache
	}

	Database DatabaseConfig
	Redis    RedisConfig

	Batch struct {
		Concurrency int
		RateLimit   float64 // requests per second
		RateBurst   int
		ResultTTL   time.Duration
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load reads the configuration from environment variables, falling back to
// defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	cfg.Port = getEnv("PORT", "4000")

	cfg.Rooms.Source = getEnv("ROOM_SOURCE", SourceFile)
	cfg.Rooms.File = getEnv("ROOMS_FILE", "rooms.json")
	// The snapshot cache is on by default only when Redis is configured.
	var cacheTTL time.Duration
	if os.Getenv("REDIS_HOST") != "" {
		cacheTTL = time.Minute
	}
	if cfg.Rooms.CacheTTL, err = getDuration("INVENTORY_CACHE_TTL", cacheTTL); err != nil {
		return nil, err
	}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	if cfg.Database.Port, err = getInt("DB_PORT", 5432); err != nil {
		return nil, err
	}
	cfg.Database.User = getEnv("DB_USERNAME", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Name = getEnv("DB_NAME", "scheduling_chatbot")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Redis.Host = getEnv("REDIS_HOST", "localhost")
	cfg.Redis.Port = getEnv("REDIS_PORT", "6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	if cfg.Redis.DB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	if cfg.Batch.Concurrency, err = getInt("MATCH_CONCURRENCY", 10); err != nil {
		return nil, err
	}
	if cfg.Batch.RateLimit, err = getFloat("MATCH_RATE_LIMIT", 10); err != nil {
		return nil, err
	}
	if cfg.Batch.RateBurst, err = getInt("MATCH_RATE_BURST", 15); err != nil {
		return nil, err
	}
	if cfg.Batch.ResultTTL, err = getDuration("RESULT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Rooms.Source {
	case SourceFile:
		if c.Rooms.File == "" {
			return fmt.Errorf("ROOMS_FILE is required when ROOM_SOURCE=%s", SourceFile)
		}
	case SourcePostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			return fmt.Errorf("DB_HOST and DB_NAME are required when ROOM_SOURCE=%s", SourcePostgres)
		}
	default:
		return fmt.Errorf("unknown ROOM_SOURCE %q", c.Rooms.Source)
	}
	if c.Rooms.CacheTTL < 0 {
		return fmt.Errorf("INVENTORY_CACHE_TTL must not be negative")
	}
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("MATCH_CONCURRENCY must be at least 1")
	}
	if c.Batch.RateLimit <= 0 || c.Batch.RateBurst < 1 {
		return fmt.Errorf("MATCH_RATE_LIMIT and MATCH_RATE_BURST must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}
