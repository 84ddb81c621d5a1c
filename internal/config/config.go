// Package config reads the runtime configuration from the environment.
//
// A .env file in the working directory is loaded first when present;
// variables already set in the environment win over it.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

type Config struct {
	Port            int           // ex: 8080
	ShutdownTimeout time.Duration // ex: 30s

	Storage string // "sqlite" | "redis" | "memory"
	DBPath  string // sqlite file, ex: "data/workshop.db"

	RedisAddr           string        // ex: "localhost:6379"
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisPrefix         string        // key prefix, ex: "workshop:"
	RedisConnectTimeout time.Duration // total time to retry connecting

	TemplatesPath string // optional YAML prompt template library

	LogLevel  string // "debug" | "info" | "warn" | "error"
	LogFormat string // "text" | "json"
}

// Load reads .env (if any) and the WORKSHOP_* environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getenvInt("WORKSHOP_PORT", 8080),
		ShutdownTimeout: mustDuration("WORKSHOP_SHUTDOWN_TIMEOUT", 30*time.Second),

		Storage: strings.ToLower(getenv("WORKSHOP_STORAGE", StorageSQLite)),
		DBPath:  getenv("WORKSHOP_DB_PATH", "data/workshop.db"),

		RedisAddr:           getenv("WORKSHOP_REDIS_ADDR", "localhost:6379"),
		RedisPassword:       getenv("WORKSHOP_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("WORKSHOP_REDIS_DB", 0),
		RedisPrefix:         getenv("WORKSHOP_REDIS_PREFIX", "workshop:"),
		RedisConnectTimeout: mustDuration("WORKSHOP_REDIS_CONNECT_TIMEOUT", 30*time.Second),

		TemplatesPath: getenv("WORKSHOP_TEMPLATES", ""),

		LogLevel:  strings.ToLower(getenv("WORKSHOP_LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getenv("WORKSHOP_LOG_FORMAT", "text")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have no safe fallback.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageSQLite, StorageRedis, StorageMemory:
	default:
		return fmt.Errorf("config: WORKSHOP_STORAGE must be sqlite, redis or memory, got %q", c.Storage)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: WORKSHOP_PORT out of range: %d", c.Port)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("config: WORKSHOP_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// Logger builds the process logger writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.LogLevel)
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("config: unknown log level %q", s)
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
