package configs

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Gateway  GatewayConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	Janitor  JanitorConfig
	Log      LogConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// GatewayConfig points at the positions REST backend
type GatewayConfig struct {
	URL     string
	Timeout time.Duration
}

// DatabaseConfig holds database configuration. An empty URL disables the
// Postgres view-state store.
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds Redis configuration. An empty URL disables the Redis
// view-state store.
type RedisConfig struct {
	URL          string
	ViewStateTTL time.Duration
}

// SessionConfig holds the signing secret and lifetime of the session cookie
type SessionConfig struct {
	Secret string
	MaxAge time.Duration
}

// JanitorConfig schedules removal of idle view states
type JanitorConfig struct {
	Schedule string
	MaxIdle  time.Duration
}

// LogConfig holds zap settings
type LogConfig struct {
	Level             string
	Encoding          string
	Development       bool
	DisableCaller     bool
	DisableStacktrace bool
	Sampling          bool
}

// IsProduction reports whether GO_ENV is production
func (c ServerConfig) IsProduction() bool {
	return c.Env == "production"
}

// Load loads configuration from environment variables
func Load() *Config {
	env := getEnv("GO_ENV", "development")
	encoding := "console"
	if env == "production" {
		encoding = "json"
	}

	sessionMaxAge := getEnvDuration("SESSION_MAX_AGE", 24*time.Hour)

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  env,
		},
		Gateway: GatewayConfig{
			URL:     getEnv("POSITIONS_API_URL", "http://127.0.0.1:5000/api/options_positions"),
			Timeout: getEnvDuration("POSITIONS_API_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			URL:          getEnv("REDIS_URL", ""),
			ViewStateTTL: getEnvDuration("VIEW_STATE_TTL", sessionMaxAge),
		},
		Session: SessionConfig{
			Secret: getEnv("JWT_SECRET", "default-secret-change-in-production"),
			MaxAge: sessionMaxAge,
		},
		Janitor: JanitorConfig{
			Schedule: getEnv("JANITOR_SCHEDULE", "@every 15m"),
			MaxIdle:  sessionMaxAge,
		},
		Log: LogConfig{
			Level:             getEnv("LOG_LEVEL", "info"),
			Encoding:          getEnv("LOG_ENCODING", encoding),
			Development:       env != "production",
			DisableStacktrace: env == "production",
			Sampling:          getEnvInt("LOG_SAMPLING", 0) > 0,
		},
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90s", "2h") or plain seconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
