package config

import (
	"log"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// Storage for the user registry and consumed reset tokens: memory, redis or sql.
	StoreDriver   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	// Tokens
	SessionSecret string
	ResetSecret   string
	SessionTTL    time.Duration
	RememberTTL   time.Duration
	ResetTTL      time.Duration

	// Auth policy
	PasswordIterations int
	MaxLoginAttempts   int
	AttemptWindow      time.Duration
	LockoutDuration    time.Duration
	TwoFactorTTL       time.Duration

	// Calendar days for streaks are taken in this zone.
	Timezone string

	// MetricsAPIKey guards /metrics. Empty disables the endpoint.
	MetricsAPIKey string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("APP_ENV", "development"),

		StoreDriver:   getEnv("STORE_DRIVER", "sql"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0),
		RedisPrefix:   getEnv("REDIS_PREFIX", "fittrack:"),

		SessionSecret: getEnv("SESSION_SECRET", "fallback-secret-key-for-dev-only"),
		ResetSecret:   getEnv("RESET_SECRET", "fallback-reset-key-for-dev-only"),
		SessionTTL:    getDuration("SESSION_TTL", 24*time.Hour),
		RememberTTL:   getDuration("REMEMBER_TTL", 30*24*time.Hour),
		ResetTTL:      getDuration("RESET_TTL", time.Hour),

		PasswordIterations: getInt("PBKDF2_ITERATIONS", 10000),
		MaxLoginAttempts:   getInt("MAX_LOGIN_ATTEMPTS", 5),
		AttemptWindow:      getDuration("LOGIN_ATTEMPT_WINDOW", 15*time.Minute),
		LockoutDuration:    getDuration("LOCKOUT_DURATION", 30*time.Minute),
		TwoFactorTTL:       getDuration("TWO_FACTOR_TTL", 10*time.Minute),

		Timezone: getEnv("TIMEZONE", "UTC"),

		MetricsAPIKey: getEnv("METRICS_API_KEY", ""),
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// Location resolves Timezone, falling back to UTC when it is unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Warning: invalid TIMEZONE value '%s', falling back to UTC\n", c.Timezone)
		return time.UTC
	}
	return loc
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, raw, defaultValue)
		return defaultValue
	}
	return n
}
