package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port    string
	LogMode string

	DBDriver   string // postgres | sqlite
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	SQLitePath string

	LockProvider string // postgres | redis | local
	RedisURL     string
	LockTTL      time.Duration

	IntegrityCron       string // empty disables the scheduled audit
	IntegrityAutoRepair bool

	DevEndpoints bool
	BulkTimeout  time.Duration

	// Warnings collected while loading; logged once the logger exists.
	Warnings []string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	var warnings []string

	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		warnings = append(warnings, ".env file not found, using system environment variables")
	}

	cfg := &Config{
		Port:    getEnv("PORT", "3000"),
		LogMode: getEnv("LOG_MODE", "development"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "ridermind"),
		DBPort:     getEnv("DB_PORT", "5432"),
		SQLitePath: getEnv("SQLITE_PATH", "ridermind.db"),

		LockProvider: strings.ToLower(getEnv("LOCK_PROVIDER", "")),
		RedisURL:     getEnv("REDIS_URL", ""),
		LockTTL:      time.Duration(getEnvInt("LOCK_TTL_SECONDS", 30, &warnings)) * time.Second,

		IntegrityCron:       getEnv("INTEGRITY_CRON", "@every 1h"),
		IntegrityAutoRepair: getEnvBool("INTEGRITY_AUTO_REPAIR", false, &warnings),

		DevEndpoints: getEnvBool("DEV_ENDPOINTS", true, &warnings),
		BulkTimeout:  time.Duration(getEnvInt("BULK_TIMEOUT_SECONDS", 120, &warnings)) * time.Second,
	}

	// The lock provider follows the driver unless set explicitly
	if cfg.LockProvider == "" {
		if cfg.DBDriver == "postgres" {
			cfg.LockProvider = "postgres"
		} else {
			cfg.LockProvider = "local"
		}
	}

	warnings = append(warnings, cfg.validate()...)
	cfg.Warnings = warnings

	AppConfig = cfg
}

// validate reports problems that still allow the process to start
func (c *Config) validate() []string {
	var warnings []string
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		warnings = append(warnings, fmt.Sprintf("unknown DB_DRIVER %q, falling back to postgres", c.DBDriver))
		c.DBDriver = "postgres"
	}
	switch c.LockProvider {
	case "postgres", "redis", "local":
	default:
		warnings = append(warnings, fmt.Sprintf("unknown LOCK_PROVIDER %q, falling back to local", c.LockProvider))
		c.LockProvider = "local"
	}
	if c.LockProvider == "postgres" && c.DBDriver != "postgres" {
		warnings = append(warnings, "LOCK_PROVIDER=postgres requires DB_DRIVER=postgres, using local locks")
		c.LockProvider = "local"
	}
	if c.LockProvider == "redis" && c.RedisURL == "" {
		warnings = append(warnings, "LOCK_PROVIDER=redis without REDIS_URL, using local locks")
		c.LockProvider = "local"
	}
	if c.DBDriver == "postgres" && c.DBPassword == "" {
		warnings = append(warnings, "DB_PASSWORD is empty. Update it in your environment.")
	}
	return warnings
}

// PostgresDSN builds the PostgreSQL connection string
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int, warnings *[]string) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("error converting environment variable %s to int: %v", key, err))
		return defaultValue
	}
	return intValue
}

// getEnvBool retrieves an environment variable as a boolean or returns the default value
func getEnvBool(key string, defaultValue bool, warnings *[]string) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("error converting environment variable %s to bool: %v", key, err))
		return defaultValue
	}
	return boolValue
}
