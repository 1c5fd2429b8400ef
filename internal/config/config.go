package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store providers
const (
	ProviderPostgres = "postgres"
	ProviderMemory   = "memory"
)

// Config holds the application configuration
type Config struct {
	// Application settings
	Port      int
	LogLevel  string
	LogFormat string

	Database            DatabaseConfig
	Store               StoreConfig
	NotificationService NotificationConfig
	AI                  AIConfig
	Maintenance         MaintenanceConfig
	Security            SecurityConfig
	Server              ServerConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	AutoMigrate     bool
}

// StoreConfig selects the data layer backing the repositories
type StoreConfig struct {
	Provider string
	Seed     bool
}

// NotificationConfig holds notification webhook configuration. An empty URL disables notifications.
type NotificationConfig struct {
	URL            string
	Timeout        time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
	MaxPayloadSize int64
}

// AIConfig holds settings for the maintenance suggestion feature
type AIConfig struct {
	Enabled        bool
	APIKey         string
	Model          string
	Timeout        time.Duration
	MaxHistory     int
	MaxSuggestions int
}

// MaintenanceConfig holds maintenance scheduling defaults
type MaintenanceConfig struct {
	DefaultIntervalDays int
	UpcomingWindow      time.Duration
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	RateLimitRPS    int
	RateLimitBurst  int
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	EnableCORS      bool
	AllowedOrigins  []string
	TrustedProxies  []string
}

// ServerConfig holds server performance configuration
type ServerConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
}

// LoadConfig loads a .env file when present, then reads and validates the configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{
		Port:      getEnvAsInt("PORT", 8080),
		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "json")),

		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", ""),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", ""),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			AutoMigrate:     getEnvAsBool("DB_AUTO_MIGRATE", true),
		},

		Store: StoreConfig{
			Provider: strings.ToLower(getEnv("STORE_PROVIDER", ProviderPostgres)),
			Seed:     getEnvAsBool("STORE_SEED", false),
		},

		NotificationService: NotificationConfig{
			URL:            getEnv("NOTIFIER_URL", ""),
			Timeout:        getEnvAsDuration("NOTIFIER_TIMEOUT", 10*time.Second),
			RetryAttempts:  getEnvAsInt("NOTIFIER_RETRY_ATTEMPTS", 3),
			RetryDelay:     getEnvAsDuration("NOTIFIER_RETRY_DELAY", time.Second),
			MaxPayloadSize: getEnvAsInt64("NOTIFIER_MAX_PAYLOAD_SIZE", 1024*1024),
		},

		AI: AIConfig{
			Enabled:        getEnvAsBool("AI_ENABLED", true),
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			Model:          getEnv("AI_MODEL", "gemini-2.5-flash"),
			Timeout:        getEnvAsDuration("AI_TIMEOUT", 30*time.Second),
			MaxHistory:     getEnvAsInt("AI_MAX_HISTORY", 20),
			MaxSuggestions: getEnvAsInt("AI_MAX_SUGGESTIONS", 8),
		},

		Maintenance: MaintenanceConfig{
			DefaultIntervalDays: getEnvAsInt("MAINTENANCE_DEFAULT_INTERVAL_DAYS", 180),
			UpcomingWindow:      getEnvAsDuration("MAINTENANCE_UPCOMING_WINDOW", 14*24*time.Hour),
		},

		Security: SecurityConfig{
			RateLimitRPS:    getEnvAsInt("RATE_LIMIT_RPS", 100),
			RateLimitBurst:  getEnvAsInt("RATE_LIMIT_BURST", 200),
			RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
			EnableCORS:      getEnvAsBool("ENABLE_CORS", true),
			AllowedOrigins:  getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
			TrustedProxies:  getEnvAsSlice("TRUSTED_PROXIES", []string{}),
		},

		Server: ServerConfig{
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 70*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			MaxHeaderBytes: getEnvAsInt("SERVER_MAX_HEADER_BYTES", 1<<20),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate performs basic validation on the configuration
func (c *Config) Validate() error {
	var problems []string

	switch c.Store.Provider {
	case ProviderPostgres:
		if c.Database.User == "" {
			problems = append(problems, "database user is required")
		}
		if c.Database.Password == "" {
			problems = append(problems, "database password is required")
		}
		if c.Database.Name == "" {
			problems = append(problems, "database name is required")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			problems = append(problems, "database port must be between 1 and 65535")
		}
	case ProviderMemory:
	default:
		problems = append(problems, fmt.Sprintf("unsupported store provider %q (use %s or %s)", c.Store.Provider, ProviderPostgres, ProviderMemory))
	}

	if c.Port < 1 || c.Port > 65535 {
		problems = append(problems, "port must be between 1 and 65535")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("invalid log level %q", c.LogLevel))
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		problems = append(problems, fmt.Sprintf("invalid log format %q", c.LogFormat))
	}

	if c.NotificationService.RetryAttempts < 0 || c.NotificationService.RetryAttempts > 10 {
		problems = append(problems, "notifier retry attempts must be between 0 and 10")
	}
	if c.AI.MaxSuggestions < 1 {
		problems = append(problems, "AI max suggestions must be at least 1")
	}
	if c.AI.MaxHistory < 1 {
		problems = append(problems, "AI max history must be at least 1")
	}
	if c.Maintenance.DefaultIntervalDays < 1 {
		problems = append(problems, "default maintenance interval must be at least 1 day")
	}
	if c.Security.RateLimitRPS < 1 || c.Security.RateLimitBurst < 1 {
		problems = append(problems, "rate limit RPS and burst must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(problems, "; "))
	}
	return nil
}

// AIAvailable reports whether suggestions can be generated.
func (c *Config) AIAvailable() bool {
	return c.AI.Enabled && c.AI.APIKey != ""
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User,
		c.Database.Password, c.Database.Name, c.Database.SSLMode)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}
