package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store backends
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
)

// MaxResponseDelaySeconds caps the artificial response delay
const MaxResponseDelaySeconds = 10

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Store      StoreConfig
	Model      ModelConfig
	Logging    LoggingConfig
	Metrics    MetricsConfig
	RateLimit  RateLimitConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, takes precedence over the fields below
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port                 int
	Host                 string
	GinMode              string
	AllowedOrigins       string
	ResponseDelaySeconds int
}

// StoreConfig selects where caregivers are kept
type StoreConfig struct {
	Backend              string
	CaregiverFile        string
	AssessmentLogEnabled bool
}

// ModelConfig holds learned survival model configuration
type ModelConfig struct {
	Path        string // empty disables the learned model
	LibraryPath string // onnxruntime shared library
	InputName   string
	OutputName  string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// MetricsConfig holds Prometheus configuration
type MetricsConfig struct {
	Enabled bool
}

// RateLimitConfig holds per-client rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64 // 0 disables rate limiting
	Burst             int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", ""))),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "muuguzi"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 2),
		},
		Server: ServerConfig{
			Port:                 getEnvAsInt("SERVER_PORT", 8080),
			Host:                 getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:              getEnv("GIN_MODE", "release"),
			AllowedOrigins:       getEnv("CORS_ALLOWED_ORIGINS", "*"),
			ResponseDelaySeconds: getEnvAsInt("RESPONSE_DELAY_SECONDS", 0),
		},
		Store: StoreConfig{
			Backend:              strings.ToLower(getEnv("CAREGIVER_STORE", StoreFile)),
			CaregiverFile:        getEnv("CAREGIVER_FILE", "./caregivers.json"),
			AssessmentLogEnabled: getEnvAsBool("ASSESSMENT_LOG_ENABLED", false),
		},
		Model: ModelConfig{
			Path:        getEnv("MODEL_PATH", "./survival_model.onnx"),
			LibraryPath: getEnv("ORT_LIBRARY_PATH", ""),
			InputName:   getEnv("MODEL_INPUT_NAME", "features"),
			OutputName:  getEnv("MODEL_OUTPUT_NAME", "score"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvAsBool("METRICS_ENABLED", true),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 0),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 20),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case StoreFile, StorePostgres:
	default:
		return fmt.Errorf("invalid CAREGIVER_STORE %q: must be %q or %q", c.Store.Backend, StoreFile, StorePostgres)
	}

	if c.Server.ResponseDelaySeconds < 0 {
		c.Server.ResponseDelaySeconds = 0
	}
	if c.Server.ResponseDelaySeconds > MaxResponseDelaySeconds {
		log.Printf("Warning: RESPONSE_DELAY_SECONDS capped at %d", MaxResponseDelaySeconds)
		c.Server.ResponseDelaySeconds = MaxResponseDelaySeconds
	}

	if c.Store.AssessmentLogEnabled && c.Store.Backend != StorePostgres {
		log.Printf("Warning: ASSESSMENT_LOG_ENABLED requires CAREGIVER_STORE=postgres, disabling")
		c.Store.AssessmentLogEnabled = false
	}
	return nil
}

// UsesPostgres reports whether a database connection is needed
func (c *Config) UsesPostgres() bool {
	return c.Store.Backend == StorePostgres
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return value
}
