package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultRolloverWorkers      = 4
	DefaultRolloverInterval     = 24 * time.Hour
	DefaultRolloverOwnerTimeout = 2 * time.Minute
	DefaultMaxViewDates         = 14
	DefaultIngredientCacheTTL   = 10 * time.Minute
	DefaultPlannerTimeout       = 90 * time.Second
	DefaultRateLimitPerHour     = 120
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort  string
	ServerHost  string
	LogLevel    string
	CORSOrigins []string

	// Database configuration
	DatabaseDriver string
	SQLitePath     string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// Planner configuration
	PlannerProvider string
	PlannerAPIKey   string
	PlannerAPIURL   string
	PlannerModel    string
	PlannerTimeout  time.Duration
	GeminiAPIKey    string
	GeminiModel     string

	// Rollover configuration
	RolloverWorkers      int
	RolloverInterval     time.Duration
	RolloverOwnerTimeout time.Duration

	// RolloverInProcess runs the rollover daemon inside the API server
	RolloverInProcess bool

	// Read model configuration
	MaxViewDates       int
	IngredientCacheTTL time.Duration
	RateLimitPerHour   int

	// Event and report sinks
	KafkaBrokers []string
	KafkaTopic   string
	ReportBucket string
	AWSRegion    string
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{}

	switch env {
	case CI:
		if err := loadCIConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load CI configuration: %w", err)
		}
	case Development, Test:
		if err := loadDevConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load development configuration: %w", err)
		}
	case Production:
		if err := loadProdConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load production configuration: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	applyDefaults(cfg)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadCIConfig loads configuration for CI environment using ONLY GitHub Actions secrets
func loadCIConfig(cfg *Config) error {
	loadCommonEnv(cfg)

	cfg.DBPassword = os.Getenv("TEST_DB_PASSWORD")
	if cfg.DBPassword == "" && cfg.DatabaseDriver == "postgres" {
		return fmt.Errorf("TEST_DB_PASSWORD environment variable is required in CI environment")
	}
	cfg.JWTSecret = os.Getenv("TEST_JWT_SECRET")
	cfg.RedisPassword = os.Getenv("TEST_REDIS_PASSWORD")
	if url := os.Getenv("TEST_REDIS_URL"); url != "" {
		cfg.RedisURL = url
	}
	cfg.PlannerAPIKey = os.Getenv("TEST_PLANNER_API_KEY")
	cfg.GeminiAPIKey = os.Getenv("TEST_GEMINI_API_KEY")

	return nil
}

// loadDevConfig loads configuration for development and test runs. A local
// .env file is honoured when present; secrets fall back to SECRETS_DIR files.
func loadDevConfig(cfg *Config) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	loadCommonEnv(cfg)

	cfg.DBPassword = envOrSecret("DB_PASSWORD", "db_password")
	cfg.JWTSecret = envOrSecret("JWT_SECRET", "jwt_secret")
	cfg.RedisPassword = envOrSecret("REDIS_PASSWORD", "redis_password")
	cfg.PlannerAPIKey = envOrSecret("PLANNER_API_KEY", "planner_api_key")
	cfg.GeminiAPIKey = envOrSecret("GEMINI_API_KEY", "gemini_api_key")

	if cfg.DatabaseDriver == "" {
		cfg.DatabaseDriver = "sqlite"
	}

	return nil
}

// loadProdConfig loads configuration for production environment; sensitive
// values come ONLY from Docker secrets
func loadProdConfig(cfg *Config) error {
	loadCommonEnv(cfg)

	cfg.DBUser = readSecret("db_user")
	cfg.DBPassword = readSecret("db_password")
	cfg.JWTSecret = readSecret("jwt_secret")
	cfg.RedisPassword = readSecret("redis_password")
	if url := readSecret("redis_url"); url != "" {
		cfg.RedisURL = url
	}
	cfg.PlannerAPIKey = readSecret("planner_api_key")
	cfg.GeminiAPIKey = readSecret("gemini_api_key")

	return nil
}

// loadCommonEnv reads the non-sensitive settings shared by every environment
func loadCommonEnv(cfg *Config) {
	cfg.ServerPort = os.Getenv("SERVER_PORT")
	cfg.ServerHost = os.Getenv("SERVER_HOST")
	cfg.LogLevel = os.Getenv("LOG_LEVEL")
	cfg.CORSOrigins = splitList(os.Getenv("CORS_ORIGINS"))

	cfg.DatabaseDriver = strings.ToLower(os.Getenv("DB_DRIVER"))
	cfg.SQLitePath = os.Getenv("SQLITE_PATH")
	cfg.DBHost = os.Getenv("DB_HOST")
	cfg.DBPort = os.Getenv("DB_PORT")
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBName = os.Getenv("DB_NAME")
	cfg.DBSSLMode = os.Getenv("DB_SSL_MODE")

	cfg.RedisHost = os.Getenv("REDIS_HOST")
	cfg.RedisPort = os.Getenv("REDIS_PORT")
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.RedisDB = 0 // This is a constant, not a secret

	cfg.PlannerProvider = strings.ToLower(os.Getenv("PLANNER_PROVIDER"))
	cfg.PlannerAPIURL = os.Getenv("PLANNER_API_URL")
	cfg.PlannerModel = os.Getenv("PLANNER_MODEL")
	cfg.PlannerTimeout = getEnvDuration("PLANNER_TIMEOUT", 0)
	cfg.GeminiModel = os.Getenv("GEMINI_MODEL")

	cfg.RolloverWorkers = getEnvInt("ROLLOVER_WORKERS", 0)
	cfg.RolloverInterval = getEnvDuration("ROLLOVER_INTERVAL", 0)
	cfg.RolloverOwnerTimeout = getEnvDuration("ROLLOVER_OWNER_TIMEOUT", 0)
	cfg.RolloverInProcess = os.Getenv("ROLLOVER_IN_PROCESS") == "true"

	cfg.MaxViewDates = getEnvInt("MAX_VIEW_DATES", 0)
	cfg.IngredientCacheTTL = getEnvDuration("INGREDIENT_CACHE_TTL", 0)
	cfg.RateLimitPerHour = getEnvInt("RATE_LIMIT_PER_HOUR", 0)

	cfg.KafkaBrokers = splitList(os.Getenv("KAFKA_BROKERS"))
	cfg.KafkaTopic = os.Getenv("KAFKA_TOPIC")
	cfg.ReportBucket = os.Getenv("ROLLOVER_REPORT_BUCKET")
	cfg.AWSRegion = os.Getenv("AWS_REGION")
}

// applyDefaults fills every optional setting that was left unset
func applyDefaults(cfg *Config) {
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.DatabaseDriver == "" {
		cfg.DatabaseDriver = "postgres"
	}
	if cfg.DatabaseDriver == "sqlite" && cfg.SQLitePath == "" {
		cfg.SQLitePath = "mealplans.db"
	}
	if cfg.DBPort == "" {
		cfg.DBPort = "5432"
	}
	if cfg.DBSSLMode == "" {
		cfg.DBSSLMode = "disable"
	}
	if cfg.PlannerProvider == "" {
		cfg.PlannerProvider = "openai"
	}
	if cfg.PlannerAPIURL == "" {
		cfg.PlannerAPIURL = "https://api.openai.com/v1/chat/completions"
	}
	if cfg.PlannerModel == "" {
		cfg.PlannerModel = "gpt-4o-mini"
	}
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = "gemini-1.5-flash"
	}
	if cfg.PlannerTimeout <= 0 {
		cfg.PlannerTimeout = DefaultPlannerTimeout
	}
	if cfg.RolloverWorkers <= 0 {
		cfg.RolloverWorkers = DefaultRolloverWorkers
	}
	if cfg.RolloverInterval <= 0 {
		cfg.RolloverInterval = DefaultRolloverInterval
	}
	if cfg.RolloverOwnerTimeout <= 0 {
		cfg.RolloverOwnerTimeout = DefaultRolloverOwnerTimeout
	}
	if cfg.MaxViewDates <= 0 {
		cfg.MaxViewDates = DefaultMaxViewDates
	}
	if cfg.IngredientCacheTTL <= 0 {
		cfg.IngredientCacheTTL = DefaultIngredientCacheTTL
	}
	if cfg.RateLimitPerHour <= 0 {
		cfg.RateLimitPerHour = DefaultRateLimitPerHour
	}
	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = "meal-plans"
	}
}

// DSN returns the postgres connection string for the configured database
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// RedisEnabled reports whether enough Redis settings are present to connect
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func envOrSecret(envVar, secret string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return readSecret(secret)
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
