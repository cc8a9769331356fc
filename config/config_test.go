package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("ENV", "test")
	t.Setenv("SECRETS_DIR", t.TempDir())
	for _, key := range []string{
		"DB_DRIVER", "DB_HOST", "DB_USER", "DB_NAME", "DB_PASSWORD", "JWT_SECRET",
		"PLANNER_PROVIDER", "ROLLOVER_WORKERS", "MAX_VIEW_DATES", "KAFKA_BROKERS",
		"ROLLOVER_INTERVAL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("DB_NAME", "mealplans")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("ROLLOVER_WORKERS", "8")
	t.Setenv("ROLLOVER_INTERVAL", "6h")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "postgres", cfg.DBPassword)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 8, cfg.RolloverWorkers)
	assert.Equal(t, 6*time.Hour, cfg.RolloverInterval)
	assert.True(t, cfg.RedisEnabled())
	assert.Contains(t, cfg.DSN(), "dbname=mealplans")
}

func TestLoadConfigWithDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "mealplans.db", cfg.SQLitePath)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "openai", cfg.PlannerProvider)
	assert.Equal(t, DefaultRolloverWorkers, cfg.RolloverWorkers)
	assert.Equal(t, DefaultMaxViewDates, cfg.MaxViewDates)
	assert.Equal(t, DefaultRolloverOwnerTimeout, cfg.RolloverOwnerTimeout)
	assert.Equal(t, "meal-plans", cfg.KafkaTopic)
	assert.False(t, cfg.RedisEnabled())
}

func TestLoadConfigReadsSecretsDir(t *testing.T) {
	setBaseEnv(t)
	dir := t.TempDir()
	t.Setenv("SECRETS_DIR", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("from-file\n"), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWTSecret)
}

func TestValidateConfigCollectsProblems(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ENV", "development")

	cfg := &Config{DatabaseDriver: "mysql", PlannerProvider: "llama"}
	err := ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret: is required")
	assert.Contains(t, err.Error(), `unsupported driver "mysql"`)
	assert.Contains(t, err.Error(), `unsupported provider "llama"`)
	assert.Contains(t, err.Error(), "ROLLOVER_WORKERS")
}

func TestValidateConfigRejectsSQLiteInProduction(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ENV", "production")

	cfg := &Config{
		DatabaseDriver:  "sqlite",
		JWTSecret:       "s",
		PlannerProvider: "none",
		RolloverWorkers: 1,
		MaxViewDates:    1,
	}
	err := ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite is not allowed in production")
}
