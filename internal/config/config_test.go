package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_Defaults проверяет значения по умолчанию при отсутствии .env
func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "http://localhost:8080", cfg.App.BaseURL)
	assert.Equal(t, 10.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 20, cfg.RateLimit.BurstSize)
	assert.Equal(t, 3*time.Second, cfg.Geo.Timeout)
	assert.Equal(t, 3, cfg.Analytics.Workers)
	assert.Equal(t, 1000, cfg.Analytics.BufferSize)
	assert.Equal(t, 7, cfg.Analytics.WindowDays)
	assert.Equal(t, 5, cfg.Links.CreateAttempts)
	assert.Empty(t, cfg.Auth.APIKeys)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 50, cfg.Redis.PoolSize)
	assert.Empty(t, cfg.Redis.Password)
}

// TestLoad_FileAndEnv проверяет чтение .env и приоритет переменных окружения
func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "APP_PORT=9090\nAPP_BASE_URL=https://go.example.com/\nAPI_KEYS=k1:ingest, k2:backfill\nGEO_TIMEOUT=1s\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("APP_PORT", "7070")
	t.Setenv("ANALYTICS_WORKERS", "8")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("REDIS_PASSWORD", "s3cret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.App.Port)
	assert.Equal(t, "https://go.example.com", cfg.App.BaseURL)
	assert.Equal(t, time.Second, cfg.Geo.Timeout)
	assert.Equal(t, 8, cfg.Analytics.Workers)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "s3cret", cfg.Redis.Password)
	assert.Equal(t, map[string]string{"k1": "ingest", "k2": "backfill"}, cfg.Auth.APIKeys)
}

func TestParseAPIKeys(t *testing.T) {
	assert.Empty(t, parseAPIKeys(""))
	assert.Equal(t, map[string]string{"a": "b"}, parseAPIKeys("a:b,broken,:nokey"))
}
