package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadWithEnvFile("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, BackendMemory, cfg.Storage.TodoStore)
	assert.Equal(t, BackendMemory, cfg.Storage.CharacterStore)
	assert.Equal(t, "fatesheet:todos", cfg.Redis.TodoKey)
	assert.Equal(t, 20, cfg.HTTP.RateLimitBurst)
	assert.False(t, cfg.HTTP.RenderDebug)
	assert.False(t, cfg.UsesPostgres())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("TODO_STORE", "Redis")
	t.Setenv("CHARACTER_STORE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/fate?sslmode=disable")
	t.Setenv("RATE_LIMIT_RPS", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("RENDER_DEBUG", "true")

	cfg, err := LoadWithEnvFile("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, BackendRedis, cfg.Storage.TodoStore)
	assert.Equal(t, BackendPostgres, cfg.Storage.CharacterStore)
	assert.True(t, cfg.UsesPostgres())
	assert.Equal(t, 5, cfg.HTTP.RateLimitRPS)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins())
	assert.True(t, cfg.HTTP.RenderDebug)
}

func TestLoadRejectsPostgresWithoutDSN(t *testing.T) {
	t.Setenv("TODO_STORE", "postgres")
	_, err := LoadWithEnvFile("")
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("CHARACTER_STORE", "redis")
	_, err := LoadWithEnvFile("")
	assert.ErrorContains(t, err, "CHARACTER_STORE")
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LOG_FORMAT=json\nREDIS_DB=3\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("LOG_FORMAT")
		os.Unsetenv("REDIS_DB")
	})

	cfg, err := LoadWithEnvFile(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestLoadMissingEnvFileIsIgnored(t *testing.T) {
	_, err := LoadWithEnvFile(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}
