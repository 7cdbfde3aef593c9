package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfig_OverlaysFile(t *testing.T) {
	path := writeFile(t, `
server:
  port: "9090"
upload:
  store: redis
demand:
  stream_interval: 500ms
simulation:
  run_delay: 0s
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, StoreRedis, cfg.Upload.Store)
	assert.Equal(t, 500*time.Millisecond, cfg.Demand.StreamInterval)
	assert.Equal(t, time.Duration(0), cfg.Simulation.RunDelay)
	// untouched keys keep defaults
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, "retailpilot:", cfg.Redis.KeyPrefix)
}

func TestLoadConfig_BadYAML(t *testing.T) {
	_, err := LoadConfig(writeFile(t, "server: [unterminated"))
	assert.Error(t, err)
}

func TestLoadConfig_ShippedFileIsValid(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "configs", "config.yaml"))
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 1500*time.Millisecond, cfg.Simulation.RunDelay)
	assert.Equal(t, 1800*time.Millisecond, cfg.Autopilot.StepDelay)
	assert.Empty(t, cfg.Server.TrustedProxies)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("APP_ENV", "production")
	t.Setenv("UPLOAD_STORE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/retail?sslmode=disable")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, StorePostgres, cfg.Upload.Store)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.Server.TrustedProxies)
}

func TestApplyEnv_BadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")
	assert.Error(t, Default().ApplyEnv())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Upload.Store = "s3"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Upload.Store = StorePostgres
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Demand.StreamInterval = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Simulation.RunDelay = -time.Second
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Autopilot.StepDelay = -time.Second
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Server.TrustedProxies = []string{"lb.internal"}
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Server.TrustedProxies = []string{"10.0.0.0/8", "::1"}
	assert.NoError(t, cfg.Validate())

	assert.NoError(t, Default().Validate())
}
