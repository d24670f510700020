package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/DiazoScreen/internal/config"
)

const validConfigYAML = `
server:
  port: 8088
  mode: "release"
database:
  host: "db.internal"
  port: 5432
  user: "diazo"
  password: "secret"
  db_name: "diazoscreen"
redis:
  addr: "cache.internal:6379"
classifier:
  fingerprint_type: "morgan"
  similarity_metric: "tanimoto"
  cutoff: 0.25
log:
  level: "debug"
  format: "text"
`

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	path := writeTempConfig(t, validConfigYAML)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "diazo", cfg.Database.User)
	assert.Equal(t, "cache.internal:6379", cfg.Redis.Addr)
	assert.InDelta(t, 0.25, cfg.Classifier.Cutoff, 1e-12)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Unset fields receive defaults.
	assert.Equal(t, config.DefaultFingerprintBits, cfg.Classifier.FingerprintBits)
	assert.Equal(t, config.DefaultGainsGroups, cfg.Classifier.GainsGroups)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeTempConfig(t, `
classifier:
  cutoff: 1.5
`)
	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := config.LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, config.DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, config.DefaultFingerprintType, cfg.Classifier.FingerprintType)
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	assert.Panics(t, func() {
		config.MustLoad(filepath.Join(t.TempDir(), "absent.yaml"))
	})
}
