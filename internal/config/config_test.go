package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/DiazoScreen/internal/config"
)

// validConfig returns a Config that passes Validate() with all required fields set.
func validConfig() *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_MissingDatabaseHost(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Database.Host = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.host")
}

func TestConfig_Validate_InvalidServerPort(t *testing.T) {
	t.Parallel()
	for _, p := range []int{0, -1, 65536, 100000} {
		cfg := validConfig()
		cfg.Server.Port = p
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server.port")
	}
}

func TestConfig_Validate_InvalidServerMode(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Server.Mode = "production"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.mode")
}

func TestConfig_Validate_InvalidFingerprintType(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Classifier.FingerprintType = "atom_pair"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fingerprint_type")
}

func TestConfig_Validate_InvalidSimilarityMetric(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Classifier.SimilarityMetric = "euclidean-ish"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "similarity_metric")
}

func TestConfig_Validate_CutoffOutOfRange(t *testing.T) {
	t.Parallel()
	for _, c := range []float64{-0.01, 1.01, 2} {
		cfg := validConfig()
		cfg.Classifier.Cutoff = c
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cutoff")
	}
}

func TestConfig_Validate_CutoffBoundariesAllowed(t *testing.T) {
	t.Parallel()
	for _, c := range []float64{0, 0.5, 1} {
		cfg := validConfig()
		cfg.Classifier.Cutoff = c
		assert.NoError(t, cfg.Validate())
	}
}

func TestConfig_Validate_InvalidGainsGroups(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Classifier.GainsGroups = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gains_groups")
}

func TestConfig_Validate_InvalidLogLevel(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Log.Level = "verbose"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
}
