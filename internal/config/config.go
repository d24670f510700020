// Package config defines all configuration structures for the DiazoScreen
// platform.  No I/O or parsing logic lives here — only plain data types and
// validation.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/DiazoScreen/pkg/types/compound"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters for the run store.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// RedisConfig holds Redis connection parameters for the fingerprint cache.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// ClassifierConfig holds nearest-neighbor classification parameters.
type ClassifierConfig struct {
	// FingerprintType selects the fingerprint algorithm: morgan | maccs | topological.
	FingerprintType string `mapstructure:"fingerprint_type"`

	// FingerprintBits is the bit-vector width for hashed fingerprints.
	FingerprintBits int `mapstructure:"fingerprint_bits"`

	// MorganRadius is the circular-environment radius for Morgan fingerprints.
	MorganRadius int `mapstructure:"morgan_radius"`

	// SimilarityMetric selects the pairwise score: tanimoto | dice | cosine.
	SimilarityMetric string `mapstructure:"similarity_metric"`

	// Cutoff is the minimum similarity a reference compound must reach to be
	// considered a neighbor, in [0, 1].
	Cutoff float64 `mapstructure:"cutoff"`

	// Workers bounds the number of goroutines used for fingerprint builds and
	// per-compound classification.  0 means runtime.NumCPU().
	Workers int `mapstructure:"workers"`

	// GainsGroups is the number of probability-ranked groups in gains tables.
	GainsGroups int `mapstructure:"gains_groups"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string `mapstructure:"format"` // "json" | "text"
	Output           string `mapstructure:"output"`
	EnableCaller     bool   `mapstructure:"enable_caller"`
	EnableStacktrace bool   `mapstructure:"enable_stacktrace"`
	SamplingRate     int    `mapstructure:"sampling_rate"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the entire platform.
// Every infrastructure component and application service reads its settings
// from the relevant sub-struct.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Log        LogConfig        `mapstructure:"log"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Database
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("config: database.max_conns must be ≥ 1, got %d", c.Database.MaxConns)
	}

	// Redis
	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
	}

	// Classifier
	if _, err := compound.ParseFingerprintType(c.Classifier.FingerprintType); err != nil {
		return fmt.Errorf("config: classifier.fingerprint_type %q is invalid; expected morgan|maccs|topological", c.Classifier.FingerprintType)
	}
	if c.Classifier.FingerprintBits < 64 {
		return fmt.Errorf("config: classifier.fingerprint_bits must be ≥ 64, got %d", c.Classifier.FingerprintBits)
	}
	if c.Classifier.MorganRadius < 1 {
		return fmt.Errorf("config: classifier.morgan_radius must be ≥ 1, got %d", c.Classifier.MorganRadius)
	}
	switch c.Classifier.SimilarityMetric {
	case "tanimoto", "dice", "cosine":
	default:
		return fmt.Errorf("config: classifier.similarity_metric %q is invalid; expected tanimoto|dice|cosine", c.Classifier.SimilarityMetric)
	}
	if c.Classifier.Cutoff < 0 || c.Classifier.Cutoff > 1 {
		return fmt.Errorf("config: classifier.cutoff %.4f is out of range [0, 1]", c.Classifier.Cutoff)
	}
	if c.Classifier.Workers < 0 {
		return fmt.Errorf("config: classifier.workers must be ≥ 0, got %d", c.Classifier.Workers)
	}
	if c.Classifier.GainsGroups < 1 {
		return fmt.Errorf("config: classifier.gains_groups must be ≥ 1, got %d", c.Classifier.GainsGroups)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|text", c.Log.Format)
	}

	return nil
}
