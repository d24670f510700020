// Package config provides configuration loading, defaults, and validation for
// the DiazoScreen platform.
package config

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort = 8080
	DefaultServerMode = "debug"

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "diazoscreen"
	DefaultDBMaxConns = 25

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisDB        = 0
	DefaultRedisKeyPrefix = "diazo"

	DefaultFingerprintType = "morgan"
	DefaultFingerprintBits = 2048
	DefaultMorganRadius    = 2

	DefaultSimilarityMetric = "tanimoto"
	DefaultCutoff           = 0.0
	DefaultGainsGroups      = 10

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills every zero-value field in cfg with the platform default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.  It must be called
// after unmarshalling raw config data and before Validate() so that
// optional-but-defaulted fields are never seen as missing.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	// DB is an int; 0 is a valid explicit value so we cannot distinguish "not
	// set" from "set to 0".  We leave it as-is (0 is also the default).

	// ── Classifier ────────────────────────────────────────────────────────────
	if cfg.Classifier.FingerprintType == "" {
		cfg.Classifier.FingerprintType = DefaultFingerprintType
	}
	if cfg.Classifier.FingerprintBits == 0 {
		cfg.Classifier.FingerprintBits = DefaultFingerprintBits
	}
	if cfg.Classifier.MorganRadius == 0 {
		cfg.Classifier.MorganRadius = DefaultMorganRadius
	}
	if cfg.Classifier.SimilarityMetric == "" {
		cfg.Classifier.SimilarityMetric = DefaultSimilarityMetric
	}
	if cfg.Classifier.GainsGroups == 0 {
		cfg.Classifier.GainsGroups = DefaultGainsGroups
	}
	// Cutoff 0 is a valid explicit value and also the default: every neighbor
	// qualifies unless the caller raises it.

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
