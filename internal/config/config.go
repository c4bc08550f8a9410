// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers a YAML file and environment variables over the defaults.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// AllowedOrigin is echoed in Access-Control-Allow-Origin.
	AllowedOrigin string `koanf:"allowed_origin"`

	// ShardCount configures the number of shards in the session store.
	ShardCount int `koanf:"shard_count"`

	// SessionTTL removes sessions idle for longer than this. Zero disables expiry.
	SessionTTL time.Duration `koanf:"session_ttl"`

	// SweepSchedule is the cron spec for the expiry sweeper, e.g. "@every 1m".
	SweepSchedule string `koanf:"sweep_schedule"`

	// IDScheme selects the session id generator: uuid or nanoid.
	IDScheme string `koanf:"id_scheme"`

	// ReplayCacheSize bounds the number of remembered turn keys. Zero or
	// less keeps every key until its session expires.
	ReplayCacheSize int `koanf:"replay_cache_size"`

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":3001",
		AllowedOrigin:   "*",
		ShardCount:      16,
		SessionTTL:      2 * time.Hour,
		SweepSchedule:   "@every 1m",
		IDScheme:        "uuid",
		ReplayCacheSize: 50_000,
		MaxBodyBytes:    1 << 20,
	}
}
