// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers defaults, an optional YAML file and KIOSK_* environment.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"runtime"
	"strings"
	"time"
)

// Storage backends.
const (
	BackendLocal = "local"
	BackendGCS   = "gcs"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// LogJSON switches log output to JSON lines.
	LogJSON bool `koanf:"log_json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" validate:"required"`

	// DataDir is the root holding kiosk_<id> directories (local backend).
	DataDir string `koanf:"data_dir" validate:"required_if=StorageBackend local"`

	// StorageBackend selects where transaction files are read from.
	StorageBackend string `koanf:"storage_backend" validate:"required,oneof=local gcs"`

	// GCSBucket and GCSPrefix locate the tree for the gcs backend.
	GCSBucket string `koanf:"gcs_bucket" validate:"required_if=StorageBackend gcs"`
	GCSPrefix string `koanf:"gcs_prefix"`

	// WorkerCount bounds concurrent file loads per query.
	WorkerCount int `koanf:"worker_count" validate:"gte=1"`

	// QueryTimeoutMS is the deadline for one query, in milliseconds.
	QueryTimeoutMS int `koanf:"query_timeout_ms" validate:"gte=1"`

	// DefaultTopN and MaxTopN bound user rankings.
	DefaultTopN int `koanf:"default_top_n" validate:"gte=1,ltefield=MaxTopN"`
	MaxTopN     int `koanf:"max_top_n" validate:"gte=1"`

	// RateLimitRPS and RateLimitBurst throttle /api requests; 0 disables.
	RateLimitRPS   float64 `koanf:"rate_limit_rps" validate:"gte=0"`
	RateLimitBurst int     `koanf:"rate_limit_burst" validate:"gte=0"`

	// TrustProxy keys rate limiting on X-Forwarded-For / X-Real-IP. Enable
	// only behind a proxy that overwrites those headers.
	TrustProxy bool `koanf:"trust_proxy"`

	// CORSOrigins is a comma-separated list of origins allowed to read the
	// API cross-origin; "*" allows any, empty disables CORS.
	CORSOrigins string `koanf:"cors_origins"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		Addr:           ":5000",
		DataDir:        "./data",
		StorageBackend: BackendLocal,
		WorkerCount:    runtime.NumCPU(),
		QueryTimeoutMS: 30_000,
		DefaultTopN:    20,
		MaxTopN:        500,
		RateLimitRPS:   50,
		RateLimitBurst: 100,
		CORSOrigins:    "*",
	}
}

// QueryTimeout returns QueryTimeoutMS as a duration.
func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutMS) * time.Millisecond
}

// AllowedOrigins splits CORSOrigins, dropping blanks.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
