// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ArtifactsPath locates the trained model bundle. The process refuses
	// to start without a loadable bundle.
	ArtifactsPath string `koanf:"artifacts_path"`

	// QueueSize bounds the in-memory ingest queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of assessment workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the number of shards in the beneficiary registry.
	ShardCount int `koanf:"shard_count"`

	// MaxListLimit caps GET /beneficiaries?limit and GET /triage?limit.
	MaxListLimit int `koanf:"max_list_limit"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:      "info",
		Addr:          ":8080",
		ArtifactsPath: "nourish_models.gob",
		QueueSize:     100_000,
		WorkerCount:   runtime.NumCPU() * 4,
		DedupeSize:    50_000,
		ShardCount:    8,
		MaxListLimit:  1000,
	}
}
