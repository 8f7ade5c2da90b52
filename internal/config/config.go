// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and TASKMATCH_* env vars on top of New().
// - Errors returned from Load wrap ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory task event queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of task event workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the idempotency-key cache for task assignment.
	DedupeSize int `koanf:"dedupe_size"`

	// TickIntervalMS is the task timer period. One tick adds one second of
	// tracked time, so anything other than 1000 speeds up or slows down the clock.
	TickIntervalMS int `koanf:"tick_interval_ms"`

	// RosterFile points to a YAML roster. Empty means the built-in sample roster.
	RosterFile string `koanf:"roster_file"`

	// DatabaseURL switches the roster to Postgres when set.
	DatabaseURL string `koanf:"database_url"`

	// RunMigrations applies embedded migrations on startup (Postgres only).
	RunMigrations bool `koanf:"run_migrations"`

	// MaxRecommendations caps GET /recommendations?limit.
	MaxRecommendations int `koanf:"max_recommendations"`

	// Weights are the candidate ranking constants.
	Weights Weights `koanf:"weights"`
}

// Weights mirrors the ranking rule constants so they can be tuned per deployment.
type Weights struct {
	WorkloadLow        float64 `koanf:"workload_low"`
	WorkloadBalanced   float64 `koanf:"workload_balanced"`
	WorkloadHigh       float64 `koanf:"workload_high"`
	WorkloadOverloaded float64 `koanf:"workload_overloaded"`
	SkillMatch         float64 `koanf:"skill_match"`
	ReliabilityFactor  float64 `koanf:"reliability_factor"`
	Capacity           float64 `koanf:"capacity"`
	SeniorityBonus     float64 `koanf:"seniority_bonus"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		QueueSize:          10_000,
		WorkerCount:        runtime.NumCPU(),
		DedupeSize:         100_000,
		TickIntervalMS:     1000,
		MaxRecommendations: 50,
		Weights: Weights{
			WorkloadLow:        30,
			WorkloadBalanced:   20,
			WorkloadHigh:       5,
			WorkloadOverloaded: 0,
			SkillMatch:         25,
			ReliabilityFactor:  0.2,
			Capacity:           15,
			SeniorityBonus:     10,
		},
	}
}
