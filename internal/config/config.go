// Package config loads gateway configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/courtside/scoregate/pkg/sports"
)

// Config is the process configuration.
type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string `env:"SCOREGATE_ADDR" envDefault:":8080"`

	// UpstreamBaseURL is the upstream provider API root.
	UpstreamBaseURL string `env:"SCOREGATE_UPSTREAM_URL,required,notEmpty"`

	// UpstreamAPIKey is sent on every upstream request.
	UpstreamAPIKey string `env:"SCOREGATE_UPSTREAM_API_KEY"`

	// UpstreamRPS paces upstream requests.
	UpstreamRPS float64 `env:"SCOREGATE_UPSTREAM_RPS" envDefault:"5"`

	// RedisAddr selects the Redis fast store. Empty degrades to the
	// bounded in-memory store; it never crashes the process.
	RedisAddr string `env:"SCOREGATE_REDIS_ADDR"`

	// DBPath is the SQLite durable store location.
	DBPath string `env:"SCOREGATE_DB_PATH" envDefault:"scoregate.db"`

	// CacheMaxEntries bounds the in-memory fast store.
	CacheMaxEntries int `env:"SCOREGATE_CACHE_MAX_ENTRIES" envDefault:"4096"`

	// Per-entity-type TTL overrides. Zero keeps the policy default.
	TTLScoreboard time.Duration `env:"SCOREGATE_TTL_SCOREBOARD"`
	TTLBoxScore   time.Duration `env:"SCOREGATE_TTL_BOXSCORE"`
	TTLStandings  time.Duration `env:"SCOREGATE_TTL_STANDINGS"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"SCOREGATE_LOG_LEVEL" envDefault:"info"`

	// LogPretty enables human-readable console output.
	LogPretty bool `env:"SCOREGATE_LOG_PRETTY"`
}

// Load parses the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// TTLOverrides collects the configured per-entity-type TTL overrides.
func (c Config) TTLOverrides() map[sports.EntityType]time.Duration {
	out := make(map[sports.EntityType]time.Duration)
	if c.TTLScoreboard > 0 {
		out[sports.EntityScoreboard] = c.TTLScoreboard
	}
	if c.TTLBoxScore > 0 {
		out[sports.EntityBoxScore] = c.TTLBoxScore
	}
	if c.TTLStandings > 0 {
		out[sports.EntityStandings] = c.TTLStandings
	}
	return out
}
