package config

import (
	"testing"
	"time"

	"github.com/courtside/scoregate/pkg/sports"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SCOREGATE_UPSTREAM_URL", "https://api.example.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %s, want :8080", cfg.ListenAddr)
	}
	if cfg.UpstreamRPS != 5 {
		t.Errorf("UpstreamRPS = %v, want 5", cfg.UpstreamRPS)
	}
	if cfg.DBPath != "scoregate.db" {
		t.Errorf("DBPath = %s, want scoregate.db", cfg.DBPath)
	}
	if cfg.CacheMaxEntries != 4096 {
		t.Errorf("CacheMaxEntries = %d, want 4096", cfg.CacheMaxEntries)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info", cfg.LogLevel)
	}
}

func TestLoad_RequiresUpstreamURL(t *testing.T) {
	t.Setenv("SCOREGATE_UPSTREAM_URL", "")

	if _, err := Load(); err == nil {
		t.Error("expected error when SCOREGATE_UPSTREAM_URL is unset")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SCOREGATE_UPSTREAM_URL", "https://api.example.test")
	t.Setenv("SCOREGATE_ADDR", ":9090")
	t.Setenv("SCOREGATE_REDIS_ADDR", "redis:6379")
	t.Setenv("SCOREGATE_TTL_SCOREBOARD", "45s")
	t.Setenv("SCOREGATE_TTL_STANDINGS", "10m")
	t.Setenv("SCOREGATE_LOG_PRETTY", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %s, want :9090", cfg.ListenAddr)
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Errorf("RedisAddr = %s", cfg.RedisAddr)
	}
	if !cfg.LogPretty {
		t.Error("LogPretty = false, want true")
	}

	overrides := cfg.TTLOverrides()
	if got := overrides[sports.EntityScoreboard]; got != 45*time.Second {
		t.Errorf("scoreboard TTL = %v, want 45s", got)
	}
	if got := overrides[sports.EntityStandings]; got != 10*time.Minute {
		t.Errorf("standings TTL = %v, want 10m", got)
	}
	if _, ok := overrides[sports.EntityBoxScore]; ok {
		t.Error("unset box-score TTL must not appear in overrides")
	}
}
