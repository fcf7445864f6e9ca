package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/courtside/scoregate/internal/config"
	"github.com/courtside/scoregate/pkg/cache"
	"github.com/courtside/scoregate/pkg/durable"
	"github.com/courtside/scoregate/pkg/gateway"
	"github.com/courtside/scoregate/pkg/logging"
	"github.com/courtside/scoregate/pkg/policy"
	"github.com/courtside/scoregate/pkg/provider"
)

// app bundles the wired process components.
type app struct {
	cfg     config.Config
	logger  zerolog.Logger
	orch    *gateway.Orchestrator
	durable *durable.Store
}

// bootstrap loads config and constructs every component once; handlers and
// jobs receive them by reference. No globals.
func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
	})

	fast := buildFastStore(cfg, logger)

	ds, err := durable.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open durable store: %w", err)
	}

	provCfg := provider.DefaultConfig(cfg.UpstreamBaseURL, cfg.UpstreamAPIKey)
	provCfg.RequestsPerSecond = cfg.UpstreamRPS
	prov, err := provider.New(provCfg)
	if err != nil {
		_ = ds.Close()
		return nil, fmt.Errorf("create provider: %w", err)
	}

	pol := policy.New(cfg.TTLOverrides())
	orch := gateway.New(fast, ds, prov, pol)

	return &app{
		cfg:     cfg,
		logger:  logger,
		orch:    orch,
		durable: ds,
	}, nil
}

// buildFastStore picks Redis when configured and reachable, otherwise the
// bounded in-memory store. A missing fast store degrades, never crashes.
func buildFastStore(cfg config.Config, logger zerolog.Logger) cache.Store {
	if cfg.RedisAddr == "" {
		logger.Info().Msg("No Redis address configured, using in-memory fast store")
		return cache.NewMemory(cfg.CacheMaxEntries)
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.RedisAddr).
			Msg("Redis unreachable, degrading to in-memory fast store")
		return cache.NewMemory(cfg.CacheMaxEntries)
	}

	logger.Info().Str("addr", cfg.RedisAddr).Msg("Connected to Redis fast store")
	return cache.NewRedis(client)
}

// close drains background work and releases resources.
func (a *app) close() {
	a.orch.Close()
	if err := a.durable.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("Durable store close failed")
	}
}
