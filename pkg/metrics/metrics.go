// Package metrics provides the centralized Prometheus registry reference
// for the gateway. All collectors are defined in their respective packages
// (cache, coalesce, gateway, provider, ratelimit) via promauto to keep
// modularity and avoid circular dependencies.
//
// This package documents the available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registerer used by the gateway.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Fast store (pkg/cache):
//   - scoregate_cache_hits_total{backend} (Counter): hits by backend
//   - scoregate_cache_misses_total (Counter): misses
//   - scoregate_cache_size_bytes{backend} (Gauge): bytes written
//   - scoregate_cache_evictions_total (Counter): memory recency evictions
//   - scoregate_cache_errors_total{operation} (Counter): operation errors
//
// Coalescer (pkg/coalesce):
//   - scoregate_coalesce_flights_total (Counter): fetch episodes started
//   - scoregate_coalesce_shared_total (Counter): callers that shared a flight
//
// Orchestrator (pkg/gateway):
//   - scoregate_served_total{source} (Counter): resolutions by source
//   - scoregate_background_refreshes_total (Counter): stale-triggered refreshes
//   - scoregate_durable_rejects_total (Counter): durability-gate rejections
//
// Upstream adapter (pkg/provider):
//   - scoregate_upstream_requests_total{endpoint, status} (Counter)
//   - scoregate_upstream_request_duration_seconds{endpoint} (Histogram)
//   - scoregate_upstream_errors_total{class} (Counter)
//   - scoregate_upstream_retries_total{error_class} (Counter)
//   - scoregate_upstream_retry_backoff_seconds{error_class} (Histogram)
//   - scoregate_upstream_retry_exhausted_total{error_class} (Counter)
//
// Backoff tracker (pkg/ratelimit):
//   - scoregate_upstream_backoff_seconds (Gauge): remaining backoff window
//   - scoregate_upstream_blocks_total (Counter): locally refused requests
//
// Example Prometheus Queries:
//
//	# Cache hit rate
//	sum(rate(scoregate_cache_hits_total[5m])) /
//	(sum(rate(scoregate_cache_hits_total[5m])) + sum(rate(scoregate_cache_misses_total[5m])))
//
//	# Coalescing effectiveness (saved upstream calls)
//	rate(scoregate_coalesce_shared_total[5m])
//
//	# P95 upstream latency
//	histogram_quantile(0.95, rate(scoregate_upstream_request_duration_seconds_bucket[5m]))
