// Package cache implements the gateway's fast store and canonical key
// builder.
//
// The fast store is a volatile, TTL-bound key-value layer with two
// backends behind one interface:
//
// - Redis (shared across gateway instances)
// - in-memory with bounded size and oldest-first eviction (degraded mode
//   when no Redis address is configured)
//
// The store never interprets freshness. Entries carry the policy class
// assigned at fetch time, and the orchestrator recomputes the freshness
// verdict on every read from the entry's age and the current policy. The
// backend-level TTL passed to Set is only a hard-expiry safety net placed
// past the policy's stale window.
//
// # Basic Usage
//
//	store := cache.NewRedis(redisClient)
//
//	key := cache.ScoreboardKey(sports.LeagueNBA, "2026-01-15")
//
//	entry, err := store.Get(ctx, key)
//	if errors.Is(err, cache.ErrMiss) {
//		// fall through to the coalesced upstream fetch
//	}
//
// # Keys
//
// Keys are canonical strings namespaced under "sg:". Identical logical
// queries always produce identical keys; every populated field is emitted
// with its name in a fixed order so distinct queries cannot collide.
//
// # Metrics
//
//   - scoregate_cache_hits_total{backend} - fast-store hits
//   - scoregate_cache_misses_total - fast-store misses
//   - scoregate_cache_size_bytes{backend} - bytes written
//   - scoregate_cache_evictions_total - memory-backend recency evictions
//   - scoregate_cache_errors_total{operation} - operation errors
package cache
