package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Hits tracks fast-store hits by backend (redis, memory).
	Hits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoregate_cache_hits_total",
			Help: "Total number of fast-store hits",
		},
		[]string{"backend"},
	)

	// Misses tracks fast-store misses.
	Misses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scoregate_cache_misses_total",
			Help: "Total number of fast-store misses",
		},
	)

	// SizeBytes tracks bytes written by backend.
	SizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scoregate_cache_size_bytes",
			Help: "Bytes written to the fast store",
		},
		[]string{"backend"},
	)

	// Evictions tracks recency evictions in the memory backend.
	Evictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scoregate_cache_evictions_total",
			Help: "Total number of fast-store recency evictions",
		},
	)

	// Errors tracks fast-store operation errors.
	Errors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoregate_cache_errors_total",
			Help: "Total number of fast-store operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
