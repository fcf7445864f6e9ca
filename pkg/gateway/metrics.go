package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// servedTotal tracks resolutions by source (durable, index, cache,
	// cache-stale, network, error).
	servedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoregate_served_total",
			Help: "Total resolved requests by source",
		},
		[]string{"source"},
	)

	// refreshesTotal tracks background stale-entry refreshes started.
	refreshesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scoregate_background_refreshes_total",
			Help: "Total background refreshes triggered by stale reads",
		},
	)

	// durableRejectsTotal tracks final entities refused by the durability
	// gate.
	durableRejectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scoregate_durable_rejects_total",
			Help: "Total final entities rejected by the durability gate",
		},
	)
)
