// Package coalesce deduplicates concurrent upstream fetches per cache key.
//
// At most one producer runs per key at any instant. Callers that arrive
// while a fetch is in flight attach as waiters and receive the same result
// (or the same error). The in-flight slot is cleared as soon as the
// producer settles, so a failure is never sticky: the next call gets a
// fresh attempt.
package coalesce

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"
)

var (
	flightsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scoregate_coalesce_flights_total",
		Help: "Total number of upstream fetch episodes started",
	})

	sharedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scoregate_coalesce_shared_total",
		Help: "Total number of callers that shared an in-flight fetch",
	})
)

// Coalescer shares one in-flight producer per key among all callers.
type Coalescer struct {
	group singleflight.Group
}

// New creates a Coalescer.
func New() *Coalescer {
	return &Coalescer{}
}

// Do invokes producer for key, unless a producer for the same key is
// already in flight, in which case the caller waits for its result.
//
// The producer deliberately does not receive the caller's context: even if
// the originating caller disconnects, the fetch runs to completion and
// populates the cache for the next caller. ctx is consulted only before
// attaching, so an already-cancelled caller fails fast.
func (c *Coalescer) Do(ctx context.Context, key string, producer func() (any, error)) (any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		flightsTotal.Inc()
		return producer()
	})
	if shared {
		sharedTotal.Inc()
	}
	return v, shared, err
}

// Forget clears any in-flight slot for key so the next call starts a fresh
// producer. Used by explicit invalidation.
func (c *Coalescer) Forget(key string) {
	c.group.Forget(key)
}
