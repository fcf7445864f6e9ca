// Package ratelimit tracks upstream rate-limit pushback and gates provider
// requests. When the upstream answers 429, the Retry-After window is
// recorded and every request inside the window is refused locally instead
// of being sent upstream.
package ratelimit

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	backoffRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scoregate_upstream_backoff_seconds",
		Help: "Seconds remaining in the current upstream backoff window",
	})

	blocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scoregate_upstream_blocks_total",
		Help: "Total number of requests blocked by the upstream backoff window",
	})
)

// DefaultBackoff is applied when a 429 arrives without a Retry-After
// header.
const DefaultBackoff = 30 * time.Second

// Tracker records the upstream's Retry-After window.
type Tracker struct {
	mu           sync.Mutex
	blockedUntil time.Time
	logger       zerolog.Logger
	now          func() time.Time
}

// NewTracker creates a tracker.
func NewTracker(logger zerolog.Logger) *Tracker {
	return &Tracker{
		logger: logger,
		now:    time.Now,
	}
}

// Allow reports whether a request may be sent. When blocked, the second
// return is the remaining wait.
func (t *Tracker) Allow() (bool, time.Duration) {
	remaining := t.remaining()
	if remaining <= 0 {
		backoffRemaining.Set(0)
		return true, 0
	}

	blocksTotal.Inc()
	backoffRemaining.Set(remaining.Seconds())
	return false, remaining
}

func (t *Tracker) remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.blockedUntil.Sub(t.now())
}

// Block opens (or extends) the backoff window. retryAfter <= 0 selects
// DefaultBackoff.
func (t *Tracker) Block(retryAfter time.Duration) {
	if retryAfter <= 0 {
		retryAfter = DefaultBackoff
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	until := t.now().Add(retryAfter)
	if until.After(t.blockedUntil) {
		t.blockedUntil = until
	}
	backoffRemaining.Set(retryAfter.Seconds())

	t.logger.Warn().
		Dur("retry_after", retryAfter).
		Time("blocked_until", t.blockedUntil).
		Msg("Upstream rate limited, opening backoff window")
}

// Healthy reports whether no backoff window is active. Unlike Allow it
// does not count as a blocked request.
func (t *Tracker) Healthy() bool {
	return t.remaining() <= 0
}
