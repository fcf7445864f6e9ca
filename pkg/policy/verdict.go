package policy

import "time"

// Verdict is the read-time freshness classification of a cache entry.
// It is never stored; it is recomputed from entry age and Params on every
// read, and only ever moves forward: fresh -> stale -> expired.
type Verdict string

const (
	// VerdictMiss means no entry exists.
	VerdictMiss Verdict = "miss"

	// VerdictFresh means the entry is within its TTL and served as-is.
	VerdictFresh Verdict = "fresh"

	// VerdictStale means the entry is past its TTL but within the stale
	// window: serve it immediately and refresh in the background.
	VerdictStale Verdict = "stale"

	// VerdictExpired means the entry is past the stale window and the
	// caller must block on a refetch.
	VerdictExpired Verdict = "expired"
)

// Evaluate computes the verdict for an entry of the given age.
func Evaluate(p Params, age time.Duration) Verdict {
	switch {
	case age <= p.TTL:
		return VerdictFresh
	case age <= p.StaleDeadline():
		return VerdictStale
	default:
		return VerdictExpired
	}
}
