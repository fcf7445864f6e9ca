// Package cache provides the fast store: a volatile, TTL-bound cache with
// Redis and in-memory backends behind one interface.
package cache

import (
	"encoding/json"
	"time"

	"github.com/courtside/scoregate/pkg/policy"
)

// Entry wraps a cached value. Freshness is not baked in at write time:
// readers recompute the verdict from CachedAt and the current policy for
// Class, so a policy change affects existing entries retroactively.
type Entry struct {
	// Value is the serialized entity payload.
	Value json.RawMessage `json:"value"`

	// CachedAt is set at write time and never mutated.
	CachedAt time.Time `json:"cachedAt"`

	// Class is the freshness classification assigned at fetch time.
	Class policy.Class `json:"class"`

	// EndedAt is the entity's completion time for final entities.
	// Zero otherwise. Read-time TTL tiers for final entities key off it.
	EndedAt time.Time `json:"endedAt,omitzero"`
}

// Age returns the entry's age at the given instant.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.CachedAt)
}

// Decode unmarshals the entry value into v.
func (e *Entry) Decode(v any) error {
	return json.Unmarshal(e.Value, v)
}

// NewEntry builds an entry for a value classified at fetch time.
// Marshal errors surface to the caller, which logs and continues; a value
// that cannot be serialized is simply not cached.
func NewEntry(value any, class policy.Class, endedAt time.Time, now time.Time) (*Entry, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return &Entry{
		Value:    raw,
		CachedAt: now,
		Class:    class,
		EndedAt:  endedAt,
	}, nil
}
