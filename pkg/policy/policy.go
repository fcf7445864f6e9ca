// Package policy classifies cacheable entities and computes freshness
// verdicts. Classification happens once per fetch; verdicts are recomputed
// on every read from the entry's age and class, so a policy change takes
// effect for existing entries retroactively.
package policy

import (
	"time"

	"github.com/courtside/scoregate/pkg/sports"
)

// Class is the freshness classification stored alongside a cache entry.
type Class string

const (
	// ClassLive covers in-progress entities. Short TTL, never durable.
	ClassLive Class = "live"

	// ClassScheduled covers future entities whose status may still change.
	ClassScheduled Class = "scheduled"

	// ClassFinal covers completed entities. Long TTL, durable once the
	// substructure validation passes. Upstream silently corrects stats for
	// a bounded window after completion, so the effective TTL is tiered by
	// age since completion.
	ClassFinal Class = "final"

	// ClassEmpty covers verified-no-data and off-season entities.
	// Very long TTL, cheap to re-verify, never durable.
	ClassEmpty Class = "empty"
)

// Default TTLs per class. ClassFinal is a floor; the age tiers below
// extend it for older entities.
const (
	TTLLive      = 30 * time.Second
	TTLScheduled = 5 * time.Minute
	TTLEmpty     = 24 * time.Hour

	// Correction re-check tiers for completed entities.
	TTLFinalRecent = 30 * time.Minute // completed within the last day
	TTLFinalWeek   = 6 * time.Hour    // completed within the last week
	TTLFinalOld    = 24 * time.Hour   // older than a week
)

// Params is the policy output for one classified entity.
type Params struct {
	TTL time.Duration

	// StaleFactor defines the stale window as TTL * StaleFactor; beyond
	// that an entry is expired.
	StaleFactor float64

	// Durable marks the entity eligible for the durable store, subject to
	// the caller validating its substructure first.
	Durable bool
}

// StaleDeadline returns the age at which an entry leaves the stale window.
func (p Params) StaleDeadline() time.Duration {
	return time.Duration(float64(p.TTL) * p.StaleFactor)
}

// State is the entity-derived input to classification.
type State struct {
	Status sports.GameStatus

	// Empty marks a verified no-data result (e.g. an off-season date).
	Empty bool

	// EndedAt is the completion time for final entities. Zero otherwise.
	EndedAt time.Time
}

// Policy maps (entity type, entity state) to cache parameters.
// TTL overrides are per entity type, from configuration.
type Policy struct {
	overrides map[sports.EntityType]time.Duration
}

// New creates a Policy. overrides may be nil.
func New(overrides map[sports.EntityType]time.Duration) *Policy {
	return &Policy{overrides: overrides}
}

// Classify determines the class for a freshly fetched entity.
func (p *Policy) Classify(entity sports.EntityType, s State) Class {
	switch {
	case s.Empty:
		return ClassEmpty
	case entity == sports.EntityStandings:
		// Standings shift after every game; treat like a scheduled entity.
		return ClassScheduled
	case s.Status == sports.StatusLive:
		return ClassLive
	case s.Status == sports.StatusFinal:
		return ClassFinal
	default:
		return ClassScheduled
	}
}

// Params computes cache parameters for a class at a given instant.
// endedAt is consulted only for ClassFinal, where the TTL tier depends on
// how long ago the entity completed.
func (p *Policy) Params(entity sports.EntityType, class Class, endedAt time.Time, now time.Time) Params {
	var out Params
	switch class {
	case ClassLive:
		out = Params{TTL: TTLLive, StaleFactor: 2, Durable: false}
	case ClassScheduled:
		out = Params{TTL: TTLScheduled, StaleFactor: 3, Durable: false}
	case ClassEmpty:
		out = Params{TTL: TTLEmpty, StaleFactor: 2, Durable: false}
	case ClassFinal:
		out = Params{TTL: finalTTL(endedAt, now), StaleFactor: 2, Durable: true}
	default:
		// Unknown class from an old entry: treat as the shortest-lived
		// class so the entry gets refetched promptly.
		out = Params{TTL: TTLLive, StaleFactor: 2, Durable: false}
	}

	if ttl, ok := p.overrides[entity]; ok && ttl > 0 {
		out.TTL = ttl
	}
	return out
}

// finalTTL returns the correction re-check interval for a completed
// entity, tiered by age since completion.
func finalTTL(endedAt, now time.Time) time.Duration {
	if endedAt.IsZero() {
		// Final without a completion timestamp: re-check aggressively.
		return TTLFinalRecent
	}
	age := now.Sub(endedAt)
	switch {
	case age <= 24*time.Hour:
		return TTLFinalRecent
	case age <= 7*24*time.Hour:
		return TTLFinalWeek
	default:
		return TTLFinalOld
	}
}
