package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrMiss indicates the requested key was not found.
	ErrMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the stored entry could not be decoded.
	// Callers treat it as a miss.
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Store is the fast store contract. Get does not interpret freshness
// (the orchestrator does, using the policy package); implementations only
// apply a hard expiry as a safety net via the TTL passed to Set.
type Store interface {
	// Get returns the entry for key, or ErrMiss.
	Get(ctx context.Context, key Key) (*Entry, error)

	// Set overwrites any existing entry. hardTTL is the backend-level
	// expiry; it is set past the policy's stale window so stale entries
	// remain servable until they are fully expired.
	Set(ctx context.Context, key Key, entry *Entry, hardTTL time.Duration) error

	// Evict removes the entry for key.
	Evict(ctx context.Context, key Key) error

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Ping reports backend health.
	Ping(ctx context.Context) error
}

// Nop is a Store that stores nothing. It is the degraded mode used when no
// fast-store backend is configured: every read is a miss, every write is
// accepted and dropped.
type Nop struct{}

// NewNop creates a no-op store.
func NewNop() *Nop { return &Nop{} }

func (*Nop) Get(context.Context, Key) (*Entry, error) { return nil, ErrMiss }

func (*Nop) Set(context.Context, Key, *Entry, time.Duration) error { return nil }

func (*Nop) Evict(context.Context, Key) error { return nil }

func (*Nop) Clear(context.Context) error { return nil }

func (*Nop) Ping(context.Context) error { return nil }
