package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultMaxEntries bounds the in-memory store when no ceiling is
// configured.
const DefaultMaxEntries = 4096

type memEntry struct {
	entry     Entry
	storedAt  time.Time
	expiresAt time.Time
}

// Memory is an in-process Store used when no Redis address is configured.
// Memory is bounded: once the entry count exceeds the ceiling, entries are
// evicted oldest-by-write-time first.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]memEntry
	maxEntries int
	now        func() time.Time
}

// NewMemory creates an in-memory fast store. maxEntries <= 0 selects
// DefaultMaxEntries.
func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Memory{
		entries:    make(map[string]memEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the entry for key, or ErrMiss. Entries past their hard
// expiry are removed and reported as a miss.
func (m *Memory) Get(_ context.Context, key Key) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key.String()
	me, ok := m.entries[k]
	if !ok {
		Misses.Inc()
		return nil, ErrMiss
	}
	if m.now().After(me.expiresAt) {
		delete(m.entries, k)
		Misses.Inc()
		return nil, ErrMiss
	}

	Hits.WithLabelValues("memory").Inc()
	entry := me.entry
	return &entry, nil
}

// Set overwrites any existing entry and evicts the oldest entries when the
// ceiling is exceeded.
func (m *Memory) Set(_ context.Context, key Key, entry *Entry, hardTTL time.Duration) error {
	if entry == nil || hardTTL <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.entries[key.String()] = memEntry{
		entry:     *entry,
		storedAt:  now,
		expiresAt: now.Add(hardTTL),
	}

	for len(m.entries) > m.maxEntries {
		m.evictOldestLocked()
	}
	return nil
}

// evictOldestLocked removes the entry with the earliest write time.
func (m *Memory) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	for k, me := range m.entries {
		if oldestKey == "" || me.storedAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = me.storedAt
		}
	}
	if oldestKey != "" {
		delete(m.entries, oldestKey)
		Evictions.Inc()
	}
}

// Evict removes the entry for key.
func (m *Memory) Evict(_ context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key.String())
	return nil
}

// Clear removes all entries.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memEntry)
	return nil
}

// Ping always succeeds for the in-memory backend.
func (m *Memory) Ping(context.Context) error { return nil }

// Len returns the current entry count.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
