package cache

import (
	"testing"
	"time"

	"github.com/courtside/scoregate/pkg/policy"
)

func TestNewEntry(t *testing.T) {
	now := time.Date(2026, 1, 15, 22, 0, 0, 0, time.UTC)
	ended := now.Add(-30 * time.Minute)

	entry, err := NewEntry(map[string]int{"homeScore": 101}, policy.ClassFinal, ended, now)
	if err != nil {
		t.Fatalf("NewEntry failed: %v", err)
	}

	if !entry.CachedAt.Equal(now) {
		t.Errorf("CachedAt = %v, want %v", entry.CachedAt, now)
	}
	if entry.Class != policy.ClassFinal {
		t.Errorf("Class = %v, want %v", entry.Class, policy.ClassFinal)
	}
	if !entry.EndedAt.Equal(ended) {
		t.Errorf("EndedAt = %v, want %v", entry.EndedAt, ended)
	}

	var decoded map[string]int
	if err := entry.Decode(&decoded); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded["homeScore"] != 101 {
		t.Errorf("decoded homeScore = %d, want 101", decoded["homeScore"])
	}
}

func TestNewEntry_UnserializableValue(t *testing.T) {
	_, err := NewEntry(func() {}, policy.ClassLive, time.Time{}, time.Now())
	if err == nil {
		t.Fatal("NewEntry should fail for an unserializable value")
	}
}

func TestEntry_Age(t *testing.T) {
	cachedAt := time.Date(2026, 1, 15, 22, 0, 0, 0, time.UTC)
	entry := &Entry{CachedAt: cachedAt}

	if got := entry.Age(cachedAt.Add(45 * time.Second)); got != 45*time.Second {
		t.Errorf("Age = %v, want 45s", got)
	}
}
