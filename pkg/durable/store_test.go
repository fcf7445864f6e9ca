package durable

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/courtside/scoregate/pkg/cache"
	"github.com/courtside/scoregate/pkg/policy"
	"github.com/courtside/scoregate/pkg/sports"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "scoregate.db"))
	if err != nil {
		t.Fatalf("failed to open durable store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestOpen_EmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Error("expected error for empty path")
	}
	if _, err := Open("   "); err == nil {
		t.Error("expected error for blank path")
	}
}

func TestStore_PutAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	key := cache.BoxScoreKey("401585601")
	endedAt := time.Date(2026, 1, 15, 22, 30, 0, 0, time.UTC)
	cachedAt := time.Date(2026, 1, 15, 23, 0, 0, 0, time.UTC)
	entry := &cache.Entry{
		Value:    []byte(`{"gameId":"401585601"}`),
		CachedAt: cachedAt,
		Class:    policy.ClassFinal,
		EndedAt:  endedAt,
	}

	if err := store.Put(ctx, key, entry); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got.Value) != string(entry.Value) {
		t.Errorf("value = %s, want %s", got.Value, entry.Value)
	}
	if got.Class != policy.ClassFinal {
		t.Errorf("class = %s, want %s", got.Class, policy.ClassFinal)
	}
	if !got.EndedAt.Equal(endedAt) {
		t.Errorf("endedAt = %v, want %v", got.EndedAt, endedAt)
	}
	if !got.CachedAt.Equal(cachedAt) {
		t.Errorf("cachedAt = %v, want %v", got.CachedAt, cachedAt)
	}
}

func TestStore_GetMiss(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Get(context.Background(), cache.BoxScoreKey("nope"))
	if !errors.Is(err, ErrMiss) {
		t.Errorf("expected ErrMiss, got %v", err)
	}
}

// A durable key is written once. A second Put must fail with ErrExists and
// leave the original value untouched.
func TestStore_PutNeverOverwrites(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	key := cache.BoxScoreKey("401585601")
	now := time.Now().UTC().Truncate(time.Second)

	first := &cache.Entry{Value: []byte(`{"v":1}`), CachedAt: now, Class: policy.ClassFinal}
	if err := store.Put(ctx, key, first); err != nil {
		t.Fatalf("first Put failed: %v", err)
	}

	second := &cache.Entry{Value: []byte(`{"v":2}`), CachedAt: now, Class: policy.ClassFinal}
	if err := store.Put(ctx, key, second); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists on second Put, got %v", err)
	}

	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got.Value) != `{"v":1}` {
		t.Errorf("value = %s, want the original {\"v\":1}", got.Value)
	}
}

func TestStore_PutNilEntry(t *testing.T) {
	store := setupTestStore(t)

	if err := store.Put(context.Background(), cache.BoxScoreKey("x"), nil); err == nil {
		t.Error("expected error for nil entry")
	}
}

// Invalidate is the only path to replace a durable entry: delete, then a
// fresh Put succeeds.
func TestStore_InvalidateThenRewrite(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	key := cache.BoxScoreKey("401585601")
	now := time.Now().UTC().Truncate(time.Second)

	if err := store.Put(ctx, key, &cache.Entry{Value: []byte(`{"v":1}`), CachedAt: now, Class: policy.ClassFinal}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Invalidate(ctx, key); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if _, err := store.Get(ctx, key); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss after Invalidate, got %v", err)
	}

	if err := store.Put(ctx, key, &cache.Entry{Value: []byte(`{"v":2}`), CachedAt: now, Class: policy.ClassFinal}); err != nil {
		t.Fatalf("rewrite after Invalidate failed: %v", err)
	}

	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got.Value) != `{"v":2}` {
		t.Errorf("value = %s, want the corrected {\"v\":2}", got.Value)
	}
}

func TestStore_InvalidateMissingKey(t *testing.T) {
	store := setupTestStore(t)

	// Deleting a key that was never written is not an error.
	if err := store.Invalidate(context.Background(), cache.BoxScoreKey("nope")); err != nil {
		t.Errorf("Invalidate of absent key failed: %v", err)
	}
}

func TestStore_ZeroEndedAtRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	key := cache.StandingsKey(sports.LeagueNBA, "2026")

	entry := &cache.Entry{
		Value:    []byte(`{"rows":[]}`),
		CachedAt: time.Now().UTC().Truncate(time.Second),
		Class:    policy.ClassScheduled,
	}
	if err := store.Put(ctx, key, entry); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.EndedAt.IsZero() {
		t.Errorf("endedAt = %v, want zero", got.EndedAt)
	}
}

func TestStore_DateRecords(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	verifiedAt := time.Date(2026, 1, 16, 8, 0, 0, 0, time.UTC)

	// Absent record: the date has never been checked.
	_, found, err := store.GetDateRecord(ctx, sports.LeagueNBA, "2026-01-15")
	if err != nil {
		t.Fatalf("GetDateRecord failed: %v", err)
	}
	if found {
		t.Fatal("expected no record for an unchecked date")
	}

	rec := DateRecord{
		League:     sports.LeagueNBA,
		Date:       "2026-01-15",
		GameCount:  8,
		AnyLive:    false,
		AllFinal:   true,
		VerifiedAt: verifiedAt,
	}
	if err := store.UpsertDateRecord(ctx, rec); err != nil {
		t.Fatalf("UpsertDateRecord failed: %v", err)
	}

	got, found, err := store.GetDateRecord(ctx, sports.LeagueNBA, "2026-01-15")
	if err != nil {
		t.Fatalf("GetDateRecord failed: %v", err)
	}
	if !found {
		t.Fatal("expected record after upsert")
	}
	if got.GameCount != 8 || got.AnyLive || !got.AllFinal {
		t.Errorf("record = %+v, want gameCount=8 anyLive=false allFinal=true", got)
	}
	if !got.VerifiedAt.Equal(verifiedAt) {
		t.Errorf("verifiedAt = %v, want %v", got.VerifiedAt, verifiedAt)
	}
}

// A verified empty date (gameCount == 0) is a real record, distinct from the
// absence of one.
func TestStore_VerifiedEmptyDate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rec := DateRecord{
		League:     sports.LeagueNBA,
		Date:       "2026-07-04",
		GameCount:  0,
		VerifiedAt: time.Now().UTC(),
	}
	if err := store.UpsertDateRecord(ctx, rec); err != nil {
		t.Fatalf("UpsertDateRecord failed: %v", err)
	}

	got, found, err := store.GetDateRecord(ctx, sports.LeagueNBA, "2026-07-04")
	if err != nil {
		t.Fatalf("GetDateRecord failed: %v", err)
	}
	if !found {
		t.Fatal("verified empty date must be found")
	}
	if got.GameCount != 0 {
		t.Errorf("gameCount = %d, want 0", got.GameCount)
	}
}

func TestStore_UpsertDateRecordUpdates(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	base := DateRecord{
		League: sports.LeagueNHL, Date: "2026-01-15",
		GameCount: 5, AnyLive: true, AllFinal: false,
		VerifiedAt: time.Date(2026, 1, 15, 20, 0, 0, 0, time.UTC),
	}
	if err := store.UpsertDateRecord(ctx, base); err != nil {
		t.Fatalf("UpsertDateRecord failed: %v", err)
	}

	// The evening re-check sees every game finished.
	base.AnyLive = false
	base.AllFinal = true
	base.VerifiedAt = time.Date(2026, 1, 16, 2, 0, 0, 0, time.UTC)
	if err := store.UpsertDateRecord(ctx, base); err != nil {
		t.Fatalf("second UpsertDateRecord failed: %v", err)
	}

	got, found, err := store.GetDateRecord(ctx, sports.LeagueNHL, "2026-01-15")
	if err != nil || !found {
		t.Fatalf("GetDateRecord failed: found=%v err=%v", found, err)
	}
	if got.AnyLive || !got.AllFinal {
		t.Errorf("record = %+v, want anyLive=false allFinal=true", got)
	}
}

func TestStore_DeleteDateRecord(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rec := DateRecord{
		League:     sports.LeagueNBA,
		Date:       "2026-02-10",
		GameCount:  0,
		VerifiedAt: time.Now().UTC(),
	}
	if err := store.UpsertDateRecord(ctx, rec); err != nil {
		t.Fatalf("UpsertDateRecord failed: %v", err)
	}

	if err := store.DeleteDateRecord(ctx, sports.LeagueNBA, "2026-02-10"); err != nil {
		t.Fatalf("DeleteDateRecord failed: %v", err)
	}

	_, found, err := store.GetDateRecord(ctx, sports.LeagueNBA, "2026-02-10")
	if err != nil {
		t.Fatalf("GetDateRecord failed: %v", err)
	}
	if found {
		t.Error("record survived deletion")
	}

	// Deleting an absent record is not an error.
	if err := store.DeleteDateRecord(ctx, sports.LeagueNBA, "2026-02-10"); err != nil {
		t.Errorf("second DeleteDateRecord failed: %v", err)
	}
}

func TestStore_ListVerifiedDates(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	records := []DateRecord{
		{League: sports.LeagueNBA, Date: "2026-01-17", GameCount: 3, VerifiedAt: now},
		{League: sports.LeagueNBA, Date: "2026-01-15", GameCount: 8, VerifiedAt: now},
		{League: sports.LeagueNBA, Date: "2026-01-16", GameCount: 0, VerifiedAt: now}, // empty: excluded
		{League: sports.LeagueNHL, Date: "2026-01-15", GameCount: 6, VerifiedAt: now}, // other league
	}
	for _, rec := range records {
		if err := store.UpsertDateRecord(ctx, rec); err != nil {
			t.Fatalf("UpsertDateRecord(%s %s) failed: %v", rec.League, rec.Date, err)
		}
	}

	dates, err := store.ListVerifiedDates(ctx, sports.LeagueNBA)
	if err != nil {
		t.Fatalf("ListVerifiedDates failed: %v", err)
	}

	want := []string{"2026-01-15", "2026-01-17"}
	if len(dates) != len(want) {
		t.Fatalf("got %d dates %v, want %v", len(dates), dates, want)
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Errorf("dates[%d] = %s, want %s", i, dates[i], want[i])
		}
	}
}
