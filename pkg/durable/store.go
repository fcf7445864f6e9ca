// Package durable provides permanent storage for entities confirmed to be
// in their final state, plus the scoreboard-date index used to
// short-circuit queries for dates verified to have no games.
//
// Entries are addressed by the same canonical key as the fast store. A key
// is written once and never updated in place: a later correction must be
// an explicit Invalidate followed by a fresh write. The durability gate
// (validating final entities before writing) is enforced by the caller,
// not here.
package durable

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/courtside/scoregate/pkg/cache"
	"github.com/courtside/scoregate/pkg/policy"
	"github.com/courtside/scoregate/pkg/sports"
)

var (
	// ErrMiss indicates no durable entry exists for the key.
	ErrMiss = errors.New("durable miss")

	// ErrExists indicates a durable entry already exists for the key.
	// Durable entries are never silently overwritten.
	ErrExists = errors.New("durable entry already exists")
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS durable_entries (
		cache_key  TEXT PRIMARY KEY,
		value_json BLOB NOT NULL,
		class      TEXT NOT NULL,
		ended_at   INTEGER NOT NULL,
		cached_at  INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS scoreboard_dates (
		league      TEXT NOT NULL,
		date        TEXT NOT NULL,
		game_count  INTEGER NOT NULL,
		any_live    INTEGER NOT NULL,
		all_final   INTEGER NOT NULL,
		verified_at INTEGER NOT NULL,
		PRIMARY KEY (league, date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scoreboard_dates_league
		ON scoreboard_dates (league, date)`,
}

// Store is the SQLite-backed durable store.
type Store struct {
	sqlDB *sql.DB
}

// Open opens and migrates a durable store at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("durable store path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	for _, stmt := range migrations {
		if _, err := sqlDB.Exec(stmt); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("run migration: %w", err)
		}
	}

	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping reports store health.
func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// Get loads the durable entry for key, or ErrMiss.
func (s *Store) Get(ctx context.Context, key cache.Key) (*cache.Entry, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT value_json, class, ended_at, cached_at
		 FROM durable_entries WHERE cache_key = ?`,
		key.String(),
	)

	var valueJSON []byte
	var class string
	var endedAt, cachedAt int64
	if err := row.Scan(&valueJSON, &class, &endedAt, &cachedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("query durable entry: %w", err)
	}

	entry := &cache.Entry{
		Value:    valueJSON,
		CachedAt: time.Unix(cachedAt, 0).UTC(),
		Class:    policy.Class(class),
	}
	if endedAt > 0 {
		entry.EndedAt = time.Unix(endedAt, 0).UTC()
	}
	return entry, nil
}

// Put writes a durable entry. Returns ErrExists if the key is already
// present; existing entries are ground truth and are never overwritten.
func (s *Store) Put(ctx context.Context, key cache.Key, entry *cache.Entry) error {
	if entry == nil {
		return fmt.Errorf("durable entry cannot be nil")
	}

	var endedAt int64
	if !entry.EndedAt.IsZero() {
		endedAt = entry.EndedAt.Unix()
	}

	res, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO durable_entries (cache_key, value_json, class, ended_at, cached_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (cache_key) DO NOTHING`,
		key.String(), []byte(entry.Value), string(entry.Class), endedAt, entry.CachedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert durable entry: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrExists
	}
	return nil
}

// Invalidate removes the durable entry for key so a corrected value can be
// rewritten. This is the only sanctioned path to replace a durable entry.
func (s *Store) Invalidate(ctx context.Context, key cache.Key) error {
	if _, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM durable_entries WHERE cache_key = ?`, key.String(),
	); err != nil {
		return fmt.Errorf("delete durable entry: %w", err)
	}
	return nil
}

// DateRecord is the per (league, date) aggregate recorded by ingestion.
// GameCount == 0 is a verified negative result, distinct from "not checked
// yet" (which is simply the absence of a record).
type DateRecord struct {
	League     sports.League
	Date       string // YYYY-MM-DD
	GameCount  int
	AnyLive    bool
	AllFinal   bool
	VerifiedAt time.Time
}

// UpsertDateRecord creates or updates the scoreboard-date record.
func (s *Store) UpsertDateRecord(ctx context.Context, rec DateRecord) error {
	if _, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO scoreboard_dates (league, date, game_count, any_live, all_final, verified_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (league, date) DO UPDATE SET
			game_count = excluded.game_count,
			any_live = excluded.any_live,
			all_final = excluded.all_final,
			verified_at = excluded.verified_at`,
		string(rec.League), rec.Date, rec.GameCount,
		boolInt(rec.AnyLive), boolInt(rec.AllFinal), rec.VerifiedAt.Unix(),
	); err != nil {
		return fmt.Errorf("upsert date record: %w", err)
	}
	return nil
}

// GetDateRecord loads the scoreboard-date record for (league, date).
// The second return is false when the date has never been verified.
func (s *Store) GetDateRecord(ctx context.Context, league sports.League, date string) (DateRecord, bool, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT game_count, any_live, all_final, verified_at
		 FROM scoreboard_dates WHERE league = ? AND date = ?`,
		string(league), date,
	)

	var gameCount, anyLive, allFinal int
	var verifiedAt int64
	if err := row.Scan(&gameCount, &anyLive, &allFinal, &verifiedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DateRecord{}, false, nil
		}
		return DateRecord{}, false, fmt.Errorf("query date record: %w", err)
	}

	return DateRecord{
		League:     league,
		Date:       date,
		GameCount:  gameCount,
		AnyLive:    anyLive != 0,
		AllFinal:   allFinal != 0,
		VerifiedAt: time.Unix(verifiedAt, 0).UTC(),
	}, true, nil
}

// DeleteDateRecord removes the scoreboard-date record for (league, date)
// so the next request re-verifies the date upstream. Deleting a missing
// record is not an error.
func (s *Store) DeleteDateRecord(ctx context.Context, league sports.League, date string) error {
	if _, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM scoreboard_dates WHERE league = ? AND date = ?`,
		string(league), date,
	); err != nil {
		return fmt.Errorf("delete date record: %w", err)
	}
	return nil
}

// ListVerifiedDates returns the dates with at least one verified game for
// a league, ascending.
func (s *Store) ListVerifiedDates(ctx context.Context, league sports.League) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT date FROM scoreboard_dates
		 WHERE league = ? AND game_count > 0
		 ORDER BY date ASC`,
		string(league),
	)
	if err != nil {
		return nil, fmt.Errorf("query verified dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
