package cache

import (
	"fmt"
	"strings"

	"github.com/courtside/scoregate/pkg/sports"
)

// Key identifies one cacheable entity-query. Identical logical queries
// always produce identical strings; distinct queries never collide because
// every populated field is emitted with its name in a fixed order.
type Key struct {
	// Entity is the entity type; always set.
	Entity sports.EntityType

	// League scopes scoreboard and standings queries.
	League sports.League

	// Date is the calendar date (YYYY-MM-DD) for date-scoped queries.
	Date string

	// GameID addresses a single game.
	GameID string

	// TeamID scopes team-level queries.
	TeamID string

	// Season scopes standings queries.
	Season string
}

// ScoreboardKey builds the key for a league's scoreboard on a date.
func ScoreboardKey(league sports.League, date string) Key {
	return Key{Entity: sports.EntityScoreboard, League: league, Date: date}
}

// BoxScoreKey builds the key for a single game's box score.
func BoxScoreKey(gameID string) Key {
	return Key{Entity: sports.EntityBoxScore, GameID: gameID}
}

// StandingsKey builds the key for a league's standings in a season.
func StandingsKey(league sports.League, season string) Key {
	return Key{Entity: sports.EntityStandings, League: league, Season: season}
}

// String generates the canonical cache key.
// Format: sg:entity:field=value:... with fields in fixed order.
//
// Example:
//
//	sg:scoreboard:league=nba:date=2026-01-15
func (k Key) String() string {
	parts := []string{"sg", string(k.Entity)}

	if k.League != "" {
		parts = append(parts, fmt.Sprintf("league=%s", k.League))
	}
	if k.Date != "" {
		parts = append(parts, fmt.Sprintf("date=%s", k.Date))
	}
	if k.GameID != "" {
		parts = append(parts, fmt.Sprintf("game=%s", k.GameID))
	}
	if k.TeamID != "" {
		parts = append(parts, fmt.Sprintf("team=%s", k.TeamID))
	}
	if k.Season != "" {
		parts = append(parts, fmt.Sprintf("season=%s", k.Season))
	}

	return strings.Join(parts, ":")
}
