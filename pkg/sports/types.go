// Package sports defines the domain model served by the gateway: leagues,
// scoreboards, games and sport-specific box scores.
package sports

import (
	"fmt"
	"time"
)

// League identifies an upstream league feed.
type League string

const (
	LeagueNBA  League = "nba"
	LeagueWNBA League = "wnba"
	LeagueNHL  League = "nhl"
	LeagueMLB  League = "mlb"
)

// Leagues lists every league the gateway serves.
var Leagues = []League{LeagueNBA, LeagueWNBA, LeagueNHL, LeagueMLB}

// ParseLeague validates a league slug from a request or config.
func ParseLeague(s string) (League, error) {
	for _, l := range Leagues {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown league %q", s)
}

// Sport returns the sport played in the league, which selects the
// box-score variant.
func (l League) Sport() Sport {
	switch l {
	case LeagueNHL:
		return SportHockey
	case LeagueMLB:
		return SportBaseball
	default:
		return SportBasketball
	}
}

// EntityType identifies a class of cacheable entity. The canonical cache
// key and the freshness policy are both keyed by it.
type EntityType string

const (
	// EntityScoreboard is a league's game list for one calendar date.
	EntityScoreboard EntityType = "scoreboard"

	// EntityBoxScore is the full detail for a single game.
	EntityBoxScore EntityType = "boxscore"

	// EntityStandings is a league table for one season.
	EntityStandings EntityType = "standings"
)

// GameStatus is the upstream lifecycle state of a game.
type GameStatus string

const (
	StatusScheduled GameStatus = "scheduled"
	StatusLive      GameStatus = "live"
	StatusFinal     GameStatus = "final"
)

// Team is a participant in a game.
type Team struct {
	ID     string `json:"id"`
	Abbrev string `json:"abbrev"`
	Name   string `json:"name"`
}

// Game is one entry in a scoreboard.
type Game struct {
	ID        string     `json:"id"`
	League    League     `json:"league"`
	Date      string     `json:"date"` // YYYY-MM-DD
	Status    GameStatus `json:"status"`
	Home      Team       `json:"home"`
	Away      Team       `json:"away"`
	HomeScore int        `json:"homeScore"`
	AwayScore int        `json:"awayScore"`
	StartsAt  time.Time  `json:"startsAt"`

	// EndedAt is set once the game is final. Zero for scheduled/live games.
	EndedAt time.Time `json:"endedAt,omitzero"`
}

// Scoreboard is the per (league, date) aggregate.
type Scoreboard struct {
	League      League    `json:"league"`
	Date        string    `json:"date"`
	LastUpdated time.Time `json:"lastUpdated"`
	Games       []Game    `json:"games"`
}

// AllFinal reports whether every game on the board has reached its final
// state. An empty board is not "all final" - it is empty.
func (s *Scoreboard) AllFinal() bool {
	if len(s.Games) == 0 {
		return false
	}
	for _, g := range s.Games {
		if g.Status != StatusFinal {
			return false
		}
	}
	return true
}

// AnyLive reports whether any game on the board is in progress.
func (s *Scoreboard) AnyLive() bool {
	for _, g := range s.Games {
		if g.Status == StatusLive {
			return true
		}
	}
	return false
}

// LastEnded returns the latest EndedAt across the board's games.
// Zero if no game is final.
func (s *Scoreboard) LastEnded() time.Time {
	var last time.Time
	for _, g := range s.Games {
		if g.EndedAt.After(last) {
			last = g.EndedAt
		}
	}
	return last
}

// StandingRow is one team's record in a league table.
type StandingRow struct {
	Team   Team    `json:"team"`
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
	Pct    float64 `json:"pct"`
}

// Standings is a league table for one season.
type Standings struct {
	League League        `json:"league"`
	Season string        `json:"season"`
	Rows   []StandingRow `json:"rows"`
}

// ValidDate reports whether s is a well-formed YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
