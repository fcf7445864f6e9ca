package provider

import (
	"fmt"
	"time"

	"github.com/courtside/scoregate/pkg/sports"
)

// The upstream wire format is mapped into domain types here, so format
// churn stays inside this package.

type teamDTO struct {
	TeamID  string `json:"team_id"`
	Tricode string `json:"tricode"`
	Name    string `json:"full_name"`
}

func (t teamDTO) toTeam() sports.Team {
	return sports.Team{ID: t.TeamID, Abbrev: t.Tricode, Name: t.Name}
}

type gameDTO struct {
	GameID    string  `json:"game_id"`
	Status    string  `json:"status"`
	Home      teamDTO `json:"home"`
	Away      teamDTO `json:"away"`
	HomeScore int     `json:"home_score"`
	AwayScore int     `json:"away_score"`
	StartsAt  string  `json:"starts_at"` // RFC 3339
	EndedAt   string  `json:"ended_at"`  // RFC 3339, empty unless final
}

func (g gameDTO) toGame(league sports.League, date string) (sports.Game, error) {
	status, err := parseStatus(g.Status)
	if err != nil {
		return sports.Game{}, fmt.Errorf("game %s: %w", g.GameID, err)
	}

	out := sports.Game{
		ID:        g.GameID,
		League:    league,
		Date:      date,
		Status:    status,
		Home:      g.Home.toTeam(),
		Away:      g.Away.toTeam(),
		HomeScore: g.HomeScore,
		AwayScore: g.AwayScore,
	}
	if g.StartsAt != "" {
		if out.StartsAt, err = time.Parse(time.RFC3339, g.StartsAt); err != nil {
			return sports.Game{}, fmt.Errorf("game %s starts_at: %w", g.GameID, err)
		}
	}
	if g.EndedAt != "" {
		if out.EndedAt, err = time.Parse(time.RFC3339, g.EndedAt); err != nil {
			return sports.Game{}, fmt.Errorf("game %s ended_at: %w", g.GameID, err)
		}
	}
	return out, nil
}

func parseStatus(s string) (sports.GameStatus, error) {
	switch s {
	case "scheduled", "pregame":
		return sports.StatusScheduled, nil
	case "live", "in_progress", "halftime":
		return sports.StatusLive, nil
	case "final", "completed":
		return sports.StatusFinal, nil
	default:
		return "", fmt.Errorf("%w: unknown game status %q", ErrValidation, s)
	}
}

type scoreboardDTO struct {
	Games     []gameDTO `json:"games"`
	UpdatedAt string    `json:"updated_at"`
}

func (d scoreboardDTO) toScoreboard(league sports.League, date string) (*sports.Scoreboard, error) {
	out := &sports.Scoreboard{
		League:      league,
		Date:        date,
		LastUpdated: time.Now().UTC(),
		Games:       make([]sports.Game, 0, len(d.Games)),
	}
	if d.UpdatedAt != "" {
		if ts, err := time.Parse(time.RFC3339, d.UpdatedAt); err == nil {
			out.LastUpdated = ts
		}
	}
	for _, g := range d.Games {
		game, err := g.toGame(league, date)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		out.Games = append(out.Games, game)
	}
	return out, nil
}

type boxScoreDTO struct {
	Sport string  `json:"sport"`
	Game  gameDTO `json:"game"`

	Basketball *sports.BasketballBox `json:"basketball"`
	Hockey     *sports.HockeyBox     `json:"hockey"`
	Baseball   *sports.BaseballBox   `json:"baseball"`

	League string `json:"league"`
	Date   string `json:"date"`
}

func (d boxScoreDTO) toBoxScore(gameID string) (*sports.BoxScore, error) {
	league, err := sports.ParseLeague(d.League)
	if err != nil {
		return nil, fmt.Errorf("%w: box score %s: %v", ErrValidation, gameID, err)
	}

	game, err := d.Game.toGame(league, d.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if game.ID == "" {
		game.ID = gameID
	}

	out := &sports.BoxScore{
		GameID:     gameID,
		Sport:      sports.Sport(d.Sport),
		Game:       game,
		Basketball: d.Basketball,
		Hockey:     d.Hockey,
		Baseball:   d.Baseball,
	}

	switch out.Sport {
	case sports.SportBasketball, sports.SportHockey, sports.SportBaseball:
	case "":
		out.Sport = league.Sport()
	default:
		return nil, fmt.Errorf("%w: box score %s has unknown sport %q", ErrValidation, gameID, d.Sport)
	}

	return out, nil
}
