package sports

import (
	"errors"
	"fmt"
)

// ErrIncomplete marks a final-flagged entity whose detail substructure is
// missing or empty. Such an entity must never be written to durable
// storage: the upstream sets the final flag before stat population
// completes, and a durably stored empty payload poisons every future read
// of that key.
var ErrIncomplete = errors.New("final entity has incomplete substructure")

// ValidateFinalBoxScore is the durability gate for box scores. It returns
// nil only when the game is final and the sport-specific stat lines are
// populated on both sides.
func ValidateFinalBoxScore(b *BoxScore) error {
	if b == nil {
		return fmt.Errorf("%w: nil box score", ErrIncomplete)
	}
	if b.Game.Status != StatusFinal {
		return fmt.Errorf("game %s is not final", b.GameID)
	}

	switch b.Sport {
	case SportBasketball:
		if b.Basketball == nil || len(b.Basketball.HomePlayers) == 0 || len(b.Basketball.AwayPlayers) == 0 {
			return fmt.Errorf("%w: game %s basketball player lines empty", ErrIncomplete, b.GameID)
		}
	case SportHockey:
		if b.Hockey == nil || len(b.Hockey.HomeSkaters) == 0 || len(b.Hockey.AwaySkaters) == 0 {
			return fmt.Errorf("%w: game %s hockey skater lines empty", ErrIncomplete, b.GameID)
		}
	case SportBaseball:
		if b.Baseball == nil || len(b.Baseball.HomeBatters) == 0 || len(b.Baseball.AwayBatters) == 0 {
			return fmt.Errorf("%w: game %s baseball batting lines empty", ErrIncomplete, b.GameID)
		}
	default:
		return fmt.Errorf("%w: game %s has unknown sport %q", ErrIncomplete, b.GameID, b.Sport)
	}

	return nil
}

// ValidateFinalScoreboard is the durability gate for scoreboards. A board
// may be durably stored only when it has games, every game is final, and
// every game carries a settled score and participants.
func ValidateFinalScoreboard(s *Scoreboard) error {
	if s == nil || len(s.Games) == 0 {
		return fmt.Errorf("%w: empty scoreboard", ErrIncomplete)
	}
	if !s.AllFinal() {
		return fmt.Errorf("scoreboard %s/%s is not all final", s.League, s.Date)
	}
	for _, g := range s.Games {
		if g.Home.ID == "" || g.Away.ID == "" {
			return fmt.Errorf("%w: game %s missing participants", ErrIncomplete, g.ID)
		}
		if g.HomeScore == 0 && g.AwayScore == 0 {
			return fmt.Errorf("%w: game %s final with zero-zero score", ErrIncomplete, g.ID)
		}
	}
	return nil
}
