package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/courtside/scoregate/pkg/cache"
	"github.com/courtside/scoregate/pkg/durable"
	"github.com/courtside/scoregate/pkg/policy"
	"github.com/courtside/scoregate/pkg/sports"
)

// Scoreboard resolves a league's game list for one date.
func (o *Orchestrator) Scoreboard(ctx context.Context, league sports.League, date string) (*sports.Scoreboard, *Resolution, error) {
	req := request{
		key:      cache.ScoreboardKey(league, date),
		entity:   sports.EntityScoreboard,
		shortcut: o.emptyDateShortcut(league, date),
		fetch:    o.fetchScoreboard(league, date),
	}

	res, err := o.resolve(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	var board sports.Scoreboard
	if err := res.Entry.Decode(&board); err != nil {
		return nil, nil, fmt.Errorf("decode scoreboard: %w", err)
	}
	return &board, res, nil
}

// emptyDateShortcut serves a verified-empty date without touching the
// upstream. A missing record means the date was never checked and gets no
// shortcut; only a verified gameCount == 0 within the empty TTL does.
func (o *Orchestrator) emptyDateShortcut(league sports.League, date string) func(ctx context.Context) (*fetched, bool, error) {
	if o.durable == nil {
		return nil
	}
	return func(ctx context.Context) (*fetched, bool, error) {
		rec, found, err := o.durable.GetDateRecord(ctx, league, date)
		if err != nil {
			return nil, false, err
		}
		if !found || rec.GameCount > 0 {
			return nil, false, nil
		}
		// A verified-empty record only proves the schedule as of its
		// verification time. Past the empty TTL it falls through to the
		// fetch path, which re-verifies the date and refreshes the record.
		if o.now().Sub(rec.VerifiedAt) > policy.TTLEmpty {
			return nil, false, nil
		}

		board := &sports.Scoreboard{
			League:      league,
			Date:        date,
			LastUpdated: rec.VerifiedAt,
			Games:       []sports.Game{},
		}
		return &fetched{
			value: board,
			state: policy.State{Empty: true},
		}, true, nil
	}
}

// fetchScoreboard builds the upstream fetch for a scoreboard, including
// the post-store date-index update.
func (o *Orchestrator) fetchScoreboard(league sports.League, date string) func(ctx context.Context) (*fetched, error) {
	return func(ctx context.Context) (*fetched, error) {
		board, err := o.provider.FetchScoreboard(ctx, league, date)
		if err != nil {
			return nil, err
		}

		state := policy.State{Empty: len(board.Games) == 0}
		switch {
		case board.AnyLive():
			state.Status = sports.StatusLive
		case board.AllFinal():
			state.Status = sports.StatusFinal
			state.EndedAt = board.LastEnded()
		default:
			state.Status = sports.StatusScheduled
		}

		return &fetched{
			value: board,
			state: state,
			gate:  func() error { return sports.ValidateFinalScoreboard(board) },
			after: func(ctx context.Context) { o.recordDate(ctx, board) },
		}, nil
	}
}

// recordDate refreshes the scoreboard-date index after a fetch. Failures
// only cost a future shortcut, so they are logged and swallowed.
func (o *Orchestrator) recordDate(ctx context.Context, board *sports.Scoreboard) {
	if o.durable == nil {
		return
	}
	rec := durable.DateRecord{
		League:     board.League,
		Date:       board.Date,
		GameCount:  len(board.Games),
		AnyLive:    board.AnyLive(),
		AllFinal:   board.AllFinal(),
		VerifiedAt: o.now(),
	}
	if err := o.durable.UpsertDateRecord(ctx, rec); err != nil {
		o.logger.Warn().Err(err).
			Str("league", string(board.League)).
			Str("date", board.Date).
			Msg("Date index update failed")
	}
}

// BoxScore resolves the full detail for one game.
func (o *Orchestrator) BoxScore(ctx context.Context, gameID string) (*sports.BoxScore, *Resolution, error) {
	req := request{
		key:    cache.BoxScoreKey(gameID),
		entity: sports.EntityBoxScore,
		fetch: func(ctx context.Context) (*fetched, error) {
			box, err := o.provider.FetchBoxScore(ctx, gameID)
			if err != nil {
				return nil, err
			}
			return &fetched{
				value: box,
				state: policy.State{
					Status:  box.Game.Status,
					EndedAt: box.Game.EndedAt,
				},
				gate: func() error { return sports.ValidateFinalBoxScore(box) },
			}, nil
		},
	}

	res, err := o.resolve(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	var box sports.BoxScore
	if err := res.Entry.Decode(&box); err != nil {
		return nil, nil, fmt.Errorf("decode box score: %w", err)
	}
	return &box, res, nil
}

// Standings resolves a league table. Standings shift after every game and
// are never durable.
func (o *Orchestrator) Standings(ctx context.Context, league sports.League, season string) (*sports.Standings, *Resolution, error) {
	req := request{
		key:    cache.StandingsKey(league, season),
		entity: sports.EntityStandings,
		fetch: func(ctx context.Context) (*fetched, error) {
			st, err := o.provider.FetchStandings(ctx, league, season)
			if err != nil {
				return nil, err
			}
			return &fetched{
				value: st,
				state: policy.State{Status: sports.StatusScheduled},
			}, nil
		},
	}

	res, err := o.resolve(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	var st sports.Standings
	if err := res.Entry.Decode(&st); err != nil {
		return nil, nil, fmt.Errorf("decode standings: %w", err)
	}
	return &st, res, nil
}

// VerifiedDates lists the dates with at least one verified game for a
// league, for the /scoreboard/dates surface.
func (o *Orchestrator) VerifiedDates(ctx context.Context, league sports.League) ([]string, error) {
	if o.durable == nil {
		return []string{}, nil
	}
	dates, err := o.durable.ListVerifiedDates(ctx, league)
	if err != nil {
		return nil, fmt.Errorf("list verified dates: %w", err)
	}
	if dates == nil {
		dates = []string{}
	}
	return dates, nil
}

// Health summarizes component health for the /health surface.
type Health struct {
	Status         string `json:"status"` // healthy | degraded | unhealthy
	CacheConnected bool   `json:"cacheConnected"`
	DurableOK      bool   `json:"durableOk"`
	UpstreamOK     bool   `json:"upstreamOk"`
}

// CheckHealth pings each collaborator. A dead durable store is unhealthy;
// a dead fast store or an open upstream backoff window only degrades.
func (o *Orchestrator) CheckHealth(ctx context.Context) Health {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	h := Health{
		CacheConnected: o.fast.Ping(ctx) == nil,
		DurableOK:      o.durable != nil && o.durable.Ping(ctx) == nil,
		UpstreamOK:     o.provider.Healthy(),
	}

	switch {
	case !h.DurableOK:
		h.Status = "unhealthy"
	case !h.CacheConnected || !h.UpstreamOK:
		h.Status = "degraded"
	default:
		h.Status = "healthy"
	}
	return h
}
