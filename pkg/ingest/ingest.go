// Package ingest populates the scoreboard-date index over a date window
// using a bounded worker pool. Every fetched date flows through the
// orchestrator, so the index, the durable store and the fast store are all
// warmed in one pass.
package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/courtside/scoregate/pkg/gateway"
	"github.com/courtside/scoregate/pkg/sports"
)

// Config holds ingestion configuration.
type Config struct {
	// MaxConcurrency is the number of parallel date fetches. The upstream
	// adapter paces actual requests, so this only bounds in-process
	// parallelism.
	MaxConcurrency int
}

// DefaultConfig returns safe ingestion defaults.
func DefaultConfig() Config {
	return Config{MaxConcurrency: 4}
}

// Summary reports one ingestion run.
type Summary struct {
	Dates  int
	Empty  int
	Failed int
}

// Ingestor drives date-window ingestion through the orchestrator.
type Ingestor struct {
	orch   *gateway.Orchestrator
	config Config
	logger zerolog.Logger
}

// New creates an ingestor.
func New(orch *gateway.Orchestrator, cfg Config) *Ingestor {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 4
	}
	return &Ingestor{
		orch:   orch,
		config: cfg,
		logger: log.With().Str("component", "ingest").Logger(),
	}
}

// IngestWindow fetches every date in [from, to] for a league. Failures on
// individual dates are counted, logged and skipped; the run continues.
func (i *Ingestor) IngestWindow(ctx context.Context, league sports.League, from, to time.Time) (Summary, error) {
	if to.Before(from) {
		return Summary{}, fmt.Errorf("window end %s before start %s",
			to.Format("2006-01-02"), from.Format("2006-01-02"))
	}

	start := time.Now()
	dates := make(chan string)

	var summary Summary
	var mu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < i.config.MaxConcurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for date := range dates {
				board, _, err := i.orch.Scoreboard(ctx, league, date)

				mu.Lock()
				summary.Dates++
				switch {
				case err != nil:
					summary.Failed++
				case len(board.Games) == 0:
					summary.Empty++
				}
				mu.Unlock()

				if err != nil {
					i.logger.Warn().Err(err).
						Str("league", string(league)).
						Str("date", date).
						Msg("Date ingestion failed")
				}
			}
		}()
	}

	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		select {
		case <-ctx.Done():
			close(dates)
			wg.Wait()
			return summary, ctx.Err()
		case dates <- d.Format("2006-01-02"):
		}
	}
	close(dates)
	wg.Wait()

	i.logger.Info().
		Str("league", string(league)).
		Int("dates", summary.Dates).
		Int("empty", summary.Empty).
		Int("failed", summary.Failed).
		Dur("duration", time.Since(start)).
		Msg("Ingestion window complete")

	return summary, nil
}
