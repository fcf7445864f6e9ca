package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/courtside/scoregate/internal/server"
	"github.com/courtside/scoregate/pkg/cache"
	"github.com/courtside/scoregate/pkg/ingest"
	"github.com/courtside/scoregate/pkg/sports"
)

var (
	ingestLeague string
	ingestFrom   string
	ingestTo     string
	ingestJobs   int

	invalidateGame   string
	invalidateDate   string
	invalidateLeague string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := server.New(a.orch)
		if err := srv.ListenAndServe(ctx, a.cfg.ListenAddr); err != nil {
			return fmt.Errorf("server: %w", err)
		}
		a.logger.Info().Msg("Server stopped")
		return nil
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Populate the scoreboard-date index over a date window",
	RunE: func(cmd *cobra.Command, args []string) error {
		league, err := sports.ParseLeague(ingestLeague)
		if err != nil {
			return err
		}
		from, err := time.Parse("2006-01-02", ingestFrom)
		if err != nil {
			return fmt.Errorf("parse --from: %w", err)
		}
		to, err := time.Parse("2006-01-02", ingestTo)
		if err != nil {
			return fmt.Errorf("parse --to: %w", err)
		}

		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		ing := ingest.New(a.orch, ingest.Config{MaxConcurrency: ingestJobs})
		summary, err := ing.IngestWindow(cmd.Context(), league, from, to)
		if err != nil {
			return err
		}
		fmt.Printf("ingested %d dates (%d empty, %d failed)\n",
			summary.Dates, summary.Empty, summary.Failed)
		return nil
	},
}

var invalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Remove an entity from both stores so the next request refetches it",
	Long: `Invalidate is the sanctioned path to replace a durable entry after an
upstream stat correction: the entry is deleted from the durable and fast
stores and the next request writes a fresh one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := invalidationKey()
		if err != nil {
			return err
		}

		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.orch.Invalidate(cmd.Context(), key); err != nil {
			return err
		}
		fmt.Printf("invalidated %s\n", key)
		return nil
	},
}

func invalidationKey() (cache.Key, error) {
	switch {
	case invalidateGame != "":
		return cache.BoxScoreKey(invalidateGame), nil
	case invalidateDate != "" && invalidateLeague != "":
		league, err := sports.ParseLeague(invalidateLeague)
		if err != nil {
			return cache.Key{}, err
		}
		if !sports.ValidDate(invalidateDate) {
			return cache.Key{}, fmt.Errorf("--date must be YYYY-MM-DD")
		}
		return cache.ScoreboardKey(league, invalidateDate), nil
	default:
		return cache.Key{}, fmt.Errorf("pass --game, or --league with --date")
	}
}

func init() {
	ingestCmd.Flags().StringVar(&ingestLeague, "league", "", "league slug (required)")
	ingestCmd.Flags().StringVar(&ingestFrom, "from", "", "window start, YYYY-MM-DD (required)")
	ingestCmd.Flags().StringVar(&ingestTo, "to", "", "window end, YYYY-MM-DD (required)")
	ingestCmd.Flags().IntVar(&ingestJobs, "jobs", 4, "parallel date fetches")
	_ = ingestCmd.MarkFlagRequired("league")
	_ = ingestCmd.MarkFlagRequired("from")
	_ = ingestCmd.MarkFlagRequired("to")

	invalidateCmd.Flags().StringVar(&invalidateGame, "game", "", "game id to invalidate")
	invalidateCmd.Flags().StringVar(&invalidateLeague, "league", "", "league for --date")
	invalidateCmd.Flags().StringVar(&invalidateDate, "date", "", "scoreboard date to invalidate")

	rootCmd.AddCommand(serveCmd, ingestCmd, invalidateCmd)
}
