// Package server exposes the gateway's REST surface.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/courtside/scoregate/pkg/gateway"
	"github.com/courtside/scoregate/pkg/logging"
	"github.com/courtside/scoregate/pkg/provider"
	"github.com/courtside/scoregate/pkg/sports"
)

// Server wires the REST routes to the orchestrator.
type Server struct {
	orch   *gateway.Orchestrator
	logger zerolog.Logger
}

// New creates a Server.
func New(orch *gateway.Orchestrator) *Server {
	return &Server{
		orch:   orch,
		logger: logging.NewLogger("server"),
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /scoreboard", s.handleScoreboard)
	mux.HandleFunc("GET /scoreboard/dates", s.handleScoreboardDates)
	mux.HandleFunc("GET /games/{id}/boxscore", s.handleBoxScore)
	mux.HandleFunc("GET /standings", s.handleStandings)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s.withRequestContext(mux)
}

// meta is the response metadata envelope.
type meta struct {
	CacheHit    bool   `json:"cacheHit"`
	Source      string `json:"source"`
	StorageType string `json:"storageType"`
}

func newMeta(res *gateway.Resolution) meta {
	return meta{
		CacheHit:    res.CacheHit(),
		Source:      string(res.Source),
		StorageType: res.StorageType(),
	}
}

func (s *Server) handleScoreboard(w http.ResponseWriter, r *http.Request) {
	league, err := sports.ParseLeague(r.URL.Query().Get("league"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_league", err.Error())
		return
	}
	date := r.URL.Query().Get("date")
	if !sports.ValidDate(date) {
		writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
		return
	}

	board, res, err := s.orch.Scoreboard(r.Context(), league, date)
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data": board,
		"meta": newMeta(res),
	})
}

func (s *Server) handleScoreboardDates(w http.ResponseWriter, r *http.Request) {
	league, err := sports.ParseLeague(r.URL.Query().Get("league"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_league", err.Error())
		return
	}

	dates, err := s.orch.VerifiedDates(r.Context(), league)
	if err != nil {
		s.logger.Error().Err(err).Msg("Verified dates lookup failed")
		writeError(w, http.StatusInternalServerError, "internal", "date index unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": dates})
}

func (s *Server) handleBoxScore(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	if gameID == "" {
		writeError(w, http.StatusBadRequest, "invalid_game", "game id is required")
		return
	}

	box, res, err := s.orch.BoxScore(r.Context(), gameID)
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"game":     box.Game,
			"boxScore": box,
		},
		"meta": newMeta(res),
	})
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	league, err := sports.ParseLeague(r.URL.Query().Get("league"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_league", err.Error())
		return
	}
	season := r.URL.Query().Get("season")
	if season == "" {
		writeError(w, http.StatusBadRequest, "invalid_season", "season is required")
		return
	}

	st, res, err := s.orch.Standings(r.Context(), league, season)
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data": st,
		"meta": newMeta(res),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := s.orch.CheckHealth(r.Context())

	status := http.StatusOK
	if h.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status": h.Status,
		"cache": map[string]any{
			"connected": h.CacheConnected,
		},
		"durable":  h.DurableOK,
		"upstream": h.UpstreamOK,
	})
}

// writeUpstreamError maps the upstream error taxonomy onto HTTP statuses.
// By the time an error reaches here the orchestrator had no cached data to
// fall back on.
func (s *Server) writeUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, provider.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "entity not found")
	case errors.Is(err, provider.ErrUpstreamRateLimited):
		w.Header().Set("Retry-After", "30")
		writeError(w, http.StatusServiceUnavailable, "rate_limited", "upstream rate limited, retry later")
	case errors.Is(err, provider.ErrValidation):
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Upstream payload rejected")
		writeError(w, http.StatusBadGateway, "upstream_invalid", "upstream returned invalid data")
	case errors.Is(err, context.Canceled), errors.Is(err, provider.ErrContextCancelled):
		// Client went away; nothing useful to write.
		writeError(w, 499, "cancelled", "request cancelled")
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Upstream fetch failed")
		writeError(w, http.StatusBadGateway, "upstream_unavailable", "upstream fetch failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// ListenAndServe runs the HTTP server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info().Str("addr", addr).Msg("Server listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
