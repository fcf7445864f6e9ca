// Package provider is the adapter for the upstream sports-data API. It is
// the only component that talks to the upstream, and it owns request
// pacing, timeouts, retries and the upstream error taxonomy.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/courtside/scoregate/pkg/ratelimit"
	"github.com/courtside/scoregate/pkg/sports"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scoregate_upstream_requests_total",
		Help: "Total upstream requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scoregate_upstream_request_duration_seconds",
		Help:    "Upstream request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scoregate_upstream_errors_total",
		Help: "Total upstream errors by class",
	}, []string{"class"})
)

// Config holds the adapter configuration.
type Config struct {
	// BaseURL is the upstream API root, e.g. "https://api.sportsfeed.example".
	BaseURL string

	// APIKey is sent as X-Api-Key on every request.
	APIKey string

	// RequestsPerSecond paces outgoing requests below the upstream quota.
	RequestsPerSecond float64

	// Burst is the pacing burst size.
	Burst int

	// Timeout bounds each upstream call, retries included per attempt.
	Timeout time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL, apiKey string) Config {
	return Config{
		BaseURL:           baseURL,
		APIKey:            apiKey,
		RequestsPerSecond: 5,
		Burst:             5,
		Timeout:           30 * time.Second,
	}
}

// Client fetches entities from the upstream provider.
type Client struct {
	httpClient *http.Client
	config     Config
	limiter    *rate.Limiter
	backoff    *ratelimit.Tracker
	logger     zerolog.Logger
}

// New creates an upstream adapter.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("upstream base URL is required")
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "provider").Logger()

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		config:     cfg,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		backoff:    ratelimit.NewTracker(logger),
		logger:     logger,
	}, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Healthy reports whether the adapter is currently willing to call
// upstream (no backoff window active).
func (c *Client) Healthy() bool {
	return c.backoff.Healthy()
}

// FetchScoreboard returns the upstream game list for (league, date).
func (c *Client) FetchScoreboard(ctx context.Context, league sports.League, date string) (*sports.Scoreboard, error) {
	var dto scoreboardDTO
	path := fmt.Sprintf("/v1/%s/scoreboard", league)
	if err := c.getJSON(ctx, path, url.Values{"date": []string{date}}, &dto); err != nil {
		return nil, err
	}
	return dto.toScoreboard(league, date)
}

// FetchBoxScore returns the full detail for a single game.
func (c *Client) FetchBoxScore(ctx context.Context, gameID string) (*sports.BoxScore, error) {
	var dto boxScoreDTO
	path := fmt.Sprintf("/v1/games/%s/boxscore", url.PathEscape(gameID))
	if err := c.getJSON(ctx, path, nil, &dto); err != nil {
		return nil, err
	}
	return dto.toBoxScore(gameID)
}

// FetchStandings returns the league table for (league, season).
func (c *Client) FetchStandings(ctx context.Context, league sports.League, season string) (*sports.Standings, error) {
	var out sports.Standings
	path := fmt.Sprintf("/v1/%s/standings", league)
	if err := c.getJSON(ctx, path, url.Values{"season": []string{season}}, &out); err != nil {
		return nil, err
	}
	out.League = league
	out.Season = season
	return &out, nil
}

// getJSON performs one logical upstream GET: backoff gate, pacing, retry
// per error class, then JSON decode into v.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, v any) error {
	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}()

	// Refuse locally while the upstream's Retry-After window is open.
	if ok, wait := c.backoff.Allow(); !ok {
		requestsTotal.WithLabelValues(path, "backoff").Inc()
		return &Error{
			StatusCode: http.StatusTooManyRequests,
			Class:      ErrorClassRateLimit,
			Message:    fmt.Sprintf("backoff window open for %s", wait.Round(time.Second)),
			Err:        ErrUpstreamRateLimited,
		}
	}

	// Pace below the upstream request quota.
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrContextCancelled, err)
	}

	reqURL := c.config.BaseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var body []byte

	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return &Error{Class: ErrorClassClient, Message: "build request", Err: err}
		}
		req.Header.Set("Accept", "application/json")
		if c.config.APIKey != "" {
			req.Header.Set("X-Api-Key", c.config.APIKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			requestsTotal.WithLabelValues(path, "network_error").Inc()
			return &Error{
				Class:   ErrorClassNetwork,
				Message: "request failed",
				Err:     fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err),
			}
		}
		defer resp.Body.Close()

		requestsTotal.WithLabelValues(path, strconv.Itoa(resp.StatusCode)).Inc()

		switch {
		case resp.StatusCode == http.StatusOK:
			body, err = io.ReadAll(resp.Body)
			if err != nil {
				errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
				return &Error{
					Class:   ErrorClassNetwork,
					Message: "read body",
					Err:     fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err),
				}
			}
			return nil

		case resp.StatusCode == http.StatusNotFound:
			errorsTotal.WithLabelValues(string(ErrorClassClient)).Inc()
			return &Error{
				StatusCode: resp.StatusCode,
				Class:      ErrorClassClient,
				Message:    resp.Status,
				Err:        ErrNotFound,
			}

		case resp.StatusCode == http.StatusTooManyRequests:
			errorsTotal.WithLabelValues(string(ErrorClassRateLimit)).Inc()
			c.backoff.Block(parseRetryAfter(resp.Header))
			return &Error{
				StatusCode: resp.StatusCode,
				Class:      ErrorClassRateLimit,
				Message:    resp.Status,
				Err:        ErrUpstreamRateLimited,
			}

		case resp.StatusCode >= 500:
			errorsTotal.WithLabelValues(string(ErrorClassServer)).Inc()
			return &Error{
				StatusCode: resp.StatusCode,
				Class:      ErrorClassServer,
				Message:    resp.Status,
				Err:        ErrUpstreamUnavailable,
			}

		default:
			errorsTotal.WithLabelValues(string(ErrorClassClient)).Inc()
			return &Error{
				StatusCode: resp.StatusCode,
				Class:      ErrorClassClient,
				Message:    resp.Status,
				Err:        ErrUpstreamUnavailable,
			}
		}
	}

	err := retryWithBackoff(ctx, attempt, classOf)
	if err != nil {
		c.logger.Warn().Err(err).Str("endpoint", path).Msg("Upstream fetch failed")
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassClient)).Inc()
		c.logger.Error().Err(err).Str("endpoint", path).
			Int("body_bytes", len(body)).
			Msg("Upstream payload failed to decode")
		return fmt.Errorf("%w: decode %s: %v", ErrValidation, path, err)
	}

	return nil
}

// classOf extracts the error class for retry decisions.
func classOf(err error) ErrorClass {
	if e, ok := err.(*Error); ok {
		return e.Class
	}
	return ErrorClassNetwork
}

// parseRetryAfter reads a Retry-After header in seconds form.
// Zero selects the tracker's default window.
func parseRetryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
