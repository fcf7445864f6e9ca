// Package testutil provides testing utilities for the gateway.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior for one mock upstream endpoint.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockProvider is a configurable mock of the upstream sports API.
type MockProvider struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	requestCount int
	pathCounts   map[string]int
	lastAPIKey   string
}

// NewMockProvider creates a mock upstream server. Unconfigured paths
// answer 404.
func NewMockProvider() *MockProvider {
	mock := &MockProvider{
		handlers:   make(map[string]func(w http.ResponseWriter, r *http.Request)),
		pathCounts: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount++
		mock.pathCounts[r.URL.Path]++
		mock.lastAPIKey = r.Header.Get("X-Api-Key")
		handler := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if handler != nil {
			handler(w, r)
			return
		}

		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"not found"}`)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockProvider) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockProvider) Close() {
	m.server.Close()
}

// RequestCount returns the total number of requests received.
func (m *MockProvider) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// PathCount returns the number of requests received for one path.
func (m *MockProvider) PathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pathCounts[path]
}

// LastAPIKey returns the X-Api-Key header of the last request.
func (m *MockProvider) LastAPIKey() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastAPIKey
}

// Reset clears all tracking counters.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.pathCounts = make(map[string]int)
}

// SetHandler sets a custom handler for a path.
func (m *MockProvider) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockProvider) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		status := resp.StatusCode
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		fmt.Fprint(w, resp.Body)
	})
}

// ScoreboardJSON builds an upstream-format scoreboard body with the given
// game fragments.
func ScoreboardJSON(games ...string) string {
	body := `{"updated_at":"2026-01-15T22:00:00Z","games":[`
	for i, g := range games {
		if i > 0 {
			body += ","
		}
		body += g
	}
	return body + `]}`
}

// GameJSON builds one upstream-format game fragment.
func GameJSON(id, status string, homeScore, awayScore int) string {
	endedAt := ""
	if status == "final" {
		endedAt = `,"ended_at":"2026-01-15T21:30:00Z"`
	}
	return fmt.Sprintf(`{"game_id":%q,"status":%q,`+
		`"home":{"team_id":"t1","tricode":"AAA","full_name":"Alphas"},`+
		`"away":{"team_id":"t2","tricode":"BBB","full_name":"Bravos"},`+
		`"home_score":%d,"away_score":%d,"starts_at":"2026-01-15T19:00:00Z"%s}`,
		id, status, homeScore, awayScore, endedAt)
}

// BoxScoreJSON builds an upstream-format basketball box score body.
// Pass empty player arrays to simulate the final-flag/stat-population race.
func BoxScoreJSON(gameID, status string, withPlayers bool) string {
	players := `[]`
	if withPlayers {
		players = `[{"playerId":"p1","name":"A. Guard","minutes":34,"points":27,"rebounds":5,"assists":8}]`
	}
	return fmt.Sprintf(`{"sport":"basketball","league":"nba","date":"2026-01-15",`+
		`"game":%s,"basketball":{"homePlayers":%s,"awayPlayers":%s}}`,
		GameJSON(gameID, status, 101, 99), players, players)
}
