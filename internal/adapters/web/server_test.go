package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/tabwarden/internal/adapters/socket"
	"github.com/corey/tabwarden/internal/domain/nudge"
	"github.com/corey/tabwarden/internal/domain/stats"
	"github.com/corey/tabwarden/internal/ports"
)

// mockQueries implements socket.AppQueries for testing.
type mockQueries struct {
	statsErr error
}

func (m *mockQueries) Submit(ports.Event) error { return nil }
func (m *mockQueries) EventCount() uint64       { return 7 }
func (m *mockQueries) GeneratorName() string    { return "gemini" }

func (m *mockQueries) Status() (*socket.StatusResult, error) {
	return &socket.StatusResult{Balance: 85, Streak: 2, PenaltyToday: 15, TopDomains: []string{"reddit.com"}}, nil
}

func (m *mockQueries) Stats() (socket.StatsResult, error) {
	if m.statsErr != nil {
		return socket.StatsResult{}, m.statsErr
	}
	return socket.StatsResult{
		Domains:      []stats.DomainTotal{{Domain: "reddit.com", TodayMs: 900000, TotalMs: 1200000, Count: 3}},
		Count:        1,
		TotalTodayMs: 900000,
	}, nil
}

func (m *mockQueries) Trend() (socket.TrendResult, error) {
	return socket.TrendResult{Days: []stats.TrendRecord{
		{Date: "2026-03-08", TotalDistractionMs: 100},
		{Date: "2026-03-09", TotalDistractionMs: 200},
	}, Count: 2}, nil
}

func (m *mockQueries) Insights() (socket.InsightsResult, error) {
	return socket.InsightsResult{
		LastDistractionFlow: &nudge.Flow{From: "github.com", To: "reddit.com", Timestamp: 1},
		GeminiUsage:         nudge.Usage{Count: 4, LastUsed: 2, Errors: 1},
	}, nil
}

func (m *mockQueries) SetSprint(bool) (socket.SprintResult, error) { return socket.SprintResult{}, nil }
func (m *mockQueries) Reset() error                                 { return nil }

func setupTestServer(t *testing.T, q socket.AppQueries) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(NewServer(q, "", nil).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	ts := setupTestServer(t, &mockQueries{})

	var result socket.HealthResult
	resp := getJSON(t, ts.URL+"/api/health", &result)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, uint64(7), result.Events)
	assert.Equal(t, "gemini", result.Generator)
}

func TestStatusEndpoint(t *testing.T) {
	ts := setupTestServer(t, &mockQueries{})

	var result socket.StatusResult
	resp := getJSON(t, ts.URL+"/api/status", &result)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 85, result.Balance)
	assert.Equal(t, 15, result.PenaltyToday)
}

func TestStatsEndpoint(t *testing.T) {
	ts := setupTestServer(t, &mockQueries{})

	var result socket.StatsResult
	getJSON(t, ts.URL+"/api/stats", &result)
	require.Len(t, result.Domains, 1)
	assert.Equal(t, "reddit.com", result.Domains[0].Domain)
	assert.Equal(t, int64(900000), result.TotalTodayMs)
}

func TestTrendEndpoint(t *testing.T) {
	ts := setupTestServer(t, &mockQueries{})

	var result socket.TrendResult
	getJSON(t, ts.URL+"/api/trend", &result)
	require.Len(t, result.Days, 2)
	assert.Equal(t, "2026-03-09", result.Days[1].Date)
}

func TestInsightsEndpoint(t *testing.T) {
	ts := setupTestServer(t, &mockQueries{})

	var raw map[string]json.RawMessage
	getJSON(t, ts.URL+"/api/insights", &raw)
	assert.Contains(t, raw, "geminiUsage")
	assert.Contains(t, raw, "lastDistractionFlow")
	assert.NotContains(t, raw, "lastNudge", "absent fields are omitted")
}

func TestEndpoint_QueryError(t *testing.T) {
	ts := setupTestServer(t, &mockQueries{statsErr: errors.New("bbolt: database not open")})

	resp := getJSON(t, ts.URL+"/api/stats", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestEndpoint_NotReady(t *testing.T) {
	ts := setupTestServer(t, nil)

	resp := getJSON(t, ts.URL+"/api/status", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = getJSON(t, ts.URL+"/api/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "health works without queries")
}

func TestMethodNotAllowed(t *testing.T) {
	ts := setupTestServer(t, &mockQueries{})

	resp, err := http.Post(ts.URL+"/api/status", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestDefaultPort(t *testing.T) {
	p := DefaultPort("/home/a/.tabwarden")
	assert.GreaterOrEqual(t, p, 19000)
	assert.Less(t, p, 20000)
	assert.Equal(t, p, DefaultPort("/home/a/.tabwarden"))
}

func TestServer_StartWritesPortFile(t *testing.T) {
	portFile := filepath.Join(t.TempDir(), "http.port")
	srv := NewServer(&mockQueries{}, portFile, nil)
	require.NoError(t, srv.Start(0))

	data, err := os.ReadFile(portFile)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(srv.Port()), string(data))

	var result socket.HealthResult
	getJSON(t, srv.URL()+"/api/health", &result)
	assert.Equal(t, "ok", result.Status)

	srv.Stop()
	_, err = os.Stat(portFile)
	assert.True(t, os.IsNotExist(err), "port file removed on stop")
	srv.Stop()
}
