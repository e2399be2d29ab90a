package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd309/contagion-engine/internal/agent"
	"github.com/cxd309/contagion-engine/internal/config"
	"github.com/cxd309/contagion-engine/internal/engine"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter(mutate func(*config.Config)) *gin.Engine {
	cfg := config.DefaultConfig()
	cfg.Server.RateLimit = 0
	if mutate != nil {
		mutate(&cfg)
	}
	return NewRouter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func post(t *testing.T, r http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const smallRun = `{"population": 10, "infection_radius": 0, "infection_probability": 1, "steps": 5, "seed": 42}`

func TestHandleRun(t *testing.T) {
	w := post(t, testRouter(nil), "/v1/simulations", smallRun)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	var h engine.History
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &h))
	require.Equal(t, 5, h.Len())
	for _, s := range h.Snapshots {
		assert.Equal(t, 1, s.Count(agent.StateInfected))
	}
}

func TestHandleRun_RequestIDPropagated(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/simulations", bytes.NewBufferString(smallRun))
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	testRouter(nil).ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestHandleRun_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"malformed body", `{"population":`, "INVALID_REQUEST"},
		{"invalid config", `{"population": 0, "steps": 5}`, "INVALID_CONFIG"},
		{"explicit zero box size", `{"population": 10, "steps": 5, "box_size": 0}`, "INVALID_CONFIG"},
		{"explicit zero init infected", `{"population": 10, "steps": 5, "init_infected": 0}`, "INVALID_CONFIG"},
		{"immunized fraction of one", `{"population": 10, "steps": 5, "immunized_fraction": 1}`, "INVALID_CONFIG"},
		{"over limit", `{"population": 100000, "steps": 5}`, "INVALID_CONFIG"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := post(t, testRouter(nil), "/v1/simulations", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantCode, resp.Code)
			if tc.wantCode == "INVALID_CONFIG" {
				assert.NotEmpty(t, resp.Violations)
			}
		})
	}
}

func TestHandleRun_SameSeedSameBody(t *testing.T) {
	r := testRouter(nil)
	a := post(t, r, "/v1/simulations", smallRun)
	b := post(t, r, "/v1/simulations", smallRun)
	require.Equal(t, http.StatusOK, a.Code)
	assert.Equal(t, a.Body.String(), b.Body.String())
}

func TestHandleSummary(t *testing.T) {
	w := post(t, testRouter(nil), "/v1/simulations/summary", smallRun)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp SummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []int{1, 1, 1, 1, 1}, resp.InfectedSeries)
	assert.Len(t, resp.StateSeries, 5)
	assert.Len(t, resp.FinalState[agent.StateInfected], 1)
	assert.Len(t, resp.FinalState[agent.StateHealthy], 9)
	assert.Equal(t, 1, resp.Summary.PeakCount)
}

func TestHandleBatch(t *testing.T) {
	body := `{"configs": [` + smallRun + `, ` + smallRun + `], "concurrency": 8}`
	w := post(t, testRouter(nil), "/v1/simulations/batch", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp BatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, resp.Results[0], resp.Results[1], "identical seeded configs give identical runs")
	assert.NotEmpty(t, resp.Results[0].RunID)
}

func TestHandleBatch_Errors(t *testing.T) {
	w := post(t, testRouter(nil), "/v1/simulations/batch", `{"configs": []}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(t, testRouter(nil), "/v1/simulations/batch", `{"configs": [{"population": 1, "steps": 0}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_CONFIG")
}

func TestRateLimit(t *testing.T) {
	r := testRouter(func(c *config.Config) {
		c.Server.RateLimit = 0.001
		c.Server.Burst = 1
	})
	assert.Equal(t, http.StatusOK, post(t, r, "/v1/simulations", smallRun).Code)
	w := post(t, r, "/v1/simulations", smallRun)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
}

func TestHealthAndMetrics(t *testing.T) {
	r := testRouter(nil)
	post(t, r, "/v1/simulations", smallRun)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "contagion_runs_total")
	assert.Contains(t, w.Body.String(), "contagion_ticks_total")
}
