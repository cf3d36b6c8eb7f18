package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenLauncher/internal/chain"
	"tokenLauncher/internal/launch"
	"tokenLauncher/internal/metrics"
	"tokenLauncher/internal/model"
	"tokenLauncher/internal/pinning"
	"tokenLauncher/internal/storage/memory"
)

type stubLauncher struct {
	mu       sync.Mutex
	requests []model.LaunchRequest
	result   *model.LaunchResult
	err      error
}

func (l *stubLauncher) Launch(_ context.Context, req model.LaunchRequest) (*model.LaunchResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.requests = append(l.requests, req)
	if l.err != nil {
		return nil, l.err
	}
	return l.result, nil
}

func newTestServer(t *testing.T, launcher launch.Launcher, cfg Config) (*httptest.Server, *memory.TokenStore) {
	t.Helper()
	store := memory.NewTokenStore()
	srv := NewServer(cfg, launcher, store, metrics.New(prometheus.NewRegistry()), nil)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts, store
}

func postLaunch(t *testing.T, ts *httptest.Server, body string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/launch-token", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func TestLaunchCreated(t *testing.T) {
	launcher := &stubLauncher{result: &model.LaunchResult{TokenAddress: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"}}
	ts, _ := newTestServer(t, launcher, Config{})

	status, body := postLaunch(t, ts, `{"name":"Nani","symbol":"NNF","image_url":"https://x/y.png"}`)

	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, map[string]interface{}{
		"success":       true,
		"message":       "Token launched successfully",
		"token_address": "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
	}, body)
	require.Len(t, launcher.requests, 1)
	assert.Equal(t, "https://x/y.png", launcher.requests[0].ImageURL)
}

func TestLaunchErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", func() error { _, err := launch.Validate(model.LaunchRequest{Symbol: "NNF"}); return err }(), http.StatusBadRequest, "Name, symbol are required"},
		{"upstream", &launch.Error{Kind: launch.KindUpstream, Err: &pinning.UpstreamError{Stage: pinning.StagePin}}, http.StatusInternalServerError, "Failed to launch token"},
		{"simulation", &launch.Error{Kind: launch.KindChainSimulation, Err: &chain.SimulationError{Method: "make"}}, http.StatusInternalServerError, "Failed to launch token"},
		{"execution", &launch.Error{Kind: launch.KindChainExecution, Err: &chain.ExecutionError{Stage: chain.ExecSend}}, http.StatusInternalServerError, "Failed to launch token"},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "Failed to launch token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts, _ := newTestServer(t, &stubLauncher{err: tc.err}, Config{})

			status, body := postLaunch(t, ts, `{"name":"Nani","symbol":"NNF"}`)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tc.msg, body["error"])
		})
	}
}

func TestLaunchMalformedJSON(t *testing.T) {
	launcher := &stubLauncher{}
	ts, _ := newTestServer(t, launcher, Config{})

	status, body := postLaunch(t, ts, `{"name":`)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Name, symbol are required", body["error"])
	assert.Empty(t, launcher.requests)
}

func TestLaunchShortCircuitEmptyName(t *testing.T) {
	ts, _ := newTestServer(t, &launch.ShortCircuit{}, Config{})

	status, body := postLaunch(t, ts, `{"name":"","symbol":"NNF"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Name, symbol are required", body["error"])

	status, body = postLaunch(t, ts, `{"name":"Nani","symbol":"NNF"}`)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "0x0000000000000000000000000000000000000000", body["token_address"])
}

func TestLaunchRateLimited(t *testing.T) {
	launcher := &stubLauncher{result: &model.LaunchResult{TokenAddress: "0x0000000000000000000000000000000000000000"}}
	ts, _ := newTestServer(t, launcher, Config{RateLimit: 0.001, RateBurst: 1})

	status, _ := postLaunch(t, ts, `{"name":"Nani","symbol":"NNF"}`)
	require.Equal(t, http.StatusCreated, status)

	status, body := postLaunch(t, ts, `{"name":"Nani","symbol":"NNF"}`)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "Too many requests", body["error"])
	assert.Len(t, launcher.requests, 1)
}

func TestGetToken(t *testing.T) {
	ts, store := newTestServer(t, &stubLauncher{}, Config{})
	id, err := store.Insert(context.Background(), &model.TokenRecord{
		Name:         "Nani",
		Symbol:       "NNF",
		TokenAddress: model.OptionalString("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"),
		ImageURL:     model.PlaceholderImage.String(),
	})
	require.NoError(t, err)

	resp, err := http.Get(ts.URL + "/tokens/1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success bool              `json:"success"`
		Data    model.TokenRecord `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, id, body.Data.ID)
	assert.Equal(t, "NNF", body.Data.Symbol)
	assert.Nil(t, body.Data.Description)
}

func TestGetTokenErrors(t *testing.T) {
	ts, _ := newTestServer(t, &stubLauncher{}, Config{})

	for path, want := range map[string]int{
		"/tokens/42":  http.StatusNotFound,
		"/tokens/abc": http.StatusBadRequest,
		"/tokens/-1":  http.StatusBadRequest,
	} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, want, resp.StatusCode, path)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	ts, _ := newTestServer(t, &stubLauncher{}, Config{})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	ts, _ := newTestServer(t, &stubLauncher{}, Config{CORSOrigins: []string{"https://app.nani.fun"}})

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/launch-token", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.nani.fun")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "https://app.nani.fun", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestIPLimiterEvictsIdle(t *testing.T) {
	l := newIPLimiter(1, 1, time.Minute)
	now := time.Unix(1_700_000_000, 0)

	assert.True(t, l.Allow("10.0.0.1", now))
	assert.False(t, l.Allow("10.0.0.1", now))
	assert.True(t, l.Allow("", now))

	later := now.Add(time.Hour)
	for i := 0; i < 511; i++ {
		l.Allow("10.0.0.2", later)
	}
	assert.Equal(t, 1, l.size(), "idle key should be evicted")

	var disabled *ipLimiter
	assert.True(t, disabled.Allow("10.0.0.1", now))
}

func TestClientIP(t *testing.T) {
	assert.Equal(t, "10.0.0.1", clientIP("10.0.0.1:5555"))
	assert.Equal(t, "10.0.0.1", clientIP("10.0.0.1"))
	assert.Equal(t, "::1", clientIP("[::1]:80"))
}
