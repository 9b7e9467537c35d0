package control_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"keep-connect/internal/application"
	"keep-connect/internal/domain"
	"keep-connect/internal/infra/control"
)

type mockController struct {
	mu       sync.Mutex
	running  bool
	interval domain.Interval
	starts   int
	stops    int
}

func (m *mockController) Start(interval domain.Interval) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.starts++
	m.running = true
	m.interval = interval
	return nil
}

func (m *mockController) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
	m.running = false
}

func (m *mockController) Status() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return application.CountdownStatus(int(m.interval))
	}
	return application.StatusIdle
}

func (m *mockController) State() application.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return application.StateRunning
	}
	return application.StateIdle
}

func (m *mockController) Interval() domain.Interval {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interval
}

func newServer(token string) (*control.Server, *mockController) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	controller := &mockController{}
	return control.NewServer(":0", token, controller, domain.DefaultInterval, logger), controller
}

func do(t *testing.T, h http.Handler, method, target string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_StartWithDefaultInterval(t *testing.T) {
	server, controller := newServer("")

	rec := do(t, server.Handler(), http.MethodPost, "/start", nil)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, 1, controller.starts)
	require.Equal(t, domain.DefaultInterval, controller.Interval())
}

func TestServer_StartWithInterval(t *testing.T) {
	server, controller := newServer("")

	rec := do(t, server.Handler(), http.MethodPost, "/start?interval=300", nil)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, domain.Interval(300), controller.Interval())
}

func TestServer_StartRejectsUnsupportedInterval(t *testing.T) {
	server, controller := newServer("")

	for _, v := range []string{"7", "abc", "-15"} {
		rec := do(t, server.Handler(), http.MethodPost, "/start?interval="+v, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code, "interval %s", v)
	}
	require.Zero(t, controller.starts)
}

func TestServer_StartWhileRunningConflicts(t *testing.T) {
	server, controller := newServer("")

	do(t, server.Handler(), http.MethodPost, "/start?interval=600", nil)
	rec := do(t, server.Handler(), http.MethodPost, "/start?interval=300", nil)

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, 1, controller.starts)
	require.Equal(t, domain.Interval(600), controller.Interval())
}

func TestServer_StopAndStatus(t *testing.T) {
	server, _ := newServer("")

	do(t, server.Handler(), http.MethodPost, "/start?interval=15", nil)

	rec := do(t, server.Handler(), http.MethodGet, "/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status control.StatusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	require.True(t, status.Running)
	require.Equal(t, application.StateRunning, status.State)
	require.Equal(t, "Next playback in 15 seconds.", status.Status)
	require.Equal(t, 15, status.Interval)
	require.Equal(t, domain.Intervals, status.Intervals)

	rec = do(t, server.Handler(), http.MethodPost, "/stop", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, server.Handler(), http.MethodGet, "/status", nil)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	require.False(t, status.Running)
	require.Equal(t, application.StatusIdle, status.Status)
}

func TestServer_TokenRequired(t *testing.T) {
	authToken := "test-secret-token-123"

	tests := []struct {
		name       string
		target     string
		header     map[string]string
		wantStatus int
	}{
		{"valid token in header", "/start", map[string]string{"X-Auth-Token": authToken}, http.StatusAccepted},
		{"valid token in query", "/start?token=" + authToken, nil, http.StatusAccepted},
		{"invalid token", "/start", map[string]string{"X-Auth-Token": "wrong-token"}, http.StatusUnauthorized},
		{"missing token", "/start", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newServer(authToken)
			rec := do(t, server.Handler(), http.MethodPost, tt.target, tt.header)
			require.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestServer_StatusNeedsNoToken(t *testing.T) {
	server, _ := newServer("secret")

	rec := do(t, server.Handler(), http.MethodGet, "/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_RateLimitsControlRoutes(t *testing.T) {
	server, _ := newServer("")

	var last int
	for i := 0; i < 31; i++ {
		last = do(t, server.Handler(), http.MethodPost, "/stop", nil).Code
	}
	require.Equal(t, http.StatusTooManyRequests, last)

	// Reads are not limited.
	require.Equal(t, http.StatusOK, do(t, server.Handler(), http.MethodGet, "/status", nil).Code)
}

func TestServer_Metrics(t *testing.T) {
	server, _ := newServer("")

	rec := do(t, server.Handler(), http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_HealthLifecycle(t *testing.T) {
	server, _ := newServer("")

	rec := do(t, server.Handler(), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	require.NoError(t, server.Start(context.Background()))
	defer server.Stop()

	rec = do(t, server.Handler(), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := control.NewRateLimiter(2, time.Hour)

	require.True(t, rl.Allow("10.0.0.1"))
	require.True(t, rl.Allow("10.0.0.1"))
	require.False(t, rl.Allow("10.0.0.1"))
	require.True(t, rl.Allow("10.0.0.2"))
}
