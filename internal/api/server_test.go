package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func serve(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServer_Healthz(t *testing.T) {
	t.Parallel()

	rec := serve(t, NewServer(zap.NewNop()), "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServer_Readyz(t *testing.T) {
	t.Parallel()

	s := NewServer(zap.NewNop())
	require.Equal(t, http.StatusServiceUnavailable, serve(t, s, "/readyz").Code)
	s.SetReady(true)
	require.Equal(t, http.StatusOK, serve(t, s, "/readyz").Code)
}

func TestServer_Metrics(t *testing.T) {
	t.Parallel()

	s := NewServer(zap.NewNop())
	_ = serve(t, s, "/healthz")
	rec := serve(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestServer_LastRun(t *testing.T) {
	t.Parallel()

	s := NewServer(zap.NewNop())
	require.Equal(t, http.StatusNotFound, serve(t, s, "/v1/runs/last").Code)

	started := time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC)
	s.RecordRun(RunSummary{
		RunID:      "run-1",
		StartedAt:  started,
		FinishedAt: started.Add(time.Minute),
		Pages:      3,
		Records:    2,
		Failures:   map[string]int{"lyrics_missing": 1},
	})

	rec := serve(t, s, "/v1/runs/last")
	require.Equal(t, http.StatusOK, rec.Code)
	var got RunSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "run-1", got.RunID)
	require.Equal(t, 1, got.Failures["lyrics_missing"])
	require.True(t, got.StartedAt.Equal(started))
}

func TestServer_RecoversPanics(t *testing.T) {
	t.Parallel()

	s := NewServer(zap.NewNop())
	s.router.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })
	rec := serve(t, s, "/boom")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "internal server error")
}

func TestServer_ListenAndServeStopsOnCancel(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer(zap.NewNop()).ListenAndServe(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
