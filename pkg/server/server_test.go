package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/songbook/pkg/catalog"
	"github.com/getmockd/songbook/pkg/config"
)

func testConfig() *config.Config {
	cfg := config.NewDefault()
	cfg.Port = 0
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	srv, err := New(cfg, catalog.NewDefaultMemoryStore())
	require.NoError(t, err)
	return srv
}

func serve(srv *Server, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestNew(t *testing.T) {
	t.Run("requires a store", func(t *testing.T) {
		_, err := New(testConfig(), nil)
		assert.Error(t, err)
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		cfg := testConfig()
		cfg.Path = "graphql"
		_, err := New(cfg, catalog.NewDefaultMemoryStore())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("nil config uses defaults", func(t *testing.T) {
		srv, err := New(nil, catalog.NewDefaultMemoryStore())
		require.NoError(t, err)
		assert.NotNil(t, srv.Metrics())
	})

	t.Run("metrics disabled", func(t *testing.T) {
		cfg := testConfig()
		cfg.Metrics = false
		srv := newTestServer(t, cfg)
		assert.Nil(t, srv.Metrics())
	})
}

func TestGraphQLRoute(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := serve(srv, http.MethodPost, "/graphql", `{"query":"{ author(id: 2) { name } }"}`,
		map[string]string{"Content-Type": "application/json"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"author":{"name":"Black Sabath"}}}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestCustomPath(t *testing.T) {
	cfg := testConfig()
	cfg.Path = "/api"
	srv := newTestServer(t, cfg)

	rec := serve(srv, http.MethodPost, "/api", `{"query":"{ authors { id } }"}`,
		map[string]string{"Content-Type": "application/json"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(srv, http.MethodPost, "/graphql", `{"query":"{ authors { id } }"}`,
		map[string]string{"Content-Type": "application/json"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := serve(srv, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 5, health.Authors)
	assert.Equal(t, 7, health.Songs)

	serve(srv, http.MethodPost, "/graphql", `{"query":"mutation { addAuthor(name: \"Dio\") { id } }"}`,
		map[string]string{"Content-Type": "application/json"})

	rec = serve(srv, http.MethodGet, "/healthz", "", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, 6, health.Authors)

	rec = serve(srv, http.MethodPost, "/healthz", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
}

func TestMetricsRoute(t *testing.T) {
	srv := newTestServer(t, testConfig())

	serve(srv, http.MethodPost, "/graphql", `{"query":"{ songs { name } }"}`,
		map[string]string{"Content-Type": "application/json"})

	rec := serve(srv, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `songbook_http_requests_total{method="POST",route="/graphql",status="200"} 1`)
	assert.Contains(t, body, `songbook_graphql_operations_total{operation="query",status="ok"} 1`)
	assert.Contains(t, body, `songbook_catalog_records{type="song"} 7`)

	cfg := testConfig()
	cfg.Metrics = false
	rec = serve(newTestServer(t, cfg), http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := serve(srv, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not_found","message":"no endpoint at /nope"}`, rec.Body.String())
}

func TestRequestID(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := serve(srv, http.MethodGet, "/healthz", "", map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	rec = serve(srv, http.MethodGet, "/healthz", "", map[string]string{RequestIDHeader: strings.Repeat("x", 200)})
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	a := serve(srv, http.MethodGet, "/healthz", "", nil).Header().Get(RequestIDHeader)
	b := serve(srv, http.MethodGet, "/healthz", "", nil).Header().Get(RequestIDHeader)
	assert.NotEqual(t, a, b)
}

func TestRequestIDFromContext(t *testing.T) {
	var seen string
	h := requestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "req-1", seen)
	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestServerStartStop(t *testing.T) {
	t.Run("starts and stops server successfully", func(t *testing.T) {
		srv := newTestServer(t, testConfig())

		assert.False(t, srv.IsRunning())
		assert.Equal(t, 0, srv.Uptime())
		assert.Empty(t, srv.Addr())

		require.NoError(t, srv.Start())
		assert.True(t, srv.IsRunning())

		addr := srv.Addr()
		require.NotEmpty(t, addr)
		port := addr[strings.LastIndex(addr, ":"):]

		resp, err := http.Get("http://127.0.0.1" + port + "/healthz")
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		require.NoError(t, srv.Stop())
		assert.False(t, srv.IsRunning())
		assert.Equal(t, 0, srv.Uptime())
	})

	t.Run("start returns error if already running", func(t *testing.T) {
		srv := newTestServer(t, testConfig())

		require.NoError(t, srv.Start())
		defer srv.Stop()

		err := srv.Start()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already running")
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		srv := newTestServer(t, testConfig())

		assert.NoError(t, srv.Stop())
		require.NoError(t, srv.Start())
		assert.NoError(t, srv.Stop())
		assert.NoError(t, srv.Stop())
	})
}

func TestServerRun(t *testing.T) {
	srv := newTestServer(t, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	require.Eventually(t, srv.IsRunning, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	assert.False(t, srv.IsRunning())
}
