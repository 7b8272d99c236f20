package runtime

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/fatesheet/internal/config"
	"github.com/R3E-Network/fatesheet/internal/logging"
	"github.com/R3E-Network/fatesheet/internal/middleware"
)

const seedDoc = `
allowed_skills: [Lore, Will]
characters:
  - id: 5f0e5f5e-54a5-4a59-a58b-4d7a4b0c1e01
    name: Zird the Arcane
    stunts: []
    skills: [{name: {name: Lore}, level: 4}]
    aspects: [{description: Wizard for Hire, aspect_type: High}]
`

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Addr: "127.0.0.1:0", ShutdownTimeout: 5 * time.Second},
		Storage: config.StorageConfig{
			TodoStore:      config.BackendMemory,
			CharacterStore: config.BackendMemory,
		},
		HTTP: config.HTTPConfig{RateLimitBurst: 20},
	}
}

func newApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	a, err := NewApplication(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	return a
}

func serve(h http.Handler, method, target string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerStackWithMemoryStores(t *testing.T) {
	a := newApp(t, testConfig())
	h := a.Handler()

	rec := serve(h, http.MethodPost, "/api/todos", url.Values{"todo": {"Buy milk"}}.Encode())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, strings.Count(rec.Body.String(), "<li>Buy milk</li>"))
	assert.NotEmpty(t, rec.Header().Get(middleware.TraceHeader))

	rec = serve(h, http.MethodGet, "/fate/characters/5f0e5f5e-54a5-4a59-a58b-4d7a4b0c1e02", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `fatesheet_http_requests_total{method="POST",path="/api/todos",status="200"} 1`)
	assert.Contains(t, body, `path="/fate/characters/{id}",status="404"`)
}

func TestUnmatchedRequestsAreCounted(t *testing.T) {
	a := newApp(t, testConfig())
	h := a.Handler()

	rec := serve(h, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = serve(h, http.MethodDelete, "/api/todos", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = serve(h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `fatesheet_http_requests_total{method="GET",path="unmatched",status="404"} 1`)
	assert.Contains(t, body, `method="DELETE",path="unmatched",status="405"} 1`)
}

func TestSeedFileLoadsCharacters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedDoc), 0o600))

	cfg := testConfig()
	cfg.Storage.CharacterSeedFile = path
	a := newApp(t, cfg)

	rec := serve(a.Handler(), http.MethodGet, "/fate/characters/5f0e5f5e-54a5-4a59-a58b-4d7a4b0c1e01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Wizard for Hire")
}

func TestBadSeedFileFailsStartup(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.CharacterSeedFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := NewApplication(context.Background(), cfg, logging.Discard())
	assert.Error(t, err)
}

func TestRateLimitAndCORSAreWired(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.RateLimitRPS = 1
	cfg.HTTP.RateLimitBurst = 1
	cfg.HTTP.CORSOrigins = "https://sheets.example"
	a := newApp(t, cfg)
	h := a.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/hello", nil)
	req.Header.Set("Origin", "https://sheets.example")
	first := httptest.NewRecorder()
	h.ServeHTTP(first, req)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "https://sheets.example", first.Header().Get("Access-Control-Allow-Origin"))

	second := serve(h, http.MethodGet, "/api/hello", "")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestServeAndShutdown(t *testing.T) {
	a := newApp(t, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, a.app.Start(ctx))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	require.NoError(t, <-done)
	require.NoError(t, a.Shutdown(context.Background()))
}
