package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/baby-pool/internal/application"
	"github.com/example/baby-pool/internal/metrics"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestRouter(t *testing.T, mutate func(*RouterConfig)) http.Handler {
	t.Helper()
	cfg := RouterConfig{
		Auth:     NewAuthHandler(&stubAuthService{result: application.AuthenticateResult{Session: application.Session{Token: "live"}}}, nil, nil),
		Settings: NewSettingsHandler(stubSettingsService{values: map[string]string{}}, nil),
		Guesses:  NewGuessHandler(&stubGuessService{}, nil, nil),
		Calendar: NewCalendarHandler(stubCalendarService{}, nil),
		Weight:   NewWeightHandler(nil),
		Sessions: stubValidator{"live": true},
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewRouter(cfg)
}

func serve(h http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouterPublicRoutes(t *testing.T) {
	router := newTestRouter(t, nil)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/settings", "", nil).Code)
	assert.Equal(t, http.StatusCreated, serve(router, http.MethodPost, "/sessions", `{"password":"pw"}`, nil).Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/weight/convert", `{"kilograms":3.4}`, nil).Code)
}

func TestRouterProtectedRoutesNeedSession(t *testing.T) {
	router := newTestRouter(t, nil)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/guesses"},
		{http.MethodPost, "/guesses"},
		{http.MethodGet, "/calendar/events"},
	} {
		w := serve(router, route.method, route.path, `{}`, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
	}

	auth := map[string]string{"Authorization": "Bearer live"}
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/guesses", "", auth).Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/calendar/events", "", auth).Code)
}

func TestRouterNotFoundAndMethodNotAllowed(t *testing.T) {
	router := newTestRouter(t, nil)

	w := serve(router, http.MethodGet, "/nowhere", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, codeNotFound, decodeBody[errorResponse](t, w).ErrorCode)

	assert.Equal(t, http.StatusMethodNotAllowed, serve(router, http.MethodDelete, "/settings", "", nil).Code)
}

func TestRouterHealthReportsStorageFailure(t *testing.T) {
	router := newTestRouter(t, func(cfg *RouterConfig) {
		cfg.Health = pingerFunc(func(context.Context) error { return errors.New("gone") })
	})

	w := serve(router, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouterMetricsEndpoint(t *testing.T) {
	rec := metrics.New()
	router := newTestRouter(t, func(cfg *RouterConfig) {
		cfg.Metrics = rec
		cfg.MetricsEnabled = true
	})

	serve(router, http.MethodGet, "/settings", "", nil)
	w := serve(router, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `babypool_requests_total{method="GET",route="/settings",status="200"} 1`)

	disabled := newTestRouter(t, func(cfg *RouterConfig) { cfg.Metrics = rec })
	assert.Equal(t, http.StatusNotFound, serve(disabled, http.MethodGet, "/metrics", "", nil).Code)
}

func TestRouterLoginRateLimit(t *testing.T) {
	router := newTestRouter(t, func(cfg *RouterConfig) {
		cfg.LoginLimiter = NewRateLimiter(10, 1)
	})

	assert.Equal(t, http.StatusCreated, serve(router, http.MethodPost, "/sessions", `{"password":"pw"}`, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(router, http.MethodPost, "/sessions", `{"password":"pw"}`, nil).Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/settings", "", nil).Code, "only login is limited")
}

func TestRouterServesStaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>pool</h1>"), 0o600))

	router := newTestRouter(t, func(cfg *RouterConfig) { cfg.StaticDir = dir })

	w := serve(router, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>pool</h1>")
}
