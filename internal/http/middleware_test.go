package http

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/baby-pool/internal/metrics"
)

type stubValidator map[string]bool

func (v stubValidator) IsValid(_ context.Context, token string) bool {
	return v[token]
}

func TestRequireSession(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = SessionTokenFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireSession(stubValidator{"live": true}, nil)(next)

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guesses", nil))
		require.Equal(t, http.StatusUnauthorized, w.Code)
		body := decodeBody[errorResponse](t, w)
		assert.Equal(t, codeUnauthorized, body.ErrorCode)
	})

	t.Run("expired token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/guesses", nil)
		req.Header.Set("Authorization", "Bearer stale")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("live token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/guesses", nil)
		req.Header.Set(sessionTokenHeader, "live")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "live", seen)
	})
}

func TestRequireSessionWithoutValidatorRejects(t *testing.T) {
	handler := RequireSession(nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/guesses", nil)
	req.Header.Set(sessionTokenHeader, "anything")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestLoggerAttachesLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var fromCtx *slog.Logger
	handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = LoggerFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.NotNil(t, fromCtx)
	assert.Equal(t, http.StatusTeapot, w.Code)
	out := buf.String()
	assert.Contains(t, out, `"msg":"request completed"`)
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"path":"/healthz"`)
	assert.Contains(t, out, `"request_id":"1"`)
}

func TestMetricsMiddlewareNilRecorderPassesThrough(t *testing.T) {
	called := false
	handler := Metrics(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}

func TestMetricsMiddlewareRecordsUnmatchedRoute(t *testing.T) {
	rec := metrics.New()
	handler := Metrics(rec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Contains(t, scrape(t, rec), `babypool_requests_total{method="POST",route="unmatched",status="202"} 1`)
}
