package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/example/baby-pool/internal/metrics"
)

// Pinger reports whether backing storage is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig wires handlers and middleware into the API router. Nil
// handlers leave their routes unregistered.
type RouterConfig struct {
	Auth     *AuthHandler
	Settings *SettingsHandler
	Guesses  *GuessHandler
	Calendar *CalendarHandler
	Weight   *WeightHandler

	Sessions     SessionValidator
	LoginLimiter *RateLimiter
	Health       Pinger

	Metrics        *metrics.Recorder
	MetricsEnabled bool
	StaticDir      string
	Logger         *slog.Logger

	Middleware []func(http.Handler) http.Handler
}

// NewRouter builds the chi router serving the pool API.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := defaultLogger(cfg.Logger)
	responder := newResponder(logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(Metrics(cfg.Metrics))
	for _, mw := range cfg.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responder.writeJSON(req.Context(), w, http.StatusNotFound, errorResponse{ErrorCode: codeNotFound, Message: "resource not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		methodNotAllowed(w)
	})

	r.Get("/healthz", healthHandler(cfg.Health, responder))
	if cfg.MetricsEnabled && cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	if cfg.Auth != nil {
		r.With(RateLimit(cfg.LoginLimiter, cfg.Metrics, logger)).Post("/sessions", cfg.Auth.CreateSession)
	}
	if cfg.Settings != nil {
		r.Get("/settings", cfg.Settings.Get)
	}
	if cfg.Weight != nil {
		r.Post("/weight/convert", cfg.Weight.Convert)
	}

	r.Group(func(r chi.Router) {
		r.Use(RequireSession(cfg.Sessions, logger))
		if cfg.Guesses != nil {
			r.Get("/guesses", cfg.Guesses.List)
			r.Post("/guesses", cfg.Guesses.Create)
		}
		if cfg.Calendar != nil {
			r.Get("/calendar/events", cfg.Calendar.Events)
		}
	})

	if dir := strings.TrimSpace(cfg.StaticDir); dir != "" {
		r.Handle("/*", http.FileServer(http.Dir(dir)))
	}

	return r
}

func healthHandler(p Pinger, responder responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p != nil {
			if err := p.Ping(r.Context()); err != nil {
				responder.loggerFor(r.Context()).WarnContext(r.Context(), "health check failed", "error", err)
				responder.writeJSON(r.Context(), w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		responder.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
