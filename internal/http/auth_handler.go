package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/baby-pool/internal/application"
	"github.com/example/baby-pool/internal/metrics"
)

const (
	sessionCookieName  = "session_token"
	sessionTokenHeader = "X-Session-Token"
)

type authService interface {
	Authenticate(ctx context.Context, password string) (application.AuthenticateResult, error)
}

// AuthHandler exchanges the site password for a session.
type AuthHandler struct {
	service   authService
	metrics   *metrics.Recorder
	responder responder
	logger    *slog.Logger
}

// NewAuthHandler constructs an AuthHandler. rec may be nil.
func NewAuthHandler(service authService, rec *metrics.Recorder, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{service: service, metrics: rec, responder: newResponder(base), logger: base}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

// CreateSession handles POST /sessions.
func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "CreateSession", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode session request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "CreateSession")

	result, err := h.service.Authenticate(r.Context(), req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			h.metrics.ObserveLogin(metrics.LoginRejected)
		} else {
			h.metrics.ObserveLogin(metrics.LoginFailed)
			logger.ErrorContext(r.Context(), "authentication failed", "error", err, "error_kind", application.ErrorKind(err))
		}
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.metrics.ObserveLogin(metrics.LoginSucceeded)

	setSessionCookie(w, result.Session.Token, result.Session.ExpiresAt)
	w.Header().Set(sessionTokenHeader, result.Session.Token)

	logger.InfoContext(r.Context(), "session issued", "session_id", result.Session.ID)

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, loginResponse{
		Token:     result.Session.Token,
		ExpiresAt: result.Session.ExpiresAt.UTC().Format(time.RFC3339Nano),
	})
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

func setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	}
	if !expires.IsZero() {
		cookie.Expires = expires.UTC()
	}
	http.SetCookie(w, cookie)
}

func extractTokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		const prefix = "Bearer "
		if strings.HasPrefix(header, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(header, prefix))
		}
	}
	if header := strings.TrimSpace(r.Header.Get(sessionTokenHeader)); header != "" {
		return header
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}
