package http

import (
	"context"
	"log/slog"
	"net/http"
)

type settingsService interface {
	Public(ctx context.Context) (map[string]string, error)
}

// SettingsHandler exposes the public pool settings.
type SettingsHandler struct {
	service   settingsService
	responder responder
}

// NewSettingsHandler constructs a SettingsHandler.
func NewSettingsHandler(service settingsService, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{service: service, responder: newResponder(defaultLogger(logger))}
}

// Get handles GET /settings. The site password hash is never included.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	values, err := h.service.Public(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, values)
}
