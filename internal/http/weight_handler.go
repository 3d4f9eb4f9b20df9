package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/baby-pool/internal/application"
)

var errWeightUnits = errors.New("give either pounds and ounces or kilograms, not both")

// WeightHandler converts weights between unit systems for the entry form.
type WeightHandler struct {
	responder responder
}

// NewWeightHandler constructs a WeightHandler.
func NewWeightHandler(logger *slog.Logger) *WeightHandler {
	return &WeightHandler{responder: newResponder(defaultLogger(logger))}
}

// Convert handles POST /weight/convert.
func (h *WeightHandler) Convert(w http.ResponseWriter, r *http.Request) {
	var req weightDTO
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, errBadRequestBody)
		return
	}

	imperial := req.Pounds != nil || req.Ounces != nil
	metric := req.Kilograms != nil
	if imperial == metric {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, errWeightUnits)
		return
	}

	converted, err := application.ConvertWeight(req.Pounds, req.Ounces, req.Kilograms)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	pounds, ounces, kg := converted.Pounds, converted.Ounces, converted.Kilograms
	h.responder.writeJSON(r.Context(), w, http.StatusOK, weightDTO{Pounds: &pounds, Ounces: &ounces, Kilograms: &kg})
}
