package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/baby-pool/internal/application"
	"github.com/example/baby-pool/internal/metrics"
)

type guessService interface {
	Submit(ctx context.Context, input application.GuessInput) (application.SubmitResult, error)
	List(ctx context.Context) ([]application.Guess, error)
}

// GuessHandler serves guess submission and listing.
type GuessHandler struct {
	service   guessService
	metrics   *metrics.Recorder
	responder responder
	logger    *slog.Logger
}

// NewGuessHandler constructs a GuessHandler. rec may be nil.
func NewGuessHandler(service guessService, rec *metrics.Recorder, logger *slog.Logger) *GuessHandler {
	base := defaultLogger(logger)
	return &GuessHandler{service: service, metrics: rec, responder: newResponder(base), logger: base}
}

func (h *GuessHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "GuessHandler", operation, attrs...)
}

// Create handles POST /guesses.
func (h *GuessHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req guessRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode guess", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, errBadRequestBody)
		return
	}

	result, err := h.service.Submit(r.Context(), req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	kind := "single"
	if result.IsBlock {
		kind = "block"
	}
	h.metrics.ObserveGuess(kind, strings.ToLower(strings.TrimSpace(req.Gender)))

	duplicates := result.Duplicates
	if duplicates == nil {
		duplicates = []int64{}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, submitResponse{ID: result.ID, Duplicates: duplicates})
}

// List handles GET /guesses.
func (h *GuessHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	guesses, err := h.service.List(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]guessDTO, 0, len(guesses))
	for _, g := range guesses {
		out = append(out, toGuessDTO(g))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, out)
}

type weightDTO struct {
	Pounds    *int     `json:"pounds,omitempty"`
	Ounces    *int     `json:"ounces,omitempty"`
	Kilograms *float64 `json:"kilograms,omitempty"`
}

type guessRequest struct {
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Gender     string    `json:"gender"`
	BirthDate  string    `json:"birthDate"`
	BirthTime  string    `json:"birthTime"`
	TimeBlocks []string  `json:"timeBlocks"`
	Weight     weightDTO `json:"weight"`
}

func (req guessRequest) toInput() application.GuessInput {
	return application.GuessInput{
		Name:       req.Name,
		Email:      req.Email,
		Gender:     req.Gender,
		BirthDate:  req.BirthDate,
		BirthTime:  req.BirthTime,
		TimeBlocks: req.TimeBlocks,
		Pounds:     req.Weight.Pounds,
		Ounces:     req.Weight.Ounces,
		Kilograms:  req.Weight.Kilograms,
	}
}

type submitResponse struct {
	ID         int64   `json:"id"`
	Duplicates []int64 `json:"duplicates"`
}

// guessDTO is the public view of a guess. The contact address is never listed.
type guessDTO struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Gender     string    `json:"gender"`
	BirthDate  string    `json:"birthDate"`
	BirthTime  string    `json:"birthTime,omitempty"`
	TimeBlocks []string  `json:"timeBlocks,omitempty"`
	Weight     weightDTO `json:"weight"`
	CreatedAt  string    `json:"createdAt"`
}

func toGuessDTO(g application.Guess) guessDTO {
	pounds, ounces, kg := g.Weight.Pounds, g.Weight.Ounces, g.Weight.Kilograms
	dto := guessDTO{
		ID:        g.ID,
		Name:      g.Name,
		Gender:    string(g.Gender),
		BirthDate: g.BirthDate.String(),
		Weight:    weightDTO{Pounds: &pounds, Ounces: &ounces, Kilograms: &kg},
		CreatedAt: g.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if t, ok := g.Time.SingleTime(); ok {
		dto.BirthTime = t.String()
	} else {
		dto.TimeBlocks = g.Time.Strings()
	}
	return dto
}
