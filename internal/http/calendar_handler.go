package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/baby-pool/internal/calendar"
)

type calendarService interface {
	Events(ctx context.Context) ([]calendar.Event, error)
}

// CalendarHandler renders guesses as calendar events.
type CalendarHandler struct {
	service   calendarService
	responder responder
}

// NewCalendarHandler constructs a CalendarHandler.
func NewCalendarHandler(service calendarService, logger *slog.Logger) *CalendarHandler {
	return &CalendarHandler{service: service, responder: newResponder(defaultLogger(logger))}
}

// Events handles GET /calendar/events.
func (h *CalendarHandler) Events(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	events, err := h.service.Events(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]eventDTO, 0, len(events))
	for _, e := range events {
		out = append(out, eventDTO{
			ID:      e.ID,
			GuessID: e.GuessID,
			Title:   e.Title,
			Date:    e.Slot.Date.String(),
			Time:    e.Slot.Time.String(),
			Start:   e.Start.Format(time.RFC3339),
			End:     e.End.Format(time.RFC3339),
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, out)
}

type eventDTO struct {
	ID      string `json:"id"`
	GuessID int64  `json:"guessId"`
	Title   string `json:"title"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Start   string `json:"start"`
	End     string `json:"end"`
}
