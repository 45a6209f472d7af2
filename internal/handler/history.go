package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/classmark/attendance-server-go/internal/middleware"
	"github.com/classmark/attendance-server-go/internal/service"
)

type HistoryHandler struct {
	history *service.HistoryService
}

func NewHistoryHandler(history *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

func (h *HistoryHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)

	return r
}

// GET /v1/history
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	instructor := middleware.GetInstructor(r.Context())
	if instructor == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	sessions, err := h.history.ListPast(r.Context(), instructor.ID)
	if err != nil {
		log.Error().Err(err).Str("ownerId", instructor.ID).Msg("failed to fetch history")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessions)
}
