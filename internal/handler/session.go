package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/classmark/attendance-server-go/internal/audit"
	"github.com/classmark/attendance-server-go/internal/middleware"
	"github.com/classmark/attendance-server-go/internal/service"
)

type SessionHandler struct {
	sessions *service.SessionService
}

func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func (h *SessionHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Post("/end", h.End)
	r.Get("/active", h.GetActive)

	return r
}

// POST /v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	instructor := middleware.GetInstructor(r.Context())
	if instructor == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	session, err := h.sessions.Start(r.Context(), instructor.ID)
	if err != nil {
		log.Error().Err(err).Str("ownerId", instructor.ID).Msg("failed to start session")
		writeError(w, err)
		return
	}

	audit.Log(r.Context(), audit.Event{
		Type:         audit.EventSessionStart,
		InstructorID: instructor.ID,
		SessionID:    session.ID,
		IP:           r.RemoteAddr,
	})

	writeJSON(w, http.StatusCreated, session)
}

// POST /v1/sessions/end
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	instructor := middleware.GetInstructor(r.Context())
	if instructor == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	if err := h.sessions.End(r.Context(), instructor.ID); err != nil {
		log.Error().Err(err).Str("ownerId", instructor.ID).Msg("failed to end session")
		writeError(w, err)
		return
	}

	audit.Log(r.Context(), audit.Event{
		Type:         audit.EventSessionEnd,
		InstructorID: instructor.ID,
		IP:           r.RemoteAddr,
	})

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GET /v1/sessions/active
func (h *SessionHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	instructor := middleware.GetInstructor(r.Context())
	if instructor == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	session, err := h.sessions.GetActive(r.Context(), instructor.ID)
	if err != nil {
		log.Error().Err(err).Str("ownerId", instructor.ID).Msg("failed to get active session")
		writeError(w, err)
		return
	}

	// JSON null when there is no active session
	writeJSON(w, http.StatusOK, session)
}
