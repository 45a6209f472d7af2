package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/classmark/attendance-server-go/internal/audit"
	apperrors "github.com/classmark/attendance-server-go/internal/errors"
	"github.com/classmark/attendance-server-go/internal/service"
)

type AdminHandler struct {
	instructors *service.InstructorService
}

func NewAdminHandler(instructors *service.InstructorService) *AdminHandler {
	return &AdminHandler{instructors: instructors}
}

func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/instructors", h.CreateInstructor)

	return r
}

type createInstructorRequest struct {
	Name string `json:"name"`
}

// POST /admin/instructors
//
// The response carries the API key in plaintext; it is shown once and only
// its hash is stored.
func (h *AdminHandler) CreateInstructor(w http.ResponseWriter, r *http.Request) {
	var req createInstructorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid JSON body"))
		return
	}

	result, err := h.instructors.Create(r.Context(), req.Name)
	if err != nil {
		log.Error().Err(err).Msg("failed to create instructor")
		writeError(w, err)
		return
	}

	audit.Log(r.Context(), audit.Event{
		Type:         audit.EventInstructorCreate,
		InstructorID: result.Instructor.ID,
		IP:           r.RemoteAddr,
	})

	writeJSON(w, http.StatusCreated, result)
}
