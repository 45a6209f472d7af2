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

type AttendanceHandler struct {
	registrar *service.AttendanceService
}

func NewAttendanceHandler(registrar *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{registrar: registrar}
}

func (h *AttendanceHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Register)

	return r
}

type registerRequest struct {
	Token             string `json:"token"`
	StudentName       string `json:"studentName"`
	ExternalID        string `json:"externalId"`
	DeviceFingerprint string `json:"deviceFingerprint"`
	OriginTag         string `json:"originTag"`
}

// POST /v1/attendance
func (h *AttendanceHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid JSON body"))
		return
	}

	// The client-side origin tag is best effort; fall back to the
	// connection's remote address.
	originTag := req.OriginTag
	if originTag == "" {
		originTag = r.RemoteAddr
	}

	attendance, err := h.registrar.Register(r.Context(), service.RegisterParams{
		Token:             req.Token,
		StudentName:       req.StudentName,
		ExternalID:        req.ExternalID,
		DeviceFingerprint: req.DeviceFingerprint,
		OriginTag:         originTag,
	})
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok {
			audit.Log(r.Context(), audit.Event{
				Type: audit.EventCheckInRejected,
				IP:   r.RemoteAddr,
				Details: map[string]interface{}{
					"code": string(appErr.Code),
				},
			})
		} else {
			log.Error().Err(err).Msg("failed to register attendance")
		}
		writeError(w, err)
		return
	}

	audit.Log(r.Context(), audit.Event{
		Type:      audit.EventCheckInRecorded,
		SessionID: attendance.SessionID,
		IP:        r.RemoteAddr,
	})

	writeJSON(w, http.StatusCreated, attendance)
}
