package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "github.com/classmark/attendance-server-go/internal/errors"
	"github.com/classmark/attendance-server-go/internal/model"
	"github.com/classmark/attendance-server-go/internal/repository"
)

const unknownSignal = "unknown"

// TokenValidator resolves a check-in token to its session.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*model.Session, error)
}

type RegisterParams struct {
	Token             string
	StudentName       string
	ExternalID        string
	DeviceFingerprint string
	OriginTag         string
}

// AttendanceService records check-ins exactly once per (session, student).
// The existence pre-check is a fast-path rejection that is allowed to race;
// the unique constraint on (session_id, external_id) is what holds under
// concurrent duplicate submissions.
type AttendanceService struct {
	sessions       TokenValidator
	attendanceRepo repository.AttendanceRepository
}

func NewAttendanceService(sessions TokenValidator, attendanceRepo repository.AttendanceRepository) *AttendanceService {
	return &AttendanceService{
		sessions:       sessions,
		attendanceRepo: attendanceRepo,
	}
}

func (s *AttendanceService) Register(ctx context.Context, params RegisterParams) (*model.Attendance, error) {
	token := strings.TrimSpace(params.Token)
	studentName := strings.TrimSpace(params.StudentName)
	externalID := strings.TrimSpace(params.ExternalID)

	if token == "" {
		return nil, apperrors.MissingRequired("token")
	}
	if studentName == "" {
		return nil, apperrors.MissingRequired("studentName")
	}
	if externalID == "" {
		return nil, apperrors.MissingRequired("externalId")
	}

	session, err := s.sessions.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}

	existing, err := s.attendanceRepo.FindBySessionAndExternalID(ctx, session.ID, externalID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if existing != nil {
		return nil, apperrors.DuplicateRegistration()
	}

	fingerprint := strings.TrimSpace(params.DeviceFingerprint)
	if fingerprint == "" {
		fingerprint = unknownSignal
	}
	originTag := strings.TrimSpace(params.OriginTag)
	if originTag == "" {
		originTag = unknownSignal
	}

	attendance, err := s.attendanceRepo.Create(ctx, model.CreateAttendanceParams{
		ID:                uuid.NewString(),
		SessionID:         session.ID,
		StudentName:       studentName,
		ExternalID:        externalID,
		DeviceFingerprint: fingerprint,
		OriginTag:         originTag,
	})
	if err != nil {
		// Two concurrent submissions can both pass the pre-check; the
		// constraint decides the loser here.
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.DuplicateRegistration()
		}
		return nil, apperrors.Database(err)
	}

	log.Info().
		Str("attendanceId", attendance.ID).
		Str("sessionId", session.ID).
		Str("externalId", externalID).
		Msg("check-in recorded")

	return attendance, nil
}
