package service

import (
	"context"

	apperrors "github.com/classmark/attendance-server-go/internal/errors"
	"github.com/classmark/attendance-server-go/internal/model"
	"github.com/classmark/attendance-server-go/internal/repository"
)

// HistoryService is a read-only projection of past sessions with their
// rosters. Ended sessions keep their attendance records; ending a session
// never retroactively invalidates a check-in.
type HistoryService struct {
	sessionRepo    repository.SessionRepository
	attendanceRepo repository.AttendanceRepository
}

func NewHistoryService(
	sessionRepo repository.SessionRepository,
	attendanceRepo repository.AttendanceRepository,
) *HistoryService {
	return &HistoryService{
		sessionRepo:    sessionRepo,
		attendanceRepo: attendanceRepo,
	}
}

// ListPast returns the owner's inactive sessions, newest first, each with
// its attendees. Rosters are loaded in a single batched query.
func (s *HistoryService) ListPast(ctx context.Context, ownerID string) ([]model.Session, error) {
	sessions, err := s.sessionRepo.FindInactiveByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if len(sessions) == 0 {
		return []model.Session{}, nil
	}

	ids := make([]string, len(sessions))
	for i, session := range sessions {
		ids[i] = session.ID
	}

	rosters, err := s.attendanceRepo.FindBySessionIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	for i := range sessions {
		sessions[i].Attendees = rosters[sessions[i].ID]
	}

	return sessions, nil
}
