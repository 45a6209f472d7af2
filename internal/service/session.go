package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/classmark/attendance-server-go/internal/database"
	apperrors "github.com/classmark/attendance-server-go/internal/errors"
	"github.com/classmark/attendance-server-go/internal/model"
	"github.com/classmark/attendance-server-go/internal/repository"
	"github.com/classmark/attendance-server-go/internal/util"
)

// TxRunner runs a function inside a database transaction.
// *database.DB satisfies it.
type TxRunner interface {
	WithTx(ctx context.Context, fn database.TxFunc) error
}

var _ TxRunner = (*database.DB)(nil)

// SessionService creates, retires, and validates class sessions. It enforces
// one active session per owner and evaluates expiry at read time; the stored
// is_active flag is never trusted on its own.
type SessionService struct {
	db             TxRunner
	sessionRepo    repository.SessionRepository
	attendanceRepo repository.AttendanceRepository
	window         time.Duration
	now            func() time.Time
}

func NewSessionService(
	db TxRunner,
	sessionRepo repository.SessionRepository,
	attendanceRepo repository.AttendanceRepository,
	window time.Duration,
) *SessionService {
	return &SessionService{
		db:             db,
		sessionRepo:    sessionRepo,
		attendanceRepo: attendanceRepo,
		window:         window,
		now:            time.Now,
	}
}

// Start deactivates every active session for the owner and inserts a new one,
// in a single transaction, so no reader can observe two active sessions for
// the same owner.
func (s *SessionService) Start(ctx context.Context, ownerID string) (*model.Session, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, apperrors.MissingRequired("ownerId")
	}

	token, err := util.GenerateToken()
	if err != nil {
		// Entropy source failure is not recoverable
		return nil, apperrors.Internal("Token generation failed").WithCause(err)
	}

	expiresAt := s.now().Add(s.window)

	var created *model.Session
	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		repo := s.sessionRepo.WithTx(tx)

		superseded, err := repo.DeactivateByOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		if superseded > 0 {
			log.Info().
				Str("ownerId", ownerID).
				Int64("count", superseded).
				Msg("superseded active sessions")
		}

		created, err = repo.Create(ctx, model.CreateSessionParams{
			ID:        uuid.NewString(),
			Token:     token,
			OwnerID:   ownerID,
			ExpiresAt: expiresAt,
		})
		return err
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	log.Info().
		Str("sessionId", created.ID).
		Str("ownerId", ownerID).
		Str("token", util.MaskToken(created.Token)).
		Time("expiresAt", created.ExpiresAt).
		Msg("session started")

	return created, nil
}

// End marks every active session for the owner inactive. Calling it with no
// active session is a no-op success.
func (s *SessionService) End(ctx context.Context, ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return apperrors.MissingRequired("ownerId")
	}

	count, err := s.sessionRepo.DeactivateByOwner(ctx, ownerID)
	if err != nil {
		return apperrors.Database(err)
	}

	log.Info().
		Str("ownerId", ownerID).
		Int64("count", count).
		Msg("session ended")

	return nil
}

// GetActive returns the owner's active, unexpired session with its roster,
// or nil when there is none. A session whose expiry has passed is absent
// here even if its stored flag still reads active.
func (s *SessionService) GetActive(ctx context.Context, ownerID string) (*model.Session, error) {
	session, err := s.sessionRepo.FindActiveByOwner(ctx, ownerID, s.now())
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if session == nil {
		return nil, nil
	}

	attendees, err := s.attendanceRepo.FindBySessionID(ctx, session.ID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	session.Attendees = attendees

	return session, nil
}

// ValidateToken resolves a check-in token to its session. The three failure
// kinds are distinct because the registrant-facing message differs: an
// unknown token, an explicitly ended session, and a timed-out one.
func (s *SessionService) ValidateToken(ctx context.Context, token string) (*model.Session, error) {
	session, err := s.sessionRepo.FindByToken(ctx, token)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if session == nil {
		return nil, apperrors.NotFound("Session")
	}
	if !session.IsActive {
		return nil, apperrors.SessionEnded()
	}
	if session.Expired(s.now()) {
		return nil, apperrors.SessionExpired()
	}
	return session, nil
}
