package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/classmark/attendance-server-go/internal/model"
)

type SessionRepository interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
	FindByToken(ctx context.Context, token string) (*model.Session, error)
	// FindActiveByOwner evaluates expiry in the query itself: a row whose
	// is_active flag has not been flipped yet but whose expires_at has
	// passed is treated as absent.
	FindActiveByOwner(ctx context.Context, ownerID string, now time.Time) (*model.Session, error)
	FindInactiveByOwner(ctx context.Context, ownerID string) ([]model.Session, error)
	Create(ctx context.Context, params model.CreateSessionParams) (*model.Session, error)
	DeactivateByOwner(ctx context.Context, ownerID string) (int64, error)
	RetireExpired(ctx context.Context, now time.Time) (int64, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) SessionRepository
}

// sqlxDB is an interface satisfied by both *sqlx.DB and *sqlx.Tx
type sqlxDB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type sessionRepo struct {
	db sqlxDB
}

func NewSessionRepository(db *sqlx.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) WithTx(tx *sqlx.Tx) SessionRepository {
	return &sessionRepo{db: tx}
}

func (r *sessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	err := r.db.GetContext(ctx, &session, `
		SELECT * FROM sessions WHERE id = $1
	`, id)
	return HandleNotFound(&session, err)
}

func (r *sessionRepo) FindByToken(ctx context.Context, token string) (*model.Session, error) {
	var session model.Session
	err := r.db.GetContext(ctx, &session, `
		SELECT * FROM sessions WHERE token = $1
	`, token)
	return HandleNotFound(&session, err)
}

func (r *sessionRepo) FindActiveByOwner(ctx context.Context, ownerID string, now time.Time) (*model.Session, error) {
	var session model.Session
	err := r.db.GetContext(ctx, &session, `
		SELECT * FROM sessions
		WHERE owner_id = $1
		AND is_active = TRUE
		AND expires_at > $2
	`, ownerID, now)
	return HandleNotFound(&session, err)
}

func (r *sessionRepo) FindInactiveByOwner(ctx context.Context, ownerID string) ([]model.Session, error) {
	var sessions []model.Session
	err := r.db.SelectContext(ctx, &sessions, `
		SELECT * FROM sessions
		WHERE owner_id = $1
		AND is_active = FALSE
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepo) Create(ctx context.Context, params model.CreateSessionParams) (*model.Session, error) {
	var session model.Session
	err := r.db.GetContext(ctx, &session, `
		INSERT INTO sessions (id, token, owner_id, is_active, expires_at)
		VALUES ($1, $2, $3, TRUE, $4)
		RETURNING *
	`, params.ID, params.Token, params.OwnerID, params.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) DeactivateByOwner(ctx context.Context, ownerID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET
			is_active = FALSE,
			updated_at = NOW()
		WHERE owner_id = $1 AND is_active = TRUE
	`, ownerID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *sessionRepo) RetireExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET
			is_active = FALSE,
			updated_at = NOW()
		WHERE is_active = TRUE AND expires_at < $1
	`, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
