package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/classmark/attendance-server-go/internal/model"
)

type InstructorRepository interface {
	FindByID(ctx context.Context, id string) (*model.Instructor, error)
	FindByAPIKeyHash(ctx context.Context, keyHash string) (*model.Instructor, error)
	Create(ctx context.Context, params model.CreateInstructorParams) (*model.Instructor, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) InstructorRepository
}

type instructorRepo struct {
	db sqlxDB
}

func NewInstructorRepository(db *sqlx.DB) InstructorRepository {
	return &instructorRepo{db: db}
}

func (r *instructorRepo) WithTx(tx *sqlx.Tx) InstructorRepository {
	return &instructorRepo{db: tx}
}

func (r *instructorRepo) FindByID(ctx context.Context, id string) (*model.Instructor, error) {
	var instructor model.Instructor
	err := r.db.GetContext(ctx, &instructor, `
		SELECT * FROM instructors WHERE id = $1
	`, id)
	return HandleNotFound(&instructor, err)
}

func (r *instructorRepo) FindByAPIKeyHash(ctx context.Context, keyHash string) (*model.Instructor, error) {
	var instructor model.Instructor
	err := r.db.GetContext(ctx, &instructor, `
		SELECT * FROM instructors
		WHERE api_key_hash = $1 AND disabled_at IS NULL
	`, keyHash)
	return HandleNotFound(&instructor, err)
}

func (r *instructorRepo) Create(ctx context.Context, params model.CreateInstructorParams) (*model.Instructor, error) {
	var instructor model.Instructor
	err := r.db.GetContext(ctx, &instructor, `
		INSERT INTO instructors (id, name, api_key_hash, role, rate_limit_per_min)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	`, params.ID, params.Name, params.APIKeyHash, params.Role, params.RateLimitPerMin)
	if err != nil {
		return nil, err
	}
	return &instructor, nil
}
