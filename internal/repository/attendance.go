package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/classmark/attendance-server-go/internal/model"
)

type AttendanceRepository interface {
	FindBySessionAndExternalID(ctx context.Context, sessionID, externalID string) (*model.Attendance, error)
	FindBySessionID(ctx context.Context, sessionID string) ([]model.Attendance, error)
	// FindBySessionIDs batch-loads rosters for many sessions in one query.
	FindBySessionIDs(ctx context.Context, sessionIDs []string) (map[string][]model.Attendance, error)
	// Create inserts a check-in. A duplicate (session_id, external_id) pair
	// surfaces as a unique-constraint violation; callers translate it with
	// IsUniqueViolation.
	Create(ctx context.Context, params model.CreateAttendanceParams) (*model.Attendance, error)
	CountBySessionID(ctx context.Context, sessionID string) (int, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) AttendanceRepository
}

type attendanceRepo struct {
	db sqlxDB
}

func NewAttendanceRepository(db *sqlx.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) WithTx(tx *sqlx.Tx) AttendanceRepository {
	return &attendanceRepo{db: tx}
}

func (r *attendanceRepo) FindBySessionAndExternalID(ctx context.Context, sessionID, externalID string) (*model.Attendance, error) {
	var attendance model.Attendance
	err := r.db.GetContext(ctx, &attendance, `
		SELECT * FROM attendance
		WHERE session_id = $1 AND external_id = $2
	`, sessionID, externalID)
	return HandleNotFound(&attendance, err)
}

func (r *attendanceRepo) FindBySessionID(ctx context.Context, sessionID string) ([]model.Attendance, error) {
	var attendances []model.Attendance
	err := r.db.SelectContext(ctx, &attendances, `
		SELECT * FROM attendance
		WHERE session_id = $1
		ORDER BY created_at ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	return attendances, nil
}

func (r *attendanceRepo) FindBySessionIDs(ctx context.Context, sessionIDs []string) (map[string][]model.Attendance, error) {
	grouped := make(map[string][]model.Attendance, len(sessionIDs))
	if len(sessionIDs) == 0 {
		return grouped, nil
	}

	var attendances []model.Attendance
	err := r.db.SelectContext(ctx, &attendances, `
		SELECT * FROM attendance
		WHERE session_id = ANY($1)
		ORDER BY created_at ASC
	`, pq.Array(sessionIDs))
	if err != nil {
		return nil, err
	}

	for _, a := range attendances {
		grouped[a.SessionID] = append(grouped[a.SessionID], a)
	}
	return grouped, nil
}

func (r *attendanceRepo) Create(ctx context.Context, params model.CreateAttendanceParams) (*model.Attendance, error) {
	var attendance model.Attendance
	err := r.db.GetContext(ctx, &attendance, `
		INSERT INTO attendance (id, session_id, student_name, external_id, device_fingerprint, origin_tag)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *
	`, params.ID, params.SessionID, params.StudentName, params.ExternalID,
		params.DeviceFingerprint, params.OriginTag)
	if err != nil {
		return nil, err
	}
	return &attendance, nil
}

func (r *attendanceRepo) CountBySessionID(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM attendance WHERE session_id = $1
	`, sessionID)
	if err != nil {
		return 0, err
	}
	return count, nil
}
