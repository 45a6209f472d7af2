package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/classmark/attendance-server-go/internal/errors"
	"github.com/classmark/attendance-server-go/internal/model"
	"github.com/classmark/attendance-server-go/internal/repository"
)

type mockAttendanceRepo struct {
	mock.Mock
}

func (m *mockAttendanceRepo) FindBySessionAndExternalID(ctx context.Context, sessionID, externalID string) (*model.Attendance, error) {
	args := m.Called(ctx, sessionID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Attendance), args.Error(1)
}

func (m *mockAttendanceRepo) FindBySessionID(ctx context.Context, sessionID string) ([]model.Attendance, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Attendance), args.Error(1)
}

func (m *mockAttendanceRepo) FindBySessionIDs(ctx context.Context, sessionIDs []string) (map[string][]model.Attendance, error) {
	args := m.Called(ctx, sessionIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]model.Attendance), args.Error(1)
}

func (m *mockAttendanceRepo) Create(ctx context.Context, params model.CreateAttendanceParams) (*model.Attendance, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Attendance), args.Error(1)
}

func (m *mockAttendanceRepo) CountBySessionID(ctx context.Context, sessionID string) (int, error) {
	args := m.Called(ctx, sessionID)
	return args.Int(0), args.Error(1)
}

func (m *mockAttendanceRepo) WithTx(tx *sqlx.Tx) repository.AttendanceRepository {
	return m
}

type mockTokenValidator struct {
	mock.Mock
}

func (m *mockTokenValidator) ValidateToken(ctx context.Context, token string) (*model.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func liveSession() *model.Session {
	return &model.Session{
		ID:        "sess-1",
		OwnerID:   "prof-1",
		IsActive:  true,
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}
}

func TestAttendanceService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("records a first check-in", func(t *testing.T) {
		validator := new(mockTokenValidator)
		attendanceRepo := new(mockAttendanceRepo)
		svc := NewAttendanceService(validator, attendanceRepo)

		validator.On("ValidateToken", ctx, "tok-1").Return(liveSession(), nil)
		attendanceRepo.On("FindBySessionAndExternalID", ctx, "sess-1", "2024001").Return(nil, nil)
		attendanceRepo.On("Create", ctx, mock.MatchedBy(func(params model.CreateAttendanceParams) bool {
			return params.SessionID == "sess-1" &&
				params.StudentName == "Ana" &&
				params.ExternalID == "2024001" &&
				params.ID != ""
		})).Return(&model.Attendance{ID: "att-1", SessionID: "sess-1", ExternalID: "2024001"}, nil)

		attendance, err := svc.Register(ctx, RegisterParams{
			Token:       "tok-1",
			StudentName: "Ana",
			ExternalID:  "2024001",
		})
		require.NoError(t, err)
		assert.Equal(t, "att-1", attendance.ID)
		attendanceRepo.AssertExpectations(t)
	})

	t.Run("defaults missing anti-duplication signals", func(t *testing.T) {
		validator := new(mockTokenValidator)
		attendanceRepo := new(mockAttendanceRepo)
		svc := NewAttendanceService(validator, attendanceRepo)

		validator.On("ValidateToken", ctx, "tok-1").Return(liveSession(), nil)
		attendanceRepo.On("FindBySessionAndExternalID", ctx, "sess-1", "2024001").Return(nil, nil)
		attendanceRepo.On("Create", ctx, mock.MatchedBy(func(params model.CreateAttendanceParams) bool {
			return params.DeviceFingerprint == "unknown" && params.OriginTag == "unknown"
		})).Return(&model.Attendance{ID: "att-1"}, nil)

		_, err := svc.Register(ctx, RegisterParams{
			Token:       "tok-1",
			StudentName: "Ana",
			ExternalID:  "2024001",
		})
		require.NoError(t, err)
		attendanceRepo.AssertExpectations(t)
	})

	t.Run("rejects missing required fields before any side effect", func(t *testing.T) {
		tests := []struct {
			name   string
			params RegisterParams
		}{
			{"missing token", RegisterParams{StudentName: "Ana", ExternalID: "2024001"}},
			{"missing student name", RegisterParams{Token: "tok-1", ExternalID: "2024001"}},
			{"blank student name", RegisterParams{Token: "tok-1", StudentName: "   ", ExternalID: "2024001"}},
			{"missing external id", RegisterParams{Token: "tok-1", StudentName: "Ana"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				validator := new(mockTokenValidator)
				attendanceRepo := new(mockAttendanceRepo)
				svc := NewAttendanceService(validator, attendanceRepo)

				_, err := svc.Register(ctx, tt.params)
				assert.Equal(t, apperrors.ErrCodeMissingRequired, apperrors.GetCode(err))
				validator.AssertNotCalled(t, "ValidateToken", mock.Anything, mock.Anything)
				attendanceRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("propagates token validation failures unchanged", func(t *testing.T) {
		tests := []struct {
			name string
			err  error
		}{
			{"unknown token", apperrors.NotFound("Session")},
			{"ended session", apperrors.SessionEnded()},
			{"expired session", apperrors.SessionExpired()},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				validator := new(mockTokenValidator)
				attendanceRepo := new(mockAttendanceRepo)
				svc := NewAttendanceService(validator, attendanceRepo)

				validator.On("ValidateToken", ctx, "tok-1").Return(nil, tt.err)

				_, err := svc.Register(ctx, RegisterParams{
					Token:       "tok-1",
					StudentName: "Cleo",
					ExternalID:  "2024003",
				})
				assert.Equal(t, tt.err, err)
				attendanceRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("rejects duplicate found by the pre-check", func(t *testing.T) {
		validator := new(mockTokenValidator)
		attendanceRepo := new(mockAttendanceRepo)
		svc := NewAttendanceService(validator, attendanceRepo)

		validator.On("ValidateToken", ctx, "tok-1").Return(liveSession(), nil)
		attendanceRepo.On("FindBySessionAndExternalID", ctx, "sess-1", "2024001").
			Return(&model.Attendance{ID: "att-1"}, nil)

		_, err := svc.Register(ctx, RegisterParams{
			Token:       "tok-1",
			StudentName: "Ana",
			ExternalID:  "2024001",
		})
		assert.Equal(t, apperrors.ErrCodeDuplicateRegistration, apperrors.GetCode(err))
		attendanceRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("translates the unique constraint into duplicate registration", func(t *testing.T) {
		// The pre-check raced: it saw no row, but another writer won the
		// insert. The constraint violation must not surface as a storage
		// error.
		validator := new(mockTokenValidator)
		attendanceRepo := new(mockAttendanceRepo)
		svc := NewAttendanceService(validator, attendanceRepo)

		validator.On("ValidateToken", ctx, "tok-1").Return(liveSession(), nil)
		attendanceRepo.On("FindBySessionAndExternalID", ctx, "sess-1", "2024001").Return(nil, nil)
		attendanceRepo.On("Create", ctx, mock.Anything).
			Return(nil, &pq.Error{Code: "23505", Constraint: "attendance_session_id_external_id_key"})

		_, err := svc.Register(ctx, RegisterParams{
			Token:       "tok-1",
			StudentName: "Ana",
			ExternalID:  "2024001",
		})
		assert.Equal(t, apperrors.ErrCodeDuplicateRegistration, apperrors.GetCode(err))
	})
}

// raceAttendanceRepo lets every pre-check pass and admits exactly one insert
// per (session, external id), the way the database constraint behaves.
type raceAttendanceRepo struct {
	mu       sync.Mutex
	inserted map[string]bool
}

func (r *raceAttendanceRepo) FindBySessionAndExternalID(ctx context.Context, sessionID, externalID string) (*model.Attendance, error) {
	return nil, nil
}

func (r *raceAttendanceRepo) FindBySessionID(ctx context.Context, sessionID string) ([]model.Attendance, error) {
	return nil, nil
}

func (r *raceAttendanceRepo) FindBySessionIDs(ctx context.Context, sessionIDs []string) (map[string][]model.Attendance, error) {
	return nil, nil
}

func (r *raceAttendanceRepo) Create(ctx context.Context, params model.CreateAttendanceParams) (*model.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := params.SessionID + "/" + params.ExternalID
	if r.inserted[key] {
		return nil, &pq.Error{Code: "23505"}
	}
	r.inserted[key] = true
	return &model.Attendance{
		ID:         params.ID,
		SessionID:  params.SessionID,
		ExternalID: params.ExternalID,
	}, nil
}

func (r *raceAttendanceRepo) CountBySessionID(ctx context.Context, sessionID string) (int, error) {
	return len(r.inserted), nil
}

func (r *raceAttendanceRepo) WithTx(tx *sqlx.Tx) repository.AttendanceRepository {
	return r
}

func TestAttendanceService_Register_ConcurrentDuplicates(t *testing.T) {
	ctx := context.Background()
	validator := new(mockTokenValidator)
	validator.On("ValidateToken", mock.Anything, "tok-1").Return(liveSession(), nil)

	svc := NewAttendanceService(validator, &raceAttendanceRepo{inserted: make(map[string]bool)})

	const n = 16
	results := make(chan error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(ctx, RegisterParams{
				Token:       "tok-1",
				StudentName: "Ana",
				ExternalID:  "2024001",
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, duplicates int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case apperrors.GetCode(err) == apperrors.ErrCodeDuplicateRegistration:
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes, "exactly one registration must win")
	assert.Equal(t, n-1, duplicates)
}
