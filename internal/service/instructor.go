package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/classmark/attendance-server-go/internal/config"
	apperrors "github.com/classmark/attendance-server-go/internal/errors"
	"github.com/classmark/attendance-server-go/internal/model"
	"github.com/classmark/attendance-server-go/internal/repository"
	"github.com/classmark/attendance-server-go/internal/util"
)

// InstructorService provisions instructor accounts. The generated API key is
// returned exactly once; only its hash is stored.
type InstructorService struct {
	instructorRepo repository.InstructorRepository
}

func NewInstructorService(instructorRepo repository.InstructorRepository) *InstructorService {
	return &InstructorService{instructorRepo: instructorRepo}
}

type CreateInstructorResult struct {
	Instructor *model.Instructor `json:"instructor"`
	APIKey     string            `json:"apiKey"`
}

func (s *InstructorService) Create(ctx context.Context, name string) (*CreateInstructorResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.MissingRequired("name")
	}

	apiKey, err := util.GenerateToken()
	if err != nil {
		return nil, apperrors.Internal("API key generation failed").WithCause(err)
	}

	instructor, err := s.instructorRepo.Create(ctx, model.CreateInstructorParams{
		ID:              uuid.NewString(),
		Name:            name,
		APIKeyHash:      util.HashToken(apiKey),
		Role:            model.RoleInstructor,
		RateLimitPerMin: config.DefaultInstructorRateLimitPerMin,
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.AlreadyExists("Instructor")
		}
		return nil, apperrors.Database(err)
	}

	log.Info().
		Str("instructorId", instructor.ID).
		Str("name", instructor.Name).
		Msg("instructor created")

	return &CreateInstructorResult{
		Instructor: instructor,
		APIKey:     apiKey,
	}, nil
}
