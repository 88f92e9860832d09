package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
	"github.com/tonikampos/kampos-xestion-api/internal/store"
	appErrors "github.com/tonikampos/kampos-xestion-api/pkg/errors"
)

// ProfessorProfileUpdate carries the editable profile fields.
type ProfessorProfileUpdate struct {
	Name    string `json:"name" validate:"required"`
	Surname string `json:"surname" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
}

// ProfessorService exposes the authenticated professor's profile.
type ProfessorService struct {
	professors store.ProfessorStore
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewProfessorService constructs a ProfessorService.
func NewProfessorService(professors store.ProfessorStore, validate *validator.Validate, logger *zap.Logger) *ProfessorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfessorService{professors: professors, validator: validate, logger: logger}
}

// Profile returns the professor record.
func (s *ProfessorService) Profile(ctx context.Context, professorID string) (*models.Professor, error) {
	professor, err := s.professors.FindByID(ctx, professorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "professor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch professor")
	}
	return professor, nil
}

// UpdateProfile changes name, surname and email.
func (s *ProfessorService) UpdateProfile(ctx context.Context, professorID string, req ProfessorProfileUpdate) (*models.Professor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	professor, err := s.Profile(ctx, professorID)
	if err != nil {
		return nil, err
	}
	if req.Email != professor.Email {
		if other, err := s.professors.FindByEmail(ctx, req.Email); err == nil && other.ID != professorID {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
		} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
		}
	}
	professor.Name = req.Name
	professor.Surname = req.Surname
	professor.Email = req.Email
	if err := s.professors.Update(ctx, professor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update professor")
	}
	s.logger.Info("professor profile updated", zap.String("professor_id", professorID))
	return professor, nil
}
