package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
	"github.com/tonikampos/kampos-xestion-api/internal/store"
	appErrors "github.com/tonikampos/kampos-xestion-api/pkg/errors"
)

// SubjectInput carries the writable subject fields.
type SubjectInput struct {
	Name            string                  `json:"name" validate:"required"`
	Level           models.EducationalLevel `json:"level" validate:"required,oneof=SMR DAW DAM FPBASICA ESO BACHILLERATO OUTROS"`
	Year            int                     `json:"year" validate:"required,min=1,max=2"`
	WeeklySessions  int                     `json:"weekly_sessions" validate:"min=0,max=40"`
	EvaluationCount int                     `json:"evaluation_count" validate:"required,min=1,max=3"`
}

// SubjectService manages a professor's subjects and their grading setup.
type SubjectService struct {
	subjects    store.SubjectStore
	enrollments store.EnrollmentStore
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewSubjectService constructs a SubjectService.
func NewSubjectService(subjects store.SubjectStore, enrollments store.EnrollmentStore, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{subjects: subjects, enrollments: enrollments, validator: validate, logger: logger}
}

// List returns the professor's subjects.
func (s *SubjectService) List(ctx context.Context, professorID string) ([]models.Subject, error) {
	subjects, err := s.subjects.List(ctx, professorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, nil
}

// Get returns a subject owned by the professor.
func (s *SubjectService) Get(ctx context.Context, professorID, subjectID string) (*models.Subject, error) {
	subject, err := s.subjects.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch subject")
	}
	if subject.ProfessorID != professorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "subject belongs to another professor")
	}
	return subject, nil
}

// Create registers a new subject with an empty grading configuration.
func (s *SubjectService) Create(ctx context.Context, professorID string, input SubjectInput) (*models.Subject, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}
	subject := &models.Subject{
		ProfessorID:     professorID,
		Name:            input.Name,
		Level:           input.Level,
		Year:            input.Year,
		WeeklySessions:  input.WeeklySessions,
		EvaluationCount: input.EvaluationCount,
	}
	if err := s.subjects.Create(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}
	s.logger.Info("subject created", zap.String("subject_id", subject.ID), zap.String("professor_id", professorID))
	return subject, nil
}

// Update modifies the descriptive fields of a subject.
func (s *SubjectService) Update(ctx context.Context, professorID, subjectID string, input SubjectInput) (*models.Subject, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}
	subject, err := s.Get(ctx, professorID, subjectID)
	if err != nil {
		return nil, err
	}
	subject.Name = input.Name
	subject.Level = input.Level
	subject.Year = input.Year
	subject.WeeklySessions = input.WeeklySessions
	subject.EvaluationCount = input.EvaluationCount
	if err := s.subjects.Update(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subject")
	}
	return subject, nil
}

// UpdateConfig replaces the evaluation configuration of a subject. Weights
// need not sum to 100; the calculator normalizes proportionally.
func (s *SubjectService) UpdateConfig(ctx context.Context, professorID, subjectID string, cfg models.EvaluationConfig) (*models.Subject, error) {
	subject, err := s.Get(ctx, professorID, subjectID)
	if err != nil {
		return nil, err
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if err := s.subjects.UpdateConfig(ctx, subjectID, cfg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update configuration")
	}
	subject.Config = cfg
	s.logger.Info("subject configuration updated",
		zap.String("subject_id", subjectID), zap.Int("evaluations", len(cfg.Evaluations)))
	return subject, nil
}

func validateConfig(cfg models.EvaluationConfig) error {
	seenEvals := make(map[string]bool)
	for _, ev := range cfg.Evaluations {
		if ev.ID == "" {
			return appErrors.Clone(appErrors.ErrValidation, "evaluation id required")
		}
		if seenEvals[ev.ID] {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate evaluation id %s", ev.ID))
		}
		seenEvals[ev.ID] = true
		if ev.Weight < 0 {
			return appErrors.Clone(appErrors.ErrValidation, "evaluation weight must not be negative")
		}
		seenTests := make(map[string]bool)
		for _, test := range ev.Tests {
			if test.ID == "" {
				return appErrors.Clone(appErrors.ErrValidation, "test id required")
			}
			if seenTests[test.ID] {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate test id %s", test.ID))
			}
			seenTests[test.ID] = true
			if test.Weight < 0 {
				return appErrors.Clone(appErrors.ErrValidation, "test weight must not be negative")
			}
		}
	}
	return nil
}

// Delete removes a subject. Deletion is refused while students remain
// enrolled; the error names them so the caller can act on them.
func (s *SubjectService) Delete(ctx context.Context, professorID, subjectID string) error {
	if _, err := s.Get(ctx, professorID, subjectID); err != nil {
		return err
	}
	enrollments, err := s.enrollments.ListBySubject(ctx, subjectID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollments")
	}
	if len(enrollments) > 0 {
		students := make([]string, 0, len(enrollments))
		for _, e := range enrollments {
			students = append(students, fmt.Sprintf("%s %s", e.StudentName, e.StudentSurname))
		}
		return appErrors.Clone(appErrors.ErrBlockedByRelations,
			fmt.Sprintf("subject has enrolled students: %s", strings.Join(students, ", ")))
	}
	if err := s.subjects.Delete(ctx, subjectID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subject")
	}
	s.logger.Info("subject deleted", zap.String("subject_id", subjectID))
	return nil
}
