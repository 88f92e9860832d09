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

// StudentInput carries the writable student fields.
type StudentInput struct {
	Name    string  `json:"name" validate:"required"`
	Surname string  `json:"surname" validate:"required"`
	Email   string  `json:"email" validate:"required,email"`
	Phone   *string `json:"phone,omitempty"`
}

// StudentService manages a professor's students.
type StudentService struct {
	students    store.StudentStore
	enrollments store.EnrollmentStore
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(students store.StudentStore, enrollments store.EnrollmentStore, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{students: students, enrollments: enrollments, validator: validate, logger: logger}
}

// List returns the professor's students matching the filter.
func (s *StudentService) List(ctx context.Context, professorID string, filter models.StudentFilter) ([]models.Student, int, error) {
	students, total, err := s.students.List(ctx, professorID, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, total, nil
}

// Get returns a student owned by the professor.
func (s *StudentService) Get(ctx context.Context, professorID, studentID string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}
	if student.ProfessorID != professorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student belongs to another professor")
	}
	return student, nil
}

// Create registers a new student under the professor.
func (s *StudentService) Create(ctx context.Context, professorID string, input StudentInput) (*models.Student, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student := &models.Student{
		ProfessorID: professorID,
		Name:        strings.TrimSpace(input.Name),
		Surname:     strings.TrimSpace(input.Surname),
		Email:       strings.TrimSpace(input.Email),
		Phone:       input.Phone,
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.logger.Info("student created", zap.String("student_id", student.ID), zap.String("professor_id", professorID))
	return student, nil
}

// Update modifies an existing student.
func (s *StudentService) Update(ctx context.Context, professorID, studentID string, input StudentInput) (*models.Student, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student, err := s.Get(ctx, professorID, studentID)
	if err != nil {
		return nil, err
	}
	student.Name = strings.TrimSpace(input.Name)
	student.Surname = strings.TrimSpace(input.Surname)
	student.Email = strings.TrimSpace(input.Email)
	student.Phone = input.Phone
	if err := s.students.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// Delete removes a student. Deletion is refused while enrollments exist; the
// error names the blocking subjects so the caller can act on them.
func (s *StudentService) Delete(ctx context.Context, professorID, studentID string) error {
	if _, err := s.Get(ctx, professorID, studentID); err != nil {
		return err
	}
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollments")
	}
	if len(enrollments) > 0 {
		subjects := make([]string, 0, len(enrollments))
		for _, e := range enrollments {
			subjects = append(subjects, e.SubjectName)
		}
		return appErrors.Clone(appErrors.ErrBlockedByRelations,
			fmt.Sprintf("student is enrolled in: %s", strings.Join(subjects, ", ")))
	}
	if err := s.students.Delete(ctx, studentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	s.logger.Info("student deleted", zap.String("student_id", studentID))
	return nil
}
