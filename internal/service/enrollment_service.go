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

// EnrollmentInput links a student to a subject.
type EnrollmentInput struct {
	StudentID string `json:"student_id" validate:"required"`
	SubjectID string `json:"subject_id" validate:"required"`
}

// EnrollmentService manages student/subject enrollments.
type EnrollmentService struct {
	enrollments store.EnrollmentStore
	students    store.StudentStore
	subjects    store.SubjectStore
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService.
func NewEnrollmentService(enrollments store.EnrollmentStore, students store.StudentStore, subjects store.SubjectStore, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		enrollments: enrollments,
		students:    students,
		subjects:    subjects,
		validator:   validate,
		logger:      logger,
	}
}

// List returns enrollments matching the filter. Filters referencing another
// professor's entities are rejected with a forbidden error.
func (s *EnrollmentService) List(ctx context.Context, professorID string, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	if filter.StudentID != "" {
		if _, err := s.ownedStudent(ctx, professorID, filter.StudentID); err != nil {
			return nil, 0, err
		}
	}
	if filter.SubjectID != "" {
		if _, err := s.ownedSubject(ctx, professorID, filter.SubjectID); err != nil {
			return nil, 0, err
		}
	}
	details, total, err := s.enrollments.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return details, total, nil
}

// ListBySubject returns the roster of a subject.
func (s *EnrollmentService) ListBySubject(ctx context.Context, professorID, subjectID string) ([]models.EnrollmentDetail, error) {
	if _, err := s.ownedSubject(ctx, professorID, subjectID); err != nil {
		return nil, err
	}
	details, err := s.enrollments.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return details, nil
}

// Create enrolls a student in a subject. At most one enrollment may exist
// per (student, subject) pair.
func (s *EnrollmentService) Create(ctx context.Context, professorID string, input EnrollmentInput) (*models.Enrollment, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	if _, err := s.ownedStudent(ctx, professorID, input.StudentID); err != nil {
		return nil, err
	}
	if _, err := s.ownedSubject(ctx, professorID, input.SubjectID); err != nil {
		return nil, err
	}
	exists, err := s.enrollments.Exists(ctx, input.StudentID, input.SubjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateEnrollment, "")
	}
	enrollment := &models.Enrollment{StudentID: input.StudentID, SubjectID: input.SubjectID}
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}
	s.logger.Info("student enrolled",
		zap.String("student_id", input.StudentID), zap.String("subject_id", input.SubjectID))
	return enrollment, nil
}

// Delete removes an enrollment and its grade record.
func (s *EnrollmentService) Delete(ctx context.Context, professorID, enrollmentID string) error {
	enrollment, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch enrollment")
	}
	if _, err := s.ownedSubject(ctx, professorID, enrollment.SubjectID); err != nil {
		return err
	}
	if err := s.enrollments.Delete(ctx, enrollmentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete enrollment")
	}
	s.logger.Info("enrollment deleted", zap.String("enrollment_id", enrollmentID))
	return nil
}

func (s *EnrollmentService) ownedStudent(ctx context.Context, professorID, studentID string) (*models.Student, error) {
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

func (s *EnrollmentService) ownedSubject(ctx context.Context, professorID, subjectID string) (*models.Subject, error) {
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
