package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tonikampos/kampos-xestion-api/internal/grading"
	"github.com/tonikampos/kampos-xestion-api/internal/models"
	"github.com/tonikampos/kampos-xestion-api/internal/store"
	appErrors "github.com/tonikampos/kampos-xestion-api/pkg/errors"
)

// statsInvalidator drops cached statistics after grade writes.
type statsInvalidator interface {
	Invalidate(ctx context.Context, professorID, subjectID string)
}

// InitGradesResult summarises a grade initialization run.
type InitGradesResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Kept    int `json:"kept"`
}

// GradeService manages grade records and keeps computed grades consistent
// with each subject's evaluation configuration.
type GradeService struct {
	grades      store.GradeStore
	enrollments store.EnrollmentStore
	subjects    store.SubjectStore
	students    store.StudentStore
	invalidator statsInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewGradeService constructs a GradeService. The invalidator may be nil when
// statistics caching is disabled.
func NewGradeService(grades store.GradeStore, enrollments store.EnrollmentStore, subjects store.SubjectStore, students store.StudentStore, invalidator statsInvalidator, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{
		grades:      grades,
		enrollments: enrollments,
		subjects:    subjects,
		students:    students,
		invalidator: invalidator,
		validator:   validate,
		logger:      logger,
	}
}

// InitGrades ensures every enrolled student of a subject has a grade record
// matching the current configuration. Existing records are merged
// append-only: missing evaluation and test slots are added, entered scores
// are never touched. Running it twice changes nothing.
func (s *GradeService) InitGrades(ctx context.Context, professorID, subjectID string) (*InitGradesResult, error) {
	subject, err := s.ownedSubject(ctx, professorID, subjectID)
	if err != nil {
		return nil, err
	}
	if subject.Config.IsEmpty() {
		return nil, appErrors.Clone(appErrors.ErrConfigMissing, "")
	}
	enrolled, err := s.enrollments.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}

	result := &InitGradesResult{}
	for _, enrollment := range enrolled {
		grade, err := s.grades.FindByStudentAndSubject(ctx, enrollment.StudentID, subjectID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			grade = grading.NewStudentGrade(enrollment.StudentID, subjectID, subject.Config)
			if err := s.grades.Upsert(ctx, grade); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grade record")
			}
			result.Created++
		case err != nil:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch grade record")
		default:
			if grading.MergeWithConfig(grade, subject.Config) {
				if err := s.grades.Upsert(ctx, grade); err != nil {
					return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade record")
				}
				result.Updated++
			} else {
				result.Kept++
			}
		}
	}
	s.logger.Info("grades initialized", zap.String("subject_id", subjectID),
		zap.Int("created", result.Created), zap.Int("updated", result.Updated), zap.Int("kept", result.Kept))
	return result, nil
}

// GetBySubject returns all grade records of a subject.
func (s *GradeService) GetBySubject(ctx context.Context, professorID, subjectID string) ([]models.StudentGrade, error) {
	if _, err := s.ownedSubject(ctx, professorID, subjectID); err != nil {
		return nil, err
	}
	grades, err := s.grades.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, nil
}

// GetByStudentAndSubject returns one grade record.
func (s *GradeService) GetByStudentAndSubject(ctx context.Context, professorID, studentID, subjectID string) (*models.StudentGrade, error) {
	if _, err := s.ownedSubject(ctx, professorID, subjectID); err != nil {
		return nil, err
	}
	grade, err := s.grades.FindByStudentAndSubject(ctx, studentID, subjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch grade record")
	}
	return grade, nil
}

// ListByStudent returns a student's grade records across all subjects.
func (s *GradeService) ListByStudent(ctx context.Context, professorID, studentID string) ([]models.StudentGrade, error) {
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
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	grades := make([]models.StudentGrade, 0, len(enrollments))
	for _, enrollment := range enrollments {
		grade, err := s.grades.FindByStudentAndSubject(ctx, studentID, enrollment.SubjectID)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch grade record")
		}
		grades = append(grades, *grade)
	}
	return grades, nil
}

// SaveGrades replaces the entered scores of one grade record and recomputes
// the evaluation and final grades from the subject configuration.
func (s *GradeService) SaveGrades(ctx context.Context, professorID, studentID, subjectID string, evaluations models.EvaluationGrades) (*models.StudentGrade, error) {
	subject, err := s.ownedSubject(ctx, professorID, subjectID)
	if err != nil {
		return nil, err
	}
	if subject.Config.IsEmpty() {
		return nil, appErrors.Clone(appErrors.ErrConfigMissing, "")
	}
	enrolled, err := s.enrollments.Exists(ctx, studentID, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if !enrolled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "student is not enrolled in subject")
	}
	for _, eg := range evaluations {
		if _, ok := subject.Config.FindEvaluation(eg.EvaluationID); !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("unknown evaluation %s", eg.EvaluationID))
		}
	}

	grade, err := s.grades.FindByStudentAndSubject(ctx, studentID, subjectID)
	if errors.Is(err, sql.ErrNoRows) {
		grade = grading.NewStudentGrade(studentID, subjectID, subject.Config)
	} else if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch grade record")
	}
	grade.Evaluations = evaluations
	grading.MergeWithConfig(grade, subject.Config)
	grading.Recalculate(grade, subject.Config)

	if err := s.grades.Upsert(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save grades")
	}
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, professorID, subjectID)
	}
	s.logger.Info("grades saved", zap.String("student_id", studentID), zap.String("subject_id", subjectID))
	return grade, nil
}

func (s *GradeService) ownedSubject(ctx context.Context, professorID, subjectID string) (*models.Subject, error) {
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
