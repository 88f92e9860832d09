package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
	"github.com/tonikampos/kampos-xestion-api/internal/store"
	appErrors "github.com/tonikampos/kampos-xestion-api/pkg/errors"
)

// MigrationService copies a professor's data from the file backend into the
// SQL backend. The copy is best effort: entities that fail are recorded and
// the rest continue. Enrollments and grades are skipped because their ids
// are not remapped between backends.
type MigrationService struct {
	source store.Stores
	target store.Stores
	logger *zap.Logger
}

// NewMigrationService constructs a MigrationService.
func NewMigrationService(source, target store.Stores, logger *zap.Logger) *MigrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MigrationService{source: source, target: target, logger: logger}
}

// Run copies the professor account, students and subjects to the target
// backend and reports what was copied, skipped and failed.
func (s *MigrationService) Run(ctx context.Context, professorID string) (*models.MigrationResult, error) {
	professor, err := s.source.Professors.FindByID(ctx, professorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "professor not found in source backend")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch professor")
	}

	result := &models.MigrationResult{ProfessorID: professorID}

	if _, err := s.target.Professors.FindByID(ctx, professorID); errors.Is(err, sql.ErrNoRows) {
		clone := *professor
		if err := s.target.Professors.Create(ctx, &clone); err != nil {
			result.Failures = append(result.Failures, models.MigrationItemError{
				Entity: "professor", ID: professorID, Reason: err.Error(),
			})
		} else {
			result.MigratedProfessors++
		}
	} else if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check target professor")
	}

	for page := 1; ; page++ {
		students, _, err := s.source.Students.List(ctx, professorID, models.StudentFilter{PageSize: 100, Page: page})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list source students")
		}
		if len(students) == 0 {
			break
		}
		for i := range students {
			student := students[i]
			if _, err := s.target.Students.FindByID(ctx, student.ID); err == nil {
				continue
			}
			if err := s.target.Students.Create(ctx, &student); err != nil {
				result.Failures = append(result.Failures, models.MigrationItemError{
					Entity: "student", ID: student.ID, Reason: err.Error(),
				})
				continue
			}
			result.MigratedStudents++
		}
		if len(students) < 100 {
			break
		}
	}

	subjects, err := s.source.Subjects.List(ctx, professorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list source subjects")
	}
	for i := range subjects {
		subject := subjects[i]
		if _, err := s.target.Subjects.FindByID(ctx, subject.ID); err == nil {
			continue
		}
		if err := s.target.Subjects.Create(ctx, &subject); err != nil {
			result.Failures = append(result.Failures, models.MigrationItemError{
				Entity: "subject", ID: subject.ID, Reason: err.Error(),
			})
			continue
		}
		result.MigratedSubjects++
	}

	enrollments, err := s.source.Enrollments.ListByProfessor(ctx, professorID)
	if err == nil {
		result.SkippedEnrollments = len(enrollments)
	}
	grades, err := s.source.Grades.ListByProfessor(ctx, professorID)
	if err == nil {
		result.SkippedGrades = len(grades)
	}

	s.logger.Info("migration finished", zap.String("professor_id", professorID),
		zap.Int("students", result.MigratedStudents), zap.Int("subjects", result.MigratedSubjects),
		zap.Int("failures", len(result.Failures)))
	return result, nil
}
