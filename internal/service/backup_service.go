package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
	"github.com/tonikampos/kampos-xestion-api/internal/store"
	appErrors "github.com/tonikampos/kampos-xestion-api/pkg/errors"
)

// BackupService exports and restores a professor's complete dataset as one
// JSON snapshot.
type BackupService struct {
	stores  store.Stores
	version string
	logger  *zap.Logger
}

// NewBackupService constructs a BackupService.
func NewBackupService(stores store.Stores, version string, logger *zap.Logger) *BackupService {
	if version == "" {
		version = "1"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackupService{stores: stores, version: version, logger: logger}
}

// Export collects the professor's data into a snapshot document.
func (s *BackupService) Export(ctx context.Context, professorID string) (*models.Snapshot, error) {
	professor, err := s.stores.Professors.FindByID(ctx, professorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "professor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch professor")
	}
	students, _, err := s.stores.Students.List(ctx, professorID, models.StudentFilter{PageSize: 100, Page: 1})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	// Page through; list caps page size at 100.
	all := students
	for page := 2; len(students) == 100; page++ {
		students, _, err = s.stores.Students.List(ctx, professorID, models.StudentFilter{PageSize: 100, Page: page})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
		}
		all = append(all, students...)
	}
	subjects, err := s.stores.Subjects.List(ctx, professorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	enrollments, err := s.stores.Enrollments.ListByProfessor(ctx, professorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	grades, err := s.stores.Grades.ListByProfessor(ctx, professorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}

	snapshot := &models.Snapshot{
		Version:     s.version,
		ExportedAt:  time.Now().UTC(),
		Professors:  []models.Professor{*professor},
		Students:    all,
		Subjects:    subjects,
		Enrollments: enrollments,
		Grades:      grades,
	}
	s.logger.Info("backup exported", zap.String("professor_id", professorID),
		zap.Int("students", len(all)), zap.Int("subjects", len(subjects)), zap.Int("grades", len(grades)))
	return snapshot, nil
}

// Restore replaces the professor's data with the snapshot contents. The
// professor account itself is kept; only owned entities are replaced.
// Snapshot IDs are preserved so enrollments and grades stay linked.
func (s *BackupService) Restore(ctx context.Context, professorID string, snapshot models.Snapshot) error {
	if snapshot.Version != s.version {
		return appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("unsupported snapshot version %q", snapshot.Version))
	}
	if err := s.wipe(ctx, professorID); err != nil {
		return err
	}

	for i := range snapshot.Students {
		student := snapshot.Students[i]
		student.ProfessorID = professorID
		if err := s.stores.Students.Create(ctx, &student); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
				fmt.Sprintf("failed to restore student %s", student.ID))
		}
	}
	for i := range snapshot.Subjects {
		subject := snapshot.Subjects[i]
		subject.ProfessorID = professorID
		if err := s.stores.Subjects.Create(ctx, &subject); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
				fmt.Sprintf("failed to restore subject %s", subject.ID))
		}
	}
	for i := range snapshot.Enrollments {
		enrollment := snapshot.Enrollments[i]
		if err := s.stores.Enrollments.Create(ctx, &enrollment); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
				fmt.Sprintf("failed to restore enrollment %s", enrollment.ID))
		}
	}
	for i := range snapshot.Grades {
		grade := snapshot.Grades[i]
		if err := s.stores.Grades.Upsert(ctx, &grade); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
				fmt.Sprintf("failed to restore grade %s", grade.ID))
		}
	}
	s.logger.Info("backup restored", zap.String("professor_id", professorID),
		zap.Int("students", len(snapshot.Students)), zap.Int("subjects", len(snapshot.Subjects)))
	return nil
}

// wipe removes the professor's entities, enrollments first so their grade
// cascade runs before students and subjects go.
func (s *BackupService) wipe(ctx context.Context, professorID string) error {
	enrollments, err := s.stores.Enrollments.ListByProfessor(ctx, professorID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	for _, enrollment := range enrollments {
		if err := s.stores.Enrollments.Delete(ctx, enrollment.ID); err != nil && !errors.Is(err, sql.ErrNoRows) {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear enrollments")
		}
	}
	for {
		// Deleting shrinks the list, so the first page is re-read until empty.
		students, _, err := s.stores.Students.List(ctx, professorID, models.StudentFilter{PageSize: 100, Page: 1})
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
		}
		if len(students) == 0 {
			break
		}
		for _, student := range students {
			if err := s.stores.Students.Delete(ctx, student.ID); err != nil && !errors.Is(err, sql.ErrNoRows) {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear students")
			}
		}
	}
	subjects, err := s.stores.Subjects.List(ctx, professorID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	for _, subject := range subjects {
		if err := s.stores.Subjects.Delete(ctx, subject.ID); err != nil && !errors.Is(err, sql.ErrNoRows) {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear subjects")
		}
	}
	return nil
}
