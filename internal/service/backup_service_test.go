package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
	appErrors "github.com/tonikampos/kampos-xestion-api/pkg/errors"
)

func TestBackupExportRestoreRoundTrip(t *testing.T) {
	stores := newTestStores(t)
	professor := seedProfessor(t, stores)
	student := seedStudent(t, stores, professor.ID, "Antía", "García")
	subject := seedSubject(t, stores, professor.ID, twoEvalConfig())
	seedEnrollment(t, stores, student.ID, subject.ID)
	ctx := context.Background()
	final := 7.4
	require.NoError(t, stores.Grades.Upsert(ctx, &models.StudentGrade{
		StudentID: student.ID, SubjectID: subject.ID, FinalGrade: &final,
	}))

	svc := NewBackupService(stores, "1", nil)
	snapshot, err := svc.Export(ctx, professor.ID)
	require.NoError(t, err)
	assert.Equal(t, "1", snapshot.Version)
	assert.Len(t, snapshot.Students, 1)
	assert.Len(t, snapshot.Subjects, 1)
	assert.Len(t, snapshot.Enrollments, 1)
	assert.Len(t, snapshot.Grades, 1)

	// Restore into an empty backend owned by the same professor.
	target := newTestStores(t)
	require.NoError(t, target.Professors.Create(ctx, professor))
	targetSvc := NewBackupService(target, "1", nil)
	require.NoError(t, targetSvc.Restore(ctx, professor.ID, *snapshot))

	restored, err := target.Students.FindByID(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, "García", restored.Surname)

	grade, err := target.Grades.FindByStudentAndSubject(ctx, student.ID, subject.ID)
	require.NoError(t, err)
	require.NotNil(t, grade.FinalGrade)
	assert.Equal(t, 7.4, *grade.FinalGrade)
}

func TestBackupRestoreReplacesExistingData(t *testing.T) {
	stores := newTestStores(t)
	professor := seedProfessor(t, stores)
	old := seedStudent(t, stores, professor.ID, "Vello", "Alumno")
	ctx := context.Background()

	svc := NewBackupService(stores, "1", nil)
	snapshot := models.Snapshot{
		Version:  "1",
		Students: []models.Student{{ID: "novo-id", Name: "Nova", Surname: "Alumna", Email: "nova@example.com"}},
	}
	require.NoError(t, svc.Restore(ctx, professor.ID, snapshot))

	_, err := stores.Students.FindByID(ctx, old.ID)
	assert.Error(t, err)
	restored, err := stores.Students.FindByID(ctx, "novo-id")
	require.NoError(t, err)
	assert.Equal(t, professor.ID, restored.ProfessorID)
}

func TestBackupRestoreRejectsUnknownVersion(t *testing.T) {
	stores := newTestStores(t)
	professor := seedProfessor(t, stores)

	svc := NewBackupService(stores, "1", nil)
	err := svc.Restore(context.Background(), professor.ID, models.Snapshot{Version: "99"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
